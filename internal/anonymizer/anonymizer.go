// Package anonymizer redacts sensitive content (emails, user names, tenant
// identifiers, phone numbers, personal names) from log text before it is
// classified or sent to an external analysis service.
package anonymizer

import "regexp"

var (
	emailRe         = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	userNameSQRe    = regexp.MustCompile(`userName='([^']+)'`)
	userNameJSONRe  = regexp.MustCompile(`"userName"\s*:\s*"([^"]+)"`)
	statusUpdaterRe = regexp.MustCompile(`statusUpdaterName='([^']+)'`)
	userCommentRe   = regexp.MustCompile(`userComment='([^']+)'`)
	userBracketRe   = regexp.MustCompile(`(?i)\[user:\s*([^\[\]]+)]`)
	phoneRe         = regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`)

	// Conservative personal-name match: exactly two capitalized words
	// followed by whitespace, comma or a quote. RE2 has no lookahead, so the
	// delimiter is captured and restored in the replacement.
	nameRe = regexp.MustCompile(`\b([A-Z][a-z]+\s+[A-Z][a-z]+)([\s,'"])`)

	// Tenant/organization identifiers in their common log shapes. The
	// key/value rule accepts an already-redacted bracketed placeholder as a
	// value so that a second pass replaces it with itself instead of
	// mangling the trailing bracket.
	tenantBracketedIDRe = regexp.MustCompile(`\[[A-Za-z0-9][A-Za-z0-9._-]*\d{3,}]`)
	tenantBracketedKVRe = regexp.MustCompile(`(?i)\[(tenant|customer|org|organization|account)[:=]\s*[^]]+]`)
	tenantKVRe          = regexp.MustCompile(`(?i)\b(tenantId|tenantID|tenant|tenantName|customer|customerName|organization|organizationName|org|account|accountName)\b\s*[:=]\s*(?:'[^']+'|"[^"]+"|\[\w+\]|[^,\s\]}]+)`)
	tenantPathRe        = regexp.MustCompile(`(?i)(/tenants/)([^/?\s]+)`)
	tenantQueryRe       = regexp.MustCompile(`(?i)(tenant(?:Id|ID|Name)?=)([^&\s]+)`)
)

// redactTenants masks tenant/org identifiers: bracketed ids ending in
// digits, bracketed and inline key/value constructs (key spelling is
// preserved), URL path segments and query parameters.
func redactTenants(text string) string {
	if text == "" {
		return text
	}
	text = tenantBracketedIDRe.ReplaceAllString(text, "[TENANT_REDACTED]")
	text = tenantBracketedKVRe.ReplaceAllString(text, "[TENANT_REDACTED]")
	text = tenantKVRe.ReplaceAllString(text, "${1}=[TENANT_REDACTED]")
	text = tenantPathRe.ReplaceAllString(text, "${1}[TENANT_REDACTED]")
	text = tenantQueryRe.ReplaceAllString(text, "${1}[TENANT_REDACTED]")
	return text
}

// Anonymize removes or redacts sensitive information from a log message.
// Pure and total: any string in, a string out, never an error. Tenant
// redaction runs first and last; the other substitutions can reveal or
// reformat tenant-like tokens, and the second pass catches those.
func Anonymize(message string) string {
	if message == "" {
		return message
	}

	text := redactTenants(message)

	text = emailRe.ReplaceAllString(text, "[EMAIL_REDACTED]")
	text = userNameSQRe.ReplaceAllString(text, "userName='[USER_NAME_REDACTED]'")
	text = userNameJSONRe.ReplaceAllString(text, `"userName":"[USER_NAME_REDACTED]"`)
	text = nameRe.ReplaceAllString(text, "[NAME_REDACTED]${2}")
	text = statusUpdaterRe.ReplaceAllString(text, "statusUpdaterName='[NAME_REDACTED]'")
	text = userCommentRe.ReplaceAllString(text, "userComment='[COMMENT_REDACTED]'")
	text = userBracketRe.ReplaceAllString(text, "[user:[USER_REDACTED]]")
	text = phoneRe.ReplaceAllString(text, "[PHONE_REDACTED]")

	return redactTenants(text)
}
