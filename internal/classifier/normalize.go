package classifier

import (
	"regexp"
	"strings"
)

// rule is one step of the normalization pipeline. Rules run in declaration
// order: structural patterns (payload wrappers, bracket blocks) and id/time
// patterns must run before the generic bare-digit rule, otherwise digit
// substitution corrupts UUID and hex matching.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

var normalizeRules = []rule{
	// UUIDs (11ef8709-70d4-4670-b102-0242ac110002)
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`), "[UUID]"},
	// Hex ids of 16+ chars (22f8ddccbde6b48f)
	{regexp.MustCompile(`\b[0-9a-f]{16,}\b`), "[HEX-ID]"},
	// ISO timestamps
	{regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z?`), "[TIMESTAMP]"},
	// Clock times with fractional seconds (10:00:00.123)
	{regexp.MustCompile(`\d{2}:\d{2}:\d{2}\.\d+`), "[TIME]"},
	// Quoted numeric ids
	{regexp.MustCompile(`'[0-9]+'`), "'[ID]'"},
	// Tenant-style bracketed tokens ([legal_answer_edge_llc26123588])
	{regexp.MustCompile(`\[\w+_\w+_\w+_\w+\d+\]`), "[TENANT]"},
	// Known structured payload wrappers: keep the wrapper name, drop content
	{regexp.MustCompile(`BaseSCRRequest\{[^}]+\}`), "BaseSCRRequest{...}"},
	{regexp.MustCompile(`RequestedChanges\{[^}]+\}`), "RequestedChanges{...}"},
	{regexp.MustCompile(`ActivityChange\{[^}]+\}`), "ActivityChange{...}"},
	// Long bracket blocks (dumped arrays, context blobs)
	{regexp.MustCompile(`\[[^\]]{50,}\]`), "[...]"},
	// Bare numeric ids
	{regexp.MustCompile(`\b\d{3,}\b`), "[NUM]"},
}

// Normalize replaces dynamic content in an error message with fixed
// placeholder tokens and collapses whitespace. It is a pure function of its
// input; two occurrences of the same underlying error normalize to identical
// strings regardless of ids, timestamps or tenant names embedded in them.
func Normalize(message string) string {
	if message == "" {
		return ""
	}
	for _, r := range normalizeRules {
		message = r.pattern.ReplaceAllString(message, r.replacement)
	}
	return strings.Join(strings.Fields(message), " ")
}

var firstLineRules = []struct {
	pattern *regexp.Regexp
	replace func(string) string
}{
	// Any Name{...} payload: keep the type name, drop the body. Go's
	// regexp caps repetition counts at 1000.
	{regexp.MustCompile(`\b\w+\{[^\n\r]{0,1000}\}`), func(m string) string {
		name, _, _ := strings.Cut(m, "{")
		return name + "{...}"
	}},
	{regexp.MustCompile(`\[[^\]]{40,}\]`), func(string) string { return "[...]" }},
	{regexp.MustCompile(`https?://\S+`), func(string) string { return "[URL]" }},
	// key=value where the value is long enough to be an id/timestamp
	{regexp.MustCompile(`\b\w+=[^,\s]{12,}`), func(string) string { return "key=[...]" }},
	{regexp.MustCompile(`'[^']{12,}'`), func(string) string { return "'[...']" }},
	{regexp.MustCompile(`"[^"]{12,}"`), func(string) string { return `"..."` }},
}

// normalizeFirstErrorLine applies extra stripping used when a signature has
// to be rebuilt from the first ERROR line: long key=value pairs, long quoted
// literals, URLs and arbitrary Name{...} payloads are dropped so the core
// action summary survives.
func normalizeFirstErrorLine(text string) string {
	if text == "" {
		return ""
	}
	for _, r := range firstLineRules {
		text = r.pattern.ReplaceAllStringFunc(text, r.replace)
	}
	return strings.Join(strings.Fields(text), " ")
}
