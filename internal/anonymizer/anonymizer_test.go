package anonymizer

import (
	"strings"
	"testing"
)

func TestAnonymizeEmpty(t *testing.T) {
	if got := Anonymize(""); got != "" {
		t.Errorf("Anonymize(\"\") = %q, want \"\"", got)
	}
}

func TestAnonymizeRedactsIdentity(t *testing.T) {
	input := "userName='John Doe' contacted john.doe@example.com re: tenant=acme_corp123"
	got := Anonymize(input)

	for _, want := range []string{"[USER_NAME_REDACTED]", "[EMAIL_REDACTED]", "[TENANT_REDACTED]"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %s", got, want)
		}
	}
	for _, leaked := range []string{"John Doe", "john.doe@example.com", "acme_corp123"} {
		if strings.Contains(got, leaked) {
			t.Errorf("output %q leaked %q", got, leaked)
		}
	}
}

func TestAnonymizeFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "json userName",
			input: `{"userName" : "Jane Roe", "ok": true}`,
			want:  `{"userName":"[USER_NAME_REDACTED]", "ok": true}`,
		},
		{
			name:  "status updater",
			input: "statusUpdaterName='Jane Roe' approved",
			want:  "statusUpdaterName='[NAME_REDACTED]' approved",
		},
		{
			name:  "user comment",
			input: "userComment='please approve my shift swap'",
			want:  "userComment='[COMMENT_REDACTED]'",
		},
		{
			name:  "user bracket",
			input: "request rejected [user: jdoe42] retrying",
			want:  "request rejected [user:[USER_REDACTED]] retrying",
		},
		{
			name:  "phone number",
			input: "callback 555-123-4567 requested",
			want:  "callback [PHONE_REDACTED] requested",
		},
		{
			name:  "capitalized name before punctuation",
			input: "updated by John Doe, at noon",
			want:  "updated by [NAME_REDACTED], at noon",
		},
		{
			name:  "tenant bracketed id",
			input: "processing [acme_corp26123588] queue",
			want:  "processing [TENANT_REDACTED] queue",
		},
		{
			name:  "tenant bracketed kv",
			input: "request [tenant: acme prod] denied",
			want:  "request [TENANT_REDACTED] denied",
		},
		{
			name:  "tenant url path",
			input: "GET /api/tenants/acme-123/users failed",
			want:  "GET /api/tenants/[TENANT_REDACTED]/users failed",
		},
		{
			name:  "tenant query param",
			// The inline key/value rule swallows everything up to the next
			// comma or whitespace, query separators included.
			input: "retry https://api.example.com?tenantId=acme123&x=1",
			want:  "retry https://api.example.com?tenantId=[TENANT_REDACTED]",
		},
		{
			name:  "customer kv preserves key spelling",
			input: "lookup customerName: acme_ltd failed",
			want:  "lookup customerName=[TENANT_REDACTED] failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Anonymize(tt.input); got != tt.want {
				t.Errorf("Anonymize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAnonymizeTwiceIsStable(t *testing.T) {
	inputs := []string{
		"userName='John Doe' contacted john.doe@example.com re: tenant=acme_corp123",
		"request rejected [user: jdoe42] retrying",
		"callback 555-123-4567 for [acme_corp26123588]",
		"GET /api/tenants/acme-123/users?tenantName=acme failed",
		"statusUpdaterName='Jane Roe' userComment='fix it'",
	}

	for _, in := range inputs {
		once := Anonymize(in)
		twice := Anonymize(once)
		if once != twice {
			t.Errorf("Anonymize not stable on re-run:\n once: %q\ntwice: %q", once, twice)
		}
	}
}
