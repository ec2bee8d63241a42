package classifier

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "uuid",
			input: "request 11ef8709-70d4-4670-b102-0242ac110002 failed",
			want:  "request [UUID] failed",
		},
		{
			name:  "uuid uppercase",
			input: "request 11EF8709-70D4-4670-B102-0242AC110002 failed",
			want:  "request [UUID] failed",
		},
		{
			name:  "hex id 16 chars",
			input: "trace 22f8ddccbde6b48f not found",
			want:  "trace [HEX-ID] not found",
		},
		{
			name:  "hex id longer than 16 chars",
			input: "trace 22f8ddccbde6b48f22f8 not found",
			want:  "trace [HEX-ID] not found",
		},
		{
			name:  "hex run shorter than 16 chars survives",
			input: "span 22f8ddccbde6 not found",
			want:  "span 22f8ddccbde6 not found",
		},
		{
			name:  "iso timestamp",
			input: "deadline was 2025-08-24T10:00:00.123Z exceeded",
			want:  "deadline was [TIMESTAMP] exceeded",
		},
		{
			name:  "clock time with millis",
			input: "took until 10:00:00.123 to respond",
			want:  "took until [TIME] to respond",
		},
		{
			name:  "quoted numeric id",
			input: "no employee with id '12345'",
			want:  "no employee with id '[ID]'",
		},
		{
			name:  "tenant bracket token",
			input: "failed for [legal_answer_edge_llc26123588] again",
			want:  "failed for [TENANT] again",
		},
		{
			name:  "payload wrapper content dropped",
			input: "rejected BaseSCRRequest{a=1,b=2,c=3}",
			want:  "rejected BaseSCRRequest{...}",
		},
		{
			name:  "long bracket block",
			input: "context [aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa] dropped",
			want:  "context [...] dropped",
		},
		{
			name:  "bare numeric id",
			input: "shift 98765 missing",
			want:  "shift [NUM] missing",
		},
		{
			name:  "short numbers survive",
			input: "retry 3 of 10",
			want:  "retry 3 of 10",
		},
		{
			name:  "whitespace collapse",
			input: "too   many\t spaces  here",
			want:  "too many spaces here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotentOnPlaceholders(t *testing.T) {
	inputs := []string{
		"failed with [UUID] at [TIMESTAMP]",
		"BaseSCRRequest{...} rejected for '[ID]'",
		"ERROR in Foo: [TENANT] [HEX-ID] [NUM] [...]",
		"Empty log message",
	}
	for _, in := range inputs {
		if got := Normalize(in); got != in {
			t.Errorf("Normalize(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestNormalizeRuleOrder(t *testing.T) {
	// A numeric id inside a payload wrapper must vanish with the wrapper
	// body, not be substituted individually.
	got := Normalize("RequestedChanges{start=1755993600000,end=1756080000000}")
	if got != "RequestedChanges{...}" {
		t.Errorf("wrapper rule did not run before numeric rule: %q", got)
	}

	// UUID substitution must win over the bare-digit rule.
	got = Normalize("id 11ef8709-70d4-4670-b102-0242ac110002")
	if got != "id [UUID]" {
		t.Errorf("uuid rule did not run before numeric rule: %q", got)
	}
}

func TestNormalizeFirstErrorLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "arbitrary wrapper stripped",
			input: "rejected ScheduleUpdate{id=9,slots=[1,2,3]}",
			want:  "rejected ScheduleUpdate{...}",
		},
		{
			name:  "url stripped",
			input: "call to https://api.example.com/v2/schedules failed",
			want:  "call to [URL] failed",
		},
		{
			name:  "long key=value stripped",
			input: "update failed requestId=11ef870970d44670b102 retry",
			want:  "update failed key=[...] retry",
		},
		{
			name:  "long quoted literal stripped",
			input: "payload 'averyverylongquotedvalue' rejected",
			want:  "payload '[...'] rejected",
		},
		{
			name:  "large wrapper body stripped",
			input: "rejected ScheduleUpdate{" + strings.Repeat("a=1,", 200) + "b=2}",
			want:  "rejected ScheduleUpdate{...}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeFirstErrorLine(tt.input); got != tt.want {
				t.Errorf("normalizeFirstErrorLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
