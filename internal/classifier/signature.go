package classifier

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultNamespace is the application namespace used to tell application
// stack frames apart from framework frames.
const DefaultNamespace = "com.nice.saas.wfo"

// Signature identifies a group of semantically-identical errors. The
// Signature string is the dedup key: two messages that are "the same error"
// under the normalization rules map to an identical Signature.
type Signature struct {
	Type      string `json:"error_type"`
	Location  string `json:"location"`
	Signature string `json:"signature"`
}

// Extractor derives error signatures from raw log messages. The zero value
// is not usable; construct with NewExtractor.
type Extractor struct {
	namespace string

	exceptionRe   *regexp.Regexp
	errorLineRe   *regexp.Regexp
	errorLoggerRe *regexp.Regexp
	errorMsgRe    *regexp.Regexp
	atFrameRe     *regexp.Regexp
	errorClassRe  *regexp.Regexp
}

// NewExtractor builds an extractor for the given application namespace
// (e.g. "com.nice.saas.wfo"). An empty namespace selects DefaultNamespace.
func NewExtractor(namespace string) *Extractor {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	ns := regexp.QuoteMeta(namespace)
	return &Extractor{
		namespace:     namespace,
		exceptionRe:   regexp.MustCompile(`(java\.lang\.\w+Exception|` + ns + `\.\S+Exception|\w+Exception):\s*(.+?)(?:\n|$)`),
		errorLineRe:   regexp.MustCompile(`ERROR\s+(\S+)\s+.*?\]\s+(.+?)(?:\n|$)`),
		errorLoggerRe: regexp.MustCompile(`\bERROR\s+(\S+)`),
		errorMsgRe:    regexp.MustCompile(`\bERROR\b[^\n]*?\]\s+(.+?)(?:\n|$)`),
		atFrameRe:     regexp.MustCompile(`at (` + ns + `\.\w+\.[\w\.]+)\.(\w+)\(`),
		errorClassRe:  regexp.MustCompile(`ERROR\s+(` + ns + `\.\S+)`),
	}
}

// Extract determines the error type, source location and stable signature
// for one raw (possibly multi-line) log message. It never fails: input that
// matches no rule degrades to an Unknown/Unknown signature built from the
// first line.
func (e *Extractor) Extract(raw string) Signature {
	if strings.TrimSpace(raw) == "" {
		return Signature{Type: "Unknown", Location: "Unknown", Signature: "Empty log message"}
	}

	if m := e.exceptionRe.FindStringSubmatch(raw); m != nil {
		excType := lastSegment(m[1])
		normalized := Normalize(strings.TrimSpace(m[2]))
		location := e.ExtractLocation(raw)

		if isGenericMessage(normalized) {
			return Signature{
				Type:      excType,
				Location:  location,
				Signature: e.rebuildFromFirstErrorLine(raw, excType),
			}
		}
		return Signature{
			Type:      excType,
			Location:  location,
			Signature: fmt.Sprintf("%s: %s", excType, normalized),
		}
	}

	if m := e.errorLineRe.FindStringSubmatch(raw); m != nil {
		className := lastSegment(m[1])
		normalized := Normalize(strings.TrimSpace(m[2]))
		return Signature{
			Type:      "ERROR",
			Location:  className,
			Signature: fmt.Sprintf("ERROR in %s: %s", className, normalized),
		}
	}

	firstLine, _, _ := strings.Cut(raw, "\n")
	if len(firstLine) > 200 {
		firstLine = firstLine[:200]
	}
	return Signature{Type: "Unknown", Location: "Unknown", Signature: Normalize(firstLine)}
}

// isGenericMessage reports whether a normalized exception message carries no
// error identity of its own. Wrapped/rethrown exceptions often lose their
// cause text, leaving an empty message, a bare "{}" placeholder, or the
// first stack frame.
func isGenericMessage(normalized string) bool {
	switch normalized {
	case "", "{}", "unknown", "n/a":
		return true
	}
	return strings.HasPrefix(normalized, "at com.") || strings.HasPrefix(normalized, "at org.")
}

// rebuildFromFirstErrorLine recovers a signature for exceptions whose own
// message is uninformative: the logger name and the first ERROR-line message
// distinguish unrelated failures that would otherwise collapse into one
// bucket, while still collapsing true duplicates.
func (e *Extractor) rebuildFromFirstErrorLine(raw, excType string) string {
	parts := []string{excType}

	if m := e.errorLoggerRe.FindStringSubmatch(raw); m != nil {
		parts = append(parts, lastSegment(m[1]))
	}
	if m := e.errorMsgRe.FindStringSubmatch(raw); m != nil {
		line := Normalize(normalizeFirstErrorLine(strings.TrimSpace(m[1])))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " | ")
}

// ExtractLocation finds the class.method where the error occurred: first an
// application stack frame, then the class adjacent to the ERROR marker.
func (e *Extractor) ExtractLocation(raw string) string {
	if m := e.atFrameRe.FindStringSubmatch(raw); m != nil {
		return lastSegment(m[1]) + "." + m[2]
	}
	if m := e.errorClassRe.FindStringSubmatch(raw); m != nil {
		return lastSegment(m[1])
	}
	return "Unknown"
}

func lastSegment(dotted string) string {
	if i := strings.LastIndex(dotted, "."); i >= 0 {
		return dotted[i+1:]
	}
	return dotted
}
