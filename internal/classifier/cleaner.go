package classifier

import "strings"

// DefaultExcludePatterns marks log entries that are useless in their
// entirety; an entry containing one of these is dropped before cleaning.
var DefaultExcludePatterns = []string{
	"NotificationDispatcherImpl",
}

// DefaultNoisePatterns marks individual framework lines that carry no error
// identity (spring/apache/jdk internals, serializer frames). Lines matching
// one of these are removed from the message.
var DefaultNoisePatterns = []string{
	"shared.restclient",
	"platform.shared",
	"platform.boot",
	"java.base",
	"org.springframework",
	"org.apache",
	"jakarta.servlet",
	"jdk.internal",
	"fasterxml.jackson",
}

// Cleaner strips framework noise from raw log messages before they reach
// signature extraction.
type Cleaner struct {
	excludePatterns []string
	noisePatterns   []string
}

// NewCleaner builds a cleaner; nil slices select the defaults.
func NewCleaner(excludePatterns, noisePatterns []string) *Cleaner {
	if excludePatterns == nil {
		excludePatterns = DefaultExcludePatterns
	}
	if noisePatterns == nil {
		noisePatterns = DefaultNoisePatterns
	}
	return &Cleaner{excludePatterns: excludePatterns, noisePatterns: noisePatterns}
}

// ShouldExclude reports whether the entire entry is noise and must be
// dropped without line-level cleaning. Empty messages are excluded.
func (c *Cleaner) ShouldExclude(message string) bool {
	if strings.TrimSpace(message) == "" {
		return true
	}
	for _, p := range c.excludePatterns {
		if strings.Contains(message, p) {
			return true
		}
	}
	return false
}

// Clean removes noise lines and normalizes per-line whitespace while keeping
// the newline structure of the message. Returns "" when nothing survives.
func (c *Cleaner) Clean(message string) string {
	if strings.TrimSpace(message) == "" {
		return ""
	}

	var cleaned []string
	for _, line := range strings.Split(message, "\n") {
		if strings.TrimSpace(line) == "" || c.isNoiseLine(line) {
			continue
		}
		line = strings.ReplaceAll(line, "\r", " ")
		line = strings.ReplaceAll(line, "\t", " ")
		normalized := strings.Join(strings.Fields(line), " ")
		if normalized != "" {
			cleaned = append(cleaned, normalized)
		}
	}
	return strings.Join(cleaned, "\n")
}

func (c *Cleaner) isNoiseLine(line string) bool {
	for _, p := range c.noisePatterns {
		if strings.Contains(line, p) {
			return true
		}
	}
	return false
}
