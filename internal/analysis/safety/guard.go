package safety

import (
	"regexp"
	"strings"
)

// Message returned to the caller when input trips the guard. The turn is
// answered with this fixed text and nothing else runs.
const Message = "I cannot continue this conversation due to safety concerns. Please contact emergency services."

var prohibited = []string{"die", "kill", "suicide", "hurt myself"}

// Guard pre-filters raw input for explicit self-harm language before the
// rest of the pipeline runs.
type Guard struct {
	patterns []*regexp.Regexp
}

// NewGuard compiles the prohibited-phrase matchers.
func NewGuard() *Guard {
	patterns := make([]*regexp.Regexp, 0, len(prohibited))
	for _, phrase := range prohibited {
		// Whole-word match only: "die" must not fire on "studies".
		patterns = append(patterns, regexp.MustCompile(`\b`+regexp.QuoteMeta(phrase)+`\b`))
	}
	return &Guard{patterns: patterns}
}

// Check reports whether text is safe to process. When it is not, reason
// carries a short explanation for logging.
func (g *Guard) Check(text string) (bool, string) {
	lowered := strings.ToLower(text)
	for _, pattern := range g.patterns {
		if pattern.MatchString(lowered) {
			return false, "unsafe content detected"
		}
	}
	return true, ""
}
