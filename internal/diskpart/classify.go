package diskpart

import "strings"

// Negative markers checked before anything else. Substring matching over free
// text is a known, accepted risk: a volume label containing "cannot" will
// misclassify, and the tool offers no structured alternative.
var negativeMarkers = []string{
	"access is denied",
	"error",
	"failed",
	"cannot",
	"invalid",
	"not found",
}

// Positive markers: the generic success phrase plus the table headers the
// list commands print.
var positiveMarkers = []string{
	"successfully",
	strings.ToLower(diskHeaderMarker),
	strings.ToLower(volumeHeaderMarker),
	strings.ToLower(partitionHeaderMarker),
}

// classifyRule is one ordered classification step. The first rule whose match
// function fires decides the verdict.
type classifyRule struct {
	name    string
	match   func(lower, trimmed string) bool
	success bool
}

// Classifier decides success or failure of a tool run from its free-text
// output. Rules are evaluated in order, first match wins, so locale or
// version drift can be patched by editing the rule list without touching the
// executor.
type Classifier struct {
	rules []classifyRule
}

// NewClassifier returns the default rule set.
func NewClassifier() *Classifier {
	return &Classifier{rules: []classifyRule{
		{
			name: "negative-marker",
			match: func(lower, _ string) bool {
				return containsAny(lower, negativeMarkers)
			},
			success: false,
		},
		{
			name: "positive-marker",
			match: func(lower, _ string) bool {
				return containsAny(lower, positiveMarkers)
			},
			success: true,
		},
		{
			name: "empty-output",
			match: func(_, trimmed string) bool {
				return trimmed == ""
			},
			success: false,
		},
	}}
}

// Classify reports whether the captured output indicates success. Output that
// matches no rule passes: non-empty, marker-free text is informational.
func (c *Classifier) Classify(output string) bool {
	lower := strings.ToLower(output)
	trimmed := strings.TrimSpace(output)
	for _, rule := range c.rules {
		if rule.match(lower, trimmed) {
			return rule.success
		}
	}
	return true
}

// ExtractErrorMessage returns the first output line carrying a negative
// marker, or the trimmed output when no line does.
func ExtractErrorMessage(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if containsAny(strings.ToLower(line), negativeMarkers) {
			return strings.TrimSpace(line)
		}
	}
	return strings.TrimSpace(output)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
