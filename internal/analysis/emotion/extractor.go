package emotion

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Confidence values depend on how the label was obtained: the model
// explicitly tagged its reply, or no tag was found and we defaulted.
const (
	TaggedConfidence  = 0.9
	DefaultConfidence = 0.5

	DefaultLabel = "neutral"
)

// tagPattern matches a trailing "EMOTION: <word>" marker, allowing
// surrounding whitespace and any casing. The model is instructed to append
// the marker, but its output is untrusted text and absence is expected.
var tagPattern = regexp.MustCompile(`(?i)\s*EMOTION:\s*(\w+)\s*$`)

// ExtractTag strips the trailing emotion marker from an AI reply.
// Returns the cleaned reply text, the lower-cased label and a confidence
// reflecting whether the tag was present. Total over any input string.
func ExtractTag(aiResponse string) (string, string, float64) {
	match := tagPattern.FindStringSubmatch(aiResponse)
	if match == nil {
		return aiResponse, DefaultLabel, DefaultConfidence
	}

	clean := strings.TrimSpace(tagPattern.ReplaceAllString(aiResponse, ""))
	return clean, strings.ToLower(match[1]), TaggedConfidence
}

// EstimateIntensity scores a user message for emphasis signals.
// Additive heuristic: signals are independent and may stack; the result is
// clamped to [0, 1].
func EstimateIntensity(message string) float64 {
	intensity := 0.3

	exclamations := float64(strings.Count(message, "!"))
	intensity += min(exclamations*0.15, 0.4)

	if isAllUpper(message) && utf8.RuneCountInString(message) > 5 {
		intensity += 0.2
	}

	if strings.Count(message, "?") > 1 {
		intensity += 0.1
	}

	// Elongated words like "sooo" or "nooo".
	if hasRepeatedRun(message, 3) {
		intensity += 0.15
	}

	return min(intensity, 1.0)
}

// isAllUpper reports whether the text contains at least one cased character
// and no lower-case ones.
func isAllUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// hasRepeatedRun reports whether any rune repeats at least n times in a row.
// RE2 has no backreferences, so this is a plain scan.
func hasRepeatedRun(s string, n int) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= n {
			return true
		}
	}
	return false
}
