package slots

import (
	"regexp"
	"strings"
)

var policyNumberPattern = regexp.MustCompile(`[A-Z0-9-]{4,15}`)

// ExtractPolicyNumber scans the upper-cased utterance for the first run of
// 4-15 letters, digits or hyphens that contains at least one digit. Runs
// without a digit are ordinary words ("POLICY") and are skipped.
//
// "my policy is AB-12-99" must yield AB-12-99 rather than the word POLICY,
// so an all-letter code such as ABCDEF is never recovered.
func ExtractPolicyNumber(utterance string) (string, bool) {
	for _, m := range policyNumberPattern.FindAllString(strings.ToUpper(utterance), -1) {
		if strings.ContainsAny(m, "0123456789") {
			return m, true
		}
	}
	return "", false
}
