package speech

import (
	"strings"

	"github.com/aretw0/parley/pkg/schema"
)

var digitWords = [...]string{
	"zero", "one", "two", "three", "four",
	"five", "six", "seven", "eight", "nine",
}

// SpeakDigits strips everything but letters and digits and speaks each digit
// as its word form, space-joined: "99213" becomes
// "nine nine two one three". Letters pass through unchanged.
func SpeakDigits(value string) string {
	var words []string
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			words = append(words, digitWords[r-'0'])
		case isLetter(r):
			words = append(words, string(r))
		}
	}
	return strings.Join(words, " ")
}

// SpeakDigitsGrouped strips non-digits, splits the digits into the given
// group sizes (DefaultGroups when nil) and speaks each group's digits,
// joining groups with a comma. A 10-digit identifier under the default
// 3-3-4 grouping becomes
// "one two three, four five six, seven eight nine zero".
// Digits beyond the configured groups form one trailing group.
func SpeakDigitsGrouped(value string, groups []int) string {
	if len(groups) == 0 {
		groups = schema.DefaultGroups
	}

	var digits []string
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits = append(digits, digitWords[r-'0'])
		}
	}
	if len(digits) == 0 {
		return ""
	}

	var spoken []string
	pos := 0
	for _, size := range groups {
		if pos >= len(digits) {
			break
		}
		end := pos + size
		if end > len(digits) {
			end = len(digits)
		}
		spoken = append(spoken, strings.Join(digits[pos:end], " "))
		pos = end
	}
	if pos < len(digits) {
		spoken = append(spoken, strings.Join(digits[pos:], " "))
	}
	return strings.Join(spoken, ", ")
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
