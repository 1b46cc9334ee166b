package speech

import "strings"

// natoAlphabet maps 'a'..'z' to phonetic alphabet words.
var natoAlphabet = [...]string{
	"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf",
	"Hotel", "India", "Juliett", "Kilo", "Lima", "Mike", "November",
	"Oscar", "Papa", "Quebec", "Romeo", "Sierra", "Tango", "Uniform",
	"Victor", "Whiskey", "X-ray", "Yankee", "Zulu",
}

// SpeakSpelling separates a value's alphabetic and numeric parts: letters are
// spelled individually (as NATO words when phonetic is set), digits are
// grouped like SpeakDigitsGrouped. When both parts are present they are
// joined with a comma, e.g. "AB1234" with phonetic spelling becomes
// "Alpha Bravo, one two three, four".
func SpeakSpelling(value string, phonetic bool, groups []int) string {
	var letters []string
	var digits []rune
	for _, r := range value {
		switch {
		case isLetter(r):
			letters = append(letters, spellLetter(r, phonetic))
		case r >= '0' && r <= '9':
			digits = append(digits, r)
		}
	}

	var parts []string
	if len(letters) > 0 {
		parts = append(parts, strings.Join(letters, " "))
	}
	if len(digits) > 0 {
		parts = append(parts, SpeakDigitsGrouped(string(digits), groups))
	}
	return strings.Join(parts, ", ")
}

func spellLetter(r rune, phonetic bool) string {
	upper := r
	if r >= 'a' && r <= 'z' {
		upper = r - 'a' + 'A'
	}
	if phonetic {
		return natoAlphabet[upper-'A']
	}
	return string(upper)
}
