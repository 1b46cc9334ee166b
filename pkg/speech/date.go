package speech

import (
	"fmt"
	"time"
)

// ordinalDays maps a day of month to its ordinal word.
var ordinalDays = [...]string{
	1: "first", 2: "second", 3: "third", 4: "fourth", 5: "fifth",
	6: "sixth", 7: "seventh", 8: "eighth", 9: "ninth", 10: "tenth",
	11: "eleventh", 12: "twelfth", 13: "thirteenth", 14: "fourteenth",
	15: "fifteenth", 16: "sixteenth", 17: "seventeenth", 18: "eighteenth",
	19: "nineteenth", 20: "twentieth", 21: "twenty-first", 22: "twenty-second",
	23: "twenty-third", 24: "twenty-fourth", 25: "twenty-fifth",
	26: "twenty-sixth", 27: "twenty-seventh", 28: "twenty-eighth",
	29: "twenty-ninth", 30: "thirtieth", 31: "thirty-first",
}

// dateLayouts are the accepted input formats. The non-padded US layout also
// matches zero-padded values.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
}

// SpeakDate renders a date as "{Month} {ordinal day}, {year}", e.g.
// "1980-03-15" becomes "March fifteenth, 1980". Unparsable input is returned
// unchanged rather than failing the call.
func SpeakDate(value string) string {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return fmt.Sprintf("%s %s, %d", t.Month().String(), ordinalDays[t.Day()], t.Year())
	}
	return value
}
