// Package speech derives natural-speech variants of session fields so a
// text-to-speech voice reads them the way a person would: dates as "March
// fifteenth, 1980", identifiers digit by digit, phone-style numbers in
// grouped cadence, codes spelled out letter by letter.
//
// Formatting runs once per session. It is pure and idempotent: applying it
// to already-formatted data reproduces the same derived fields bit for bit.
package speech
