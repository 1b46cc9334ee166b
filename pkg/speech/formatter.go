package speech

import (
	"strings"

	"github.com/aretw0/parley/pkg/schema"
)

// SpokenSuffix is appended to a field key to name its derived variant.
const SpokenSuffix = "_spoken"

// NotAvailable is the placeholder spoken for a field the session record is
// missing. A missing field degrades the prompt, it never aborts the call.
const NotAvailable = "not available"

// Formatter applies a workflow's formatting rules to session data.
type Formatter struct {
	rules map[string]schema.FormatRule
}

// New creates a Formatter for the given data schema.
func New(ds schema.DataSchema) *Formatter {
	return &Formatter{rules: ds.Formats}
}

// Apply returns a copy of data augmented with one "<field>_spoken" key per
// formatting rule. The input is never mutated. Derived keys already present
// are kept untouched, which makes Apply(Apply(x)) == Apply(x).
func (f *Formatter) Apply(data map[string]string) map[string]string {
	out := make(map[string]string, len(data)+len(f.rules))
	for k, v := range data {
		out[k] = v
	}

	for field, rule := range f.rules {
		if strings.HasSuffix(field, SpokenSuffix) {
			continue
		}
		derived := field + SpokenSuffix
		if _, done := out[derived]; done {
			continue
		}
		value, ok := data[field]
		if !ok || value == "" {
			out[derived] = NotAvailable
			continue
		}
		out[derived] = Speak(rule, value)
	}
	return out
}

// Speak renders one value according to a formatting rule.
func Speak(rule schema.FormatRule, value string) string {
	switch rule.Kind {
	case schema.FormatDate:
		return SpeakDate(value)
	case schema.FormatDigits:
		return SpeakDigits(value)
	case schema.FormatDigitsGrouped:
		return SpeakDigitsGrouped(value, rule.Groups)
	case schema.FormatSpell:
		return SpeakSpelling(value, rule.Phonetic, rule.Groups)
	default:
		// Unknown kinds are rejected at schema load; passing the value
		// through keeps a live call alive if one slips past.
		return value
	}
}
