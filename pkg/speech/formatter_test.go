package speech_test

import (
	"testing"

	"github.com/aretw0/parley/pkg/schema"
	"github.com/aretw0/parley/pkg/speech"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func patientSchema() schema.DataSchema {
	return schema.DataSchema{
		Entity:   "patient",
		Required: []string{"first_name", "dob", "member_id"},
		Formats: map[string]schema.FormatRule{
			"dob":       {Kind: schema.FormatDate},
			"member_id": {Kind: schema.FormatDigitsGrouped},
			"cpt_code":  {Kind: schema.FormatDigits},
		},
	}
}

func TestApply(t *testing.T) {
	f := speech.New(patientSchema())

	got := f.Apply(map[string]string{
		"first_name": "Maria",
		"dob":        "1980-03-15",
		"member_id":  "1234567890",
		"cpt_code":   "99213",
	})

	assert.Equal(t, "March fifteenth, 1980", got["dob_spoken"])
	assert.Equal(t, "one two three, four five six, seven eight nine zero", got["member_id_spoken"])
	assert.Equal(t, "nine nine two one three", got["cpt_code_spoken"])
	assert.Equal(t, "Maria", got["first_name"], "unformatted fields pass through")
	assert.NotContains(t, got, "first_name_spoken", "fields without a rule gain no derived key")
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	f := speech.New(patientSchema())
	in := map[string]string{"dob": "1980-03-15"}

	_ = f.Apply(in)

	assert.Equal(t, map[string]string{"dob": "1980-03-15"}, in)
}

func TestApply_Idempotent(t *testing.T) {
	f := speech.New(patientSchema())
	in := map[string]string{
		"first_name": "Maria",
		"dob":        "1980-03-15",
		"member_id":  "1234567890",
	}

	once := f.Apply(in)
	twice := f.Apply(once)

	require.Equal(t, once, twice, "formatting formatted data must be a no-op")
}

func TestApply_MissingFieldYieldsPlaceholder(t *testing.T) {
	f := speech.New(patientSchema())

	got := f.Apply(map[string]string{"first_name": "Maria"})

	assert.Equal(t, speech.NotAvailable, got["dob_spoken"])
	assert.Equal(t, speech.NotAvailable, got["member_id_spoken"])
}

func TestSpeakDate(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"1980-03-15", "March fifteenth, 1980"},
		{"03/15/1980", "March fifteenth, 1980"},
		{"3/1/2024", "March first, 2024"},
		{"2023-12-31", "December thirty-first, 2023"},
		{"not-a-date", "not-a-date"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, speech.SpeakDate(tc.in), "input %q", tc.in)
	}
}

func TestSpeakDigits(t *testing.T) {
	assert.Equal(t, "nine nine two one three", speech.SpeakDigits("99213"))
	assert.Equal(t, "five five five one two one two", speech.SpeakDigits("555-1212"))
	assert.Equal(t, "A one", speech.SpeakDigits("A-1"))
}

func TestSpeakDigitsGrouped(t *testing.T) {
	t.Run("default 3-3-4 grouping", func(t *testing.T) {
		got := speech.SpeakDigitsGrouped("(123) 456-7890", nil)
		assert.Equal(t, "one two three, four five six, seven eight nine zero", got)
	})

	t.Run("custom groups", func(t *testing.T) {
		got := speech.SpeakDigitsGrouped("123456", []int{2, 2, 2})
		assert.Equal(t, "one two, three four, five six", got)
	})

	t.Run("short input stops early", func(t *testing.T) {
		got := speech.SpeakDigitsGrouped("12345", nil)
		assert.Equal(t, "one two three, four five", got)
	})

	t.Run("overflow forms trailing group", func(t *testing.T) {
		got := speech.SpeakDigitsGrouped("123456789012", nil)
		assert.Equal(t, "one two three, four five six, seven eight nine zero, one two", got)
	})

	t.Run("no digits", func(t *testing.T) {
		assert.Equal(t, "", speech.SpeakDigitsGrouped("abc", nil))
	})
}

func TestSpeakSpelling(t *testing.T) {
	t.Run("plain letters", func(t *testing.T) {
		assert.Equal(t, "A B C", speech.SpeakSpelling("abc", false, nil))
	})

	t.Run("phonetic letters with digits", func(t *testing.T) {
		got := speech.SpeakSpelling("AB1234", true, nil)
		assert.Equal(t, "Alpha Bravo, one two three, four", got)
	})

	t.Run("digits only", func(t *testing.T) {
		assert.Equal(t, "one two three, four", speech.SpeakSpelling("1234", true, nil))
	})
}
