package runtime

import (
	"regexp"
	"strings"
)

// markerPattern matches the inline transition tag the model embeds in its
// output. This is the only structured signal expected from model text.
var markerPattern = regexp.MustCompile(`(?i)<next_state>\s*([a-z0-9_\-]+)\s*</next_state>`)

// TransitionRequest is the parsed form of a transition marker. The zero
// value means "no transition requested".
type TransitionRequest struct {
	Requested bool
	Target    string
}

// ParseMarker scans assistant output for a transition marker. All marker
// parsing lives here so the rest of the state machine never touches raw
// model text.
func ParseMarker(text string) TransitionRequest {
	m := markerPattern.FindStringSubmatch(text)
	if m == nil {
		return TransitionRequest{}
	}
	return TransitionRequest{Requested: true, Target: m[1]}
}

// StripMarker removes every transition marker from assistant output, leaving
// the speakable text.
func StripMarker(text string) string {
	return strings.TrimSpace(markerPattern.ReplaceAllString(text, ""))
}
