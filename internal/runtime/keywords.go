package runtime

import (
	"strings"

	"github.com/aretw0/parley/pkg/schema"
)

// matchRule evaluates one transition rule against a user utterance,
// dispatching on the trigger kind. New trigger kinds add an arm here
// without touching the turn loop.
func matchRule(rule schema.TransitionRule, utterance string) bool {
	switch rule.Trigger.Kind {
	case schema.TriggerKeywords:
		return matchKeywords(rule.Trigger.Keywords, utterance)
	default:
		return false
	}
}

// matchKeywords applies case-insensitive substring matching: "any" mode
// fires on the first keyword found, "all" mode requires every keyword.
func matchKeywords(kt *schema.KeywordTrigger, utterance string) bool {
	if kt == nil || len(kt.Keywords) == 0 {
		return false
	}
	u := strings.ToLower(utterance)

	if kt.Match == schema.MatchAll {
		for _, kw := range kt.Keywords {
			if !strings.Contains(u, strings.ToLower(kw)) {
				return false
			}
		}
		return true
	}

	for _, kw := range kt.Keywords {
		if strings.Contains(u, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
