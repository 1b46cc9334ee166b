package runtime

import (
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/schema"
)

// historyPolicy decides, for a state being entered, whether the existing
// transcript is kept and whether the model is re-invoked immediately.
//
//	entering state      reason               history   auto-invoke
//	entry/greeting      navigation complete  discard   no
//	entry/greeting      human answered       keep      no
//	entry/greeting      other                keep      if user messages pending
//	state with tools    any                  keep      yes
//	any other           any                  keep      no
func historyPolicy(s *schema.Schema, st schema.StateDefinition, reason string, pendingUser int) (keep, autoInvoke bool) {
	if len(st.Tools) > 0 {
		return true, true
	}
	if s.IsEntry(st.Name) {
		switch reason {
		case domain.ReasonNavigationComplete:
			return false, false
		case domain.ReasonHumanAnswered:
			return true, false
		default:
			return true, pendingUser > 0
		}
	}
	return true, false
}

// rebuildHistory produces the message list for a freshly entered state: the
// new system prompt first, followed by the prior conversation (minus stale
// system prompts) when the policy keeps it.
func rebuildHistory(history []domain.Message, systemPrompt string, keep bool) []domain.Message {
	messages := []domain.Message{{Role: domain.RoleSystem, Content: systemPrompt}}
	if !keep {
		return messages
	}
	for _, msg := range history {
		if msg.Role == domain.RoleSystem {
			continue
		}
		messages = append(messages, msg)
	}
	return messages
}
