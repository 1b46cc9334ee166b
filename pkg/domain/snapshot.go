package domain

import "time"

// Snapshot is the serializable record of one call. It carries everything
// needed to resume a session on another process: the workflow it belongs to,
// the current state, the raw session data and the transcript so far.
type Snapshot struct {
	CallID    string            `json:"call_id"`
	Workflow  string            `json:"workflow"`
	State     string            `json:"state"`
	Data      map[string]string `json:"data"`
	History   []Message         `json:"history,omitempty"`
	Outcome   string            `json:"outcome,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Clone returns a deep copy so stores can hand out snapshots without
// aliasing their internal maps.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Data = make(map[string]string, len(s.Data))
	for k, v := range s.Data {
		out.Data[k] = v
	}
	out.History = append([]Message(nil), s.History...)
	return &out
}
