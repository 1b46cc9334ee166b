package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
)

// Masked replaces matched values in the persisted copy.
const Masked = "***"

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks session data values whose keys match any of the
// patterns before the snapshot is persisted. The in-memory session keeps the
// real values; only the stored copy is redacted, so resumed calls must not
// rely on masked fields.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, snap *domain.Snapshot) error {
	// Clone so the engine's in-memory snapshot is untouched.
	cloned := snap.Clone()
	for k := range cloned.Data {
		for _, p := range m.patterns {
			if p.MatchString(k) {
				cloned.Data[k] = Masked
				break
			}
		}
	}
	return m.next.Save(ctx, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, callID string) (*domain.Snapshot, error) {
	return m.next.Load(ctx, callID)
}

func (m *piiMiddleware) Delete(ctx context.Context, callID string) error {
	return m.next.Delete(ctx, callID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
