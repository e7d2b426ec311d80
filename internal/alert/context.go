package alert

import "context"

type contextKey struct{}

// NewContext returns a copy of ctx carrying m.
func NewContext(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, contextKey{}, m)
}

// FromContext returns the manager bound to ctx, or ErrNoManager.
func FromContext(ctx context.Context) (*Manager, error) {
	if ctx == nil {
		return nil, ErrNoManager
	}
	m, ok := ctx.Value(contextKey{}).(*Manager)
	if !ok || m == nil {
		return nil, ErrNoManager
	}
	return m, nil
}

// MustFromContext is FromContext for call sites where a missing manager is a
// programming error. It panics with ErrNoManager.
func MustFromContext(ctx context.Context) *Manager {
	m, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return m
}
