package session

import "context"

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}

// Current returns the caller's session, or ErrNotSignedIn.
func Current(ctx context.Context) (*Session, error) {
	s, ok := FromContext(ctx)
	if !ok || s.Store.Identity() == nil {
		return nil, ErrNotSignedIn
	}
	return s, nil
}
