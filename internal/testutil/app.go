package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oggyb/spotme/internal/app"
	"github.com/oggyb/spotme/internal/blob"
	"github.com/oggyb/spotme/internal/config"
	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/logger"
	"github.com/oggyb/spotme/internal/session"
)

// NewApp wires a full app context on SQLite, miniredis and the memory blob
// store.
func NewApp(t *testing.T) *app.AppContext {
	t.Helper()

	cfg := config.New()
	cfg.Auth.JWTSecret = "test-secret"
	rc, mr := NewRedis(t)
	cfg.Redis.Addr = mr.Addr()

	return app.New(cfg, NewDB(t), rc, blob.NewMemoryStore("https://cdn.test"), logger.Discard())
}

// SignUp creates an account and returns a context carrying its session and
// the bearer token.
func SignUp(t *testing.T, a *app.AppContext, email string) (context.Context, string) {
	t.Helper()
	ctx := context.Background()

	id, token, err := a.Identity.SignUp(ctx, email, "password1")
	require.NoError(t, err)

	s, ok := a.Sessions.Get(id.SessionID)
	require.True(t, ok)
	return session.NewContext(ctx, s), token
}

// Onboard completes the profile card of the session in ctx.
func Onboard(t *testing.T, ctx context.Context, name string, age int) db.Profile {
	t.Helper()
	sess, err := session.Current(ctx)
	require.NoError(t, err)

	onboarded := true
	intent := db.IntentAny
	emoji := "🏋️"
	sess.Lock()
	defer sess.Unlock()
	p, err := sess.Store.UpdateProfile(ctx, session.ProfileUpdate{
		Name:      &name,
		Age:       &age,
		Intent:    &intent,
		Emoji:     &emoji,
		Onboarded: &onboarded,
	})
	require.NoError(t, err)
	return p
}
