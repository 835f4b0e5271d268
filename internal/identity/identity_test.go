package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/spotme/internal/identity"
	"github.com/oggyb/spotme/internal/repository"
	"github.com/oggyb/spotme/internal/testutil"
)

func setupIdentity(t *testing.T) *identity.Service {
	t.Helper()
	database := testutil.NewDB(t)
	rc, _ := testutil.NewRedis(t)
	return identity.NewService(repository.NewAccountRepository(database), rc, "test-secret", time.Hour)
}

type change struct {
	sessionID string
	id        *identity.Identity
}

func TestSignUpSignInSignOut(t *testing.T) {
	ctx := context.Background()
	svc := setupIdentity(t)

	var changes []change
	svc.OnIdentityChange(func(_ context.Context, sid string, id *identity.Identity) {
		changes = append(changes, change{sid, id})
	})

	id, token, err := svc.SignUp(ctx, "Ana@Example.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, id.UserID)
	assert.Equal(t, "ana@example.com", id.Email)
	require.Len(t, changes, 1)
	assert.Equal(t, id.SessionID, changes[0].sessionID)

	verified, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID, verified.UserID)
	assert.Equal(t, id.SessionID, verified.SessionID)

	again, _, err := svc.SignIn(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id.UserID, again.UserID)
	assert.NotEqual(t, id.SessionID, again.SessionID)

	require.NoError(t, svc.SignOut(ctx, verified))
	require.Len(t, changes, 3)
	assert.Nil(t, changes[2].id)

	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}

func TestSignUp_EmailInUse(t *testing.T) {
	ctx := context.Background()
	svc := setupIdentity(t)

	_, _, err := svc.SignUp(ctx, "bo@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.SignUp(ctx, "BO@example.com", "other12")
	assert.ErrorIs(t, err, identity.ErrEmailInUse)
}

func TestSignIn_Errors(t *testing.T) {
	ctx := context.Background()
	svc := setupIdentity(t)

	_, _, err := svc.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, identity.ErrUnknownEmail)

	_, _, err = svc.SignUp(ctx, "cy@example.com", "secret1")
	require.NoError(t, err)

	_, _, err = svc.SignIn(ctx, "cy@example.com", "wrong-pass")
	assert.ErrorIs(t, err, identity.ErrWrongPassword)
}

func TestVerify_ExpiredAndForged(t *testing.T) {
	ctx := context.Background()
	svc := setupIdentity(t)

	now := time.Now()
	svc.WithClock(func() time.Time { return now })

	_, token, err := svc.SignUp(ctx, "di@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Verify(ctx, token+"x")
	assert.ErrorIs(t, err, identity.ErrInvalidToken)

	now = now.Add(2 * time.Hour)
	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, identity.ErrInvalidToken)
}
