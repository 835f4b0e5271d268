// Package identity signs users up and in, issues session tokens and notifies
// listeners whenever a session's identity changes.
package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/repository"
)

var (
	ErrEmailInUse    = errors.New("email already in use")
	ErrWrongPassword = errors.New("wrong password")
	ErrUnknownEmail  = errors.New("no account for this email")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// Identity is a signed-in user bound to one session.
type Identity struct {
	UserID    string
	Email     string
	SessionID string
}

// Listener is called with the new identity of a session, or nil on sign-out.
type Listener func(ctx context.Context, sessionID string, id *Identity)

type AccountStore interface {
	CreateAccount(ctx context.Context, a *db.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*db.Account, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

// Revoker remembers signed-out sessions.
type Revoker interface {
	RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	accounts AccountStore
	revoker  Revoker
	secret   []byte
	ttl      time.Duration
	now      func() time.Time

	mu        sync.RWMutex
	listeners []Listener
}

func NewService(accounts AccountStore, revoker Revoker, secret string, ttl time.Duration) *Service {
	return &Service{
		accounts: accounts,
		revoker:  revoker,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// OnIdentityChange registers a listener for sign-in and sign-out.
func (s *Service) OnIdentityChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// SignUp creates the credential record and signs the new user in.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Identity, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	account := &db.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		LastLoginAt:  s.now().UTC(),
	}
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return nil, "", ErrEmailInUse
		}
		return nil, "", err
	}

	return s.open(ctx, account)
}

// SignIn checks credentials and opens a new session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Identity, string, error) {
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUnknownEmail
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrWrongPassword
	}

	// last-login bookkeeping is best effort
	_ = s.accounts.TouchLogin(ctx, account.ID, s.now().UTC())

	return s.open(ctx, account)
}

// SignOut revokes the session and tells listeners it no longer has an identity.
func (s *Service) SignOut(ctx context.Context, id *Identity) error {
	if id == nil {
		return ErrInvalidToken
	}
	if err := s.revoker.RevokeSession(ctx, id.SessionID, s.ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.notify(ctx, id.SessionID, nil)
	return nil
}

// Verify parses a token and rejects revoked sessions.
func (s *Service) Verify(ctx context.Context, token string) (*Identity, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || c.Subject == "" || c.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revoker.IsSessionRevoked(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	return &Identity{UserID: c.Subject, Email: c.Email, SessionID: c.ID}, nil
}

func (s *Service) open(ctx context.Context, account *db.Account) (*Identity, string, error) {
	id := &Identity{
		UserID:    account.ID,
		Email:     account.Email,
		SessionID: uuid.NewString(),
	}

	now := s.now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ID:        id.SessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}).SignedString(s.secret)
	if err != nil {
		return nil, "", fmt.Errorf("sign token: %w", err)
	}

	s.notify(ctx, id.SessionID, id)
	return id, token, nil
}

func (s *Service) notify(ctx context.Context, sessionID string, id *Identity) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, sessionID, id)
	}
}
