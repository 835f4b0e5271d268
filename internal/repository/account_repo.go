package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/spotme/internal/db"
)

// ErrEmailTaken is returned when an account with the same email exists.
var ErrEmailTaken = errors.New("email already registered")

// AccountRepository stores identity credentials.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new repository bound to the given DB connection.
func NewAccountRepository(database *gorm.DB) *AccountRepository {
	return &AccountRepository{db: database}
}

// CreateAccount inserts a new account; emails are compared case-insensitively.
func (r *AccountRepository) CreateAccount(ctx context.Context, a *db.Account) error {
	a.Email = normalizeEmail(a.Email)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&db.Account{}).Where("email = ?", a.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrEmailTaken
		}
		if err := tx.Create(a).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrEmailTaken
			}
			return err
		}
		return nil
	})
}

// GetAccountByEmail loads an account; missing rows surface as gorm.ErrRecordNotFound.
func (r *AccountRepository) GetAccountByEmail(ctx context.Context, email string) (*db.Account, error) {
	var a db.Account
	if err := r.db.WithContext(ctx).First(&a, "email = ?", normalizeEmail(email)).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// TouchLogin records a successful sign-in.
func (r *AccountRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&db.Account{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
