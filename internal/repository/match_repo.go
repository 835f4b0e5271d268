package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spotme/internal/db"
)

// MatchRepository provides data access methods for the Match model.
type MatchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates a new repository bound to the given DB connection.
func NewMatchRepository(database *gorm.DB) *MatchRepository {
	return &MatchRepository{db: database}
}

// CreateMatch creates the match for the pair (x, y) with both snapshots.
//
// Behavior:
//   - The unique pair_key makes creation idempotent: when another session won
//     the race, the existing row is returned with created = false.
//   - Participants are stored in id order regardless of argument order.
func (r *MatchRepository) CreateMatch(ctx context.Context, x, y db.Profile) (db.Match, bool, error) {
	a, b := x, y
	if a.ID > b.ID {
		a, b = b, a
	}

	match := db.Match{
		ID:      uuid.NewString(),
		PairKey: db.PairKey(a.ID, b.ID),
		UserAID: a.ID,
		UserBID: b.ID,
		UserA:   a.Snapshot(),
		UserB:   b.Snapshot(),
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "pair_key"}},
			DoNothing: true,
		}).
		Create(&match)
	if res.Error != nil {
		return db.Match{}, false, res.Error
	}
	if res.RowsAffected > 0 {
		return match, true, nil
	}

	var existing db.Match
	if err := r.db.WithContext(ctx).First(&existing, "pair_key = ?", match.PairKey).Error; err != nil {
		return db.Match{}, false, err
	}
	return existing, false, nil
}

// GetMatch loads one match by id.
func (r *MatchRepository) GetMatch(ctx context.Context, id string) (*db.Match, error) {
	var m db.Match
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMatches returns every match the user takes part in, newest first.
func (r *MatchRepository) ListMatches(ctx context.Context, userID string) ([]db.Match, error) {
	var matches []db.Match
	err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Order("created_at DESC, id DESC").
		Find(&matches).Error
	return matches, err
}

// CountMatches returns how many matches exist for the pair key. Used by tests
// and diagnostics to assert pair uniqueness.
func (r *MatchRepository) CountMatches(ctx context.Context, a, b string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&db.Match{}).
		Where("pair_key = ?", db.PairKey(a, b)).
		Count(&n).Error
	return n, err
}
