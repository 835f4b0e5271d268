package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/utils/pagination"
)

// ErrNoCredits is returned when a like would push a credit balance below zero.
var ErrNoCredits = errors.New("no credits left")

// Charge names the credit a new like consumes.
type Charge int

const (
	ChargeNone Charge = iota
	ChargeSwipe
	ChargeSuper
)

// LikeResult reports whether RecordLike inserted a new row, and the liker's
// profile as committed by the same transaction.
type LikeResult struct {
	Created bool
	Profile db.Profile
}

// LikeRepository provides data access methods for the Like model.
// It encapsulates all queries related to one-sided likes between users.
type LikeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new repository bound to the given DB connection.
func NewLikeRepository(database *gorm.DB) *LikeRepository {
	return &LikeRepository{db: database}
}

// RecordLike inserts liker -> target and charges the liker in one transaction.
//
// Behavior:
//   - If the (liker_id, target_id) row already exists nothing is inserted and
//     nothing is charged, so retries are free.
//   - A new row charges one credit of the given kind; ordinary swipe credits
//     are only charged on the free tier.
//   - If the balance is already zero the transaction is rolled back and
//     ErrNoCredits is returned.
//
// Example:
//
//	repo.RecordLike(ctx, db.Like{LikerID: "a", TargetID: "b"}, ChargeSwipe)
func (r *LikeRepository) RecordLike(ctx context.Context, like db.Like, charge Charge) (LikeResult, error) {
	var res LikeResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ins := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "liker_id"}, {Name: "target_id"}},
			DoNothing: true,
		}).Create(&like)
		if ins.Error != nil {
			return ins.Error
		}
		res.Created = ins.RowsAffected > 0

		if res.Created && charge != ChargeNone {
			if err := consumeCredit(tx, like.LikerID, charge); err != nil {
				return err
			}
		}
		return tx.First(&res.Profile, "id = ?", like.LikerID).Error
	})
	if err != nil {
		return LikeResult{}, err
	}
	return res, nil
}

func consumeCredit(tx *gorm.DB, userID string, charge Charge) error {
	var upd *gorm.DB
	switch charge {
	case ChargeSwipe:
		upd = tx.Model(&db.Profile{}).
			Where("id = ? AND plan_tier = ? AND swipe_credits > 0", userID, db.PlanFree).
			UpdateColumn("swipe_credits", gorm.Expr("swipe_credits - 1"))
	case ChargeSuper:
		upd = tx.Model(&db.Profile{}).
			Where("id = ? AND super_credits > 0", userID).
			UpdateColumn("super_credits", gorm.Expr("super_credits - 1"))
	default:
		return nil
	}
	if upd.Error != nil {
		return upd.Error
	}
	if upd.RowsAffected > 0 {
		return nil
	}

	// Nothing was charged. Gold users owe nothing for ordinary likes, even when
	// the upgrade landed while this swipe was in flight.
	if charge == ChargeSwipe {
		var p db.Profile
		if err := tx.Select("plan_tier").First(&p, "id = ?", userID).Error; err != nil {
			return err
		}
		if p.IsGold() {
			return nil
		}
	}
	return ErrNoCredits
}

// HasLiked checks whether liker has liked target.
//
// Used for the mutual-like lookup in the swipe resolver.
//
// Example:
//
//	repo.HasLiked(ctx, "b", "a") // -> true if b already liked a
func (r *LikeRepository) HasLiked(ctx context.Context, likerID, targetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("liker_id = ? AND target_id = ?", likerID, targetID).
		Count(&count).Error
	return count > 0, err
}

// GetLikers returns the likes received by target, newest first.
//
// Behavior:
//   - Ordered by created_at DESC, liker_id DESC.
//   - Supports cursor-based pagination via paginationToken.
//   - When onlyNew is set, likers the target already liked back are excluded.
//
// Example:
//
//	repo.GetLikers(ctx, "a", nil, 20, false) // first 20 people who liked a
func (r *LikeRepository) GetLikers(
	ctx context.Context,
	targetID string,
	paginationToken *string,
	limit int,
	onlyNew bool,
) ([]db.Like, *string, error) {
	var likes []db.Like

	// decode cursor if provided
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Table("likes l").
		Where("l.target_id = ?", targetID).
		Order("l.created_at DESC, l.liker_id DESC").
		Limit(limit + 1)

	if onlyNew {
		query = query.Where(`
			NOT EXISTS (
				SELECT 1 FROM likes l2
				WHERE l2.liker_id = l.target_id
				  AND l2.target_id = l.liker_id
			)`)
	}

	// apply cursor
	if !cursor.IsZero() {
		ts := cursor.Time()
		query = query.Where(
			"(l.created_at < ? OR (l.created_at = ? AND l.liker_id < ?))",
			ts, ts, cursor.ID,
		)
	}

	if err := query.Find(&likes).Error; err != nil {
		return nil, nil, err
	}

	// pagination: build next cursor if needed
	var nextToken *string
	if len(likes) > limit {
		last := likes[limit-1]
		token, err := pagination.Encode(pagination.At(last.LikerID, last.CreatedAt))
		if err != nil {
			return nil, nil, fmt.Errorf("encode next cursor: %w", err)
		}
		nextToken = &token
		likes = likes[:limit]
	}

	return likes, nextToken, nil
}

// CountLikers returns how many users liked the given target.
// Used in conjunction with the Redis cache (DB is fallback).
func (r *LikeRepository) CountLikers(ctx context.Context, targetID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.Like{}).
		Where("target_id = ?", targetID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// getString safely dereferences a string pointer for pagination tokens.
func getString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
