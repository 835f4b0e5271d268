package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/feed"
)

// defaultCandidateLimit bounds one feed snapshot.
const defaultCandidateLimit = 200

// ProfileRepository provides data access methods for the Profile model.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// GetProfile loads one profile. Missing rows surface as gorm.ErrRecordNotFound.
func (r *ProfileRepository) GetProfile(ctx context.Context, id string) (*db.Profile, error) {
	var p db.Profile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfiles loads several profiles keyed by id; unknown ids are skipped.
func (r *ProfileRepository) GetProfiles(ctx context.Context, ids []string) (map[string]db.Profile, error) {
	out := make(map[string]db.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var profiles []db.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}

// CreateProfile inserts a new profile row.
func (r *ProfileRepository) CreateProfile(ctx context.Context, p *db.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// UpsertProfile writes the given columns of p and returns the stored record.
//
// Behavior:
//   - If no row exists yet, p is inserted as a whole (first save of a
//     synthesized profile).
//   - Otherwise only the listed columns are updated, so credit columns that
//     other operations own are never overwritten.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, p db.Profile, columns []string) (*db.Profile, error) {
	var stored db.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := p
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return err
		}

		if len(columns) > 0 {
			if err := tx.Model(&db.Profile{ID: p.ID}).Select(columns).Updates(&p).Error; err != nil {
				return err
			}
		}
		return tx.First(&stored, "id = ?", p.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// UpgradeToGold moves a profile to the gold tier.
//
// Swipe credits are set to the sentinel and the super bonus is added on top
// of whatever super credits are left. Upgrading a gold profile changes
// nothing, so the bonus is granted once even when two sessions race.
func (r *ProfileRepository) UpgradeToGold(ctx context.Context, id string, credits, superBonus int) (*db.Profile, error) {
	var stored db.Profile
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.Profile{}).
			Where("id = ? AND plan_tier = ?", id, db.PlanFree).
			Updates(map[string]interface{}{
				"plan_tier":     db.PlanGold,
				"swipe_credits": credits,
				"super_credits": gorm.Expr("super_credits + ?", superBonus),
			})
		if res.Error != nil {
			return res.Error
		}
		// zero rows: already gold or missing; First tells them apart
		return tx.First(&stored, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ResetDailyCredits refills a free user's credits once per UTC day.
//
// The update only matches when credits_reset_on is before day, so concurrent
// callers reset at most once. Returns the stored profile and whether this call
// performed the reset.
func (r *ProfileRepository) ResetDailyCredits(
	ctx context.Context,
	id, day string,
	swipes, super int,
) (*db.Profile, bool, error) {
	var (
		stored db.Profile
		reset  bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.Profile{}).
			Where("id = ? AND plan_tier = ?", id, db.PlanFree).
			Where("(credits_reset_on IS NULL OR credits_reset_on < ?)", day).
			Updates(map[string]interface{}{
				"swipe_credits":    swipes,
				"super_credits":    super,
				"credits_reset_on": day,
			})
		if res.Error != nil {
			return res.Error
		}
		reset = res.RowsAffected > 0
		return tx.First(&stored, "id = ?", id).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &stored, reset, nil
}

// ListCandidates returns onboarded profiles matching q.
//
// Behavior:
//   - Excludes q.ExcludeID and every profile q.ExcludeID already liked.
//   - Intent filter is skipped for IntentAny.
//   - Age bounds are inclusive; zero disables a bound.
//   - Ordered by updated_at DESC, id ASC.
func (r *ProfileRepository) ListCandidates(ctx context.Context, q feed.Query) ([]db.Profile, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}

	query := r.db.WithContext(ctx).
		Model(&db.Profile{}).
		Where("onboarded = ? AND id <> ?", true, q.ExcludeID).
		Where(`
			NOT EXISTS (
				SELECT 1 FROM likes l
				WHERE l.liker_id = ?
				  AND l.target_id = profiles.id
			)`, q.ExcludeID).
		Order("updated_at DESC, id ASC").
		Limit(limit)

	if q.Intent != "" && q.Intent != db.IntentAny {
		query = query.Where("intent = ?", q.Intent)
	}
	if q.AgeMin > 0 {
		query = query.Where("age >= ?", q.AgeMin)
	}
	if q.AgeMax > 0 {
		query = query.Where("age <= ?", q.AgeMax)
	}

	var profiles []db.Profile
	if err := query.Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}
