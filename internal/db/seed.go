package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	seedNames = []string{
		"Alex", "Sam", "Jordan", "Taylor", "Riley", "Casey", "Morgan", "Jamie", "Avery", "Quinn",
		"Drew", "Rowan", "Skyler", "Reese", "Parker", "Harper", "Emery", "Finley", "Hayden", "Blake",
	}
	seedGyms    = []string{"Iron Temple", "PureGym Central", "Crunch Downtown", "Anytime Fitness", ""}
	seedTags    = []string{"Running", "Lifting", "Yoga", "CrossFit", "HIIT", "Pilates", "Cycling", "Boxing"}
	seedEmojis  = []string{"💪", "🏃", "🧘", "🥊", "🚴", "🤸", "🏋️"}
	seedIntents = []Intent{IntentPartner, IntentRelationship, IntentCoach, IntentAny}
)

// SeedTestData resets the database and populates it with demo accounts,
// onboarded profiles, likes and the matches those likes imply.
//
// Behavior:
//  1. Clears messages, matches, likes, profiles and accounts.
//  2. Creates 20 accounts (password "password") with onboarded free profiles.
//  3. Generates ~100 likes; every 3rd like is reciprocated and turned into a match.
//
// Compatible with MySQL, Postgres and SQLite.
func SeedTestData(db *gorm.DB, dailyLimit int) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"messages", "matches", "likes", "profiles", "accounts"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	log.Println("Cleared existing data")

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	today := time.Now().UTC().Format(time.DateOnly)
	profiles := make([]Profile, 0, len(seedNames))

	// --- Seed accounts + profiles ---
	for i, name := range seedNames {
		id := uuid.NewString()
		email := fmt.Sprintf("user%d@example.com", i+1)

		account := Account{
			ID:           id,
			Email:        email,
			PasswordHash: string(hash),
			LastLoginAt:  time.Now().Add(-time.Duration(r.Intn(500)) * time.Hour),
		}
		if err := db.Create(&account).Error; err != nil {
			return fmt.Errorf("failed to seed account: %w", err)
		}

		lat := 51.50 + r.Float64()*0.2
		lng := -0.20 + r.Float64()*0.2
		profile := Profile{
			ID:             id,
			Email:          email,
			Name:           name,
			Age:            20 + r.Intn(25),
			Gym:            seedGyms[r.Intn(len(seedGyms))],
			Intent:         seedIntents[i%len(seedIntents)],
			Bio:            fmt.Sprintf("%s here, always up for a spotter.", name),
			Tags:           []string{seedTags[r.Intn(len(seedTags))], seedTags[r.Intn(len(seedTags))]},
			Emoji:          seedEmojis[r.Intn(len(seedEmojis))],
			Latitude:       &lat,
			Longitude:      &lng,
			Onboarded:      true,
			PlanTier:       PlanFree,
			SwipeCredits:   dailyLimit,
			SuperCredits:   1,
			CreditsResetOn: today,
		}
		if err := db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	log.Printf("Seeded %d profiles.", len(profiles))

	// --- Seed likes (+ matches for reciprocated pairs) ---
	counter := 0
	for _, liker := range profiles {
		for j := 0; j < 5; j++ {
			target := profiles[r.Intn(len(profiles))]
			if target.ID == liker.ID {
				continue
			}

			if err := seedLike(db, liker.ID, target.ID); err != nil {
				return err
			}

			// guarantee a mutual like every 3rd pair
			if counter%3 == 0 {
				if err := seedLike(db, target.ID, liker.ID); err != nil {
					return err
				}
				if err := seedMatch(db, liker, target); err != nil {
					return err
				}
			}
			counter++
		}
	}
	log.Printf("Seeded %d likes.", counter)

	return nil
}

func seedLike(db *gorm.DB, likerID, targetID string) error {
	like := Like{LikerID: likerID, TargetID: targetID}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
		return fmt.Errorf("failed to seed like: %w", err)
	}
	return nil
}

func seedMatch(db *gorm.DB, x, y Profile) error {
	a, b := x, y
	if a.ID > b.ID {
		a, b = b, a
	}
	match := Match{
		ID:      uuid.NewString(),
		PairKey: PairKey(a.ID, b.ID),
		UserAID: a.ID,
		UserBID: b.ID,
		UserA:   a.Snapshot(),
		UserB:   b.Snapshot(),
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pair_key"}},
		DoNothing: true,
	}).Create(&match).Error; err != nil {
		return fmt.Errorf("failed to seed match: %w", err)
	}
	return nil
}
