package db

import (
	"strings"
	"time"
)

type PlanTier string

const (
	PlanFree PlanTier = "free"
	PlanGold PlanTier = "gold"
)

type Intent string

const (
	IntentPartner      Intent = "partner"
	IntentRelationship Intent = "relationship"
	IntentCoach        Intent = "coach"
	IntentAny          Intent = "any"
)

// ParseIntent normalizes user input ("Gym Partner", "Any", ...) into an Intent.
// Unknown values map to IntentAny.
func ParseIntent(s string) Intent {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "partner", "gym partner", "workout":
		return IntentPartner
	case "relationship":
		return IntentRelationship
	case "coach":
		return IntentCoach
	default:
		return IntentAny
	}
}

// Account is the credential record owned by the identity service.
type Account struct {
	ID           string `gorm:"primaryKey;size:36"`
	Email        string `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	LastLoginAt  time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

// Profile is one person's public card plus their entitlement state.
//
// Credits are never defaulted by the database: callers always write explicit
// values so a zero balance is stored as zero.
type Profile struct {
	ID        string   `gorm:"primaryKey;size:36"`
	Email     string   `gorm:"size:128"`
	Name      string   `gorm:"size:64"`
	Age       int      `gorm:"index:idx_feed,priority:3"`
	Gym       string   `gorm:"size:128"`
	Intent    Intent   `gorm:"size:16;not null;index:idx_feed,priority:2"`
	Bio       string   `gorm:"size:500"`
	Tags      []string `gorm:"serializer:json"`
	Emoji     string   `gorm:"size:16"`
	PhotoURL  string   `gorm:"size:512"`
	GuestPass bool
	Latitude  *float64
	Longitude *float64
	Onboarded bool `gorm:"not null;index:idx_feed,priority:1"`

	PlanTier       PlanTier `gorm:"size:8;not null"`
	SwipeCredits   int      `gorm:"not null"`
	SuperCredits   int      `gorm:"not null"`
	CreditsResetOn string   `gorm:"size:10"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (p Profile) IsGold() bool { return p.PlanTier == PlanGold }

// HasLocation reports whether both coordinates are set.
func (p Profile) HasLocation() bool { return p.Latitude != nil && p.Longitude != nil }

// Snapshot captures the display fields copied into a match.
func (p Profile) Snapshot() Snapshot {
	return Snapshot{Name: p.Name, PhotoURL: p.PhotoURL, Emoji: p.Emoji}
}

// Like is a one-sided "like" from LikerID toward TargetID.
//
// Composite PK: (LikerID, TargetID) guarantees at most one row per ordered pair.
//
// Indexes:
//   - idx_target_created(target_id, created_at DESC, liker_id)
//     serves the "who liked me" list and its cursor pagination.
type Like struct {
	LikerID   string    `gorm:"primaryKey;size:36;index:idx_target_created,priority:3"`
	TargetID  string    `gorm:"primaryKey;size:36;index:idx_target_created,priority:1"`
	Super     bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_target_created,priority:2,sort:desc"`
}

// Snapshot is the display data of one participant frozen at match time.
type Snapshot struct {
	Name     string `gorm:"size:64"`
	PhotoURL string `gorm:"size:512"`
	Emoji    string `gorm:"size:16"`
}

// Match is created once both likes of a pair exist.
//
// PairKey is the sorted concatenation of both ids; its unique index is what
// keeps two racing sessions from creating two matches for the same pair.
// UserAID is always the smaller id.
type Match struct {
	ID        string    `gorm:"primaryKey;size:36"`
	PairKey   string    `gorm:"uniqueIndex;size:80;not null"`
	UserAID   string    `gorm:"size:36;not null;index"`
	UserBID   string    `gorm:"size:36;not null;index"`
	UserA     Snapshot  `gorm:"embedded;embeddedPrefix:user_a_"`
	UserB     Snapshot  `gorm:"embedded;embeddedPrefix:user_b_"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// PairKey returns the order-independent key for two user ids.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

// Has reports whether userID participates in the match.
func (m Match) Has(userID string) bool {
	return m.UserAID == userID || m.UserBID == userID
}

// Other returns the id and snapshot of the participant that is not userID.
func (m Match) Other(userID string) (string, Snapshot) {
	if m.UserAID == userID {
		return m.UserBID, m.UserB
	}
	return m.UserAID, m.UserA
}

// Message belongs to exactly one match; ordered by (created_at, id).
type Message struct {
	ID        string    `gorm:"primaryKey;size:36"`
	MatchID   string    `gorm:"size:36;not null;index:idx_match_created,priority:1"`
	SenderID  string    `gorm:"size:36;not null"`
	Body      string    `gorm:"size:2000;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_match_created,priority:2"`
}

// Models lists every table for AutoMigrate.
func Models() []any {
	return []any{&Account{}, &Profile{}, &Like{}, &Match{}, &Message{}}
}
