package feed

import (
	"strings"

	"github.com/oggyb/spotme/internal/db"
)

// PlaceholderPrefix marks ids of the built-in placeholder candidates.
const PlaceholderPrefix = "placeholder-"

var placeholders = []db.Profile{
	{
		ID:        PlaceholderPrefix + "1",
		Name:      "Maya",
		Age:       27,
		Gym:       "Iron Temple",
		Intent:    db.IntentPartner,
		Bio:       "Early mornings, heavy squats. Looking for a spotter who shows up.",
		Tags:      []string{"Lifting", "Running"},
		Emoji:     "🏋️",
		Onboarded: true,
	},
	{
		ID:        PlaceholderPrefix + "2",
		Name:      "Leo",
		Age:       31,
		Intent:    db.IntentCoach,
		Bio:       "Certified coach. Happy to help you plan your first 5k.",
		Tags:      []string{"Running", "Nutrition", "HIIT"},
		Emoji:     "🏃",
		GuestPass: true,
		Onboarded: true,
	},
	{
		ID:        PlaceholderPrefix + "3",
		Name:      "Priya",
		Age:       25,
		Gym:       "Crunch Downtown",
		Intent:    db.IntentRelationship,
		Bio:       "Yoga at sunrise, boxing at sunset.",
		Tags:      []string{"Yoga", "Boxing"},
		Emoji:     "🧘",
		Onboarded: true,
	},
}

// Fallback returns a feed holding the placeholder candidates, used when a
// load finds nobody so the discover screen is never empty.
func Fallback() *Feed {
	items := make([]Candidate, 0, len(placeholders))
	for _, p := range placeholders {
		p.Tags = append([]string(nil), p.Tags...)
		items = append(items, Candidate{Profile: p, Placeholder: true})
	}
	return &Feed{items: items, fallback: true}
}

// IsPlaceholder reports whether id belongs to a placeholder candidate.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, PlaceholderPrefix)
}
