package session

import (
	"errors"

	"github.com/oggyb/spotme/internal/db"
)

var ErrInvalidUpdate = errors.New("invalid profile update")

// ProfileUpdate is a partial profile edit; nil fields are left untouched.
type ProfileUpdate struct {
	Name      *string    `validate:"omitempty,min=1,max=64"`
	Age       *int       `validate:"omitempty,gte=18,lte=120"`
	Gym       *string    `validate:"omitempty,max=128"`
	Intent    *db.Intent `validate:"omitempty,oneof=partner relationship coach any"`
	Bio       *string    `validate:"omitempty,max=500"`
	Tags      *[]string  `validate:"omitempty,max=5,dive,min=1,max=32"`
	Emoji     *string    `validate:"omitempty,max=16"`
	PhotoURL  *string    `validate:"omitempty,url"`
	GuestPass *bool
	Latitude  *float64 `validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `validate:"omitempty,gte=-180,lte=180"`
	Onboarded *bool
}

// Apply copies the set fields onto p and returns the columns it touched.
func (u ProfileUpdate) Apply(p *db.Profile) []string {
	var cols []string
	if u.Name != nil {
		p.Name = *u.Name
		cols = append(cols, "name")
	}
	if u.Age != nil {
		p.Age = *u.Age
		cols = append(cols, "age")
	}
	if u.Gym != nil {
		p.Gym = *u.Gym
		cols = append(cols, "gym")
	}
	if u.Intent != nil {
		p.Intent = *u.Intent
		cols = append(cols, "intent")
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
		cols = append(cols, "bio")
	}
	if u.Tags != nil {
		p.Tags = append([]string(nil), (*u.Tags)...)
		cols = append(cols, "tags")
	}
	if u.Emoji != nil {
		p.Emoji = *u.Emoji
		cols = append(cols, "emoji")
	}
	if u.PhotoURL != nil {
		p.PhotoURL = *u.PhotoURL
		cols = append(cols, "photo_url")
	}
	if u.GuestPass != nil {
		p.GuestPass = *u.GuestPass
		cols = append(cols, "guest_pass")
	}
	if u.Latitude != nil {
		p.Latitude = u.Latitude
		cols = append(cols, "latitude")
	}
	if u.Longitude != nil {
		p.Longitude = u.Longitude
		cols = append(cols, "longitude")
	}
	if u.Onboarded != nil {
		p.Onboarded = *u.Onboarded
		cols = append(cols, "onboarded")
	}
	return cols
}

// Empty reports whether the update changes nothing.
func (u ProfileUpdate) Empty() bool {
	return len(u.Apply(&db.Profile{})) == 0
}
