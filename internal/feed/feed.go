// Package feed builds the per-session queue of swipeable candidates.
package feed

import (
	"context"
	"math"

	"github.com/oggyb/spotme/internal/db"
)

// Filters is what the filter sheet sends.
type Filters struct {
	Intent        db.Intent
	AgeMin        int
	AgeMax        int
	MaxDistanceKm float64
}

// Query is the storage-side part of a feed load.
type Query struct {
	ExcludeID string
	Intent    db.Intent
	AgeMin    int
	AgeMax    int
	Limit     int
}

// Source lists onboarded profiles for a feed load.
type Source interface {
	ListCandidates(ctx context.Context, q Query) ([]db.Profile, error)
}

// Candidate is one card in the feed.
type Candidate struct {
	db.Profile
	Placeholder bool
	// DistanceKm is set when both sides have coordinates.
	DistanceKm *float64
}

// Feed is a pointer over a fixed snapshot of candidates. It is not safe for
// concurrent use; the owning session serializes access.
type Feed struct {
	items    []Candidate
	pos      int
	fallback bool
	filters  Filters
}

// Load fetches candidates for me and applies filters.
//
// The distance filter only applies to gold users with a location; callers
// are expected to reject it for free users before loading. When nothing is
// left the feed is filled with the placeholder set.
func Load(ctx context.Context, src Source, me db.Profile, f Filters) (*Feed, error) {
	profiles, err := src.ListCandidates(ctx, Query{
		ExcludeID: me.ID,
		Intent:    f.Intent,
		AgeMin:    f.AgeMin,
		AgeMax:    f.AgeMax,
	})
	if err != nil {
		return nil, err
	}

	items := make([]Candidate, 0, len(profiles))
	for _, p := range profiles {
		if p.ID == me.ID || !p.Onboarded {
			continue
		}
		c := Candidate{Profile: p}
		if me.HasLocation() && p.HasLocation() {
			d := Haversine(*me.Latitude, *me.Longitude, *p.Latitude, *p.Longitude)
			c.DistanceKm = &d
		}
		if f.MaxDistanceKm > 0 && me.IsGold() && me.HasLocation() {
			if c.DistanceKm == nil || *c.DistanceKm > f.MaxDistanceKm {
				continue
			}
		}
		items = append(items, c)
	}

	if len(items) == 0 {
		fd := Fallback()
		fd.filters = f
		return fd, nil
	}
	return &Feed{items: items, filters: f}, nil
}

// New wraps an explicit candidate list.
func New(items []Candidate) *Feed {
	return &Feed{items: items}
}

// Current returns the head of the queue; false once the feed is exhausted.
func (f *Feed) Current() (Candidate, bool) {
	if f == nil || f.pos >= len(f.items) {
		return Candidate{}, false
	}
	return f.items[f.pos], true
}

// Advance drops the head. Returns false when there was nothing to drop.
func (f *Feed) Advance() bool {
	if f == nil || f.pos >= len(f.items) {
		return false
	}
	f.pos++
	return true
}

// Upcoming returns up to n candidates starting at the head.
func (f *Feed) Upcoming(n int) []Candidate {
	if f == nil || f.pos >= len(f.items) || n <= 0 {
		return nil
	}
	end := min(f.pos+n, len(f.items))
	return append([]Candidate(nil), f.items[f.pos:end]...)
}

// Exhausted reports the terminal "no more candidates" state.
func (f *Feed) Exhausted() bool { return f == nil || f.pos >= len(f.items) }

func (f *Feed) Remaining() int {
	if f == nil {
		return 0
	}
	return len(f.items) - f.pos
}

func (f *Feed) Size() int {
	if f == nil {
		return 0
	}
	return len(f.items)
}

// IsFallback reports whether the feed holds the placeholder set.
func (f *Feed) IsFallback() bool { return f != nil && f.fallback }

func (f *Feed) Filters() Filters {
	if f == nil {
		return Filters{}
	}
	return f.filters
}

const earthRadiusKm = 6371.0

// Haversine returns the great-circle distance in kilometres.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}
