package repository

import "gorm.io/gorm"

// SwipeStore bundles the repositories the swipe resolver reads and writes
// through.
type SwipeStore struct {
	*ProfileRepository
	*LikeRepository
	*MatchRepository
}

func NewSwipeStore(database *gorm.DB) *SwipeStore {
	return &SwipeStore{
		ProfileRepository: NewProfileRepository(database),
		LikeRepository:    NewLikeRepository(database),
		MatchRepository:   NewMatchRepository(database),
	}
}
