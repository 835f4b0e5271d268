// Package api defines the request and response messages of the SpotMe gRPC
// services and their hand-written service descriptors.
package api

import (
	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/feed"
)

type Empty struct{}

// --- auth ---

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// --- profile ---

type ProfileView struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Age          int      `json:"age"`
	Gym          string   `json:"gym,omitempty"`
	Intent       string   `json:"intent"`
	Bio          string   `json:"bio,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Emoji        string   `json:"emoji,omitempty"`
	PhotoURL     string   `json:"photo_url,omitempty"`
	GuestPass    bool     `json:"guest_pass"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Onboarded    bool     `json:"onboarded"`
	PlanTier     string   `json:"plan_tier"`
	SwipeCredits int      `json:"swipe_credits"`
	SuperCredits int      `json:"super_credits"`
}

type OnboardRequest struct {
	Name      string   `json:"name" validate:"required,max=64"`
	Age       int      `json:"age" validate:"required,gte=18,lte=120"`
	Intent    string   `json:"intent" validate:"required"`
	Emoji     string   `json:"emoji" validate:"required,max=16"`
	Tags      []string `json:"tags" validate:"max=5,dive,min=1,max=32"`
	Gym       string   `json:"gym" validate:"max=128"`
	GuestPass bool     `json:"guest_pass"`
	Bio       string   `json:"bio" validate:"max=500"`
}

// UpdateProfileRequest is a partial edit; absent fields are left untouched.
type UpdateProfileRequest struct {
	Name      *string   `json:"name,omitempty"`
	Age       *int      `json:"age,omitempty"`
	Gym       *string   `json:"gym,omitempty"`
	Intent    *string   `json:"intent,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	Emoji     *string   `json:"emoji,omitempty"`
	GuestPass *bool     `json:"guest_pass,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
}

type UploadPhotoRequest struct {
	ContentType string `json:"content_type" validate:"required"`
	Data        []byte `json:"data" validate:"required"`
}

// --- discover ---

type LoadFeedRequest struct {
	Intent        string  `json:"intent,omitempty"`
	AgeMin        int     `json:"age_min,omitempty" validate:"omitempty,gte=18"`
	AgeMax        int     `json:"age_max,omitempty" validate:"omitempty,gtefield=AgeMin"`
	MaxDistanceKm float64 `json:"max_distance_km,omitempty" validate:"gte=0"`
}

type CandidateView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Age         int      `json:"age"`
	Gym         string   `json:"gym,omitempty"`
	Intent      string   `json:"intent"`
	Bio         string   `json:"bio,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Emoji       string   `json:"emoji,omitempty"`
	PhotoURL    string   `json:"photo_url,omitempty"`
	GuestPass   bool     `json:"guest_pass"`
	DistanceKm  *float64 `json:"distance_km,omitempty"`
	Placeholder bool     `json:"placeholder,omitempty"`
}

type FeedResponse struct {
	Current   *CandidateView  `json:"current,omitempty"`
	Upcoming  []CandidateView `json:"upcoming,omitempty"`
	Remaining int             `json:"remaining"`
	Fallback  bool            `json:"fallback"`
}

type SwipeRequest struct {
	Direction string `json:"direction" validate:"required,oneof=left right super"`
}

type SwipeResponse struct {
	Result       string         `json:"result"`
	Candidate    CandidateView  `json:"candidate"`
	Match        *MatchView     `json:"match,omitempty"`
	Next         *CandidateView `json:"next,omitempty"`
	Remaining    int            `json:"remaining"`
	SwipeCredits int            `json:"swipe_credits"`
	SuperCredits int            `json:"super_credits"`
}

type ListLikesRequest struct {
	PageToken *string `json:"page_token,omitempty"`
	Limit     int     `json:"limit,omitempty" validate:"gte=0,lte=100"`
	OnlyNew   bool    `json:"only_new,omitempty"`
}

type LikerView struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Emoji    string `json:"emoji,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
	Super    bool   `json:"super,omitempty"`
	LikedAt  int64  `json:"liked_at"`
}

type ListLikesResponse struct {
	Likers        []LikerView `json:"likers"`
	NextPageToken *string     `json:"next_page_token,omitempty"`
}

type CountLikesResponse struct {
	Count uint64 `json:"count"`
}

// --- matches ---

type MatchView struct {
	ID          string `json:"id"`
	OtherUserID string `json:"other_user_id"`
	Name        string `json:"name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

type ListMatchesResponse struct {
	Matches []MatchView `json:"matches"`
}

type SendMessageRequest struct {
	MatchID string `json:"match_id" validate:"required"`
	Body    string `json:"body" validate:"max=2000"`
}

type MessageView struct {
	ID        string `json:"id"`
	MatchID   string `json:"match_id"`
	SenderID  string `json:"sender_id"`
	Body      string `json:"body"`
	CreatedAt int64  `json:"created_at"`
}

type ListMessagesRequest struct {
	MatchID   string  `json:"match_id" validate:"required"`
	PageToken *string `json:"page_token,omitempty"`
	Limit     int     `json:"limit,omitempty" validate:"gte=0,lte=100"`
}

type ListMessagesResponse struct {
	Messages      []MessageView `json:"messages"`
	NextPageToken *string       `json:"next_page_token,omitempty"`
}

type SubscribeRequest struct{}

// --- conversions ---

func NewProfileView(p db.Profile) *ProfileView {
	return &ProfileView{
		ID:           p.ID,
		Email:        p.Email,
		Name:         p.Name,
		Age:          p.Age,
		Gym:          p.Gym,
		Intent:       string(p.Intent),
		Bio:          p.Bio,
		Tags:         p.Tags,
		Emoji:        p.Emoji,
		PhotoURL:     p.PhotoURL,
		GuestPass:    p.GuestPass,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		Onboarded:    p.Onboarded,
		PlanTier:     string(p.PlanTier),
		SwipeCredits: p.SwipeCredits,
		SuperCredits: p.SuperCredits,
	}
}

func NewCandidateView(c feed.Candidate) CandidateView {
	return CandidateView{
		ID:          c.ID,
		Name:        c.Name,
		Age:         c.Age,
		Gym:         c.Gym,
		Intent:      string(c.Intent),
		Bio:         c.Bio,
		Tags:        c.Tags,
		Emoji:       c.Emoji,
		PhotoURL:    c.PhotoURL,
		GuestPass:   c.GuestPass,
		DistanceKm:  c.DistanceKm,
		Placeholder: c.Placeholder,
	}
}

// NewMatchView shows the match from userID's side.
func NewMatchView(m db.Match, userID string) MatchView {
	otherID, snap := m.Other(userID)
	return MatchView{
		ID:          m.ID,
		OtherUserID: otherID,
		Name:        snap.Name,
		PhotoURL:    snap.PhotoURL,
		Emoji:       snap.Emoji,
		CreatedAt:   m.CreatedAt.UnixMilli(),
	}
}

func NewMessageView(m db.Message) MessageView {
	return MessageView{
		ID:        m.ID,
		MatchID:   m.MatchID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt.UnixMilli(),
	}
}
