// Package events pushes realtime notifications to users over Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oggyb/spotme/internal/cache"
)

type Kind string

const (
	KindMatchCreated   Kind = "match_created"
	KindMessageCreated Kind = "message_created"
)

// Event is delivered to exactly one user.
type Event struct {
	Kind    Kind            `json:"kind"`
	UserID  string          `json:"user_id"`
	At      time.Time       `json:"at"`
	Match   *MatchPayload   `json:"match,omitempty"`
	Message *MessagePayload `json:"message,omitempty"`
}

// MatchPayload describes the other participant of a new match.
type MatchPayload struct {
	MatchID     string `json:"match_id"`
	OtherUserID string `json:"other_user_id"`
	Name        string `json:"name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
}

type MessagePayload struct {
	MessageID string    `json:"message_id"`
	MatchID   string    `json:"match_id"`
	SenderID  string    `json:"sender_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, userID string) (*Subscription, error)
}

// Bus implements Publisher and Subscriber on the Redis user channels.
type Bus struct {
	cache *cache.RedisCache
	log   *slog.Logger
}

func NewBus(c *cache.RedisCache, log *slog.Logger) *Bus {
	return &Bus{cache: c, log: log}
}

func (b *Bus) Publish(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.cache.Publish(ctx, e.UserID, payload)
}

// Subscribe streams the user's events until ctx is done or Close is called.
func (b *Bus) Subscribe(ctx context.Context, userID string) (*Subscription, error) {
	ps, err := b.cache.Subscribe(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Event, 16)
	sub := &Subscription{C: out, cancel: cancel}

	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					b.log.Warn("dropping malformed event", "user", userID, "err", err)
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return sub, nil
}

// Subscription is a live event stream.
type Subscription struct {
	C <-chan Event

	once   sync.Once
	cancel context.CancelFunc
}

func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// PublishAll sends every event and returns the first error. Delivery is best
// effort; a failed push never undoes the write that caused it.
func PublishAll(ctx context.Context, p Publisher, evs ...Event) error {
	var first error
	for _, e := range evs {
		if err := p.Publish(ctx, e); err != nil && first == nil {
			first = err
		}
	}
	return first
}
