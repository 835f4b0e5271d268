package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oggyb/spotme/internal/db"
	"github.com/oggyb/spotme/internal/utils/pagination"
)

// MessageRepository provides append/list access to match conversations.
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new repository bound to the given DB connection.
func NewMessageRepository(database *gorm.DB) *MessageRepository {
	return &MessageRepository{db: database}
}

// AppendMessage stores a new message; ID is assigned when empty.
func (r *MessageRepository) AppendMessage(ctx context.Context, m *db.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// ListMessages returns a match's messages oldest first.
//
// Behavior:
//   - Ordered by created_at ASC, id ASC.
//   - The pagination token continues after the last message of the previous page.
func (r *MessageRepository) ListMessages(
	ctx context.Context,
	matchID string,
	paginationToken *string,
	limit int,
) ([]db.Message, *string, error) {
	cursor, err := pagination.Decode(getString(paginationToken))
	if err != nil {
		return nil, nil, err
	}

	query := r.db.WithContext(ctx).
		Where("match_id = ?", matchID).
		Order("created_at ASC, id ASC").
		Limit(limit + 1)

	if !cursor.IsZero() {
		ts := cursor.Time()
		query = query.Where(
			"(created_at > ? OR (created_at = ? AND id > ?))",
			ts, ts, cursor.ID,
		)
	}

	var messages []db.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, nil, err
	}

	var nextToken *string
	if len(messages) > limit {
		last := messages[limit-1]
		token, err := pagination.Encode(pagination.At(last.ID, last.CreatedAt))
		if err != nil {
			return nil, nil, fmt.Errorf("encode next cursor: %w", err)
		}
		nextToken = &token
		messages = messages[:limit]
	}
	return messages, nextToken, nil
}
