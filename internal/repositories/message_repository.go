package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"social-service/internal/models"
	"social-service/internal/pagination"
)

// MessageRepository defines interactions for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByIDs(ctx context.Context, ids []string) ([]models.Message, error)
	Latest(ctx context.Context, chatID string) (models.Message, error)
	ListAfter(ctx context.Context, chatID string, after *pagination.Cursor, limit int) ([]models.Message, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

const messageColumns = `id, chat_id, sender_id, content, created_at`

// Create stores a message and fills in its creation time.
func (r *MessageRepo) Create(ctx context.Context, msg *models.Message) error {
	return r.db.QueryRowxContext(ctx, `INSERT INTO messages (id, chat_id, sender_id, content) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		msg.ID, msg.ChatID, msg.SenderID, msg.Content).Scan(&msg.CreatedAt)
}

// GetByIDs loads several messages at once. Missing ids are skipped.
func (r *MessageRepo) GetByIDs(ctx context.Context, ids []string) ([]models.Message, error) {
	msgs := []models.Message{}
	if len(ids) == 0 {
		return msgs, nil
	}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE id = ANY($1)`, pq.Array(ids))
	return msgs, err
}

// Latest returns the newest message of a chat.
func (r *MessageRepo) Latest(ctx context.Context, chatID string) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE chat_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`, chatID)
	return msg, notFound(err)
}

// ListAfter returns up to limit messages in ascending order, strictly after the cursor.
func (r *MessageRepo) ListAfter(ctx context.Context, chatID string, after *pagination.Cursor, limit int) ([]models.Message, error) {
	msgs := []models.Message{}
	if after == nil {
		err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE chat_id=$1
            ORDER BY created_at ASC, id ASC LIMIT $2`, chatID, limit)
		return msgs, err
	}
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+` FROM messages WHERE chat_id=$1
        AND (created_at, id) > ($2, $3)
        ORDER BY created_at ASC, id ASC LIMIT $4`, chatID, after.CreatedAt, after.ID, limit)
	return msgs, err
}
