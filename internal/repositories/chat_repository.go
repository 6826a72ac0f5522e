package repositories

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"social-service/internal/models"
)

// ChatRepository abstracts chat and membership persistence.
type ChatRepository interface {
	GetByID(ctx context.Context, chatID string) (models.Chat, error)
	GetByPairKey(ctx context.Context, pairKey string) (models.Chat, error)
	CreateDirect(ctx context.Context, chat *models.Chat) error
	CreateGroup(ctx context.Context, chat *models.Chat) error
	ListForUser(ctx context.Context, userID string) ([]models.Chat, error)
	IsMember(ctx context.Context, chatID string, userID string) (bool, error)
	Rename(ctx context.Context, chatID string, name string) error
	SetAvatar(ctx context.Context, chatID string, avatar string) error
	AddMember(ctx context.Context, chatID string, userID string) error
	RemoveMember(ctx context.Context, chatID string, userID string) error
	SetLatestMessage(ctx context.Context, chatID string, messageID string, at time.Time) error
	SetCount(ctx context.Context, chatID string, count int) error
	Delete(ctx context.Context, chatID string) error
}

// ChatRepo is a sqlx implementation of ChatRepository.
type ChatRepo struct {
	db *sqlx.DB
}

// NewChatRepo constructs a ChatRepo.
func NewChatRepo(db *sqlx.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

const chatSelect = `SELECT c.id, c.chat_name, c.is_group_chat, c.group_admin_id, c.avatar, c.pair_key,
        c.latest_message_id, c.count, c.created_at, c.updated_at,
        COALESCE((SELECT array_agg(cm.user_id ORDER BY cm.joined_at, cm.user_id) FROM chat_members cm WHERE cm.chat_id = c.id), '{}') AS users
    FROM chats c`

// GetByID fetches a chat with its member ids.
func (r *ChatRepo) GetByID(ctx context.Context, chatID string) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, chatSelect+` WHERE c.id=$1`, chatID)
	return chat, notFound(err)
}

// GetByPairKey fetches the direct chat for a sorted member pair.
func (r *ChatRepo) GetByPairKey(ctx context.Context, pairKey string) (models.Chat, error) {
	var chat models.Chat
	err := r.db.GetContext(ctx, &chat, chatSelect+` WHERE c.pair_key=$1`, pairKey)
	return chat, notFound(err)
}

// CreateDirect inserts a direct chat and both members. A concurrent insert of the
// same pair key yields ErrDuplicate.
func (r *ChatRepo) CreateDirect(ctx context.Context, chat *models.Chat) error {
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `INSERT INTO chats (id, chat_name, is_group_chat, pair_key) VALUES ($1, $2, FALSE, $3)
            RETURNING created_at, updated_at`, chat.ID, chat.ChatName, chat.PairKey).
			Scan(&chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return err
		}
		return insertMembers(ctx, tx, chat.ID, chat.Users)
	})
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// CreateGroup inserts a group chat and its members atomically.
func (r *ChatRepo) CreateGroup(ctx context.Context, chat *models.Chat) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `INSERT INTO chats (id, chat_name, is_group_chat, group_admin_id, avatar) VALUES ($1, $2, TRUE, $3, $4)
            RETURNING created_at, updated_at`, chat.ID, chat.ChatName, chat.GroupAdminID, chat.Avatar).
			Scan(&chat.CreatedAt, &chat.UpdatedAt); err != nil {
			return err
		}
		return insertMembers(ctx, tx, chat.ID, chat.Users)
	})
}

func insertMembers(ctx context.Context, tx *sqlx.Tx, chatID string, userIDs []string) error {
	for _, id := range userIDs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, chatID, id); err != nil {
			return err
		}
	}
	return nil
}

// ListForUser returns the user's chats, most recently updated first.
func (r *ChatRepo) ListForUser(ctx context.Context, userID string) ([]models.Chat, error) {
	chats := []models.Chat{}
	err := r.db.SelectContext(ctx, &chats, chatSelect+`
        WHERE EXISTS (SELECT 1 FROM chat_members m WHERE m.chat_id = c.id AND m.user_id=$1)
        ORDER BY c.updated_at DESC, c.id DESC`, userID)
	return chats, err
}

// IsMember checks membership.
func (r *ChatRepo) IsMember(ctx context.Context, chatID string, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id=$1 AND user_id=$2)`, chatID, userID)
	return exists, err
}

func (r *ChatRepo) Rename(ctx context.Context, chatID string, name string) error {
	return r.touch(ctx, `UPDATE chats SET chat_name=$2, updated_at=NOW() WHERE id=$1`, chatID, name)
}

func (r *ChatRepo) SetAvatar(ctx context.Context, chatID string, avatar string) error {
	return r.touch(ctx, `UPDATE chats SET avatar=$2, updated_at=NOW() WHERE id=$1`, chatID, avatar)
}

// AddMember inserts a member row. An existing row yields ErrDuplicate.
func (r *ChatRepo) AddMember(ctx context.Context, chatID string, userID string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, chatID, userID)
		if err != nil {
			return err
		}
		added, err := affected(res)
		if err != nil {
			return err
		}
		if !added {
			return ErrDuplicate
		}
		_, err = tx.ExecContext(ctx, `UPDATE chats SET updated_at=NOW() WHERE id=$1`, chatID)
		return err
	})
}

// RemoveMember deletes a member row. A missing row yields ErrNotFound.
func (r *ChatRepo) RemoveMember(ctx context.Context, chatID string, userID string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM chat_members WHERE chat_id=$1 AND user_id=$2`, chatID, userID)
		if err != nil {
			return err
		}
		removed, err := affected(res)
		if err != nil {
			return err
		}
		if !removed {
			return ErrNotFound
		}
		_, err = tx.ExecContext(ctx, `UPDATE chats SET updated_at=NOW() WHERE id=$1`, chatID)
		return err
	})
}

// SetLatestMessage points the chat at its newest message. Concurrent sends are
// last-writer-wins; updated_at never moves backwards.
func (r *ChatRepo) SetLatestMessage(ctx context.Context, chatID string, messageID string, at time.Time) error {
	return r.touch(ctx, `UPDATE chats SET latest_message_id=$2, updated_at=GREATEST(updated_at, $3) WHERE id=$1`, chatID, messageID, at)
}

// SetCount stores the chat's unread counter. It does not bump updated_at so the
// chat list order only follows activity.
func (r *ChatRepo) SetCount(ctx context.Context, chatID string, count int) error {
	return r.touch(ctx, `UPDATE chats SET count=$2 WHERE id=$1`, chatID, count)
}

// Delete removes a chat; members and messages cascade.
func (r *ChatRepo) Delete(ctx context.Context, chatID string) error {
	return r.touch(ctx, `DELETE FROM chats WHERE id=$1`, chatID)
}

func (r *ChatRepo) touch(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return mustAffect(res)
}
