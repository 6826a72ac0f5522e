package models

import (
	"time"

	"github.com/lib/pq"
)

// Chat is either a direct (two-member) or a group conversation.
type Chat struct {
	ID              string         `db:"id" json:"_id"`
	ChatName        string         `db:"chat_name" json:"chatName"`
	IsGroupChat     bool           `db:"is_group_chat" json:"isGroupChat"`
	GroupAdminID    *string        `db:"group_admin_id" json:"groupAdmin,omitempty"`
	Avatar          string         `db:"avatar" json:"avatar,omitempty"`
	PairKey         *string        `db:"pair_key" json:"-"`
	LatestMessageID *string        `db:"latest_message_id" json:"latestMessage,omitempty"`
	Count           int            `db:"count" json:"count"`
	Users           pq.StringArray `db:"users" json:"users"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// HasMember reports whether userID belongs to the chat.
func (c Chat) HasMember(userID string) bool {
	for _, id := range c.Users {
		if id == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether userID administers the group.
func (c Chat) IsAdmin(userID string) bool {
	return c.GroupAdminID != nil && *c.GroupAdminID == userID
}

// ChatView is the populated form returned to clients.
type ChatView struct {
	ID            string        `json:"_id"`
	ChatName      string        `json:"chatName"`
	IsGroupChat   bool          `json:"isGroupChat"`
	Avatar        string        `json:"avatar,omitempty"`
	Users         []UserSummary `json:"users"`
	GroupAdmin    *UserSummary  `json:"groupAdmin,omitempty"`
	LatestMessage *Message      `json:"latestMessage,omitempty"`
	Count         int           `json:"count"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}
