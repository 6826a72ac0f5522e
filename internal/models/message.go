package models

import "time"

// Message is an immutable chat message.
type Message struct {
	ID        string    `db:"id" json:"_id"`
	ChatID    string    `db:"chat_id" json:"chat"`
	SenderID  string    `db:"sender_id" json:"sender"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// MessageView carries the display joins a client needs to render a message.
type MessageView struct {
	ID        string      `json:"_id"`
	Content   string      `json:"content"`
	Sender    UserSummary `json:"sender"`
	Chat      *ChatView   `json:"chat,omitempty"`
	ChatID    string      `json:"chatId"`
	CreatedAt time.Time   `json:"createdAt"`
}
