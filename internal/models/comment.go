package models

import (
	"time"

	"github.com/lib/pq"
)

// Comment belongs to a post. A reply points at a root comment and never has replies of its own.
type Comment struct {
	ID              string         `db:"id" json:"_id"`
	PostID          string         `db:"post_id" json:"post"`
	UserID          string         `db:"user_id" json:"user"`
	Text            string         `db:"text" json:"text"`
	ParentCommentID *string        `db:"parent_comment_id" json:"parentComment,omitempty"`
	Likes           pq.StringArray `db:"likes" json:"likes"`
	CreatedAt       time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updatedAt"`
}

// IsRoot reports whether the comment is top-level.
func (c Comment) IsRoot() bool {
	return c.ParentCommentID == nil
}
