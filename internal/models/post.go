package models

import (
	"time"

	"github.com/lib/pq"
)

// Post is authored by a user inside a community.
type Post struct {
	ID          string         `db:"id" json:"_id"`
	CommunityID string         `db:"community_id" json:"community"`
	UserID      string         `db:"user_id" json:"user"`
	Content     string         `db:"content" json:"content"`
	Likes       pq.StringArray `db:"likes" json:"likes"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// LikeResult is returned by like toggles on posts and comments.
type LikeResult struct {
	Liked bool     `json:"liked"`
	Likes []string `json:"likes"`
}
