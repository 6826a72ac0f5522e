package models

import "time"

// Category is a discovery tag owned by a community.
type Category struct {
	ID          string    `db:"id" json:"_id"`
	Name        string    `db:"name" json:"name"`
	CommunityID string    `db:"community_id" json:"community"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
