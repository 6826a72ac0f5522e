package models

import (
	"time"

	"github.com/lib/pq"
)

// Community is a named group with a creator, moderators, members and category tags.
type Community struct {
	ID         string         `db:"id" json:"_id"`
	Name       string         `db:"name" json:"name"`
	Bio        string         `db:"bio" json:"bio"`
	Avatar     string         `db:"avatar" json:"avatar,omitempty"`
	CreatedBy  string         `db:"created_by" json:"createdBy"`
	Guidelines pq.StringArray `db:"guidelines" json:"guidelines"`
	Categories pq.StringArray `db:"categories" json:"categories"`
	Users      pq.StringArray `db:"users" json:"users"`
	Moderators pq.StringArray `db:"moderators" json:"moderators"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updatedAt"`
}

func (c Community) HasMember(userID string) bool {
	return contains(c.Users, userID)
}

func (c Community) HasModerator(userID string) bool {
	return contains(c.Moderators, userID)
}

func (c Community) IsCreator(userID string) bool {
	return c.CreatedBy == userID
}

// CanModerate is true for the creator and listed moderators.
func (c Community) CanModerate(userID string) bool {
	return c.IsCreator(userID) || c.HasModerator(userID)
}

// CommunityUpdate holds optional field changes; nil means untouched.
type CommunityUpdate struct {
	Name       *string
	Bio        *string
	Avatar     *string
	Guidelines []string
	Categories []string
	Moderators []string
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
