package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	DefaultAvatar = "https://img.freepik.com/premium-vector/man-avatar-profile-picture-isolated-background-avatar-profile-picture-man_1293239-4866.jpg"
)

// User is a registered identity.
type User struct {
	ID           string         `db:"id" json:"_id"`
	Name         string         `db:"name" json:"name"`
	Username     string         `db:"username" json:"username"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Avatar       string         `db:"avatar" json:"avatar"`
	Role         string         `db:"role" json:"role"`
	Interests    pq.StringArray `db:"interests" json:"interests"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updatedAt"`
}

// UserSummary is the display form embedded in chats, messages and listings.
type UserSummary struct {
	ID       string `db:"id" json:"_id"`
	Name     string `db:"name" json:"name"`
	Username string `db:"username" json:"username"`
	Avatar   string `db:"avatar" json:"avatar"`
	Email    string `db:"email" json:"email,omitempty"`
}

// Summary projects the public display fields.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Username: u.Username, Avatar: u.Avatar, Email: u.Email}
}

// UserUpdate holds optional profile changes.
type UserUpdate struct {
	Name     *string
	Username *string
	Email    *string
	Avatar   *string
}

// Empty reports whether no field is set.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Username == nil && u.Email == nil && u.Avatar == nil
}
