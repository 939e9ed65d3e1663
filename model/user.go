package model

import "time"

// User holds the local user data relevant to the application (outside of
// the identity provider)
type User struct {
	Id          string    `db:"firebase_id" json:"id"`
	DisplayName string    `db:"display_name" json:"displayName"`
	Karma       int64     `db:"karma" json:"karma"`
	IsBanned    bool      `db:"is_banned" json:"isBanned"`
	IsAdmin     bool      `db:"is_admin" json:"isAdmin"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type DisplayableUser struct {
	Id          string `json:"id,omitempty"`
	DisplayName string `json:"displayName"`
}
