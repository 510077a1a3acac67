/*
Package feed implements the data-access layer for the social surface:
user accounts, posts, and comments, backed by PostgreSQL.

The JSON tags on the models double as the REST response shape and the payload
shape of the relayed new_post / new_comment events, so a post arrives at
connected clients exactly as the creating request saw it.
*/
package feed

import "time"

// User is one account row. PasswordHash is never serialized.
type User struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	PasswordHash  string    `json:"-"`
	OAuthProvider string    `json:"-"`
	OAuthSubject  string    `json:"-"`
	Role          string    `json:"role"`
	AvatarKey     string    `json:"avatarKey,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Post is one post row, joined with the author's display name.
type Post struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"authorName"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Comment is one comment row, joined with the author's display name.
type Comment struct {
	ID         string    `json:"id"`
	PostID     string    `json:"postId"`
	UserID     string    `json:"userId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Account roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
