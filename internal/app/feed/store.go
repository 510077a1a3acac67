package feed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pulsegram/internal/pkg/randx"
)

// Store wraps the connection pool with the queries the handler layer needs.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore constructs a Store on top of an initialized pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// --- Users ---

// CreateUserParams carries the fields for a password-based registration.
type CreateUserParams struct {
	Name         string
	Email        string
	PasswordHash string
}

const userColumns = `id, name, COALESCE(email, ''), COALESCE(password_hash, ''),
	COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), role, avatar_key, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.OAuthProvider, &u.OAuthSubject, &u.Role, &u.AvatarKey, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts a password-based account and returns the stored row.
func (s *Store) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		randx.EntityID(), params.Name, params.Email, params.PasswordHash)

	return scanUser(row)
}

// GetUserByEmail fetches an account by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetUserByID fetches an account by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// UpsertOAuthUser finds the account bound to (provider, subject), creating it
// on first sign-in. Name and email are refreshed from the provider profile.
func (s *Store) UpsertOAuthUser(ctx context.Context, provider, subject, name, email string) (User, error) {
	var emailArg any
	if email != "" {
		emailArg = email
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, oauth_provider, oauth_subject)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (oauth_provider, oauth_subject) WHERE oauth_provider IS NOT NULL
		DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		RETURNING `+userColumns,
		randx.EntityID(), name, emailArg, provider, subject)

	return scanUser(row)
}

// UpdateUserName changes the display name shown on posts and presence.
func (s *Store) UpdateUserName(ctx context.Context, id, name string) (User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, name)

	return scanUser(row)
}

// UpdateUserAvatar records the storage key of the user's uploaded avatar.
func (s *Store) UpdateUserAvatar(ctx context.Context, id, avatarKey string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET avatar_key = $2, updated_at = now() WHERE id = $1`, id, avatarKey)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountUsers returns the total number of accounts.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.countRows(ctx, "users")
}

// --- Posts ---

const postColumns = `p.id, p.user_id, u.name, p.title, p.content, p.created_at, p.updated_at`

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.UserID, &p.AuthorName, &p.Title, &p.Content, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePost inserts a post and returns it with the author name resolved,
// ready for the REST response and the real-time relay.
func (s *Store) CreatePost(ctx context.Context, userID, title, content string) (Post, error) {
	row := s.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO posts (id, user_id, title, content)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT `+postColumns+`
		FROM inserted p JOIN users u ON u.id = p.user_id`,
		randx.EntityID(), userID, title, content)

	return scanPost(row)
}

// GetPost fetches one post by id.
func (s *Store) GetPost(ctx context.Context, id string) (Post, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.user_id
		WHERE p.id = $1`, id)

	return scanPost(row)
}

// ListPosts returns all posts, newest first.
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts p JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	return posts, rows.Err()
}

// UpdatePost rewrites a post's title and content.
func (s *Store) UpdatePost(ctx context.Context, id, title, content string) (Post, error) {
	row := s.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE posts SET title = $2, content = $3, updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+postColumns+`
		FROM updated p JOIN users u ON u.id = p.user_id`,
		id, title, content)

	return scanPost(row)
}

// DeletePost removes a post; its comments cascade away with it.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountPosts returns the total number of posts.
func (s *Store) CountPosts(ctx context.Context) (int64, error) {
	return s.countRows(ctx, "posts")
}

// --- Comments ---

const commentColumns = `c.id, c.post_id, c.user_id, u.name, c.text, c.created_at, c.updated_at`

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.UserID, &c.AuthorName, &c.Text, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// CreateComment inserts a comment and returns it with the author name resolved.
func (s *Store) CreateComment(ctx context.Context, postID, userID, text string) (Comment, error) {
	row := s.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO comments (id, post_id, user_id, text)
			VALUES ($1, $2, $3, $4)
			RETURNING *
		)
		SELECT `+commentColumns+`
		FROM inserted c JOIN users u ON u.id = c.user_id`,
		randx.EntityID(), postID, userID, text)

	return scanComment(row)
}

// GetComment fetches one comment by id.
func (s *Store) GetComment(ctx context.Context, id string) (Comment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`, id)

	return scanComment(row)
}

// ListComments returns a post's comments, oldest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+commentColumns+`
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

// UpdateComment rewrites a comment's text.
func (s *Store) UpdateComment(ctx context.Context, id, text string) (Comment, error) {
	row := s.pool.QueryRow(ctx, `
		WITH updated AS (
			UPDATE comments SET text = $2, updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT `+commentColumns+`
		FROM updated c JOIN users u ON u.id = c.user_id`,
		id, text)

	return scanComment(row)
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// CountComments returns the total number of comments.
func (s *Store) CountComments(ctx context.Context) (int64, error) {
	return s.countRows(ctx, "comments")
}

// countRows runs COUNT(*) against one of the fixed table names.
func (s *Store) countRows(ctx context.Context, table string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&count)
	return count, err
}
