package profiles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/shared"
)

// Repository defines persistence operations for profiles.
type Repository interface {
	GetUser(ctx context.Context, id int64) (*Profile, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) error
	CountUsers(ctx context.Context) (int64, error)
	CountArticles(ctx context.Context) (int64, error)
	CountArticlesByUser(ctx context.Context, userID int64) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// GetUser fetches a user's profile by id.
func (r *PGRepository) GetUser(ctx context.Context, id int64) (*Profile, error) {
	const query = `
		SELECT id, first_name, last_name, username, email,
		       COALESCE(instagram, ''), COALESCE(x, ''), COALESCE(facebook, ''), COALESCE(github, ''),
		       is_active, created_at, last_active_at
		FROM users
		WHERE id = $1`
	var p Profile
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.Username, &p.Email,
		&p.Instagram, &p.X, &p.Facebook, &p.GitHub,
		&p.IsActive, &p.CreatedAt, &p.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateProfile rewrites the editable fields and touches last_active_at.
// Username/email uniqueness stays constraint-enforced, same as registration.
func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) error {
	const query = `
		UPDATE users
		SET first_name = $2, last_name = $3, username = $4, email = $5,
		    instagram = NULLIF($6, ''), x = NULLIF($7, ''), facebook = NULLIF($8, ''), github = NULLIF($9, ''),
		    last_active_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id,
		update.FirstName, update.LastName, update.Username, update.Email,
		update.Instagram, update.X, update.Facebook, update.GitHub,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "users_username_key":
				return auth.ErrUsernameTaken
			case "users_email_key":
				return auth.ErrEmailTaken
			}
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountUsers returns the number of registered users.
func (r *PGRepository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountArticles returns the number of published articles.
func (r *PGRepository) CountArticles(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles`).Scan(&n)
	return n, err
}

// CountArticlesByUser returns the number of articles owned by userID.
func (r *PGRepository) CountArticlesByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles WHERE user_id = $1`).Scan(&n)
	return n, err
}

var _ Repository = (*PGRepository)(nil)
