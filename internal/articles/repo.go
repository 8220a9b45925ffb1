package articles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quillfeed/quillfeed/internal/platform/db"
	"github.com/quillfeed/quillfeed/internal/shared"
)

// Repository defines persistence operations for articles.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Create(ctx context.Context, ownerID int64, title, body string) (int64, error)
	Get(ctx context.Context, id int64) (*Article, error)
	ListRecent(ctx context.Context, limit int) ([]FeedItem, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Article, error)
	Update(ctx context.Context, id int64, title, body string) error
	Delete(ctx context.Context, id int64) error
	GetAuthor(ctx context.Context, userID int64) (*Author, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// WithTx runs fn against a repository bound to a single transaction.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Create(ctx context.Context, ownerID int64, title, body string) (int64, error) {
	const query = `
		INSERT INTO articles (title, body, user_id)
		VALUES ($1, $2, $3)
		RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, query, title, body, ownerID).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Article, error) {
	const query = `SELECT id, title, body, user_id, created_at FROM articles WHERE id = $1`
	var a Article
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Title, &a.Body, &a.UserID, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]FeedItem, error) {
	const query = `
		SELECT a.id, a.title, a.body, a.user_id, u.username, a.created_at
		FROM articles a
		JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []FeedItem
	for rows.Next() {
		var item FeedItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Body, &item.UserID, &item.AuthorUsername, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int64) ([]Article, error) {
	const query = `SELECT id, title, body, user_id, created_at FROM articles WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.UserID, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repository) Update(ctx context.Context, id int64, title, body string) error {
	tag, err := r.db.Exec(ctx, `UPDATE articles SET title = $2, body = $3 WHERE id = $1`, id, title, body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GetAuthor resolves an article owner to their public identity.
func (r *repository) GetAuthor(ctx context.Context, userID int64) (*Author, error) {
	const query = `SELECT id, username, first_name, last_name FROM users WHERE id = $1`
	var author Author
	err := r.db.QueryRow(ctx, query, userID).Scan(&author.ID, &author.Username, &author.FirstName, &author.LastName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &author, nil
}
