package articles

import (
	"context"
	"fmt"
	"strings"

	"github.com/quillfeed/quillfeed/internal/shared"
)

// FeedLimit caps the number of articles on the global feed.
const FeedLimit = 100

// Service enforces the article lifecycle rules: anyone authenticated may
// create, only the owner may update or delete.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create persists a new article owned by actorID.
func (s *Service) Create(ctx context.Context, actorID int64, title, body string) (int64, error) {
	if actorID == 0 {
		return 0, shared.ErrForbidden
	}
	if errs := validateContent(title, body); len(errs) > 0 {
		return 0, errs
	}
	id, err := s.repo.Create(ctx, actorID, title, body)
	if err != nil {
		return 0, fmt.Errorf("create article: %w", err)
	}
	return id, nil
}

// Get fetches a single article, shared.ErrNotFound when missing.
func (s *Service) Get(ctx context.Context, id int64) (*Article, error) {
	return s.repo.Get(ctx, id)
}

// ListRecent returns the newest articles, most recent first, never more
// than FeedLimit rows.
func (s *Service) ListRecent(ctx context.Context) ([]FeedItem, error) {
	return s.repo.ListRecent(ctx, FeedLimit)
}

// ListByOwner returns all articles owned by ownerID.
func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]Article, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// GetAuthor resolves a user id to its public author record.
func (s *Service) GetAuthor(ctx context.Context, userID int64) (*Author, error) {
	return s.repo.GetAuthor(ctx, userID)
}

// Update rewrites title and body iff actorID owns the article. The
// ownership check and the write run in one transaction.
func (s *Service) Update(ctx context.Context, id, actorID int64, title, body string) error {
	if errs := validateContent(title, body); len(errs) > 0 {
		return errs
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := authorizeMutation(ctx, repo, id, actorID); err != nil {
			return err
		}
		return repo.Update(ctx, id, title, body)
	})
}

// Delete removes the article iff actorID owns it. Deletion is permanent.
func (s *Service) Delete(ctx context.Context, id, actorID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := authorizeMutation(ctx, repo, id, actorID); err != nil {
			return err
		}
		return repo.Delete(ctx, id)
	})
}

// authorizeMutation allows a mutation iff the acting identity is
// authenticated and equals the article owner.
func authorizeMutation(ctx context.Context, repo Repository, articleID, actorID int64) error {
	article, err := repo.Get(ctx, articleID)
	if err != nil {
		return err
	}
	if actorID == 0 || article.UserID != actorID {
		return shared.ErrForbidden
	}
	return nil
}

func validateContent(title, body string) shared.FieldErrors {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(title) == "" {
		errs["title"] = "Title is required"
	}
	if strings.TrimSpace(body) == "" {
		errs["body"] = "Body is required"
	}
	return errs
}
