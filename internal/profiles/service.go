package profiles

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/quillfeed/quillfeed/internal/shared"
)

// Service handles profile reads and owner-only profile edits.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetProfile returns the profile and its article count.
func (s *Service) GetProfile(ctx context.Context, id int64) (*Profile, int64, error) {
	profile, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountArticlesByUser(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return profile, count, nil
}

// UpdateProfile validates and persists the caller's own profile edits.
func (s *Service) UpdateProfile(ctx context.Context, actorID int64, update ProfileUpdate) error {
	if actorID == 0 {
		return shared.ErrForbidden
	}
	if errs := validateProfile(update); len(errs) > 0 {
		return errs
	}
	return s.repo.UpdateProfile(ctx, actorID, update)
}

// SiteStats gathers the about-page counts, both queries in flight at once.
func (s *Service) SiteStats(ctx context.Context) (Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountUsers(ctx)
		stats.Users = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountArticles(ctx)
		stats.Articles = n
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func validateProfile(update ProfileUpdate) shared.FieldErrors {
	errs := shared.FieldErrors{}
	if strings.TrimSpace(update.FirstName) == "" {
		errs["first_name"] = "First name is required"
	}
	if strings.TrimSpace(update.LastName) == "" {
		errs["last_name"] = "Last name is required"
	}
	if strings.TrimSpace(update.Username) == "" {
		errs["username"] = "Username is required"
	}
	if strings.TrimSpace(update.Email) == "" {
		errs["email"] = "Email is required"
	}
	return errs
}
