package areas

import (
	"context"
	"fmt"
)

// Service encapsulates area-related business logic, most importantly the
// ownership lookup ticket resolution depends on.
type Service struct {
	repo AreaRepository
}

func NewService(r AreaRepository) *Service {
	return &Service{repo: r}
}

// OwnerOf returns the sub of the designated owner of the area. An area with
// an empty owner slot is reported as an error rather than an empty sub, so
// a ticket routed there can never be resolved by accident.
func (s *Service) OwnerOf(ctx context.Context, areaID string) (string, error) {
	a, err := s.repo.Get(ctx, areaID)
	if err != nil {
		return "", err
	}
	if a.OwnerSub == "" {
		return "", fmt.Errorf("area %s has no designated owner", areaID)
	}
	return a.OwnerSub, nil
}

func (s *Service) Upsert(ctx context.Context, a *Area) error {
	if a.ID == "" {
		return fmt.Errorf("area id required")
	}
	return s.repo.Upsert(ctx, a)
}

func (s *Service) Get(ctx context.Context, id string) (*Area, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Area, error) {
	return s.repo.List(ctx)
}
