package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/agriguru/agriguru-backend/pkg/geo"
	"github.com/agriguru/agriguru-backend/services/advisory/internal/domain"
	"github.com/agriguru/agriguru-backend/services/advisory/internal/repository"
)

type OfficerService interface {
	List(ctx context.Context) ([]*domain.Officer, error)
	Nearby(ctx context.Context, query *domain.NearbyQuery) ([]*domain.NearbyOfficer, error)
	Get(ctx context.Context, id int64) (*domain.Officer, error)
	Create(ctx context.Context, req *domain.CreateOfficerRequest) (*domain.Officer, error)
	Update(ctx context.Context, id int64, req *domain.UpdateOfficerRequest) (*domain.Officer, error)
	Delete(ctx context.Context, id int64) error
}

type officerService struct {
	repo repository.OfficerRepository
}

func NewOfficerService(repo repository.OfficerRepository) OfficerService {
	return &officerService{repo: repo}
}

func (s *officerService) List(ctx context.Context) ([]*domain.Officer, error) {
	return s.repo.List(ctx)
}

// Nearby returns officers within query.MaxDistance of the caller,
// closest first. The directory is small enough that computing every
// distance in memory beats shipping trigonometry into SQL.
func (s *officerService) Nearby(ctx context.Context, query *domain.NearbyQuery) ([]*domain.NearbyOfficer, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	officers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]*domain.NearbyOfficer, 0)
	for _, o := range officers {
		d := geo.Distance(query.Latitude, query.Longitude, o.Location.Latitude, o.Location.Longitude)
		if d <= query.MaxDistance {
			nearby = append(nearby, &domain.NearbyOfficer{
				Officer:  *o,
				Distance: math.Round(d*100) / 100,
			})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})
	return nearby, nil
}

func (s *officerService) Get(ctx context.Context, id int64) (*domain.Officer, error) {
	officer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if officer == nil {
		return nil, domain.ErrOfficerNotFound
	}
	return officer, nil
}

func (s *officerService) Create(ctx context.Context, req *domain.CreateOfficerRequest) (*domain.Officer, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return s.repo.Create(ctx, req)
}

func (s *officerService) Update(ctx context.Context, id int64, req *domain.UpdateOfficerRequest) (*domain.Officer, error) {
	if req.Location != nil && !geo.ValidCoordinates(req.Location.Latitude, req.Location.Longitude) {
		return nil, fmt.Errorf("validation failed: invalid coordinates")
	}
	return s.repo.Update(ctx, id, req)
}

func (s *officerService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
