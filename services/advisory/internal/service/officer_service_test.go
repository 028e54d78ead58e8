package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agriguru/agriguru-backend/services/advisory/internal/domain"
	"github.com/agriguru/agriguru-backend/services/advisory/internal/service"
)

// ---------- Mocks ----------

type mockOfficerRepo struct {
	officers []*domain.Officer
	listErr  error
}

func (m *mockOfficerRepo) List(context.Context) ([]*domain.Officer, error) {
	return m.officers, m.listErr
}

func (m *mockOfficerRepo) FindByID(_ context.Context, id int64) (*domain.Officer, error) {
	for _, o := range m.officers {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (m *mockOfficerRepo) Create(_ context.Context, req *domain.CreateOfficerRequest) (*domain.Officer, error) {
	o := &domain.Officer{
		ID:       int64(len(m.officers) + 1),
		Name:     req.Name,
		District: req.District,
		Phone:    req.Phone,
		Location: req.Location,
	}
	m.officers = append(m.officers, o)
	return o, nil
}

func (m *mockOfficerRepo) Update(_ context.Context, id int64, req *domain.UpdateOfficerRequest) (*domain.Officer, error) {
	for _, o := range m.officers {
		if o.ID == id {
			if req.Name != nil {
				o.Name = *req.Name
			}
			return o, nil
		}
	}
	return nil, domain.ErrOfficerNotFound
}

func (m *mockOfficerRepo) Delete(_ context.Context, id int64) error {
	for i, o := range m.officers {
		if o.ID == id {
			m.officers = append(m.officers[:i], m.officers[i+1:]...)
			return nil
		}
	}
	return domain.ErrOfficerNotFound
}

// Officers around Kampala for distance assertions.
func kampalaDirectory() []*domain.Officer {
	return []*domain.Officer{
		{ID: 1, Name: "Central Office", Location: domain.Location{Latitude: 0.3476, Longitude: 32.5825}},
		{ID: 2, Name: "Entebbe Office", Location: domain.Location{Latitude: 0.0512, Longitude: 32.4637}},   // ~35 km
		{ID: 3, Name: "Jinja Office", Location: domain.Location{Latitude: 0.4244, Longitude: 33.2041}},     // ~70 km
		{ID: 4, Name: "Mbarara Office", Location: domain.Location{Latitude: -0.6072, Longitude: 30.6545}},  // ~235 km
	}
}

// ---------- Nearby ----------

func TestNearbyFiltersAndSorts(t *testing.T) {
	svc := service.NewOfficerService(&mockOfficerRepo{officers: kampalaDirectory()})

	nearby, err := svc.Nearby(context.Background(), &domain.NearbyQuery{
		Latitude:    0.3476,
		Longitude:   32.5825,
		MaxDistance: domain.DefaultMaxDistance,
	})
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}

	if len(nearby) != 2 {
		t.Fatalf("expected 2 officers within 50km, got %d", len(nearby))
	}
	if nearby[0].Name != "Central Office" || nearby[1].Name != "Entebbe Office" {
		t.Fatalf("expected closest-first ordering, got %s then %s", nearby[0].Name, nearby[1].Name)
	}
	if nearby[0].Distance != 0 {
		t.Errorf("distance to self should be 0, got %v", nearby[0].Distance)
	}
	if nearby[1].Distance < 30 || nearby[1].Distance > 40 {
		t.Errorf("Entebbe should be roughly 35 km away, got %v", nearby[1].Distance)
	}
}

func TestNearbyWiderRadius(t *testing.T) {
	svc := service.NewOfficerService(&mockOfficerRepo{officers: kampalaDirectory()})

	nearby, err := svc.Nearby(context.Background(), &domain.NearbyQuery{
		Latitude:    0.3476,
		Longitude:   32.5825,
		MaxDistance: 100,
	})
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(nearby) != 3 {
		t.Fatalf("expected 3 officers within 100km, got %d", len(nearby))
	}
}

func TestNearbyEmptyDirectory(t *testing.T) {
	svc := service.NewOfficerService(&mockOfficerRepo{})

	nearby, err := svc.Nearby(context.Background(), &domain.NearbyQuery{
		Latitude:    0.3476,
		Longitude:   32.5825,
		MaxDistance: 50,
	})
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if nearby == nil || len(nearby) != 0 {
		t.Fatalf("expected empty slice, got %v", nearby)
	}
}

func TestNearbyInvalidCoordinates(t *testing.T) {
	svc := service.NewOfficerService(&mockOfficerRepo{officers: kampalaDirectory()})

	if _, err := svc.Nearby(context.Background(), &domain.NearbyQuery{
		Latitude:    95.0,
		Longitude:   32.5825,
		MaxDistance: 50,
	}); err == nil {
		t.Fatal("latitude out of range should be rejected")
	}
}

// ---------- CRUD ----------

func TestGetOfficerNotFound(t *testing.T) {
	svc := service.NewOfficerService(&mockOfficerRepo{})

	_, err := svc.Get(context.Background(), 99)
	if !errors.Is(err, domain.ErrOfficerNotFound) {
		t.Fatalf("expected ErrOfficerNotFound, got %v", err)
	}
}

func TestCreateOfficerValidation(t *testing.T) {
	svc := service.NewOfficerService(&mockOfficerRepo{})

	_, err := svc.Create(context.Background(), &domain.CreateOfficerRequest{
		Name: "No District",
	})
	if err == nil {
		t.Fatal("missing district should be rejected")
	}

	o, err := svc.Create(context.Background(), &domain.CreateOfficerRequest{
		Name:     "Asha Devi",
		District: "Kampala",
		Phone:    "+256700000000",
		Location: domain.Location{Latitude: 0.3476, Longitude: 32.5825},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ID == 0 {
		t.Fatal("created officer should have an id")
	}
}
