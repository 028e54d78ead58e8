package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/agriguru/agriguru-backend/pkg/geo"
)

// Officer is an Agricultural Development Officer farmers can contact
// for in-person guidance.
type Officer struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Designation    string    `json:"designation"`
	District       string    `json:"district"`
	Office         string    `json:"office"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Address        string    `json:"address"`
	Specialization string    `json:"specialization"`
	Location       Location  `json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NearbyOfficer is an officer annotated with the distance from the
// requester, in kilometers rounded to two decimals.
type NearbyOfficer struct {
	Officer
	Distance float64 `json:"distance"`
}

type CreateOfficerRequest struct {
	Name           string   `json:"name"`
	Designation    string   `json:"designation"`
	District       string   `json:"district"`
	Office         string   `json:"office"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	Address        string   `json:"address"`
	Specialization string   `json:"specialization"`
	Location       Location `json:"location"`
}

type UpdateOfficerRequest struct {
	Name           *string   `json:"name,omitempty"`
	Designation    *string   `json:"designation,omitempty"`
	District       *string   `json:"district,omitempty"`
	Office         *string   `json:"office,omitempty"`
	Phone          *string   `json:"phone,omitempty"`
	Email          *string   `json:"email,omitempty"`
	Address        *string   `json:"address,omitempty"`
	Specialization *string   `json:"specialization,omitempty"`
	Location       *Location `json:"location,omitempty"`
}

type NearbyQuery struct {
	Latitude    float64
	Longitude   float64
	MaxDistance float64 // km
}

// DefaultMaxDistance bounds a nearby search when the client does not
// say how far the farmer is willing to travel.
const DefaultMaxDistance = 50.0

func (r *CreateOfficerRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(r.District) == "" {
		return fmt.Errorf("district is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("phone is required")
	}
	if !geo.ValidCoordinates(r.Location.Latitude, r.Location.Longitude) {
		return fmt.Errorf("invalid coordinates")
	}
	return nil
}

func (q *NearbyQuery) Validate() error {
	if !geo.ValidCoordinates(q.Latitude, q.Longitude) {
		return fmt.Errorf("invalid coordinates")
	}
	if q.MaxDistance <= 0 {
		return fmt.Errorf("distance must be positive")
	}
	return nil
}
