package http

import (
	"time"

	"github.com/campuslink/facility-booking-backend/internal/facility"
)

// ListFacilitiesRequest defines query parameters for listing facilities.
type ListFacilitiesRequest struct {
	Type   string `form:"type" binding:"omitempty"`
	Campus string `form:"campus" binding:"omitempty,oneof=north south"`
	Search string `form:"search"`
}

// NearestRequest defines query parameters for the nearest-facility lookup.
type NearestRequest struct {
	Lat   *float64 `form:"lat" binding:"required"`
	Lng   *float64 `form:"lng" binding:"required"`
	Limit int      `form:"limit"`
	Type  string   `form:"type"`
}

// FacilityResponse is the API shape of a facility.
type FacilityResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Building    string    `json:"building"`
	Floor       string    `json:"floor"`
	Campus      string    `json:"campus"`
	Latitude    *float64  `json:"latitude"`
	Longitude   *float64  `json:"longitude"`
	Hours       string    `json:"hours"`
	ImageURL    string    `json:"image_url"`
	MaxCapacity int       `json:"max_capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FacilityTag is a brief representation of a facility.
type FacilityTag struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// NearbyFacilityResponse adds the rough distance to a facility.
type NearbyFacilityResponse struct {
	FacilityResponse
	DistanceKM float64 `json:"distance_km"`
}

func NewFacilityResponse(f *facility.Facility) FacilityResponse {
	return FacilityResponse{
		ID:          f.ID,
		Name:        f.Name,
		Category:    string(f.Category),
		Description: f.Description,
		Building:    f.Building,
		Floor:       f.Floor,
		Campus:      f.Campus,
		Latitude:    f.Latitude,
		Longitude:   f.Longitude,
		Hours:       f.Hours,
		ImageURL:    f.ImageURL,
		MaxCapacity: f.MaxCapacity,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// CreateFacilityRequest defines the payload for administrative seeding.
type CreateFacilityRequest struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Description string   `json:"description"`
	Building    string   `json:"building"`
	Floor       string   `json:"floor"`
	Campus      string   `json:"campus" binding:"omitempty,oneof=north south"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Hours       string   `json:"hours"`
	ImageURL    string   `json:"image_url"`
	MaxCapacity int      `json:"max_capacity" binding:"omitempty,min=1"`
}

// UpdateFacilityRequest defines the payload for facility updates.
type UpdateFacilityRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Building    *string `json:"building"`
	Floor       *string `json:"floor"`
	Hours       *string `json:"hours"`
	ImageURL    *string `json:"image_url"`
	MaxCapacity *int    `json:"max_capacity" binding:"omitempty,min=1"`
}
