package facility

import (
	"context"
	"math"
	"sort"
	"strings"
)

type CreateRequest struct {
	Name        string
	Category    string
	Description string
	Building    string
	Floor       string
	Campus      string
	Latitude    *float64
	Longitude   *float64
	Hours       string
	ImageURL    string
	MaxCapacity int
}

type UpdateRequest struct {
	Name        *string
	Description *string
	Building    *string
	Floor       *string
	Hours       *string
	ImageURL    *string
	MaxCapacity *int
}

// NearbyFacility pairs a facility with its rough distance from a point.
type NearbyFacility struct {
	Facility *Facility
	KM       float64
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Facility, error)
	GetByID(ctx context.Context, id string) (*Facility, error)
	List(ctx context.Context, filter Filter) ([]*Facility, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Facility, error)
	Nearest(ctx context.Context, lat, lng float64, limit int, category string) ([]NearbyFacility, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Facility, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	cat := Category(req.Category)
	if !cat.IsValid() {
		return nil, ErrInvalidCategory
	}
	if req.Campus != "" && req.Campus != "north" && req.Campus != "south" {
		return nil, ErrInvalidCampus
	}
	if req.MaxCapacity < 1 {
		return nil, ErrInvalidCapacity
	}

	f := &Facility{
		Name:        strings.TrimSpace(req.Name),
		Category:    cat,
		Description: req.Description,
		Building:    req.Building,
		Floor:       req.Floor,
		Campus:      req.Campus,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Hours:       req.Hours,
		ImageURL:    req.ImageURL,
		MaxCapacity: req.MaxCapacity,
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Facility, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Facility, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Facility, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		f.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		f.Description = *req.Description
	}
	if req.Building != nil {
		f.Building = *req.Building
	}
	if req.Floor != nil {
		f.Floor = *req.Floor
	}
	if req.Hours != nil {
		f.Hours = *req.Hours
	}
	if req.ImageURL != nil {
		f.ImageURL = *req.ImageURL
	}
	if req.MaxCapacity != nil {
		if *req.MaxCapacity < 1 {
			return nil, ErrInvalidCapacity
		}
		f.MaxCapacity = *req.MaxCapacity
	}

	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Nearest returns up to limit facilities with coordinates, ordered by rough
// planar distance from the given point. Good enough at campus scale.
func (s *service) Nearest(ctx context.Context, lat, lng float64, limit int, category string) ([]NearbyFacility, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	facilities, err := s.repo.ListWithCoordinates(ctx, category)
	if err != nil {
		return nil, err
	}

	nearby := make([]NearbyFacility, 0, len(facilities))
	for _, f := range facilities {
		d := math.Sqrt(math.Pow(*f.Latitude-lat, 2)+math.Pow(*f.Longitude-lng, 2)) * 111 // degrees to rough km
		nearby = append(nearby, NearbyFacility{
			Facility: f,
			KM:       math.Round(d*1000) / 1000,
		})
	}

	sort.Slice(nearby, func(i, j int) bool { return nearby[i].KM < nearby[j].KM })

	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return nearby, nil
}
