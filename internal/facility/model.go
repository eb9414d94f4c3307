package facility

import (
	"net/http"
	"time"

	"github.com/campuslink/facility-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "facility not found")
	ErrEmptyName       = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidCategory = apperror.New(http.StatusBadRequest, "invalid facility category")
	ErrInvalidCampus   = apperror.New(http.StatusBadRequest, "invalid campus")
	ErrInvalidCapacity = apperror.New(http.StatusBadRequest, "max capacity must be at least 1")
)

// Category classifies a bookable facility.
type Category string

const (
	CategoryLibrary   Category = "Library"
	CategoryCafeteria Category = "Cafeteria"
	CategoryLab       Category = "Lab"
	CategorySports    Category = "Sports"
	CategoryHostel    Category = "Hostel"
	CategoryAdmin     Category = "Admin"
	CategoryClassroom Category = "Classroom"
	CategoryParking   Category = "Parking"
	CategoryMedical   Category = "Medical"
	CategoryOther     Category = "Other"
)

// Categories lists every valid facility category.
var Categories = []Category{
	CategoryLibrary, CategoryCafeteria, CategoryLab, CategorySports,
	CategoryHostel, CategoryAdmin, CategoryClassroom, CategoryParking,
	CategoryMedical, CategoryOther,
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, v := range Categories {
		if c == v {
			return true
		}
	}
	return false
}

// Facility represents a bookable campus resource (e.g. Lab 3, Tennis Court).
// MaxCapacity is the number of bookings that may hold the same time interval
// simultaneously; the booking flow reads it but never mutates the facility.
type Facility struct {
	ID          string
	Name        string
	Category    Category
	Description string
	Building    string
	Floor       string
	Campus      string // "north", "south" or ""
	Latitude    *float64
	Longitude   *float64
	Hours       string // free-text opening hours, e.g. "9 AM - 5 PM"
	ImageURL    string
	MaxCapacity int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Filter defines parameters for listing facilities.
type Filter struct {
	Category string
	Campus   string
	Search   string // matches name, building or description
}
