package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Route represents a bookable origin/destination pair
type Route struct {
	ID             string      `json:"id" db:"id"`
	FromLocation   string      `json:"from_location" db:"from_location"`
	ToLocation     string      `json:"to_location" db:"to_location"`
	Duration       string      `json:"duration" db:"duration"` // free text, e.g. "8 hours" or "7h30m"
	Price          float64     `json:"price" db:"price"`
	DepartureTimes StringArray `json:"departure_times" db:"departure_times"`
	BranchID       *string     `json:"branch_id,omitempty" db:"branch_id"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// Branch is an operating branch that owns routes and bookings
type Branch struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	City      string    `json:"city" db:"city"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

var (
	durationHoursRegex   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:h|hr|hrs|hour|hours)\b`)
	durationMinutesRegex = regexp.MustCompile(`(\d+)\s*(?:m|min|mins|minute|minutes)\b`)
	departureTimeRegex   = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// TravelDuration parses the route duration. Accepts Go durations ("7h30m")
// and loose text ("8 hours", "7 hrs 30 mins", "6.5 hours").
func (r *Route) TravelDuration() (time.Duration, bool) {
	text := strings.ToLower(strings.TrimSpace(r.Duration))
	if text == "" {
		return 0, false
	}

	if d, err := time.ParseDuration(strings.ReplaceAll(text, " ", "")); err == nil && d > 0 {
		return d, true
	}

	var total time.Duration
	if m := durationHoursRegex.FindStringSubmatch(text); m != nil {
		hours, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			total += time.Duration(hours * float64(time.Hour))
		}
	}
	if m := durationMinutesRegex.FindStringSubmatch(text); m != nil {
		minutes, err := strconv.Atoi(m[1])
		if err == nil {
			total += time.Duration(minutes) * time.Minute
		}
	}

	if total <= 0 {
		return 0, false
	}
	return total, true
}

// ArrivalTime returns the "HH:MM" arrival for a departure time, or "" when
// either the departure or the duration cannot be parsed.
func (r *Route) ArrivalTime(departure string) string {
	dep, err := time.Parse("15:04", departure)
	if err != nil {
		return ""
	}
	d, ok := r.TravelDuration()
	if !ok {
		return ""
	}
	return dep.Add(d).Format("15:04")
}

// HasDepartureTime reports whether the route runs at the given time
func (r *Route) HasDepartureTime(departure string) bool {
	for _, t := range r.DepartureTimes {
		if t == departure {
			return true
		}
	}
	return false
}

// IsValidDepartureTime checks the "HH:MM" 24-hour format
func IsValidDepartureTime(value string) bool {
	return departureTimeRegex.MatchString(value)
}

// CreateRouteRequest is the admin payload for a new route
type CreateRouteRequest struct {
	FromLocation   string   `json:"from_location" binding:"required"`
	ToLocation     string   `json:"to_location" binding:"required"`
	Duration       string   `json:"duration" binding:"required"`
	Price          float64  `json:"price" binding:"required,gt=0"`
	DepartureTimes []string `json:"departure_times" binding:"required,min=1"`
	BranchID       *string  `json:"branch_id,omitempty"`
}

// Validate checks fields gin's binding tags cannot express
func (r *CreateRouteRequest) Validate() error {
	if strings.EqualFold(strings.TrimSpace(r.FromLocation), strings.TrimSpace(r.ToLocation)) {
		return fmt.Errorf("from_location and to_location must differ")
	}
	for _, t := range r.DepartureTimes {
		if !IsValidDepartureTime(t) {
			return fmt.Errorf("invalid departure time %q (expected HH:MM)", t)
		}
	}
	return nil
}

// UpdateRouteRequest is the admin payload for editing a route
type UpdateRouteRequest struct {
	FromLocation   *string  `json:"from_location,omitempty"`
	ToLocation     *string  `json:"to_location,omitempty"`
	Duration       *string  `json:"duration,omitempty"`
	Price          *float64 `json:"price,omitempty" binding:"omitempty,gt=0"`
	DepartureTimes []string `json:"departure_times,omitempty"`
	BranchID       *string  `json:"branch_id,omitempty"`
}

// Apply merges the update into an existing route
func (r *UpdateRouteRequest) Apply(route *Route) error {
	if r.FromLocation != nil {
		route.FromLocation = strings.TrimSpace(*r.FromLocation)
	}
	if r.ToLocation != nil {
		route.ToLocation = strings.TrimSpace(*r.ToLocation)
	}
	if r.Duration != nil {
		route.Duration = *r.Duration
	}
	if r.Price != nil {
		route.Price = *r.Price
	}
	if r.DepartureTimes != nil {
		for _, t := range r.DepartureTimes {
			if !IsValidDepartureTime(t) {
				return fmt.Errorf("invalid departure time %q (expected HH:MM)", t)
			}
		}
		route.DepartureTimes = r.DepartureTimes
	}
	if r.BranchID != nil {
		route.BranchID = r.BranchID
	}
	if route.FromLocation == "" || route.ToLocation == "" {
		return fmt.Errorf("from_location and to_location are required")
	}
	return nil
}
