package models

import "time"

// FleetType describes a class of bus (e.g. "Executive", "VIP")
type FleetType struct {
	ID                  string      `json:"id" db:"id"`
	Name                string      `json:"name" db:"name"`
	Capacity            int         `json:"capacity" db:"capacity"`
	Features            StringArray `json:"features" db:"features"`
	BasePriceMultiplier float64     `json:"base_price_multiplier" db:"base_price_multiplier"`
	IsActive            bool        `json:"is_active" db:"is_active"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}

// RouteFleetPrice is a route-specific override price for a fleet type
type RouteFleetPrice struct {
	RouteID   string    `json:"route_id" db:"route_id"`
	FleetID   string    `json:"fleet_id" db:"fleet_id"`
	FleetName string    `json:"fleet_name" db:"fleet_name"`
	Price     float64   `json:"price" db:"price"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// AvailableFleet is one row of get_available_fleet_for_route
type AvailableFleet struct {
	BusID               string      `json:"bus_id" db:"bus_id"`
	FleetName           string      `json:"fleet_name" db:"fleet_name"`
	Capacity            int         `json:"capacity" db:"capacity"`
	Features            StringArray `json:"features" db:"features"`
	AvailableSeats      int         `json:"available_seats" db:"available_seats"`
	BasePriceMultiplier float64     `json:"base_price_multiplier" db:"base_price_multiplier"`
	RouteBasePrice      float64     `json:"route_base_price" db:"route_base_price"`
	PricePerSeat        float64     `json:"price_per_seat" db:"-"`
}

// SeatPrice is the per-seat price shown for this bus
func (f AvailableFleet) SeatPrice() float64 {
	return f.RouteBasePrice * f.BasePriceMultiplier
}

// BusAssignment is the result of assign_bus_to_booking
type BusAssignment struct {
	AssignedBusID  string `json:"assigned_bus_id" db:"assigned_bus_id"`
	FleetName      string `json:"fleet_name" db:"fleet_name"`
	AvailableSeats int    `json:"available_seats" db:"available_seats"`
	IsFallback     bool   `json:"is_fallback" db:"is_fallback"`
}

// CreateFleetRequest is the admin payload for a new fleet type
type CreateFleetRequest struct {
	Name                string   `json:"name" binding:"required"`
	Capacity            int      `json:"capacity" binding:"required,gt=0"`
	Features            []string `json:"features"`
	BasePriceMultiplier float64  `json:"base_price_multiplier" binding:"required,gt=0"`
}

// UpdateFleetRequest is the admin payload for editing a fleet type
type UpdateFleetRequest struct {
	Name                *string  `json:"name,omitempty"`
	Capacity            *int     `json:"capacity,omitempty" binding:"omitempty,gt=0"`
	Features            []string `json:"features,omitempty"`
	BasePriceMultiplier *float64 `json:"base_price_multiplier,omitempty" binding:"omitempty,gt=0"`
	IsActive            *bool    `json:"is_active,omitempty"`
}

// Apply merges the update into an existing fleet type
func (r *UpdateFleetRequest) Apply(fleet *FleetType) {
	if r.Name != nil {
		fleet.Name = *r.Name
	}
	if r.Capacity != nil {
		fleet.Capacity = *r.Capacity
	}
	if r.Features != nil {
		fleet.Features = r.Features
	}
	if r.BasePriceMultiplier != nil {
		fleet.BasePriceMultiplier = *r.BasePriceMultiplier
	}
	if r.IsActive != nil {
		fleet.IsActive = *r.IsActive
	}
}

// SetRoutePricingRequest sets a route-specific price for a fleet type
type SetRoutePricingRequest struct {
	FleetID string  `json:"fleet_id" binding:"required"`
	Price   float64 `json:"price" binding:"required,gt=0"`
}
