package models

// SeatStatus is the status of one seat for a departure
type SeatStatus string

const (
	SeatStatusAvailable   SeatStatus = "available"
	SeatStatusLocked      SeatStatus = "locked"
	SeatStatusBooked      SeatStatus = "booked"
	SeatStatusMaintenance SeatStatus = "maintenance"
)

// SeatAvailability is one row of get_seat_availability
type SeatAvailability struct {
	SeatNumber  int        `json:"seat_number" db:"seat_number"`
	Status      SeatStatus `json:"status" db:"status"`
	IsAvailable bool       `json:"is_available" db:"is_available"`
	BusID       *string    `json:"bus_id,omitempty" db:"bus_id"`
}

// SeatView is a seat as rendered for one booking session
type SeatView struct {
	SeatNumber int        `json:"seat_number"`
	Status     SeatStatus `json:"status"`
	Available  bool       `json:"available"`
	Selected   bool       `json:"selected"`
	LockedByMe bool       `json:"locked_by_me"`
}

// SeatMap is the full seat layout for route+date+time+bus
type SeatMap struct {
	RouteID       string     `json:"route_id"`
	DepartureDate string     `json:"departure_date"`
	DepartureTime string     `json:"departure_time"`
	BusID         string     `json:"bus_id,omitempty"`
	Capacity      int        `json:"capacity"`
	MaxSeats      int        `json:"max_seats"`
	Synthesized   bool       `json:"synthesized"` // no remote rows existed, default layout served
	Seats         []SeatView `json:"seats"`
	SelectedSeats []int      `json:"selected_seats"`
}

// SeatChangeEvent is the NOTIFY payload published when seat rows change
type SeatChangeEvent struct {
	RouteID       string `json:"route_id"`
	DepartureDate string `json:"departure_date,omitempty"`
	DepartureTime string `json:"departure_time,omitempty"`
	BusID         string `json:"bus_id,omitempty"`
	SeatNumber    int    `json:"seat_number,omitempty"`
}

// InitializeSeatsRequest seeds seat rows for one departure (admin)
type InitializeSeatsRequest struct {
	RouteID       string  `json:"route_id" binding:"required"`
	DepartureDate string  `json:"departure_date" binding:"required"`
	DepartureTime string  `json:"departure_time" binding:"required"`
	TotalSeats    *int    `json:"total_seats,omitempty" binding:"omitempty,gt=0"`
	BusID         *string `json:"bus_id,omitempty"`
}
