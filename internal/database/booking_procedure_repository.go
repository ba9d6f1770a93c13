package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/lib/pq"
)

// BookingProcedureRepository calls the booking stored procedures.
// Locking, bus assignment, pricing and receipt generation happen inside the
// database; this type only marshals arguments and results.
type BookingProcedureRepository struct {
	db DB
}

// NewBookingProcedureRepository creates a new booking procedure repository
func NewBookingProcedureRepository(db DB) *BookingProcedureRepository {
	return &BookingProcedureRepository{db: db}
}

// GetAvailableFleet calls get_available_fleet_for_route
func (r *BookingProcedureRepository) GetAvailableFleet(ctx context.Context, routeID, departureDate, departureTime string) ([]models.AvailableFleet, error) {
	query := `
		SELECT bus_id, fleet_name, capacity, features, available_seats,
		       base_price_multiplier, route_base_price
		FROM get_available_fleet_for_route(
			route_id => $1, departure_date => $2::date, departure_time => $3
		)
	`

	var fleet []models.AvailableFleet
	if err := r.db.SelectContext(ctx, &fleet, query, routeID, departureDate, departureTime); err != nil {
		return nil, err
	}
	return fleet, nil
}

// AssignBus calls assign_bus_to_booking. Returns nil when no bus could be assigned.
func (r *BookingProcedureRepository) AssignBus(ctx context.Context, routeID, departureDate, departureTime string, preferredBusID *string, requiredSeats int) (*models.BusAssignment, error) {
	query := `
		SELECT assigned_bus_id, fleet_name, available_seats, is_fallback
		FROM assign_bus_to_booking(
			route_id => $1, departure_date => $2::date, departure_time => $3,
			preferred_bus_id => $4, required_seats => $5
		)
	`

	var assignment models.BusAssignment
	var busID, fleetName sql.NullString
	var available sql.NullInt64
	var fallback sql.NullBool
	err := r.db.QueryRowContext(ctx, query, routeID, departureDate, departureTime, preferredBusID, requiredSeats).
		Scan(&busID, &fleetName, &available, &fallback)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if !busID.Valid || busID.String == "" {
		return nil, nil
	}

	assignment.AssignedBusID = busID.String
	assignment.FleetName = fleetName.String
	assignment.AvailableSeats = int(available.Int64)
	assignment.IsFallback = fallback.Bool
	return &assignment, nil
}

// InitializeSeatAvailability calls initialize_seat_availability (idempotent seed)
func (r *BookingProcedureRepository) InitializeSeatAvailability(ctx context.Context, routeID, departureDate, departureTime string, totalSeats *int, busID *string) error {
	query := `
		SELECT initialize_seat_availability(
			route_id => $1, departure_date => $2::date, departure_time => $3,
			total_seats => $4, bus_id => $5
		)
	`

	_, err := r.db.ExecContext(ctx, query, routeID, departureDate, departureTime, totalSeats, busID)
	return err
}

// GetSeatAvailability calls get_seat_availability
func (r *BookingProcedureRepository) GetSeatAvailability(ctx context.Context, routeID, departureDate, departureTime string, busID *string) ([]models.SeatAvailability, error) {
	query := `
		SELECT seat_number, status, is_available, bus_id
		FROM get_seat_availability(
			route_id => $1, departure_date => $2::date, departure_time => $3, bus_id => $4
		)
		ORDER BY seat_number
	`

	var seats []models.SeatAvailability
	if err := r.db.SelectContext(ctx, &seats, query, routeID, departureDate, departureTime, busID); err != nil {
		return nil, err
	}
	return seats, nil
}

// LockSeat calls lock_seat and reports whether the lock was granted
func (r *BookingProcedureRepository) LockSeat(ctx context.Context, routeID, departureDate, departureTime string, seatNumber int, userID string, lockMinutes int) (bool, error) {
	query := `
		SELECT lock_seat(
			route_id => $1, departure_date => $2::date, departure_time => $3,
			seat_number => $4, user_id => $5, lock_duration_minutes => $6
		)
	`

	var locked sql.NullBool
	err := r.db.QueryRowContext(ctx, query, routeID, departureDate, departureTime, seatNumber, userID, lockMinutes).Scan(&locked)
	if err != nil {
		return false, err
	}
	return locked.Valid && locked.Bool, nil
}

// CreateBookingWithBranch calls create_booking_with_branch and returns its JSON payload
func (r *BookingProcedureRepository) CreateBookingWithBranch(ctx context.Context, params models.CreateBookingParams) (json.RawMessage, error) {
	query := `
		SELECT create_booking_with_branch(
			user_id => $1, route_id => $2, from_location => $3, to_location => $4,
			departure_date => $5::date, departure_time => $6, arrival_time => $7,
			seat_numbers => $8, price => $9, status => $10, branch_id => $11
		)::text
	`

	var arrival interface{}
	if params.ArrivalTime != "" {
		arrival = params.ArrivalTime
	}

	var payload sql.NullString
	err := r.db.QueryRowContext(ctx, query,
		params.UserID,
		params.RouteID,
		params.FromLocation,
		params.ToLocation,
		params.DepartureDate,
		params.DepartureTime,
		arrival,
		pq.Array(params.SeatNumbers),
		params.Price,
		params.Status,
		params.BranchID,
	).Scan(&payload)
	if err != nil {
		return nil, err
	}
	if !payload.Valid {
		return nil, fmt.Errorf("create_booking_with_branch returned no data")
	}
	return json.RawMessage(payload.String), nil
}

// SignOffReceipt calls sign_off_receipt
func (r *BookingProcedureRepository) SignOffReceipt(ctx context.Context, receiptID, adminUserID string, notes *string) (json.RawMessage, error) {
	query := `
		SELECT sign_off_receipt(
			receipt_id => $1, admin_user_id => $2, notes => $3
		)::text
	`
	return r.jsonCall(ctx, query, receiptID, adminUserID, notes)
}

// VerifyReceipt calls verify_receipt
func (r *BookingProcedureRepository) VerifyReceipt(ctx context.Context, receiptID string, bookingID, adminUserID *string) (json.RawMessage, error) {
	query := `
		SELECT verify_receipt(
			receipt_id => $1, booking_id => $2, admin_user_id => $3
		)::text
	`
	return r.jsonCall(ctx, query, receiptID, bookingID, adminUserID)
}

func (r *BookingProcedureRepository) jsonCall(ctx context.Context, query string, args ...interface{}) (json.RawMessage, error) {
	var payload sql.NullString
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&payload); err != nil {
		return nil, err
	}
	if !payload.Valid {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(payload.String), nil
}
