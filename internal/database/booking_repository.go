package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// ErrBookingNotFound is returned when a booking id has no row
var ErrBookingNotFound = fmt.Errorf("booking not found")

// BookingRepository is the read side of bookings created by create_booking_with_branch
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingSelect = `
	SELECT b.id, b.user_id, b.route_id, b.from_location, b.to_location,
	       to_char(b.departure_date, 'YYYY-MM-DD') AS departure_date, b.departure_time,
	       b.arrival_time, b.seat_numbers, b.price, b.status, b.branch_id, b.bus_id,
	       r.id AS receipt_id, r.receipt_number, b.created_at
	FROM bookings b
	LEFT JOIN receipts r ON r.booking_id = b.id
`

// ListByUser returns a passenger's bookings, newest first
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	query := bookingSelect + ` WHERE b.user_id = $1 ORDER BY b.created_at DESC`
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user bookings: %w", err)
	}
	return bookings, nil
}

// GetByID retrieves one booking
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, bookingSelect+` WHERE b.id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// List returns bookings matching the admin filter
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	query := bookingSelect + ` WHERE 1=1`
	args := []interface{}{}

	add := func(clause string, value interface{}) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}
	if filter.Status != "" {
		add(" AND b.status = $%d", filter.Status)
	}
	if filter.RouteID != "" {
		add(" AND b.route_id = $%d", filter.RouteID)
	}
	if filter.BranchID != "" {
		add(" AND b.branch_id = $%d", filter.BranchID)
	}
	if filter.DateFrom != "" {
		add(" AND b.departure_date >= $%d::date", filter.DateFrom)
	}
	if filter.DateTo != "" {
		add(" AND b.departure_date <= $%d::date", filter.DateTo)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}
