package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// BookingProcedures is the contract of the booking database functions
type BookingProcedures interface {
	GetAvailableFleet(ctx context.Context, routeID, departureDate, departureTime string) ([]models.AvailableFleet, error)
	AssignBus(ctx context.Context, routeID, departureDate, departureTime string, preferredBusID *string, requiredSeats int) (*models.BusAssignment, error)
	InitializeSeatAvailability(ctx context.Context, routeID, departureDate, departureTime string, totalSeats *int, busID *string) error
	GetSeatAvailability(ctx context.Context, routeID, departureDate, departureTime string, busID *string) ([]models.SeatAvailability, error)
	LockSeat(ctx context.Context, routeID, departureDate, departureTime string, seatNumber int, userID string, lockMinutes int) (bool, error)
	CreateBookingWithBranch(ctx context.Context, params models.CreateBookingParams) (json.RawMessage, error)
	SignOffReceipt(ctx context.Context, receiptID, adminUserID string, notes *string) (json.RawMessage, error)
	VerifyReceipt(ctx context.Context, receiptID string, bookingID, adminUserID *string) (json.RawMessage, error)
}

// RouteLookup resolves routes for the wizard
type RouteLookup interface {
	GetByID(ctx context.Context, id string) (*models.Route, error)
	FindByLocations(ctx context.Context, from, to string) (*models.Route, error)
}

// DraftStore persists pending booking snapshots
type DraftStore interface {
	Save(ctx context.Context, sessionKey string, snapshot models.DraftSnapshot, deviceType string) error
	Load(ctx context.Context, sessionKey string) (*models.PendingDraft, error)
	Delete(ctx context.Context, sessionKey string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int, error)
}

// DraftPersister is what the wizard calls on every guest mutation
type DraftPersister interface {
	Persist(ctx context.Context, sessionKey string, snapshot models.DraftSnapshot, deviceType string) error
}

// BookingNotifier is told about confirmed bookings
type BookingNotifier interface {
	BookingConfirmed(ctx context.Context, userID string, params models.CreateBookingParams, result *models.BookingResult) error
}
