package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// BookingSubmissionService turns a completed wizard into a confirmed booking
type BookingSubmissionService struct {
	procedures   BookingProcedures
	routes       RouteLookup
	fleet        *FleetAssignmentService
	drafts       *DraftPersistenceService
	store        *WizardStore
	notifier     BookingNotifier
	dashboardURL string
	logger       *logrus.Logger
}

// NewBookingSubmissionService creates a new booking submission service
func NewBookingSubmissionService(
	procedures BookingProcedures,
	routes RouteLookup,
	fleet *FleetAssignmentService,
	drafts *DraftPersistenceService,
	store *WizardStore,
	notifier BookingNotifier,
	dashboardURL string,
	logger *logrus.Logger,
) *BookingSubmissionService {
	return &BookingSubmissionService{
		procedures:   procedures,
		routes:       routes,
		fleet:        fleet,
		drafts:       drafts,
		store:        store,
		notifier:     notifier,
		dashboardURL: dashboardURL,
		logger:       logger,
	}
}

// Submit validates the wizard, re-checks the bus, prices the trip and
// creates the booking. Guests get ErrAuthRequired after their draft is
// saved with returnURL so they can resume after signing in.
func (s *BookingSubmissionService) Submit(ctx context.Context, w *BookingWizard, returnURL string) (*models.SubmissionResult, error) {
	var result *models.SubmissionResult
	var userID string

	err := w.mutate(ctx, func(d *models.BookingDraft) error {
		if d.RouteID == "" {
			return newValidationError("route", "Please select a route")
		}
		if d.Date == "" || d.Time == "" {
			return newValidationError("date", "Please select a travel date and time")
		}
		if len(d.Seats) == 0 {
			return newValidationError("seats", "Please select at least one seat")
		}
		if w.fleetAware && d.BusID == "" {
			return newValidationError("bus_id", "Please select a bus")
		}

		if w.userID == "" {
			if returnURL != "" && returnURL != d.ReturnURL {
				// mutate saves the changed snapshot
				d.ReturnURL = returnURL
				return ErrAuthRequired
			}
			if err := w.persistNow(ctx); err != nil {
				s.logger.WithError(err).WithField("session", d.SessionKey).Warn("Failed to save draft before login redirect")
			}
			return ErrAuthRequired
		}
		userID = w.userID

		var notices []models.Notice
		assignment, notice, err := s.fleet.assignLocked(ctx, d, d.BusID)
		if err != nil {
			return err
		}
		if notice != nil && notice.Level == models.NoticeWarning {
			notices = append(notices, *notice)
		}

		route := w.route
		if route == nil || route.ID != d.RouteID {
			route, err = s.routes.GetByID(ctx, d.RouteID)
			if err != nil {
				if errors.Is(err, ErrRouteNotFound) {
					return ErrRouteNotFound
				}
				return fmt.Errorf("failed to load route: %w", err)
			}
			w.route = route
		}

		multiplier := s.fleetMultiplier(ctx, d, assignment.AssignedBusID)
		seats := append([]int{}, d.Seats...)

		params := models.CreateBookingParams{
			UserID:        userID,
			RouteID:       d.RouteID,
			FromLocation:  d.From,
			ToLocation:    d.To,
			DepartureDate: d.Date,
			DepartureTime: d.Time,
			ArrivalTime:   route.ArrivalTime(d.Time),
			SeatNumbers:   seats,
			Price:         route.Price * multiplier * float64(len(seats)),
			Status:        models.BookingStatusConfirmed,
			BranchID:      route.BranchID,
			BusID:         assignment.AssignedBusID,
			FleetName:     assignment.FleetName,
			Multiplier:    multiplier,
			SeatPrice:     route.Price * multiplier,
		}
		if d.BranchID != "" {
			branch := d.BranchID
			params.BranchID = &branch
		}

		raw, err := s.procedures.CreateBookingWithBranch(ctx, params)
		if err != nil {
			return remote("create_booking_with_branch", err)
		}
		booking, err := models.ParseBookingResult(raw)
		if err != nil {
			return remote("create_booking_with_branch", err)
		}

		redirect := s.dashboardURL
		message := "Booking confirmed!"
		if booking.ReceiptID != "" {
			redirect = "/receipts/" + booking.ReceiptID
		}
		if booking.ReceiptNumber != "" {
			message = fmt.Sprintf("Booking confirmed! Receipt %s", booking.ReceiptNumber)
		}
		notices = append(notices, models.Notice{Level: models.NoticeSuccess, Message: message})

		result = &models.SubmissionResult{
			Booking:     booking,
			Payload:     params,
			RedirectURL: redirect,
			Notices:     notices,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sessionKey := w.SessionKey()
	s.store.InvalidateUserBookings(userID)
	if err := s.drafts.Clear(ctx, sessionKey); err != nil {
		s.logger.WithError(err).WithField("session", sessionKey).Warn("Failed to clear booking draft")
	}
	s.store.Drop(sessionKey)

	if s.notifier != nil {
		if err := s.notifier.BookingConfirmed(ctx, userID, result.Payload, result.Booking); err != nil {
			s.logger.WithError(err).WithField("booking_id", result.Booking.BookingID).Warn("Failed to send booking confirmation")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": result.Booking.BookingID,
		"receipt_id": result.Booking.ReceiptID,
		"user_id":    userID,
		"route_id":   result.Payload.RouteID,
		"seats":      result.Payload.SeatNumbers,
		"price":      result.Payload.Price,
	}).Info("Booking created")

	return result, nil
}

// fleetMultiplier looks up the assigned bus's price multiplier, 1.0 if unknown
func (s *BookingSubmissionService) fleetMultiplier(ctx context.Context, d *models.BookingDraft, busID string) float64 {
	fleet, err := s.procedures.GetAvailableFleet(ctx, d.RouteID, d.Date, d.Time)
	if err != nil {
		s.logger.WithError(err).WithField("route_id", d.RouteID).Warn("Could not load fleet pricing, using base price")
		return 1.0
	}
	for _, f := range fleet {
		if f.BusID == busID && f.BasePriceMultiplier > 0 {
			return f.BasePriceMultiplier
		}
	}
	return 1.0
}
