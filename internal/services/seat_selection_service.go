package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// SeatSelectionService renders seat maps and toggles seats with remote locks
type SeatSelectionService struct {
	procedures      BookingProcedures
	defaultCapacity int
	lockMinutes     int
	logger          *logrus.Logger
}

// NewSeatSelectionService creates a new seat selection service
func NewSeatSelectionService(procedures BookingProcedures, defaultCapacity, lockMinutes int, logger *logrus.Logger) *SeatSelectionService {
	if defaultCapacity <= 0 {
		defaultCapacity = 40
	}
	return &SeatSelectionService{
		procedures:      procedures,
		defaultCapacity: defaultCapacity,
		lockMinutes:     lockMinutes,
		logger:          logger,
	}
}

// SeatMap returns every seat of the wizard's departure. When the departure has
// no seat rows yet it asks the database to create them and serves a default
// all-available layout in the meantime.
func (s *SeatSelectionService) SeatMap(ctx context.Context, w *BookingWizard) (*models.SeatMap, error) {
	d := w.Draft()
	if d.RouteID == "" || d.Date == "" || d.Time == "" {
		return nil, newValidationError("route", "Select a route, date and time to see seats")
	}

	var busID *string
	if d.BusID != "" {
		busID = &d.BusID
	}

	rows, err := s.procedures.GetSeatAvailability(ctx, d.RouteID, d.Date, d.Time, busID)
	if err != nil {
		return nil, remote("get_seat_availability", err)
	}

	seatMap := &models.SeatMap{
		RouteID:       d.RouteID,
		DepartureDate: d.Date,
		DepartureTime: d.Time,
		BusID:         d.BusID,
		MaxSeats:      w.MaxSeats(),
		SelectedSeats: d.Seats,
	}

	if len(rows) == 0 {
		capacity := s.defaultCapacity
		if err := s.procedures.InitializeSeatAvailability(ctx, d.RouteID, d.Date, d.Time, &capacity, busID); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"route_id": d.RouteID,
				"date":     d.Date,
				"time":     d.Time,
			}).Warn("Failed to initialize seat availability, serving default layout")
		}
		seatMap.Synthesized = true
		seatMap.Capacity = capacity
		seatMap.Seats = buildSeatViews(capacity, nil, &d)
		return seatMap, nil
	}

	byNumber := make(map[int]models.SeatAvailability, len(rows))
	capacity := 0
	for _, row := range rows {
		byNumber[row.SeatNumber] = row
		if row.SeatNumber > capacity {
			capacity = row.SeatNumber
		}
	}
	seatMap.Capacity = capacity
	seatMap.Seats = buildSeatViews(capacity, byNumber, &d)
	return seatMap, nil
}

func buildSeatViews(capacity int, rows map[int]models.SeatAvailability, d *models.BookingDraft) []models.SeatView {
	views := make([]models.SeatView, 0, capacity)
	for n := 1; n <= capacity; n++ {
		view := models.SeatView{
			SeatNumber: n,
			Status:     models.SeatStatusAvailable,
			Available:  true,
			Selected:   d.HasSeat(n),
			LockedByMe: d.IsLocked(n),
		}
		if row, ok := rows[n]; ok {
			view.Status = row.Status
			view.Available = row.IsAvailable
		}
		// our own lock shows as locked remotely but stays selectable here
		if view.LockedByMe && view.Status == models.SeatStatusLocked {
			view.Available = true
		}
		views = append(views, view)
	}
	return views
}

// Toggle deselects a selected seat, or locks and selects an unselected one.
// A lock the database refuses leaves the wizard untouched; a lock call that
// fails outright still selects the seat so the passenger can continue.
func (s *SeatSelectionService) Toggle(ctx context.Context, w *BookingWizard, seat int) (*models.Notice, error) {
	if seat <= 0 {
		return nil, newValidationError("seat", "Invalid seat number %d", seat)
	}

	var notice *models.Notice
	err := w.mutate(ctx, func(d *models.BookingDraft) error {
		if d.RouteID == "" || d.Date == "" || d.Time == "" {
			return newValidationError("route", "Select a route, date and time before choosing seats")
		}

		if d.HasSeat(seat) {
			d.Seats = removeInt(d.Seats, seat)
			d.LockedSeats = removeInt(d.LockedSeats, seat)
			notice = &models.Notice{Level: models.NoticeInfo, Message: fmt.Sprintf("Seat %d removed", seat)}
			return nil
		}

		if len(d.Seats) >= w.maxSeats {
			return newValidationError("seats", "You can select a maximum of %d seats", w.maxSeats)
		}

		locked, err := s.procedures.LockSeat(ctx, d.RouteID, d.Date, d.Time, seat, w.lockOwner(), s.lockMinutes)
		if err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"route_id": d.RouteID,
				"seat":     seat,
			}).Warn("Seat lock failed, selecting locally")
			d.Seats = models.NormalizeSeats(append(d.Seats, seat))
			notice = &models.Notice{
				Level:   models.NoticeWarning,
				Message: fmt.Sprintf("Seat %d reserved locally. We could not confirm the hold, it will be checked when you book.", seat),
			}
			return nil
		}
		if !locked {
			return ErrSeatUnavailable
		}

		d.Seats = models.NormalizeSeats(append(d.Seats, seat))
		d.LockedSeats = models.NormalizeSeats(append(d.LockedSeats, seat))
		notice = &models.Notice{Level: models.NoticeSuccess, Message: fmt.Sprintf("Seat %d selected", seat)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return notice, nil
}

func removeInt(list []int, v int) []int {
	out := make([]int, 0, len(list))
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
