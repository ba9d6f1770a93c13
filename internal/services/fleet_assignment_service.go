package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// FleetAssignmentService lists buses for a departure and assigns one
type FleetAssignmentService struct {
	procedures BookingProcedures
	logger     *logrus.Logger
}

// NewFleetAssignmentService creates a new fleet assignment service
func NewFleetAssignmentService(procedures BookingProcedures, logger *logrus.Logger) *FleetAssignmentService {
	return &FleetAssignmentService{procedures: procedures, logger: logger}
}

// ListFleet returns the buses available for the wizard's route, date and time
func (s *FleetAssignmentService) ListFleet(ctx context.Context, w *BookingWizard) ([]models.AvailableFleet, error) {
	d := w.Draft()
	if d.RouteID == "" || d.Date == "" || d.Time == "" {
		return nil, newValidationError("route", "Select a route, date and time to see available buses")
	}

	fleet, err := s.procedures.GetAvailableFleet(ctx, d.RouteID, d.Date, d.Time)
	if err != nil {
		return nil, remote("get_available_fleet_for_route", err)
	}
	for i := range fleet {
		fleet[i].PricePerSeat = fleet[i].SeatPrice()
	}
	return fleet, nil
}

// Assign asks the database for a bus, preferring preferredBusID. The wizard
// is only changed when a bus with a fleet name comes back.
func (s *FleetAssignmentService) Assign(ctx context.Context, w *BookingWizard, preferredBusID string) (*models.BusAssignment, *models.Notice, error) {
	var assignment *models.BusAssignment
	var notice *models.Notice
	err := w.mutate(ctx, func(d *models.BookingDraft) error {
		var err error
		assignment, notice, err = s.assignLocked(ctx, d, preferredBusID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return assignment, notice, nil
}

// assignLocked runs with the wizard lock held
func (s *FleetAssignmentService) assignLocked(ctx context.Context, d *models.BookingDraft, preferredBusID string) (*models.BusAssignment, *models.Notice, error) {
	if d.RouteID == "" || d.Date == "" || d.Time == "" {
		return nil, nil, newValidationError("route", "Select a route, date and time before choosing a bus")
	}

	var preferred *string
	if preferredBusID != "" {
		preferred = &preferredBusID
	}
	required := len(d.Seats)
	if required < 1 {
		required = 1
	}

	assignment, err := s.procedures.AssignBus(ctx, d.RouteID, d.Date, d.Time, preferred, required)
	if err != nil {
		return nil, nil, remote("assign_bus_to_booking", err)
	}
	if assignment == nil || assignment.AssignedBusID == "" {
		return nil, nil, ErrNoAssignment
	}
	if strings.TrimSpace(assignment.FleetName) == "" {
		s.logger.WithFields(logrus.Fields{
			"route_id": d.RouteID,
			"bus_id":   assignment.AssignedBusID,
		}).Warn("Bus assignment returned without a fleet name")
		return nil, nil, ErrMalformedFleetName
	}

	d.BusID = assignment.AssignedBusID
	d.FleetName = assignment.FleetName

	if assignment.IsFallback && preferred != nil {
		return assignment, &models.Notice{
			Level:   models.NoticeWarning,
			Message: fmt.Sprintf("Your selected bus is full. You have been assigned a %s bus instead.", assignment.FleetName),
		}, nil
	}
	return assignment, &models.Notice{
		Level:   models.NoticeSuccess,
		Message: fmt.Sprintf("%s bus selected", assignment.FleetName),
	}, nil
}
