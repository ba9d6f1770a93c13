package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/utils"
)

// BookingSessionService creates, finds and resets booking wizards
type BookingSessionService struct {
	store  *WizardStore
	drafts *DraftPersistenceService
	routes RouteLookup
	opts   WizardOptions
	logger *logrus.Logger
}

// NewBookingSessionService creates a new booking session service
func NewBookingSessionService(store *WizardStore, drafts *DraftPersistenceService, routes RouteLookup, opts WizardOptions, logger *logrus.Logger) *BookingSessionService {
	return &BookingSessionService{
		store:  store,
		drafts: drafts,
		routes: routes,
		opts:   opts,
		logger: logger,
	}
}

// NewSessionKey returns a fresh booking session key
func NewSessionKey() string {
	return uuid.NewString()
}

// Start opens a wizard for the booking entry page. URL parameters win over
// a saved draft; a saved draft is only read for guests.
func (s *BookingSessionService) Start(ctx context.Context, sessionKey, userID string, q models.HydrateQuery, userAgent string) (*BookingWizard, error) {
	if sessionKey == "" {
		sessionKey = NewSessionKey()
	}

	w := NewBookingWizard(sessionKey, s.opts, s.drafts, s.logger)
	w.Authenticate(userID, utils.DeviceType(userAgent))

	var route *models.Route
	if q.RouteID != "" {
		route = s.lookupRoute(ctx, q.RouteID)
	} else if q.From != "" && q.To != "" {
		if r, err := s.routes.FindByLocations(ctx, q.From, q.To); err == nil {
			route = r
		}
	}

	var snapshot *models.DraftSnapshot
	if !q.HasValues() && userID == "" {
		snapshot = s.resume(ctx, sessionKey)
		if snapshot != nil && snapshot.RouteID != "" {
			route = s.lookupRoute(ctx, snapshot.RouteID)
		}
	}

	w.Hydrate(ctx, q, snapshot, route)
	s.store.Put(w)

	s.logger.WithFields(logrus.Fields{
		"session":  sessionKey,
		"user_id":  userID,
		"route_id": q.RouteID,
		"resumed":  snapshot != nil,
	}).Debug("Booking session started")

	return w, nil
}

// Get returns the session's wizard. A session missing from memory is
// rebuilt from its saved draft, which is how a guest who just signed in
// picks up where they left off.
func (s *BookingSessionService) Get(ctx context.Context, sessionKey, userID, userAgent string) (*BookingWizard, error) {
	if sessionKey == "" {
		return nil, ErrSessionNotFound
	}

	if w, ok := s.store.Get(sessionKey); ok {
		w.Authenticate(userID, utils.DeviceType(userAgent))
		return w, nil
	}

	snapshot := s.resume(ctx, sessionKey)
	if snapshot == nil {
		return nil, ErrSessionNotFound
	}

	var route *models.Route
	if snapshot.RouteID != "" {
		route = s.lookupRoute(ctx, snapshot.RouteID)
	}

	w := NewBookingWizard(sessionKey, s.opts, s.drafts, s.logger)
	w.Authenticate(userID, utils.DeviceType(userAgent))
	w.Hydrate(ctx, models.HydrateQuery{}, snapshot, route)
	s.store.Put(w)
	return w, nil
}

// Update applies a field patch, resolving the route when the route id or
// the from/to pair changes
func (s *BookingSessionService) Update(ctx context.Context, w *BookingWizard, req models.UpdateDraftRequest) error {
	current := w.Draft()
	var route *models.Route

	switch {
	case req.RouteID != nil && *req.RouteID != "" && *req.RouteID != current.RouteID:
		r, err := s.routes.GetByID(ctx, *req.RouteID)
		if err != nil {
			if errors.Is(err, ErrRouteNotFound) {
				return ErrRouteNotFound
			}
			return err
		}
		route = r

	case req.From != nil || req.To != nil:
		from, to := current.From, current.To
		if req.From != nil {
			from = strings.TrimSpace(*req.From)
		}
		if req.To != nil {
			to = strings.TrimSpace(*req.To)
		}
		if from != "" && to != "" && (from != current.From || to != current.To) {
			if strings.EqualFold(from, to) {
				return newValidationError("to", "Departure and destination must be different")
			}
			r, err := s.routes.FindByLocations(ctx, from, to)
			if err != nil {
				if errors.Is(err, ErrRouteNotFound) {
					return newValidationError("route", "No route found from %s to %s", from, to)
				}
				return err
			}
			route = r
		}
	}

	return w.Apply(ctx, req, route)
}

// Reset forgets the session and its saved draft
func (s *BookingSessionService) Reset(ctx context.Context, sessionKey string) error {
	s.store.Drop(sessionKey)
	return s.drafts.Clear(ctx, sessionKey)
}

// ActiveSessions returns the number of wizards in memory
func (s *BookingSessionService) ActiveSessions() int {
	return s.store.Count()
}

func (s *BookingSessionService) resume(ctx context.Context, sessionKey string) *models.DraftSnapshot {
	snapshot, err := s.drafts.Resume(ctx, sessionKey)
	if err != nil {
		s.logger.WithError(err).WithField("session", sessionKey).Warn("Failed to read saved booking draft")
		return nil
	}
	return snapshot
}

func (s *BookingSessionService) lookupRoute(ctx context.Context, routeID string) *models.Route {
	route, err := s.routes.GetByID(ctx, routeID)
	if err != nil {
		s.logger.WithError(err).WithField("route_id", routeID).Warn("Could not resolve route for booking session")
		return nil
	}
	return route
}
