package services

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// Departure dates and times are local to Kenya (EAT, no DST)
var eastAfricaTime = time.FixedZone("EAT", 3*60*60)

// WizardOptions are the per-deployment wizard tunables
type WizardOptions struct {
	FleetAware bool
	MaxSeats   int
}

// BookingWizard holds one session's booking form state. All access goes
// through the mutex; remote calls made on behalf of the wizard run while
// it is held so a session's operations never interleave.
type BookingWizard struct {
	mu         sync.Mutex
	draft      models.BookingDraft
	route      *models.Route
	userID     string
	deviceType string
	fleetAware bool
	maxSeats   int
	persister  DraftPersister
	logger     *logrus.Logger
	now        func() time.Time
}

// NewBookingWizard creates an empty wizard at step 1
func NewBookingWizard(sessionKey string, opts WizardOptions, persister DraftPersister, logger *logrus.Logger) *BookingWizard {
	if opts.MaxSeats <= 0 {
		opts.MaxSeats = 5
	}
	return &BookingWizard{
		draft: models.BookingDraft{
			SessionKey:  sessionKey,
			Seats:       []int{},
			LockedSeats: []int{},
			Step:        models.StepRoute,
			UpdatedAt:   time.Now(),
		},
		fleetAware: opts.FleetAware,
		maxSeats:   opts.MaxSeats,
		persister:  persister,
		logger:     logger,
		now:        time.Now,
	}
}

// SessionKey returns the booking session key
func (w *BookingWizard) SessionKey() string {
	return w.draft.SessionKey
}

// Draft returns a copy of the current state
func (w *BookingWizard) Draft() models.BookingDraft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyDraft(w.draft)
}

// Authenticate binds the wizard to the signed-in passenger (empty for guests)
func (w *BookingWizard) Authenticate(userID, deviceType string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.userID = userID
	if deviceType != "" {
		w.deviceType = deviceType
	}
}

// UserID returns the authenticated passenger id, or "" for guests
func (w *BookingWizard) UserID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.userID
}

// FleetAware reports whether step 3 requires a bus
func (w *BookingWizard) FleetAware() bool {
	return w.fleetAware
}

// MaxSeats is the per-booking seat limit
func (w *BookingWizard) MaxSeats() int {
	return w.maxSeats
}

// CanProceedToStep reports whether every step before n is satisfied
func (w *BookingWizard) CanProceedToStep(n models.WizardStep) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canProceedLocked(n)
}

func (w *BookingWizard) canProceedLocked(n models.WizardStep) bool {
	if n <= models.FirstStep {
		return true
	}
	if n > models.LastStep {
		return false
	}
	for s := models.FirstStep; s < n; s++ {
		if !w.stepSatisfied(s) {
			return false
		}
	}
	return true
}

func (w *BookingWizard) stepSatisfied(s models.WizardStep) bool {
	d := &w.draft
	switch s {
	case models.StepRoute:
		return d.From != "" && d.To != ""
	case models.StepDateTime:
		return d.Date != "" && d.Time != ""
	case models.StepFleet:
		return !w.fleetAware || d.BusID != ""
	case models.StepSeats:
		return len(d.Seats) > 0
	}
	return true
}

func (w *BookingWizard) stepRequirement(s models.WizardStep) *ValidationError {
	switch s {
	case models.StepRoute:
		return newValidationError("route", "Please select your departure and destination")
	case models.StepDateTime:
		return newValidationError("date", "Please select a travel date and time")
	case models.StepFleet:
		return newValidationError("bus_id", "Please select a bus")
	case models.StepSeats:
		return newValidationError("seats", "Please select at least one seat")
	}
	return newValidationError("step", "Cannot continue from step %d", s)
}

// Next moves forward exactly one step
func (w *BookingWizard) Next(ctx context.Context) (models.WizardStep, error) {
	var step models.WizardStep
	err := w.mutate(ctx, func(d *models.BookingDraft) error {
		if d.Step >= models.LastStep {
			return newValidationError("step", "Already at the last step")
		}
		for s := models.FirstStep; s <= d.Step; s++ {
			if !w.stepSatisfied(s) {
				return w.stepRequirement(s)
			}
		}
		d.Step++
		step = d.Step
		return nil
	})
	if err != nil {
		return w.Draft().Step, err
	}
	return step, nil
}

// Back moves backward exactly one step; a no-op at step 1
func (w *BookingWizard) Back(ctx context.Context) (models.WizardStep, error) {
	var step models.WizardStep
	err := w.mutate(ctx, func(d *models.BookingDraft) error {
		if d.Step > models.FirstStep {
			d.Step--
		}
		step = d.Step
		return nil
	})
	return step, err
}

// Apply patches the wizard fields. route is the route the caller resolved
// for a changed route id or pair; it must be non-nil when either changed.
// Every field is validated before anything is written.
func (w *BookingWizard) Apply(ctx context.Context, req models.UpdateDraftRequest, route *models.Route) error {
	return w.mutate(ctx, func(d *models.BookingDraft) error {
		var date, clock string
		var err error
		if req.Date != nil {
			if date, err = w.parseDate(*req.Date, true); err != nil {
				return err
			}
		}
		if req.Time != nil {
			if clock, err = parseDepartureTime(*req.Time); err != nil {
				return err
			}
			activeRoute := w.route
			if route != nil {
				activeRoute = route
			}
			if clock != "" && activeRoute != nil && len(activeRoute.DepartureTimes) > 0 && !activeRoute.HasDepartureTime(clock) {
				return newValidationError("time", "The selected route does not depart at %s", clock)
			}
		}
		var seats []int
		if req.Seats != nil {
			seats = models.NormalizeSeats(req.Seats)
			if len(seats) > w.maxSeats {
				return newValidationError("seats", "You can select a maximum of %d seats", w.maxSeats)
			}
		}

		if route != nil {
			w.setRouteLocked(d, route)
		} else if req.From != nil || req.To != nil {
			from, to := d.From, d.To
			if req.From != nil {
				from = strings.TrimSpace(*req.From)
			}
			if req.To != nil {
				to = strings.TrimSpace(*req.To)
			}
			if from != d.From || to != d.To {
				d.From, d.To, d.RouteID = from, to, ""
				w.route = nil
				clearTrip(d)
			}
		}
		if req.BranchID != nil {
			d.BranchID = *req.BranchID
		}
		if req.Date != nil && date != d.Date {
			d.Date = date
			clearTrip(d)
		}
		if req.Time != nil && clock != d.Time {
			d.Time = clock
			clearTrip(d)
		}
		if seats != nil {
			d.Seats = seats
			d.LockedSeats = intersect(d.LockedSeats, seats)
		}
		if req.PaymentMethod != nil {
			d.PaymentMethod = *req.PaymentMethod
		}
		if req.ReturnURL != nil {
			d.ReturnURL = *req.ReturnURL
		}
		return nil
	})
}

// SetRoute selects a resolved route
func (w *BookingWizard) SetRoute(ctx context.Context, route *models.Route) error {
	return w.mutate(ctx, func(d *models.BookingDraft) error {
		w.setRouteLocked(d, route)
		return nil
	})
}

func (w *BookingWizard) setRouteLocked(d *models.BookingDraft, route *models.Route) {
	changed := d.RouteID != route.ID || d.From != route.FromLocation || d.To != route.ToLocation
	d.RouteID = route.ID
	d.From = route.FromLocation
	d.To = route.ToLocation
	if route.BranchID != nil {
		d.BranchID = *route.BranchID
	}
	w.route = route
	if changed {
		clearTrip(d)
	}
}

// SetDate sets the travel date (YYYY-MM-DD or an RFC 3339 timestamp)
func (w *BookingWizard) SetDate(ctx context.Context, value string) error {
	date := value
	return w.Apply(ctx, models.UpdateDraftRequest{Date: &date}, nil)
}

// SetTime sets the departure time (HH:MM)
func (w *BookingWizard) SetTime(ctx context.Context, value string) error {
	clock := value
	return w.Apply(ctx, models.UpdateDraftRequest{Time: &clock}, nil)
}

// SetPaymentMethod records the chosen payment method
func (w *BookingWizard) SetPaymentMethod(ctx context.Context, method string) error {
	return w.Apply(ctx, models.UpdateDraftRequest{PaymentMethod: &method}, nil)
}

// Route returns the last resolved route, if any
func (w *BookingWizard) Route() *models.Route {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.route
}

// Hydrate seeds the wizard from the entry URL when it carries parameters,
// otherwise from a persisted snapshot. route is the route resolved for the
// URL's routeId, or nil. Malformed or past dates are logged and skipped.
func (w *BookingWizard) Hydrate(ctx context.Context, q models.HydrateQuery, snapshot *models.DraftSnapshot, route *models.Route) {
	w.mu.Lock()
	defer w.mu.Unlock()

	d := &w.draft
	switch {
	case q.HasValues():
		if route != nil {
			w.setRouteLocked(d, route)
		} else {
			d.From = strings.TrimSpace(q.From)
			d.To = strings.TrimSpace(q.To)
		}
		if q.BranchID != "" {
			d.BranchID = q.BranchID
		}
		if q.Date != "" {
			if date, err := w.parseDate(q.Date, true); err != nil {
				w.logger.WithFields(logrus.Fields{
					"session": d.SessionKey,
					"date":    q.Date,
				}).WithError(err).Warn("Ignoring date in booking URL")
			} else {
				d.Date = date
			}
		}
		d.Step = models.StepRoute
		if q.RouteID != "" && route != nil && d.From != "" && d.To != "" {
			d.Step = models.StepDateTime
		}

	case snapshot != nil:
		d.From = snapshot.From
		d.To = snapshot.To
		d.RouteID = snapshot.RouteID
		d.BranchID = snapshot.BranchID
		d.ReturnURL = snapshot.ReturnURL
		d.BusID = snapshot.BusID
		d.FleetName = snapshot.FleetName
		if route != nil && route.ID == d.RouteID {
			w.route = route
		}
		if snapshot.Date != "" {
			if date, err := w.parseDate(snapshot.Date, true); err != nil {
				w.logger.WithFields(logrus.Fields{
					"session": d.SessionKey,
					"date":    snapshot.Date,
				}).WithError(err).Warn("Ignoring date in saved booking")
			} else {
				d.Date = date
			}
		}
		if clock, err := parseDepartureTime(snapshot.Time); err == nil {
			d.Time = clock
		}
		seats := models.NormalizeSeats(snapshot.Seats)
		if len(seats) > w.maxSeats {
			seats = seats[:w.maxSeats]
		}
		d.Seats = seats
		d.Step = clampStep(models.WizardStep(snapshot.Step))
	}

	// a snapshot may name a step whose earlier fields were dropped
	for d.Step > models.FirstStep && !w.canProceedLocked(d.Step) {
		d.Step--
	}

	if q.ReturnURL != "" {
		d.ReturnURL = q.ReturnURL
	}
	d.UpdatedAt = w.now()
	w.persistLocked(ctx)
}

// mutate runs fn under the lock, pulls the step back if fn invalidated it,
// and persists the snapshot for guests when it changed.
func (w *BookingWizard) mutate(ctx context.Context, fn func(d *models.BookingDraft) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	before := w.draft.Snapshot()
	err := fn(&w.draft)

	for w.draft.Step > models.FirstStep && !w.canProceedLocked(w.draft.Step) {
		w.draft.Step--
	}

	if !reflect.DeepEqual(before, w.draft.Snapshot()) {
		w.draft.UpdatedAt = w.now()
		w.persistLocked(ctx)
	}
	return err
}

func (w *BookingWizard) persistLocked(ctx context.Context) {
	if w.userID != "" || w.persister == nil {
		return
	}
	snapshot := w.draft.Snapshot()
	if snapshot.IsEmpty() {
		return
	}
	if err := w.persister.Persist(ctx, w.draft.SessionKey, snapshot, w.deviceType); err != nil {
		w.logger.WithError(err).WithField("session", w.draft.SessionKey).Warn("Failed to persist booking draft")
	}
}

// persistNow forces a snapshot write, used before a login redirect
func (w *BookingWizard) persistNow(ctx context.Context) error {
	if w.persister == nil {
		return nil
	}
	snapshot := w.draft.Snapshot()
	if snapshot.IsEmpty() {
		return nil
	}
	return w.persister.Persist(ctx, w.draft.SessionKey, snapshot, w.deviceType)
}

// lockOwner is the id seat locks are held under
func (w *BookingWizard) lockOwner() string {
	if w.userID != "" {
		return w.userID
	}
	return w.draft.SessionKey
}

func (w *BookingWizard) parseDate(value string, rejectPast bool) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	var day time.Time
	if t, err := time.ParseInLocation(models.DateLayout, value, eastAfricaTime); err == nil {
		day = t
	} else if t, err := time.Parse(time.RFC3339, value); err == nil {
		day = t.In(eastAfricaTime)
	} else {
		return "", newValidationError("date", "Invalid date %q, expected YYYY-MM-DD", value)
	}

	if rejectPast {
		today := w.now().In(eastAfricaTime).Format(models.DateLayout)
		if day.Format(models.DateLayout) < today {
			return "", newValidationError("date", "Travel date cannot be in the past")
		}
	}
	return day.Format(models.DateLayout), nil
}

func parseDepartureTime(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	if len(value) == len("15:04:05") {
		value = value[:5]
	}
	if !models.IsValidDepartureTime(value) {
		return "", newValidationError("time", "Invalid departure time %q, expected HH:MM", value)
	}
	return value, nil
}

// clearTrip drops selections that belong to a specific departure
func clearTrip(d *models.BookingDraft) {
	d.BusID = ""
	d.FleetName = ""
	d.Seats = []int{}
	d.LockedSeats = []int{}
}

func clampStep(s models.WizardStep) models.WizardStep {
	if s < models.FirstStep {
		return models.FirstStep
	}
	if s > models.LastStep {
		return models.LastStep
	}
	return s
}

func copyDraft(d models.BookingDraft) models.BookingDraft {
	out := d
	out.Seats = append([]int{}, d.Seats...)
	out.LockedSeats = append([]int{}, d.LockedSeats...)
	return out
}

func intersect(a, b []int) []int {
	out := []int{}
	for _, x := range a {
		for _, y := range b {
			if x == y {
				out = append(out, x)
				break
			}
		}
	}
	return out
}
