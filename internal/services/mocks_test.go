package services

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fixedNow is a date well before every departure used in tests
func fixedNow() time.Time {
	return time.Date(2024, 5, 1, 9, 0, 0, 0, eastAfricaTime)
}

type mockProcedures struct {
	mock.Mock
}

func (m *mockProcedures) GetAvailableFleet(ctx context.Context, routeID, departureDate, departureTime string) ([]models.AvailableFleet, error) {
	args := m.Called(ctx, routeID, departureDate, departureTime)
	fleet, _ := args.Get(0).([]models.AvailableFleet)
	return fleet, args.Error(1)
}

func (m *mockProcedures) AssignBus(ctx context.Context, routeID, departureDate, departureTime string, preferredBusID *string, requiredSeats int) (*models.BusAssignment, error) {
	args := m.Called(ctx, routeID, departureDate, departureTime, preferredBusID, requiredSeats)
	assignment, _ := args.Get(0).(*models.BusAssignment)
	return assignment, args.Error(1)
}

func (m *mockProcedures) InitializeSeatAvailability(ctx context.Context, routeID, departureDate, departureTime string, totalSeats *int, busID *string) error {
	args := m.Called(ctx, routeID, departureDate, departureTime, totalSeats, busID)
	return args.Error(0)
}

func (m *mockProcedures) GetSeatAvailability(ctx context.Context, routeID, departureDate, departureTime string, busID *string) ([]models.SeatAvailability, error) {
	args := m.Called(ctx, routeID, departureDate, departureTime, busID)
	seats, _ := args.Get(0).([]models.SeatAvailability)
	return seats, args.Error(1)
}

func (m *mockProcedures) LockSeat(ctx context.Context, routeID, departureDate, departureTime string, seatNumber int, userID string, lockMinutes int) (bool, error) {
	args := m.Called(ctx, routeID, departureDate, departureTime, seatNumber, userID, lockMinutes)
	return args.Bool(0), args.Error(1)
}

func (m *mockProcedures) CreateBookingWithBranch(ctx context.Context, params models.CreateBookingParams) (json.RawMessage, error) {
	args := m.Called(ctx, params)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockProcedures) SignOffReceipt(ctx context.Context, receiptID, adminUserID string, notes *string) (json.RawMessage, error) {
	args := m.Called(ctx, receiptID, adminUserID, notes)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *mockProcedures) VerifyReceipt(ctx context.Context, receiptID string, bookingID, adminUserID *string) (json.RawMessage, error) {
	args := m.Called(ctx, receiptID, bookingID, adminUserID)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

type mockRoutes struct {
	mock.Mock
}

func (m *mockRoutes) GetByID(ctx context.Context, id string) (*models.Route, error) {
	args := m.Called(ctx, id)
	route, _ := args.Get(0).(*models.Route)
	return route, args.Error(1)
}

func (m *mockRoutes) FindByLocations(ctx context.Context, from, to string) (*models.Route, error) {
	args := m.Called(ctx, from, to)
	route, _ := args.Get(0).(*models.Route)
	return route, args.Error(1)
}

// memoryDrafts is an in-memory DraftStore
type memoryDrafts struct {
	rows    map[string]models.PendingDraft
	saves   int
	saveErr error
}

func newMemoryDrafts() *memoryDrafts {
	return &memoryDrafts{rows: make(map[string]models.PendingDraft)}
}

func (m *memoryDrafts) Save(ctx context.Context, sessionKey string, snapshot models.DraftSnapshot, deviceType string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.rows[sessionKey] = models.PendingDraft{
		SessionKey: sessionKey,
		Snapshot:   snapshot,
		DeviceType: deviceType,
		UpdatedAt:  time.Now(),
	}
	return nil
}

func (m *memoryDrafts) Load(ctx context.Context, sessionKey string) (*models.PendingDraft, error) {
	row, ok := m.rows[sessionKey]
	if !ok {
		return nil, nil
	}
	// round-trip through JSON like the jsonb column does
	raw, err := json.Marshal(row.Snapshot)
	if err != nil {
		return nil, err
	}
	var snapshot models.DraftSnapshot
	if err := snapshot.Scan(raw); err != nil {
		return nil, err
	}
	row.Snapshot = snapshot
	return &row, nil
}

func (m *memoryDrafts) Delete(ctx context.Context, sessionKey string) error {
	delete(m.rows, sessionKey)
	return nil
}

func (m *memoryDrafts) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	for k, row := range m.rows {
		if row.UpdatedAt.Before(cutoff) {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

func (m *memoryDrafts) Count(ctx context.Context) (int, error) {
	return len(m.rows), nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) BookingConfirmed(ctx context.Context, userID string, params models.CreateBookingParams, result *models.BookingResult) error {
	args := m.Called(ctx, userID, params, result)
	return args.Error(0)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Send(ctx context.Context, phone, message string) (string, error) {
	args := m.Called(ctx, phone, message)
	return args.String(0), args.Error(1)
}

type mockReceipts struct {
	mock.Mock
}

func (m *mockReceipts) GetDetail(ctx context.Context, id string) (*models.ReceiptDetail, error) {
	args := m.Called(ctx, id)
	detail, _ := args.Get(0).(*models.ReceiptDetail)
	return detail, args.Error(1)
}

func (m *mockReceipts) List(ctx context.Context, filter models.ReceiptFilter) ([]models.ReceiptDetail, error) {
	args := m.Called(ctx, filter)
	list, _ := args.Get(0).([]models.ReceiptDetail)
	return list, args.Error(1)
}

func (m *mockReceipts) CountPending(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// newTestWizard returns a wizard persisting into drafts, clocked at fixedNow
func newTestWizard(key string, fleetAware bool, drafts *memoryDrafts) *BookingWizard {
	logger := testLogger()
	var persister DraftPersister
	if drafts != nil {
		persister = NewDraftPersistenceService(drafts, 0, logger)
	}
	w := NewBookingWizard(key, WizardOptions{FleetAware: fleetAware, MaxSeats: 5}, persister, logger)
	w.now = fixedNow
	return w
}

func strPtr(s string) *string {
	return &s
}

func nairobiMombasa() *models.Route {
	branch := "branch-nbi"
	return &models.Route{
		ID:             "route-1",
		FromLocation:   "Nairobi",
		ToLocation:     "Mombasa",
		Duration:       "8 hours",
		Price:          2000,
		DepartureTimes: models.StringArray{"08:00", "20:00"},
		BranchID:       &branch,
	}
}

// readyWizard is at step 4 with route, date, time and bus chosen
func readyWizard(t interface{ Helper() }, key string, drafts *memoryDrafts) *BookingWizard {
	t.Helper()
	w := newTestWizard(key, true, drafts)
	w.mu.Lock()
	w.route = nairobiMombasa()
	w.draft.RouteID = "route-1"
	w.draft.From = "Nairobi"
	w.draft.To = "Mombasa"
	w.draft.Date = "2024-07-10"
	w.draft.Time = "08:00"
	w.draft.BusID = "bus-7"
	w.draft.FleetName = "Executive"
	w.draft.Step = models.StepSeats
	w.mu.Unlock()
	return w
}
