package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

func newTestSessionService(routes *mockRoutes, drafts *memoryDrafts) *BookingSessionService {
	logger := testLogger()
	return NewBookingSessionService(
		NewWizardStore(time.Hour),
		NewDraftPersistenceService(drafts, 0, logger),
		routes,
		WizardOptions{FleetAware: true, MaxSeats: 5},
		logger,
	)
}

func TestStart_URLParamsWinOverSavedDraft(t *testing.T) {
	routes := new(mockRoutes)
	routes.On("GetByID", mock.Anything, "route-1").Return(nairobiMombasa(), nil)

	drafts := newMemoryDrafts()
	drafts.rows["guest-1"] = models.PendingDraft{
		SessionKey: "guest-1",
		Snapshot:   models.DraftSnapshot{From: "Kisumu", To: "Nakuru", Seats: []int{9}, Step: 4},
	}

	svc := newTestSessionService(routes, drafts)
	w, err := svc.Start(context.Background(), "guest-1", "", models.HydrateQuery{RouteID: "route-1"}, "")
	require.NoError(t, err)

	d := w.Draft()
	assert.Equal(t, "Nairobi", d.From)
	assert.Equal(t, "Mombasa", d.To)
	assert.Empty(t, d.Seats)
	assert.Equal(t, models.StepDateTime, d.Step)
	assert.Equal(t, 1, svc.ActiveSessions())
}

func TestStart_GuestResumesSavedDraft(t *testing.T) {
	routes := new(mockRoutes)
	routes.On("GetByID", mock.Anything, "route-1").Return(nairobiMombasa(), nil)

	drafts := newMemoryDrafts()
	drafts.rows["guest-1"] = models.PendingDraft{
		SessionKey: "guest-1",
		UpdatedAt:  time.Now(),
		Snapshot: models.DraftSnapshot{
			RouteID: "route-1", From: "Nairobi", To: "Mombasa",
			Date: "2099-01-02", Time: "20:00", Seats: []int{2, 1},
			BusID: "bus-7", FleetName: "Executive", Step: 5,
			ReturnURL: "/book",
		},
	}

	w, err := newTestSessionService(routes, drafts).Start(context.Background(), "guest-1", "", models.HydrateQuery{}, "")
	require.NoError(t, err)

	d := w.Draft()
	assert.Equal(t, []int{1, 2}, d.Seats)
	assert.Equal(t, "bus-7", d.BusID)
	assert.Equal(t, models.StepPayment, d.Step)
	assert.Equal(t, "/book", d.ReturnURL)
	require.NotNil(t, w.Route())
	assert.Equal(t, "route-1", w.Route().ID)
}

func TestStart_SignedInUserIgnoresSavedDraft(t *testing.T) {
	drafts := newMemoryDrafts()
	drafts.rows["session-1"] = models.PendingDraft{
		SessionKey: "session-1",
		Snapshot:   models.DraftSnapshot{From: "Kisumu", To: "Nakuru"},
	}

	w, err := newTestSessionService(new(mockRoutes), drafts).Start(context.Background(), "session-1", "user-1", models.HydrateQuery{}, "")
	require.NoError(t, err)
	assert.Empty(t, w.Draft().From)
	assert.Equal(t, "user-1", w.UserID())
}

func TestGet_RebuildsFromDraftAfterLogin(t *testing.T) {
	drafts := newMemoryDrafts()
	drafts.rows["guest-1"] = models.PendingDraft{
		SessionKey: "guest-1",
		Snapshot:   models.DraftSnapshot{From: "Nairobi", To: "Kisumu", Step: 2},
	}
	svc := newTestSessionService(new(mockRoutes), drafts)

	w, err := svc.Get(context.Background(), "guest-1", "user-1", "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X)")
	require.NoError(t, err)
	assert.Equal(t, "Kisumu", w.Draft().To)
	assert.Equal(t, "user-1", w.UserID())

	// now served from memory
	again, err := svc.Get(context.Background(), "guest-1", "user-1", "")
	require.NoError(t, err)
	assert.Same(t, w, again)
}

func TestGet_UnknownSession(t *testing.T) {
	svc := newTestSessionService(new(mockRoutes), newMemoryDrafts())

	_, err := svc.Get(context.Background(), "missing", "", "")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Get(context.Background(), "", "", "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestUpdate_ResolvesRouteFromPair(t *testing.T) {
	routes := new(mockRoutes)
	routes.On("FindByLocations", mock.Anything, "Nairobi", "Mombasa").Return(nairobiMombasa(), nil)

	svc := newTestSessionService(routes, newMemoryDrafts())
	w := newTestWizard("guest-1", true, nil)

	from, to := "Nairobi", "Mombasa"
	require.NoError(t, svc.Update(context.Background(), w, models.UpdateDraftRequest{From: &from, To: &to}))

	assert.Equal(t, "route-1", w.Draft().RouteID)
	routes.AssertExpectations(t)
}

func TestUpdate_RejectsUnknownPair(t *testing.T) {
	routes := new(mockRoutes)
	routes.On("FindByLocations", mock.Anything, "Nairobi", "Garissa").Return(nil, ErrRouteNotFound)

	svc := newTestSessionService(routes, newMemoryDrafts())
	w := newTestWizard("guest-1", true, nil)

	from, to := "Nairobi", "Garissa"
	err := svc.Update(context.Background(), w, models.UpdateDraftRequest{From: &from, To: &to})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "No route found from Nairobi to Garissa", err.Error())
	assert.Empty(t, w.Draft().From)
}

func TestUpdate_SameOriginAndDestination(t *testing.T) {
	svc := newTestSessionService(new(mockRoutes), newMemoryDrafts())
	w := newTestWizard("guest-1", true, nil)

	from, to := "Nairobi", "nairobi"
	err := svc.Update(context.Background(), w, models.UpdateDraftRequest{From: &from, To: &to})
	assert.True(t, IsValidation(err))
}

func TestUpdate_UnknownRouteID(t *testing.T) {
	routes := new(mockRoutes)
	routes.On("GetByID", mock.Anything, "route-x").Return(nil, ErrRouteNotFound)

	svc := newTestSessionService(routes, newMemoryDrafts())
	id := "route-x"
	err := svc.Update(context.Background(), newTestWizard("guest-1", true, nil), models.UpdateDraftRequest{RouteID: &id})
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestReset_ClearsDraftAndSession(t *testing.T) {
	routes := new(mockRoutes)
	routes.On("FindByLocations", mock.Anything, "Nairobi", "Kisumu").Return(nil, ErrRouteNotFound)

	drafts := newMemoryDrafts()
	svc := newTestSessionService(routes, drafts)

	w, err := svc.Start(context.Background(), "guest-1", "", models.HydrateQuery{From: "Nairobi", To: "Kisumu"}, "")
	require.NoError(t, err)
	require.Contains(t, drafts.rows, "guest-1")
	require.Equal(t, "Kisumu", w.Draft().To)

	require.NoError(t, svc.Reset(context.Background(), "guest-1"))
	assert.NotContains(t, drafts.rows, "guest-1")
	assert.Equal(t, 0, svc.ActiveSessions())
}
