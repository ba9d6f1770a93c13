package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

func TestCanProceedToStep(t *testing.T) {
	tests := []struct {
		name       string
		fleetAware bool
		setup      func(d *models.BookingDraft)
		want       map[models.WizardStep]bool
	}{
		{
			name:  "Empty draft",
			setup: func(d *models.BookingDraft) {},
			want:  map[models.WizardStep]bool{0: true, 1: true, 2: false, 3: false, 4: false, 5: false, 6: false},
		},
		{
			name: "Route pair only",
			setup: func(d *models.BookingDraft) {
				d.From, d.To = "Nairobi", "Mombasa"
			},
			want: map[models.WizardStep]bool{1: true, 2: true, 3: false, 5: false},
		},
		{
			name: "From without to",
			setup: func(d *models.BookingDraft) {
				d.From = "Nairobi"
			},
			want: map[models.WizardStep]bool{1: true, 2: false},
		},
		{
			name:       "Fleet aware without bus",
			fleetAware: true,
			setup: func(d *models.BookingDraft) {
				d.From, d.To, d.Date, d.Time = "Nairobi", "Mombasa", "2024-07-10", "08:00"
			},
			want: map[models.WizardStep]bool{3: true, 4: false, 5: false},
		},
		{
			name:       "Fleet unaware skips the bus",
			fleetAware: false,
			setup: func(d *models.BookingDraft) {
				d.From, d.To, d.Date, d.Time = "Nairobi", "Mombasa", "2024-07-10", "08:00"
			},
			want: map[models.WizardStep]bool{3: true, 4: true, 5: false},
		},
		{
			name:       "Everything selected",
			fleetAware: true,
			setup: func(d *models.BookingDraft) {
				d.From, d.To, d.Date, d.Time = "Nairobi", "Mombasa", "2024-07-10", "08:00"
				d.BusID = "bus-7"
				d.Seats = []int{3}
			},
			want: map[models.WizardStep]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: false},
		},
		{
			name:       "Seats without a date",
			fleetAware: false,
			setup: func(d *models.BookingDraft) {
				d.From, d.To = "Nairobi", "Mombasa"
				d.Seats = []int{3}
			},
			want: map[models.WizardStep]bool{2: true, 3: false, 5: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWizard("session-1", tt.fleetAware, nil)
			tt.setup(&w.draft)
			for step, want := range tt.want {
				assert.Equal(t, want, w.CanProceedToStep(step), "step %d", step)
			}
		})
	}
}

func TestNextAndBack(t *testing.T) {
	ctx := context.Background()
	w := newTestWizard("session-1", true, nil)

	step, err := w.Next(ctx)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, models.StepRoute, step)

	w.draft.From, w.draft.To = "Nairobi", "Mombasa"
	step, err = w.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StepDateTime, step)

	// date and time missing
	_, err = w.Next(ctx)
	assert.True(t, IsValidation(err))
	assert.Equal(t, models.StepDateTime, w.Draft().Step)

	step, err = w.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StepRoute, step)

	step, err = w.Back(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StepRoute, step, "back at step 1 is a no-op")
}

func TestNext_RefusedAtLastStep(t *testing.T) {
	w := readyWizard(t, "session-1", nil)
	w.draft.Seats = []int{1}
	w.draft.Step = models.StepPayment

	step, err := w.Next(context.Background())
	assert.True(t, IsValidation(err))
	assert.Equal(t, models.StepPayment, step)
}

func TestApply_RejectsBadInputWithoutMutation(t *testing.T) {
	ctx := context.Background()
	w := readyWizard(t, "session-1", nil)
	w.draft.Seats = []int{3, 4}
	before := w.Draft()

	err := w.Apply(ctx, models.UpdateDraftRequest{
		From: strPtr("Kisumu"),
		Date: strPtr("10/07/2024"),
	}, nil)
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	err = w.SetTime(ctx, "8am")
	assert.True(t, IsValidation(err))

	err = w.SetDate(ctx, "2024-04-30")
	assert.True(t, IsValidation(err), "past dates are rejected")

	err = w.SetTime(ctx, "09:15")
	assert.True(t, IsValidation(err), "route does not depart at 09:15")

	err = w.Apply(ctx, models.UpdateDraftRequest{Seats: []int{1, 2, 3, 4, 5, 6}}, nil)
	assert.True(t, IsValidation(err))

	after := w.Draft()
	after.UpdatedAt = before.UpdatedAt
	assert.Equal(t, before, after)
}

func TestApply_TripChangeClearsBusAndSeats(t *testing.T) {
	ctx := context.Background()
	w := readyWizard(t, "session-1", nil)
	w.draft.Seats = []int{3, 4}
	w.draft.LockedSeats = []int{3}

	require.NoError(t, w.SetTime(ctx, "20:00:00"))

	d := w.Draft()
	assert.Equal(t, "20:00", d.Time)
	assert.Empty(t, d.BusID)
	assert.Empty(t, d.FleetName)
	assert.Empty(t, d.Seats)
	assert.Empty(t, d.LockedSeats)
	assert.Equal(t, models.StepFleet, d.Step, "step pulled back to the first unsatisfied step")
}

func TestApply_RFC3339DateConvertsToLocalDay(t *testing.T) {
	w := newTestWizard("session-1", false, nil)
	// 22:30 UTC on the 9th is already the 10th in Nairobi
	require.NoError(t, w.SetDate(context.Background(), "2024-07-09T22:30:00Z"))
	assert.Equal(t, "2024-07-10", w.Draft().Date)
}

func TestApply_SameValueKeepsSelections(t *testing.T) {
	w := readyWizard(t, "session-1", nil)
	w.draft.Seats = []int{3}

	require.NoError(t, w.SetDate(context.Background(), "2024-07-10"))
	assert.Equal(t, []int{3}, w.Draft().Seats)
	assert.Equal(t, "bus-7", w.Draft().BusID)
}

func TestHydrate_FromURL(t *testing.T) {
	ctx := context.Background()

	t.Run("Route id auto-advances", func(t *testing.T) {
		w := newTestWizard("session-1", true, nil)
		w.Hydrate(ctx, models.HydrateQuery{RouteID: "route-1", Date: "2024-07-10"}, nil, nairobiMombasa())

		d := w.Draft()
		assert.Equal(t, "route-1", d.RouteID)
		assert.Equal(t, "Nairobi", d.From)
		assert.Equal(t, "Mombasa", d.To)
		assert.Equal(t, "branch-nbi", d.BranchID)
		assert.Equal(t, "2024-07-10", d.Date)
		assert.Equal(t, models.StepDateTime, d.Step)
	})

	t.Run("Pair without route id stays on step 1", func(t *testing.T) {
		w := newTestWizard("session-1", true, nil)
		w.Hydrate(ctx, models.HydrateQuery{From: "Nairobi", To: "Mombasa"}, nil, nil)

		d := w.Draft()
		assert.Equal(t, "Nairobi", d.From)
		assert.Equal(t, models.StepRoute, d.Step)
	})

	t.Run("Malformed date is ignored", func(t *testing.T) {
		w := newTestWizard("session-1", true, nil)
		w.Hydrate(ctx, models.HydrateQuery{From: "Nairobi", To: "Mombasa", Date: "not-a-date", BranchID: "b-1"}, nil, nil)

		d := w.Draft()
		assert.Empty(t, d.Date)
		assert.Equal(t, "Nairobi", d.From)
		assert.Equal(t, "b-1", d.BranchID)
	})

	t.Run("URL wins over snapshot", func(t *testing.T) {
		w := newTestWizard("session-1", true, nil)
		snapshot := &models.DraftSnapshot{From: "Kisumu", To: "Eldoret", Step: 3}
		w.Hydrate(ctx, models.HydrateQuery{From: "Nairobi", To: "Mombasa"}, snapshot, nil)
		assert.Equal(t, "Nairobi", w.Draft().From)
	})
}

func TestHydrate_SnapshotMalformedDateKeepsRest(t *testing.T) {
	w := newTestWizard("session-1", false, nil)
	w.Hydrate(context.Background(), models.HydrateQuery{}, &models.DraftSnapshot{
		From:  "Nairobi",
		To:    "Mombasa",
		Date:  "June first",
		Time:  "08:00",
		Seats: []int{4, 3, 3},
		Step:  9,
	}, nil)

	d := w.Draft()
	assert.Empty(t, d.Date)
	assert.Equal(t, "08:00", d.Time)
	assert.Equal(t, []int{3, 4}, d.Seats)
	assert.Equal(t, models.StepDateTime, d.Step)
	assert.True(t, w.CanProceedToStep(d.Step))
}

func TestHydrate_SnapshotStepFollowsGate(t *testing.T) {
	ctx := context.Background()

	t.Run("Fleet selection without a bus", func(t *testing.T) {
		w := newTestWizard("session-1", true, nil)
		w.Hydrate(ctx, models.HydrateQuery{}, &models.DraftSnapshot{
			From: "Nairobi", To: "Mombasa", Date: "2024-07-10", Time: "08:00",
			Seats: []int{3}, Step: 5,
		}, nil)

		d := w.Draft()
		assert.Equal(t, models.StepFleet, d.Step)
		assert.True(t, w.CanProceedToStep(d.Step))
		assert.False(t, w.CanProceedToStep(models.StepSeats))
	})

	t.Run("No seats", func(t *testing.T) {
		w := newTestWizard("session-1", false, nil)
		w.Hydrate(ctx, models.HydrateQuery{}, &models.DraftSnapshot{
			From: "Nairobi", To: "Mombasa", Date: "2024-07-10", Time: "08:00", Step: 5,
		}, nil)

		assert.Equal(t, models.StepSeats, w.Draft().Step)
	})

	t.Run("Complete snapshot keeps its step", func(t *testing.T) {
		w := newTestWizard("session-1", true, nil)
		w.Hydrate(ctx, models.HydrateQuery{}, &models.DraftSnapshot{
			From: "Nairobi", To: "Mombasa", Date: "2024-07-10", Time: "08:00",
			BusID: "bus-7", FleetName: "Executive", Seats: []int{3}, Step: 5,
		}, nil)

		assert.Equal(t, models.StepPayment, w.Draft().Step)
	})
}

func TestHydrate_PastDateIgnored(t *testing.T) {
	ctx := context.Background()

	t.Run("URL", func(t *testing.T) {
		w := newTestWizard("session-1", false, nil)
		w.Hydrate(ctx, models.HydrateQuery{From: "Nairobi", To: "Mombasa", Date: "2001-01-01"}, nil, nil)

		d := w.Draft()
		assert.Empty(t, d.Date)
		assert.Equal(t, "Nairobi", d.From)
	})

	t.Run("Saved booking", func(t *testing.T) {
		w := newTestWizard("session-1", false, nil)
		w.Hydrate(ctx, models.HydrateQuery{}, &models.DraftSnapshot{
			From: "Nairobi", To: "Mombasa", Date: "2024-04-30", Time: "08:00",
			Seats: []int{3}, Step: 5,
		}, nil)

		d := w.Draft()
		assert.Empty(t, d.Date)
		assert.Equal(t, "08:00", d.Time)
		assert.Equal(t, models.StepDateTime, d.Step)
	})

	t.Run("Today is kept", func(t *testing.T) {
		w := newTestWizard("session-1", false, nil)
		w.Hydrate(ctx, models.HydrateQuery{From: "Nairobi", To: "Mombasa", Date: "2024-05-01"}, nil, nil)

		assert.Equal(t, "2024-05-01", w.Draft().Date)
	})
}

func TestDraftPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	drafts := newMemoryDrafts()
	w := newTestWizard("guest-1", false, drafts)

	err := w.Apply(ctx, models.UpdateDraftRequest{
		From:  strPtr("Nairobi"),
		To:    strPtr("Mombasa"),
		Date:  strPtr("2024-06-01"),
		Time:  strPtr("08:00"),
		Seats: []int{3, 4},
	}, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := w.Next(ctx)
		require.NoError(t, err)
	}
	original := w.Draft()
	require.Equal(t, models.StepSeats, original.Step)

	persistence := NewDraftPersistenceService(drafts, 0, testLogger())
	snapshot, err := persistence.Resume(ctx, "guest-1")
	require.NoError(t, err)
	require.NotNil(t, snapshot)

	restored := newTestWizard("guest-1", false, nil)
	restored.Hydrate(ctx, models.HydrateQuery{}, snapshot, nil)
	got := restored.Draft()

	assert.Equal(t, "Nairobi", got.From)
	assert.Equal(t, "Mombasa", got.To)
	assert.Equal(t, "2024-06-01", got.Date)
	assert.Equal(t, "08:00", got.Time)
	assert.Equal(t, []int{3, 4}, got.Seats)
	assert.Equal(t, original.Step, got.Step)
}

func TestWizard_AuthenticatedUsersAreNotPersisted(t *testing.T) {
	drafts := newMemoryDrafts()
	w := newTestWizard("session-1", false, drafts)
	w.Authenticate("user-1", "desktop")

	require.NoError(t, w.Apply(context.Background(), models.UpdateDraftRequest{From: strPtr("Nairobi")}, nil))
	assert.Equal(t, 0, drafts.saves)
}

func TestWizard_EmptyDraftIsNotPersisted(t *testing.T) {
	drafts := newMemoryDrafts()
	w := newTestWizard("session-1", false, drafts)

	_, err := w.Back(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, drafts.saves)
}

func TestLockOwner(t *testing.T) {
	w := newTestWizard("session-1", false, nil)
	assert.Equal(t, "session-1", w.lockOwner())
	w.Authenticate("user-1", "")
	assert.Equal(t, "user-1", w.lockOwner())
}
