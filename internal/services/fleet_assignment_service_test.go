package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

func TestAssign_FallbackMessageDiffers(t *testing.T) {
	ctx := context.Background()

	run := func(fallback bool) *models.Notice {
		procs := new(mockProcedures)
		procs.On("AssignBus", mock.Anything, "route-1", "2024-07-10", "08:00", strPtr("bus-7"), 2).
			Return(&models.BusAssignment{AssignedBusID: "bus-9", FleetName: "Standard", AvailableSeats: 12, IsFallback: fallback}, nil)

		w := readyWizard(t, "session-1", nil)
		w.draft.Seats = []int{3, 4}
		svc := NewFleetAssignmentService(procs, testLogger())

		assignment, notice, err := svc.Assign(ctx, w, "bus-7")
		require.NoError(t, err)
		require.NotNil(t, notice)
		assert.Equal(t, "bus-9", assignment.AssignedBusID)
		assert.Equal(t, "bus-9", w.Draft().BusID)
		assert.Equal(t, "Standard", w.Draft().FleetName)
		procs.AssertExpectations(t)
		return notice
	}

	fallback := run(true)
	normal := run(false)

	assert.Equal(t, models.NoticeWarning, fallback.Level)
	assert.Contains(t, fallback.Message, "Standard")
	assert.Equal(t, models.NoticeSuccess, normal.Level)
	assert.NotEqual(t, normal.Message, fallback.Message)
}

func TestAssign_FallbackWithoutPreferenceIsNotAWarning(t *testing.T) {
	procs := new(mockProcedures)
	procs.On("AssignBus", mock.Anything, "route-1", "2024-07-10", "08:00", (*string)(nil), 1).
		Return(&models.BusAssignment{AssignedBusID: "bus-9", FleetName: "Standard", IsFallback: true}, nil)

	w := readyWizard(t, "session-1", nil)
	_, notice, err := NewFleetAssignmentService(procs, testLogger()).Assign(context.Background(), w, "")
	require.NoError(t, err)
	assert.Equal(t, models.NoticeSuccess, notice.Level)
}

func TestAssign_FailuresLeaveWizardUntouched(t *testing.T) {
	tests := []struct {
		name       string
		assignment *models.BusAssignment
		err        error
		check      func(t *testing.T, err error)
	}{
		{
			name: "Remote error",
			err:  &pq.Error{Message: "route is not active"},
			check: func(t *testing.T, err error) {
				assert.True(t, IsRemote(err))
				assert.Equal(t, "route is not active", err.Error())
			},
		},
		{
			name: "Empty result",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNoAssignment)
			},
		},
		{
			name:       "Blank fleet name",
			assignment: &models.BusAssignment{AssignedBusID: "bus-9", FleetName: "  "},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrMalformedFleetName)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			procs := new(mockProcedures)
			procs.On("AssignBus", mock.Anything, "route-1", "2024-07-10", "08:00", strPtr("bus-9"), 1).
				Return(tt.assignment, tt.err)

			w := readyWizard(t, "session-1", nil)
			_, _, err := NewFleetAssignmentService(procs, testLogger()).Assign(context.Background(), w, "bus-9")
			require.Error(t, err)
			tt.check(t, err)

			assert.Equal(t, "bus-7", w.Draft().BusID)
			assert.Equal(t, "Executive", w.Draft().FleetName)
		})
	}
}

func TestAssign_RequiresTrip(t *testing.T) {
	procs := new(mockProcedures)
	w := newTestWizard("session-1", true, nil)

	_, _, err := NewFleetAssignmentService(procs, testLogger()).Assign(context.Background(), w, "")
	assert.True(t, IsValidation(err))
	procs.AssertNotCalled(t, "AssignBus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListFleet_AddsSeatPrice(t *testing.T) {
	procs := new(mockProcedures)
	procs.On("GetAvailableFleet", mock.Anything, "route-1", "2024-07-10", "08:00").Return([]models.AvailableFleet{
		{BusID: "bus-7", FleetName: "Executive", BasePriceMultiplier: 1.5, RouteBasePrice: 1000},
		{BusID: "bus-9", FleetName: "Standard", BasePriceMultiplier: 1, RouteBasePrice: 1000},
	}, nil)

	fleet, err := NewFleetAssignmentService(procs, testLogger()).ListFleet(context.Background(), readyWizard(t, "s", nil))
	require.NoError(t, err)
	require.Len(t, fleet, 2)
	assert.Equal(t, 1500.0, fleet[0].PricePerSeat)
	assert.Equal(t, 1000.0, fleet[1].PricePerSeat)
}

func TestListFleet_RemoteError(t *testing.T) {
	procs := new(mockProcedures)
	procs.On("GetAvailableFleet", mock.Anything, "route-1", "2024-07-10", "08:00").Return(nil, errors.New("connection refused"))

	_, err := NewFleetAssignmentService(procs, testLogger()).ListFleet(context.Background(), readyWizard(t, "s", nil))
	require.Error(t, err)
	assert.True(t, IsRemote(err))
	assert.Equal(t, "connection refused", err.Error())
}
