package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestRemoteError_MessageFromDatabase(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"lib/pq error", &pq.Error{Message: "Seat 3 is already booked", Code: "P0001"}, "Seat 3 is already booked"},
		{"pgx error", &pgconn.PgError{Message: "route is inactive"}, "route is inactive"},
		{"wrapped pq error", fmt.Errorf("call failed: %w", &pq.Error{Message: "no buses"}), "no buses"},
		{"plain error", errors.New("connection refused"), "connection refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := remote("create_booking_with_branch", tt.err)
			assert.Equal(t, tt.want, err.Error())
			assert.True(t, IsRemote(err))
			assert.False(t, IsValidation(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestRemote_NilStaysNil(t *testing.T) {
	assert.NoError(t, remote("lock_seat", nil))
}

func TestValidationError(t *testing.T) {
	err := error(newValidationError("seats", "You can select a maximum of %d seats", 5))
	assert.True(t, IsValidation(err))
	assert.Equal(t, "You can select a maximum of 5 seats", err.Error())

	var v *ValidationError
	if assert.True(t, errors.As(err, &v)) {
		assert.Equal(t, "seats", v.Field)
	}
}
