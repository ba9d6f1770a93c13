package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
)

var (
	// ErrAuthRequired means the operation needs a signed-in passenger
	ErrAuthRequired = errors.New("please log in to complete your booking")
	// ErrNoAssignment means assign_bus_to_booking returned nothing usable
	ErrNoAssignment = errors.New("no bus is available for the selected trip")
	// ErrMalformedFleetName means the assignment came back without a fleet name
	ErrMalformedFleetName = errors.New("bus assignment returned an invalid fleet name")
	// ErrSeatUnavailable means another session holds or booked the seat
	ErrSeatUnavailable = errors.New("seat is no longer available")
	// ErrSessionNotFound means no wizard exists for the session key
	ErrSessionNotFound = errors.New("booking session not found")
	// ErrRouteNotFound means the route id or pair did not resolve
	ErrRouteNotFound = database.ErrRouteNotFound
	// ErrForbidden means the caller does not own the resource
	ErrForbidden = errors.New("you do not have access to this resource")
)

// ValidationError is a local validation failure; no remote call was made
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RemoteError wraps a failure of a database procedure. Error() yields the
// message raised by the database so it can be shown to the user verbatim.
type RemoteError struct {
	Procedure string
	Err       error
}

func (e *RemoteError) Error() string {
	return remoteMessage(e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func remote(procedure string, err error) error {
	if err == nil {
		return nil
	}
	return &RemoteError{Procedure: procedure, Err: err}
}

func remoteMessage(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Message != "" {
		return pqErr.Message
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Message != "" {
		return pgErr.Message
	}
	return err.Error()
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsRemote reports whether err came from a database procedure
func IsRemote(err error) bool {
	var r *RemoteError
	return errors.As(err, &r)
}
