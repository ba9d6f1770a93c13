package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// SeatListener forwards Postgres NOTIFY messages about seat rows.
// It opens its own lib/pq connection regardless of the pool driver.
type SeatListener struct {
	dsn     string
	channel string
	logger  *logrus.Logger
}

// NewSeatListener creates a listener for the given channel
func NewSeatListener(dsn, channel string, logger *logrus.Logger) *SeatListener {
	return &SeatListener{dsn: dsn, channel: channel, logger: logger}
}

// DecodeSeatChange parses a NOTIFY payload. An empty payload is a valid
// "something changed" signal with no route scope.
func DecodeSeatChange(payload string) (models.SeatChangeEvent, error) {
	var event models.SeatChangeEvent
	if payload == "" {
		return event, nil
	}
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return event, fmt.Errorf("invalid seat change payload: %w", err)
	}
	return event, nil
}

// Run listens until ctx is cancelled, calling handle for every change.
// After a reconnect handle receives an unscoped event so subscribers re-fetch.
func (l *SeatListener) Run(ctx context.Context, handle func(models.SeatChangeEvent)) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.logger.WithError(err).WithField("channel", l.channel).Warn("Seat listener connection problem")
		}
	}

	listener := pq.NewListener(l.dsn, 2*time.Second, time.Minute, reportProblem)
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.channel, err)
	}

	l.logger.WithField("channel", l.channel).Info("Seat change listener started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Seat change listener stopped")
			return nil

		case n := <-listener.Notify:
			if n == nil {
				// connection was re-established; notifications may have been missed
				handle(models.SeatChangeEvent{})
				continue
			}
			event, err := DecodeSeatChange(n.Extra)
			if err != nil {
				l.logger.WithError(err).WithField("payload", n.Extra).Warn("Ignoring seat change")
				continue
			}
			handle(event)

		case <-time.After(90 * time.Second):
			go func() {
				if err := listener.Ping(); err != nil {
					l.logger.WithError(err).Warn("Seat listener ping failed")
				}
			}()
		}
	}
}
