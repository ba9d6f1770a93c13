package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
)

const seatStreamHeartbeat = 25 * time.Second

// SeatStreamHandler pushes fresh seat maps to the booking page whenever
// seats on the session's route change
type SeatStreamHandler struct {
	booking *BookingHandler
	feed    *services.SeatFeed
	logger  *logrus.Logger
}

// NewSeatStreamHandler creates a new seat stream handler
func NewSeatStreamHandler(booking *BookingHandler, feed *services.SeatFeed, logger *logrus.Logger) *SeatStreamHandler {
	return &SeatStreamHandler{booking: booking, feed: feed, logger: logger}
}

// Stream serves the seat map as server-sent events
// @Summary Live seat map
// @Description Sends a "seats" event with the full seat map on connect and after every change on the route
// @Tags Booking
// @Produce text/event-stream
// @Success 200 {object} models.SeatMap
// @Failure 400 {object} ErrorResponse
// @Router /booking/seats/stream [get]
func (h *SeatStreamHandler) Stream(c *gin.Context) {
	w, ok := h.booking.wizard(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	first, err := h.booking.seats.SeatMap(ctx, w)
	if err != nil {
		respondError(c, h.logger, err, h.booking.loginURL)
		return
	}

	sub := h.feed.Subscribe(first.RouteID)
	defer h.feed.Unsubscribe(sub)

	heartbeat := time.NewTicker(seatStreamHeartbeat)
	defer heartbeat.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("seats", first)
	c.Writer.Flush()

	c.Stream(func(out io.Writer) bool {
		select {
		case <-ctx.Done():
			return false

		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true

		case <-sub.C:
			seatMap, err := h.booking.seats.SeatMap(ctx, w)
			if err != nil {
				h.logger.WithError(err).WithField("route_id", sub.RouteID).Warn("Failed to refresh seat map for stream")
				return true
			}
			if seatMap.RouteID != sub.RouteID {
				// the passenger switched trips, the page opens a new stream
				c.SSEvent("route_changed", gin.H{"route_id": seatMap.RouteID})
				return false
			}
			c.SSEvent("seats", seatMap)
			return true
		}
	})
}
