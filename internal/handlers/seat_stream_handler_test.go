package handlers

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
)

// readEvents forwards the name of every SSE event on the stream
func readEvents(resp *http.Response) <-chan string {
	events := make(chan string, 8)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event:"); ok {
				events <- strings.TrimSpace(name)
			}
		}
	}()
	return events
}

func nextEvent(t *testing.T, events <-chan string) string {
	t.Helper()
	select {
	case name, ok := <-events:
		require.True(t, ok, "stream closed")
		return name
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a stream event")
		return ""
	}
}

func TestSeatStream_RefetchesOnChange(t *testing.T) {
	f := newBookingFixture()
	feed := services.NewSeatFeed()
	router := f.router()
	router.GET("/booking/seats/stream", NewSeatStreamHandler(f.handler, feed, testLogger()).Stream)
	f.readyWizard(t, router, f.sessionKey)

	f.procedures.On("GetSeatAvailability", mock.Anything, "r-1", f.date, "08:00", (*string)(nil)).
		Return([]models.SeatAvailability{
			{SeatNumber: 1, Status: models.SeatStatusAvailable, IsAvailable: true},
			{SeatNumber: 2, Status: models.SeatStatusBooked},
		}, nil)

	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/booking/seats/stream", nil)
	require.NoError(t, err)
	req.Header.Set("X-Booking-Session", f.sessionKey)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	events := readEvents(resp)
	assert.Equal(t, "seats", nextEvent(t, events))
	assert.Equal(t, 1, feed.SubscriberCount())

	feed.Publish(models.SeatChangeEvent{RouteID: "r-1", SeatNumber: 1})
	assert.Equal(t, "seats", nextEvent(t, events))

	cancel()
	require.Eventually(t, func() bool { return feed.SubscriberCount() == 0 }, 5*time.Second, 10*time.Millisecond)
	f.procedures.AssertNumberOfCalls(t, "GetSeatAvailability", 2)
}

func TestSeatStream_UnknownSession(t *testing.T) {
	f := newBookingFixture()
	feed := services.NewSeatFeed()
	router := f.router()
	router.GET("/booking/seats/stream", NewSeatStreamHandler(f.handler, feed, testLogger()).Stream)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/booking/seats/stream", nil)
	req.Header.Set("X-Booking-Session", f.sessionKey)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 0, feed.SubscriberCount())
}
