package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// BookingSessionCookie carries the booking session key for browsers
	BookingSessionCookie = "booking_session"
	// BookingSessionHeader carries the key for API clients without cookies
	BookingSessionHeader = "X-Booking-Session"

	sessionKeyContext = "booking_session_key"
	sessionMaxAge     = 7 * 24 * 60 * 60
)

// BookingSession makes sure every request has a booking session key. The
// key comes from the header, then the cookie; a new one is issued when
// neither is present or the value is not a uuid.
func BookingSession(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(BookingSessionHeader)
		if key == "" {
			key, _ = c.Cookie(BookingSessionCookie)
		}
		if _, err := uuid.Parse(key); err != nil {
			key = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(BookingSessionCookie, key, sessionMaxAge, "/", "", secure, true)
		c.Header(BookingSessionHeader, key)
		c.Set(sessionKeyContext, key)
		c.Next()
	}
}

// SessionKey returns the booking session key set by BookingSession
func SessionKey(c *gin.Context) string {
	return c.GetString(sessionKeyContext)
}
