package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/middleware"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
)

// UserBookingHandler lists a passenger's confirmed bookings
type UserBookingHandler struct {
	bookingRepo *database.BookingRepository
	store       *services.WizardStore
	logger      *logrus.Logger
}

// NewUserBookingHandler creates a new user booking handler
func NewUserBookingHandler(bookingRepo *database.BookingRepository, store *services.WizardStore, logger *logrus.Logger) *UserBookingHandler {
	return &UserBookingHandler{bookingRepo: bookingRepo, store: store, logger: logger}
}

// ListMyBookings returns the caller's bookings, newest first
// @Summary My bookings
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /bookings [get]
func (h *UserBookingHandler) ListMyBookings(c *gin.Context) {
	userID := middleware.MustGetUserContext(c).UserID.String()

	if bookings, ok := h.store.CachedBookings(userID); ok {
		c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
		return
	}

	bookings, err := h.bookingRepo.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	h.store.CacheBookings(userID, bookings)

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}
