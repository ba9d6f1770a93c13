package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/middleware"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/utils"
)

// BookingHandler drives the booking wizard of the caller's session
type BookingHandler struct {
	sessions     *services.BookingSessionService
	fleet        *services.FleetAssignmentService
	seats        *services.SeatSelectionService
	submission   *services.BookingSubmissionService
	auditService *services.AuditService
	loginURL     string
	logger       *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	sessions *services.BookingSessionService,
	fleet *services.FleetAssignmentService,
	seats *services.SeatSelectionService,
	submission *services.BookingSubmissionService,
	auditService *services.AuditService,
	loginURL string,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		sessions:     sessions,
		fleet:        fleet,
		seats:        seats,
		submission:   submission,
		auditService: auditService,
		loginURL:     loginURL,
		logger:       logger,
	}
}

// SessionResponse is the wizard state sent after every booking call
type SessionResponse struct {
	SessionKey  string              `json:"session_key"`
	Draft       models.BookingDraft `json:"draft"`
	Step        models.WizardStep   `json:"step"`
	StepName    string              `json:"step_name"`
	Route       *models.Route       `json:"route,omitempty"`
	MaxSeats    int                 `json:"max_seats"`
	FleetAware  bool                `json:"fleet_aware"`
	CanProceed  bool                `json:"can_proceed"`
	SignedIn    bool                `json:"signed_in"`
	Notices     []models.Notice     `json:"notices"`
	RedirectURL string              `json:"redirect_url,omitempty"`
}

func sessionResponse(w *services.BookingWizard, notices ...*models.Notice) SessionResponse {
	draft := w.Draft()
	resp := SessionResponse{
		SessionKey: draft.SessionKey,
		Draft:      draft,
		Step:       draft.Step,
		StepName:   draft.Step.String(),
		Route:      w.Route(),
		MaxSeats:   w.MaxSeats(),
		FleetAware: w.FleetAware(),
		CanProceed: draft.Step < models.LastStep && w.CanProceedToStep(draft.Step+1),
		SignedIn:   w.UserID() != "",
		Notices:    []models.Notice{},
	}
	for _, n := range notices {
		if n != nil {
			resp.Notices = append(resp.Notices, *n)
		}
	}
	return resp
}

// wizard loads the caller's wizard, writing the error response when it can't
func (h *BookingHandler) wizard(c *gin.Context) (*services.BookingWizard, bool) {
	w, err := h.sessions.Get(c.Request.Context(), middleware.SessionKey(c), middleware.UserID(c), utils.GetUserAgent(c))
	if err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return nil, false
	}
	return w, true
}

// StartSession opens the wizard for the booking page
// @Summary Start booking session
// @Description Create the session wizard from URL parameters. Without parameters a guest resumes their saved draft.
// @Tags Booking
// @Produce json
// @Param routeId query string false "Route ID"
// @Param branchId query string false "Branch ID"
// @Param from query string false "Departure location"
// @Param to query string false "Destination"
// @Param date query string false "Travel date (YYYY-MM-DD)"
// @Param returnUrl query string false "URL to return to after login"
// @Success 200 {object} SessionResponse
// @Router /booking/session [post]
func (h *BookingHandler) StartSession(c *gin.Context) {
	var q models.HydrateQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	w, err := h.sessions.Start(c.Request.Context(), middleware.SessionKey(c), middleware.UserID(c), q, utils.GetUserAgent(c))
	if err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(w))
}

// GetSession returns the current wizard state, starting an empty wizard
// when the session has none
// @Summary Get booking session
// @Tags Booking
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /booking/session [get]
func (h *BookingHandler) GetSession(c *gin.Context) {
	ctx := c.Request.Context()
	key := middleware.SessionKey(c)
	userAgent := utils.GetUserAgent(c)

	w, err := h.sessions.Get(ctx, key, middleware.UserID(c), userAgent)
	if errors.Is(err, services.ErrSessionNotFound) {
		w, err = h.sessions.Start(ctx, key, middleware.UserID(c), models.HydrateQuery{}, userAgent)
	}
	if err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(w))
}

// UpdateSession patches wizard fields
// @Summary Update booking session
// @Description Set route, locations, date, time, seats or payment method. Steps that are no longer satisfied are stepped back.
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body models.UpdateDraftRequest true "Fields to change"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /booking/session [patch]
func (h *BookingHandler) UpdateSession(c *gin.Context) {
	var req models.UpdateDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	w, ok := h.wizard(c)
	if !ok {
		return
	}

	if err := h.sessions.Update(c.Request.Context(), w, req); err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(w))
}

// ResetSession clears the wizard and its saved draft
// @Summary Reset booking session
// @Tags Booking
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /booking/session [delete]
func (h *BookingHandler) ResetSession(c *gin.Context) {
	if err := h.sessions.Reset(c.Request.Context(), middleware.SessionKey(c)); err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Booking session cleared"})
}

// Next moves the wizard forward one step
// @Summary Next wizard step
// @Tags Booking
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Router /booking/session/next [post]
func (h *BookingHandler) Next(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	if _, err := w.Next(c.Request.Context()); err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(w))
}

// Back moves the wizard back one step
// @Summary Previous wizard step
// @Tags Booking
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /booking/session/back [post]
func (h *BookingHandler) Back(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	if _, err := w.Back(c.Request.Context()); err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(w))
}

// CanProceed reports whether every step before :step is satisfied
// @Summary Check step access
// @Tags Booking
// @Produce json
// @Param step path int true "Wizard step (1-5)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Router /booking/session/can-proceed/{step} [get]
func (h *BookingHandler) CanProceed(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_step", Message: "Step must be a number"})
		return
	}

	w, ok := h.wizard(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"step":        step,
		"can_proceed": w.CanProceedToStep(models.WizardStep(step)),
	})
}

// ListFleet returns the buses available for the selected departure
// @Summary List available buses
// @Tags Booking
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /booking/fleet [get]
func (h *BookingHandler) ListFleet(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	fleet, err := h.fleet.ListFleet(c.Request.Context(), w)
	if err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fleet":       fleet,
		"total":       len(fleet),
		"fleet_aware": w.FleetAware(),
	})
}

// AssignFleetRequest names the passenger's preferred bus
type AssignFleetRequest struct {
	BusID string `json:"bus_id"`
}

// AssignFleet asks for a bus assignment, preferring the requested bus
// @Summary Assign a bus
// @Description A full preferred bus is replaced with another fleet and a warning notice
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body AssignFleetRequest false "Preferred bus"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /booking/fleet/assign [post]
func (h *BookingHandler) AssignFleet(c *gin.Context) {
	var req AssignFleetRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	w, ok := h.wizard(c)
	if !ok {
		return
	}

	assignment, notice, err := h.fleet.Assign(c.Request.Context(), w, req.BusID)
	if err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assignment": assignment,
		"session":    sessionResponse(w, notice),
	})
}

// GetSeats returns the seat map for the selected departure
// @Summary Seat map
// @Tags Booking
// @Produce json
// @Success 200 {object} models.SeatMap
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /booking/seats [get]
func (h *BookingHandler) GetSeats(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	seatMap, err := h.seats.SeatMap(c.Request.Context(), w)
	if err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}
	c.JSON(http.StatusOK, seatMap)
}

// ToggleSeat selects or deselects one seat
// @Summary Toggle seat
// @Tags Booking
// @Produce json
// @Param seat path int true "Seat number"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /booking/seats/{seat}/toggle [post]
func (h *BookingHandler) ToggleSeat(c *gin.Context) {
	seat, err := strconv.Atoi(c.Param("seat"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_seat", Message: "Seat must be a number"})
		return
	}

	w, ok := h.wizard(c)
	if !ok {
		return
	}

	notice, err := h.seats.Toggle(c.Request.Context(), w, seat)
	if err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}
	c.JSON(http.StatusOK, sessionResponse(w, notice))
}

// ConfirmRequest carries the page the guest should come back to after login
type ConfirmRequest struct {
	ReturnURL string `json:"return_url"`
}

// Confirm submits the booking
// @Summary Confirm booking
// @Description Guests get 401 with a login redirect after their draft is saved
// @Tags Booking
// @Accept json
// @Produce json
// @Param request body ConfirmRequest false "Return URL"
// @Success 201 {object} models.SubmissionResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /booking/confirm [post]
func (h *BookingHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	w, ok := h.wizard(c)
	if !ok {
		return
	}

	result, err := h.submission.Submit(c.Request.Context(), w, req.ReturnURL)
	if err != nil {
		respondError(c, h.logger, err, h.loginURL)
		return
	}

	if userID, err := uuid.Parse(w.UserID()); err == nil {
		h.safeLogBookingCreated(c, userID, result)
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id": result.Booking.BookingID,
		"user_id":    w.UserID(),
		"route_id":   result.Payload.RouteID,
		"seats":      result.Payload.SeatNumbers,
	}).Info("Booking confirmed")

	c.JSON(http.StatusCreated, result)
}
