package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
)

// AdminHandler handles back office requests other than routes and receipts
type AdminHandler struct {
	fleetRepo     *database.FleetRepository
	bookingRepo   *database.BookingRepository
	settingsRepo  *database.SystemSettingRepository
	analyticsRepo *database.AnalyticsRepository
	procedures    services.BookingProcedures
	sessions      *services.BookingSessionService
	cronService   *services.CronService
	auditService  *services.AuditService
	currency      string
	logger        *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	fleetRepo *database.FleetRepository,
	bookingRepo *database.BookingRepository,
	settingsRepo *database.SystemSettingRepository,
	analyticsRepo *database.AnalyticsRepository,
	procedures services.BookingProcedures,
	sessions *services.BookingSessionService,
	cronService *services.CronService,
	auditService *services.AuditService,
	currency string,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		fleetRepo:     fleetRepo,
		bookingRepo:   bookingRepo,
		settingsRepo:  settingsRepo,
		analyticsRepo: analyticsRepo,
		procedures:    procedures,
		sessions:      sessions,
		cronService:   cronService,
		auditService:  auditService,
		currency:      currency,
		logger:        logger,
	}
}

// ===================================================================
// FLEET
// ===================================================================

// ListFleet handles GET /api/v1/admin/fleet
// @Summary List fleet types
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param include_inactive query bool false "Include deactivated fleet types"
// @Success 200 {object} map[string]interface{}
// @Router /admin/fleet [get]
func (h *AdminHandler) ListFleet(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	fleet, err := h.fleetRepo.List(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"fleet": fleet, "count": len(fleet)})
}

// GetFleet handles GET /api/v1/admin/fleet/:id
func (h *AdminHandler) GetFleet(c *gin.Context) {
	fleet, err := h.fleetRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, fleet)
}

// CreateFleet handles POST /api/v1/admin/fleet
// @Summary Create fleet type
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateFleetRequest true "Fleet type"
// @Success 201 {object} models.FleetType
// @Failure 400 {object} ErrorResponse
// @Router /admin/fleet [post]
func (h *AdminHandler) CreateFleet(c *gin.Context) {
	var req models.CreateFleetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	features := req.Features
	if features == nil {
		features = []string{}
	}
	fleet := &models.FleetType{
		Name:                strings.TrimSpace(req.Name),
		Capacity:            req.Capacity,
		Features:            features,
		BasePriceMultiplier: req.BasePriceMultiplier,
		IsActive:            true,
	}
	if err := h.fleetRepo.Create(c.Request.Context(), fleet); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "fleet_create", "fleet", fleet.ID, map[string]interface{}{
		"name":       fleet.Name,
		"multiplier": fleet.BasePriceMultiplier,
	})
	c.JSON(http.StatusCreated, fleet)
}

// UpdateFleet handles PUT /api/v1/admin/fleet/:id
// @Summary Update fleet type
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Fleet ID"
// @Param request body models.UpdateFleetRequest true "Fields to change"
// @Success 200 {object} models.FleetType
// @Failure 404 {object} ErrorResponse
// @Router /admin/fleet/{id} [put]
func (h *AdminHandler) UpdateFleet(c *gin.Context) {
	var req models.UpdateFleetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	fleet, err := h.fleetRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	req.Apply(fleet)

	if err := h.fleetRepo.Update(ctx, fleet); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "fleet_update", "fleet", fleet.ID, nil)
	c.JSON(http.StatusOK, fleet)
}

// DeactivateFleet handles DELETE /api/v1/admin/fleet/:id
// Fleet types are referenced by buses and prices, so they are only deactivated.
func (h *AdminHandler) DeactivateFleet(c *gin.Context) {
	id := c.Param("id")
	if err := h.fleetRepo.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "fleet_deactivate", "fleet", id, nil)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Fleet type deactivated"})
}

// ===================================================================
// BOOKINGS AND SEATS
// ===================================================================

// ListBookings handles GET /api/v1/admin/bookings
// @Summary List bookings
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "Booking status"
// @Param route_id query string false "Route ID"
// @Param branch_id query string false "Branch ID"
// @Param date_from query string false "Departure from (YYYY-MM-DD)"
// @Param date_to query string false "Departure to (YYYY-MM-DD)"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} map[string]interface{}
// @Router /admin/bookings [get]
func (h *AdminHandler) ListBookings(c *gin.Context) {
	var filter models.BookingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindError(c, err)
		return
	}

	bookings, err := h.bookingRepo.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

// GetBooking handles GET /api/v1/admin/bookings/:id
func (h *AdminHandler) GetBooking(c *gin.Context) {
	booking, err := h.bookingRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// InitializeSeats handles POST /api/v1/admin/seats/initialize
// @Summary Initialize seats for a departure
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.InitializeSeatsRequest true "Departure"
// @Success 200 {object} SuccessResponse
// @Failure 502 {object} ErrorResponse
// @Router /admin/seats/initialize [post]
func (h *AdminHandler) InitializeSeats(c *gin.Context) {
	var req models.InitializeSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	err := h.procedures.InitializeSeatAvailability(c.Request.Context(), req.RouteID, req.DepartureDate, req.DepartureTime, req.TotalSeats, req.BusID)
	if err != nil {
		respondError(c, h.logger, &services.RemoteError{Procedure: "initialize_seat_availability", Err: err}, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "seats_initialize", "route", req.RouteID, map[string]interface{}{
		"departure_date": req.DepartureDate,
		"departure_time": req.DepartureTime,
	})
	c.JSON(http.StatusOK, SuccessResponse{Message: "Seats initialized"})
}

// ===================================================================
// SETTINGS
// ===================================================================

// ListSettings handles GET /api/v1/admin/settings
func (h *AdminHandler) ListSettings(c *gin.Context) {
	settings, err := h.settingsRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// GetSetting handles GET /api/v1/admin/settings/:key
func (h *AdminHandler) GetSetting(c *gin.Context) {
	setting, err := h.settingsRepo.GetByKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, setting)
}

// UpdateSetting handles PUT /api/v1/admin/settings/:key
// @Summary Update setting
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Param request body models.UpdateSystemSettingRequest true "New value"
// @Success 200 {object} models.SystemSetting
// @Failure 404 {object} ErrorResponse
// @Router /admin/settings/{key} [put]
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	var req models.UpdateSystemSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	key := c.Param("key")
	if err := h.settingsRepo.Update(ctx, key, req.SettingValue); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	setting, err := h.settingsRepo.GetByKey(ctx, key)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "setting_update", "system_setting", key, map[string]interface{}{
		"value": req.SettingValue,
	})
	c.JSON(http.StatusOK, setting)
}

// ===================================================================
// DASHBOARD AND JOBS
// ===================================================================

// GetDashboardStats handles GET /api/v1/admin/dashboard/stats
// @Summary Dashboard stats
// @Description Booking totals, top routes and a daily series. The window defaults to the dashboard_days setting.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param days query int false "Days in the daily series"
// @Success 200 {object} models.DashboardStats
// @Router /admin/dashboard/stats [get]
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	ctx := c.Request.Context()

	days, err := strconv.Atoi(c.Query("days"))
	if err != nil || days <= 0 {
		days = h.settingsRepo.GetIntValue(ctx, "dashboard_days", 14)
	}

	stats, err := h.analyticsRepo.DashboardStats(ctx, days)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	stats.Currency = h.currency

	c.JSON(http.StatusOK, gin.H{
		"stats":           stats,
		"active_sessions": h.sessions.ActiveSessions(),
	})
}

// GetCronStatus handles GET /api/v1/admin/cron/status
func (h *AdminHandler) GetCronStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.cronService.GetJobStatus())
}

// PurgeDrafts handles POST /api/v1/admin/cron/purge-drafts
// @Summary Purge expired drafts now
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.JobRun
// @Failure 500 {object} services.JobRun
// @Router /admin/cron/purge-drafts [post]
func (h *AdminHandler) PurgeDrafts(c *gin.Context) {
	run := h.cronService.RunPurgeNow(c.Request.Context())

	safeLogAdminAction(c, h.auditService, "drafts_purge", "pending_booking_drafts", "", map[string]interface{}{
		"deleted": run.Affected,
	})

	status := http.StatusOK
	if run.Error != "" {
		status = http.StatusInternalServerError
	}
	c.JSON(status, run)
}
