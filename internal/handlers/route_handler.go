package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/database"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/Fredrickmureti/tour-kenya-sub001/internal/services"
)

// RouteHandler handles route, branch and route pricing requests
type RouteHandler struct {
	routeRepo    *database.RouteRepository
	fleetRepo    *database.FleetRepository
	auditService *services.AuditService
	logger       *logrus.Logger
}

// NewRouteHandler creates a new route handler
func NewRouteHandler(routeRepo *database.RouteRepository, fleetRepo *database.FleetRepository, auditService *services.AuditService, logger *logrus.Logger) *RouteHandler {
	return &RouteHandler{
		routeRepo:    routeRepo,
		fleetRepo:    fleetRepo,
		auditService: auditService,
		logger:       logger,
	}
}

// ListRoutes returns routes, optionally filtered by origin and destination
// @Summary List routes
// @Tags Routes
// @Produce json
// @Param from query string false "Departure location (partial match)"
// @Param to query string false "Destination (partial match)"
// @Success 200 {object} map[string]interface{}
// @Router /routes [get]
func (h *RouteHandler) ListRoutes(c *gin.Context) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))

	routes, err := h.routeRepo.Search(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"routes": routes,
		"count":  len(routes),
	})
}

// GetRoute returns one route
// @Summary Get route
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} models.Route
// @Failure 404 {object} ErrorResponse
// @Router /routes/{id} [get]
func (h *RouteHandler) GetRoute(c *gin.Context) {
	route, err := h.routeRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, route)
}

// ListBranches returns active branches
// @Summary List branches
// @Tags Routes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /branches [get]
func (h *RouteHandler) ListBranches(c *gin.Context) {
	branches, err := h.routeRepo.ListBranches(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"branches": branches, "count": len(branches)})
}

// CreateRoute adds a route
// @Summary Create route
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateRouteRequest true "Route"
// @Success 201 {object} models.Route
// @Failure 400 {object} ErrorResponse
// @Router /admin/routes [post]
func (h *RouteHandler) CreateRoute(c *gin.Context) {
	var req models.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	route := &models.Route{
		FromLocation:   strings.TrimSpace(req.FromLocation),
		ToLocation:     strings.TrimSpace(req.ToLocation),
		Duration:       req.Duration,
		Price:          req.Price,
		DepartureTimes: req.DepartureTimes,
		BranchID:       req.BranchID,
	}
	if err := h.routeRepo.Create(c.Request.Context(), route); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "route_create", "route", route.ID, map[string]interface{}{
		"from":  route.FromLocation,
		"to":    route.ToLocation,
		"price": route.Price,
	})
	c.JSON(http.StatusCreated, route)
}

// UpdateRoute edits a route
// @Summary Update route
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Route ID"
// @Param request body models.UpdateRouteRequest true "Fields to change"
// @Success 200 {object} models.Route
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/routes/{id} [put]
func (h *RouteHandler) UpdateRoute(c *gin.Context) {
	var req models.UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	route, err := h.routeRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	if err := req.Apply(route); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}
	if err := h.routeRepo.Update(ctx, route); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "route_update", "route", route.ID, nil)
	c.JSON(http.StatusOK, route)
}

// DeleteRoute removes a route
// @Summary Delete route
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Route ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/routes/{id} [delete]
func (h *RouteHandler) DeleteRoute(c *gin.Context) {
	id := c.Param("id")
	if err := h.routeRepo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "route_delete", "route", id, nil)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Route deleted"})
}

// GetRoutePricing lists the fleet price overrides of a route
// @Summary Route fleet pricing
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Route ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/routes/{id}/pricing [get]
func (h *RouteHandler) GetRoutePricing(c *gin.Context) {
	ctx := c.Request.Context()
	route, err := h.routeRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	prices, err := h.fleetRepo.ListRoutePricing(ctx, route.ID)
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"route_id":   route.ID,
		"base_price": route.Price,
		"pricing":    prices,
	})
}

// SetRoutePricing sets the price of one fleet type on a route
// @Summary Set route fleet price
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Route ID"
// @Param request body models.SetRoutePricingRequest true "Fleet price"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/routes/{id}/pricing [put]
func (h *RouteHandler) SetRoutePricing(c *gin.Context) {
	var req models.SetRoutePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	route, err := h.routeRepo.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err, "")
		return
	}
	if _, err := h.fleetRepo.GetByID(ctx, req.FleetID); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	if err := h.fleetRepo.UpsertRoutePricing(ctx, route.ID, req.FleetID, req.Price); err != nil {
		respondError(c, h.logger, err, "")
		return
	}

	safeLogAdminAction(c, h.auditService, "route_pricing_update", "route", route.ID, map[string]interface{}{
		"fleet_id": req.FleetID,
		"price":    req.Price,
	})
	c.JSON(http.StatusOK, SuccessResponse{Message: "Route pricing updated"})
}
