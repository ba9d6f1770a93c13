package database

import (
	"context"
	"fmt"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// AnalyticsRepository aggregates bookings for the admin dashboard
type AnalyticsRepository struct {
	db DB
}

// NewAnalyticsRepository creates a new analytics repository
func NewAnalyticsRepository(db DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// DashboardStats returns headline totals, the busiest routes and the last `days` days
func (r *AnalyticsRepository) DashboardStats(ctx context.Context, days int) (*models.DashboardStats, error) {
	if days <= 0 {
		days = 14
	}

	totals := `
		SELECT
			(SELECT COUNT(*) FROM bookings) AS total_bookings,
			(SELECT COALESCE(SUM(price), 0) FROM bookings WHERE status <> 'cancelled') AS total_revenue,
			(SELECT COUNT(*) FROM bookings WHERE created_at::date = CURRENT_DATE) AS bookings_today,
			(SELECT COALESCE(SUM(price), 0) FROM bookings WHERE created_at::date = CURRENT_DATE AND status <> 'cancelled') AS revenue_today,
			(SELECT COUNT(*) FROM receipts WHERE is_signed_off = FALSE) AS pending_receipts,
			(SELECT COUNT(*) FROM routes) AS active_routes,
			(SELECT COUNT(*) FROM pending_booking_drafts) AS pending_drafts
	`

	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, totals); err != nil {
		return nil, fmt.Errorf("failed to load dashboard totals: %w", err)
	}

	topRoutes := `
		SELECT b.route_id, r.from_location, r.to_location,
		       COUNT(*) AS bookings, COALESCE(SUM(b.price), 0) AS revenue
		FROM bookings b
		JOIN routes r ON r.id = b.route_id
		WHERE b.status <> 'cancelled'
		GROUP BY b.route_id, r.from_location, r.to_location
		ORDER BY bookings DESC
		LIMIT 5
	`
	stats.TopRoutes = []models.RouteStat{}
	if err := r.db.SelectContext(ctx, &stats.TopRoutes, topRoutes); err != nil {
		return nil, fmt.Errorf("failed to load route stats: %w", err)
	}

	daily := `
		SELECT to_char(created_at::date, 'YYYY-MM-DD') AS day,
		       COUNT(*) AS bookings, COALESCE(SUM(price), 0) AS revenue
		FROM bookings
		WHERE created_at >= CURRENT_DATE - ($1::int * INTERVAL '1 day')
		GROUP BY created_at::date
		ORDER BY created_at::date
	`
	stats.Daily = []models.DailyStat{}
	if err := r.db.SelectContext(ctx, &stats.Daily, daily, days); err != nil {
		return nil, fmt.Errorf("failed to load daily stats: %w", err)
	}

	return &stats, nil
}
