package models

// DashboardStats backs the admin dashboard
type DashboardStats struct {
	TotalBookings   int         `json:"total_bookings" db:"total_bookings"`
	TotalRevenue    float64     `json:"total_revenue" db:"total_revenue"`
	BookingsToday   int         `json:"bookings_today" db:"bookings_today"`
	RevenueToday    float64     `json:"revenue_today" db:"revenue_today"`
	PendingReceipts int         `json:"pending_receipts" db:"pending_receipts"`
	ActiveRoutes    int         `json:"active_routes" db:"active_routes"`
	PendingDrafts   int         `json:"pending_drafts" db:"pending_drafts"`
	TopRoutes       []RouteStat `json:"top_routes"`
	Daily           []DailyStat `json:"daily"`
	Currency        string      `json:"currency"`
}

// RouteStat is bookings and revenue for one route
type RouteStat struct {
	RouteID      string  `json:"route_id" db:"route_id"`
	FromLocation string  `json:"from_location" db:"from_location"`
	ToLocation   string  `json:"to_location" db:"to_location"`
	Bookings     int     `json:"bookings" db:"bookings"`
	Revenue      float64 `json:"revenue" db:"revenue"`
}

// DailyStat is bookings and revenue for one day
type DailyStat struct {
	Day      string  `json:"day" db:"day"`
	Bookings int     `json:"bookings" db:"bookings"`
	Revenue  float64 `json:"revenue" db:"revenue"`
}
