package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/google/uuid"
)

// ErrRouteNotFound is returned when a route id has no row
var ErrRouteNotFound = fmt.Errorf("route not found")

// RouteRepository handles routes and branches
type RouteRepository struct {
	db DB
}

// NewRouteRepository creates a new route repository
func NewRouteRepository(db DB) *RouteRepository {
	return &RouteRepository{db: db}
}

const routeColumns = `id, from_location, to_location, duration, price, departure_times, branch_id, created_at, updated_at`

// GetByID retrieves a route
func (r *RouteRepository) GetByID(ctx context.Context, id string) (*models.Route, error) {
	var route models.Route
	err := r.db.GetContext(ctx, &route, `SELECT `+routeColumns+` FROM routes WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to get route: %w", err)
	}
	return &route, nil
}

// FindByLocations returns the route between two locations (case-insensitive), if any
func (r *RouteRepository) FindByLocations(ctx context.Context, from, to string) (*models.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes
		WHERE LOWER(from_location) = LOWER($1) AND LOWER(to_location) = LOWER($2)
		ORDER BY created_at
		LIMIT 1`

	var route models.Route
	err := r.db.GetContext(ctx, &route, query, strings.TrimSpace(from), strings.TrimSpace(to))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrRouteNotFound
		}
		return nil, fmt.Errorf("failed to find route: %w", err)
	}
	return &route, nil
}

// Search lists routes, optionally filtered by partial origin/destination
func (r *RouteRepository) Search(ctx context.Context, from, to string) ([]models.Route, error) {
	query := `SELECT ` + routeColumns + ` FROM routes WHERE 1=1`
	args := []interface{}{}

	if from = strings.TrimSpace(from); from != "" {
		args = append(args, "%"+from+"%")
		query += fmt.Sprintf(" AND from_location ILIKE $%d", len(args))
	}
	if to = strings.TrimSpace(to); to != "" {
		args = append(args, "%"+to+"%")
		query += fmt.Sprintf(" AND to_location ILIKE $%d", len(args))
	}
	query += " ORDER BY from_location, to_location"

	routes := []models.Route{}
	if err := r.db.SelectContext(ctx, &routes, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search routes: %w", err)
	}
	return routes, nil
}

// Create inserts a route
func (r *RouteRepository) Create(ctx context.Context, route *models.Route) error {
	if route.ID == "" {
		route.ID = uuid.NewString()
	}

	query := `
		INSERT INTO routes (id, from_location, to_location, duration, price, departure_times, branch_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		route.ID,
		route.FromLocation,
		route.ToLocation,
		route.Duration,
		route.Price,
		route.DepartureTimes,
		route.BranchID,
	).Scan(&route.CreatedAt, &route.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create route: %w", err)
	}
	return nil
}

// Update saves an edited route
func (r *RouteRepository) Update(ctx context.Context, route *models.Route) error {
	query := `
		UPDATE routes
		SET from_location = $1, to_location = $2, duration = $3, price = $4,
		    departure_times = $5, branch_id = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		route.FromLocation,
		route.ToLocation,
		route.Duration,
		route.Price,
		route.DepartureTimes,
		route.BranchID,
		route.ID,
	).Scan(&route.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrRouteNotFound
		}
		return fmt.Errorf("failed to update route: %w", err)
	}
	return nil
}

// Delete removes a route
func (r *RouteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete route: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrRouteNotFound
	}
	return nil
}

// ListBranches returns active branches
func (r *RouteRepository) ListBranches(ctx context.Context) ([]models.Branch, error) {
	query := `
		SELECT id, name, code, city, is_active, created_at
		FROM branches
		WHERE is_active = TRUE
		ORDER BY name
	`

	branches := []models.Branch{}
	if err := r.db.SelectContext(ctx, &branches, query); err != nil {
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return branches, nil
}
