package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
	"github.com/google/uuid"
)

// ErrFleetNotFound is returned when a fleet id has no row
var ErrFleetNotFound = fmt.Errorf("fleet type not found")

// FleetRepository handles fleet types and route-specific pricing
type FleetRepository struct {
	db DB
}

// NewFleetRepository creates a new fleet repository
func NewFleetRepository(db DB) *FleetRepository {
	return &FleetRepository{db: db}
}

const fleetColumns = `id, name, capacity, features, base_price_multiplier, is_active, created_at, updated_at`

// List returns fleet types; inactive ones only when includeInactive is set
func (r *FleetRepository) List(ctx context.Context, includeInactive bool) ([]models.FleetType, error) {
	query := `SELECT ` + fleetColumns + ` FROM fleet`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	fleet := []models.FleetType{}
	if err := r.db.SelectContext(ctx, &fleet, query); err != nil {
		return nil, fmt.Errorf("failed to list fleet: %w", err)
	}
	return fleet, nil
}

// GetByID retrieves a fleet type
func (r *FleetRepository) GetByID(ctx context.Context, id string) (*models.FleetType, error) {
	var fleet models.FleetType
	err := r.db.GetContext(ctx, &fleet, `SELECT `+fleetColumns+` FROM fleet WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrFleetNotFound
		}
		return nil, fmt.Errorf("failed to get fleet type: %w", err)
	}
	return &fleet, nil
}

// Create inserts a fleet type
func (r *FleetRepository) Create(ctx context.Context, fleet *models.FleetType) error {
	if fleet.ID == "" {
		fleet.ID = uuid.NewString()
	}

	query := `
		INSERT INTO fleet (id, name, capacity, features, base_price_multiplier, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
		RETURNING is_active, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		fleet.ID,
		fleet.Name,
		fleet.Capacity,
		fleet.Features,
		fleet.BasePriceMultiplier,
	).Scan(&fleet.IsActive, &fleet.CreatedAt, &fleet.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create fleet type: %w", err)
	}
	return nil
}

// Update saves an edited fleet type
func (r *FleetRepository) Update(ctx context.Context, fleet *models.FleetType) error {
	query := `
		UPDATE fleet
		SET name = $1, capacity = $2, features = $3, base_price_multiplier = $4,
		    is_active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		fleet.Name,
		fleet.Capacity,
		fleet.Features,
		fleet.BasePriceMultiplier,
		fleet.IsActive,
		fleet.ID,
	).Scan(&fleet.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrFleetNotFound
		}
		return fmt.Errorf("failed to update fleet type: %w", err)
	}
	return nil
}

// Deactivate hides a fleet type from assignment without breaking old bookings
func (r *FleetRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE fleet SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate fleet type: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrFleetNotFound
	}
	return nil
}

// ListRoutePricing returns the override prices configured for a route
func (r *FleetRepository) ListRoutePricing(ctx context.Context, routeID string) ([]models.RouteFleetPrice, error) {
	query := `
		SELECT p.route_id, p.fleet_id, f.name AS fleet_name, p.price, p.updated_at
		FROM route_fleet_pricing p
		JOIN fleet f ON f.id = p.fleet_id
		WHERE p.route_id = $1
		ORDER BY f.name
	`

	prices := []models.RouteFleetPrice{}
	if err := r.db.SelectContext(ctx, &prices, query, routeID); err != nil {
		return nil, fmt.Errorf("failed to list route pricing: %w", err)
	}
	return prices, nil
}

// UpsertRoutePricing sets the override price of a fleet type on a route
func (r *FleetRepository) UpsertRoutePricing(ctx context.Context, routeID, fleetID string, price float64) error {
	query := `
		INSERT INTO route_fleet_pricing (route_id, fleet_id, price, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (route_id, fleet_id)
		DO UPDATE SET price = EXCLUDED.price, updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, routeID, fleetID, price); err != nil {
		return fmt.Errorf("failed to set route pricing: %w", err)
	}
	return nil
}
