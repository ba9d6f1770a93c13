package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// ErrReceiptNotFound is returned when a receipt id has no row
var ErrReceiptNotFound = fmt.Errorf("receipt not found")

// ReceiptRepository is the read side of receipts
type ReceiptRepository struct {
	db DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

const receiptDetailSelect = `
	SELECT r.id, r.receipt_number, r.booking_id, r.user_id, r.amount, r.payment_status,
	       r.payment_method, r.is_signed_off, r.signed_off_by, r.signed_off_at, r.notes,
	       r.created_at,
	       b.from_location, b.to_location,
	       to_char(b.departure_date, 'YYYY-MM-DD') AS departure_date, b.departure_time,
	       b.arrival_time, b.seat_numbers, b.status AS booking_status,
	       u.full_name AS passenger_name, u.email AS passenger_email, u.phone AS passenger_phone,
	       br.name AS branch_name
	FROM receipts r
	JOIN bookings b ON b.id = r.booking_id
	LEFT JOIN users u ON u.id = r.user_id
	LEFT JOIN branches br ON br.id = b.branch_id
`

// GetDetail retrieves a receipt with its booking and passenger
func (r *ReceiptRepository) GetDetail(ctx context.Context, id string) (*models.ReceiptDetail, error) {
	var detail models.ReceiptDetail
	if err := r.db.GetContext(ctx, &detail, receiptDetailSelect+` WHERE r.id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReceiptNotFound
		}
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return &detail, nil
}

// List returns receipts matching the admin filter
func (r *ReceiptRepository) List(ctx context.Context, filter models.ReceiptFilter) ([]models.ReceiptDetail, error) {
	query := receiptDetailSelect + ` WHERE 1=1`
	args := []interface{}{}

	if filter.PaymentStatus != "" {
		args = append(args, filter.PaymentStatus)
		query += fmt.Sprintf(" AND r.payment_status = $%d", len(args))
	}
	if filter.SignedOff != nil {
		args = append(args, *filter.SignedOff)
		query += fmt.Sprintf(" AND r.is_signed_off = $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY r.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	receipts := []models.ReceiptDetail{}
	if err := r.db.SelectContext(ctx, &receipts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	return receipts, nil
}

// CountPending returns receipts awaiting sign-off
func (r *ReceiptRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts WHERE is_signed_off = FALSE`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending receipts: %w", err)
	}
	return count, nil
}
