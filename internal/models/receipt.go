package models

import (
	"encoding/json"
	"time"
)

// Receipt payment statuses
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusVerified = "verified"
)

// Receipt is issued by create_booking_with_branch and signed off by admins
type Receipt struct {
	ID            string     `json:"id" db:"id"`
	ReceiptNumber string     `json:"receipt_number" db:"receipt_number"`
	BookingID     string     `json:"booking_id" db:"booking_id"`
	UserID        string     `json:"user_id" db:"user_id"`
	Amount        float64    `json:"amount" db:"amount"`
	PaymentStatus string     `json:"payment_status" db:"payment_status"`
	PaymentMethod *string    `json:"payment_method,omitempty" db:"payment_method"`
	IsSignedOff   bool       `json:"is_signed_off" db:"is_signed_off"`
	SignedOffBy   *string    `json:"signed_off_by,omitempty" db:"signed_off_by"`
	SignedOffAt   *time.Time `json:"signed_off_at,omitempty" db:"signed_off_at"`
	Notes         *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// ReceiptDetail is a receipt joined with its booking and passenger
type ReceiptDetail struct {
	Receipt
	FromLocation   string   `json:"from_location" db:"from_location"`
	ToLocation     string   `json:"to_location" db:"to_location"`
	DepartureDate  string   `json:"departure_date" db:"departure_date"`
	DepartureTime  string   `json:"departure_time" db:"departure_time"`
	ArrivalTime    *string  `json:"arrival_time,omitempty" db:"arrival_time"`
	SeatNumbers    IntArray `json:"seat_numbers" db:"seat_numbers"`
	BookingStatus  string   `json:"booking_status" db:"booking_status"`
	PassengerName  *string  `json:"passenger_name,omitempty" db:"passenger_name"`
	PassengerEmail *string  `json:"passenger_email,omitempty" db:"passenger_email"`
	PassengerPhone *string  `json:"passenger_phone,omitempty" db:"passenger_phone"`
	BranchName     *string  `json:"branch_name,omitempty" db:"branch_name"`
}

// ReceiptFilter narrows the admin receipt list
type ReceiptFilter struct {
	PaymentStatus string `form:"payment_status"`
	SignedOff     *bool  `form:"signed_off"`
	Limit         int    `form:"limit"`
	Offset        int    `form:"offset"`
}

// ReceiptActionResult is the JSON returned by verify_receipt / sign_off_receipt
type ReceiptActionResult map[string]interface{}

// Failure returns the server message when the payload reports success=false
func (r ReceiptActionResult) Failure() (string, bool) {
	success, ok := r["success"].(bool)
	if !ok || success {
		return "", false
	}
	for _, key := range []string{"error", "message"} {
		if msg, ok := r[key].(string); ok && msg != "" {
			return msg, true
		}
	}
	return "receipt action was rejected", true
}

// ParseReceiptActionResult decodes a procedure JSON payload
func ParseReceiptActionResult(raw []byte) (ReceiptActionResult, error) {
	result := ReceiptActionResult{}
	if len(raw) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SignOffReceiptRequest is the admin sign-off payload
type SignOffReceiptRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// VerifyReceiptRequest is the admin verification payload
type VerifyReceiptRequest struct {
	BookingID *string `json:"booking_id,omitempty"`
}
