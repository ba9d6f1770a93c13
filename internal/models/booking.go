package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

// BookingStatusConfirmed is the status every client-created booking starts with
const BookingStatusConfirmed = "confirmed"

// Booking is a confirmed booking as stored by create_booking_with_branch
type Booking struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	RouteID       string    `json:"route_id" db:"route_id"`
	FromLocation  string    `json:"from_location" db:"from_location"`
	ToLocation    string    `json:"to_location" db:"to_location"`
	DepartureDate string    `json:"departure_date" db:"departure_date"`
	DepartureTime string    `json:"departure_time" db:"departure_time"`
	ArrivalTime   *string   `json:"arrival_time,omitempty" db:"arrival_time"`
	SeatNumbers   IntArray  `json:"seat_numbers" db:"seat_numbers"`
	Price         float64   `json:"price" db:"price"`
	Status        string    `json:"status" db:"status"`
	BranchID      *string   `json:"branch_id,omitempty" db:"branch_id"`
	BusID         *string   `json:"bus_id,omitempty" db:"bus_id"`
	ReceiptID     *string   `json:"receipt_id,omitempty" db:"receipt_id"`
	ReceiptNumber *string   `json:"receipt_number,omitempty" db:"receipt_number"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// CreateBookingParams is the assembled submission payload
type CreateBookingParams struct {
	UserID        string   `json:"user_id"`
	RouteID       string   `json:"route_id"`
	FromLocation  string   `json:"from_location"`
	ToLocation    string   `json:"to_location"`
	DepartureDate string   `json:"departure_date"`
	DepartureTime string   `json:"departure_time"`
	ArrivalTime   string   `json:"arrival_time,omitempty"`
	SeatNumbers   []int    `json:"seat_numbers"`
	Price         float64  `json:"price"`
	Status        string   `json:"status"`
	BranchID      *string  `json:"branch_id,omitempty"`
	BusID         string   `json:"bus_id,omitempty"`     // display only
	FleetName     string   `json:"fleet_name,omitempty"` // display only
	Multiplier    float64  `json:"multiplier"`
	SeatPrice     float64  `json:"seat_price"`
	Notes         []string `json:"-"`
}

// BookingResult is the normalized payload returned by create_booking_with_branch
type BookingResult struct {
	BookingID     string          `json:"booking_id"`
	ReceiptID     string          `json:"receipt_id,omitempty"`
	ReceiptNumber string          `json:"receipt_number,omitempty"`
	Price         float64         `json:"price,omitempty"`
	Raw           json.RawMessage `json:"-"`
}

// ParseBookingResult accepts both flat ({booking_id, receipt_id}) and nested
// ({booking: {id}, receipt: {id, receipt_number}}) payloads. A payload with
// success=false is returned as an error carrying the server message.
func ParseBookingResult(raw []byte) (*BookingResult, error) {
	if len(raw) == 0 {
		return nil, errors.New("empty booking response")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("invalid booking response: %w", err)
	}

	if success, ok := payload["success"].(bool); ok && !success {
		if msg := firstString(payload, "error", "message"); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, errors.New("booking was not created")
	}

	result := &BookingResult{Raw: json.RawMessage(raw)}
	result.BookingID = firstString(payload, "booking_id", "id")
	result.ReceiptID = firstString(payload, "receipt_id")
	result.ReceiptNumber = firstString(payload, "receipt_number")
	result.Price = firstNumber(payload, "price", "total_price")

	if booking, ok := payload["booking"].(map[string]interface{}); ok {
		if result.BookingID == "" {
			result.BookingID = firstString(booking, "id", "booking_id")
		}
		if result.Price == 0 {
			result.Price = firstNumber(booking, "price", "total_price")
		}
	}
	if receipt, ok := payload["receipt"].(map[string]interface{}); ok {
		if result.ReceiptID == "" {
			result.ReceiptID = firstString(receipt, "id", "receipt_id")
		}
		if result.ReceiptNumber == "" {
			result.ReceiptNumber = firstString(receipt, "receipt_number")
		}
	}

	return result, nil
}

// SubmissionResult is returned to the client after a successful confirm
type SubmissionResult struct {
	Booking     *BookingResult      `json:"booking"`
	Payload     CreateBookingParams `json:"payload"`
	RedirectURL string              `json:"redirect_url"`
	Notices     []Notice            `json:"notices"`
}

// BookingFilter narrows the admin booking list
type BookingFilter struct {
	Status   string `form:"status"`
	RouteID  string `form:"route_id"`
	BranchID string `form:"branch_id"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func firstNumber(m map[string]interface{}, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
	}
	return 0
}
