package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"
	"time"
)

// WizardStep is the booking wizard position (1-5)
type WizardStep int

const (
	StepRoute    WizardStep = 1
	StepDateTime WizardStep = 2
	StepFleet    WizardStep = 3
	StepSeats    WizardStep = 4
	StepPayment  WizardStep = 5
)

// FirstStep and LastStep bound the wizard
const (
	FirstStep = StepRoute
	LastStep  = StepPayment
)

// DateLayout is the wire format for departure dates
const DateLayout = "2006-01-02"

func (s WizardStep) String() string {
	switch s {
	case StepRoute:
		return "route"
	case StepDateTime:
		return "datetime"
	case StepFleet:
		return "fleet"
	case StepSeats:
		return "seats"
	case StepPayment:
		return "payment"
	default:
		return "unknown"
	}
}

// BookingDraft is the in-progress selection of one booking session
type BookingDraft struct {
	SessionKey    string     `json:"session_key"`
	RouteID       string     `json:"route_id,omitempty"`
	BranchID      string     `json:"branch_id,omitempty"`
	From          string     `json:"from,omitempty"`
	To            string     `json:"to,omitempty"`
	Date          string     `json:"date,omitempty"` // YYYY-MM-DD
	Time          string     `json:"time,omitempty"` // HH:MM
	BusID         string     `json:"bus_id,omitempty"`
	FleetName     string     `json:"fleet_name,omitempty"`
	Seats         []int      `json:"seats"`
	LockedSeats   []int      `json:"locked_seats"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	Step          WizardStep `json:"step"`
	ReturnURL     string     `json:"return_url,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HasSeat reports whether seat is currently selected
func (d *BookingDraft) HasSeat(seat int) bool {
	return containsInt(d.Seats, seat)
}

// IsLocked reports whether this session holds a remote lock on seat
func (d *BookingDraft) IsLocked(seat int) bool {
	return containsInt(d.LockedSeats, seat)
}

// Snapshot returns the persistable form of the draft
func (d *BookingDraft) Snapshot() DraftSnapshot {
	seats := make([]int, len(d.Seats))
	copy(seats, d.Seats)
	return DraftSnapshot{
		From:      d.From,
		To:        d.To,
		Date:      d.Date,
		Time:      d.Time,
		Seats:     seats,
		Step:      int(d.Step),
		RouteID:   d.RouteID,
		BranchID:  d.BranchID,
		ReturnURL: d.ReturnURL,
		BusID:     d.BusID,
		FleetName: d.FleetName,
	}
}

// DraftSnapshot is the resumable copy of a guest's booking draft.
// Field names match the browser snapshot so existing drafts stay readable.
type DraftSnapshot struct {
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	Seats     []int  `json:"seats,omitempty"`
	Step      int    `json:"step,omitempty"`
	RouteID   string `json:"routeId,omitempty"`
	BranchID  string `json:"branchId,omitempty"`
	ReturnURL string `json:"returnUrl,omitempty"`
	BusID     string `json:"busId,omitempty"`
	FleetName string `json:"fleetName,omitempty"`
}

// IsEmpty is true when no field carries a value
func (s DraftSnapshot) IsEmpty() bool {
	return s.From == "" && s.To == "" && s.Date == "" && s.Time == "" &&
		len(s.Seats) == 0 && s.RouteID == "" && s.BranchID == "" && s.ReturnURL == "" && s.BusID == ""
}

// Value implements driver.Valuer for the JSONB column
func (s DraftSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for the JSONB column
func (s *DraftSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = DraftSnapshot{}
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion to []byte failed for DraftSnapshot")
	}
	return json.Unmarshal(bytes, s)
}

// PendingDraft is a persisted snapshot row
type PendingDraft struct {
	SessionKey string        `json:"session_key" db:"session_key"`
	Snapshot   DraftSnapshot `json:"snapshot" db:"snapshot"`
	DeviceType string        `json:"device_type" db:"device_type"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

// HydrateQuery carries the booking entry point URL parameters
type HydrateQuery struct {
	RouteID   string `form:"routeId"`
	BranchID  string `form:"branchId"`
	From      string `form:"from"`
	To        string `form:"to"`
	Date      string `form:"date"`
	ReturnURL string `form:"returnUrl"`
}

// HasValues reports whether any URL parameter was supplied
func (q HydrateQuery) HasValues() bool {
	return q.RouteID != "" || q.BranchID != "" || q.From != "" || q.To != "" || q.Date != ""
}

// UpdateDraftRequest patches wizard fields; nil fields are left alone
type UpdateDraftRequest struct {
	RouteID       *string `json:"route_id,omitempty"`
	BranchID      *string `json:"branch_id,omitempty"`
	From          *string `json:"from,omitempty"`
	To            *string `json:"to,omitempty"`
	Date          *string `json:"date,omitempty"`
	Time          *string `json:"time,omitempty"`
	Seats         []int   `json:"seats,omitempty"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	ReturnURL     *string `json:"return_url,omitempty"`
}

// NormalizeSeats drops duplicates and non-positive seat numbers, sorted
func NormalizeSeats(seats []int) []int {
	seen := make(map[int]struct{}, len(seats))
	out := make([]int, 0, len(seats))
	for _, s := range seats {
		if s <= 0 {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
