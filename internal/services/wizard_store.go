package services

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

const bookingListPrefix = "bookings:"

// WizardStore holds active wizards by session key with a sliding TTL,
// and caches passengers' booking lists.
type WizardStore struct {
	sessions *cache.Cache
	bookings *cache.Cache
	ttl      time.Duration
}

// NewWizardStore creates a store whose sessions expire after ttl idle
func NewWizardStore(ttl time.Duration) *WizardStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &WizardStore{
		sessions: cache.New(ttl, 10*time.Minute),
		bookings: cache.New(5*time.Minute, 10*time.Minute),
		ttl:      ttl,
	}
}

// Get returns the wizard and extends its lifetime
func (s *WizardStore) Get(key string) (*BookingWizard, bool) {
	v, ok := s.sessions.Get(key)
	if !ok {
		return nil, false
	}
	w := v.(*BookingWizard)
	s.sessions.Set(key, w, s.ttl)
	return w, true
}

// Put stores the wizard under its session key
func (s *WizardStore) Put(w *BookingWizard) {
	s.sessions.Set(w.SessionKey(), w, s.ttl)
}

// Drop removes the session
func (s *WizardStore) Drop(key string) {
	s.sessions.Delete(key)
}

// Count returns the number of active sessions
func (s *WizardStore) Count() int {
	return s.sessions.ItemCount()
}

// CachedBookings returns the cached booking list for a passenger
func (s *WizardStore) CachedBookings(userID string) ([]models.Booking, bool) {
	v, ok := s.bookings.Get(bookingListPrefix + userID)
	if !ok {
		return nil, false
	}
	return v.([]models.Booking), true
}

// CacheBookings stores a passenger's booking list
func (s *WizardStore) CacheBookings(userID string, bookings []models.Booking) {
	s.bookings.SetDefault(bookingListPrefix+userID, bookings)
}

// InvalidateUserBookings forgets a passenger's cached booking list
func (s *WizardStore) InvalidateUserBookings(userID string) {
	s.bookings.Delete(bookingListPrefix + userID)
}
