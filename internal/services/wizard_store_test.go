package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

func TestWizardStore_PutGetDrop(t *testing.T) {
	store := NewWizardStore(time.Hour)
	w := newTestWizard("guest-1", false, nil)

	store.Put(w)
	got, ok := store.Get("guest-1")
	require.True(t, ok)
	assert.Same(t, w, got)
	assert.Equal(t, 1, store.Count())

	store.Drop("guest-1")
	_, ok = store.Get("guest-1")
	assert.False(t, ok)
}

func TestWizardStore_BookingCache(t *testing.T) {
	store := NewWizardStore(0)

	_, ok := store.CachedBookings("user-1")
	assert.False(t, ok)

	store.CacheBookings("user-1", []models.Booking{{ID: "bk-1"}})
	list, ok := store.CachedBookings("user-1")
	require.True(t, ok)
	assert.Len(t, list, 1)

	store.InvalidateUserBookings("user-1")
	_, ok = store.CachedBookings("user-1")
	assert.False(t, ok)
}
