package services

import (
	"sync"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

// SeatSubscription receives a signal whenever seats on its route change.
// Signals coalesce: a subscriber that is busy re-fetching misses nothing,
// it just sees one pending signal.
type SeatSubscription struct {
	RouteID string
	C       <-chan struct{}
	ch      chan struct{}
}

// SeatFeed fans seat change notifications out to per-route subscribers
type SeatFeed struct {
	mu   sync.RWMutex
	subs map[string]map[*SeatSubscription]struct{}
}

// NewSeatFeed creates an empty feed
func NewSeatFeed() *SeatFeed {
	return &SeatFeed{subs: make(map[string]map[*SeatSubscription]struct{})}
}

// Subscribe registers interest in one route
func (f *SeatFeed) Subscribe(routeID string) *SeatSubscription {
	ch := make(chan struct{}, 1)
	sub := &SeatSubscription{RouteID: routeID, C: ch, ch: ch}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[routeID] == nil {
		f.subs[routeID] = make(map[*SeatSubscription]struct{})
	}
	f.subs[routeID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscription; safe to call more than once
func (f *SeatFeed) Unsubscribe(sub *SeatSubscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	route := f.subs[sub.RouteID]
	if _, ok := route[sub]; !ok {
		return
	}
	delete(route, sub)
	if len(route) == 0 {
		delete(f.subs, sub.RouteID)
	}
}

// Publish signals every subscriber of the event's route. An event without a
// route id (listener reconnect) signals everyone.
func (f *SeatFeed) Publish(event models.SeatChangeEvent) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if event.RouteID == "" {
		for _, route := range f.subs {
			signalAll(route)
		}
		return
	}
	signalAll(f.subs[event.RouteID])
}

func signalAll(route map[*SeatSubscription]struct{}) {
	for sub := range route {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount returns the number of live subscriptions
func (f *SeatFeed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, route := range f.subs {
		n += len(route)
	}
	return n
}
