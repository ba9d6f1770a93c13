package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Fredrickmureti/tour-kenya-sub001/internal/models"
)

func TestSeatFeed_RouteScopedSignals(t *testing.T) {
	feed := NewSeatFeed()
	mombasa := feed.Subscribe("route-1")
	kisumu := feed.Subscribe("route-2")
	defer feed.Unsubscribe(kisumu)

	feed.Publish(models.SeatChangeEvent{RouteID: "route-1", SeatNumber: 4})
	feed.Publish(models.SeatChangeEvent{RouteID: "route-1", SeatNumber: 5})

	select {
	case <-mombasa.C:
	default:
		t.Fatal("expected a signal for route-1")
	}
	// signals coalesce
	select {
	case <-mombasa.C:
		t.Fatal("expected a single pending signal")
	default:
	}
	select {
	case <-kisumu.C:
		t.Fatal("route-2 should not be signalled")
	default:
	}

	feed.Unsubscribe(mombasa)
	feed.Unsubscribe(mombasa)
	assert.Equal(t, 1, feed.SubscriberCount())
}

func TestSeatFeed_BroadcastOnReconnect(t *testing.T) {
	feed := NewSeatFeed()
	subs := []*SeatSubscription{feed.Subscribe("route-1"), feed.Subscribe("route-2"), feed.Subscribe("route-2")}

	feed.Publish(models.SeatChangeEvent{})

	for _, sub := range subs {
		select {
		case <-sub.C:
		default:
			t.Fatalf("subscriber of %s was not signalled", sub.RouteID)
		}
	}
}

func TestSeatFeed_ConcurrentUse(t *testing.T) {
	feed := NewSeatFeed()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := feed.Subscribe("route-1")
			feed.Publish(models.SeatChangeEvent{RouteID: "route-1"})
			feed.Unsubscribe(sub)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, feed.SubscriberCount())
}
