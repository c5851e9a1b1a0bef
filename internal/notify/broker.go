package notify

import (
	"log"
	"sync"

	"pokerclub-platform/internal/models"
)

// Event types pushed to floor displays.
const (
	EventStateChanged = "state_changed"
	EventLevelChanged = "level_changed"
)

// Event is one notification about a tournament. State is set for
// state_changed events; Level and DurationSeconds for level_changed.
type Event struct {
	Type            string               `json:"type"`
	TournamentID    string               `json:"tournament_id"`
	State           *models.LiveStateDTO `json:"state,omitempty"`
	Level           int                  `json:"level,omitempty"`
	DurationSeconds int                  `json:"duration_seconds,omitempty"`
}

// subscriber buffer size. A display that falls this far behind starts
// losing events rather than stalling publishers.
const subscriberBuffer = 64

// Subscription receives events for a single tournament in publish order.
type Subscription struct {
	C chan Event

	id           int
	tournamentID string
}

// Broker fans events out to subscribers keyed by tournament id. Publish
// never blocks: a full subscriber drops the event.
type Broker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]*Subscription
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[int]*Subscription),
	}
}

func (b *Broker) Subscribe(tournamentID string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		C:            make(chan Event, subscriberBuffer),
		id:           b.nextID,
		tournamentID: tournamentID,
	}
	if b.subs[tournamentID] == nil {
		b.subs[tournamentID] = make(map[int]*Subscription)
	}
	b.subs[tournamentID][sub.id] = sub
	return sub
}

func (b *Broker) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	group, ok := b.subs[sub.tournamentID]
	if !ok {
		return
	}
	if _, ok := group[sub.id]; !ok {
		return
	}
	delete(group, sub.id)
	if len(group) == 0 {
		delete(b.subs, sub.tournamentID)
	}
	close(sub.C)
}

// Publish delivers ev to every subscriber of its tournament. Delivery order
// per subscriber matches publish order; slow subscribers lose events.
func (b *Broker) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs[ev.TournamentID] {
		select {
		case sub.C <- ev:
		default:
			log.Printf("[NOTIFY] dropping %s event for tournament %s: subscriber full", ev.Type, ev.TournamentID)
		}
	}
}
