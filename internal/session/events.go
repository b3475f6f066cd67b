package session

import (
	"sync"
	"time"
)

type EventType string

const (
	// AuthChanged fires on login and logout.
	AuthChanged EventType = "auth_changed"
	// CartChanged fires on every confirmed cart mutation and on checkout.
	CartChanged EventType = "cart_changed"
)

type Event struct {
	Type   EventType `json:"type"`
	UserID uint      `json:"user_id,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Bus fans session changes out to in-process subscribers. Subscribers run
// synchronously on the notifying goroutine and must not block.
type Bus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

func (b *Bus) Notify(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	b.mu.RLock()
	subs := b.subs
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(e)
	}
}
