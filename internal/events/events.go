// Package events is the in-process publish/subscribe bus that connects
// workflows to whatever is displaying their results.
package events

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Bus delivers values of type T to subscribers in subscription order.
// Publish runs handlers synchronously on the caller's goroutine.
type Bus[T any] struct {
	mu       sync.RWMutex
	nextID   int
	handlers []subscription[T]
}

type subscription[T any] struct {
	id int
	fn func(T)
}

// Subscribe registers fn and returns a function that removes it. Calling
// the returned function more than once is harmless.
func (b *Bus[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers = append(b.handlers, subscription[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus[T]) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, h := range b.handlers {
		if h.id == id {
			b.handlers = append(b.handlers[:i:i], b.handlers[i+1:]...)
			return
		}
	}
}

// Publish delivers v to every current subscriber. Handlers may subscribe
// or unsubscribe while being called; changes apply from the next Publish.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	handlers := make([]subscription[T], len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h.fn(v)
	}
}

// Len returns the number of subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}

// DiscountUpdated is published after an order discount is saved.
type DiscountUpdated struct {
	OrderID     int64
	Percentage  decimal.Decimal
	Description string
}

// StatusChanged is published when an order changes status.
type StatusChanged struct {
	OrderID int64
	Status  int
}

// ChatClosed is published when a thread chat is closed by the user.
type ChatClosed struct{}

// Hub groups the topics shared across the application.
type Hub struct {
	Discounts  Bus[DiscountUpdated]
	Statuses   Bus[StatusChanged]
	ChatClosed Bus[ChatClosed]
}

// NewHub returns a Hub with no subscribers.
func NewHub() *Hub {
	return &Hub{}
}
