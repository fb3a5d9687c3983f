package db

import (
	"context"
	"sync"
)

// Broker fans snapshots out to subscribers. Each subscriber channel holds at
// most one snapshot; publishing replaces an unread one, so writers never block.
type Broker struct {
	mu     sync.Mutex
	latest *Snapshot
	subs   map[chan *Snapshot]struct{}
	closed bool
	done   chan struct{}
}

// NewBroker creates an empty broker
func NewBroker() *Broker {
	return &Broker{
		subs: make(map[chan *Snapshot]struct{}),
		done: make(chan struct{}),
	}
}

// Subscribe registers a subscriber. If a snapshot has been published it is
// delivered immediately. The channel is closed when ctx ends or on Close.
func (b *Broker) Subscribe(ctx context.Context) <-chan *Snapshot {
	ch, _, _ := b.subscribe(ctx)
	return ch
}

// subscribe also reports whether a cached snapshot was delivered and returns
// a func that drops the subscription early.
func (b *Broker) subscribe(ctx context.Context) (<-chan *Snapshot, bool, func()) {
	ch := make(chan *Snapshot, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, true, func() {}
	}
	hasLatest := b.latest != nil
	if hasLatest {
		ch <- b.latest
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	stop := make(chan struct{})
	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(stop)
			b.remove(ch)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			unsubscribe()
		case <-stop:
		case <-b.done:
		}
	}()
	return ch, hasLatest, unsubscribe
}

func (b *Broker) remove(ch chan *Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

// Publish delivers s to every subscriber. Snapshots older than the latest
// published one are dropped.
func (b *Broker) Publish(s *Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	if b.latest != nil && s.TakenAt.Before(b.latest.TakenAt) {
		return
	}
	b.latest = s
	for ch := range b.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// Invalidate forgets the latest snapshot so the next subscriber triggers a
// fresh read.
func (b *Broker) Invalidate() {
	b.mu.Lock()
	b.latest = nil
	b.mu.Unlock()
}

// Subscribers returns the number of live subscriptions
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for ch := range b.subs {
		close(ch)
		delete(b.subs, ch)
	}
}
