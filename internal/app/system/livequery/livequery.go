// Package livequery turns a one-shot query plus a stream of change
// notifications into a cancellable stream of snapshots.
//
// A Subscription delivers the initial snapshot immediately and then a fresh
// snapshot after every notification, in the order they were produced. The
// producer never blocks on a slow consumer: an undelivered snapshot is
// replaced by the newer one, so a reader always sees the latest state.
package livequery

import (
	"context"
	"sync"
)

// Loader runs the query behind a subscription.
type Loader[T any] func(ctx context.Context) (T, error)

// Listener opens the notification stream that triggers reloads. The stream
// must close when ctx is done.
type Listener[E any] func(ctx context.Context) (<-chan E, error)

// Subscription is a live stream of snapshots of type T.
type Subscription[T any] struct {
	ch     chan T
	done   chan struct{}
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// Open starts a subscription. The listener is opened before the initial
// load so no change between the two is missed. An error from either is
// returned directly and nothing is left running.
func Open[T any, E any](parent context.Context, listen Listener[E], load Loader[T]) (*Subscription[T], error) {
	ctx, cancel := context.WithCancel(parent)

	events, err := listen(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	initial, err := load(ctx)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Subscription[T]{
		ch:     make(chan T, 1),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	s.ch <- initial

	go run(ctx, s, events, load)
	return s, nil
}

func run[T any, E any](ctx context.Context, s *Subscription[T], events <-chan E, load Loader[T]) {
	defer close(s.done)
	defer close(s.ch)

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			drain(events)

			snap, err := load(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.setErr(err)
				}
				return
			}
			s.deliver(snap)
		}
	}
}

// deliver hands snap to the reader, replacing any snapshot it has not taken.
// Only run sends on s.ch, so after the drain the send cannot block.
func (s *Subscription[T]) deliver(snap T) {
	select {
	case s.ch <- snap:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

// drain discards notifications that queued up behind the current one; a
// single reload covers all of them.
func drain[E any](events <-chan E) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// C returns the snapshot channel. It is closed when the subscription ends.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Done is closed once the subscription has fully stopped.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Err reports why the subscription ended, or nil if it was closed or its
// context was cancelled.
func (s *Subscription[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription[T]) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Close stops the subscription and waits for it to finish. It is safe to
// call more than once.
func (s *Subscription[T]) Close() {
	s.cancel()
	<-s.done
}

// Next waits for the next snapshot. ok is false if the subscription ended.
func (s *Subscription[T]) Next(ctx context.Context) (snap T, ok bool) {
	select {
	case snap, ok = <-s.ch:
		return snap, ok
	case <-ctx.Done():
		return snap, false
	}
}
