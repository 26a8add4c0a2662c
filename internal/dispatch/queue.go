package dispatch

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// turnQueue serializes turns per conversation. Waiters are admitted in the
// order they arrived; idle slots are dropped.
type turnQueue struct {
	mu    sync.Mutex
	slots map[string]*turnSlot
}

type turnSlot struct {
	sem  *semaphore.Weighted
	refs int
}

func newTurnQueue() *turnQueue {
	return &turnQueue{slots: make(map[string]*turnSlot)}
}

// acquire blocks until the conversation is free or ctx is done.
func (q *turnQueue) acquire(ctx context.Context, name string) (func(), error) {
	q.mu.Lock()
	s, ok := q.slots[name]
	if !ok {
		s = &turnSlot{sem: semaphore.NewWeighted(1)}
		q.slots[name] = s
	}
	s.refs++
	q.mu.Unlock()

	if err := s.sem.Acquire(ctx, 1); err != nil {
		q.drop(name, s)
		return nil, err
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			s.sem.Release(1)
			q.drop(name, s)
		})
	}, nil
}

func (q *turnQueue) drop(name string, s *turnSlot) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s.refs--
	if s.refs == 0 && q.slots[name] == s {
		delete(q.slots, name)
	}
}

func (q *turnQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.slots)
}
