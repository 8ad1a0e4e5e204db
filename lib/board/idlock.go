// Copyright 2026 The SnapGrid Authors
// SPDX-License-Identifier: Apache-2.0

package board

import "sync"

// idLocks serializes operations per record id in arrival order. Each
// acquirer enqueues behind the current tail for its id and waits for
// that predecessor to release. sync.Mutex gives no ordering guarantee,
// and a delete racing a save on the same id must be ordered by arrival.
type idLocks struct {
	mu     sync.Mutex
	queues map[string]*idQueue
}

type idQueue struct {
	tail    chan struct{}
	members int
}

func newIDLocks() *idLocks {
	return &idLocks{queues: make(map[string]*idQueue)}
}

// lock blocks until every earlier acquirer of id has released, and
// returns the release function. The queue is removed when its last
// member releases, so the map only holds ids with pending work.
func (l *idLocks) lock(id string) (unlock func()) {
	released := make(chan struct{})

	l.mu.Lock()
	queue := l.queues[id]
	if queue == nil {
		queue = &idQueue{}
		l.queues[id] = queue
	}
	predecessor := queue.tail
	queue.tail = released
	queue.members++
	l.mu.Unlock()

	if predecessor != nil {
		<-predecessor
	}

	return func() {
		l.mu.Lock()
		queue.members--
		if queue.members == 0 {
			delete(l.queues, id)
		}
		l.mu.Unlock()
		close(released)
	}
}

// pending returns the number of ids with a holder or waiters.
func (l *idLocks) pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queues)
}

// queued returns the number of acquirers waiting behind the holder of id.
func (l *idLocks) queued(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if queue := l.queues[id]; queue != nil {
		return queue.members - 1
	}
	return 0
}
