package game

import (
	"fmt"
	"sync"
)

// ClaimQueue is the FIFO of players holding three selections. Players publish
// themselves; only the coordinator polls. A player is queued at most once, so
// the queue never grows past the player count.
type ClaimQueue struct {
	mu       sync.Mutex
	entries  []*Player
	capacity int

	// ready is signalled on every publish so the coordinator can wake early.
	ready chan struct{}
}

// NewClaimQueue returns a queue sized for capacity players.
func NewClaimQueue(capacity int) *ClaimQueue {
	return &ClaimQueue{
		entries:  make([]*Player, 0, capacity),
		capacity: capacity,
		ready:    make(chan struct{}, 1),
	}
}

// Publish appends p unless it is already queued.
func (q *ClaimQueue) Publish(p *Player) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e == p {
			return nil
		}
	}
	if len(q.entries) >= q.capacity {
		return fmt.Errorf("%w: claim queue full (%d) publishing player %d", ErrInvalidState, q.capacity, p.ID)
	}
	q.entries = append(q.entries, p)

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return nil
}

// Poll removes and returns the oldest claim.
func (q *ClaimQueue) Poll() (*Player, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return nil, false
	}
	p := q.entries[0]
	q.entries[0] = nil
	q.entries = q.entries[1:]
	return p, true
}

// Remove drops p if it is queued, reporting whether it was.
func (q *ClaimQueue) Remove(p *Player) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.entries {
		if e == p {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (q *ClaimQueue) Contains(p *Player) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		if e == p {
			return true
		}
	}
	return false
}

func (q *ClaimQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Ready fires after a publish. It may fire spuriously; always Poll.
func (q *ClaimQueue) Ready() <-chan struct{} {
	return q.ready
}
