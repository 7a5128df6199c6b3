package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

// CircuitBreaker shields a sports-data provider from hammering once it starts
// failing. Closed counts consecutive failures; open rejects until the cooldown
// elapses; half-open lets a bounded number of probes through.
type CircuitBreaker struct {
	mu sync.Mutex

	failureLimit int
	cooldown     time.Duration
	probeLimit   int

	state        CircuitState
	failureRun   int
	openedAt     time.Time
	probesActive int
	probesPassed int
	now          func() time.Time
}

func NewCircuitBreaker(failureLimit int, cooldown time.Duration, probeLimit int) *CircuitBreaker {
	if failureLimit < 1 {
		failureLimit = 1
	}
	if cooldown <= 0 {
		cooldown = 15 * time.Second
	}
	if probeLimit < 1 {
		probeLimit = 1
	}

	return &CircuitBreaker{
		failureLimit: failureLimit,
		cooldown:     cooldown,
		probeLimit:   probeLimit,
		state:        CircuitClosed,
		now:          time.Now,
	}
}

// Allow reports whether a request may proceed, transitioning open to
// half-open after the cooldown.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen {
		if b.now().Sub(b.openedAt) < b.cooldown {
			return ErrCircuitOpen
		}
		b.transition(CircuitHalfOpen)
	}

	if b.state == CircuitHalfOpen {
		if b.probesActive >= b.probeLimit {
			return ErrCircuitOpen
		}
		b.probesActive++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed:
		b.failureRun = 0
	case CircuitHalfOpen:
		if b.probesActive > 0 {
			b.probesActive--
		}
		b.probesPassed++
		if b.probesPassed >= b.probeLimit && b.probesActive == 0 {
			b.transition(CircuitClosed)
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitClosed:
		b.failureRun++
		if b.failureRun >= b.failureLimit {
			b.transition(CircuitOpen)
		}
	case CircuitHalfOpen:
		if b.probesActive > 0 {
			b.probesActive--
		}
		b.transition(CircuitOpen)
	case CircuitOpen:
		// Keep pushing the cooldown out while failures continue.
		b.openedAt = b.now()
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		return CircuitHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) transition(next CircuitState) {
	b.state = next
	b.probesActive = 0
	b.probesPassed = 0
	switch next {
	case CircuitClosed:
		b.failureRun = 0
		b.openedAt = time.Time{}
	case CircuitOpen:
		b.openedAt = b.now()
	}
}
