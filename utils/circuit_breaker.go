package utils

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrBreakerOpen is returned while the breaker is refusing calls.
var ErrBreakerOpen = errors.New("circuit breaker is open")

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

type breakerCounts struct {
	requests             uint32
	totalFailures        uint32
	consecutiveFailures  uint32
	consecutiveSuccesses uint32
}

// CircuitBreaker guards calls to flaky external collaborators (message
// broker, push service, QR storage). Side-effect deliveries go through
// it so a dead dependency fails fast instead of piling up timeouts.
type CircuitBreaker struct {
	name         string
	maxRequests  uint32
	interval     time.Duration
	timeout      time.Duration
	failureRatio float64

	mu     sync.Mutex
	state  BreakerState
	counts breakerCounts
	expiry time.Time
}

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		maxRequests:  100,
		interval:     60 * time.Second,
		timeout:      60 * time.Second,
		failureRatio: 0.6,
		state:        BreakerClosed,
	}
}

// Do runs fn under the breaker. ctx is passed through untouched; a
// context error counts as a failure like any other.
func (cb *CircuitBreaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}
	err := fn(ctx)
	cb.afterRequest(err == nil)
	return err
}

// State returns the current breaker state, refreshed against the clock.
func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState(time.Now())
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state := cb.currentState(time.Now())
	if state == BreakerOpen {
		return ErrBreakerOpen
	}
	if state == BreakerHalfOpen && cb.counts.requests >= cb.maxRequests {
		return ErrBreakerOpen
	}
	cb.counts.requests++
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state := cb.currentState(time.Now())
	if success {
		cb.counts.consecutiveSuccesses++
		cb.counts.consecutiveFailures = 0
		if state == BreakerHalfOpen {
			cb.setState(BreakerClosed)
		}
		return
	}

	cb.counts.totalFailures++
	cb.counts.consecutiveFailures++
	cb.counts.consecutiveSuccesses = 0
	if cb.readyToTrip() {
		cb.setState(BreakerOpen)
		cb.expiry = time.Now().Add(cb.timeout)
	}
}

func (cb *CircuitBreaker) readyToTrip() bool {
	return cb.counts.requests >= cb.maxRequests &&
		float64(cb.counts.totalFailures)/float64(cb.counts.requests) >= cb.failureRatio
}

func (cb *CircuitBreaker) currentState(now time.Time) BreakerState {
	switch cb.state {
	case BreakerClosed:
		if !cb.expiry.IsZero() && cb.expiry.Before(now) {
			cb.newGeneration(now)
		}
	case BreakerOpen:
		if cb.expiry.Before(now) {
			cb.setState(BreakerHalfOpen)
			cb.newGeneration(now)
		}
	}
	return cb.state
}

func (cb *CircuitBreaker) setState(s BreakerState) {
	if cb.state == s {
		return
	}
	log.WithFields(log.Fields{"breaker": cb.name, "from": cb.state, "to": s}).
		Warn("circuit breaker state change")
	cb.state = s
}

func (cb *CircuitBreaker) newGeneration(now time.Time) {
	cb.counts = breakerCounts{}
	if cb.state == BreakerClosed {
		cb.expiry = now.Add(cb.interval)
	} else {
		cb.expiry = time.Time{}
	}
}
