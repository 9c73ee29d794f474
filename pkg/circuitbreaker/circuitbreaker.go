// Package circuitbreaker stops calling a dependency after repeated failures
// and lets a single probe call through once a cooldown has passed.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned instead of calling fn while the breaker is open or a
// probe is already in flight.
var ErrOpen = errors.New("circuit breaker is open")

// State is the breaker position.
type State int

const (
	Closed State = iota
	Open
	Probing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case Probing:
		return "probing"
	}
	return "unknown"
}

// Settings configures a Breaker. Zero values take the defaults noted.
type Settings struct {
	Name string

	// Threshold consecutive failures open the breaker. Default 3.
	Threshold int

	// Cooldown is how long the breaker stays open before probing. Default 15s.
	Cooldown time.Duration

	OnChange func(name string, from, to State)
}

// Breaker is safe for concurrent use.
type Breaker struct {
	settings Settings
	now      func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	skipped  int64
}

// New creates a closed breaker.
func New(s Settings) *Breaker {
	if s.Threshold <= 0 {
		s.Threshold = 3
	}
	if s.Cooldown <= 0 {
		s.Cooldown = 15 * time.Second
	}
	return &Breaker{settings: s, now: time.Now}
}

// ForPublish guards event fan-out to a broker.
func ForPublish(onChange func(name string, from, to State)) *Breaker {
	return New(Settings{Name: "event-publish", OnChange: onChange})
}

// Run calls fn unless the breaker turns it away with ErrOpen. fn's error is
// returned unchanged and counts as a failure.
func (b *Breaker) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if !b.acquire() {
		return ErrOpen
	}
	err := fn(ctx)
	b.release(err)
	return err
}

func (b *Breaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case Open:
		if b.now().Sub(b.openedAt) >= b.settings.Cooldown {
			b.moveTo(Probing)
			return true
		}
	}
	b.skipped++
	return false
}

func (b *Breaker) release(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		if b.state == Probing {
			b.moveTo(Closed)
		}
		return
	}

	b.failures++
	if b.state == Probing || b.failures >= b.settings.Threshold {
		b.failures = 0
		b.openedAt = b.now()
		b.moveTo(Open)
	}
}

// moveTo must be called with mu held.
func (b *Breaker) moveTo(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if b.settings.OnChange != nil {
		b.settings.OnChange(b.settings.Name, from, to)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Skipped counts calls turned away with ErrOpen.
func (b *Breaker) Skipped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.skipped
}
