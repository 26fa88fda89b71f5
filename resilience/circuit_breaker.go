package resilience

import (
	"errors"
	"sync"
	"time"
)

// State is a breaker state.
type State int

const (
	// StateClosed lets every call through.
	StateClosed State = iota
	// StateOpen rejects calls until the cooldown has passed.
	StateOpen
	// StateHalfOpen lets a limited number of probe calls through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute while the breaker rejects calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	Name string
	// MaxFailures is the number of consecutive failures that opens the
	// breaker.
	MaxFailures int
	// Cooldown is how long the breaker stays open before probing.
	Cooldown time.Duration
	// HalfOpenCalls is the number of probes allowed, and the number of
	// successes needed to close again.
	HalfOpenCalls int
	OnStateChange func(name string, from, to State)
}

// Breaker fails fast once a dependency has failed MaxFailures times in a
// row. Safe for concurrent use.
type Breaker struct {
	cfg BreakerConfig

	mu          sync.Mutex
	state       State
	failures    int
	successes   int
	probes      int
	lastFailure time.Time
}

// NewBreaker creates a closed breaker. Zero fields default to 5 failures,
// a 30s cooldown and one probe.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.HalfOpenCalls <= 0 {
		cfg.HalfOpenCalls = 1
	}
	return &Breaker{cfg: cfg}
}

// Execute runs fn unless the breaker is open, and records its outcome.
func (b *Breaker) Execute(fn func() error) error {
	if !b.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	b.record(err)
	return err
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// Failures returns the consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// Reset closes the breaker.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transition(StateClosed)
	b.failures = 0
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateClosed:
		return true
	case StateHalfOpen:
		if b.probes < b.cfg.HalfOpenCalls {
			b.probes++
			return true
		}
	}
	return false
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := b.current()
	if err == nil {
		switch state {
		case StateClosed:
			b.failures = 0
		case StateHalfOpen:
			b.successes++
			if b.successes >= b.cfg.HalfOpenCalls {
				b.transition(StateClosed)
			}
		}
		return
	}

	b.failures++
	b.lastFailure = time.Now()
	if state == StateHalfOpen || (state == StateClosed && b.failures >= b.cfg.MaxFailures) {
		b.transition(StateOpen)
	}
}

// current moves an open breaker to half-open once the cooldown is over.
// Callers hold mu.
func (b *Breaker) current() State {
	if b.state == StateOpen && time.Since(b.lastFailure) >= b.cfg.Cooldown {
		b.transition(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.successes = 0
	b.probes = 0
	if to == StateClosed {
		b.failures = 0
	}
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(b.cfg.Name, from, to)
	}
}
