package reconcile

import (
	"sync"

	"github.com/jonwraymond/histsync/credential"
)

// GuardState represents the auto-fetch guard state.
type GuardState int

const (
	// GuardIdle means no automatic fetch was attempted for the current
	// credential.
	GuardIdle GuardState = iota
	// GuardAttempted means the single automatic fetch for the current
	// credential has been spent.
	GuardAttempted
)

// String returns the string representation of the state.
func (s GuardState) String() string {
	switch s {
	case GuardIdle:
		return "idle"
	case GuardAttempted:
		return "attempted"
	default:
		return "unknown"
	}
}

// GuardConfig configures the auto-fetch guard.
type GuardConfig struct {
	// OnStateChange is called when the guard state changes.
	OnStateChange func(from, to GuardState)
}

// Guard bounds automatic fetch attempts to at most one per distinct
// credential value. Repeated observation cycles while the record set
// stays empty (for example because the remote also has nothing) would
// otherwise refetch on every cycle.
type Guard struct {
	config GuardConfig

	mu    sync.Mutex
	state GuardState
	cred  credential.Token
}

// NewGuard creates a new guard in the idle state.
func NewGuard(config ...GuardConfig) *Guard {
	cfg := GuardConfig{}
	if len(config) > 0 {
		cfg = config[0]
	}
	return &Guard{
		config: cfg,
		state:  GuardIdle,
	}
}

// State returns the current guard state.
func (g *Guard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Track records the current credential. Any change of value, including
// becoming absent, resets the guard to idle so exactly one fresh
// automatic attempt is permitted under the new credential.
func (g *Guard) Track(cred credential.Token) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.trackLocked(cred)
}

// Acquire attempts to spend the single automatic fetch for cred.
// Returns true exactly once per distinct credential value.
func (g *Guard) Acquire(cred credential.Token) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.trackLocked(cred)
	if g.state == GuardAttempted {
		return false
	}
	g.setState(GuardAttempted)
	return true
}

// Reset forces the guard back to idle without changing the tracked
// credential.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setState(GuardIdle)
}

func (g *Guard) trackLocked(cred credential.Token) {
	if g.cred.Equal(cred) {
		return
	}
	g.cred = cred
	g.setState(GuardIdle)
}

func (g *Guard) setState(state GuardState) {
	if g.state == state {
		return
	}
	old := g.state
	g.state = state
	if g.config.OnStateChange != nil {
		g.config.OnStateChange(old, state)
	}
}
