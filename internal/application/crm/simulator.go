package crm

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/bizconsole/backend/internal/domain/shared"
)

// DefaultFailureRate is the share of mock API calls that fail
const DefaultFailureRate = 0.05

// SimulatorConfig configures latency and failure injection
type SimulatorConfig struct {
	FailureRate float64
	MinLatency  time.Duration
	MaxLatency  time.Duration
	// Source seeds the random decisions; nil uses a time-seeded PCG
	Source rand.Source
	// OnFailure is called with the operation name of every injected failure
	OnFailure func(op string)
}

// Simulator makes the CRM mock API behave like a remote service: every call
// waits a random latency and fails with probability FailureRate.
type Simulator struct {
	cfg SimulatorConfig
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulator
func NewSimulator(cfg SimulatorConfig) *Simulator {
	src := cfg.Source
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>1)
	}
	if cfg.MaxLatency < cfg.MinLatency {
		cfg.MaxLatency = cfg.MinLatency
	}
	return &Simulator{cfg: cfg, rng: rand.New(src)}
}

// NoopSimulator never waits and never fails
func NoopSimulator() *Simulator {
	return NewSimulator(SimulatorConfig{Source: rand.NewPCG(1, 1)})
}

// Call waits the simulated latency and then reports an injected network
// error or nil. It returns ctx.Err() when the context ends first.
func (s *Simulator) Call(ctx context.Context, op string) error {
	delay, fail := s.roll()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if fail {
		if s.cfg.OnFailure != nil {
			s.cfg.OnFailure(op)
		}
		return shared.NewDomainError(shared.ErrNetwork.Code, "Network error: failed to "+op)
	}
	return nil
}

func (s *Simulator) roll() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delay := s.cfg.MinLatency
	if spread := s.cfg.MaxLatency - s.cfg.MinLatency; spread > 0 {
		delay += time.Duration(s.rng.Int64N(int64(spread) + 1))
	}
	return delay, s.cfg.FailureRate > 0 && s.rng.Float64() < s.cfg.FailureRate
}
