package sampler

import (
	"sync"
	"time"

	"codeberg.org/mutker/socwatt/internal/errors"
	"codeberg.org/mutker/socwatt/internal/ioreport"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateRunning
)

// Sampler is the scope-based session front end. Subscribe starts the
// background worker and returns a guard; closing the guard drains every
// pending sample into the session history. At most one session may be
// active at a time, enforced by an explicit Idle/Running state.
type Sampler struct {
	provider  ioreport.Provider
	mu        sync.Mutex
	state     sessionState
	history   []EnergySample
	startTime time.Time
	endTime   time.Time
}

func NewSampler(provider ioreport.Provider) *Sampler {
	return &Sampler{provider: provider}
}

// Session is the scope-bound guard for one active sampling session.
type Session struct {
	sampler *Sampler
	manager *SampleManager
	once    sync.Once
}

// Subscribe starts sampling every intervalMS, samplesPerPoll windows per
// round. Returns AlreadyRunning if a session guard is still live.
func (s *Sampler) Subscribe(intervalMS, samplesPerPoll int) (*Session, error) {
	errFactory := errors.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateRunning {
		return nil, errFactory.New(errors.ErrAlreadyRunning)
	}

	manager := NewSampleManager(s.provider, intervalMS, samplesPerPoll)
	if err := manager.Start(); err != nil {
		return nil, err
	}

	s.state = stateRunning
	s.startTime = time.Now()
	s.endTime = time.Time{}

	return &Session{sampler: s, manager: manager}, nil
}

// Close ends the session: the worker is cancelled, the queue drained to
// closure and every drained sample appended to the session history. Nothing
// enqueued before cancellation was observed is lost. Idempotent.
func (g *Session) Close() {
	g.once.Do(func() {
		drained := g.manager.Drain()

		s := g.sampler
		s.mu.Lock()
		s.history = append(s.history, drained...)
		s.state = stateIdle
		s.endTime = time.Now()
		s.mu.Unlock()
	})
}

// History returns a copy of the accumulated sample history.
func (s *Sampler) History() []EnergySample {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]EnergySample, len(s.history))
	copy(history, s.history)

	return history
}

// Profile computes summary statistics over the full sample history.
func (s *Sampler) Profile() PowerProfile {
	return NewPowerProfile(s.History())
}

// SessionDuration is the wall-clock span of the last session. This differs
// from the summed sample durations, which only count time spent inside
// polling windows.
func (s *Sampler) SessionDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.startTime.IsZero() {
		return 0
	}
	if s.endTime.IsZero() {
		return time.Since(s.startTime)
	}

	return s.endTime.Sub(s.startTime)
}

// Reset clears the sample history. Rejected while a session is active.
func (s *Sampler) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateRunning {
		return errors.New().New(errors.ErrResourceBusy)
	}

	s.history = nil
	s.startTime = time.Time{}
	s.endTime = time.Time{}

	return nil
}
