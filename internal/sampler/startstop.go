package sampler

import (
	"sync"
	"time"

	"codeberg.org/mutker/socwatt/internal/errors"
	"codeberg.org/mutker/socwatt/internal/ioreport"
)

// StartStopSampler is the explicit session front end for callers without
// scope-based cleanup, such as a foreign-language host. It wraps the same
// core as Sampler; only the teardown discipline differs.
type StartStopSampler struct {
	sampler *Sampler
	mu      sync.Mutex
	session *Session
}

func NewStartStopSampler(provider ioreport.Provider) *StartStopSampler {
	return &StartStopSampler{sampler: NewSampler(provider)}
}

// Start begins a sampling session. Fails with AlreadyRunning while a
// session is active; provider subscription failure is reported here.
func (s *StartStopSampler) Start(intervalMS, samplesPerPoll int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return errors.New().New(errors.ErrAlreadyRunning)
	}

	session, err := s.sampler.Subscribe(intervalMS, samplesPerPoll)
	if err != nil {
		return err
	}
	s.session = session

	return nil
}

// Stop ends the active session, draining all pending samples into the
// history. Fails with NotRunning when no session is active; the history is
// left untouched in that case.
func (s *StartStopSampler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return errors.New().New(errors.ErrNotRunning)
	}

	s.session.Close()
	s.session = nil

	return nil
}

// History returns a copy of the accumulated sample history.
func (s *StartStopSampler) History() []EnergySample {
	return s.sampler.History()
}

// Profile computes summary statistics over the full sample history.
func (s *StartStopSampler) Profile() PowerProfile {
	return s.sampler.Profile()
}

// SessionDuration is the wall-clock span between Start and Stop.
func (s *StartStopSampler) SessionDuration() time.Duration {
	return s.sampler.SessionDuration()
}
