package sampler

import (
	"sync"
	"time"

	"codeberg.org/mutker/socwatt/internal/errors"
	"codeberg.org/mutker/socwatt/internal/ioreport"
	"codeberg.org/mutker/socwatt/internal/logger"
)

const sampleQueueDepth = 64

// SampleManager owns one background worker that polls the provider,
// classifies delta entries and streams EnergySamples to the consumer.
//
// Shared state with the consumer is limited to a one-shot cancellation
// channel and the sample queue. Cancellation is cooperative: it is observed
// only between batches, so an in-flight batch always runs to completion.
// There is no timeout beyond the polling interval; a provider call that
// never returns blocks teardown.
type SampleManager struct {
	provider   ioreport.Provider
	interval   time.Duration
	windows    int
	samples    chan EnergySample
	cancel     chan struct{}
	cancelOnce sync.Once
	done       chan struct{}
}

// NewSampleManager prepares a manager polling every intervalMS, subdividing
// each round into samplesPerPoll back-to-back windows (clamped to [1,32]).
func NewSampleManager(provider ioreport.Provider, intervalMS, samplesPerPoll int) *SampleManager {
	if intervalMS < 1 {
		intervalMS = 1
	}
	if samplesPerPoll < 1 {
		samplesPerPoll = 1
	} else if samplesPerPoll > ioreport.MaxWindowsPerBatch {
		samplesPerPoll = ioreport.MaxWindowsPerBatch
	}

	return &SampleManager{
		provider: provider,
		interval: time.Duration(intervalMS) * time.Millisecond,
		windows:  samplesPerPoll,
		samples:  make(chan EnergySample, sampleQueueDepth),
		cancel:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start opens the provider subscription over the whole channel catalog and
// launches the worker. Subscription failure is reported here, synchronously;
// the worker is never spawned in that case.
func (m *SampleManager) Start() error {
	sub, err := m.provider.Subscribe(nil)
	if err != nil {
		return errors.New().Wrap(ErrSubscribeFailed, err)
	}

	go m.run(ioreport.NewSampleWindows(sub))

	return nil
}

// Samples is the queue the worker emits to. It is closed when the worker
// exits; samples arrive in production order.
func (m *SampleManager) Samples() <-chan EnergySample {
	return m.samples
}

// Cancel signals the worker to stop after its current batch. Safe to call
// any number of times, from any goroutine.
func (m *SampleManager) Cancel() {
	m.cancelOnce.Do(func() {
		close(m.cancel)
	})
}

// Done is closed once the worker has exited and released the subscription.
func (m *SampleManager) Done() <-chan struct{} {
	return m.done
}

// Drain cancels the worker and collects everything enqueued before
// cancellation was observed, blocking until the queue closes.
func (m *SampleManager) Drain() []EnergySample {
	m.Cancel()

	var drained []EnergySample
	for sample := range m.samples {
		drained = append(drained, sample)
	}
	<-m.done

	return drained
}

func (m *SampleManager) run(windows *ioreport.SampleWindows) {
	defer close(m.done)
	defer close(m.samples)
	defer func() {
		if err := windows.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close provider subscription")
		}
	}()

	for {
		select {
		case <-m.cancel:
			return
		default:
		}

		batch, err := windows.Batch(m.interval, m.windows)
		if err != nil {
			logger.ErrorWithCode(errors.New().Wrap(ErrBatchFailed, err)).
				Msg("Sample batch failed, stopping worker")
			return
		}

		for _, delta := range batch {
			sample := newEnergySample(delta)
			delta.Release()

			// Blocking emit. Teardown always drains the queue, so a full
			// queue cannot deadlock the worker.
			m.samples <- sample
		}
	}
}
