package sampler_test

import (
	"sync"
	"testing"

	"codeberg.org/mutker/socwatt/internal/errors"
	"codeberg.org/mutker/socwatt/internal/ioreport"
	"codeberg.org/mutker/socwatt/internal/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter int64

func (c fakeCounter) Value() int64 { return int64(c) }

func makeEntry(group, channel, unit string, value int64) ioreport.RawChannelEntry {
	return ioreport.RawChannelEntry{
		Group:     ioreport.ClassifyGroup(group),
		Channel:   ioreport.ClassifyChannel(channel),
		UnitLabel: unit,
		Counter:   fakeCounter(value),
	}
}

// fakeProvider serves the same delta entries for every window.
type fakeProvider struct {
	subscribeErr error
	entries      []ioreport.RawChannelEntry

	mu     sync.Mutex
	closed bool
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		entries: []ioreport.RawChannelEntry{
			makeEntry("Energy Model", "CPU Energy", "mJ", 10),
			makeEntry("Energy Model", "GPU Energy", "uJ", 5_000),
			makeEntry("Energy Model", "ANE0", "nJ", 2_000_000),
			makeEntry("Energy Model", "ANE1", "nJ", 2_000_000),
			makeEntry("Energy Model", "Mystery Counter", "mJ", 999),
			makeEntry("CPU Stats", "CPU Energy", "mJ", 999),
		},
	}
}

func (p *fakeProvider) Subscribe(_ []ioreport.ChannelRequest) (ioreport.Subscription, error) {
	if p.subscribeErr != nil {
		return nil, p.subscribeErr
	}
	return &fakeSub{provider: p}, nil
}

type fakeSub struct {
	provider *fakeProvider
}

type fakeSnap struct{}

func (*fakeSnap) Release() {}

func (s *fakeSub) Snapshot() (ioreport.Snapshot, error) {
	return &fakeSnap{}, nil
}

func (s *fakeSub) Delta(_, _ ioreport.Snapshot, elapsedMS uint64) (*ioreport.DeltaSnapshot, error) {
	entries := make([]ioreport.RawChannelEntry, len(s.provider.entries))
	copy(entries, s.provider.entries)

	return ioreport.NewDeltaSnapshot(entries, elapsedMS, nil), nil
}

func (s *fakeSub) Close() error {
	s.provider.mu.Lock()
	defer s.provider.mu.Unlock()
	s.provider.closed = true
	return nil
}

func (p *fakeProvider) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func TestManagerOnePollingRound(t *testing.T) {
	const (
		intervalMS = 40
		perPoll    = 4
	)

	provider := newFakeProvider()
	manager := sampler.NewSampleManager(provider, intervalMS, perPoll)
	require.NoError(t, manager.Start())

	var got []sampler.EnergySample
	for i := 0; i < perPoll; i++ {
		sample, ok := <-manager.Samples()
		require.True(t, ok)
		got = append(got, sample)
	}
	manager.Drain()

	var totalMS uint64
	for _, sample := range got {
		assert.InDelta(t, 10.0, sample.CPUEnergyMJ, 1e-9)
		assert.InDelta(t, 5.0, sample.GPUEnergyMJ, 1e-9)
		assert.InDelta(t, 4.0, sample.ANEEnergyMJ, 1e-9)
		assert.GreaterOrEqual(t, sample.DurationMS, uint64(1))
		totalMS += sample.DurationMS
	}

	// Each window sleeps at least its step, so one round covers the interval
	assert.GreaterOrEqual(t, totalMS, uint64(intervalMS))
}

func TestManagerSamplesPerPollClamped(t *testing.T) {
	provider := newFakeProvider()
	manager := sampler.NewSampleManager(provider, 4, 100)
	require.NoError(t, manager.Start())

	for i := 0; i < ioreport.MaxWindowsPerBatch; i++ {
		_, ok := <-manager.Samples()
		require.True(t, ok)
	}
	manager.Drain()
}

func TestManagerCancelClosesQueue(t *testing.T) {
	provider := newFakeProvider()
	manager := sampler.NewSampleManager(provider, 5, 1)
	require.NoError(t, manager.Start())

	<-manager.Samples()
	drained := manager.Drain()

	_, ok := <-manager.Samples()
	assert.False(t, ok, "queue closed after drain")
	assert.NotNil(t, drained) // may be empty but never loses queued samples

	select {
	case <-manager.Done():
	default:
		t.Fatal("worker still running after drain")
	}

	assert.True(t, provider.isClosed(), "subscription released on teardown")
}

func TestManagerCancelIdempotent(t *testing.T) {
	provider := newFakeProvider()
	manager := sampler.NewSampleManager(provider, 5, 1)
	require.NoError(t, manager.Start())

	manager.Cancel()
	manager.Cancel()
	manager.Drain()
}

func TestManagerStartFailsSynchronously(t *testing.T) {
	provider := newFakeProvider()
	provider.subscribeErr = errors.New().New(ioreport.ErrProviderUnavailable)

	manager := sampler.NewSampleManager(provider, 10, 1)
	err := manager.Start()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, sampler.ErrSubscribeFailed))
	assert.True(t, errors.IsCode(errors.Unwrap(err), ioreport.ErrProviderUnavailable))
}
