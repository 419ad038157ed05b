package ioreport_test

import (
	"sync"
	"testing"
	"time"

	"codeberg.org/mutker/socwatt/internal/ioreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounter int64

func (c fakeCounter) Value() int64 { return int64(c) }

func makeEntry(group, channel, unit string, value int64) ioreport.RawChannelEntry {
	return ioreport.RawChannelEntry{
		Group:     ioreport.ClassifyGroup(group),
		Subgroup:  "",
		Channel:   ioreport.ClassifyChannel(channel),
		UnitLabel: unit,
		Counter:   fakeCounter(value),
	}
}

type fakeSnapshot struct {
	sub *fakeSubscription
}

func (s *fakeSnapshot) Release() {
	s.sub.mu.Lock()
	defer s.sub.mu.Unlock()
	s.sub.snapshotReleases++
}

// fakeSubscription hands out the same entry set for every delta and counts
// resource lifecycle events.
type fakeSubscription struct {
	mu               sync.Mutex
	entries          []ioreport.RawChannelEntry
	snapshots        int
	snapshotReleases int
	deltaReleases    int
	closed           bool
}

func (f *fakeSubscription) Snapshot() (ioreport.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots++
	return &fakeSnapshot{sub: f}, nil
}

func (f *fakeSubscription) Delta(_, _ ioreport.Snapshot, elapsedMS uint64) (*ioreport.DeltaSnapshot, error) {
	entries := make([]ioreport.RawChannelEntry, len(f.entries))
	copy(entries, f.entries)

	return ioreport.NewDeltaSnapshot(entries, elapsedMS, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.deltaReleases++
	}), nil
}

func (f *fakeSubscription) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestDeltaSnapshotSinglePass(t *testing.T) {
	entries := []ioreport.RawChannelEntry{
		makeEntry("Energy Model", "CPU Energy", "mJ", 1),
		makeEntry("Energy Model", "GPU Energy", "mJ", 2),
	}
	delta := ioreport.NewDeltaSnapshot(entries, 100, nil)

	seen := 0
	for {
		_, ok := delta.Next()
		if !ok {
			break
		}
		seen++
	}
	assert.Equal(t, 2, seen)

	// Consumed exactly once
	_, ok := delta.Next()
	assert.False(t, ok)
}

func TestDeltaSnapshotClampsElapsed(t *testing.T) {
	delta := ioreport.NewDeltaSnapshot(nil, 0, nil)
	assert.Equal(t, uint64(1), delta.ElapsedMS())
}

func TestDeltaSnapshotReleaseIdempotent(t *testing.T) {
	released := 0
	delta := ioreport.NewDeltaSnapshot(nil, 10, func() { released++ })

	delta.Release()
	delta.Release()
	assert.Equal(t, 1, released)
}

func TestBatchWindowCount(t *testing.T) {
	sub := &fakeSubscription{}
	windows := ioreport.NewSampleWindows(sub)
	defer windows.Close()

	for _, count := range []int{1, 4, 32} {
		batch, err := windows.Batch(time.Millisecond, count)
		require.NoError(t, err)
		assert.Len(t, batch, count)
		for _, delta := range batch {
			assert.GreaterOrEqual(t, delta.ElapsedMS(), uint64(1))
			delta.Release()
		}
	}
}

func TestBatchClampsCount(t *testing.T) {
	sub := &fakeSubscription{}
	windows := ioreport.NewSampleWindows(sub)
	defer windows.Close()

	batch, err := windows.Batch(0, 0)
	require.NoError(t, err)
	assert.Len(t, batch, 1)
	releaseBatch(batch)

	batch, err = windows.Batch(0, 100)
	require.NoError(t, err)
	assert.Len(t, batch, ioreport.MaxWindowsPerBatch)
	releaseBatch(batch)
}

func TestBatchReleasesSupersededSnapshots(t *testing.T) {
	sub := &fakeSubscription{}
	windows := ioreport.NewSampleWindows(sub)

	batch, err := windows.Batch(0, 4)
	require.NoError(t, err)
	releaseBatch(batch)

	sub.mu.Lock()
	// Initial snapshot plus one per window; all but the retained newest released
	assert.Equal(t, 5, sub.snapshots)
	assert.Equal(t, 4, sub.snapshotReleases)
	sub.mu.Unlock()

	// A second batch reuses the retained snapshot rather than taking a fresh baseline
	batch, err = windows.Batch(0, 2)
	require.NoError(t, err)
	releaseBatch(batch)

	sub.mu.Lock()
	assert.Equal(t, 7, sub.snapshots)
	assert.Equal(t, 6, sub.snapshotReleases)
	sub.mu.Unlock()

	require.NoError(t, windows.Close())

	sub.mu.Lock()
	assert.Equal(t, 7, sub.snapshotReleases, "retained snapshot released on close")
	assert.True(t, sub.closed)
	sub.mu.Unlock()
}

func releaseBatch(batch []*ioreport.DeltaSnapshot) {
	for _, delta := range batch {
		delta.Release()
	}
}
