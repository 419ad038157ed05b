package ioreport

import (
	"time"

	"codeberg.org/mutker/socwatt/internal/errors"
)

// MaxWindowsPerBatch bounds how finely one polling round may be subdivided.
const MaxWindowsPerBatch = 32

// RawChannelEntry is one channel of a windowed delta. The counter handle is
// owned by the enclosing DeltaSnapshot, never individually.
type RawChannelEntry struct {
	Group     ChannelGroup
	Subgroup  string
	Channel   ChannelName
	UnitLabel string
	Counter   CounterHandle
}

// DeltaSnapshot is the diff of two point-in-time snapshots: an ordered,
// finite, single-pass sequence of channel entries plus the elapsed window.
type DeltaSnapshot struct {
	entries   []RawChannelEntry
	elapsedMS uint64
	index     int
	release   func()
}

// NewDeltaSnapshot wraps classified delta entries. The elapsed window is
// clamped to at least 1ms. release frees the underlying provider data and
// may be nil.
func NewDeltaSnapshot(entries []RawChannelEntry, elapsedMS uint64, release func()) *DeltaSnapshot {
	if elapsedMS < 1 {
		elapsedMS = 1
	}

	return &DeltaSnapshot{
		entries:   entries,
		elapsedMS: elapsedMS,
		release:   release,
	}
}

// ElapsedMS returns the wall-clock span between the two snapshots diffed.
func (d *DeltaSnapshot) ElapsedMS() uint64 {
	return d.elapsedMS
}

// Next yields the next channel entry. The sequence is consumed exactly once.
func (d *DeltaSnapshot) Next() (*RawChannelEntry, bool) {
	if d.index >= len(d.entries) {
		return nil, false
	}

	entry := &d.entries[d.index]
	d.index++

	return entry, true
}

// Release frees the provider data backing this delta. Entry counter handles
// are invalid afterwards. Safe to call more than once.
func (d *DeltaSnapshot) Release() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
	d.entries = nil
	d.index = 0
}

// SampleWindows produces back-to-back delta windows over one subscription.
// The newest point-in-time snapshot is retained between batches so that
// consecutive batches leave no gap; every superseded snapshot is released
// before the next window starts.
type SampleWindows struct {
	sub    Subscription
	prev   Snapshot
	prevAt time.Time
}

func NewSampleWindows(sub Subscription) *SampleWindows {
	return &SampleWindows{sub: sub}
}

// Batch takes count back-to-back windows spanning interval in total. count
// is clamped to [1, MaxWindowsPerBatch]. Each returned delta reflects only
// the counters accumulated between its two snapshots.
func (w *SampleWindows) Batch(interval time.Duration, count int) ([]*DeltaSnapshot, error) {
	errFactory := errors.New()

	if count < 1 {
		count = 1
	} else if count > MaxWindowsPerBatch {
		count = MaxWindowsPerBatch
	}

	step := interval / time.Duration(count)

	if w.prev == nil {
		initial, err := w.sub.Snapshot()
		if err != nil {
			return nil, errFactory.Wrap(ErrSnapshotFailed, err)
		}
		w.prev = initial
		w.prevAt = time.Now()
	}

	windows := make([]*DeltaSnapshot, 0, count)
	for i := 0; i < count; i++ {
		time.Sleep(step)

		next, err := w.sub.Snapshot()
		if err != nil {
			releaseAll(windows)
			return nil, errFactory.Wrap(ErrSnapshotFailed, err)
		}
		now := time.Now()

		elapsed := now.Sub(w.prevAt).Milliseconds()
		if elapsed < 1 {
			elapsed = 1
		}

		delta, err := w.sub.Delta(w.prev, next, uint64(elapsed))
		if err != nil {
			next.Release()
			releaseAll(windows)
			return nil, errFactory.Wrap(ErrDeltaFailed, err)
		}

		w.prev.Release()
		w.prev = next
		w.prevAt = now

		windows = append(windows, delta)
	}

	return windows, nil
}

// Close releases the retained snapshot and the subscription.
func (w *SampleWindows) Close() error {
	if w.prev != nil {
		w.prev.Release()
		w.prev = nil
	}

	return w.sub.Close()
}

func releaseAll(windows []*DeltaSnapshot) {
	for _, d := range windows {
		d.Release()
	}
}
