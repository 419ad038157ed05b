package sampler

import (
	"time"

	"codeberg.org/mutker/socwatt/internal/ioreport"
)

// PowerReading is one live power measurement, in watts per component.
type PowerReading struct {
	CPUWatts    float64
	GPUWatts    float64
	ANEWatts    float64
	TimestampMS int64
}

// Stream is a continuous reading stream for host bridges: a thin adapter
// over a SampleManager with no aggregation of its own.
type Stream struct {
	manager *SampleManager
}

// NewStream starts a manager and exposes its samples as power readings.
func NewStream(provider ioreport.Provider, intervalMS, samplesPerPoll int) (*Stream, error) {
	manager := NewSampleManager(provider, intervalMS, samplesPerPoll)
	if err := manager.Start(); err != nil {
		return nil, err
	}

	return &Stream{manager: manager}, nil
}

// Next blocks for the next reading. Returns false once the stream is
// closed and fully drained.
func (st *Stream) Next() (PowerReading, bool) {
	sample, ok := <-st.manager.Samples()
	if !ok {
		return PowerReading{}, false
	}

	return PowerReading{
		CPUWatts:    sample.CPUPowerW(),
		GPUWatts:    sample.GPUPowerW(),
		ANEWatts:    sample.ANEPowerW(),
		TimestampMS: time.Now().UnixMilli(),
	}, true
}

// Close stops the worker and discards anything still queued.
func (st *Stream) Close() {
	st.manager.Drain()
}
