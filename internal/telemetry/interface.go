package telemetry

import (
	"context"
	"time"

	"codeberg.org/mutker/socwatt/internal/sampler"
)

// Recorder defines the core domain interface
type Recorder interface {
	Record(ctx context.Context, record *SampleRecord) error
	Close() error
}

// SampleRecord is one emitted energy sample plus its recording time.
// Recording is a data export for later analysis; sessions themselves are
// never persisted or resumed.
type SampleRecord struct {
	Timestamp time.Time
	Sample    sampler.EnergySample
}
