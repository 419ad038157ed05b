package sampler_test

import (
	"testing"

	"codeberg.org/mutker/socwatt/internal/sampler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamReadings(t *testing.T) {
	stream, err := sampler.NewStream(newFakeProvider(), 10, 1)
	require.NoError(t, err)
	defer stream.Close()

	reading, ok := stream.Next()
	require.True(t, ok)

	assert.Greater(t, reading.CPUWatts, 0.0)
	assert.Greater(t, reading.GPUWatts, 0.0)
	assert.Greater(t, reading.ANEWatts, 0.0)
	assert.Greater(t, reading.TimestampMS, int64(0))
}

func TestStreamCloseEndsIteration(t *testing.T) {
	stream, err := sampler.NewStream(newFakeProvider(), 5, 1)
	require.NoError(t, err)

	_, ok := stream.Next()
	require.True(t, ok)

	stream.Close()

	_, ok = stream.Next()
	assert.False(t, ok, "stream reports closure instead of blocking")
}

func TestStreamStartFailure(t *testing.T) {
	provider := newFakeProvider()
	provider.subscribeErr = assert.AnError

	_, err := sampler.NewStream(provider, 10, 1)
	require.Error(t, err)
}
