package sampler_test

import (
	"testing"

	"codeberg.org/mutker/socwatt/internal/sampler"
	"github.com/stretchr/testify/assert"
)

func TestPowerProfileEmptyHistory(t *testing.T) {
	profile := sampler.NewPowerProfile(nil)
	assert.Zero(t, profile)
}

func TestPowerProfileTotals(t *testing.T) {
	history := []sampler.EnergySample{
		{CPUEnergyMJ: 10, GPUEnergyMJ: 2, ANEEnergyMJ: 1, DurationMS: 1000},
		{CPUEnergyMJ: 20, GPUEnergyMJ: 4, ANEEnergyMJ: 3, DurationMS: 2000},
	}

	profile := sampler.NewPowerProfile(history)
	assert.InDelta(t, 30.0, profile.TotalCPUEnergyMJ, 1e-9)
	assert.InDelta(t, 6.0, profile.TotalGPUEnergyMJ, 1e-9)
	assert.InDelta(t, 4.0, profile.TotalANEEnergyMJ, 1e-9)
	assert.InDelta(t, 40.0, profile.TotalEnergyMJ, 1e-9)
	assert.Equal(t, uint64(3000), profile.TotalDurationMS)
}

func TestPowerProfileAveragePower(t *testing.T) {
	// Both samples average 10mW, so the unweighted mean is 10mW too
	history := []sampler.EnergySample{
		{CPUEnergyMJ: 10, DurationMS: 1000},
		{CPUEnergyMJ: 20, DurationMS: 2000},
	}

	profile := sampler.NewPowerProfile(history)
	assert.InDelta(t, 10.0, profile.AverageCPUPowerMW, 1e-9)
	assert.InDelta(t, 10.0, profile.TimeWeightedCPUPowerMW, 1e-9)
	assert.InDelta(t, 10.0, profile.TotalPowerMW, 1e-9)
}

func TestPowerProfileMeanOfMeansDiffersFromTimeWeighted(t *testing.T) {
	// 10mW for 1s, then 20mW for 2s: the unweighted mean gives the short
	// window equal say, the time-weighted figure does not
	history := []sampler.EnergySample{
		{CPUEnergyMJ: 10, DurationMS: 1000},
		{CPUEnergyMJ: 40, DurationMS: 2000},
	}

	profile := sampler.NewPowerProfile(history)
	assert.InDelta(t, 15.0, profile.AverageCPUPowerMW, 1e-9, "round((10+20)/2)")
	assert.InDelta(t, 50.0/3.0, profile.TimeWeightedCPUPowerMW, 1e-9)
	assert.NotEqual(t, profile.AverageCPUPowerMW, profile.TimeWeightedCPUPowerMW)
}

func TestPowerProfilePerSampleRounding(t *testing.T) {
	history := []sampler.EnergySample{
		{CPUEnergyMJ: 1.6, DurationMS: 1000},
	}

	profile := sampler.NewPowerProfile(history)
	assert.InDelta(t, 2.0, profile.AverageCPUPowerMW, 1e-9, "per-sample power is rounded")
	assert.InDelta(t, 1.6, profile.TimeWeightedCPUPowerMW, 1e-9)
}

func TestPowerProfileFloorsDuration(t *testing.T) {
	history := []sampler.EnergySample{
		{CPUEnergyMJ: 5, DurationMS: 0},
	}

	profile := sampler.NewPowerProfile(history)
	assert.InDelta(t, 5000.0, profile.AverageCPUPowerMW, 1e-9, "zero window treated as 1ms")
}
