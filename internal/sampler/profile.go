package sampler

import "math"

// PowerProfile summarizes a session's sample history. It is recomputed from
// the full history on each request and never persisted.
//
// Average*PowerMW is the mean of per-sample average powers: each sample
// contributes round(energy / duration) regardless of how long its window
// was. TimeWeighted*PowerMW weights by window duration instead (total
// energy over total time); the two diverge whenever window durations vary.
// The unweighted mean is the compatible default, the time-weighted figures
// are there for consumers that need the physically accurate average.
type PowerProfile struct {
	TotalCPUEnergyMJ float64
	TotalGPUEnergyMJ float64
	TotalANEEnergyMJ float64

	AverageCPUPowerMW float64
	AverageGPUPowerMW float64
	AverageANEPowerMW float64

	TimeWeightedCPUPowerMW float64
	TimeWeightedGPUPowerMW float64
	TimeWeightedANEPowerMW float64

	TotalEnergyMJ   float64
	TotalPowerMW    float64
	TotalDurationMS uint64
}

// NewPowerProfile computes summary statistics over a sample history. An
// empty history yields a zero profile.
func NewPowerProfile(history []EnergySample) PowerProfile {
	if len(history) == 0 {
		return PowerProfile{}
	}

	var profile PowerProfile
	var cpuPowerSum, gpuPowerSum, anePowerSum float64

	for _, sample := range history {
		durationMS := sample.DurationMS
		if durationMS < 1 {
			durationMS = 1
		}
		seconds := float64(durationMS) / millisecondsPerSecond

		profile.TotalCPUEnergyMJ += sample.CPUEnergyMJ
		profile.TotalGPUEnergyMJ += sample.GPUEnergyMJ
		profile.TotalANEEnergyMJ += sample.ANEEnergyMJ
		profile.TotalDurationMS += sample.DurationMS

		cpuPowerSum += math.Round(sample.CPUEnergyMJ / seconds)
		gpuPowerSum += math.Round(sample.GPUEnergyMJ / seconds)
		anePowerSum += math.Round(sample.ANEEnergyMJ / seconds)
	}

	n := float64(len(history))
	profile.AverageCPUPowerMW = math.Round(cpuPowerSum / n)
	profile.AverageGPUPowerMW = math.Round(gpuPowerSum / n)
	profile.AverageANEPowerMW = math.Round(anePowerSum / n)

	totalSeconds := float64(profile.TotalDurationMS) / millisecondsPerSecond
	if totalSeconds > 0 {
		profile.TimeWeightedCPUPowerMW = profile.TotalCPUEnergyMJ / totalSeconds
		profile.TimeWeightedGPUPowerMW = profile.TotalGPUEnergyMJ / totalSeconds
		profile.TimeWeightedANEPowerMW = profile.TotalANEEnergyMJ / totalSeconds
	}

	profile.TotalEnergyMJ = profile.TotalCPUEnergyMJ + profile.TotalGPUEnergyMJ + profile.TotalANEEnergyMJ
	profile.TotalPowerMW = profile.AverageCPUPowerMW + profile.AverageGPUPowerMW + profile.AverageANEPowerMW

	return profile
}
