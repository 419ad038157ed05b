package sampler

import (
	"codeberg.org/mutker/socwatt/internal/ioreport"
	"codeberg.org/mutker/socwatt/internal/logger"
)

const (
	milliWattsPerWatt     = 1000.0
	millisecondsPerSecond = 1000.0
)

// EnergySample is one windowed measurement of accumulated energy per
// component. Immutable once produced; durations are always at least 1ms.
type EnergySample struct {
	CPUEnergyMJ float64
	GPUEnergyMJ float64
	ANEEnergyMJ float64
	DurationMS  uint64
}

// CPUPowerW returns the average CPU power over the sample window in watts.
func (s EnergySample) CPUPowerW() float64 {
	return powerWatts(s.CPUEnergyMJ, s.DurationMS)
}

// GPUPowerW returns the average GPU power over the sample window in watts.
func (s EnergySample) GPUPowerW() float64 {
	return powerWatts(s.GPUEnergyMJ, s.DurationMS)
}

// ANEPowerW returns the average ANE power over the sample window in watts.
func (s EnergySample) ANEPowerW() float64 {
	return powerWatts(s.ANEEnergyMJ, s.DurationMS)
}

func powerWatts(energyMJ float64, durationMS uint64) float64 {
	if durationMS < 1 {
		durationMS = 1
	}

	return energyMJ / (float64(durationMS) / millisecondsPerSecond) / milliWattsPerWatt
}

// newEnergySample consumes one delta window, summing every Energy Model
// entry into its component. A window may carry several entries for the same
// component (one per ANE core, for instance), so values accumulate rather
// than overwrite. Entries with unrecognized units are skipped; unknown
// channels contribute nothing.
func newEnergySample(delta *ioreport.DeltaSnapshot) EnergySample {
	sample := EnergySample{DurationMS: delta.ElapsedMS()}

	for {
		entry, ok := delta.Next()
		if !ok {
			break
		}

		if entry.Group.Kind != ioreport.GroupEnergyModel {
			continue
		}

		unit, err := ioreport.ParseEnergyUnit(entry.UnitLabel)
		if err != nil {
			logger.Debug().
				Str("channel", entry.Channel.Name).
				Str("unit", entry.UnitLabel).
				Msg("Skipping entry with unrecognized energy unit")
			continue
		}

		energyMJ := unit.Millijoules(entry.Counter.Value())

		switch entry.Channel.Kind {
		case ioreport.ChannelCPUEnergy:
			sample.CPUEnergyMJ += energyMJ
		case ioreport.ChannelGPUEnergy:
			sample.GPUEnergyMJ += energyMJ
		case ioreport.ChannelANE:
			sample.ANEEnergyMJ += energyMJ
		default:
			// Unknown channel within the energy group: ignore, keep going
		}
	}

	return sample
}
