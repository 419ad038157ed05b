package ioreport

import (
	"strings"

	"codeberg.org/mutker/socwatt/internal/errors"
)

// EnergyUnit is the unit of one energy counter as labelled by the provider.
type EnergyUnit int

const (
	MilliJoules EnergyUnit = iota
	MicroJoules
	NanoJoules
)

const millisecondsPerSecond = 1000.0

// Scale factors relative to milli-joules
const (
	microPerMilli = 1e3
	nanoPerMilli  = 1e6
)

// Divisors from raw counter units to watts
const (
	milliJoulesPerWattSecond = 1e3
	microJoulesPerWattSecond = 1e6
	nanoJoulesPerWattSecond  = 1e9
)

// ParseEnergyUnit parses a provider unit label. Labels arrive with
// surrounding whitespace. An unrecognized label is a recoverable error;
// the caller skips the entry and continues.
func ParseEnergyUnit(label string) (EnergyUnit, error) {
	switch strings.TrimSpace(label) {
	case "mJ":
		return MilliJoules, nil
	case "uJ":
		return MicroJoules, nil
	case "nJ":
		return NanoJoules, nil
	default:
		return 0, errors.New().WithData(ErrUnrecognizedUnit, label)
	}
}

func (u EnergyUnit) String() string {
	switch u {
	case MilliJoules:
		return "mJ"
	case MicroJoules:
		return "uJ"
	case NanoJoules:
		return "nJ"
	default:
		return "?"
	}
}

// Millijoules normalizes a raw counter delta to milli-joules.
func (u EnergyUnit) Millijoules(raw int64) float64 {
	switch u {
	case MicroJoules:
		return float64(raw) / microPerMilli
	case NanoJoules:
		return float64(raw) / nanoPerMilli
	default:
		return float64(raw)
	}
}

// Watts converts a raw counter delta over an elapsed window to average
// power. The duration is floored at 1ms before division.
func (u EnergyUnit) Watts(raw int64, durationMS uint64) float64 {
	if durationMS < 1 {
		durationMS = 1
	}

	perSecond := float64(raw) / (float64(durationMS) / millisecondsPerSecond)

	switch u {
	case MicroJoules:
		return perSecond / microJoulesPerWattSecond
	case NanoJoules:
		return perSecond / nanoJoulesPerWattSecond
	default:
		return perSecond / milliJoulesPerWattSecond
	}
}
