//go:build !darwin || !cgo

package ioreport

import "codeberg.org/mutker/socwatt/internal/errors"

// Open returns the platform telemetry provider. IOReport only exists on
// darwin; everywhere else session start fails synchronously.
func Open() (Provider, error) {
	return nil, errors.New().New(ErrProviderUnavailable)
}
