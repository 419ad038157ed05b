package ioreport

import "codeberg.org/mutker/socwatt/internal/errors"

const (
	// Subscription Errors
	ErrProviderUnavailable = errors.ErrorCode("ioreport_provider_unavailable")
	ErrEmptyChannelCatalog = errors.ErrorCode("ioreport_empty_channel_catalog")
	ErrSubscriptionFailed  = errors.ErrorCode("ioreport_subscription_failed")

	// Sampling Errors
	ErrSnapshotFailed = errors.ErrorCode("ioreport_snapshot_failed")
	ErrDeltaFailed    = errors.ErrorCode("ioreport_delta_failed")

	// Classification Errors
	ErrUnrecognizedUnit = errors.ErrorCode("ioreport_unrecognized_unit")
)
