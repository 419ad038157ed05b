package sampler

import "codeberg.org/mutker/socwatt/internal/errors"

const (
	// Session Errors
	ErrSubscribeFailed = errors.ErrorCode("sampler_subscribe_failed")

	// Collection Errors
	ErrBatchFailed = errors.ErrorCode("sampler_batch_failed")
)
