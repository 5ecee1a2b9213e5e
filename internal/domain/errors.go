package domain

import "errors"

var (
	// ErrQueueEmpty signals that no waiting ticket exists. It is a defined
	// empty result, not a store failure.
	ErrQueueEmpty = errors.New("no waiting ticket")

	// ErrCreationFailed signals an aborted issuance transaction; no ticket
	// was created and the caller may retry.
	ErrCreationFailed = errors.New("ticket creation failed")

	// ErrResetFailed signals an aborted bulk reset; queue state is unchanged.
	ErrResetFailed = errors.New("queue reset failed")

	// ErrStoreUnavailable signals that no store session could be established.
	ErrStoreUnavailable = errors.New("store unavailable")
)
