package vote

import "errors"

// Vote intent failures. Each one is also surfaced to subscribers as an error notice.
var (
	ErrNotConnected       = errors.New("wallet is not connected")
	ErrNotReady           = errors.New("votes for this wallet are still loading")
	ErrAlreadyVoted       = errors.New("category already voted")
	ErrSubmitting         = errors.New("vote for this category is already being submitted")
	ErrUnknownSlug        = errors.New("unknown category or candidate")
	ErrSigningFailed      = errors.New("signing failed")
	ErrSubmissionRejected = errors.New("submission failed")
	ErrClosed             = errors.New("controller is closed")
)
