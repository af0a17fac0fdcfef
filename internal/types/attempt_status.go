package types

// AttemptStatus is the outcome of a single vote intent, as written to the attempt log.
type AttemptStatus string

const (
	// AttemptAccepted means the backend confirmed the vote and it was committed locally.
	AttemptAccepted AttemptStatus = "Accepted"
	// AttemptSigningFailed means the wallet declined or failed to sign the vote statement.
	AttemptSigningFailed AttemptStatus = "SigningFailed"
	// AttemptRejected means the backend refused the vote or the submission could not be delivered.
	AttemptRejected AttemptStatus = "Rejected"
)
