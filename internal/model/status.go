package model

// FetchState represents the lifecycle of a fetch slot
type FetchState string

const (
	// FetchStateIdle means no attempt has been started on the slot
	FetchStateIdle FetchState = "Idle"

	// FetchStateActive means an attempt is running
	FetchStateActive FetchState = "Active"

	// FetchStateCanceling means cancellation was requested but the task has not finished
	FetchStateCanceling FetchState = "Canceling"

	// FetchStateCanceled means the last attempt finished after a cancellation request
	FetchStateCanceled FetchState = "Canceled"

	// FetchStateCompleted means the last attempt delivered its outcome
	FetchStateCompleted FetchState = "Completed"
)

// String returns the string representation of FetchState
func (fs FetchState) String() string {
	return string(fs)
}

// IsActive returns true while an attempt owns the slot
func (fs FetchState) IsActive() bool {
	return fs == FetchStateActive || fs == FetchStateCanceling
}

// IsFinished returns true if the last attempt reached a terminal state
func (fs FetchState) IsFinished() bool {
	return fs == FetchStateCompleted || fs == FetchStateCanceled
}
