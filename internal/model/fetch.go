package model

import (
	"errors"
	"time"
)

// PreviewRowLimit is the number of data rows kept after the header.
const PreviewRowLimit = 10

// CanceledMessage is the fixed message of a user-canceled fetch.
const CanceledMessage = "Fetching canceled."

// ErrCanceled is wrapped by the cause reported for a canceled fetch.
var ErrCanceled = errors.New("fetch canceled")

// FetchRequest describes one outbound request. It is not modified after
// construction and belongs to the task that issues it.
type FetchRequest struct {
	URL      string
	Username string
	Password string
}

// ProgressKind tags a ProgressMessage
type ProgressKind int

const (
	// ProgressBytes carries the length of a received body chunk
	ProgressBytes ProgressKind = iota
	// ProgressElapsed carries the time spent fetching the body
	ProgressElapsed
)

// ProgressMessage is an interim message sent from a fetch task to the UI.
type ProgressMessage struct {
	Kind    ProgressKind
	Bytes   int
	Elapsed time.Duration
}

// BytesReceived reports a received chunk of n bytes.
func BytesReceived(n int) ProgressMessage {
	return ProgressMessage{Kind: ProgressBytes, Bytes: n}
}

// ElapsedTime reports the time the body took to arrive.
func ElapsedTime(d time.Duration) ProgressMessage {
	return ProgressMessage{Kind: ProgressElapsed, Elapsed: d}
}

// CauseKind tags an ErrorCause
type CauseKind int

const (
	// CauseData is a payload or transport failure
	CauseData CauseKind = iota
	// CauseTiming is a failure while recording elapsed time; the UI only
	// resets the displayed duration
	CauseTiming
)

// String returns a short name for the cause kind
func (ck CauseKind) String() string {
	switch ck {
	case CauseData:
		return "data"
	case CauseTiming:
		return "timing"
	default:
		return "unknown"
	}
}

// ErrorCause is the typed failure carried by a fetch outcome.
type ErrorCause struct {
	Kind    CauseKind
	Message string
	err     error
}

// DataError returns a payload/transport failure cause.
func DataError(message string) ErrorCause {
	return ErrorCause{Kind: CauseData, Message: message}
}

// TimingError returns an elapsed-time failure cause.
func TimingError(message string) ErrorCause {
	return ErrorCause{Kind: CauseTiming, Message: message}
}

// CanceledError returns the cause reported when the user cancels a fetch.
func CanceledError() ErrorCause {
	return ErrorCause{Kind: CauseData, Message: CanceledMessage, err: ErrCanceled}
}

// WrapDataError returns a data cause whose message is err's text.
func WrapDataError(err error) ErrorCause {
	return ErrorCause{Kind: CauseData, Message: err.Error(), err: err}
}

// Error implements the error interface
func (ec ErrorCause) Error() string {
	return ec.Message
}

// Unwrap returns the underlying error, if any
func (ec ErrorCause) Unwrap() error {
	return ec.err
}

// IsCanceled reports whether the cause came from a cancellation request
func (ec ErrorCause) IsCanceled() bool {
	return errors.Is(ec.err, ErrCanceled)
}

// Table is a header row followed by data rows.
type Table [][]string

// Header returns the first row, or nil for an empty table
func (t Table) Header() []string {
	if len(t) == 0 {
		return nil
	}
	return t[0]
}

// Body returns the data rows after the header
func (t Table) Body() [][]string {
	if len(t) < 2 {
		return nil
	}
	return t[1:]
}

// Columns returns the widest row length, used to size grids
func (t Table) Columns() int {
	cols := 0
	for _, row := range t {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}
