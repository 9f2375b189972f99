package model

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// bytesPerKB is the divisor used for every size shown to the user.
const bytesPerKB = 1000

// QueryState holds the latest query fetch as seen by the UI. It is only
// mutated on the UI goroutine while draining the query slot.
type QueryState struct {
	Rows             Table
	DisplayedSizeKB  int
	InterimSizeBytes int
	IsRunning        bool
	Error            string
	RetrySeed        int
	Elapsed          time.Duration
}

// BeginAttempt marks a new attempt as running and bumps the retry seed
func (qs *QueryState) BeginAttempt() {
	qs.RetrySeed++
	qs.Error = ""
	qs.IsRunning = true
}

// CanceledAttempt rolls the retry seed back after a canceled attempt
func (qs *QueryState) CanceledAttempt() {
	if qs.RetrySeed > 1 {
		qs.RetrySeed--
	}
}

// AddBytes accumulates a received chunk length
func (qs *QueryState) AddBytes(n int) {
	qs.InterimSizeBytes += n
}

// SetRows stores a successful preview and clears any stale error
func (qs *QueryState) SetRows(rows Table) {
	qs.Error = ""
	qs.Rows = rows
}

// SetError stores a failure message and clears stale rows
func (qs *QueryState) SetError(err error) {
	qs.Rows = nil
	qs.Error = err.Error()
}

// Repair folds the accumulated byte count into the displayed size (only
// once at least one KB arrived), stops the running indicator and resets
// the interim counter.
func (qs *QueryState) Repair() {
	if qs.InterimSizeBytes >= bytesPerKB {
		qs.DisplayedSizeKB = qs.InterimSizeBytes / bytesPerKB
	}
	qs.IsRunning = false
	qs.InterimSizeBytes = 0
}

// HasRows returns true if a preview is available
func (qs *QueryState) HasRows() bool {
	return qs.Rows != nil
}

// InterimSizeString returns the in-flight size label, or "" before the first chunk
func (qs *QueryState) InterimSizeString() string {
	if qs.InterimSizeBytes <= 0 {
		return ""
	}
	return fmt.Sprintf("Downloaded size: %s KB", humanize.Comma(int64(qs.InterimSizeBytes/bytesPerKB)))
}

// DisplayedSizeString returns the final size label
func (qs *QueryState) DisplayedSizeString() string {
	return fmt.Sprintf("Current file size: %s KB", humanize.Comma(int64(qs.DisplayedSizeKB)))
}

// ElapsedString returns the elapsed label
func (qs *QueryState) ElapsedString() string {
	return fmt.Sprintf("Query Elapsed: %s", qs.Elapsed.Round(time.Millisecond))
}

// RowCountString summarizes the preview for the results header
func (qs *QueryState) RowCountString() string {
	n := len(qs.Rows.Body())
	return fmt.Sprintf("Results: %s %s", humanize.Comma(int64(n)), pluralize(n, "row", "rows"))
}

// AnalysisState holds the latest analysis fetch as seen by the UI.
type AnalysisState struct {
	Plan      string
	IsRunning bool
	Error     string
}

// BeginAttempt marks a new analysis as running
func (as *AnalysisState) BeginAttempt() {
	as.Error = ""
	as.IsRunning = true
}

// SetPlan stores the explain plan and clears any stale error
func (as *AnalysisState) SetPlan(plan string) {
	as.Error = ""
	as.Plan = plan
}

// SetError stores a failure message and clears the stale plan
func (as *AnalysisState) SetError(err error) {
	as.Plan = ""
	as.Error = err.Error()
}

// Repair stops the running indicator
func (as *AnalysisState) Repair() {
	as.IsRunning = false
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
