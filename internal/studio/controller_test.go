package studio

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ytget/soql-studio/internal/config"
	"github.com/ytget/soql-studio/internal/fetch"
	"github.com/ytget/soql-studio/internal/model"
)

// fakeFetcher activates attempts without running anything so tests can
// drive the handles by hand.
type fakeFetcher struct {
	data     *fetch.DataHandle
	analysis *fetch.AnalysisHandle
	requests []model.FetchRequest
	err      error
}

func (f *fakeFetcher) StartData(fl *fetch.DataFlow, req model.FetchRequest) (*fetch.DataHandle, error) {
	if f.err != nil {
		return nil, f.err
	}
	h, err := fl.Handle()
	if err != nil {
		return nil, err
	}
	h.Activate()
	f.data = h
	f.requests = append(f.requests, req)
	return h, nil
}

func (f *fakeFetcher) StartAnalysis(fl *fetch.AnalysisFlow, req model.FetchRequest) (*fetch.AnalysisHandle, error) {
	if f.err != nil {
		return nil, f.err
	}
	h, err := fl.Handle()
	if err != nil {
		return nil, err
	}
	h.Activate()
	f.analysis = h
	f.requests = append(f.requests, req)
	return h, nil
}

type memorySaver struct {
	saved []config.Connection
	err   error
}

func (m *memorySaver) Save(conn config.Connection) error {
	m.saved = append(m.saved, conn)
	return m.err
}

var testConn = config.Connection{
	Username: "alice",
	Password: "secret",
	Domain:   "data.example.gov",
	Dataset:  "abcd-1234",
	Query:    "SELECT *\n\tLIMIT 5",
}

func TestNewController(t *testing.T) {
	c := NewController(&fakeFetcher{}, nil, nil)

	if c.ButtonLabel() != LabelRunQuery {
		t.Errorf("Expected label %q, got %q", LabelRunQuery, c.ButtonLabel())
	}
	if c.QueryActive() || c.AnalysisActive() {
		t.Error("New controller should be idle")
	}
	if c.Poll() {
		t.Error("Poll on idle controller should report no change")
	}
}

func TestRunQuerySuccess(t *testing.T) {
	fetcher := &fakeFetcher{}
	saver := &memorySaver{}
	c := NewController(fetcher, saver, nil)

	if err := c.RunQuery(testConn); err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}

	expectedURL := "https://data.example.gov/resource/abcd-1234.csv?$query=SELECT * LIMIT 5"
	if c.LastURL() != expectedURL {
		t.Errorf("Expected URL %s, got %s", expectedURL, c.LastURL())
	}
	if fetcher.requests[0].URL != expectedURL || fetcher.requests[0].Username != "alice" || fetcher.requests[0].Password != "secret" {
		t.Errorf("Unexpected request %+v", fetcher.requests[0])
	}
	if len(saver.saved) != 1 || saver.saved[0] != testConn {
		t.Errorf("Expected connection to be saved, got %+v", saver.saved)
	}

	state := c.QueryState()
	if !state.IsRunning || state.RetrySeed != 1 {
		t.Errorf("Expected running attempt with seed 1, got %+v", state)
	}
	if c.ButtonLabel() != LabelCancel {
		t.Errorf("Expected label %q, got %q", LabelCancel, c.ButtonLabel())
	}

	h := fetcher.data
	h.Send(model.BytesReceived(1500))
	h.Send(model.BytesReceived(800))
	if !c.Poll() {
		t.Error("Poll should report progress")
	}
	state = c.QueryState()
	if state.InterimSizeBytes != 2300 || state.DisplayedSizeKB != 0 {
		t.Errorf("Expected 2300 interim bytes and no displayed size, got %+v", state)
	}

	table := model.Table{{"a"}, {"1"}}
	h.Send(model.ElapsedTime(1500 * time.Millisecond))
	h.Success(table)
	if !c.Poll() {
		t.Error("Poll should report the outcome")
	}

	state = c.QueryState()
	if state.IsRunning {
		t.Error("Expected attempt to be finished")
	}
	if state.DisplayedSizeKB != 2 || state.InterimSizeBytes != 0 {
		t.Errorf("Expected 2 KB displayed after repair, got %+v", state)
	}
	if state.Elapsed != 1500*time.Millisecond {
		t.Errorf("Expected elapsed 1.5s, got %v", state.Elapsed)
	}
	if len(state.Rows) != 2 || state.Error != "" {
		t.Errorf("Expected rows and no error, got %+v", state)
	}
	if c.ButtonLabel() != LabelRunQuery {
		t.Errorf("Expected label %q, got %q", LabelRunQuery, c.ButtonLabel())
	}
	if c.QueryActive() {
		t.Error("Query slot should be idle after finalize")
	}
}

func TestRunQueryRejectsSecondAttempt(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := NewController(fetcher, nil, nil)

	if err := c.RunQuery(testConn); err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}
	if err := c.RunQuery(testConn); !errors.Is(err, ErrSlotBusy) {
		t.Errorf("Expected ErrSlotBusy, got %v", err)
	}
	if n := len(fetcher.requests); n != 1 {
		t.Errorf("Expected a single request, got %d", n)
	}

	// A finished but undrained attempt still holds the slot
	fetcher.data.Success(model.Table{{"a"}})
	if err := c.RunQuery(testConn); !errors.Is(err, ErrSlotBusy) {
		t.Errorf("Expected ErrSlotBusy before drain, got %v", err)
	}

	c.Poll()
	if err := c.RunQuery(testConn); err != nil {
		t.Errorf("Expected new attempt after drain, got %v", err)
	}
	if seed := c.QueryState().RetrySeed; seed != 2 {
		t.Errorf("Expected seed 2, got %d", seed)
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := NewController(fetcher, nil, nil)

	if err := c.RunQuery(testConn); err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}
	if err := c.RunAnalysis(testConn); err != nil {
		t.Fatalf("RunAnalysis should not be blocked by the query slot: %v", err)
	}
	if err := c.RunAnalysis(testConn); !errors.Is(err, ErrSlotBusy) {
		t.Errorf("Expected ErrSlotBusy for second analysis, got %v", err)
	}

	if !strings.Contains(c.LastURL(), "/api/views/abcd-1234/query_info?analyze=true&query=") {
		t.Errorf("Expected analysis URL, got %s", c.LastURL())
	}

	fetcher.analysis.Success("Scan")
	c.Poll()

	if plan := c.AnalysisState().Plan; plan != "Scan" {
		t.Errorf("Expected plan Scan, got %q", plan)
	}
	if !c.QueryActive() {
		t.Error("Finishing the analysis must not end the query")
	}
	if c.ButtonLabel() != LabelCancel {
		t.Errorf("Analysis must not change the query label, got %q", c.ButtonLabel())
	}
	if !c.QueryState().IsRunning {
		t.Error("Query should still be running")
	}
}

func TestToggleQueryCancels(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := NewController(fetcher, nil, nil)

	if err := c.ToggleQuery(testConn); err != nil {
		t.Fatalf("ToggleQuery failed: %v", err)
	}
	if err := c.ToggleQuery(testConn); err != nil {
		t.Fatalf("ToggleQuery failed: %v", err)
	}
	if len(fetcher.requests) != 1 {
		t.Fatalf("Second toggle should cancel, not start; got %d requests", len(fetcher.requests))
	}

	h := fetcher.data
	if !h.ShouldCancel() {
		t.Fatal("Expected cancellation to reach the handle")
	}
	h.Error(model.CanceledError())
	c.Poll()

	state := c.QueryState()
	if state.Error != model.CanceledMessage {
		t.Errorf("Expected canceled message, got %q", state.Error)
	}
	if c.ButtonLabel() != LabelRetry {
		t.Errorf("Expected label %q, got %q", LabelRetry, c.ButtonLabel())
	}
	if state.RetrySeed != 1 {
		t.Errorf("Seed must not drop below 1, got %d", state.RetrySeed)
	}

	// Retry, then cancel again: seed goes 2 then back to 1
	if err := c.ToggleQuery(testConn); err != nil {
		t.Fatalf("ToggleQuery failed: %v", err)
	}
	if seed := c.QueryState().RetrySeed; seed != 2 {
		t.Errorf("Expected seed 2, got %d", seed)
	}
	c.CancelQuery()
	fetcher.data.Error(model.CanceledError())
	c.Poll()
	if seed := c.QueryState().RetrySeed; seed != 1 {
		t.Errorf("Expected seed 1 after canceled retry, got %d", seed)
	}
}

func TestCancelAfterSuccessKeepsRows(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := NewController(fetcher, nil, nil)

	for i := 0; i < 2; i++ {
		if err := c.RunQuery(testConn); err != nil {
			t.Fatalf("RunQuery failed: %v", err)
		}
		fetcher.data.Success(model.Table{{"a"}, {"1"}})
		if i == 0 {
			c.Poll()
		}
	}

	// The task already reported, so this cancel is too late to count
	if !c.CancelQuery() {
		t.Fatal("Expected cancel to be accepted before the outcome is drained")
	}
	c.Poll()

	state := c.QueryState()
	if !state.HasRows() || state.Error != "" {
		t.Errorf("Expected rows and no error, got rows=%v error=%q", state.Rows, state.Error)
	}
	if c.ButtonLabel() != LabelRunQuery {
		t.Errorf("Expected label %q, got %q", LabelRunQuery, c.ButtonLabel())
	}
	if state.RetrySeed != 2 {
		t.Errorf("Expected seed 2, got %d", state.RetrySeed)
	}
}

func TestQueryErrors(t *testing.T) {
	tests := []struct {
		name     string
		report   func(h *fetch.DataHandle)
		expected string
	}{
		{
			name:     "data error",
			report:   func(h *fetch.DataHandle) { h.Error(model.DataError("Expected CSV; found text/html: oops")) },
			expected: "Expected CSV; found text/html: oops",
		},
		{
			name:     "timing error keeps rows",
			report:   func(h *fetch.DataHandle) { h.Error(model.TimingError("clock")) },
			expected: "",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fetcher := &fakeFetcher{}
			c := NewController(fetcher, nil, nil)

			// Seed a previous successful preview
			_ = c.RunQuery(testConn)
			fetcher.data.Send(model.ElapsedTime(time.Second))
			fetcher.data.Success(model.Table{{"a"}, {"1"}})
			c.Poll()

			_ = c.RunQuery(testConn)
			test.report(fetcher.data)
			c.Poll()

			state := c.QueryState()
			if state.Error != test.expected {
				t.Errorf("Expected error %q, got %q", test.expected, state.Error)
			}
			if test.expected != "" && state.Rows != nil {
				t.Error("An error must clear stale rows")
			}
			if test.expected == "" {
				if state.Elapsed != 0 {
					t.Errorf("Timing error should reset elapsed, got %v", state.Elapsed)
				}
				if state.Rows == nil {
					t.Error("Timing error should keep the previous rows")
				}
			}
			if state.IsRunning {
				t.Error("Attempt should be finished")
			}
		})
	}
}

func TestStartFailure(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("runtime is not running")}
	c := NewController(fetcher, nil, nil)

	if err := c.RunQuery(testConn); err == nil {
		t.Fatal("Expected error from RunQuery")
	}
	state := c.QueryState()
	if state.IsRunning || state.Error == "" {
		t.Errorf("Expected stopped attempt with error, got %+v", state)
	}
	if c.ButtonLabel() != LabelRunQuery {
		t.Errorf("Expected label %q, got %q", LabelRunQuery, c.ButtonLabel())
	}

	if err := c.RunAnalysis(testConn); err == nil {
		t.Fatal("Expected error from RunAnalysis")
	}
	if a := c.AnalysisState(); a.IsRunning || a.Error == "" {
		t.Errorf("Expected stopped analysis with error, got %+v", a)
	}
}

func TestSaveFailureDoesNotBlockRun(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := NewController(fetcher, &memorySaver{err: errors.New("read-only")}, nil)

	if err := c.RunQuery(testConn); err != nil {
		t.Errorf("Save failure must not stop the query, got %v", err)
	}
}

func TestAnalysisCancel(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := NewController(fetcher, nil, nil)

	if c.CancelAnalysis() {
		t.Error("Cancel with nothing running should return false")
	}
	_ = c.RunAnalysis(testConn)
	if !c.CancelAnalysis() {
		t.Error("Expected cancel to be accepted")
	}
	fetcher.analysis.Error(model.CanceledError())
	c.Poll()

	a := c.AnalysisState()
	if a.Error != model.CanceledMessage || a.IsRunning {
		t.Errorf("Unexpected analysis state %+v", a)
	}
	if c.ButtonLabel() != LabelRunQuery {
		t.Errorf("Analysis cancel must not change the query label, got %q", c.ButtonLabel())
	}
}
