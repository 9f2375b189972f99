package studio

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ytget/soql-studio/internal/config"
	"github.com/ytget/soql-studio/internal/fetch"
	"github.com/ytget/soql-studio/internal/flow"
	"github.com/ytget/soql-studio/internal/model"
	"github.com/ytget/soql-studio/internal/socrata"
)

// Button labels of the run/cancel toggle
const (
	LabelRunQuery = "Run Query"
	LabelCancel   = "Cancel?"
	LabelRetry    = "Retry?"
)

// ErrSlotBusy is returned when a slot already has an attempt in flight
var ErrSlotBusy = errors.New("a fetch is already running in this slot")

// ConnectionSaver persists the connection used for a run
type ConnectionSaver interface {
	Save(conn config.Connection) error
}

// Controller owns the query and analysis slots. Poll and the Run/Cancel
// methods are meant to be called from the UI goroutine; getters are safe
// from anywhere.
type Controller struct {
	fetcher fetch.Fetcher
	saver   ConnectionSaver
	logger  *zap.Logger

	queryFlow    *fetch.DataFlow
	analysisFlow *fetch.AnalysisFlow

	mu       sync.Mutex
	query    model.QueryState
	analysis model.AnalysisState
	label    string
	lastURL  string
}

// NewController creates a controller. saver may be nil.
func NewController(fetcher fetch.Fetcher, saver ConnectionSaver, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		fetcher:      fetcher,
		saver:        saver,
		logger:       logger,
		queryFlow:    flow.New[model.ProgressMessage, model.Table, model.ErrorCause]("query"),
		analysisFlow: flow.New[model.ProgressMessage, string, model.ErrorCause]("analysis"),
		label:        LabelRunQuery,
	}
}

// RunQuery starts fetching the CSV preview for conn
func (c *Controller) RunQuery(conn config.Connection) error {
	if c.queryFlow.IsActive() {
		return ErrSlotBusy
	}
	c.saveConnection(conn)

	url := socrata.BuildQueryURL(conn.Domain, conn.Dataset, conn.Query)

	c.mu.Lock()
	c.lastURL = url
	c.query.BeginAttempt()
	c.label = LabelCancel
	c.mu.Unlock()

	h, err := c.fetcher.StartData(c.queryFlow, request(url, conn))
	if err != nil {
		c.mu.Lock()
		c.query.SetError(err)
		c.query.Repair()
		c.label = LabelRunQuery
		c.mu.Unlock()
		return fmt.Errorf("failed to start query: %w", err)
	}

	c.logger.Info("query started", zap.String("attempt", h.ID()), zap.String("url", url))
	return nil
}

// RunAnalysis starts fetching the query analysis for conn. It does not
// touch the query slot.
func (c *Controller) RunAnalysis(conn config.Connection) error {
	if c.analysisFlow.IsActive() {
		return ErrSlotBusy
	}
	c.saveConnection(conn)

	url := socrata.BuildAnalysisURL(conn.Domain, conn.Dataset, conn.Query)

	c.mu.Lock()
	c.lastURL = url
	c.analysis.BeginAttempt()
	c.mu.Unlock()

	h, err := c.fetcher.StartAnalysis(c.analysisFlow, request(url, conn))
	if err != nil {
		c.mu.Lock()
		c.analysis.SetError(err)
		c.analysis.Repair()
		c.mu.Unlock()
		return fmt.Errorf("failed to start analysis: %w", err)
	}

	c.logger.Info("analysis started", zap.String("attempt", h.ID()), zap.String("url", url))
	return nil
}

// ToggleQuery cancels the running query, or starts a new one when idle.
func (c *Controller) ToggleQuery(conn config.Connection) error {
	if c.queryFlow.IsActive() {
		c.CancelQuery()
		return nil
	}
	return c.RunQuery(conn)
}

// CancelQuery asks the running query to stop
func (c *Controller) CancelQuery() bool {
	ok := c.queryFlow.Cancel()
	if ok {
		c.logger.Info("query cancel requested")
	}
	return ok
}

// CancelAnalysis asks the running analysis to stop
func (c *Controller) CancelAnalysis() bool {
	ok := c.analysisFlow.Cancel()
	if ok {
		c.logger.Info("analysis cancel requested")
	}
	return ok
}

// Poll drains both slots. It never blocks and returns true when the
// visible state changed.
func (c *Controller) Poll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := c.pollQuery()
	if c.pollAnalysis() {
		changed = true
	}
	return changed
}

func (c *Controller) pollQuery() bool {
	changed := false
	finalized := c.queryFlow.Extract(func(m model.ProgressMessage) {
		changed = true
		switch m.Kind {
		case model.ProgressBytes:
			c.query.AddBytes(m.Bytes)
		case model.ProgressElapsed:
			c.query.Elapsed = m.Elapsed
		}
	}).Finalize(func(out flow.Outcome[model.Table, model.ErrorCause]) {
		switch out.Kind {
		case flow.OutcomeSuccess:
			c.query.SetRows(out.Value)
		case flow.OutcomeError:
			if out.Err.Kind == model.CauseTiming {
				c.query.Elapsed = 0
			} else {
				c.query.SetError(out.Err)
			}
		case flow.OutcomePanic:
			c.query.SetError(errors.New(out.Panic))
		}
	})

	if finalized {
		c.resetQuery()
		return true
	}
	return changed
}

// resetQuery runs after every terminal query outcome
func (c *Controller) resetQuery() {
	c.query.Repair()
	if c.queryFlow.IsCanceled() {
		c.query.CanceledAttempt()
		c.label = LabelRetry
	} else {
		c.label = LabelRunQuery
	}
	c.logger.Debug("query finished",
		zap.Int("size_kb", c.query.DisplayedSizeKB),
		zap.Duration("elapsed", c.query.Elapsed),
		zap.Int("rows", len(c.query.Rows.Body())),
		zap.Bool("canceled", c.queryFlow.IsCanceled()),
	)
}

func (c *Controller) pollAnalysis() bool {
	changed := false
	finalized := c.analysisFlow.Extract(func(m model.ProgressMessage) {
		changed = true
	}).Finalize(func(out flow.Outcome[string, model.ErrorCause]) {
		switch out.Kind {
		case flow.OutcomeSuccess:
			c.analysis.SetPlan(out.Value)
		case flow.OutcomeError:
			c.analysis.SetError(out.Err)
		case flow.OutcomePanic:
			c.analysis.SetError(errors.New(out.Panic))
		}
	})

	if finalized {
		c.analysis.Repair()
		return true
	}
	return changed
}

// QueryState returns a copy of the query slot state
func (c *Controller) QueryState() model.QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// AnalysisState returns a copy of the analysis slot state
func (c *Controller) AnalysisState() model.AnalysisState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analysis
}

// ButtonLabel returns the label of the run/cancel toggle
func (c *Controller) ButtonLabel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.label
}

// LastURL returns the most recently built request URL
func (c *Controller) LastURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastURL
}

// QueryActive returns true while a query attempt is in flight
func (c *Controller) QueryActive() bool {
	return c.queryFlow.IsActive()
}

// AnalysisActive returns true while an analysis attempt is in flight
func (c *Controller) AnalysisActive() bool {
	return c.analysisFlow.IsActive()
}

func (c *Controller) saveConnection(conn config.Connection) {
	if c.saver == nil {
		return
	}
	if err := c.saver.Save(conn); err != nil {
		c.logger.Warn("failed to save connection", zap.Error(err))
	}
}

func request(url string, conn config.Connection) model.FetchRequest {
	return model.FetchRequest{
		URL:      url,
		Username: conn.Username,
		Password: conn.Password,
	}
}
