package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ytget/soql-studio/internal/flow"
	"github.com/ytget/soql-studio/internal/model"
	"github.com/ytget/soql-studio/internal/socrata"
)

const (
	// ChunkSize is the read buffer used while streaming a body
	ChunkSize = 32 * 1024

	// maxErrorBody caps how much of a non-CSV body ends up in an error message
	maxErrorBody = 64 * 1024

	csvContentType = "text/csv"
)

// Service runs fetch tasks on a spawner.
type Service struct {
	client  *http.Client
	spawner flow.Spawner
	logger  *zap.Logger
}

// NewService creates a fetch service. A nil client uses a client without
// timeouts; cancellation is cooperative and driven by the task context.
func NewService(spawner flow.Spawner, client *http.Client, logger *zap.Logger) *Service {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:  client,
		spawner: spawner,
		logger:  logger,
	}
}

// StartData launches a query attempt on f
func (s *Service) StartData(f *DataFlow, req model.FetchRequest) (*DataHandle, error) {
	return flow.Launch(s.spawner, f, func(ctx context.Context, h *DataHandle) {
		s.FetchData(ctx, req, h)
	})
}

// StartAnalysis launches an analysis attempt on f
func (s *Service) StartAnalysis(f *AnalysisFlow, req model.FetchRequest) (*AnalysisHandle, error) {
	return flow.Launch(s.spawner, f, func(ctx context.Context, h *AnalysisHandle) {
		s.FetchAnalysis(ctx, req, h)
	})
}

// FetchData streams a CSV query result and reports exactly one outcome on h.
func (s *Service) FetchData(ctx context.Context, req model.FetchRequest, h *DataHandle) {
	log := s.logger.With(zap.String("attempt", h.ID()), zap.String("url", req.URL))
	log.Info("fetching query data")

	table, cause := s.fetchData(ctx, req, h, log)
	if cause != nil {
		log.Info("query fetch failed", zap.String("cause", cause.Kind.String()), zap.String("error", cause.Message))
		h.Error(*cause)
		return
	}
	log.Info("query fetch finished", zap.Int("rows", len(table.Body())))
	h.Success(table)
}

func (s *Service) fetchData(ctx context.Context, req model.FetchRequest, h *DataHandle, log *zap.Logger) (model.Table, *model.ErrorCause) {
	start := time.Now()

	resp, cause := s.get(ctx, req)
	if cause != nil {
		return nil, cause
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		return nil, causeOf(model.DataError("unable to get content type"))
	}
	if !strings.Contains(contentType, csvContentType) {
		return nil, causeOf(model.DataError(unexpectedContent(contentType, resp.Body)))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, causeOf(model.DataError(fmt.Sprintf("Bad Call: %s", resp.Status)))
	}

	body, cause := stream(resp.Body, h)
	if cause != nil {
		return nil, cause
	}
	log.Debug("body received", zap.Int("bytes", len(body)))

	// time.Since reads the monotonic clock, so elapsed cannot go negative
	// and no TimingError is produced here.
	h.Send(model.ElapsedTime(time.Since(start)))

	if !utf8.Valid(body) {
		return nil, causeOf(model.DataError("Invalid UTF-8 sequence in response body"))
	}

	return ParsePreview(body, model.PreviewRowLimit, func(line int, err error) {
		log.Warn("skipping malformed csv row", zap.Int("line", line), zap.Error(err))
	}), nil
}

// FetchAnalysis fetches the analysis of a query and reports exactly one outcome on h.
func (s *Service) FetchAnalysis(ctx context.Context, req model.FetchRequest, h *AnalysisHandle) {
	log := s.logger.With(zap.String("attempt", h.ID()), zap.String("url", req.URL))
	log.Info("fetching query analysis")

	plan, cause := s.fetchAnalysis(ctx, req, h)
	if cause != nil {
		log.Info("analysis fetch failed", zap.String("error", cause.Message))
		h.Error(*cause)
		return
	}
	log.Info("analysis fetch finished", zap.Int("plan_length", len(plan)))
	h.Success(plan)
}

func (s *Service) fetchAnalysis(ctx context.Context, req model.FetchRequest, h *AnalysisHandle) (string, *model.ErrorCause) {
	start := time.Now()

	resp, cause := s.get(ctx, req)
	if cause != nil {
		return "", cause
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", causeOf(model.DataError(fmt.Sprintf("Bad Call: %s", resp.Status)))
	}

	body, cause := stream(resp.Body, h)
	if cause != nil {
		return "", cause
	}
	h.Send(model.ElapsedTime(time.Since(start)))

	plan, err := socrata.ParseExplainPlan(body)
	if err != nil {
		return "", causeOf(model.WrapDataError(err))
	}
	return plan, nil
}

// get issues the authenticated request
func (s *Service) get(ctx context.Context, req model.FetchRequest) (*http.Response, *model.ErrorCause) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, causeOf(model.WrapDataError(err))
	}
	httpReq.SetBasicAuth(req.Username, req.Password)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, causeOf(model.WrapDataError(err))
	}
	return resp, nil
}

// stream reads body in chunks. The cancellation flag is checked after every
// chunk and once more after the end of the stream; a canceled attempt
// discards everything read so far.
func stream(body io.Reader, sink progressSink) ([]byte, *model.ErrorCause) {
	var data []byte
	buf := make([]byte, ChunkSize)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			if sink.ShouldCancel() {
				return nil, causeOf(model.CanceledError())
			}
			data = append(data, buf[:n]...)
			sink.Send(model.BytesReceived(n))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, causeOf(model.WrapDataError(err))
		}
	}

	if sink.ShouldCancel() {
		return nil, causeOf(model.CanceledError())
	}
	return data, nil
}

// unexpectedContent builds the message for a non-CSV response
func unexpectedContent(contentType string, body io.Reader) string {
	text, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return fmt.Sprintf("Expected CSV; found %s: %v", contentType, err)
	}
	return fmt.Sprintf("Expected CSV; found %s: %s", contentType, strings.TrimSpace(string(text)))
}

func causeOf(c model.ErrorCause) *model.ErrorCause {
	return &c
}
