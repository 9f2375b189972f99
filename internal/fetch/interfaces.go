package fetch

import (
	"github.com/ytget/soql-studio/internal/flow"
	"github.com/ytget/soql-studio/internal/model"
)

// DataFlow carries the CSV preview of a query.
type DataFlow = flow.Flow[model.ProgressMessage, model.Table, model.ErrorCause]

// DataHandle is the producer side of a DataFlow attempt.
type DataHandle = flow.Handle[model.ProgressMessage, model.Table, model.ErrorCause]

// AnalysisFlow carries the explain plan of a query.
type AnalysisFlow = flow.Flow[model.ProgressMessage, string, model.ErrorCause]

// AnalysisHandle is the producer side of an AnalysisFlow attempt.
type AnalysisHandle = flow.Handle[model.ProgressMessage, string, model.ErrorCause]

// Fetcher starts fetch attempts in the background.
type Fetcher interface {
	// StartData begins streaming a CSV query result into f
	StartData(f *DataFlow, req model.FetchRequest) (*DataHandle, error)

	// StartAnalysis begins fetching the query analysis into f
	StartAnalysis(f *AnalysisFlow, req model.FetchRequest) (*AnalysisHandle, error)
}

// progressSink is what the streaming loop needs from either handle type.
type progressSink interface {
	Send(m model.ProgressMessage) bool
	ShouldCancel() bool
}

var _ Fetcher = (*Service)(nil)
