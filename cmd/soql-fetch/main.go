// Command soql-fetch runs one SoQL query through the studio's fetch pipeline
// without a window. Progress goes to stderr and the preview to stdout;
// Ctrl-C cancels the fetch cooperatively.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/ytget/soql-studio/internal/config"
	"github.com/ytget/soql-studio/internal/export"
	"github.com/ytget/soql-studio/internal/fetch"
	"github.com/ytget/soql-studio/internal/logger"
	"github.com/ytget/soql-studio/internal/studio"
	"github.com/ytget/soql-studio/internal/worker"
)

const pollInterval = 50 * time.Millisecond

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.ConnectionFileName, "connection file")
	domain := flag.String("domain", "", "Socrata domain (overrides config)")
	dataset := flag.String("dataset", "", "dataset ID (overrides config)")
	query := flag.String("query", "", "SoQL query (overrides config)")
	analyze := flag.Bool("analyze", false, "fetch the query analysis instead of data")
	output := flag.String("out", "", "write the preview to this directory instead of stdout")
	format := flag.String("format", string(export.FormatCSV), "export format when -out is set (csv|xlsx)")
	flag.Parse()

	log, err := logger.New(config.LoadLoggerConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	store := config.NewStore(*configPath, log)
	conn := store.Load()
	if *domain != "" {
		conn.Domain = *domain
	}
	if *dataset != "" {
		conn.Dataset = *dataset
	}
	if *query != "" {
		conn.Query = *query
	}
	if conn.Domain == "" || conn.Dataset == "" {
		fmt.Fprintln(os.Stderr, "domain and dataset are required")
		flag.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := worker.New(2, log)
	if err := rt.Start(context.Background()); err != nil {
		log.Error("failed to start runtime", zap.Error(err))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = rt.Shutdown(shutdownCtx)
	}()

	controller := studio.NewController(fetch.NewService(rt, nil, log), store, log)

	if *analyze {
		err = controller.RunAnalysis(conn)
	} else {
		err = controller.RunQuery(conn)
	}
	if err != nil {
		log.Error("failed to start fetch", zap.Error(err))
		return 1
	}
	fmt.Fprintln(os.Stderr, controller.LastURL())

	wait(ctx, controller, *analyze)
	if !*analyze {
		fmt.Fprintln(os.Stderr)
	}

	if *analyze {
		a := controller.AnalysisState()
		if a.Error != "" {
			fmt.Fprintln(os.Stderr, a.Error)
			return 1
		}
		fmt.Println(a.Plan)
		return 0
	}

	q := controller.QueryState()
	if q.Error != "" {
		fmt.Fprintln(os.Stderr, q.Error)
		return 1
	}
	fmt.Fprintf(os.Stderr, "%s, %s, %s\n", q.RowCountString(), q.DisplayedSizeString(), q.ElapsedString())

	if *output != "" {
		path, err := export.Export(q.Rows, *output, conn.Dataset, export.Format(*format))
		if err != nil {
			log.Error("export failed", zap.Error(err))
			return 1
		}
		fmt.Fprintln(os.Stderr, path)
		return 0
	}

	w := csv.NewWriter(os.Stdout)
	if err := w.WriteAll(q.Rows); err != nil {
		log.Error("failed to write preview", zap.Error(err))
		return 1
	}
	return 0
}

// wait drains the controller until the slot is idle. The first interrupt
// cancels the fetch; the attempt still reports its outcome.
func wait(ctx context.Context, controller *studio.Controller, analyze bool) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	active := controller.QueryActive
	cancel := controller.CancelQuery
	if analyze {
		active = controller.AnalysisActive
		cancel = controller.CancelAnalysis
	}

	done := ctx.Done()
	for {
		select {
		case <-done:
			fmt.Fprintln(os.Stderr, "canceling...")
			cancel()
			done = nil
		case <-ticker.C:
		}

		controller.Poll()
		if !active() {
			return
		}
		if !analyze {
			if size := controller.QueryState().InterimSizeBytes; size > 0 {
				fmt.Fprintf(os.Stderr, "\rdownloaded %s", humanize.Bytes(uint64(size)))
			}
		}
	}
}
