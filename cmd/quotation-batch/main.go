package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/quotation-tracker/internal/common"
	"github.com/joseph-ayodele/quotation-tracker/internal/core/async"
	"github.com/joseph-ayodele/quotation-tracker/internal/core/extract"
	"github.com/joseph-ayodele/quotation-tracker/internal/core/match"
	"github.com/joseph-ayodele/quotation-tracker/internal/core/ocr"
	"github.com/joseph-ayodele/quotation-tracker/internal/entity"
	"github.com/joseph-ayodele/quotation-tracker/internal/export"
	"github.com/joseph-ayodele/quotation-tracker/internal/ingest"
	"github.com/joseph-ayodele/quotation-tracker/internal/quotation"
	repo "github.com/joseph-ayodele/quotation-tracker/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type tally struct {
	imported, unchanged, failures int
}

func main() {
	var (
		inmem   = flag.Bool("inmem", false, "use in-memory SQLite database")
		reqPath = flag.String("request", "", "purchase-order request JSON (required)")
		dir     = flag.String("dir", "", "directory of supplier quote PDFs named after supplier ids (required)")
		out     = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		watch   = flag.Bool("watch", false, "keep watching -dir for new quotes until interrupted")
	)
	flag.Parse()

	if *reqPath == "" || *dir == "" {
		printError("Error: --request and --dir are required\n")
		os.Exit(2)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(*dir), "comparativo.xlsx")
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	reqBytes, err := os.ReadFile(*reqPath)
	if err != nil {
		printError("Error: reading %s: %v\n", *reqPath, err)
		os.Exit(1)
	}
	req, err := quotation.DecodeRequest(reqBytes)
	if err != nil {
		printError("Error: %s\n", common.UserMessage(err))
		os.Exit(common.ExitCode(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Init(ctx, cfg.Database, *inmem, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext: cfg.Decoder.Pdftotext,
		MaxPages:  cfg.Decoder.MaxPages,
		TempDir:   cfg.Decoder.TempDir,
	}, logger)
	matcher := match.NewMatcher(extract.NewPDFAdapter(extractor, logger), logger)
	service := quotation.NewService(repo.NewQuotationRepository(db, logger), matcher, logger)

	q, err := service.Create(ctx, req)
	if err != nil {
		logger.Error("failed to create quotation", "error", err)
		os.Exit(common.ExitCode(err))
	}
	supplierIDs := make([]string, 0, len(req.Suppliers))
	for _, s := range req.Suppliers {
		supplierIDs = append(supplierIDs, s.ID)
	}

	queue := async.NewParseQueue(service, logger,
		async.WithWorkers(cfg.Queue.Workers),
		async.WithQueueSize(cfg.Queue.Size),
		async.WithProcessTimeout(cfg.Queue.Timeout),
	)
	var t tally
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range queue.Results() {
			t.record(r, logger)
		}
	}()

	docs, results, stats, err := ingest.ScanDirectory(ctx, *dir, supplierIDs, true)
	if err != nil {
		logger.Error("failed to scan directory", "error", err)
		os.Exit(1)
	}
	for _, r := range results {
		if r.Err != "" {
			logger.Warn("skipping file", "path", r.Path, "reason", r.Err)
		}
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"unmatched", stats.Unmatched,
		"failed", stats.Failed)

	for _, d := range docs {
		enqueue(ctx, queue, q.ID, d, logger)
	}

	if *watch {
		watchDirectory(ctx, *dir, supplierIDs, queue, q.ID, logger)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.Timeout+10*time.Second)
	queue.Shutdown(shutdownCtx)
	cancel()
	<-collected

	final, err := service.Get(context.Background(), q.ID)
	if err != nil {
		logger.Error("failed to load quotation", "error", err)
		os.Exit(1)
	}

	logger.Info("exporting to XLSX", "output", *out)
	xlsxBytes, err := export.NewService(logger).ExportComparisonXLSX(final)
	if err != nil {
		logger.Error("failed to export comparison", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	printSummary(final, t, *out)
}

func enqueue(ctx context.Context, queue *async.ParseQueue, quotationID string, d ingest.Document, logger *slog.Logger) {
	err := queue.Enqueue(ctx, async.Job{
		QuotationID: quotationID,
		SupplierID:  d.SupplierID,
		Document:    d.Data,
		Source:      filepath.Base(d.Path),
	})
	if err != nil {
		logger.Error("failed to enqueue document", "path", d.Path, "error", err)
	}
}

func watchDirectory(ctx context.Context, dir string, supplierIDs []string, queue *async.ParseQueue, quotationID string, logger *slog.Logger) {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{dir},
		Debounce: 500 * time.Millisecond,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to start watcher", "error", err)
		return
	}
	logger.Info("watching for new quotes, interrupt to finish", "dir", dir)

	for {
		select {
		case path, ok := <-events:
			if !ok {
				return
			}
			supplierID, ok := ingest.SupplierFor(path, supplierIDs)
			if !ok {
				logger.Warn("skipping file", "path", path, "reason", "no supplier matches file name")
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("skipping file", "path", path, "error", err)
				continue
			}
			enqueue(ctx, queue, quotationID, ingest.Document{Path: path, SupplierID: supplierID, Data: data}, logger)
		case err, ok := <-errs:
			if ok {
				logger.Warn("watcher error", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (t *tally) record(r async.Result, logger *slog.Logger) {
	switch {
	case r.Err != nil:
		t.failures++
		fmt.Printf("- %s: %s\n", r.Job.Source, common.UserMessage(r.Err))
	case !r.Outcome.Result.TextExtracted:
		t.unchanged++
		fmt.Printf("- %s: %s\n", r.Job.Source, common.MsgNoExtractableText)
	case r.Outcome.Applied:
		t.imported++
	default:
		t.unchanged++
		logger.Debug("nothing recognised", "source", r.Job.Source)
	}
}

func printSummary(q *entity.Quotation, t tally, out string) {
	sum := quotation.Summarize(q)
	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Quotation: %s (%s)\n", q.ID, sum.Status)
	fmt.Printf("- Documents imported: %d\n", t.imported)
	fmt.Printf("- Documents unchanged: %d\n", t.unchanged)
	fmt.Printf("- Failures: %d\n", t.failures)
	if sum.Winner != nil {
		name := sum.Winner.SupplierName
		if name == "" {
			name = sum.Winner.SupplierID
		}
		fmt.Printf("- Winner: %s, R$ %s\n", name, match.FormatBRL(sum.Winner.Total))
	}
	fmt.Printf("- Output: %s\n", out)
}
