package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/quotation-tracker/internal/common"
	"github.com/joseph-ayodele/quotation-tracker/internal/quotation"
)

var ErrQueueClosed = errors.New("parse queue is shutting down")

// Job asks for one supplier document to be imported into a quotation.
type Job struct {
	QuotationID string
	SupplierID  string
	Document    []byte
	Source      string // file name, for logs
	SubmittedAt time.Time
	TraceID     string
}

// Result is the outcome of one Job.
type Result struct {
	Job      Job
	Outcome  quotation.ImportOutcome
	Err      error
	Duration time.Duration
}

// Importer is satisfied by *quotation.Service.
type Importer interface {
	ImportDocument(ctx context.Context, quotationID, supplierID string, document []byte) (quotation.ImportOutcome, error)
}

// ParseQueue imports supplier documents on a fixed pool of workers.
// Every job produces exactly one Result; callers must drain Results, which is
// closed once Shutdown has let the workers finish.
type ParseQueue struct {
	importer Importer
	logger   *slog.Logger
	workers  int
	timeout  time.Duration

	ch      chan Job
	results chan Result
	wg      sync.WaitGroup
	once    sync.Once

	mu     sync.RWMutex
	closed bool
}

type Option func(*ParseQueue)

func WithWorkers(n int) Option {
	return func(q *ParseQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *ParseQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
			q.results = make(chan Result, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *ParseQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewParseQueue(importer Importer, logger *slog.Logger, opts ...Option) *ParseQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ParseQueue{
		importer: importer,
		logger:   logger,
		workers:  4,
		timeout:  2 * time.Minute,
		ch:       make(chan Job, 64),
		results:  make(chan Result, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *ParseQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("worker started", "worker_id", workerID)

				for job := range q.ch {
					q.results <- q.process(workerID, job)
				}

				q.logger.Debug("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
		go func() {
			q.wg.Wait()
			close(q.results)
		}()
	})
}

func (q *ParseQueue) process(workerID int, job Job) Result {
	ctx := common.WithRequestID(context.Background(), job.TraceID)
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	start := time.Now()
	out, err := q.importer.ImportDocument(ctx, job.QuotationID, job.SupplierID, job.Document)
	res := Result{Job: job, Outcome: out, Err: err, Duration: time.Since(start)}

	log := q.logger.With(
		"worker_id", workerID,
		"request_id", job.TraceID,
		"quotation_id", job.QuotationID,
		"supplier_id", job.SupplierID,
		"source", job.Source,
		"duration_ms", res.Duration.Milliseconds(),
	)
	if err != nil {
		log.Error("document import failed", "error", err)
	} else {
		log.Info("document imported", "applied", out.Applied, "matched", out.Result.MatchedCount())
	}
	return res
}

// Enqueue submits a job, blocking while the queue is full.
func (q *ParseQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "supplier_id", job.SupplierID)
		return ErrQueueClosed
	}
	if job.TraceID == "" {
		job.TraceID = uuid.NewString()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	select {
	case q.ch <- job:
		q.logger.Debug("queued document for import", "supplier_id", job.SupplierID, "request_id", job.TraceID)
		return nil
	default:
	}
	q.logger.Warn("queue full, applying backpressure", "supplier_id", job.SupplierID)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Results yields one Result per enqueued job.
func (q *ParseQueue) Results() <-chan Result {
	return q.results
}

// Shutdown stops accepting jobs and waits for queued ones to finish.
func (q *ParseQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
