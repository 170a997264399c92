package async

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/quotation-tracker/internal/common"
	"github.com/joseph-ayodele/quotation-tracker/internal/quotation"
)

type recordingImporter struct {
	mu     sync.Mutex
	traces map[string]string // supplier -> request id seen
	fail   string
}

func (r *recordingImporter) ImportDocument(ctx context.Context, _, supplierID string, _ []byte) (quotation.ImportOutcome, error) {
	r.mu.Lock()
	r.traces[supplierID] = common.RequestIDFromContext(ctx)
	r.mu.Unlock()
	if supplierID == r.fail {
		return quotation.ImportOutcome{}, common.ErrDecodeFailure
	}
	return quotation.ImportOutcome{Applied: true}, nil
}

func TestParseQueue_ProcessesAllJobs(t *testing.T) {
	imp := &recordingImporter{traces: map[string]string{}, fail: "s3"}
	q := NewParseQueue(imp, nil, WithWorkers(3), WithQueueSize(2), WithProcessTimeout(time.Second))

	const n = 10
	var (
		results []Result
		done    = make(chan struct{})
	)
	go func() {
		defer close(done)
		for r := range q.Results() {
			results = append(results, r)
		}
	}()

	for i := 0; i < n; i++ {
		err := q.Enqueue(context.Background(), Job{
			QuotationID: "q1",
			SupplierID:  fmt.Sprintf("s%d", i),
			TraceID:     fmt.Sprintf("trace-%d", i),
		})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)
	<-done

	require.Len(t, results, n)
	failed := 0
	for _, r := range results {
		assert.False(t, r.Job.SubmittedAt.IsZero())
		if r.Err != nil {
			failed++
			assert.Equal(t, "s3", r.Job.SupplierID)
			assert.True(t, errors.Is(r.Err, common.ErrDecodeFailure))
			continue
		}
		assert.True(t, r.Outcome.Applied)
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, "trace-7", imp.traces["s7"])
}

func TestParseQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewParseQueue(&recordingImporter{traces: map[string]string{}}, nil, WithWorkers(1))
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{QuotationID: "q1", SupplierID: "s1"})
	assert.ErrorIs(t, err, ErrQueueClosed)

	_, open := <-q.Results()
	assert.False(t, open)
}

func TestParseQueue_GeneratesTraceID(t *testing.T) {
	imp := &recordingImporter{traces: map[string]string{}}
	q := NewParseQueue(imp, nil, WithWorkers(1))

	require.NoError(t, q.Enqueue(context.Background(), Job{QuotationID: "q1", SupplierID: "s1"}))
	r := <-q.Results()
	q.Shutdown(context.Background())

	assert.NotEmpty(t, r.Job.TraceID)
	imp.mu.Lock()
	defer imp.mu.Unlock()
	assert.Equal(t, r.Job.TraceID, imp.traces["s1"])
}
