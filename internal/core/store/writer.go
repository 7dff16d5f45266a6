package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"go.uber.org/zap"

	"github.com/phishnix/phishnix/internal/core"
	"github.com/phishnix/phishnix/internal/metrics"
)

// RecordStore is the persistence capability the writer depends on.
type RecordStore interface {
	SaveRecord(ctx context.Context, record *core.VerdictRecord) error
}

// Writer persists verdict records off the request path. Writes are
// fire-and-forget: a failed write is logged and reported to the Sink, but it
// never changes an outcome already delivered to the caller.
type Writer struct {
	Store   RecordStore
	Logger  *logging.Logger
	Timeout time.Duration

	// Sink receives persistence failures for side-channel reporting. Optional.
	Sink func(error)

	wg sync.WaitGroup
}

// WriteAsync schedules a verdict record write. Calls without an owner id are
// dropped: anonymous analyses are never persisted.
func (w *Writer) WriteAsync(ownerID string, verdict *core.AnalysisVerdict, sourceLink string, kind core.RecordKind) {
	if w == nil || w.Store == nil || verdict == nil {
		return
	}
	if strings.TrimSpace(ownerID) == "" {
		return
	}

	record := &core.VerdictRecord{
		OwnerID:    ownerID,
		Kind:       kind,
		SourceLink: sourceLink,
		Verdict:    *verdict,
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		timeout := w.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}

		// Deliberately detached from the request context: the caller's
		// response does not wait on persistence.
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := w.Store.SaveRecord(ctx, record); err != nil {
			metrics.RecordPersistenceFailure()
			if w.Logger != nil {
				w.Logger.Error("Verdict record write failed",
					zap.String("kind", string(kind)),
					zap.Error(err))
			}
			if w.Sink != nil {
				w.Sink(err)
			}
		}
	}()
}

// Wait blocks until all scheduled writes have finished. Used at shutdown so
// in-flight records are not lost.
func (w *Writer) Wait() {
	if w == nil {
		return
	}
	w.wg.Wait()
}
