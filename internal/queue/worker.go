// Package queue runs the scan queue: it claims pending scan jobs one at a
// time, dispatches them to the adapter registry, persists findings, and
// turns idea seeds into idea records.
package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/forge/internal/events"
	"github.com/alfredjeanlab/forge/internal/fault"
	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/alfredjeanlab/forge/internal/scan"
	"github.com/alfredjeanlab/forge/internal/store"
)

// Worker processes the scan queue sequentially: one claimed job at a time,
// oldest first. A poll interval drives the loop; an empty queue simply
// waits for the next tick.
type Worker struct {
	store     store.Store
	registry  *scan.Registry
	publisher events.Publisher
	executor  *Executor
	interval  time.Duration
	retry     fault.RetryConfig
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a worker polling the store at the given interval.
func New(s store.Store, r *scan.Registry, p events.Publisher, interval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		store:     s,
		registry:  r,
		publisher: p,
		executor:  NewExecutor(s, p, logger),
		interval:  interval,
		retry:     fault.DefaultRetryConfig(),
		logger:    logger,
	}
}

// Start begins polling. It drains the queue immediately, then on each tick.
func (w *Worker) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Stop cancels the worker and waits for the current job (if any) to finish.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context) {
	w.Drain(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain processes queued scans until the queue is empty or ctx is canceled.
func (w *Worker) Drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		ok, err := w.ProcessNext(ctx)
		if err != nil {
			w.logger.Error("scan queue processing failed", "err", err)
			return
		}
		if !ok {
			return
		}
	}
}

// ProcessNext claims and runs the oldest pending scan. It returns false
// when the queue is empty.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.store.ClaimNextScan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	w.process(ctx, job)
	return true, nil
}

func (w *Worker) process(ctx context.Context, job *model.ScanJob) {
	// A claimed job is already marked running, and nothing reclaims running
	// jobs, so the terminal status write must land even when the worker is
	// being stopped. Detach the writes from the worker's cancellation.
	writeCtx := context.WithoutCancel(ctx)

	w.logger.Info("scan started", "scan", job.ID, "type", job.Type, "root", job.Root)
	w.recordAndPublish(ctx, events.TopicScanStarted, job.ID, events.ScanStarted{Scan: job})

	adapter, err := w.registry.Resolve(job)
	if err != nil {
		w.fail(writeCtx, job, err)
		return
	}

	// Transient failures (network filesystems, racing checkouts) are
	// retried; validation and not-found errors abort immediately.
	var res *scan.Result
	err = fault.Retry(ctx, w.retry, func() error {
		var scanErr error
		res, scanErr = adapter.Scan(ctx, job.Root, job.Type)
		return scanErr
	})
	if err != nil {
		w.fail(writeCtx, job, err)
		return
	}

	if err := w.store.AddFindings(writeCtx, job.ID, res.Findings); err != nil {
		w.fail(writeCtx, job, err)
		return
	}

	ideas, err := w.executor.Execute(ctx, job, adapter.Framework(), res.Ideas)
	if err != nil {
		// Findings are already persisted; idea generation failing is not
		// worth losing them, so the job still fails with the cause.
		w.fail(writeCtx, job, err)
		return
	}

	done, err := w.store.CompleteScan(writeCtx, job.ID, len(res.Findings), ideas)
	if err != nil {
		w.logger.Error("failed to mark scan completed", "scan", job.ID, "err", err)
		return
	}

	w.logger.Info("scan completed", "scan", done.ID, "findings", done.Findings, "ideas", done.Ideas)
	w.recordAndPublish(writeCtx, events.TopicScanCompleted, done.ID, events.ScanCompleted{Scan: done})
}

func (w *Worker) fail(ctx context.Context, job *model.ScanJob, cause error) {
	w.logger.Error("scan failed", "scan", job.ID, "category", fault.CategoryOf(cause), "err", cause)

	failed, err := w.store.FailScan(ctx, job.ID, cause.Error())
	if err != nil {
		w.logger.Error("failed to mark scan failed", "scan", job.ID, "err", err)
		return
	}
	w.recordAndPublish(ctx, events.TopicScanFailed, failed.ID, events.ScanFailed{Scan: failed, Error: cause.Error()})
}

func (w *Worker) recordAndPublish(ctx context.Context, topic, entityID string, event any) {
	recordAndPublish(ctx, w.store, w.publisher, w.logger, topic, entityID, event)
}

// recordAndPublish persists an event to the store and publishes it to NATS.
// Both operations are best-effort; failures are logged but do not block the
// queue.
func recordAndPublish(ctx context.Context, s store.Store, p events.Publisher, logger *slog.Logger, topic, entityID string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Warn("failed to marshal event", "topic", topic, "entity", entityID, "err", err)
		return
	}
	if err := s.RecordEvent(ctx, &model.Event{
		Topic:    topic,
		EntityID: entityID,
		Payload:  payload,
	}); err != nil {
		logger.Warn("failed to record event", "topic", topic, "entity", entityID, "err", err)
	}
	if err := p.Publish(ctx, topic, event); err != nil {
		logger.Warn("failed to publish event", "topic", topic, "entity", entityID, "err", err)
	}
}
