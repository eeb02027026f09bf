package moderation

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Store is the durable-store surface the worker needs: a paged fetch per
// queue and verdict application (spec.md §4.G "Verdict application").
type Store interface {
	FetchPage(ctx context.Context, queue QueueKind, pageSize int) ([]Item, error)
	ApplyVerdict(ctx context.Context, item Item, verdict Verdict) error
}

// Escalator alerts human moderators about an escalated item. Implemented
// by internal/notify/slack.Service; optional — a nil Escalator is simply
// never called.
type Escalator interface {
	NotifyModerationEscalated(ctx context.Context, itemID, contentType, reason string)
}

// Worker drains one queue, fanning each page out to bounded concurrent
// handlers (spec.md §4.G "Worker loop").
type Worker struct {
	store       Store
	queue       QueueKind
	cfg         Config
	pageSize    int
	concurrency int
	logger      *slog.Logger
	escalator   Escalator
}

// SetEscalator wires a human-alerting sink for escalated verdicts. Safe to
// leave unset; escalation then only shows up in the durable store's queue.
func (w *Worker) SetEscalator(e Escalator) {
	w.escalator = e
}

// NewWorker builds a Worker for queue. pageSize and concurrency must both
// be positive.
func NewWorker(store Store, queue QueueKind, cfg Config, pageSize, concurrency int, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		store:       store,
		queue:       queue,
		cfg:         cfg,
		pageSize:    pageSize,
		concurrency: concurrency,
		logger:      logger,
	}
}

// RunOnce fetches and fully processes one page, returning the number of
// items processed. Zero means the queue was empty (spec.md "If empty,
// yields" — the caller decides how long to wait before calling again).
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	page, err := w.store.FetchPage(ctx, w.queue, w.pageSize)
	if err != nil {
		return 0, err
	}
	if len(page) == 0 {
		return 0, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, item := range page {
		item := item
		g.Go(func() error {
			w.handleOne(ctx, item)
			return nil // one item's error never aborts the page
		})
	}
	_ = g.Wait()

	return len(page), nil
}

func (w *Worker) handleOne(ctx context.Context, item Item) {
	verdict := ComputeVerdict(ctx, item, w.cfg)
	if err := w.store.ApplyVerdict(ctx, item, verdict); err != nil {
		// Races with the user changing the content are tolerated: the
		// store rejects the update, and the worker just logs it (spec.md
		// §4.G "Verdict application").
		w.logger.Warn("moderation: apply verdict failed", "item", item.ID, "content_type", item.ContentType, "error", err)
		return
	}
	if verdict.Action == VerdictEscalate && w.escalator != nil {
		w.escalator.NotifyModerationEscalated(ctx, item.ID.String(), item.ContentType.String(), verdict.RejectionReason)
	}
}

// Run polls RunOnce in a loop until ctx is cancelled, calling idle between
// empty pages.
func (w *Worker) Run(ctx context.Context, idle func(ctx context.Context) error) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.Error("moderation: fetch page failed", "queue", w.queue, "error", err)
		}
		if n == 0 {
			if err := idle(ctx); err != nil {
				return err
			}
		}
	}
}
