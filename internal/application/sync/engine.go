// Package sync drives one harvesting session against a platform adapter:
// it pages through the order history until the platform runs dry, the page
// ceiling is reached, or a page fails, and returns every unique accepted
// order collected along the way.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/eshaffer321/foodtracker/internal/adapters/providers"
	"github.com/eshaffer321/foodtracker/internal/domain/classifier"
	"github.com/eshaffer321/foodtracker/internal/domain/order"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/metrics"
)

const tracerName = "github.com/eshaffer321/foodtracker/internal/application/sync"

// Engine runs sync sessions for one adapter. It holds no session state, so
// one Engine may run sessions sequentially or concurrently.
type Engine struct {
	adapter    providers.Adapter
	platform   providers.Platform
	classifier *classifier.Classifier
	metrics    *metrics.Registry
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewEngine creates an engine. metrics may be nil.
func NewEngine(adapter providers.Adapter, reg *metrics.Registry, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	platform := adapter.Platform()

	var c *classifier.Classifier
	if platform.Rules != nil {
		c = classifier.New(*platform.Rules)
	}

	return &Engine{
		adapter:    adapter,
		platform:   platform,
		classifier: c,
		metrics:    reg,
		tracer:     otel.Tracer(tracerName),
		logger:     logger.With(slog.String("platform", platform.Name)),
	}
}

// WithTracer replaces the global tracer.
func (e *Engine) WithTracer(tracer trace.Tracer) *Engine {
	e.tracer = tracer
	return e
}

// session is the mutable state of one Run.
type session struct {
	seen   map[string]struct{}
	orders []order.Order
	state  providers.PageState
	pages  int
}

// Run executes one session. The only error returned is an auth failure,
// wrapped around providers.ErrAuthRequired and accompanied by the partial
// result. Any other page failure ends the session in StateFailed with the
// cause on Result.Err.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	maxPages := e.platform.MaxPages
	if opts.MaxPages > 0 {
		maxPages = opts.MaxPages
	}
	pacer := opts.Pacer
	if pacer == nil {
		pacer = DelayPacer{Base: e.platform.Delay, Jitter: e.platform.Jitter}
	}

	s := &session{
		seen:  make(map[string]struct{}, len(opts.KnownIDs)),
		state: e.adapter.InitialState(),
	}
	for _, id := range opts.KnownIDs {
		s.seen[id] = struct{}{}
	}

	result := &Result{
		Platform:  e.platform.Name,
		State:     StateIdle,
		StartedAt: time.Now(),
	}
	e.logger.Info("sync started", "max_pages", maxPages, "known", len(opts.KnownIDs))

	finish := func(state State, err error) (*Result, error) {
		result.State = state
		result.Err = err
		result.Orders = s.orders
		result.Pages = s.pages
		result.FinishedAt = time.Now()
		e.metrics.RecordRun(e.platform.Name, string(state), result.FinishedAt.Sub(result.StartedAt))

		if err != nil {
			e.logger.Warn("sync ended early", "state", state, "pages", s.pages, "orders", len(s.orders), "error", err)
		} else {
			e.logger.Info("sync finished", "pages", s.pages, "orders", len(s.orders), "rejected", result.Rejected)
		}
		e.notify(opts.Notifier, s, maxPages, state == StateDone)

		if errors.Is(err, providers.ErrAuthRequired) {
			return result, err
		}
		return result, nil
	}

	for s.pages < maxPages {
		if err := ctx.Err(); err != nil {
			return finish(StateFailed, err)
		}

		result.State = StateFetching
		page, err := e.fetch(ctx, s)
		if err != nil {
			return finish(StateFailed, err)
		}
		s.pages++

		if len(page.Records) == 0 {
			e.metrics.RecordPage(e.platform.Name, 0, 0)
			return finish(StateDone, nil)
		}

		result.State = StateClassifying
		accepted := classifier.Filter(e.classifier, page.Records)
		rejected := len(page.Records) - len(accepted)
		result.Rejected += rejected
		s.state = page.Next

		if len(accepted) > 0 {
			result.State = StateDeduping
			added := s.collect(accepted)
			e.metrics.RecordPage(e.platform.Name, added, rejected)
			if added == 0 {
				e.logger.Debug("page had no unseen orders", "page", s.pages)
				return finish(StateDone, nil)
			}
		} else {
			e.metrics.RecordPage(e.platform.Name, 0, rejected)
			e.logger.Debug("page fully rejected by classifier", "page", s.pages, "rejected", rejected)
		}

		if !page.More {
			return finish(StateDone, nil)
		}
		if s.pages >= maxPages {
			e.logger.Info("page ceiling reached", "max_pages", maxPages)
			break
		}

		e.notify(opts.Notifier, s, maxPages, false)
		if err := pacer.Wait(ctx); err != nil {
			return finish(StateFailed, err)
		}
	}
	return finish(StateDone, nil)
}

// fetch requests the next page inside a span.
func (e *Engine) fetch(ctx context.Context, s *session) (*providers.Page, error) {
	ctx, span := e.tracer.Start(ctx, "Adapter.FetchPage",
		trace.WithAttributes(
			attribute.String("platform", e.platform.Name),
			attribute.Int("page", s.pages+1),
			attribute.String("cursor", s.state.Cursor),
		),
	)
	defer span.End()

	page, err := e.adapter.FetchPage(ctx, s.state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if page == nil {
		err := fmt.Errorf("%s: adapter returned no page", e.platform.DisplayName)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("records", len(page.Records)))
	span.SetStatus(codes.Ok, "")
	return page, nil
}

// collect appends unseen records and returns how many were new. Duplicates
// inside the batch count as seen after their first occurrence.
func (s *session) collect(records []providers.RawOrder) int {
	added := 0
	for _, r := range records {
		id := r.ID()
		if _, dup := s.seen[id]; dup {
			continue
		}
		s.seen[id] = struct{}{}
		s.orders = append(s.orders, r.Normalize())
		added++
	}
	return added
}

func (e *Engine) notify(n Notifier, s *session, maxPages int, done bool) {
	if n == nil {
		return
	}
	percent := 100
	if !done && maxPages > 0 {
		percent = min(99, s.pages*100/maxPages)
	}
	n.Notify(Progress{
		Platform: e.platform.Name,
		Message:  e.message(s),
		Page:     s.pages,
		Count:    len(s.orders),
		Percent:  percent,
	})
}

// message renders the progress text the way each platform family reports it.
func (e *Engine) message(s *session) string {
	if e.platform.Strategy == providers.Cursor {
		return fmt.Sprintf("Fetched %d orders...", len(s.orders))
	}
	return fmt.Sprintf("Fetched Page %d (%d orders so far)...", s.pages, len(s.orders))
}
