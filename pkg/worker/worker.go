// Package worker runs layout computations off the caller's goroutine.
//
// A [Worker] handles one message at a time: a request goes in, a response
// comes out, and computations never overlap. A [Host] sits in front of it
// and implements latest-wins delivery: every submission gets a larger
// request ID, and a response is only delivered when its ID matches the
// latest submission. Superseded responses are dropped, and so are queued
// requests the worker has not started yet. In-flight computations are not
// interrupted; their results are simply discarded.
//
// The host can debounce submissions so rapid setting changes dispatch only
// the last one:
//
//	h := worker.NewHost(ctx, runner.HandleLayout, worker.WithDebounce(worker.DefaultDebounce))
//	defer h.Close()
//	h.Submit(req)
//	resp, err := h.Next(ctx)
package worker

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/layout"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

// Handler computes the response for one layout request. It must report
// failures inside the response; [pipeline.Runner.HandleLayout] qualifies.
type Handler func(ctx context.Context, req pipeline.LayoutRequest) pipeline.LayoutResponse

// Worker processes layout requests sequentially.
type Worker struct {
	handle Handler
	in     chan pipeline.LayoutRequest
	out    chan pipeline.LayoutResponse
	logger *log.Logger
}

// NewWorker creates a worker. Its inbox holds a single pending request.
func NewWorker(handle Handler, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Worker{
		handle: handle,
		in:     make(chan pipeline.LayoutRequest, 1),
		out:    make(chan pipeline.LayoutResponse),
		logger: logger,
	}
}

// Responses returns the channel responses are sent on.
func (w *Worker) Responses() <-chan pipeline.LayoutResponse { return w.out }

// Run handles requests until ctx is done. It returns ctx.Err().
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-w.in:
			resp := w.safeHandle(ctx, req)
			select {
			case w.out <- resp:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// safeHandle keeps the loop alive when a handler panics.
func (w *Worker) safeHandle(ctx context.Context, req pipeline.LayoutRequest) (resp pipeline.LayoutResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			w.logger.Error("layout handler panicked", "request_id", req.RequestID, "panic", rec)
			resp = pipeline.NewLayoutResponse(req.RequestID, layout.NewResult(),
				errors.New(errors.ErrCodeInternal, "layout worker crashed: %v", rec))
		}
	}()
	w.logger.Debug("handling layout request", "request_id", req.RequestID)
	return w.handle(ctx, req)
}
