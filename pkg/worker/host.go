package worker

import (
	"context"
	stderrors "errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lineage/pkg/observability"
	"github.com/matzehuels/lineage/pkg/pipeline"
)

// DefaultDebounce is the submission delay interactive callers use.
const DefaultDebounce = 150 * time.Millisecond

// ErrClosed is returned by a Host after Close.
var ErrClosed = stderrors.New("worker: host closed")

// Option configures a Host.
type Option func(*Host)

// WithDebounce delays dispatch by d; a newer submission within d replaces
// the pending one. Zero dispatches immediately.
func WithDebounce(d time.Duration) Option { return func(h *Host) { h.debounce = d } }

// WithLogger sets the host and worker logger.
func WithLogger(l *log.Logger) Option { return func(h *Host) { h.logger = l } }

// Host submits requests to a background Worker and delivers only the
// response to the latest submission.
type Host struct {
	worker   *Worker
	debounce time.Duration
	logger   *log.Logger

	counter atomic.Int64 // last issued request ID
	latest  atomic.Int64 // request ID whose response is wanted

	mu      sync.Mutex
	timer   *time.Timer
	pending *pipeline.LayoutRequest
	closed  bool

	results chan pipeline.LayoutResponse // single slot
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewHost starts a worker running handle. The worker stops when ctx is
// done or Close is called.
func NewHost(ctx context.Context, handle Handler, opts ...Option) *Host {
	h := &Host{results: make(chan pipeline.LayoutResponse, 1)}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	h.worker = NewWorker(handle, h.logger)
	h.ctx, h.cancel = context.WithCancel(ctx)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		_ = h.worker.Run(h.ctx)
	}()
	go func() {
		defer h.wg.Done()
		h.receive()
	}()
	return h
}

// Submit assigns req the next request ID and schedules it. Any earlier
// request that has not produced a response yet becomes stale.
func (h *Host) Submit(req pipeline.LayoutRequest) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, ErrClosed
	}

	req.RequestID = h.counter.Add(1)
	h.latest.Store(req.RequestID)
	observability.Worker().OnSubmit(h.ctx, req.RequestID)

	if h.debounce <= 0 {
		h.dispatch(req)
		return req.RequestID, nil
	}
	if h.pending != nil {
		h.discard(h.pending.RequestID)
	}
	h.pending = &req
	if h.timer == nil {
		h.timer = time.AfterFunc(h.debounce, h.flush)
	} else {
		h.timer.Reset(h.debounce)
	}
	return req.RequestID, nil
}

// Latest returns the ID of the most recent submission, or 0.
func (h *Host) Latest() int64 { return h.latest.Load() }

// Results returns the single-slot channel of current responses.
func (h *Host) Results() <-chan pipeline.LayoutResponse { return h.results }

// Next blocks until the next current response is available.
func (h *Host) Next(ctx context.Context) (pipeline.LayoutResponse, error) {
	select {
	case resp := <-h.results:
		return resp, nil
	case <-ctx.Done():
		return pipeline.LayoutResponse{}, ctx.Err()
	case <-h.ctx.Done():
		return pipeline.LayoutResponse{}, ErrClosed
	}
}

// Close stops the worker and waits for it to exit. Pending submissions
// are dropped.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	if h.timer != nil {
		h.timer.Stop()
	}
	h.pending = nil
	h.mu.Unlock()

	h.cancel()
	h.wg.Wait()
	return nil
}

// flush dispatches the pending debounced request.
func (h *Host) flush() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.pending == nil {
		return
	}
	req := *h.pending
	h.pending = nil
	h.dispatch(req)
}

// dispatch replaces any request still queued in the worker inbox.
// Callers hold h.mu, so no other sender competes for the slot.
func (h *Host) dispatch(req pipeline.LayoutRequest) {
	select {
	case queued := <-h.worker.in:
		h.discard(queued.RequestID)
	default:
	}
	h.worker.in <- req
	h.logger.Debug("dispatched layout request", "request_id", req.RequestID)
}

// receive applies worker responses, dropping stale ones.
func (h *Host) receive() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case resp := <-h.worker.Responses():
			if resp.RequestID != h.latest.Load() {
				h.discard(resp.RequestID)
				continue
			}
			// Only this goroutine sends, so after the drain the send
			// cannot block.
			select {
			case <-h.results:
			default:
			}
			h.results <- resp
		}
	}
}

func (h *Host) discard(id int64) {
	latest := h.latest.Load()
	observability.Worker().OnDiscard(h.ctx, id, latest)
	h.logger.Debug("discarded stale layout", "request_id", id, "latest", latest)
}
