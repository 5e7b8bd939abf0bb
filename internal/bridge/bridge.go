// Package bridge drives a single long-lived processing worker through a
// request/response message protocol with per-operation progress reporting
// and advisory cancellation.
//
// The worker is an isolated goroutine that shares no mutable state with its
// callers: requests and responses cross the boundary as messages carrying
// independently owned buffers. For one dispatched operation, zero or more
// progress events are delivered strictly before exactly one terminal event,
// and nothing is delivered after it.
package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"pdf-workbench/internal/logging"
	"pdf-workbench/internal/metrics"
	"pdf-workbench/internal/processor"
)

// Operation types carried by the wire protocol.
const (
	OpMerge   = "MERGE_PDFS"
	OpExtract = "EXTRACT_PAGES"
)

var (
	// ErrBusy is returned by Dispatch while another operation is in flight.
	// The bridge does not multiplex: at most one operation per instance.
	ErrBusy = errors.New("bridge: an operation is already in flight")

	// ErrClosed is returned by Dispatch after Close.
	ErrClosed = errors.New("bridge: closed")

	// ErrCancelled is the terminal outcome of a cancelled operation.
	ErrCancelled = errors.New("bridge: operation cancelled")
)

// WorkerError carries a failure message reported by the worker.
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string { return e.Message }

// Request is an operation posted to the worker.
type Request struct {
	Type        string
	Documents   []processor.NamedDocument // OpMerge
	Data        []byte                    // OpExtract
	PageIndexes []int                     // OpExtract
}

// Outcome is the terminal result of an operation. Exactly one of Merge,
// Data or Err is meaningful, depending on operation type and success.
type Outcome struct {
	Merge *processor.MergeResult
	Data  []byte
	Err   error
}

// response is the worker-side message type.
type response struct {
	kind     responseKind
	progress int
	merge    *processor.MergeResult
	data     []byte
	errMsg   string
}

type responseKind int

const (
	respProgress responseKind = iota
	respMergeComplete
	respExtractComplete
	respError
)

// Operation is the caller's handle on a dispatched request.
type Operation struct {
	progress chan int
	done     chan Outcome
	cancel   chan struct{}
	once     sync.Once
	opType   string
	started  time.Time
}

// Progress returns a stream of 0-100 percent values. The stream is closed
// before the terminal outcome is delivered. Values are clamped monotone
// non-decreasing; slow consumers may observe only the latest values.
func (o *Operation) Progress() <-chan int { return o.progress }

// Done yields the single terminal outcome of the operation.
func (o *Operation) Done() <-chan Outcome { return o.done }

// Cancel detaches local result delivery. It is advisory only: the worker is
// not preempted and keeps running its current operation to completion. The
// handle observes ErrCancelled as its terminal outcome.
func (o *Operation) Cancel() {
	o.once.Do(func() { close(o.cancel) })
}

type workItem struct {
	req  Request
	resp chan response
}

// Processor is the worker-side implementation of the operations.
type Processor interface {
	Merge(ctx context.Context, docs []processor.NamedDocument, report func(percent int)) (*processor.MergeResult, error)
	ExtractPages(ctx context.Context, data []byte, pageIndexes []int, report func(percent int)) ([]byte, error)
}

// Bridge owns one worker goroutine for its lifetime.
type Bridge struct {
	requests chan workItem
	wg       sync.WaitGroup

	mu       sync.Mutex
	inflight *Operation
	closed   bool
}

// New starts a fresh worker backed by the given processor.
func New(proc Processor) *Bridge {
	b := &Bridge{requests: make(chan workItem)}
	b.wg.Add(1)
	go b.worker(proc)
	return b
}

// Dispatch posts an operation to the worker and returns a handle for
// consuming progress and the terminal outcome. A second dispatch while one
// is pending fails with ErrBusy.
func (b *Bridge) Dispatch(req Request) (*Operation, error) {
	op := &Operation{
		progress: make(chan int, 16),
		done:     make(chan Outcome, 1),
		cancel:   make(chan struct{}),
		opType:   req.Type,
		started:  time.Now(),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	if b.inflight != nil {
		b.mu.Unlock()
		return nil, ErrBusy
	}
	b.inflight = op

	// Buffers crossing the worker boundary are independent copies; the
	// caller may reuse its slices immediately after Dispatch returns.
	item := workItem{req: copyRequest(req), resp: make(chan response)}
	b.requests <- item
	b.mu.Unlock()

	metrics.OperationsDispatched.WithLabelValues(opLabel(req.Type)).Inc()
	go b.listen(op, item.resp)
	return op, nil
}

// Close shuts the worker down and waits for it to exit. Any in-flight
// operation still runs to completion first; its handle is serviced normally.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.requests)
	b.mu.Unlock()

	b.wg.Wait()
}

// worker is the isolated execution context. It communicates exclusively via
// the request and response channels.
func (b *Bridge) worker(proc Processor) {
	defer b.wg.Done()

	for item := range b.requests {
		resp := item.resp
		report := func(pct int) {
			resp <- response{kind: respProgress, progress: pct}
		}

		switch item.req.Type {
		case OpMerge:
			result, err := proc.Merge(context.Background(), item.req.Documents, report)
			if err != nil {
				resp <- response{kind: respError, errMsg: err.Error()}
			} else {
				resp <- response{kind: respMergeComplete, merge: result}
			}
		case OpExtract:
			data, err := proc.ExtractPages(context.Background(), item.req.Data, item.req.PageIndexes, report)
			if err != nil {
				resp <- response{kind: respError, errMsg: err.Error()}
			} else {
				resp <- response{kind: respExtractComplete, data: data}
			}
		default:
			resp <- response{kind: respError, errMsg: "unknown operation type: " + item.req.Type}
		}
		close(resp)
	}
}

// listen forwards worker responses to the operation handle. After the
// handle cancels or a terminal response arrives it keeps draining the
// response channel so the worker never blocks, but delivers nothing more.
func (b *Bridge) listen(op *Operation, resp chan response) {
	label := opLabel(op.opType)
	maxPct := 0
	detached := false

	finish := func(out Outcome, status string) {
		close(op.progress)
		op.done <- out
		detached = true
		metrics.OperationsCompleted.WithLabelValues(label, status).Inc()
		metrics.OperationDuration.WithLabelValues(label).Observe(time.Since(op.started).Seconds())
	}

	cancelCh := op.cancel
	for {
		select {
		case <-cancelCh:
			cancelCh = nil // a closed channel would spin this select
			if !detached {
				finish(Outcome{Err: ErrCancelled}, "cancelled")
			}
			continue
		case r, ok := <-resp:
			if !ok {
				// Worker finished without a terminal message only if it
				// was shut down mid-protocol; treat the handle as
				// cancelled so it never hangs.
				if !detached {
					finish(Outcome{Err: ErrCancelled}, "cancelled")
				}
				b.mu.Lock()
				b.inflight = nil
				b.mu.Unlock()
				return
			}
			if detached {
				continue
			}

			switch r.kind {
			case respProgress:
				if r.progress < maxPct {
					logging.Warn("bridge: progress went backwards (%d after %d), clamping", r.progress, maxPct)
				} else {
					maxPct = r.progress
				}
				metrics.OperationProgress.Set(float64(maxPct))
				select {
				case op.progress <- maxPct:
				default:
					// Slow consumer; drop rather than stall the worker.
				}
			case respMergeComplete:
				finish(Outcome{Merge: r.merge}, "success")
			case respExtractComplete:
				finish(Outcome{Data: r.data}, "success")
			case respError:
				finish(Outcome{Err: &WorkerError{Message: r.errMsg}}, "error")
			}
		}
	}
}

// copyRequest deep-copies every byte buffer in the request.
func copyRequest(req Request) Request {
	out := Request{Type: req.Type}
	if req.Documents != nil {
		out.Documents = make([]processor.NamedDocument, len(req.Documents))
		for i, doc := range req.Documents {
			out.Documents[i] = processor.NamedDocument{
				Name: doc.Name,
				Data: append([]byte(nil), doc.Data...),
			}
		}
	}
	if req.Data != nil {
		out.Data = append([]byte(nil), req.Data...)
	}
	if req.PageIndexes != nil {
		out.PageIndexes = append([]int(nil), req.PageIndexes...)
	}
	return out
}

func opLabel(opType string) string {
	switch opType {
	case OpMerge:
		return "merge"
	case OpExtract:
		return "extract"
	default:
		return "unknown"
	}
}
