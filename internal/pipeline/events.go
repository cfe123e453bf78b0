package pipeline

import (
	"sync"

	"subburn/internal/domain"
)

// ProgressEvent reports one stage update. Within a stage fractions are
// non-decreasing, and a completed stage emits fraction 1.0 before the
// next stage's first event.
type ProgressEvent struct {
	JobID    string       `json:"jobId"`
	Stage    domain.Stage `json:"stage"`
	Fraction float64      `json:"fraction"`
	Message  string       `json:"message,omitempty"`
}

// TerminalEvent reports the final job state: status plus outputs or the
// classified error.
type TerminalEvent struct {
	Job domain.Job `json:"job"`
}

// Observer consumes pipeline events. Callbacks arrive from a dispatch
// goroutine, never from inside the worker's blocking calls, so a slow
// observer cannot stall the pipeline.
type Observer interface {
	OnProgress(event ProgressEvent)
	OnFinished(event TerminalEvent)
}

// dispatchBuffer bounds queued progress events; excess updates are
// dropped rather than blocking the worker.
const dispatchBuffer = 256

// dispatchItem carries either a progress or a terminal event.
type dispatchItem struct {
	progress *ProgressEvent
	terminal *TerminalEvent
}

// dispatcher decouples event delivery from the worker goroutine.
type dispatcher struct {
	observer Observer
	items    chan dispatchItem
	wg       sync.WaitGroup
}

// newDispatcher starts the delivery goroutine for one job run.
func newDispatcher(observer Observer) *dispatcher {
	d := &dispatcher{
		observer: observer,
		items:    make(chan dispatchItem, dispatchBuffer),
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for item := range d.items {
			if d.observer == nil {
				continue
			}
			if item.progress != nil {
				d.observer.OnProgress(*item.progress)
			}
			if item.terminal != nil {
				d.observer.OnFinished(*item.terminal)
			}
		}
	}()
	return d
}

// progress queues a progress event, dropping it if the buffer is full.
func (d *dispatcher) progress(event ProgressEvent) {
	select {
	case d.items <- dispatchItem{progress: &event}:
	default:
	}
}

// finish queues the terminal event. Terminal events are never dropped.
func (d *dispatcher) finish(event TerminalEvent) {
	d.items <- dispatchItem{terminal: &event}
}

// close flushes queued events and stops the delivery goroutine.
func (d *dispatcher) close() {
	close(d.items)
	d.wg.Wait()
}
