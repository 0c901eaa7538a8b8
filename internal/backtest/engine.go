package backtest

import (
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/JP-Fernando/trading-tool/internal/diag"
	"github.com/JP-Fernando/trading-tool/internal/event"
	"github.com/JP-Fernando/trading-tool/internal/metrics"
)

// Engine owns an event queue and an execution engine and replays queued
// events in chronological order. Run is single-threaded and uses no wall
// clock, so identical input sequences produce bit-identical fills.
type Engine struct {
	queue *Queue
	exec  *ExecutionEngine

	runID     string
	errs      []error
	processed int
}

// NewEngine wires a queue to an execution engine.
func NewEngine(queue *Queue, exec *ExecutionEngine) *Engine {
	id, _ := uuid.NewV4()
	return &Engine{
		queue: queue,
		exec:  exec,
		runID: id.String(),
	}
}

// PushEvent enqueues an event for the next Run.
func (e *Engine) PushEvent(ev event.Event) {
	e.queue.Push(ev)
}

// Run drains the queue until empty, dispatching each event. Per-event
// failures (invalid order, missing market data) are journaled and skipped;
// only unrecoverable queue errors propagate.
func (e *Engine) Run() error {
	diag.Logf(diag.LevelInfo, "backtest run started: run_id=%s queued=%d", e.runID, e.queue.Len())

	for !e.queue.Empty() {
		ev, err := e.queue.Pop()
		if err != nil {
			if err == ErrEmptyQueue {
				break
			}
			return fmt.Errorf("backtest run %s: %w", e.runID, err)
		}
		e.dispatch(ev)
		e.processed++
	}

	diag.Logf(diag.LevelInfo, "backtest run finished: run_id=%s processed=%d errors=%d",
		e.runID, e.processed, len(e.errs))
	return nil
}

func (e *Engine) dispatch(ev event.Event) {
	switch t := ev.(type) {
	case event.Tick:
		e.exec.OnTick(t)
	case *event.Tick:
		// Pooled ticks are owned by the engine once pushed.
		e.exec.OnTick(*t)
		event.ReleaseTick(t)
	case event.Order:
		fill, err := e.exec.OnOrder(t)
		if err != nil {
			e.errs = append(e.errs, err)
			metrics.OrdersRejected.Inc()
			diag.Logf(diag.LevelError, "order rejected: %v", err)
			return
		}
		metrics.FillsTotal.WithLabelValues(fill.Symbol, fill.Side.String()).Inc()
	case event.Fill:
		// Accepted for parity with replayed event streams; fills carry no
		// further processing here.
	default:
		diag.Logf(diag.LevelWarning, "unknown event kind: %s", ev.Kind())
	}
}

// Errors returns the per-event error journal for the run so far.
func (e *Engine) Errors() []error {
	out := make([]error, len(e.errs))
	copy(out, e.errs)
	return out
}

// Processed returns the number of events dispatched so far.
func (e *Engine) Processed() int {
	return e.processed
}

// RunID identifies this engine instance in diagnostics.
func (e *Engine) RunID() string {
	return e.runID
}
