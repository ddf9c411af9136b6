package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/iiroan/formwatch/internal/avail"
	"github.com/iiroan/formwatch/internal/metrics"
	"github.com/iiroan/formwatch/internal/validate"
)

// DefaultDebounce is the quiet period before a value is validated.
const DefaultDebounce = 800 * time.Millisecond

// stage is one field's pipeline. All methods run on the form goroutine.
type stage interface {
	edit(text string)
	fire(seq uint64)
	resolve(gen uint64, res validate.Result[string], started time.Time)
	snapshot() FieldSnapshot
	shutdown()
}

// env is what a stage needs from its form.
type env struct {
	clock   Clock
	push    func(event) bool
	publish func(kind validate.Kind, res validate.Result[string])
	logger  *log.Logger
	metrics *metrics.Pipeline
}

// debouncer keeps the latest text and one pending timer.
type debouncer struct {
	kind  validate.Kind
	delay time.Duration
	env   *env
	seq   uint64
	timer Timer
	text  string
}

// restart replaces any pending timer with a new one carrying text.
func (d *debouncer) restart(text string) {
	d.stop()
	d.seq++
	d.text = text
	seq, kind, push := d.seq, d.kind, d.env.push
	d.timer = d.env.clock.AfterFunc(d.delay, func() {
		push(fireEvent{kind: kind, seq: seq})
	})
}

// current reports whether seq belongs to the latest timer and consumes it.
func (d *debouncer) current(seq uint64) bool {
	if d.timer == nil || seq != d.seq {
		return false
	}
	d.timer = nil
	return true
}

func (d *debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Field validates a value syntactically and then asks a Checker whether it
// is available. At most one check is in flight; an edit cancels it at once
// and only the result of the newest generation is ever published.
type Field struct {
	kind     validate.Kind
	checker  avail.Checker
	env      *env
	logger   *log.Logger
	debounce debouncer

	state  State
	text   string
	result validate.Result[string]
	gen    uint64
	call   *avail.Call
}

func newField(kind validate.Kind, delay time.Duration, checker avail.Checker, e *env) *Field {
	return &Field{
		kind:     kind,
		checker:  checker,
		env:      e,
		logger:   e.logger.With("field", kind.String()),
		debounce: debouncer{kind: kind, delay: delay, env: e},
		state:    StateIdle,
	}
}

func (f *Field) edit(text string) {
	if f.state == StateClosed {
		return
	}
	f.env.metrics.RecordEdit(f.kind)
	f.cancelCall()
	f.debounce.restart(text)
	f.text = text
	f.state = StateDebouncing
}

func (f *Field) fire(seq uint64) {
	if f.state != StateDebouncing || !f.debounce.current(seq) {
		return
	}
	text := f.debounce.text
	f.env.metrics.RecordDebounce(f.kind)

	res := validate.Syntax(f.kind, text)
	if !res.Valid {
		f.env.metrics.RecordSyntaxFailure(f.kind)
		f.logger.Debug("syntax check failed", "text", text, "reason", res.Reason)
		f.result = res
		f.state = StateSyntaxFailed
		f.env.publish(f.kind, res)
		return
	}

	f.gen++
	gen := f.gen
	started := f.env.clock.Now()
	call := f.checker.CheckAsync(f.kind, text)
	f.call = call
	f.state = StateRemoteChecking
	f.env.metrics.RecordRemoteCheck(f.kind)
	f.logger.Debug("availability check started", "text", text, "generation", gen)

	kind, push := f.kind, f.env.push
	go func() {
		select {
		case res := <-call.Done():
			select {
			case <-call.Canceled():
				return
			default:
			}
			push(resultEvent{kind: kind, gen: gen, res: res, started: started})
		case <-call.Canceled():
		}
	}()
}

func (f *Field) resolve(gen uint64, res validate.Result[string], started time.Time) {
	if f.state != StateRemoteChecking || gen != f.gen {
		f.env.metrics.RecordStale(f.kind)
		f.logger.Debug("discarding stale availability result", "generation", gen, "current", f.gen)
		return
	}
	f.env.metrics.RecordRemoteLatency(f.kind, f.env.clock.Now().Sub(started))
	f.call = nil
	f.result = res
	f.state = StateResolved
	f.env.publish(f.kind, res)
}

// cancelCall drops the in-flight check, if any, and moves to a new generation
// so its result can no longer match.
func (f *Field) cancelCall() {
	if f.call == nil {
		return
	}
	f.call.Cancel()
	f.call = nil
	f.gen++
	f.env.metrics.RecordRemoteCanceled(f.kind)
	f.logger.Debug("availability check canceled", "generation", f.gen)
}

func (f *Field) snapshot() FieldSnapshot {
	return FieldSnapshot{
		Kind:       f.kind,
		State:      f.state,
		Text:       f.text,
		Generation: f.gen,
		Result:     f.result,
	}
}

func (f *Field) shutdown() {
	f.debounce.stop()
	f.cancelCall()
	f.state = StateClosed
}

// SimpleField only debounces and runs the syntactic rule.
type SimpleField struct {
	kind     validate.Kind
	env      *env
	debounce debouncer

	state  State
	text   string
	result validate.Result[string]
}

func newSimpleField(kind validate.Kind, delay time.Duration, e *env) *SimpleField {
	return &SimpleField{
		kind:     kind,
		env:      e,
		debounce: debouncer{kind: kind, delay: delay, env: e},
		state:    StateIdle,
	}
}

func (f *SimpleField) edit(text string) {
	if f.state == StateClosed {
		return
	}
	f.env.metrics.RecordEdit(f.kind)
	f.debounce.restart(text)
	f.text = text
	f.state = StateDebouncing
}

func (f *SimpleField) fire(seq uint64) {
	if f.state != StateDebouncing || !f.debounce.current(seq) {
		return
	}
	f.env.metrics.RecordDebounce(f.kind)
	res := validate.Syntax(f.kind, f.debounce.text)
	f.result = res
	if res.Valid {
		f.state = StateResolved
	} else {
		f.env.metrics.RecordSyntaxFailure(f.kind)
		f.state = StateSyntaxFailed
	}
	f.env.publish(f.kind, res)
}

func (f *SimpleField) resolve(uint64, validate.Result[string], time.Time) {}

func (f *SimpleField) snapshot() FieldSnapshot {
	return FieldSnapshot{
		Kind:   f.kind,
		State:  f.state,
		Text:   f.text,
		Result: f.result,
	}
}

func (f *SimpleField) shutdown() {
	f.debounce.stop()
	f.state = StateClosed
}
