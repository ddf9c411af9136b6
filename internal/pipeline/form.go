// Package pipeline turns raw per-field text edits into debounced,
// availability-checked verdicts and a single submit-enabled signal.
//
// A Form owns one coordinating goroutine. Edits, debounce timers, and
// availability results are all queued to it, so field state and the
// aggregate are only ever touched from that goroutine.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iiroan/formwatch/internal/avail"
	"github.com/iiroan/formwatch/internal/metrics"
	"github.com/iiroan/formwatch/internal/validate"
)

var (
	// ErrClosed is returned once Shutdown has started.
	ErrClosed = errors.New("form is shut down")
	// ErrUnknownField is returned for edits to a field the form does not have.
	ErrUnknownField = errors.New("field not in form")
	// ErrNoChecker is returned when a remote-checked field has no checker.
	ErrNoChecker = errors.New("availability checker required")
)

// FieldSnapshot describes one field at a point in time.
type FieldSnapshot struct {
	Kind       validate.Kind
	State      State
	Text       string
	Generation uint64
	Result     validate.Result[string]
}

// Snapshot describes the whole form.
type Snapshot struct {
	Fields []FieldSnapshot
	// Ready is false until every field has published a verdict.
	Ready   bool
	Enabled bool
}

// Option configures a Form.
type Option func(*formConfig)

type formConfig struct {
	kinds         []validate.Kind
	debounce      time.Duration
	fieldDebounce map[validate.Kind]time.Duration
	clock         Clock
	logger        *log.Logger
	metrics       *metrics.Pipeline
}

func defaultFormConfig() formConfig {
	return formConfig{
		kinds:         validate.Kinds(),
		debounce:      DefaultDebounce,
		fieldDebounce: map[validate.Kind]time.Duration{},
		clock:         RealClock,
	}
}

// WithKinds sets which fields the form has. Defaults to every kind.
func WithKinds(kinds ...validate.Kind) Option {
	return func(cfg *formConfig) {
		if len(kinds) > 0 {
			cfg.kinds = append([]validate.Kind(nil), kinds...)
		}
	}
}

// WithDebounce sets the quiet period for all fields.
func WithDebounce(d time.Duration) Option {
	return func(cfg *formConfig) {
		if d > 0 {
			cfg.debounce = d
		}
	}
}

// WithFieldDebounce overrides the quiet period of one field.
func WithFieldDebounce(kind validate.Kind, d time.Duration) Option {
	return func(cfg *formConfig) {
		if d > 0 {
			cfg.fieldDebounce[kind] = d
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(cfg *formConfig) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithLogger sets the logger. Defaults to discarding output.
func WithLogger(l *log.Logger) Option {
	return func(cfg *formConfig) {
		cfg.logger = l
	}
}

// WithMetrics records pipeline metrics on m.
func WithMetrics(m *metrics.Pipeline) Option {
	return func(cfg *formConfig) {
		cfg.metrics = m
	}
}

// Form wires field pipelines to an aggregator and a sink.
type Form struct {
	kinds   []validate.Kind
	stages  map[validate.Kind]stage
	agg     *Aggregator
	sink    Sink
	logger  *log.Logger
	metrics *metrics.Pipeline

	// submitOn is the last enabled value sent to the sink. Only run touches it.
	submitOn bool

	box      *inbox
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type nopSink struct{}

func (nopSink) FieldStatus(validate.Kind, string, bool) {}
func (nopSink) SubmitEnabled(bool)                      {}

// New builds a form and starts its coordinating goroutine. Fields whose kind
// is remote-checked use checker; the others only run their syntactic rule.
func New(checker avail.Checker, sink Sink, opts ...Option) (*Form, error) {
	cfg := defaultFormConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	if sink == nil {
		sink = nopSink{}
	}

	f := &Form{
		kinds:   cfg.kinds,
		stages:  make(map[validate.Kind]stage, len(cfg.kinds)),
		agg:     NewAggregator(cfg.kinds...),
		sink:    sink,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		box:     newInbox(),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	e := &env{
		clock:   cfg.clock,
		push:    f.box.push,
		publish: f.publish,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
	for _, kind := range cfg.kinds {
		if _, dup := f.stages[kind]; dup {
			return nil, fmt.Errorf("field %s listed twice", kind)
		}
		delay := cfg.debounce
		if d, ok := cfg.fieldDebounce[kind]; ok {
			delay = d
		}
		if kind.Remote() {
			if checker == nil {
				return nil, fmt.Errorf("%w for %s", ErrNoChecker, kind)
			}
			f.stages[kind] = newField(kind, delay, checker, e)
			continue
		}
		f.stages[kind] = newSimpleField(kind, delay, e)
	}

	f.metrics.FormStarted()
	go f.run()
	return f, nil
}

// Kinds returns the form's fields in order.
func (f *Form) Kinds() []validate.Kind {
	return append([]validate.Kind(nil), f.kinds...)
}

// Edit queues a raw text change for kind. It never blocks.
func (f *Form) Edit(kind validate.Kind, text string) error {
	if _, ok := f.stages[kind]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, kind)
	}
	if f.stopping() || !f.box.push(editEvent{kind: kind, text: text}) {
		return ErrClosed
	}
	return nil
}

// Snapshot returns the state of every field as seen by the form goroutine.
func (f *Form) Snapshot() (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	if f.stopping() || !f.box.push(snapshotEvent{reply: reply}) {
		return Snapshot{}, ErrClosed
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-f.done:
		return Snapshot{}, ErrClosed
	}
}

// Shutdown stops every timer, cancels in-flight checks, and waits for the
// form goroutine to exit. No sink call happens after it returns. Safe to call
// more than once; must not be called from a Sink.
func (f *Form) Shutdown() {
	f.stopOnce.Do(func() {
		f.box.close()
		close(f.quit)
	})
	<-f.done
}

// Done is closed after the form goroutine has exited.
func (f *Form) Done() <-chan struct{} {
	return f.done
}

func (f *Form) stopping() bool {
	select {
	case <-f.quit:
		return true
	default:
		return false
	}
}

func (f *Form) run() {
	defer close(f.done)
	defer f.metrics.FormStopped()
	defer f.trackSubmit(false)

	for {
		select {
		case <-f.quit:
			f.teardown()
			return
		case <-f.box.ready:
			for _, ev := range f.box.drain() {
				if f.stopping() {
					break
				}
				f.handle(ev)
			}
		}
	}
}

func (f *Form) handle(ev event) {
	switch ev := ev.(type) {
	case editEvent:
		f.logger.Debug("edit", "field", ev.kind.String(), "text", ev.text)
		f.stages[ev.kind].edit(ev.text)
	case fireEvent:
		f.stages[ev.kind].fire(ev.seq)
	case resultEvent:
		f.stages[ev.kind].resolve(ev.gen, ev.res, ev.started)
	case snapshotEvent:
		ev.reply <- f.snapshot()
	}
}

func (f *Form) publish(kind validate.Kind, res validate.Result[string]) {
	f.metrics.RecordVerdict(kind, res.Valid)
	f.sink.FieldStatus(kind, res.Reason, res.Valid)

	enabled, ready := f.agg.Observe(kind, res.Valid)
	if !ready {
		return
	}
	f.trackSubmit(enabled)
	f.sink.SubmitEnabled(enabled)
}

// trackSubmit keeps the enabled-forms gauge in step with this form.
func (f *Form) trackSubmit(enabled bool) {
	f.metrics.RecordSubmit(f.submitOn, enabled)
	f.submitOn = enabled
}

func (f *Form) snapshot() Snapshot {
	snap := Snapshot{Fields: make([]FieldSnapshot, 0, len(f.kinds))}
	for _, kind := range f.kinds {
		snap.Fields = append(snap.Fields, f.stages[kind].snapshot())
	}
	snap.Enabled, snap.Ready = f.agg.Current()
	return snap
}

func (f *Form) teardown() {
	for _, kind := range f.kinds {
		f.stages[kind].shutdown()
	}
	f.logger.Debug("form shut down")
}
