package tickemit

import (
	"sync"
	"time"

	"github.com/romshark/tickemit/internal/registry"

	"go.uber.org/zap"
)

type (
	Time     = time.Time
	Duration = time.Duration
)

const (
	Millisecond = time.Millisecond
	Second      = time.Second
)

// DefaultInterval is the tick interval used when Start
// is given a non-positive interval.
const DefaultInterval = Second

// Handler is invoked with the virtual time it was dispatched for.
type Handler func(time int64)

// Ticker is a running periodic timer.
// Stop must be safe to call more than once.
type Ticker interface {
	Stop()
}

// TimeProvider starts periodic timers.
// Every must invoke fn repeatedly at approximately interval d
// until the returned Ticker is stopped. Invocations of fn
// must not overlap.
type TimeProvider interface {
	Every(d Duration, fn func()) Ticker
}

// DefaultEmitter is the default Emitter used by Start, Pause, Resume,
// Destroy, At, Every, Reset, Now, Len and Scan.
var DefaultEmitter = New()

// Start starts the default emitter. See (*Emitter).Start.
func Start(interval Duration) *Emitter { return DefaultEmitter.Start(interval) }

// Pause pauses the default emitter.
func Pause() { DefaultEmitter.Pause() }

// Resume resumes the default emitter.
func Resume() { DefaultEmitter.Resume() }

// Destroy destroys the default emitter. See (*Emitter).Destroy.
func Destroy() *Emitter { return DefaultEmitter.Destroy() }

// At registers fn on the default emitter. See (*Emitter).At.
func At(time int64, fn Handler) *Emitter { return DefaultEmitter.At(time, fn) }

// Every registers fn on the default emitter. See (*Emitter).Every.
func Every(period int64, fn Handler) *Emitter { return DefaultEmitter.Every(period, fn) }

// Reset resets the default emitter. See (*Emitter).Reset.
func Reset() *Emitter { return DefaultEmitter.Reset() }

// Now returns the current virtual time of the default emitter.
func Now() int64 { return DefaultEmitter.Now() }

// Len returns the number of handlers registered on the default emitter.
func Len() int { return DefaultEmitter.Len() }

// Scan scans the registrations of the default emitter.
// See (*Emitter).Scan.
func Scan(fn func(Registration) bool) (completed bool) {
	return DefaultEmitter.Scan(fn)
}

// New creates a new emitter at time 0 using the standard time package.
func New(opts ...Option) *Emitter {
	return NewWith(nil, opts...)
}

// NewWith is similar to New but replaces the default time provider.
// If t == nil then the standard time package is used by default.
func NewWith(t TimeProvider, opts ...Option) *Emitter {
	if t == nil {
		t = timeProvider{}
	}
	e := &Emitter{
		provider: t,
		log:      zap.NewNop(),
		at:       registry.NewByKey(),
		every:    registry.NewByInsertion(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Emitter advances a virtual integer clock on a fixed wall-clock cadence
// and invokes the handlers registered for the current time.
//
// All methods are safe for concurrent use. Handlers are invoked
// without holding the emitter's lock and may call back into the emitter.
type Emitter struct {
	provider TimeProvider
	log      *zap.Logger
	metrics  *Metrics

	lock     sync.Mutex
	time     int64
	paused   bool
	at       *registry.Registry
	every    *registry.Registry
	ticker   Ticker
	starting bool

	// run identifies the current ticker so that
	// ticks of a stopped ticker can be discarded.
	run uint64

	// cleared is incremented whenever the handlers are discarded.
	cleared uint64
}

// Start dispatches for the current time and then starts advancing
// the clock by one on every tick of the given interval.
// If interval < 1 then DefaultInterval is used.
// Start is a no-op if the emitter is already running,
// the interval of a running emitter is never changed.
func (e *Emitter) Start(interval Duration) *Emitter {
	if interval < 1 {
		interval = DefaultInterval
	}

	e.lock.Lock()
	if e.ticker != nil || e.starting {
		e.lock.Unlock()
		e.log.Debug("already running, start ignored",
			zap.Duration("interval", interval))
		return e
	}
	e.starting = true
	e.run++
	run := e.run
	p := e.collect(e.time)
	e.lock.Unlock()

	started := false
	defer func() {
		if started {
			return
		}
		// A handler panicked during the initial dispatch.
		e.lock.Lock()
		if e.run == run {
			e.starting = false
		}
		e.lock.Unlock()
	}()

	e.fire(p)

	e.lock.Lock()
	defer e.lock.Unlock()
	started = true

	if e.ticker != nil {
		// Started again by a handler of the initial dispatch.
		return e
	}
	if e.run == run {
		e.starting = false
	}
	// Destroy during the initial dispatch invalidates run,
	// the ticker still starts with empty handlers.
	run = e.run
	e.ticker = e.provider.Every(interval, func() { e.tick(run) })

	e.log.Debug("started",
		zap.Duration("interval", interval),
		zap.Int64("time", e.time))
	return e
}

// Pause suspends time advancement and dispatch.
// The underlying ticker keeps running, its ticks are ignored
// until Resume is called.
func (e *Emitter) Pause() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.paused = true
}

// Resume resumes time advancement from the paused value.
func (e *Emitter) Resume() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.paused = false
}

// Destroy discards all registered handlers and stops the ticker.
// The current time is preserved and the emitter may be started again.
// Destroying an emitter that isn't running only clears the handlers.
func (e *Emitter) Destroy() *Emitter {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.at.Clear()
	e.every.Clear()
	e.cleared++

	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
		e.log.Debug("destroyed", zap.Int64("time", e.time))
	}
	e.starting = false
	e.run++
	return e
}

// At registers fn for execution when the clock equals time.
// Negative times are treated as 0. Handlers registered for the same time
// are executed in registration order.
// A handler registered during a dispatch pass fires from the next pass on.
// Returns nil and registers nothing if fn is nil.
func (e *Emitter) At(time int64, fn Handler) *Emitter {
	if fn == nil {
		return nil
	}
	if time < 0 {
		time = 0
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	r := e.at.Add(time, fn)
	e.log.Debug("registered",
		zap.Stringer("kind", KindAt),
		zap.Int64("time", time),
		zap.Stringer("id", r.ID))
	return e
}

// Every registers fn for execution whenever the clock
// is a positive multiple of period. Periods below 1 are treated as 1.
// fn is never executed at time 0.
// A handler registered during a dispatch pass fires from the next pass on.
// Returns nil and registers nothing if fn is nil.
func (e *Emitter) Every(period int64, fn Handler) *Emitter {
	if fn == nil {
		return nil
	}
	if period < 1 {
		period = 1
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	r := e.every.Add(period, fn)
	e.log.Debug("registered",
		zap.Stringer("kind", KindEvery),
		zap.Int64("period", period),
		zap.Stringer("id", r.ID))
	return e
}

// Reset sets the clock to 0 and dispatches for time 0.
// Neither the pause state, the handlers nor the ticker are affected.
func (e *Emitter) Reset() *Emitter {
	e.lock.Lock()
	e.time = 0
	p := e.collect(0)
	e.lock.Unlock()

	e.log.Debug("reset")
	e.fire(p)
	return e
}

// Now returns the current virtual time.
func (e *Emitter) Now() int64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.time
}

// Paused returns true if the emitter is paused.
func (e *Emitter) Paused() bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.paused
}

// Running returns true if the emitter owns a live ticker.
func (e *Emitter) Running() bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.ticker != nil
}

// Len returns the number of registered handlers.
func (e *Emitter) Len() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.at.Len() + e.every.Len()
}

// Scan calls fn for each registration until either all registrations
// were scanned or fn returns false. At-registrations are scanned first
// in ascending time order, followed by every-registrations in dispatch order.
// Returns false if fn interrupted the scan.
func (e *Emitter) Scan(fn func(Registration) bool) (completed bool) {
	var l []Registration
	add := func(k Kind) func(registry.Entry) bool {
		return func(x registry.Entry) bool {
			l = append(l, Registration{
				ID:      ID(x.ID),
				Kind:    k,
				Key:     x.Key,
				Handler: x.Fn,
			})
			return true
		}
	}

	e.lock.Lock()
	e.at.Scan(add(KindAt))
	e.every.Scan(add(KindEvery))
	e.lock.Unlock()

	for _, r := range l {
		if !fn(r) {
			return false
		}
	}
	return true
}

func (e *Emitter) tick(run uint64) {
	e.lock.Lock()
	if e.run != run {
		// Tick of a stopped ticker.
		e.lock.Unlock()
		return
	}
	if e.paused {
		e.lock.Unlock()
		e.metrics.skipped()
		return
	}
	e.time++
	p := e.collect(e.time)
	e.lock.Unlock()

	e.metrics.tick()
	e.fire(p)
}

// pass is the set of handlers matched by a single dispatch.
type pass struct {
	time    int64
	cleared uint64
	at      []registry.Entry
	every   []registry.Entry
}

// collect matches the handlers for time t.
// Must be called while holding the lock.
func (e *Emitter) collect(t int64) pass {
	return pass{
		time:    t,
		cleared: e.cleared,
		at:      e.at.Get(t),
		every: e.every.Match(nil, func(period int64) bool {
			return t > 0 && t%period == 0
		}),
	}
}

// fire executes the handlers of p in order, at-handlers first.
// Once the handlers are discarded by a handler of p,
// the remaining every-handlers are skipped.
// Panics of handlers are not recovered.
func (e *Emitter) fire(p pass) {
	e.metrics.dispatch()
	if n := len(p.at) + len(p.every); n > 0 {
		e.log.Debug("dispatch",
			zap.Int64("time", p.time),
			zap.Int("handlers", n))
	}
	for _, x := range p.at {
		e.metrics.call(KindAt)
		x.Fn(p.time)
	}
	for _, x := range p.every {
		if e.clearedSince(p) {
			return
		}
		e.metrics.call(KindEvery)
		x.Fn(p.time)
	}
}

func (e *Emitter) clearedSince(p pass) bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.cleared != p.cleared
}
