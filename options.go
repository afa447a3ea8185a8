package tickemit

import "go.uber.org/zap"

// Option configures an Emitter.
type Option func(*Emitter)

// WithLogger sets the logger lifecycle events and dispatch passes
// are logged to. A nil logger disables logging.
func WithLogger(l *zap.Logger) Option {
	return func(e *Emitter) {
		if l == nil {
			l = zap.NewNop()
		}
		e.log = l.Named("tickemit")
	}
}

// WithMetrics makes the emitter record its activity in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Emitter) { e.metrics = m }
}

// WithTimeProvider replaces the time provider the emitter starts its
// ticker with. A nil provider keeps the current one.
func WithTimeProvider(t TimeProvider) Option {
	return func(e *Emitter) {
		if t != nil {
			e.provider = t
		}
	}
}
