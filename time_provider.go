package tickemit

import (
	"sync"
	"time"
)

type timeProvider struct{}

func (p timeProvider) Every(d Duration, fn func()) Ticker {
	t := &ticker{
		t:    time.NewTicker(d),
		stop: make(chan struct{}),
	}
	go t.run(fn)
	return t
}

// ticker executes fn on every tick of a time.Ticker
// in a single goroutine until stopped.
type ticker struct {
	t    *time.Ticker
	stop chan struct{}
	once sync.Once
}

func (t *ticker) run(fn func()) {
	defer t.t.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-t.t.C:
			fn()
		}
	}
}

func (t *ticker) Stop() {
	t.once.Do(func() { close(t.stop) })
}
