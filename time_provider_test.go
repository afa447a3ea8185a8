package tickemit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTickerStopTwice(t *testing.T) {
	ticks := make(chan struct{}, 1)
	tk := timeProvider{}.Every(time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	select {
	case <-ticks:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for tick")
	}

	require.NotPanics(t, func() {
		tk.Stop()
		tk.Stop()
	})

	// The goroutine may deliver at most one tick in flight.
	time.Sleep(20 * time.Millisecond)
	for len(ticks) > 0 {
		<-ticks
	}
	time.Sleep(20 * time.Millisecond)
	require.Empty(t, ticks)
}

func TestNewWithDefaultProvider(t *testing.T) {
	e := NewWith(nil)
	require.IsType(t, timeProvider{}, e.provider)

	e = New(WithTimeProvider(nil))
	require.IsType(t, timeProvider{}, e.provider)
}
