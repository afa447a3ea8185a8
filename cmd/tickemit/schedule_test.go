package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/romshark/tickemit"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testSchedule = `
interval: 250ms
events:
  - at: 0
    message: started
  - every: 3
    message: fizz
  - at: 3
    message: three
`

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule(strings.NewReader(testSchedule))
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, s.Interval)
	require.Len(t, s.Events, 3)
	require.Equal(t, int64(0), *s.Events[0].At)
	require.Nil(t, s.Events[0].Every)
	require.Equal(t, int64(3), *s.Events[1].Every)
	require.Equal(t, "fizz", s.Events[1].Message)
}

func TestParseScheduleEmpty(t *testing.T) {
	s, err := ParseSchedule(strings.NewReader(""))
	require.NoError(t, err)
	require.Zero(t, s.Interval)
	require.Empty(t, s.Events)
}

func TestParseScheduleErr(t *testing.T) {
	for _, tt := range []struct {
		name   string
		input  string
		expect error
	}{
		{"no trigger", "events:\n  - message: x\n", ErrNoTrigger},
		{"ambiguous", "events:\n  - at: 1\n    every: 2\n", ErrAmbiguousTrigger},
		{"unknown field", "events:\n  - at: 1\n    when: 2\n", nil},
		{"negative interval", "interval: -1s\n", nil},
		{"malformed", "events: [", nil},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseSchedule(strings.NewReader(tt.input))
			require.Error(t, err)
			require.Nil(t, s)
			if tt.expect != nil {
				require.ErrorIs(t, err, tt.expect)
			}
		})
	}
}

func TestLoadScheduleNotFound(t *testing.T) {
	_, err := LoadSchedule(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// manualProvider starts tickers that only tick when told to.
type manualProvider struct{ tick func() }

func (p *manualProvider) Every(_ tickemit.Duration, fn func()) tickemit.Ticker {
	p.tick = fn
	return stopper{}
}

type stopper struct{}

func (stopper) Stop() {}

func TestApply(t *testing.T) {
	s, err := ParseSchedule(strings.NewReader(testSchedule))
	require.NoError(t, err)

	core, logs := observer.New(zapcore.InfoLevel)
	p := new(manualProvider)
	e := tickemit.NewWith(p)
	s.Apply(e, zap.New(core))
	require.Equal(t, 3, e.Len())

	e.Start(s.Interval)
	for i := 0; i < 6; i++ {
		p.tick()
	}

	var actual []string
	for _, l := range logs.All() {
		actual = append(actual, l.Message)
	}
	require.Equal(t, []string{"started", "three", "fizz", "fizz"}, actual)
	require.Equal(t, int64(3), logs.All()[1].ContextMap()["time"])
}

func TestRunTicks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSchedule), 0o600))

	cmd := newRootCmd()
	cmd.SetArgs([]string{
		"run",
		"--schedule", path,
		"--interval", "1ms",
		"--ticks", "3",
	})

	done := make(chan error, 1)
	go func() { done <- cmd.Execute() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run didn't stop after reaching --ticks")
	}
}

func TestRunScheduleNotFound(t *testing.T) {
	cmd := newRootCmd()
	cmd.SilenceErrors = true
	cmd.SetArgs([]string{
		"run", "--schedule", filepath.Join(t.TempDir(), "missing.yaml"),
	})
	require.ErrorIs(t, cmd.Execute(), os.ErrNotExist)
}
