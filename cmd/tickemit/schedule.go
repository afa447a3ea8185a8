package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/romshark/tickemit"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Schedule is the YAML schedule file.
type Schedule struct {
	// Interval is the wall-clock duration of one tick.
	Interval time.Duration `yaml:"interval"`
	Events   []Event       `yaml:"events"`
}

// Event logs Message whenever it fires.
// Exactly one of At and Every must be set.
type Event struct {
	At      *int64 `yaml:"at"`
	Every   *int64 `yaml:"every"`
	Message string `yaml:"message"`
}

var (
	ErrNoTrigger        = errors.New("neither at nor every set")
	ErrAmbiguousTrigger = errors.New("both at and every set")
)

// LoadSchedule reads the schedule file at path.
func LoadSchedule(path string) (*Schedule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening schedule: %w", err)
	}
	defer f.Close()
	return ParseSchedule(f)
}

// ParseSchedule decodes and validates a schedule.
// Unknown fields are rejected.
func ParseSchedule(r io.Reader) (*Schedule, error) {
	var s Schedule
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding schedule: %w", err)
	}
	if s.Interval < 0 {
		return nil, fmt.Errorf("negative interval: %s", s.Interval)
	}
	for i, e := range s.Events {
		switch {
		case e.At == nil && e.Every == nil:
			return nil, fmt.Errorf("event %d: %w", i, ErrNoTrigger)
		case e.At != nil && e.Every != nil:
			return nil, fmt.Errorf("event %d: %w", i, ErrAmbiguousTrigger)
		}
	}
	return &s, nil
}

// Apply registers all events of s on e.
func (s *Schedule) Apply(e *tickemit.Emitter, log *zap.Logger) {
	for _, ev := range s.Events {
		msg := ev.Message
		fn := func(tm int64) {
			log.Info(msg, zap.Int64("time", tm))
		}
		if ev.At != nil {
			e.At(*ev.At, fn)
		} else {
			e.Every(*ev.Every, fn)
		}
	}
}
