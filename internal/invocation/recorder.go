package invocation

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/isp-devices/internal/infrastructure/logging"
)

// RecorderFunc adapts a function to the Recorder interface.
type RecorderFunc func(ctx context.Context, inv Invocation) error

// Record calls f(ctx, inv).
func (f RecorderFunc) Record(ctx context.Context, inv Invocation) error {
	return f(ctx, inv)
}

// namedRecorder labels a sink for log output.
type namedRecorder struct {
	name string
	rec  Recorder
}

// Multi delivers each invocation to every registered sink in order.
// A failing sink is logged at warn and does not stop the others.
type Multi struct {
	sinks  []namedRecorder
	logger *logging.Logger
}

// NewMulti creates an empty fan-out recorder.
func NewMulti(logger *logging.Logger) *Multi {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Multi{logger: logger}
}

// Add registers a sink under name. Nil sinks are ignored.
// Add must not be called once the recorder is in use.
func (m *Multi) Add(name string, rec Recorder) {
	if rec == nil {
		return
	}
	m.sinks = append(m.sinks, namedRecorder{name: name, rec: rec})
}

// Len reports the number of registered sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Record delivers inv to all sinks. It always returns nil; sink errors are logged.
// A missing ID or timestamp is filled in first so every sink sees the same values.
func (m *Multi) Record(ctx context.Context, inv Invocation) error {
	if inv.ID == "" {
		inv.ID = NewID()
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	for _, s := range m.sinks {
		if err := s.rec.Record(ctx, inv); err != nil {
			m.logger.Warn("invocation sink failed",
				"sink", s.name,
				"variant", inv.Variant,
				"operation", inv.Operation,
				"error", err,
			)
		}
	}
	return nil
}

// RecordAll records each invocation in order, stopping at the first error.
func RecordAll(ctx context.Context, rec Recorder, invs []Invocation) error {
	for _, inv := range invs {
		if err := rec.Record(ctx, inv); err != nil {
			return fmt.Errorf("recording %s/%s: %w", inv.Variant, inv.Operation, err)
		}
	}
	return nil
}
