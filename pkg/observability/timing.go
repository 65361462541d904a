package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation and records it on Stop.
type Timer struct {
	operation string
	start     time.Time
	logger    *slog.Logger
	metrics   Metrics
	counter   string
	duration  string
	tags      []Tag
}

// StartTimer starts timing operation. The counter and duration metric names
// default to the query metrics.
func StartTimer(operation string) *Timer {
	return &Timer{
		operation: operation,
		start:     time.Now(),
		counter:   MetricQueryCount,
		duration:  MetricQueryDuration,
	}
}

func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// WithNames overrides the metric names. An empty duration name skips the timing.
func (t *Timer) WithNames(counter, duration string) *Timer {
	t.counter = counter
	t.duration = duration
	return t
}

func (t *Timer) WithTags(tags ...Tag) *Timer {
	t.tags = append(t.tags, tags...)
	return t
}

// Stop records the duration under outcome and returns it.
func (t *Timer) Stop(outcome string) time.Duration {
	elapsed := time.Since(t.start)

	if t.logger != nil {
		if outcome == OutcomeOK {
			t.logger.Debug("operation completed",
				"operation", t.operation,
				DurationKey, elapsed.Milliseconds(),
			)
		} else {
			t.logger.Warn("operation failed",
				"operation", t.operation,
				"outcome", outcome,
				DurationKey, elapsed.Milliseconds(),
			)
		}
	}

	if t.metrics != nil {
		tags := append(append([]Tag(nil), t.tags...), T("outcome", outcome))
		t.metrics.Counter(t.counter, 1, tags...)
		if t.duration != "" {
			t.metrics.Timing(t.duration, elapsed, t.tags...)
		}
	}

	return elapsed
}
