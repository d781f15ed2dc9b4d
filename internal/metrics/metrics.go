// Package metrics is a small process-wide metrics facade.
//
// Pipeline code records through the package-level functions; the backend is
// chosen once at startup with SetBackend. The default backend discards
// everything.
package metrics

import (
	"sync"
	"time"
)

// Metric names emitted by docschema.
const (
	TablesTotal         = "docschema_tables_total"
	ColumnsTotal        = "docschema_columns_total"
	CellsTotal          = "docschema_cells_total"
	StepDurationSeconds = "docschema_step_duration_seconds"
)

// Labels are metric dimensions.
type Labels map[string]string

// Backend receives metric events. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
	Close() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }
func (nopBackend) Close() error                             { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b. A nil b restores the no-op backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter adds delta to a counter.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush pushes buffered metrics to the backend's sink.
func Flush() error { return current().Flush() }

// Close stops the backend and flushes one last time.
func Close() error { return current().Close() }

// RecordStep observes how long a pipeline step took. status is "ok" or
// "error" depending on err.
func RecordStep(step string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ObserveHistogram(StepDurationSeconds, d.Seconds(), Labels{"step": step, "status": status})
}
