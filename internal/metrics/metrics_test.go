package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	kind   string
	name   string
	value  float64
	labels Labels
}

type recorder struct {
	mu      sync.Mutex
	events  []event
	flushes int
}

func (r *recorder) IncCounter(name string, delta float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{"counter", name, delta, labels})
}

func (r *recorder) ObserveHistogram(name string, value float64, labels Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{"histogram", name, value, labels})
}

func (r *recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return nil
}

func (r *recorder) Close() error { return r.Flush() }

// TestFacade verifies events reach the installed backend and that nil
// restores the no-op backend. Not parallel: the backend is process-wide.
func TestFacade(t *testing.T) {
	rec := &recorder{}
	SetBackend(rec)
	t.Cleanup(func() { SetBackend(nil) })

	IncCounter(TablesTotal, 1, nil)
	RecordStep("profile", 1500*time.Millisecond, nil)
	RecordStep("write", time.Second, errors.New("disk full"))
	require.NoError(t, Flush())
	require.NoError(t, Close())

	require.Len(t, rec.events, 3)
	assert.Equal(t, event{"counter", TablesTotal, 1, nil}, rec.events[0])
	assert.Equal(t, event{"histogram", StepDurationSeconds, 1.5, Labels{"step": "profile", "status": "ok"}}, rec.events[1])
	assert.Equal(t, "error", rec.events[2].labels["status"])
	assert.Equal(t, 2, rec.flushes)

	SetBackend(nil)
	IncCounter(TablesTotal, 1, nil)
	assert.Len(t, rec.events, 3)
	assert.NoError(t, Flush())
}
