package telemetry_test

import (
	"context"
	"sync"
	"time"
)

// recordingRenderer is a simple test double for ports.Renderer.
type recordingRenderer struct {
	mu        sync.Mutex
	plans     [][]string
	started   []string
	completed []error
	unchanged []bool
	logs      []byte
}

func (m *recordingRenderer) Start(_ context.Context) error { return nil }
func (m *recordingRenderer) Stop() error                   { return nil }
func (m *recordingRenderer) Wait() error                   { return nil }

func (m *recordingRenderer) OnPlanEmit(steps []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans = append(m.plans, steps)
}

func (m *recordingRenderer) OnTaskStart(_, _, name string, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, name)
}

func (m *recordingRenderer) OnTaskLog(_ string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, data...)
}

func (m *recordingRenderer) OnTaskComplete(_ string, _ time.Time, err error, unchanged bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, err)
	m.unchanged = append(m.unchanged, unchanged)
}

func (m *recordingRenderer) snapshot() (plans [][]string, started []string, completed []error, logs string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plans, m.started, m.completed, string(m.logs)
}
