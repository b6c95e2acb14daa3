package ports

import (
	"context"
	"time"
)

// Renderer presents build progress.
// It decouples telemetry collection from presentation.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// Start initializes the renderer.
	Start(ctx context.Context) error

	// Stop flushes buffered output.
	Stop() error

	// Wait blocks until the renderer has fully terminated.
	Wait() error

	// OnPlanEmit is called with the planned build steps in execution order.
	OnPlanEmit(steps []string)

	// OnTaskStart is called when a step begins.
	// parentID is empty for root steps.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called when a step emits output.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a step finishes; err is nil on success.
	// unchanged reports a successful step that wrote no file.
	OnTaskComplete(spanID string, endTime time.Time, err error, unchanged bool)
}
