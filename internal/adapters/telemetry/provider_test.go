package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/core/ports"
)

func setupRecorder() (*tracetest.SpanRecorder, *trace.TracerProvider) {
	sr := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	return sr, tp
}

func TestOTelTracer_EmitPlan(t *testing.T) {
	sr, tp := setupRecorder()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	rec := &recordingRenderer{}
	tracer := telemetry.NewOTelTracer("test-tracer").WithRenderer(rec)

	ctx, span := tp.Tracer("test").Start(context.Background(), "build")
	tracer.EmitPlan(ctx, []string{"constants", "styles"})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "plan_emitted", events[0].Name)

	plans, _, _, _ := rec.snapshot()
	assert.Equal(t, [][]string{{"constants", "styles"}}, plans)
}

func TestOTelSpan_SetAttribute(t *testing.T) {
	sr, tp := setupRecorder()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracer("test-tracer")
	_, span := tracer.Start(context.Background(), "attr-test")

	span.SetAttribute("str", "val")
	span.SetAttribute("int", 3)
	span.SetAttribute("int64", int64(456))
	span.SetAttribute("float", 3.14)
	span.SetAttribute("bool", true)
	span.SetAttribute("slice", []string{"a", "b"})
	span.SetAttribute("unknown", struct{}{})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)

	attrMap := make(map[string]any)
	for _, a := range spans[0].Attributes() {
		switch a.Value.Type() {
		case attribute.STRING:
			attrMap[string(a.Key)] = a.Value.AsString()
		case attribute.INT64:
			attrMap[string(a.Key)] = a.Value.AsInt64()
		case attribute.FLOAT64:
			attrMap[string(a.Key)] = a.Value.AsFloat64()
		case attribute.BOOL:
			attrMap[string(a.Key)] = a.Value.AsBool()
		case attribute.STRINGSLICE:
			attrMap[string(a.Key)] = a.Value.AsStringSlice()
		}
	}

	assert.Equal(t, "val", attrMap["str"])
	assert.Equal(t, int64(3), attrMap["int"])
	assert.Equal(t, int64(456), attrMap["int64"])
	assert.InEpsilon(t, 3.14, attrMap["float"], 0.001)
	assert.Equal(t, true, attrMap["bool"])
	assert.Equal(t, []string{"a", "b"}, attrMap["slice"])
	assert.Equal(t, "{}", attrMap["unknown"])
}

func TestOTelSpan_WriteWithoutRenderer(t *testing.T) {
	sr, tp := setupRecorder()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracer("test-tracer")
	_, span := tracer.Start(context.Background(), "log-test")
	n, err := span.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	events := spans[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "log", events[0].Name)
	assert.Equal(t, "hello", events[0].Attributes[0].Value.AsString())
}

func TestOTelSpan_RecordError(t *testing.T) {
	sr, tp := setupRecorder()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracer("test-tracer")
	_, span := tracer.Start(context.Background(), "failing")
	span.RecordError(errors.New("compile failed"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "compile failed", spans[0].Status().Description)
}

func TestOTelTracer_Detached(t *testing.T) {
	sr, tp := setupRecorder()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := telemetry.NewOTelTracer("test-tracer")
	ctx, parent := tracer.Start(context.Background(), "watch")
	_, child := tracer.Start(ctx, "rebuild", ports.WithDetached())
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.False(t, spans[0].Parent().IsValid())
}

func TestSetup_ForwardsToRenderer(t *testing.T) {
	rec := &recordingRenderer{}
	tracer, shutdown := telemetry.Setup(rec)
	defer func() { _ = shutdown(context.Background()) }()

	_, span := tracer.Start(context.Background(), "constants")
	_, err := span.Write([]byte("constants/locale.js\n"))
	require.NoError(t, err)
	span.End()

	_, started, completed, logs := rec.snapshot()
	assert.Equal(t, []string{"constants"}, started)
	assert.Equal(t, []error{nil}, completed)
	assert.Equal(t, "constants/locale.js\n", logs)
}

func TestBatchProcessor_FlushesOnSize(t *testing.T) {
	var flushed [][]byte
	bp := telemetry.NewBatchProcessor(4, time.Hour, func(data []byte) {
		flushed = append(flushed, data)
	})

	_, err := bp.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Empty(t, flushed)

	_, err = bp.Write([]byte("cd"))
	require.NoError(t, err)
	require.NoError(t, bp.Close())

	assert.Equal(t, [][]byte{[]byte("abcd")}, flushed)

	_, err = bp.Write([]byte("x"))
	require.Error(t, err)
}

func TestNoOpTracer(t *testing.T) {
	t.Parallel()

	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	newCtx, span := tracer.Start(ctx, "noop", ports.WithDetached())
	assert.Equal(t, ctx, newCtx)

	n, err := span.Write([]byte("data"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	span.SetAttribute("k", 1)
	span.RecordError(errors.New("boom"))
	span.End()
	tracer.EmitPlan(ctx, []string{"constants"})
}
