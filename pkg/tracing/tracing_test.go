package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "test-service"})
	if err != nil {
		t.Fatalf("Init(disabled) returned error: %v", err)
	}
	if shutdown == nil {
		t.Fatal("shutdown function should not be nil even when disabled")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown(disabled) returned error: %v", err)
	}
}

func TestInit_Enabled(t *testing.T) {
	// Non-routable endpoint: the exporter never connects, but the SDK
	// initializes because export is batched and async.
	cfg := Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		Endpoint:       "127.0.0.1:0",
		SampleRate:     1.0,
		Enabled:        true,
	}

	shutdown, err := Init(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Init(enabled) returned error: %v", err)
	}

	tp := otel.GetTracerProvider()
	if _, ok := tp.(*sdktrace.TracerProvider); !ok {
		t.Errorf("expected *sdktrace.TracerProvider, got %T", tp)
	}

	if err := shutdown(context.Background()); err != nil {
		t.Logf("shutdown returned (expected with unreachable endpoint): %v", err)
	}
}

func TestInit_SampleRates(t *testing.T) {
	for _, rate := range []float64{0.0, 0.5, 1.0} {
		cfg := Config{
			ServiceName: "test-service",
			Endpoint:    "127.0.0.1:0",
			SampleRate:  rate,
			Enabled:     true,
		}
		shutdown, err := Init(context.Background(), cfg)
		if err != nil {
			t.Fatalf("Init(rate=%v) returned error: %v", rate, err)
		}
		_ = shutdown(context.Background())
	}
}
