package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitTracerDisabled(t *testing.T) {
	tp, err := InitTracer(context.Background(), TracerConfig{Enabled: false}, zerolog.Nop())
	if err != nil {
		t.Fatalf("init tracer: %v", err)
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown disabled provider: %v", err)
	}

	_, span := StartSpan(context.Background(), "test")
	RecordError(span, errors.New("boom"))
	span.End()
}

type retainingExporter struct {
	*tracetest.InMemoryExporter
}

func (retainingExporter) Shutdown(context.Context) error { return nil }

func TestShutdownFlushesErrorSpans(t *testing.T) {
	exporter := retainingExporter{tracetest.NewInMemoryExporter()}
	tp, err := InitTracer(context.Background(), TracerConfig{
		ServiceName: "cromwellcli",
		Enabled:     true,
		SampleRate:  1,
		Exporter:    exporter,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("init tracer: %v", err)
	}
	t.Cleanup(func() {
		_, _ = InitTracer(context.Background(), TracerConfig{}, zerolog.Nop())
	})

	_, span := StartSpan(context.Background(), "batch.run")
	RecordError(span, errors.New("object count exceeds limit"))
	span.End()

	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Name != "batch.run" || spans[0].Status.Code != codes.Error {
		t.Fatalf("unexpected exported spans %+v", spans)
	}
}

func TestWrapTransportForwardsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	client := &http.Client{Transport: WrapTransport(http.DefaultTransport)}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestSamplerFor(t *testing.T) {
	if samplerFor(1).Description() != "AlwaysOnSampler" {
		t.Fatalf("unexpected sampler %s", samplerFor(1).Description())
	}
	if samplerFor(0).Description() != "AlwaysOffSampler" {
		t.Fatalf("unexpected sampler %s", samplerFor(0).Description())
	}
}
