package observe

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

// InitProvider registers with the default Prometheus registry, so it can
// only run once per test binary.
func TestInitProvider(t *testing.T) {
	origMP, origTP := otel.GetMeterProvider(), otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetMeterProvider(origMP)
		otel.SetTracerProvider(origTP)
	})

	ctx := context.Background()
	shutdown, err := InitProvider(ctx, "1.2.3")
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			t.Errorf("shutdown: %v", err)
		}
	}()

	counter, err := otel.Meter(meterName).Int64Counter("painvoice.provider.check")
	if err != nil {
		t.Fatal(err)
	}
	counter.Add(ctx, 1)

	sctx, span := StartSpan(ctx, "provider-check")
	if CorrelationID(sctx) == "" {
		t.Error("installed tracer provider does not record spans")
	}
	span.End()

	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"painvoice_provider_check", `service_name="painvoice"`, `service_version="1.2.3"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("scrape output missing %s", want)
		}
	}
}
