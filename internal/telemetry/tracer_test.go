// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"context"
	"testing"

	"github.com/ManuGH/launchpad/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false, ExporterType: "grpc"})
	require.NoError(t, err)
	assert.Nil(t, provider.tp)

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording(), "disabled tracing must install a noop tracer")
	span.End()

	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ServiceName: "test", ExporterType: "invalid"})
	require.Error(t, err)
	assert.Equal(t, "unsupported exporter type: invalid (supported: grpc, http)", err.Error())
}

func TestNewProvider_HTTPExporter(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "launchpad-test",
		ExporterType: config.TracingExporterHTTP,
		Endpoint:     "127.0.0.1:4318",
		SamplingRate: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = NewProvider(context.Background(), Config{})
	})

	_, span := Tracer("test").Start(context.Background(), "recorded")
	assert.True(t, span.IsRecording())
	span.End()

	// The collector is absent; shutdown may fail to export but must return.
	_ = provider.Shutdown(context.Background())
}

func TestSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", sampler(1).Description())
	assert.Equal(t, "AlwaysOffSampler", sampler(0).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestFromAppConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Version = "1.2.3"
	cfg.Tracing.Enabled = true
	cfg.Tracing.Endpoint = "otel:4317"

	got := FromAppConfig(cfg)
	assert.True(t, got.Enabled)
	assert.Equal(t, "launchpad", got.ServiceName)
	assert.Equal(t, "1.2.3", got.ServiceVersion)
	assert.Equal(t, config.TracingExporterGRPC, got.ExporterType)
	assert.Equal(t, "otel:4317", got.Endpoint)
}

func TestHTTPAttributes(t *testing.T) {
	attrs := HTTPAttributes("GET", "/api/demo/funnel", "/api/demo/funnel?", 200)
	require.Len(t, attrs, 4)
	assert.Contains(t, attrs, attribute.String(HTTPMethodKey, "GET"))
	assert.Contains(t, attrs, attribute.Int(HTTPStatusCodeKey, 200))
}

func TestChatAttributes(t *testing.T) {
	assert.Len(t, ChatAttributes("gpt-4o", false, 0), 2)

	attrs := ChatAttributes("gpt-4o", true, 429)
	require.Len(t, attrs, 3)
	assert.Contains(t, attrs, attribute.Bool(ChatCacheHitKey, true))
	assert.Contains(t, attrs, attribute.Int(ChatUpstreamCodeKey, 429))
}

func TestErrorAttributes(t *testing.T) {
	attrs := ErrorAttributes("timeout")
	assert.Equal(t, []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, "timeout"),
	}, attrs)
}
