// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestContextWithJobID(t *testing.T) {
	tests := []struct {
		name  string
		ctx   context.Context
		jobID string
		want  string
	}{
		{name: "nil context", ctx: nil, jobID: "job-123", want: "job-123"},
		{name: "background context", ctx: context.Background(), jobID: "job-456", want: "job-456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := ContextWithJobID(tt.ctx, tt.jobID)
			if got := JobIDFromContext(ctx); got != tt.want {
				t.Errorf("JobIDFromContext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequestIDFromContextEmpty(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{name: "nil context", ctx: nil},
		{name: "context without request ID", ctx: context.Background()},
		{name: "context with wrong type", ctx: context.WithValue(context.Background(), requestIDKey, 123)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequestIDFromContext(tt.ctx); got != "" {
				t.Errorf("RequestIDFromContext() = %q, want empty", got)
			}
		})
	}
}

func TestWithContextAddsCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf, Level: "info"})
	defer Configure(Config{})

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithJobID(ctx, "job-1")

	l := WithContext(ctx, WithComponent("test"))
	l.Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry[FieldRequestID] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry[FieldRequestID])
	}
	if entry[FieldJobID] != "job-1" {
		t.Errorf("job_id = %v, want job-1", entry[FieldJobID])
	}
	if entry[FieldComponent] != "test" {
		t.Errorf("component = %v, want test", entry[FieldComponent])
	}
	if entry["service"] != "hlsforge" {
		t.Errorf("service = %v, want hlsforge", entry["service"])
	}
}

func TestWithComponentFromContextAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf, Level: "info"})
	defer Configure(Config{})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

	l := WithComponentFromContext(ctx, "test")
	l.Info().Msg("test with trace")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if entry[FieldTraceID] != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace_id = %v", entry[FieldTraceID])
	}
	if entry[FieldSpanID] != "00f067aa0ba902b7" {
		t.Errorf("span_id = %v", entry[FieldSpanID])
	}
}
