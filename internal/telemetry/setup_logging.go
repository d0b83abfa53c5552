// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package telemetry sets up the observability of the service: structured
// logging compatible with Google Cloud Logging, OpenTelemetry tracing and
// metrics, and the invocation id that ties the log lines of one workflow run
// together.
package telemetry

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"go.opentelemetry.io/otel/trace"
)

// InvocationIDKey is the log attribute holding the workflow run id.
const InvocationIDKey = "invocation_id"

type invocationIDContextKey struct{}

// WithInvocationID returns a context whose log lines carry id.
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDContextKey{}, id)
}

// InvocationID returns the id stored by WithInvocationID, or "".
func InvocationID(ctx context.Context) string {
	id, _ := ctx.Value(invocationIDContextKey{}).(string)
	return id
}

// contextLogHandler adds the trace correlation fields expected by Cloud
// Logging and the invocation id to every record logged with a context.
type contextLogHandler struct {
	slog.Handler
}

func handlerWithContext(handler slog.Handler) *contextLogHandler {
	return &contextLogHandler{Handler: handler}
}

func (t *contextLogHandler) Handle(ctx context.Context, record slog.Record) error {
	if ctx == nil {
		return t.Handler.Handle(ctx, record)
	}
	// See: https://cloud.google.com/logging/docs/structured-logging#special-payload-fields
	if s := trace.SpanContextFromContext(ctx); s.IsValid() {
		record.AddAttrs(
			slog.Any("logging.googleapis.com/trace", s.TraceID()),
			slog.Any("logging.googleapis.com/spanId", s.SpanID()),
			slog.Bool("logging.googleapis.com/trace_sampled", s.TraceFlags().IsSampled()),
		)
	}
	if id := InvocationID(ctx); id != "" {
		record.AddAttrs(slog.String(InvocationIDKey, id))
	}
	return t.Handler.Handle(ctx, record)
}

func (t *contextLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return handlerWithContext(t.Handler.WithAttrs(attrs))
}

func (t *contextLogHandler) WithGroup(name string) slog.Handler {
	return handlerWithContext(t.Handler.WithGroup(name))
}

// replacer renames the default slog keys to the ones Cloud Logging parses.
func replacer(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		a.Key = "severity"
		// https://cloud.google.com/logging/docs/reference/v2/rest/v2/LogEntry#LogSeverity
		if level, ok := a.Value.Any().(slog.Level); ok && level == slog.LevelWarn {
			a.Value = slog.StringValue("WARNING")
		}
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

// NewHandler builds the service's log handler writing to w. Terminals get
// human readable text, anything else gets Cloud Logging JSON. Debug records
// are emitted only when verbose is set.
func NewHandler(w io.Writer, verbose bool) slog.Handler {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return handlerWithContext(newBaseHandler(w, level))
}

func newBaseHandler(w io.Writer, level slog.Level) slog.Handler {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: replacer})
}

// AuditLogType tags the records of the inference audit trail.
const AuditLogType = "audit"

// NewAuditHandler builds the handler of the inference audit trail. Its level
// is fixed at INFO so audit records never depend on the service verbosity,
// and every record carries log_type=audit.
func NewAuditHandler(w io.Writer) slog.Handler {
	return handlerWithContext(newBaseHandler(w, slog.LevelInfo)).
		WithAttrs([]slog.Attr{slog.String("log_type", AuditLogType)})
}

var auditLogger atomic.Pointer[slog.Logger]

// AuditLogger returns the logger of the inference audit trail.
func AuditLogger() *slog.Logger {
	if logger := auditLogger.Load(); logger != nil {
		return logger
	}
	logger := slog.New(NewAuditHandler(os.Stdout))
	auditLogger.CompareAndSwap(nil, logger)
	return auditLogger.Load()
}

// SetupLogging installs the service's handler as the slog default, routes
// the standard log package through it and resets the audit logger.
func SetupLogging(verbose bool) *slog.Logger {
	logger := slog.New(NewHandler(os.Stdout, verbose))
	slog.SetDefault(logger)
	log.SetFlags(0)
	auditLogger.Store(slog.New(NewAuditHandler(os.Stdout)))
	return logger
}
