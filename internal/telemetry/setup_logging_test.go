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

package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v: %s", err, buf.String())
	}
	return line
}

func TestHandlerUsesCloudLoggingKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, false))
	logger.Warn("caption promotion failed", "key", "a.srt")

	line := decode(t, &buf)
	assert.Equal(t, "WARNING", line["severity"])
	assert.Equal(t, "caption promotion failed", line["message"])
	assert.Contains(t, line, "timestamp")
	assert.Equal(t, "a.srt", line["key"])
}

func TestHandlerAddsInvocationID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, false)).With("component", "test")
	ctx := WithInvocationID(context.Background(), "run-42")
	logger.InfoContext(ctx, "storage event received")

	line := decode(t, &buf)
	assert.Equal(t, "run-42", line[InvocationIDKey])
	assert.Equal(t, "test", line["component"])
}

func TestHandlerVerbosity(t *testing.T) {
	var quiet, verbose bytes.Buffer
	slog.New(NewHandler(&quiet, false)).Debug("config source absent")
	slog.New(NewHandler(&verbose, true)).Debug("config source absent")

	assert.Zero(t, quiet.Len())
	assert.NotZero(t, verbose.Len())
}

func TestInvocationIDMissing(t *testing.T) {
	assert.Equal(t, "", InvocationID(context.Background()))
}

func TestAuditHandlerIgnoresVerbosity(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewAuditHandler(&buf))
	logger.Debug("inference attempt")
	assert.Zero(t, buf.Len())

	ctx := WithInvocationID(context.Background(), "run-7")
	logger.InfoContext(ctx, "inference outcome", "model_id", "gemini-2.5-flash")
	line := decode(t, &buf)
	assert.Equal(t, "INFO", line["severity"])
	assert.Equal(t, AuditLogType, line["log_type"])
	assert.Equal(t, "run-7", line[InvocationIDKey])
}

func TestAuditLoggerIsSeparateFromDefault(t *testing.T) {
	defer slog.SetDefault(slog.Default())
	slog.SetDefault(slog.New(slog.NewJSONHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError})))

	assert.NotNil(t, AuditLogger())
	assert.NotSame(t, slog.Default(), AuditLogger())
	assert.True(t, AuditLogger().Enabled(context.Background(), slog.LevelInfo))
}
