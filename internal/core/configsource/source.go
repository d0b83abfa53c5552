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

// Package configsource resolves the per-video prompt and model selection.
//
// Each lookup is an ordered list of sources. A source reports one of four
// outcomes: Present (use it), Absent (expected, try the next source),
// Malformed (the document exists but cannot be used) or Anomalous (the read
// failed for an unexpected reason). FirstPresent walks the list and returns the
// first Present value, logging every other outcome at a severity that matches
// how surprising it is. No outcome aborts the lookup.
package configsource

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// Kind classifies the result of reading one configuration source.
type Kind int

const (
	Present Kind = iota
	Absent
	Malformed
	Anomalous
)

func (k Kind) String() string {
	switch k {
	case Present:
		return "present"
	case Absent:
		return "absent"
	case Malformed:
		return "malformed"
	case Anomalous:
		return "anomalous"
	}
	return "unknown"
}

// Outcome is the result of a single source read.
type Outcome[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

func PresentOf[T any](v T) Outcome[T] {
	return Outcome[T]{Kind: Present, Value: v}
}

func AbsentOf[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: Absent, Err: err}
}

func MalformedOf[T any](err error) Outcome[T] {
	return Outcome[T]{Kind: Malformed, Err: err}
}

// FromReadError classifies a storage read failure. Not-found is an expected
// absence; anything else, access denied included, is an anomaly.
func FromReadError[T any](err error) Outcome[T] {
	if errors.Is(err, model.ErrNotFound) {
		return Outcome[T]{Kind: Absent, Err: err}
	}
	return Outcome[T]{Kind: Anomalous, Err: err}
}

// Source is one named layer of a fallback chain.
type Source[T any] struct {
	Name string
	Load func(ctx context.Context) Outcome[T]
}

// FirstPresent returns the value of the first source that reports Present
// together with that source's name. ok is false when every source fell through.
func FirstPresent[T any](ctx context.Context, logger *slog.Logger, sources ...Source[T]) (value T, name string, ok bool) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, source := range sources {
		outcome := source.Load(ctx)
		switch outcome.Kind {
		case Present:
			logger.DebugContext(ctx, "config source selected", "source", source.Name)
			return outcome.Value, source.Name, true
		case Absent:
			logger.DebugContext(ctx, "config source absent", "source", source.Name, "reason", errString(outcome.Err))
		default:
			logger.WarnContext(ctx, "config source unusable, falling through",
				"source", source.Name, "outcome", outcome.Kind.String(), "error", errString(outcome.Err))
		}
	}
	return value, "", false
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
