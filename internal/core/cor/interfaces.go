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

// Package cor implements the chain of responsibility used to build every
// workflow of the service. A workflow is a Chain of Commands sharing a
// Context. Commands read their input from the context, write their output
// back, and either record an error (the invocation failed) or halt the chain
// (the invocation finished early with a result, e.g. an ignored event).
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	// CtxIn is the default input key. The chain fills it with the previous
	// command's output before running the next command.
	CtxIn = "__IN__"
	// CtxOut is the default output key.
	CtxOut = "__OUT__"
	// CtxResult holds the *model.Result of a workflow once one is known.
	CtxResult = "__RESULT__"
)

type Context interface {
	// SetContext replaces the Go context carrying cancellation and the
	// current span.
	SetContext(context context.Context)

	GetContext() context.Context

	// Add stores a value under key and returns the context for chaining.
	Add(key string, value interface{}) Context

	// AddError records a fatal error against the command that produced it.
	AddError(key string, err error)

	GetErrors() map[string]error

	Get(key string) interface{}

	Remove(key string)

	HasErrors() bool

	// Halt stops the chain after the current command without recording an
	// error. The reason is kept for tracing.
	Halt(reason string)

	IsHalted() bool

	HaltReason() string
}

type Executable interface {
	Execute(context Context)
}

type Command interface {
	Executable

	// GetName returns the unique name of the command, used in spans and metric names.
	GetName() string

	GetInputParam() string

	GetOutputParam() string

	// IsExecutable is checked before Execute. A command that is not
	// executable is skipped and its span marked as failed.
	IsExecutable(context Context) bool

	GetTracer() trace.Tracer

	GetMeter() metric.Meter

	GetSuccessCounter() metric.Int64Counter

	GetErrorCounter() metric.Int64Counter
}

type Chain interface {
	Command

	// ContinueOnFailure makes the chain run the remaining commands after an
	// error has been recorded.
	ContinueOnFailure(bool) Chain

	AddCommand(command Command) Chain
}
