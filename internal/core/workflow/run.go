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

package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/commands"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"github.com/jaycherian/gcp-go-caption-summary/internal/telemetry"
)

// ErrNoResult is returned when a workflow finished without errors but also
// without reporting a status.
var ErrNoResult = errors.New("workflow finished without a result")

// NewContext prepares the chain context of one invocation triggered by msg.
func NewContext(ctx context.Context, msg *cloud.EventMessage) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, msg)
	return chainCtx
}

// beginInvocation gives the run a fresh invocation id, unless the caller
// already assigned one, and attaches it to the log lines of the run.
func beginInvocation(chainCtx cor.Context) {
	invocationID, _ := chainCtx.Get(commands.ParamInvocationID).(string)
	if invocationID == "" {
		invocationID = uuid.NewString()
		chainCtx.Add(commands.ParamInvocationID, invocationID)
	}
	chainCtx.SetContext(telemetry.WithInvocationID(chainCtx.GetContext(), invocationID))
}

// Outcome reads the result of a finished chain. Errors recorded by the
// commands are joined in command name order.
func Outcome(chainCtx cor.Context) (*model.Result, error) {
	if chainCtx.HasErrors() {
		errs := chainCtx.GetErrors()
		names := make([]string, 0, len(errs))
		for name := range errs {
			names = append(names, name)
		}
		sort.Strings(names)

		joined := make([]error, 0, len(names))
		for _, name := range names {
			joined = append(joined, fmt.Errorf("%s: %w", name, errs[name]))
		}
		return nil, errors.Join(joined...)
	}
	if result, ok := chainCtx.Get(cor.CtxResult).(*model.Result); ok {
		return result, nil
	}
	return nil, ErrNoResult
}

// Run executes workflow for one notification and returns its outcome.
func Run(ctx context.Context, workflow cor.Command, msg *cloud.EventMessage) (*model.Result, error) {
	chainCtx := NewContext(ctx, msg)
	workflow.Execute(chainCtx)
	return Outcome(chainCtx)
}
