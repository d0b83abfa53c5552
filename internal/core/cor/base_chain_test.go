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

package cor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/stretchr/testify/assert"
)

type stepCommand struct {
	cor.BaseCommand
	run func(ctx cor.Context)
}

func newStep(name string, run func(ctx cor.Context)) *stepCommand {
	return &stepCommand{BaseCommand: *cor.NewBaseCommand(name), run: run}
}

func (s *stepCommand) Execute(ctx cor.Context) {
	s.run(ctx)
}

func newContext(input interface{}) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, input)
	return ctx
}

func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("pipe")
	chain.AddCommand(newStep("double", func(ctx cor.Context) {
		ctx.Add(cor.CtxOut, ctx.Get(cor.CtxIn).(int)*2)
	}))
	chain.AddCommand(newStep("increment", func(ctx cor.Context) {
		ctx.Add(cor.CtxOut, ctx.Get(cor.CtxIn).(int)+1)
	}))
	chain.AddCommand(newStep("store", func(ctx cor.Context) {
		ctx.Add("answer", ctx.Get(cor.CtxIn))
	}))

	ctx := newContext(20)
	chain.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, 41, ctx.Get("answer"))
	assert.Nil(t, ctx.Get(cor.CtxOut))
}

func TestChainStopsOnError(t *testing.T) {
	ran := false
	chain := cor.NewBaseChain("errors")
	chain.AddCommand(newStep("fail", func(ctx cor.Context) {
		ctx.AddError("fail", errors.New("boom"))
	}))
	chain.AddCommand(newStep("after", func(ctx cor.Context) { ran = true }))

	ctx := newContext("x")
	chain.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.EqualError(t, ctx.GetErrors()["fail"], "boom")
	assert.False(t, ran)
}

func TestChainContinueOnFailure(t *testing.T) {
	ran := false
	chain := cor.NewBaseChain("continue").ContinueOnFailure(true)
	chain.AddCommand(newStep("fail", func(ctx cor.Context) {
		ctx.AddError("fail", errors.New("boom"))
		ctx.Add(cor.CtxOut, "still")
	}))
	chain.AddCommand(newStep("after", func(ctx cor.Context) { ran = true }))

	chain.Execute(newContext("x"))
	assert.True(t, ran)
}

func TestChainHaltsWithoutError(t *testing.T) {
	ran := false
	chain := cor.NewBaseChain("halt")
	chain.AddCommand(newStep("halt", func(ctx cor.Context) {
		ctx.Add(cor.CtxResult, "ignored")
		ctx.Halt("not a caption")
	}))
	chain.AddCommand(newStep("after", func(ctx cor.Context) { ran = true }))

	ctx := newContext("x")
	chain.Execute(ctx)

	assert.False(t, ran)
	assert.False(t, ctx.HasErrors())
	assert.True(t, ctx.IsHalted())
	assert.Equal(t, "not a caption", ctx.HaltReason())
	assert.Equal(t, "ignored", ctx.Get(cor.CtxResult))
}

func TestChainSkipsCommandWithoutInput(t *testing.T) {
	ran := false
	chain := cor.NewBaseChain("skip")
	chain.AddCommand(newStep("needs-input", func(ctx cor.Context) { ran = true }))

	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	chain.Execute(ctx)

	assert.False(t, ran)
	assert.False(t, ctx.HasErrors())
}

func TestCommandParamDefaults(t *testing.T) {
	cmd := cor.NewBaseCommand("defaults")
	assert.Equal(t, cor.CtxIn, cmd.GetInputParam())
	assert.Equal(t, cor.CtxOut, cmd.GetOutputParam())

	cmd.InputParamName = "custom_in"
	cmd.OutputParamName = "custom_out"
	assert.Equal(t, "custom_in", cmd.GetInputParam())
	assert.Equal(t, "custom_out", cmd.GetOutputParam())
}
