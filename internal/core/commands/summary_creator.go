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

package commands

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/inference"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// SummaryCreator sends the transcript to the model. Any failure that remains
// after the invoker's single fallback is fatal for the invocation.
type SummaryCreator struct {
	cor.BaseCommand
	invoker            *inference.Invoker
	inputTokenCounter  metric.Int64Counter
	outputTokenCounter metric.Int64Counter
	fallbackCounter    metric.Int64Counter
}

func NewSummaryCreator(name string, invoker *inference.Invoker) *SummaryCreator {
	out := &SummaryCreator{BaseCommand: *cor.NewBaseCommand(name), invoker: invoker}
	out.InputParamName = ParamTranscript

	out.inputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.inference.token.input", out.GetName()))
	out.outputTokenCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.inference.token.output", out.GetName()))
	out.fallbackCounter, _ = out.GetMeter().Int64Counter(fmt.Sprintf("%s.inference.fallback", out.GetName()))
	return out
}

func (c *SummaryCreator) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(ParamSystemPrompt) != nil &&
		context.Get(ParamModelConfig) != nil
}

func (c *SummaryCreator) Execute(context cor.Context) {
	text := context.Get(ParamTranscript).(string)
	systemPrompt := context.Get(ParamSystemPrompt).(string)
	cfg := context.Get(ParamModelConfig).(model.ModelConfig)
	profile, _ := context.Get(ParamProfile).(string)

	summary, err := c.invoker.Invoke(context.GetContext(), text, systemPrompt, cfg, profile)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("summary generation with %s failed: %w", cfg.ID, err))
		return
	}

	attrs := metric.WithAttributes(attribute.String("model_id", summary.ModelID))
	c.inputTokenCounter.Add(context.GetContext(), int64(summary.Usage.InputTokens), attrs)
	c.outputTokenCounter.Add(context.GetContext(), int64(summary.Usage.OutputTokens), attrs)
	if summary.FallbackUsed {
		c.fallbackCounter.Add(context.GetContext(), 1, attrs)
	}
	trace.SpanFromContext(context.GetContext()).SetAttributes(
		attribute.String("model_id", summary.ModelID),
		attribute.String("invoked_id", summary.InvokedID),
		attribute.Bool("fallback_used", summary.FallbackUsed),
	)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamSummary, summary)
	context.Add(c.GetOutputParam(), summary)
}
