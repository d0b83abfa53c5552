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

// Package workflow assembles the commands of the caption summary service into
// the two chains triggered by storage notifications, and runs them.
package workflow

import (
	"log/slog"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/commands"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/configsource"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/inference"
	"github.com/jaycherian/gcp-go-caption-summary/internal/telemetry"
)

// CaptionSummaryWorkflow turns a newly written caption into a Markdown
// summary of the video.
type CaptionSummaryWorkflow struct {
	cor.BaseCommand
	config   *cloud.Config
	store    cloud.ObjectStore
	invoker  *inference.Invoker
	ledger   cloud.SummaryLedger
	prompts  *configsource.PromptResolver
	models   *configsource.ModelResolver
	profiles inference.Profiles
	chain    cor.Chain
}

func (w *CaptionSummaryWorkflow) Execute(context cor.Context) {
	beginInvocation(context)
	w.chain.Execute(context)
}

func (w *CaptionSummaryWorkflow) initializeChain() {
	layout := w.config.Layout()
	out := cor.NewBaseChain(w.GetName())

	out.AddCommand(commands.NewObjectTriggerReader("caption-trigger", w.config.Storage.CaptionExtension))
	out.AddCommand(commands.NewCaptionReader("read-caption", w.store))
	out.AddCommand(commands.NewTranscriptExtractor("extract-transcript"))
	out.AddCommand(commands.NewIdentityResolver("resolve-identity", w.config.Storage.IngestionPrefix))
	out.AddCommand(commands.NewSummaryConfigResolver("resolve-summary-config", w.prompts, w.models, w.profiles))
	out.AddCommand(commands.NewSummaryCreator("generate-summary", w.invoker))
	out.AddCommand(commands.NewOutputConfigValidator("validate-output-config", w.config.Summary.OutputBucket))
	out.AddCommand(commands.NewCaptionCanonicalizer("canonicalize-caption", w.store, layout))
	out.AddCommand(commands.NewSummaryWriter("write-summary", w.store, layout, w.config.Summary.OutputBucket))
	out.AddCommand(commands.NewSummaryPersistToBigQuery("write-to-bigquery", w.ledger, w.config.Summary.OutputBucket))

	w.chain = out
}

// NewCaptionSummaryPipeline builds the stage two workflow. guardrails is the
// base system prompt every video starts from.
func NewCaptionSummaryPipeline(config *cloud.Config, serviceClients *cloud.ServiceClients, guardrails string) *CaptionSummaryWorkflow {
	logger := slog.Default()
	layout := config.Layout()

	pipeline := &CaptionSummaryWorkflow{
		BaseCommand: *cor.NewBaseCommand("caption-summary-pipeline"),
		config:      config,
		store:       serviceClients.ObjectStore,
		invoker:     inference.NewInvoker(serviceClients.Conversation, config.Inference.MaxTokens, telemetry.AuditLogger()),
		ledger:      serviceClients.Ledger,
		prompts:     configsource.NewPromptResolver(serviceClients.ObjectStore, layout, guardrails, logger),
		models:      configsource.NewModelResolver(serviceClients.ObjectStore, layout, config.DefaultModel(), logger),
		profiles:    inference.DefaultProfiles(config.InferenceProfiles),
	}
	pipeline.initializeChain()
	return pipeline
}
