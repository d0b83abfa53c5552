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
	"time"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/commands"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
)

// TranscriptionWorkflow requests captions for a newly uploaded video.
type TranscriptionWorkflow struct {
	cor.BaseCommand
	config    *cloud.Config
	publisher cloud.JobPublisher
	clock     func() time.Time
	chain     cor.Chain
}

func (w *TranscriptionWorkflow) Execute(context cor.Context) {
	beginInvocation(context)
	w.chain.Execute(context)
}

func (w *TranscriptionWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewObjectTriggerReader("video-trigger", w.config.Storage.VideoExtension))
	out.AddCommand(commands.NewTranscriptionJobStarter("start-transcription", w.publisher, w.config.Transcription, w.config.Storage.IngestionPrefix).
		WithClock(w.clock))
	w.chain = out
}

// NewTranscriptionPipeline builds the stage one workflow.
func NewTranscriptionPipeline(config *cloud.Config, serviceClients *cloud.ServiceClients) *TranscriptionWorkflow {
	return NewTranscriptionPipelineWithClock(config, serviceClients, time.Now)
}

// NewTranscriptionPipelineWithClock is NewTranscriptionPipeline with a fixed
// source of time for job names.
func NewTranscriptionPipelineWithClock(config *cloud.Config, serviceClients *cloud.ServiceClients, clock func() time.Time) *TranscriptionWorkflow {
	pipeline := &TranscriptionWorkflow{
		BaseCommand: *cor.NewBaseCommand("transcription-pipeline"),
		config:      config,
		publisher:   serviceClients.JobPublisher,
		clock:       clock,
	}
	pipeline.initializeChain()
	return pipeline
}
