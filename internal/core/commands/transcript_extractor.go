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
	"log/slog"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/transcript"
)

// TranscriptExtractor reduces the caption to plain text. A caption with no
// spoken text ends the chain with an "empty_transcript" result and the model
// is never called.
type TranscriptExtractor struct {
	cor.BaseCommand
}

func NewTranscriptExtractor(name string) *TranscriptExtractor {
	return &TranscriptExtractor{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *TranscriptExtractor) Execute(context cor.Context) {
	caption := context.Get(c.GetInputParam()).(string)
	text := transcript.ExtractPlainText(caption)

	if text == "" {
		obj, _ := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)
		result := &model.Result{Status: model.StatusEmptyTranscript}
		if obj != nil {
			result.Key = obj.Name
		}
		slog.InfoContext(context.GetContext(), "caption has no text to summarize", "key", result.Key)
		c.GetSuccessCounter().Add(context.GetContext(), 1)
		context.Add(cor.CtxResult, result)
		context.Halt("empty transcript")
		return
	}

	slog.DebugContext(context.GetContext(), "transcript extracted", "chars", len(text))
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamTranscript, text)
	context.Add(c.GetOutputParam(), text)
}
