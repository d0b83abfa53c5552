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
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/inference"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/transcript"
)

// SummaryWriter stores the attributed summary document under a key derived
// from the identity and the model slug.
type SummaryWriter struct {
	cor.BaseCommand
	store        cloud.ObjectStore
	layout       model.StorageLayout
	outputBucket string
}

func NewSummaryWriter(name string, store cloud.ObjectStore, layout model.StorageLayout, outputBucket string) *SummaryWriter {
	out := &SummaryWriter{BaseCommand: *cor.NewBaseCommand(name), store: store, layout: layout, outputBucket: outputBucket}
	out.InputParamName = ParamSummary
	return out
}

func (c *SummaryWriter) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) && context.Get(ParamIdentity) != nil
}

func (c *SummaryWriter) Execute(context cor.Context) {
	summary := context.Get(ParamSummary).(*model.Summary)
	identity := context.Get(ParamIdentity).(string)

	key := c.layout.SummaryKey(identity, inference.ModelSlug(summary.ModelID))
	document := transcript.SummaryAttribution(summary.ModelID) + summary.Text

	if err := c.store.Put(context.GetContext(), c.outputBucket, key, []byte(document), SummaryContentType); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), model.Wrap(model.ErrArtifactWrite, "gs://"+c.outputBucket+"/"+key, err))
		return
	}

	slog.InfoContext(context.GetContext(), "summary written",
		"identity", identity, "bucket", c.outputBucket, "key", key, "model_id", summary.ModelID, "chars", len(document))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamSummaryKey, key)
	context.Add(cor.CtxResult, &model.Result{
		Status:       model.StatusSummaryCreated,
		OutputBucket: c.outputBucket,
		OutputKey:    key,
	})
	context.Add(c.GetOutputParam(), key)
}
