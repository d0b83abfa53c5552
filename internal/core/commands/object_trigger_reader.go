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

// Package commands holds the steps of the two workflows. Each step is a
// cor.Command: it reads what earlier steps left in the chain context, does
// one thing and records either its output, a fatal error or a result that
// ends the chain early.
//
// Stage one (video uploaded):
//
//	ObjectTriggerReader -> TranscriptionJobStarter
//
// Stage two (caption written):
//
//	ObjectTriggerReader -> CaptionReader -> TranscriptExtractor -> IdentityResolver
//	-> SummaryConfigResolver -> SummaryCreator -> OutputConfigValidator
//	-> CaptionCanonicalizer -> SummaryWriter -> SummaryPersistToBigQuery
package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// ObjectTriggerReader parses a Cloud Storage notification and decides whether
// the workflow should run for it. Notifications that are not object
// creations, objects written by this service and keys without the expected
// extension end the chain with an "ignored" result.
type ObjectTriggerReader struct {
	cor.BaseCommand
	extension string
}

// NewObjectTriggerReader accepts keys ending in extension, compared without
// regard to case.
func NewObjectTriggerReader(name string, extension string) *ObjectTriggerReader {
	return &ObjectTriggerReader{BaseCommand: *cor.NewBaseCommand(name), extension: strings.ToLower(extension)}
}

func (c *ObjectTriggerReader) Execute(context cor.Context) {
	msg, ok := context.Get(c.GetInputParam()).(*cloud.EventMessage)
	if !ok {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("unexpected trigger input %T", context.Get(c.GetInputParam())))
		return
	}

	obj, err := cloud.ParseNotification(msg)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	// Always emitted, whatever the verbosity.
	slog.InfoContext(context.GetContext(), "storage event received",
		"bucket", obj.Bucket, "key", obj.Name, "event_type", obj.EventType)

	switch {
	case obj.Bucket == "" || obj.Name == "":
		c.ignore(context, obj, "event without bucket or key")
		return
	case obj.EventType != "" && obj.EventType != cloud.ObjectFinalize:
		c.ignore(context, obj, "not an object creation event")
		return
	case obj.WrittenByPipeline():
		c.ignore(context, obj, "object written by this service")
		return
	case !strings.HasSuffix(strings.ToLower(obj.Name), c.extension):
		c.ignore(context, obj, "key does not end in "+c.extension)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cloud.GetGCSObjectName(), obj)
	context.Add(c.GetOutputParam(), obj)
}

func (c *ObjectTriggerReader) ignore(context cor.Context, obj *cloud.GCSObject, reason string) {
	slog.InfoContext(context.GetContext(), "event ignored", "bucket", obj.Bucket, "key", obj.Name, "reason", reason)
	context.Add(cor.CtxResult, &model.Result{Status: model.StatusIgnored, Key: obj.Name})
	context.Halt(reason)
}
