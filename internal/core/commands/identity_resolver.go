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

// IdentityResolver derives the content identity from the caption key.
type IdentityResolver struct {
	cor.BaseCommand
	ingestionPrefix string
}

func NewIdentityResolver(name string, ingestionPrefix string) *IdentityResolver {
	out := &IdentityResolver{BaseCommand: *cor.NewBaseCommand(name), ingestionPrefix: ingestionPrefix}
	out.InputParamName = cloud.GetGCSObjectName()
	return out
}

func (c *IdentityResolver) Execute(context cor.Context) {
	obj := context.Get(c.GetInputParam()).(*cloud.GCSObject)
	identity := transcript.DeriveIdentityWithPrefix(obj.Name, c.ingestionPrefix)

	if identity == "" {
		slog.InfoContext(context.GetContext(), "event ignored", "key", obj.Name, "reason", "no identity in key")
		context.Add(cor.CtxResult, &model.Result{Status: model.StatusIgnored, Key: obj.Name})
		context.Halt("no identity in key")
		return
	}

	slog.DebugContext(context.GetContext(), "identity resolved", "key", obj.Name, "identity", identity)
	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamIdentity, identity)
	context.Add(c.GetOutputParam(), identity)
}
