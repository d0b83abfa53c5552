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
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/configsource"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/inference"
)

// SummaryConfigResolver looks up the system prompt and the model selection of
// the video and resolves the routing profile of the selected model. Every
// lookup falls back to defaults, so this step never fails.
type SummaryConfigResolver struct {
	cor.BaseCommand
	prompts  *configsource.PromptResolver
	models   *configsource.ModelResolver
	profiles inference.Profiles
}

func NewSummaryConfigResolver(name string, prompts *configsource.PromptResolver, models *configsource.ModelResolver, profiles inference.Profiles) *SummaryConfigResolver {
	out := &SummaryConfigResolver{BaseCommand: *cor.NewBaseCommand(name), prompts: prompts, models: models, profiles: profiles}
	out.InputParamName = ParamIdentity
	return out
}

func (c *SummaryConfigResolver) Execute(context cor.Context) {
	identity := context.Get(ParamIdentity).(string)
	obj := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)

	systemPrompt := c.prompts.Resolve(context.GetContext(), obj.Bucket, identity)
	cfg, layer := c.models.Resolve(context.GetContext(), obj.Bucket, identity)
	profile := c.profiles.Resolve(cfg.ID)

	slog.InfoContext(context.GetContext(), "summary configuration resolved",
		"identity", identity,
		"model_id", cfg.ID,
		"model_source", layer,
		"profile", profile,
		"temperature", cfg.Temperature,
		"top_p", cfg.TopP,
		"top_k", cfg.TopK,
		"system_prompt_chars", len(systemPrompt))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamSystemPrompt, systemPrompt)
	context.Add(ParamModelConfig, cfg)
	context.Add(ParamProfile, profile)
	context.Add(c.GetOutputParam(), cfg)
}
