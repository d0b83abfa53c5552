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

package inference

import (
	"strings"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// IsHaikuFamily reports whether modelID belongs to the family that rejects
// temperature and top-p in the same request.
func IsHaikuFamily(modelID string) bool {
	return strings.Contains(strings.ToLower(modelID), "haiku")
}

// BuildParams maps a model configuration onto the sampling parameters accepted
// by modelID. MaxTokens and Temperature are always set. TopP and TopK are set
// only when strictly positive, and never for the haiku family.
func BuildParams(modelID string, cfg model.ModelConfig, maxTokens int32) model.InferenceParams {
	if maxTokens <= 0 {
		maxTokens = model.DefaultMaxTokens
	}
	params := model.InferenceParams{
		MaxTokens:   maxTokens,
		Temperature: float32(cfg.Temperature),
	}
	if IsHaikuFamily(modelID) {
		return params
	}
	if cfg.TopP > 0 {
		topP := float32(cfg.TopP)
		params.TopP = &topP
	}
	if cfg.TopK > 0 && cfg.TopK <= model.MaxTopK {
		topK := int32(cfg.TopK)
		params.TopK = &topK
	}
	return params
}
