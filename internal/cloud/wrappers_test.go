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

package cloud_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGenerateConfigOmitsUnsetParameters(t *testing.T) {
	req := &model.ConverseRequest{
		ModelID:      "gemini-2.5-flash",
		SystemPrompt: "guardrails",
		Params:       model.InferenceParams{MaxTokens: 2048, Temperature: 0.3},
	}
	config := cloud.GenerateConfig(req, cloud.DefaultSafetySettings)

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0.3, *config.Temperature, 1e-6)
	assert.Equal(t, int32(2048), config.MaxOutputTokens)
	assert.Nil(t, config.TopP)
	assert.Nil(t, config.TopK)
	require.NotNil(t, config.SystemInstruction)
	assert.Equal(t, "guardrails", config.SystemInstruction.Parts[0].Text)
	assert.Len(t, config.SafetySettings, 4)
}

func TestGenerateConfigSetsTopPAndTopK(t *testing.T) {
	topP := float32(0.8)
	topK := int32(32)
	req := &model.ConverseRequest{Params: model.InferenceParams{MaxTokens: 10, Temperature: 1, TopP: &topP, TopK: &topK}}
	config := cloud.GenerateConfig(req, nil)

	require.NotNil(t, config.TopP)
	require.NotNil(t, config.TopK)
	assert.InDelta(t, 0.8, *config.TopP, 1e-6)
	assert.InDelta(t, 32, *config.TopK, 1e-6)
	assert.Nil(t, config.SystemInstruction)
}

func TestConverseResponseFrom(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{
				{Text: "let me think", Thought: true},
				{Text: "# Summary"},
				{InlineData: &genai.Blob{MIMEType: "image/png"}},
			}}},
			nil,
			{Content: nil},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{PromptTokenCount: 100, CandidatesTokenCount: 20},
	}
	out := cloud.ConverseResponseFrom(resp)

	assert.Equal(t, []model.ContentBlock{
		{Kind: model.ContentReasoning, Text: "let me think"},
		{Kind: model.ContentText, Text: "# Summary"},
		{Kind: model.ContentOther},
	}, out.Content)
	assert.Equal(t, model.TokenUsage{InputTokens: 100, OutputTokens: 20}, out.Usage)
	assert.Empty(t, cloud.ConverseResponseFrom(nil).Content)
}

func TestUserContents(t *testing.T) {
	contents := cloud.UserContents("hello")
	require.Len(t, contents, 1)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "hello", contents[0].Parts[0].Text)
}
