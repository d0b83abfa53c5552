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

package cloud

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// QuotaAwareConversation is the Vertex AI implementation of the single-turn
// converse call. Requests wait on a token bucket so a burst of notifications
// does not exhaust the project quota.
type QuotaAwareConversation struct {
	ModelHandle    *genai.Models
	SafetySettings []*genai.SafetySetting
	RateLimit      *rate.Limiter
}

// NewQuotaAwareConversation allows requestsPerSecond calls per second with a
// burst of the same size.
func NewQuotaAwareConversation(models *genai.Models, requestsPerSecond int) *QuotaAwareConversation {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &QuotaAwareConversation{
		ModelHandle: models,
		RateLimit:   rate.NewLimiter(rate.Every(time.Second/time.Duration(requestsPerSecond)), requestsPerSecond),
	}
}

func (q *QuotaAwareConversation) Converse(ctx context.Context, req *model.ConverseRequest) (*model.ConverseResponse, error) {
	if err := q.RateLimit.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := q.ModelHandle.GenerateContent(ctx, req.ModelID, UserContents(req.UserText), GenerateConfig(req, q.SafetySettings))
	if err != nil {
		return nil, classifyInferenceError(req.ModelID, err)
	}
	return ConverseResponseFrom(resp), nil
}

// UserContents wraps text as the single user turn of a request.
func UserContents(text string) []*genai.Content {
	return []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: text}}}}
}

// GenerateConfig translates the sampling parameters. Parameters left nil in
// req.Params are not sent.
func GenerateConfig(req *model.ConverseRequest, safety []*genai.SafetySetting) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](req.Params.Temperature),
		MaxOutputTokens: req.Params.MaxTokens,
		SafetySettings:  safety,
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}}
	}
	if req.Params.TopP != nil {
		config.TopP = genai.Ptr[float32](*req.Params.TopP)
	}
	if req.Params.TopK != nil {
		config.TopK = genai.Ptr[float32](float32(*req.Params.TopK))
	}
	return config
}

// ConverseResponseFrom flattens the parts of every candidate into content
// blocks. Thought parts are reported as reasoning and parts without text as
// other.
func ConverseResponseFrom(resp *genai.GenerateContentResponse) *model.ConverseResponse {
	out := &model.ConverseResponse{}
	if resp == nil {
		return out
	}
	if resp.UsageMetadata != nil {
		out.Usage = model.TokenUsage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		}
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			switch {
			case part.Thought:
				out.Content = append(out.Content, model.ContentBlock{Kind: model.ContentReasoning, Text: part.Text})
			case part.Text != "":
				out.Content = append(out.Content, model.ContentBlock{Kind: model.ContentText, Text: part.Text})
			default:
				out.Content = append(out.Content, model.ContentBlock{Kind: model.ContentOther})
			}
		}
	}
	return out
}

func classifyInferenceError(modelID string, err error) error {
	code := 0
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		code = apiErr.Code
	case errors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return model.Wrap(model.ErrInferenceAuth, "converse "+modelID, err)
	}
	return err
}
