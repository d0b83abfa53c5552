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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

const (
	TranscriptStart = "=== TRANSCRIPT START ==="
	TranscriptEnd   = "=== TRANSCRIPT END ==="
)

// Conversation is the single-turn exchange offered by the inference service.
// Implementations map provider authorization failures to model.ErrInferenceAuth.
type Conversation interface {
	Converse(ctx context.Context, req *model.ConverseRequest) (*model.ConverseResponse, error)
}

// Invoker issues the summarization call. When a profile-routed call is
// rejected for authorization it retries exactly once against the raw model id.
type Invoker struct {
	conversation Conversation
	maxTokens    int32
	audit        *slog.Logger
}

// NewInvoker creates an invoker. A nil audit logger falls back to slog.Default.
func NewInvoker(conversation Conversation, maxTokens int32, audit *slog.Logger) *Invoker {
	if audit == nil {
		audit = slog.Default()
	}
	if maxTokens <= 0 {
		maxTokens = model.DefaultMaxTokens
	}
	return &Invoker{conversation: conversation, maxTokens: maxTokens, audit: audit}
}

// UserTurn wraps the transcript between fixed markers with the output format
// instruction.
func UserTurn(text string) string {
	var b strings.Builder
	b.WriteString("Summarize the transcript below following the system instructions.\n")
	b.WriteString("Return pure Markdown only. Do not wrap the answer in a fenced code block.\n\n")
	b.WriteString(TranscriptStart)
	b.WriteString("\n")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(TranscriptEnd)
	return b.String()
}

// Invoke summarizes text with cfg. profile is the routing id resolved for
// cfg.ID, or "" to call the model directly.
func (i *Invoker) Invoke(ctx context.Context, text, systemPrompt string, cfg model.ModelConfig, profile string) (*model.Summary, error) {
	req := &model.ConverseRequest{
		ModelID:      cfg.ID,
		SystemPrompt: systemPrompt,
		UserText:     UserTurn(text),
		Params:       BuildParams(cfg.ID, cfg, i.maxTokens),
	}
	if profile != "" {
		req.ModelID = profile
	}

	summary, err := i.attempt(ctx, cfg.ID, req, len(text))
	if err == nil {
		return summary, nil
	}
	if profile == "" || profile == cfg.ID || !errors.Is(err, model.ErrInferenceAuth) {
		return nil, err
	}

	i.audit.InfoContext(ctx, "inference profile rejected, retrying with model id",
		"model_id", cfg.ID, "profile", profile, "error", err)
	retry := *req
	retry.ModelID = cfg.ID
	summary, retryErr := i.attempt(ctx, cfg.ID, &retry, len(text))
	if retryErr != nil {
		return nil, fmt.Errorf("%w (profile attempt via %s: %v)", retryErr, profile, err)
	}
	summary.FallbackUsed = true
	return summary, nil
}

func (i *Invoker) attempt(ctx context.Context, modelID string, req *model.ConverseRequest, inputChars int) (*model.Summary, error) {
	i.audit.InfoContext(ctx, "inference attempt",
		"model_id", modelID, "invoked_id", req.ModelID, "input_chars", inputChars)

	resp, err := i.conversation.Converse(ctx, req)
	if err != nil {
		i.audit.InfoContext(ctx, "inference failed",
			"model_id", modelID, "invoked_id", req.ModelID, "error", err)
		return nil, err
	}

	text, ok := FirstText(resp.Content)
	if !ok {
		i.audit.InfoContext(ctx, "inference returned no text",
			"model_id", modelID, "invoked_id", req.ModelID, "blocks", len(resp.Content))
		return nil, model.Wrap(model.ErrNoTextInResponse, req.ModelID, nil)
	}

	i.audit.InfoContext(ctx, "inference succeeded",
		"model_id", modelID,
		"invoked_id", req.ModelID,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"output_chars", len(text))

	return &model.Summary{
		Text:      text,
		ModelID:   modelID,
		InvokedID: req.ModelID,
		Usage:     resp.Usage,
	}, nil
}

// FirstText returns the first text-bearing block of a response.
func FirstText(blocks []model.ContentBlock) (string, bool) {
	for _, block := range blocks {
		if block.Kind == model.ContentText && block.Text != "" {
			return block.Text, true
		}
	}
	return "", false
}
