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

// Package model defines the data structures that flow through the caption
// summary pipeline. These are transient objects: they are built per invocation,
// passed between commands through the chain context and never persisted as-is
// (the summary ledger row in persistent.go is the only exception).
//
// Structs:
//   - ModelConfig: The per-video model selection with its sampling parameters.
//   - InferenceParams: The sampling parameters actually sent to the inference service.
//   - ConverseRequest / ConverseResponse: The single-turn exchange with the inference service.
//   - Summary: The text produced by the model plus its provenance.
//   - Result: The status an invocation reports back to the event system.
package model

import "math"

// Default sampling values applied whenever a model configuration omits them.
const (
	DefaultTemperature = 0.3
	DefaultTopP        = 0.9
	DefaultTopK        = 0
	DefaultMaxTokens   = 2048

	// MaxTopK is the largest topK the inference service accepts.
	MaxTopK = math.MaxInt32
)

// ModelConfig is the resolved model selection for one video. A TopK of zero
// means "omit the parameter".
type ModelConfig struct {
	ID          string  `json:"id" yaml:"id"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopP        float64 `json:"topP" yaml:"top_p"`
	TopK        int     `json:"topK" yaml:"top_k"`
}

// NewModelConfig wraps a bare model id with the default sampling parameters.
func NewModelConfig(id string) ModelConfig {
	return ModelConfig{
		ID:          id,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		TopK:        DefaultTopK,
	}
}

// InferenceParams are the sampling parameters sent with a converse call.
// Nil pointers are omitted from the request.
type InferenceParams struct {
	MaxTokens   int32
	Temperature float32
	TopP        *float32
	TopK        *int32
}

// ContentBlockKind tells text-bearing blocks apart from everything else a
// model may return (reasoning traces, tool calls, inline data).
type ContentBlockKind string

const (
	ContentText      ContentBlockKind = "text"
	ContentReasoning ContentBlockKind = "reasoning"
	ContentOther     ContentBlockKind = "other"
)

// ContentBlock is one block of a model response.
type ContentBlock struct {
	Kind ContentBlockKind
	Text string
}

// TokenUsage holds the provider-reported token counts of one call.
type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
}

// ConverseRequest is a single-turn exchange: a system prompt and one user turn.
type ConverseRequest struct {
	ModelID      string
	SystemPrompt string
	UserText     string
	Params       InferenceParams
}

// ConverseResponse is what the inference service returned for a ConverseRequest.
type ConverseResponse struct {
	Content []ContentBlock
	Usage   TokenUsage
}

// Summary is the Markdown produced by the model together with the identifiers
// needed to attribute it.
type Summary struct {
	Text         string     // The first text-bearing block of the response.
	ModelID      string     // The model id selected for the video.
	InvokedID    string     // The id the successful call was routed to (profile or model id).
	Usage        TokenUsage // Token counts reported for the successful call.
	FallbackUsed bool       // True when the profile call was rejected and the raw id answered.
}

// Status is the outcome an invocation reports to the event system.
type Status string

const (
	StatusIgnored         Status = "ignored"
	StatusEmptyTranscript Status = "empty_transcript"
	StatusSummaryCreated  Status = "summary_created"
	StatusStarted         Status = "started"
)

// Result is returned by every workflow invocation that did not fail.
type Result struct {
	Status       Status `json:"status"`
	Key          string `json:"key,omitempty"`
	OutputBucket string `json:"output_bucket,omitempty"`
	OutputKey    string `json:"output_key,omitempty"`
	JobName      string `json:"job_name,omitempty"`
}

// TranscriptionJob is the stage one request asking the transcription service to
// caption a video.
type TranscriptionJob struct {
	Name            string   `json:"name"`
	LanguageCode    string   `json:"language_code"`
	MediaFormat     string   `json:"media_format"`
	MediaMIMEType   string   `json:"media_mime_type"`
	MediaURI        string   `json:"media_uri"`
	OutputBucket    string   `json:"output_bucket"`
	OutputKey       string   `json:"output_key"`
	SubtitleFormats []string `json:"subtitle_formats"`
}
