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

// Context keys shared by the caption summary commands. Values are set once
// and read by later commands of the same chain.
const (
	ParamCaption      = "__CAPTION__"       // string: the caption document as read from storage.
	ParamTranscript   = "__TRANSCRIPT__"    // string: plain text extracted from the caption.
	ParamIdentity     = "__IDENTITY__"      // string: content identity of the video.
	ParamSystemPrompt = "__SYSTEM_PROMPT__" // string: guardrails plus custom instructions.
	ParamModelConfig  = "__MODEL_CONFIG__"  // model.ModelConfig: the resolved model selection.
	ParamProfile      = "__PROFILE__"       // string: routing profile for the model, "" when direct.
	ParamSummary      = "__SUMMARY__"       // *model.Summary: the model output.
	ParamSummaryKey   = "__SUMMARY_KEY__"   // string: the object key the summary was written to.
	ParamInvocationID = "__INVOCATION_ID__" // string: unique id of the workflow run, set by the caller.
)

// Content types of the objects written by the pipeline.
const (
	CaptionContentType  = "text/plain; charset=utf-8"
	SummaryContentType  = "text/markdown; charset=utf-8"
	ETagMarkContentType = "text/plain; charset=utf-8"
)
