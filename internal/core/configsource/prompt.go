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

package configsource

import (
	"context"
	_ "embed"
	"log/slog"
	"os"
	"strings"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// CustomPromptSeparator joins the guardrails with a video-specific instruction.
const CustomPromptSeparator = "\n\n---\nVideo-specific instructions (custom prompt):\n\n"

//go:embed default_guardrails.md
var defaultGuardrails string

// ObjectReader is the read side of the object store.
type ObjectReader interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// DefaultGuardrails returns the guardrails compiled into the binary.
func DefaultGuardrails() string {
	return strings.TrimSpace(defaultGuardrails)
}

// LoadGuardrails reads the guardrails document at path. A missing, unreadable
// or blank file is logged and replaced by the built-in text.
func LoadGuardrails(path string, logger *slog.Logger) string {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return DefaultGuardrails()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("guardrails file unreadable, using built-in text", "path", path, "error", err)
		return DefaultGuardrails()
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		logger.Warn("guardrails file is empty, using built-in text", "path", path)
		return DefaultGuardrails()
	}
	return text
}

// PromptResolver builds the system prompt for a video: the guardrails, plus
// the video's custom instructions when a non-empty document exists.
type PromptResolver struct {
	store      ObjectReader
	layout     model.StorageLayout
	guardrails string
	logger     *slog.Logger
}

func NewPromptResolver(store ObjectReader, layout model.StorageLayout, guardrails string, logger *slog.Logger) *PromptResolver {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(guardrails) == "" {
		guardrails = DefaultGuardrails()
	}
	return &PromptResolver{store: store, layout: layout, guardrails: guardrails, logger: logger}
}

func (r *PromptResolver) Guardrails() string {
	return r.guardrails
}

// Resolve never fails: every read problem degrades to the guardrails alone.
func (r *PromptResolver) Resolve(ctx context.Context, bucket, identity string) string {
	key := r.layout.PromptKey(identity)
	custom, _, ok := FirstPresent(ctx, r.logger, Source[string]{
		Name: "custom_prompt",
		Load: func(ctx context.Context) Outcome[string] {
			data, err := r.store.Get(ctx, bucket, key)
			if err != nil {
				return FromReadError[string](err)
			}
			text := strings.TrimSpace(string(data))
			if text == "" {
				return AbsentOf[string](nil)
			}
			return PresentOf(text)
		},
	})
	if !ok {
		return r.guardrails
	}
	r.logger.DebugContext(ctx, "custom prompt applied", "key", key, "chars", len(custom))
	return r.guardrails + CustomPromptSeparator + custom
}
