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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// Layer names reported by ModelResolver.Resolve.
const (
	LayerStructured = "structured"
	LayerLegacy     = "legacy"
	LayerDefault    = "default"
)

// ModelResolver selects the model for a video from the structured document,
// then the legacy plain-text document, then the process default.
type ModelResolver struct {
	store    ObjectReader
	layout   model.StorageLayout
	defaults model.ModelConfig
	logger   *slog.Logger
}

func NewModelResolver(store ObjectReader, layout model.StorageLayout, defaults model.ModelConfig, logger *slog.Logger) *ModelResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModelResolver{store: store, layout: layout, defaults: defaults, logger: logger}
}

// Resolve returns the model configuration and the name of the layer it came
// from. It never fails.
func (r *ModelResolver) Resolve(ctx context.Context, bucket, identity string) (model.ModelConfig, string) {
	cfg, layer, _ := FirstPresent(ctx, r.logger,
		Source[model.ModelConfig]{Name: LayerStructured, Load: func(ctx context.Context) Outcome[model.ModelConfig] {
			data, err := r.store.Get(ctx, bucket, r.layout.ModelConfigKey(identity))
			if err != nil {
				return FromReadError[model.ModelConfig](err)
			}
			cfg, err := ParseModelDocument(data, r.defaults)
			if err != nil {
				return MalformedOf[model.ModelConfig](err)
			}
			return PresentOf(cfg)
		}},
		Source[model.ModelConfig]{Name: LayerLegacy, Load: func(ctx context.Context) Outcome[model.ModelConfig] {
			data, err := r.store.Get(ctx, bucket, r.layout.LegacyModelKey(identity))
			if err != nil {
				return FromReadError[model.ModelConfig](err)
			}
			id := strings.TrimSpace(string(data))
			if id == "" {
				return AbsentOf[model.ModelConfig](nil)
			}
			return PresentOf(withID(r.defaults, id))
		}},
		Source[model.ModelConfig]{Name: LayerDefault, Load: func(context.Context) Outcome[model.ModelConfig] {
			return PresentOf(r.defaults)
		}},
	)
	return cfg, layer
}

func withID(defaults model.ModelConfig, id string) model.ModelConfig {
	cfg := defaults
	cfg.ID = id
	return cfg
}

type modelDocument struct {
	ID          *string     `json:"id"`
	Temperature *flexNumber `json:"temperature"`
	TopP        *flexNumber `json:"topP"`
	TopK        *flexNumber `json:"topK"`
}

// flexNumber accepts both 0.5 and "0.5".
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("not a finite number: %s", b)
	}
	*f = flexNumber(v)
	return nil
}

// ParseModelDocument decodes a structured model document. Missing fields take
// their value from defaults; a blank id selects the default id. Any malformed
// field rejects the whole document.
func ParseModelDocument(data []byte, defaults model.ModelConfig) (model.ModelConfig, error) {
	var doc modelDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.ModelConfig{}, model.Wrap(model.ErrMalformedConfig, "model document", err)
	}

	cfg := defaults
	if doc.ID != nil && strings.TrimSpace(*doc.ID) != "" {
		cfg.ID = strings.TrimSpace(*doc.ID)
	}
	if doc.Temperature != nil {
		cfg.Temperature = float64(*doc.Temperature)
	}
	if doc.TopP != nil {
		cfg.TopP = float64(*doc.TopP)
	}
	if doc.TopK != nil {
		topK := float64(*doc.TopK)
		if topK < math.MinInt32 || topK > model.MaxTopK {
			return model.ModelConfig{}, model.Wrap(model.ErrMalformedConfig, "model document",
				fmt.Errorf("topK %v out of range", topK))
		}
		cfg.TopK = int(topK)
	}
	return cfg, nil
}
