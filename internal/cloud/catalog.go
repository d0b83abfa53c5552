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
	"fmt"
	"os"
	"strings"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"gopkg.in/yaml.v3"
)

// CatalogEntry is one selectable model. Sampling fields left out of the file
// fall back to the process defaults.
type CatalogEntry struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	TopP        *float64 `yaml:"top_p,omitempty" json:"topP,omitempty"`
	TopK        *int     `yaml:"top_k,omitempty" json:"topK,omitempty"`
}

// ModelCatalog lists the models offered for per-video selection.
type ModelCatalog struct {
	Models []CatalogEntry `yaml:"models" json:"models"`
}

// LoadModelCatalog reads a YAML catalog. A missing file yields an empty
// catalog.
func LoadModelCatalog(path string) (*ModelCatalog, error) {
	if path == "" || !fileExists(path) {
		return &ModelCatalog{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model catalog %s: %w", path, err)
	}
	return ParseModelCatalog(data)
}

func ParseModelCatalog(data []byte) (*ModelCatalog, error) {
	var catalog ModelCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, model.Wrap(model.ErrMalformedConfig, "model catalog", err)
	}
	seen := make(map[string]bool, len(catalog.Models))
	for i, entry := range catalog.Models {
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			return nil, model.Wrap(model.ErrMalformedConfig, fmt.Sprintf("model catalog entry %d has no id", i), nil)
		}
		if seen[id] {
			return nil, model.Wrap(model.ErrMalformedConfig, "duplicate model catalog id "+id, nil)
		}
		seen[id] = true
		if k := entry.TopK; k != nil && (*k < 0 || *k > model.MaxTopK) {
			return nil, model.Wrap(model.ErrMalformedConfig, fmt.Sprintf("model catalog entry %s has top_k %d out of range", id, *k), nil)
		}
		catalog.Models[i].ID = id
		if catalog.Models[i].Name == "" {
			catalog.Models[i].Name = id
		}
	}
	return &catalog, nil
}

func (c *ModelCatalog) Lookup(id string) (CatalogEntry, bool) {
	if c == nil {
		return CatalogEntry{}, false
	}
	for _, entry := range c.Models {
		if entry.ID == id {
			return entry, true
		}
	}
	return CatalogEntry{}, false
}

// ConfigFor returns the sampling defaults for id: the catalog entry values
// where present, else defaults. Unknown ids get defaults.
func (c *ModelCatalog) ConfigFor(id string, defaults model.ModelConfig) model.ModelConfig {
	cfg := defaults
	cfg.ID = id
	entry, ok := c.Lookup(id)
	if !ok {
		return cfg
	}
	if entry.Temperature != nil {
		cfg.Temperature = *entry.Temperature
	}
	if entry.TopP != nil {
		cfg.TopP = *entry.TopP
	}
	if entry.TopK != nil {
		cfg.TopK = *entry.TopK
	}
	return cfg
}
