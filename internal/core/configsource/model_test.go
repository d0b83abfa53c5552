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

package configsource_test

import (
	"context"
	"testing"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/configsource"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"github.com/jaycherian/gcp-go-caption-summary/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaults = model.NewModelConfig("gemini-2.5-flash-lite")

func TestModelResolverStructuredDocumentWins(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Seed(bucket, "model/models/palla.json", []byte(`{"id":"gemini-2.5-pro","temperature":0.7,"topP":"0.5","topK":40}`))
	store.Seed(bucket, "model/models/palla.txt", []byte("legacy-model"))
	resolver := configsource.NewModelResolver(store, layout, defaults, nil)

	cfg, layer := resolver.Resolve(context.Background(), bucket, "palla")
	assert.Equal(t, configsource.LayerStructured, layer)
	assert.Equal(t, model.ModelConfig{ID: "gemini-2.5-pro", Temperature: 0.7, TopP: 0.5, TopK: 40}, cfg)
}

func TestModelResolverLegacyText(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Seed(bucket, "model/models/palla.txt", []byte("  claude-3-haiku\n"))
	resolver := configsource.NewModelResolver(store, layout, defaults, nil)

	cfg, layer := resolver.Resolve(context.Background(), bucket, "palla")
	assert.Equal(t, configsource.LayerLegacy, layer)
	assert.Equal(t, "claude-3-haiku", cfg.ID)
	assert.Equal(t, model.DefaultTemperature, cfg.Temperature)
	assert.Equal(t, model.DefaultTopP, cfg.TopP)
	assert.Equal(t, model.DefaultTopK, cfg.TopK)
}

func TestModelResolverDefault(t *testing.T) {
	resolver := configsource.NewModelResolver(testutil.NewMemoryStore(), layout, defaults, nil)

	cfg, layer := resolver.Resolve(context.Background(), bucket, "palla")
	assert.Equal(t, configsource.LayerDefault, layer)
	assert.Equal(t, defaults, cfg)
}

func TestModelResolverMalformedDocumentFallsThrough(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Seed(bucket, "model/models/palla.json", []byte(`{"id":"gemini-2.5-pro","temperature":"warm"}`))
	store.Seed(bucket, "model/models/palla.txt", []byte("legacy-model"))
	resolver := configsource.NewModelResolver(store, layout, defaults, nil)

	cfg, layer := resolver.Resolve(context.Background(), bucket, "palla")
	assert.Equal(t, configsource.LayerLegacy, layer)
	assert.Equal(t, "legacy-model", cfg.ID)
}

func TestModelResolverAnomalousReadsFallThrough(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.FailGet(bucket, "model/models/palla.json", model.Wrap(model.ErrAccessDenied, "get", nil))
	store.Seed(bucket, "model/models/palla.txt", []byte(""))
	resolver := configsource.NewModelResolver(store, layout, defaults, nil)

	cfg, layer := resolver.Resolve(context.Background(), bucket, "palla")
	assert.Equal(t, configsource.LayerDefault, layer)
	assert.Equal(t, defaults, cfg)
}

func TestParseModelDocument(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		want    model.ModelConfig
		wantErr bool
	}{
		{name: "empty object", doc: `{}`, want: defaults},
		{name: "blank id", doc: `{"id":"  ","temperature":0.1}`, want: model.ModelConfig{ID: defaults.ID, Temperature: 0.1, TopP: model.DefaultTopP}},
		{name: "string numbers", doc: `{"id":"m","temperature":"0.2","topP":" 0.3 ","topK":"7"}`, want: model.ModelConfig{ID: "m", Temperature: 0.2, TopP: 0.3, TopK: 7}},
		{name: "fractional topK", doc: `{"id":"m","topK":12.9}`, want: model.ModelConfig{ID: "m", Temperature: model.DefaultTemperature, TopP: model.DefaultTopP, TopK: 12}},
		{name: "null field keeps default", doc: `{"id":"m","topP":null}`, want: model.ModelConfig{ID: "m", Temperature: model.DefaultTemperature, TopP: model.DefaultTopP}},
		{name: "topK too large", doc: `{"id":"m","topK":1e12}`, wantErr: true},
		{name: "topK too small", doc: `{"id":"m","topK":"-3000000000"}`, wantErr: true},
		{name: "negative topK in range", doc: `{"id":"m","topK":-1}`, want: model.ModelConfig{ID: "m", Temperature: model.DefaultTemperature, TopP: model.DefaultTopP, TopK: -1}},
		{name: "bad number", doc: `{"id":"m","topP":"high"}`, wantErr: true},
		{name: "boolean number", doc: `{"id":"m","temperature":true}`, wantErr: true},
		{name: "not finite", doc: `{"id":"m","temperature":"NaN"}`, wantErr: true},
		{name: "not an object", doc: `["m"]`, wantErr: true},
		{name: "not json", doc: `id=m`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := configsource.ParseModelDocument([]byte(tt.doc), defaults)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, model.ErrMalformedConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}
