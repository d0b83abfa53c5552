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
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	config := cloud.NewConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, model.StorageLayout{
		ConfigPrefix:     "model/",
		OutputPrefix:     "model/resumo/",
		CaptionExtension: ".srt",
		VideoExtension:   ".mp4",
	}, config.Layout())
	assert.Equal(t, model.NewModelConfig("gemini-2.5-flash-lite"), config.DefaultModel())
	assert.Equal(t, "pt-BR", config.Transcription.LanguageCode)
	assert.Equal(t, "meetup-", config.Storage.IngestionPrefix)
	assert.Equal(t, int32(2048), config.Inference.MaxTokens)
	assert.Empty(t, config.Summary.OutputBucket, "a missing output bucket is reported at write time")
}

func TestLoadConfigLayersRuntimeFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(`
[application]
name = "caption-summary"
google_project_id = "base-project"

[storage]
media_bucket = "media"

[summary]
output_bucket = "summaries"

[inference]
default_model_id = "gemini-2.5-flash"

[inference_profiles]
"custom-model" = "publishers/acme/models/custom-model"

[topic_subscriptions.CaptionTopic]
name = "caption-events-sub"
`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.unit.toml"), []byte(`
[application]
google_project_id = "unit-project"

[summary]
output_prefix = "out/"
`), 0o600))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "unit")

	config := cloud.NewConfig()
	require.NoError(t, cloud.LoadConfig(config))
	require.NoError(t, config.Validate())

	assert.Equal(t, "caption-summary", config.Application.Name)
	assert.Equal(t, "unit-project", config.Application.GoogleProjectId)
	assert.Equal(t, "summaries", config.Summary.OutputBucket)
	assert.Equal(t, "out/", config.Summary.OutputPrefix)
	assert.Equal(t, "gemini-2.5-flash", config.Inference.DefaultModelID)
	assert.Equal(t, model.DefaultTopP, config.Inference.TopP, "values absent from both files keep their defaults")
	assert.Equal(t, "media", config.Transcription.OutputBucket, "transcription output defaults to the media bucket")
	assert.Equal(t, "publishers/acme/models/custom-model", config.InferenceProfiles["custom-model"])
	assert.Equal(t, "caption-events-sub", config.TopicSubscriptions[cloud.CaptionTopicKey].Name)
}

func TestLoadConfigRejectsInvalidToml(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte("[application\nname="), 0o600))
	t.Setenv(cloud.EnvConfigFilePrefix, dir)
	t.Setenv(cloud.EnvConfigRuntime, "unit")

	assert.Error(t, cloud.LoadConfig(cloud.NewConfig()))
}

func TestApplyEnvironment(t *testing.T) {
	env := map[string]string{
		"SUMMARY_OUTPUT_BUCKET":    "env-bucket",
		"SUMMARY_OUTPUT_PREFIX":    "env/",
		"MODEL_PREFIX":             "cfg/",
		"DEFAULT_MODEL_ID":         "gemini-2.5-pro",
		"TRANSCRIBE_LANGUAGE_CODE": "en-US",
		"OBSERVABILITY_DEBUG":      "true",
		"OBSERVABILITY_TRACE":      "not-a-bool",
		"TRANSCRIBE_OUTPUT_PREFIX": "   ",
	}
	config := cloud.NewConfig()
	config.ApplyEnvironment(func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	})

	assert.Equal(t, "env-bucket", config.Summary.OutputBucket)
	assert.Equal(t, "env/", config.Summary.OutputPrefix)
	assert.Equal(t, "cfg/", config.Storage.ConfigPrefix)
	assert.Equal(t, "gemini-2.5-pro", config.Inference.DefaultModelID)
	assert.Equal(t, "en-US", config.Transcription.LanguageCode)
	assert.Equal(t, "transcribe/", config.Transcription.OutputPrefix)
	assert.True(t, config.Application.Debug)
	assert.False(t, config.Application.Trace)
	assert.True(t, config.Verbose())
}

func TestValidateReportsStructuralDefects(t *testing.T) {
	config := cloud.NewConfig()
	config.Storage.CaptionExtension = "srt"
	config.BigQueryDataSource.DatasetName = "ledger"
	config.TopicSubscriptions[cloud.VideoTopicKey] = cloud.TopicSubscription{}

	err := config.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrValidation)
	assert.Contains(t, err.Error(), "must start with a dot")
	assert.Contains(t, err.Error(), "summary_table")
	assert.Contains(t, err.Error(), "VideoTopic")
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CAPTION_SUMMARY_TEST_VALUE=from-file\n"), 0o600))
	t.Setenv("CAPTION_SUMMARY_TEST_VALUE", "")
	require.NoError(t, os.Unsetenv("CAPTION_SUMMARY_TEST_VALUE"))

	require.NoError(t, cloud.LoadEnvFiles(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-file", os.Getenv("CAPTION_SUMMARY_TEST_VALUE"))
}
