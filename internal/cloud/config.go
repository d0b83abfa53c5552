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

// Package cloud holds everything that talks to Google Cloud: the TOML backed
// configuration, the service client container, the Cloud Storage object store,
// the Vertex AI conversation adapter, Pub/Sub listeners and publishers and the
// BigQuery summary ledger.
//
// Structs:
//   - Config: The top-level configuration, built once at start-up.
//   - Storage: Key layout of the media bucket.
//   - Summary: Where summaries are written.
//   - Transcription: Stage one job settings.
//   - Inference: Default model, sampling values and quota.
//   - TopicSubscription: A Pub/Sub subscription the server listens on.
//   - BigQueryDataSource: The summary ledger table.
package cloud

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// Subscription keys understood by the server.
const (
	CaptionTopicKey = "CaptionTopic"
	VideoTopicKey   = "VideoTopic"
)

type BigQueryDataSource struct {
	DatasetName  string `toml:"dataset"`       // Empty disables the summary ledger.
	SummaryTable string `toml:"summary_table"` // Table receiving one row per written summary.
}

type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The dead-letter topic configured on the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // Ack deadline of the subscription.
}

type Storage struct {
	MediaBucket      string `toml:"media_bucket"`      // Bucket holding videos, captions and per-video config.
	ConfigPrefix     string `toml:"config_prefix"`     // Prefix of prompts/, models/, transcribe/ and video/.
	IngestionPrefix  string `toml:"ingestion_prefix"`  // Prefix the transcription service adds to caption names.
	CaptionExtension string `toml:"caption_extension"` // Extension of caption objects.
	VideoExtension   string `toml:"video_extension"`   // Extension of video objects.
}

type Summary struct {
	OutputBucket string `toml:"output_bucket"` // Required at write time.
	OutputPrefix string `toml:"output_prefix"`
}

type Transcription struct {
	OutputBucket string `toml:"output_bucket"` // Defaults to the media bucket.
	OutputPrefix string `toml:"output_prefix"`
	LanguageCode string `toml:"language_code"`
	JobTopic     string `toml:"job_topic"` // Topic receiving transcription job requests.
}

type Inference struct {
	DefaultModelID string  `toml:"default_model_id"`
	Temperature    float64 `toml:"temperature"`
	TopP           float64 `toml:"top_p"`
	TopK           int     `toml:"top_k"`
	MaxTokens      int32   `toml:"max_tokens"`
	RateLimit      int     `toml:"rate_limit"` // Requests per second allowed against Vertex AI.
	GuardrailsFile string  `toml:"guardrails_file"`
	CatalogFile    string  `toml:"catalog_file"` // YAML catalog of selectable models.
}

type Config struct {
	Application struct {
		Name                      string `toml:"name"`                         // The name of the application.
		GoogleProjectId           string `toml:"google_project_id"`            // The Google Cloud project ID.
		GoogleLocation            string `toml:"location"`                     // The Google Cloud location.
		SignerServiceAccountEmail string `toml:"signer_service_account_email"` // The service account used to sign summary URLs.
		Debug                     bool   `toml:"debug"`                        // Emit debug logs.
		Trace                     bool   `toml:"trace"`                        // Emit debug logs including document sizes per step.
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	Summary            Summary                      `toml:"summary"`
	Transcription      Transcription                `toml:"transcription"`
	Inference          Inference                    `toml:"inference"`
	InferenceProfiles  map[string]string            `toml:"inference_profiles"`    // Extra or overriding model id -> profile routes.
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"` // Summary ledger configuration.
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`   // Keyed by CaptionTopicKey / VideoTopicKey.
}

// NewConfig returns a configuration holding the built-in defaults. Values
// decoded from TOML later override them.
func NewConfig() *Config {
	c := &Config{
		InferenceProfiles:  make(map[string]string),
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
	c.Storage = Storage{
		ConfigPrefix:     "model/",
		IngestionPrefix:  "meetup-",
		CaptionExtension: ".srt",
		VideoExtension:   ".mp4",
	}
	c.Summary.OutputPrefix = "model/resumo/"
	c.Transcription = Transcription{OutputPrefix: "transcribe/", LanguageCode: "pt-BR"}
	c.Inference = Inference{
		DefaultModelID: "gemini-2.5-flash-lite",
		Temperature:    model.DefaultTemperature,
		TopP:           model.DefaultTopP,
		TopK:           model.DefaultTopK,
		MaxTokens:      model.DefaultMaxTokens,
		RateLimit:      5,
		GuardrailsFile: "configs/guardrails.md",
		CatalogFile:    "configs/models.yaml",
	}
	return c
}

// Validate fills blank values with their defaults and reports structural
// defects. A missing summary output bucket is not reported here: it is
// detected when a summary is about to be written.
func (c *Config) Validate() error {
	d := NewConfig()
	if c.Storage.ConfigPrefix == "" {
		c.Storage.ConfigPrefix = d.Storage.ConfigPrefix
	}
	if c.Storage.CaptionExtension == "" {
		c.Storage.CaptionExtension = d.Storage.CaptionExtension
	}
	if c.Storage.VideoExtension == "" {
		c.Storage.VideoExtension = d.Storage.VideoExtension
	}
	if c.Summary.OutputPrefix == "" {
		c.Summary.OutputPrefix = d.Summary.OutputPrefix
	}
	if c.Transcription.OutputPrefix == "" {
		c.Transcription.OutputPrefix = d.Transcription.OutputPrefix
	}
	if c.Transcription.LanguageCode == "" {
		c.Transcription.LanguageCode = d.Transcription.LanguageCode
	}
	if c.Transcription.OutputBucket == "" {
		c.Transcription.OutputBucket = c.Storage.MediaBucket
	}
	if strings.TrimSpace(c.Inference.DefaultModelID) == "" {
		c.Inference.DefaultModelID = d.Inference.DefaultModelID
	}
	if c.Inference.MaxTokens <= 0 {
		c.Inference.MaxTokens = d.Inference.MaxTokens
	}
	if c.Inference.RateLimit <= 0 {
		c.Inference.RateLimit = d.Inference.RateLimit
	}
	if c.InferenceProfiles == nil {
		c.InferenceProfiles = make(map[string]string)
	}
	if c.TopicSubscriptions == nil {
		c.TopicSubscriptions = make(map[string]TopicSubscription)
	}

	var errs []error
	for _, ext := range []string{c.Storage.CaptionExtension, c.Storage.VideoExtension} {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("extension %q must start with a dot", ext))
		}
	}
	if c.Inference.Temperature < 0 {
		errs = append(errs, fmt.Errorf("inference temperature must not be negative: %v", c.Inference.Temperature))
	}
	if c.BigQueryDataSource.DatasetName != "" && c.BigQueryDataSource.SummaryTable == "" {
		errs = append(errs, errors.New("big_query_data_source.summary_table is required when a dataset is set"))
	}
	for key, sub := range c.TopicSubscriptions {
		if sub.Name == "" {
			errs = append(errs, fmt.Errorf("topic subscription %s has no name", key))
		}
	}
	if len(errs) > 0 {
		return model.Wrap(model.ErrValidation, "configuration", errors.Join(errs...))
	}
	return nil
}

// ApplyEnvironment overrides configuration values from environment variables.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) {
	str := func(name string, target *string) {
		if v, ok := lookup(name); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}
	flag := func(name string, target *bool) {
		if v, ok := lookup(name); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				*target = b
			}
		}
	}
	str("SUMMARY_OUTPUT_BUCKET", &c.Summary.OutputBucket)
	str("SUMMARY_OUTPUT_PREFIX", &c.Summary.OutputPrefix)
	str("MODEL_PREFIX", &c.Storage.ConfigPrefix)
	str("DEFAULT_MODEL_ID", &c.Inference.DefaultModelID)
	str("TRANSCRIBE_OUTPUT_BUCKET", &c.Transcription.OutputBucket)
	str("TRANSCRIBE_OUTPUT_PREFIX", &c.Transcription.OutputPrefix)
	str("TRANSCRIBE_LANGUAGE_CODE", &c.Transcription.LanguageCode)
	flag("OBSERVABILITY_DEBUG", &c.Application.Debug)
	flag("OBSERVABILITY_TRACE", &c.Application.Trace)
}

// Layout returns the object key layout described by the storage section.
func (c *Config) Layout() model.StorageLayout {
	return model.StorageLayout{
		ConfigPrefix:     c.Storage.ConfigPrefix,
		OutputPrefix:     c.Summary.OutputPrefix,
		CaptionExtension: c.Storage.CaptionExtension,
		VideoExtension:   c.Storage.VideoExtension,
	}
}

// DefaultModel is the configuration used when a video selects no model.
func (c *Config) DefaultModel() model.ModelConfig {
	return model.ModelConfig{
		ID:          c.Inference.DefaultModelID,
		Temperature: c.Inference.Temperature,
		TopP:        c.Inference.TopP,
		TopK:        c.Inference.TopK,
	}
}

// Verbose reports whether debug level logging was requested.
func (c *Config) Verbose() bool {
	return c.Application.Debug || c.Application.Trace
}
