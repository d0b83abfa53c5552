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

// Package services holds the operations behind the administration API: per
// video configuration uploads, caption freshness and access to the produced
// summaries.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

const (
	// MaxPromptBytes bounds a custom prompt document.
	MaxPromptBytes = 500 * 1024
	// SummaryURLExpiry is the lifetime of a signed summary URL.
	SummaryURLExpiry = 15 * time.Minute

	promptContentType = "text/plain; charset=utf-8"
	modelContentType  = "application/json"
)

// URLSigner produces time limited GET URLs for stored objects.
type URLSigner interface {
	SignedURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}

// ModelSelection is a requested model for one video. Nil sampling fields are
// filled from the model catalog, else from the defaults.
type ModelSelection struct {
	ID          string   `json:"id"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"topP,omitempty"`
	TopK        *int     `json:"topK,omitempty"`
}

// CaptionStatus tells whether the canonical caption of a video was produced
// from the video revision currently stored.
type CaptionStatus struct {
	Identity     string `json:"identity"`
	VideoExists  bool   `json:"video_exists"`
	CaptionKey   string `json:"caption_key"`
	CaptionFound bool   `json:"caption_exists"`
	VideoETag    string `json:"video_etag,omitempty"`
	CaptionETag  string `json:"caption_video_etag,omitempty"`
	Fresh        bool   `json:"fresh"`
}

type VideoService struct {
	Store         cloud.ObjectStore   // Storage holding videos, captions and per-video configuration.
	MediaBucket   string              // Bucket of the per-video objects.
	SummaryBucket string              // Bucket of the produced summaries.
	Layout        model.StorageLayout // Key conventions shared with the workflows.
	Catalog       *cloud.ModelCatalog // Selectable models; may be empty.
	Defaults      model.ModelConfig   // Sampling defaults of the service.
	Signer        URLSigner           // Nil disables summary URLs.
}

// ValidateIdentity rejects identities that cannot be used as a key segment.
func ValidateIdentity(identity string) error {
	switch {
	case strings.TrimSpace(identity) == "":
		return model.Wrap(model.ErrValidation, "identity is empty", nil)
	case strings.ContainsAny(identity, "/\\"), identity == ".", identity == "..":
		return model.Wrap(model.ErrValidation, fmt.Sprintf("identity %q is not a valid key segment", identity), nil)
	}
	return nil
}

// PutPrompt stores the custom instructions of a video.
func (s *VideoService) PutPrompt(ctx context.Context, identity string, prompt []byte) (string, error) {
	if err := ValidateIdentity(identity); err != nil {
		return "", err
	}
	if len(prompt) > MaxPromptBytes {
		return "", model.Wrap(model.ErrValidation, fmt.Sprintf("prompt exceeds %d KB", MaxPromptBytes/1024), nil)
	}
	if strings.TrimSpace(string(prompt)) == "" {
		return "", model.Wrap(model.ErrValidation, "prompt is empty", nil)
	}
	key := s.Layout.PromptKey(identity)
	if err := s.Store.Put(ctx, s.MediaBucket, key, prompt, promptContentType); err != nil {
		return "", fmt.Errorf("failed to store prompt: %w", err)
	}
	return key, nil
}

// PutModelConfig stores the model selection of a video. Ids absent from the
// catalog are accepted with the default sampling parameters.
func (s *VideoService) PutModelConfig(ctx context.Context, identity string, selection ModelSelection) (model.ModelConfig, error) {
	if err := ValidateIdentity(identity); err != nil {
		return model.ModelConfig{}, err
	}
	id := strings.TrimSpace(selection.ID)
	if id == "" {
		return model.ModelConfig{}, model.Wrap(model.ErrValidation, "model id is empty", nil)
	}

	cfg := s.Catalog.ConfigFor(id, s.Defaults)
	if selection.Temperature != nil {
		cfg.Temperature = *selection.Temperature
	}
	if selection.TopP != nil {
		cfg.TopP = *selection.TopP
	}
	if selection.TopK != nil {
		cfg.TopK = *selection.TopK
	}
	if err := validateSampling(cfg); err != nil {
		return model.ModelConfig{}, err
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return model.ModelConfig{}, err
	}
	if err := s.Store.Put(ctx, s.MediaBucket, s.Layout.ModelConfigKey(identity), data, modelContentType); err != nil {
		return model.ModelConfig{}, fmt.Errorf("failed to store model configuration: %w", err)
	}
	return cfg, nil
}

func validateSampling(cfg model.ModelConfig) error {
	var errs []error
	if math.IsNaN(cfg.Temperature) || cfg.Temperature < 0 || cfg.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature %v out of range [0, 2]", cfg.Temperature))
	}
	if math.IsNaN(cfg.TopP) || cfg.TopP < 0 || cfg.TopP > 1 {
		errs = append(errs, fmt.Errorf("topP %v out of range [0, 1]", cfg.TopP))
	}
	if cfg.TopK < 0 || cfg.TopK > model.MaxTopK {
		errs = append(errs, fmt.Errorf("topK %d out of range [0, %d]", cfg.TopK, model.MaxTopK))
	}
	if len(errs) > 0 {
		return model.Wrap(model.ErrValidation, "model configuration", errors.Join(errs...))
	}
	return nil
}

// CaptionStatus reports whether the canonical caption matches the current
// video. Both ETags must be non-empty and equal for the caption to be fresh.
func (s *VideoService) CaptionStatus(ctx context.Context, identity string) (*CaptionStatus, error) {
	if err := ValidateIdentity(identity); err != nil {
		return nil, err
	}
	status := &CaptionStatus{Identity: identity, CaptionKey: s.Layout.CanonicalCaptionKey(identity)}

	video, err := s.Store.Head(ctx, s.MediaBucket, s.Layout.VideoKey(identity))
	switch {
	case errors.Is(err, model.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		status.VideoExists = true
		status.VideoETag = cloud.NormalizeETag(video.ETag)
	}

	_, err = s.Store.Head(ctx, s.MediaBucket, status.CaptionKey)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return status, nil
	case err != nil:
		return nil, err
	}
	status.CaptionFound = true

	// An unreadable marker only means the caption cannot be proven fresh.
	if mark, err := s.Store.Get(ctx, s.MediaBucket, s.Layout.VideoETagKey(identity)); err == nil {
		status.CaptionETag = strings.TrimSpace(string(mark))
	}
	status.Fresh = status.VideoETag != "" && status.CaptionETag != "" && status.VideoETag == status.CaptionETag
	return status, nil
}

// SummaryURL returns a signed GET URL for the summary of identity produced
// by the model with the given slug.
func (s *VideoService) SummaryURL(ctx context.Context, identity, slug string) (string, error) {
	if err := ValidateIdentity(identity); err != nil {
		return "", err
	}
	if err := ValidateIdentity(slug); err != nil {
		return "", err
	}
	if s.Signer == nil {
		return "", errors.New("summary URL signing is not configured")
	}
	key := s.Layout.SummaryKey(identity, slug)
	if _, err := s.Store.Head(ctx, s.SummaryBucket, key); err != nil {
		return "", err
	}
	return s.Signer.SignedURL(ctx, s.SummaryBucket, key, SummaryURLExpiry)
}
