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

package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/inference"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// StoredFile is a caption or summary listed for browsing.
type StoredFile struct {
	Key      string    `json:"key"`
	Name     string    `json:"name"`
	Identity string    `json:"identity"`
	Slug     string    `json:"slug,omitempty"`
	Size     int64     `json:"size"`
	Updated  time.Time `json:"updated"`
}

// ListCaptions lists the canonical captions, one per video.
func (s *VideoService) ListCaptions(ctx context.Context) ([]StoredFile, error) {
	prefix := s.Layout.CaptionPrefix()
	objects, err := s.Store.List(ctx, s.MediaBucket, prefix)
	if err != nil {
		return nil, err
	}
	files := make([]StoredFile, 0, len(objects))
	for _, obj := range objects {
		name := strings.TrimPrefix(obj.Key, prefix)
		if strings.Contains(name, "/") || !hasExtension(name, s.Layout.CaptionExtension) {
			continue
		}
		files = append(files, StoredFile{
			Key:      obj.Key,
			Name:     name,
			Identity: name[:len(name)-len(s.Layout.CaptionExtension)],
			Size:     obj.Size,
			Updated:  obj.Updated,
		})
	}
	return files, nil
}

// ListSummaries lists the produced summaries of every video and model.
func (s *VideoService) ListSummaries(ctx context.Context) ([]StoredFile, error) {
	prefix := s.Layout.OutputPrefix
	objects, err := s.Store.List(ctx, s.SummaryBucket, prefix)
	if err != nil {
		return nil, err
	}
	slugs := s.knownSlugs()
	files := make([]StoredFile, 0, len(objects))
	for _, obj := range objects {
		name := strings.TrimPrefix(obj.Key, prefix)
		if strings.Contains(name, "/") || !hasExtension(name, model.SummaryExtension) {
			continue
		}
		identity, slug := SplitSummaryName(name[:len(name)-len(model.SummaryExtension)], slugs)
		files = append(files, StoredFile{
			Key:      obj.Key,
			Name:     name,
			Identity: identity,
			Slug:     slug,
			Size:     obj.Size,
			Updated:  obj.Updated,
		})
	}
	return files, nil
}

// Caption returns the canonical caption of identity.
func (s *VideoService) Caption(ctx context.Context, identity string) ([]byte, error) {
	if err := ValidateIdentity(identity); err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, s.MediaBucket, s.Layout.CanonicalCaptionKey(identity))
}

// Summary returns the summary of identity produced by the model with slug.
func (s *VideoService) Summary(ctx context.Context, identity, slug string) ([]byte, error) {
	key, err := s.summaryKey(identity, slug)
	if err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, s.SummaryBucket, key)
}

// DeleteCaption removes the canonical caption of identity together with its
// video revision marker, so the video reads as not transcribed.
func (s *VideoService) DeleteCaption(ctx context.Context, identity string) error {
	if err := ValidateIdentity(identity); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, s.MediaBucket, s.Layout.CanonicalCaptionKey(identity)); err != nil {
		return err
	}
	err := s.Store.Delete(ctx, s.MediaBucket, s.Layout.VideoETagKey(identity))
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("caption removed but its video marker was kept: %w", err)
	}
	return nil
}

// DeleteSummary removes one summary.
func (s *VideoService) DeleteSummary(ctx context.Context, identity, slug string) error {
	key, err := s.summaryKey(identity, slug)
	if err != nil {
		return err
	}
	return s.Store.Delete(ctx, s.SummaryBucket, key)
}

func (s *VideoService) summaryKey(identity, slug string) (string, error) {
	if err := ValidateIdentity(identity); err != nil {
		return "", err
	}
	if err := ValidateIdentity(slug); err != nil {
		return "", err
	}
	return s.Layout.SummaryKey(identity, slug), nil
}

// knownSlugs gathers the slugs a summary name may end with: the fixed model
// codes plus the slugs of every catalog model and of the default model.
func (s *VideoService) knownSlugs() []string {
	seen := make(map[string]bool)
	for _, slug := range inference.KnownSlugs() {
		seen[slug] = true
	}
	seen[inference.ModelSlug(s.Defaults.ID)] = true
	if s.Catalog != nil {
		for _, entry := range s.Catalog.Models {
			seen[inference.ModelSlug(entry.ID)] = true
		}
	}
	slugs := make([]string, 0, len(seen))
	for slug := range seen {
		slugs = append(slugs, slug)
	}
	return slugs
}

// SplitSummaryName splits "{identity}-{slug}" into its parts. Both may
// contain hyphens, so the longest known slug the name ends with wins; an
// unknown slug is taken to be the last hyphen separated segment.
func SplitSummaryName(name string, slugs []string) (identity, slug string) {
	sorted := append([]string(nil), slugs...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for _, candidate := range sorted {
		if candidate == "" {
			continue
		}
		if id, ok := strings.CutSuffix(name, "-"+candidate); ok && id != "" {
			return id, candidate
		}
	}
	if i := strings.LastIndex(name, "-"); i > 0 && i < len(name)-1 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

func hasExtension(name, ext string) bool {
	return ext != "" && len(name) > len(ext) && strings.EqualFold(path.Ext(name), ext)
}
