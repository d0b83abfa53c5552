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

package model

// StorageLayout computes the conventional object keys used by the pipeline.
// Every key is derived from a content identity, which makes all writes
// idempotent per video.
type StorageLayout struct {
	ConfigPrefix     string // Prefix for prompts/, models/, transcribe/ and video/ (e.g. "model/").
	OutputPrefix     string // Prefix for summary documents (e.g. "model/resumo/").
	CaptionExtension string // Extension of caption documents (".srt").
	VideoExtension   string // Extension of source videos (".mp4").
}

func (l StorageLayout) PromptKey(identity string) string {
	return l.ConfigPrefix + "prompts/" + identity + ".txt"
}

func (l StorageLayout) ModelConfigKey(identity string) string {
	return l.ConfigPrefix + "models/" + identity + ".json"
}

// LegacyModelKey is the older plain-text form holding only a model id.
func (l StorageLayout) LegacyModelKey(identity string) string {
	return l.ConfigPrefix + "models/" + identity + ".txt"
}

// CaptionPrefix is the folder holding canonical captions and their markers.
func (l StorageLayout) CaptionPrefix() string {
	return l.ConfigPrefix + "transcribe/"
}

func (l StorageLayout) CanonicalCaptionKey(identity string) string {
	return l.CaptionPrefix() + identity + l.CaptionExtension
}

// VideoETagKey is the companion marker recording which video revision the
// canonical caption was produced from.
func (l StorageLayout) VideoETagKey(identity string) string {
	return l.CaptionPrefix() + identity + ".video-etag"
}

func (l StorageLayout) VideoKey(identity string) string {
	return l.ConfigPrefix + "video/" + identity + l.VideoExtension
}

func (l StorageLayout) SummaryKey(identity, slug string) string {
	return l.OutputPrefix + identity + "-" + slug + SummaryExtension
}

// SummaryExtension is the extension of every summary document.
const SummaryExtension = ".md"
