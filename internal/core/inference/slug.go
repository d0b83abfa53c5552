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

package inference

import (
	"regexp"
	"strings"
)

const maxSlugLength = 20

type slugRule struct {
	substring string
	slug      string
}

// Order matters: the more specific gemini variants precede their prefixes.
var slugRules = []slugRule{
	{"haiku", "haiku"},
	{"sonnet", "sonnet"},
	{"opus", "opus"},
	{"nova-2-lite", "nova2-lite"},
	{"nova-lite", "nova-lite"},
	{"nova-pro", "nova-pro"},
	{"deepseek", "deepseek"},
	{"llama", "llama"},
	{"gemini-2.5-flash-lite", "g25-flash-lite"},
	{"gemini-2.5-flash", "g25-flash"},
	{"gemini-2.5-pro", "g25-pro"},
	{"gemini-2.0-flash", "g20-flash"},
}

var (
	slugSeparators = regexp.MustCompile(`[.:/@_\s]+`)
	slugDashes     = regexp.MustCompile(`-{2,}`)
)

// KnownSlugs lists the short codes of the models with a fixed slug.
func KnownSlugs() []string {
	out := make([]string, 0, len(slugRules))
	for _, rule := range slugRules {
		out = append(out, rule.slug)
	}
	return out
}

// ModelSlug returns the short code used in summary file names for modelID.
func ModelSlug(modelID string) string {
	id := strings.ToLower(strings.TrimSpace(modelID))
	for _, rule := range slugRules {
		if strings.Contains(id, rule.substring) {
			return rule.slug
		}
	}

	slug := slugSeparators.ReplaceAllString(id, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return "model"
	}
	return slug
}
