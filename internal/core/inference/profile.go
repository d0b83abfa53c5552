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

// Package inference turns a resolved model configuration into a call against
// the managed inference service. It owns the routing table for models that
// must be invoked through a publisher-qualified profile, the per-family
// sampling parameter rules, the short slug used in output names and the
// invoker with its single authorization fallback.
package inference

import "strings"

// Profiles maps a model id to the alternate id the inference service expects
// for routed invocation. A model without an entry is invoked directly.
type Profiles map[string]string

var builtinProfiles = Profiles{
	"deepseek-r1-0528-maas":                   "publishers/deepseek-ai/models/deepseek-r1-0528-maas",
	"llama-4-maverick-17b-128e-instruct-maas": "publishers/meta/models/llama-4-maverick-17b-128e-instruct-maas",
}

// DefaultProfiles returns a copy of the built-in routing table merged with
// overrides. Blank override values remove the built-in entry.
func DefaultProfiles(overrides map[string]string) Profiles {
	out := make(Profiles, len(builtinProfiles)+len(overrides))
	for k, v := range builtinProfiles {
		out[k] = v
	}
	for k, v := range overrides {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if strings.TrimSpace(v) == "" {
			delete(out, k)
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

// Resolve returns the profile id for modelID, or "" when the model is invoked
// directly.
func (p Profiles) Resolve(modelID string) string {
	if p == nil {
		return ""
	}
	return p[modelID]
}
