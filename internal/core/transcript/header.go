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

package transcript

import "strings"

// HeaderMarker starts the provenance header line written at the top of a
// caption document, e.g. "# Model: gemini-2.5-flash".
const HeaderMarker = "# Model:"

// SummaryAttribution is the first line of every summary document.
func SummaryAttribution(modelID string) string {
	return "> *Model: " + modelID + "*\n\n"
}

// StripHeader removes a provenance header, and the blank line that ends it,
// from the top of a caption document. Documents without a header are
// returned unchanged.
func StripHeader(doc string) string {
	if !strings.HasPrefix(strings.TrimSpace(doc), HeaderMarker) {
		return doc
	}
	normalized := strings.ReplaceAll(doc, "\r\n", "\n")
	boundary := strings.Index(normalized, "\n\n")
	if boundary < 0 {
		// A header with nothing after it.
		return ""
	}
	return strings.TrimLeft(normalized[boundary+2:], " \t\r\n")
}

// WithHeader replaces any existing provenance header with one naming modelID.
// Applying it repeatedly yields a single header.
func WithHeader(doc, modelID string) string {
	return HeaderMarker + " " + modelID + "\n\n" + StripHeader(doc)
}
