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

// Package transcript holds the pure text functions of the caption pipeline:
// turning a timed-caption document into prose, deriving the content identity
// of a video from a caption filename, and managing the provenance header that
// records which model produced the derived artifacts.
package transcript

import (
	"strings"
)

// TimeRangeDelimiter separates the start and end time on a caption cue line,
// e.g. "00:00:01,000 --> 00:00:03,000".
const TimeRangeDelimiter = "-->"

// ExtractPlainText returns the caption text of an SRT document, one caption
// line per output line, in document order. Sequence indices, time ranges,
// blank lines and provenance headers are dropped. An empty result means there
// is nothing to summarize.
func ExtractPlainText(doc string) string {
	lines := strings.Split(strings.ReplaceAll(doc, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case strings.HasPrefix(trimmed, HeaderMarker):
		case isDigits(trimmed):
		case strings.Contains(trimmed, TimeRangeDelimiter):
		default:
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, "\n")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
