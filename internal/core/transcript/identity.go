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

import (
	"path"
	"strings"
)

// IngestionPrefix is prepended to transcription job names by stage one, and
// therefore to every caption file the transcription service writes.
const IngestionPrefix = "meetup-"

// DeriveIdentity maps a caption filename to the content identity of its video.
// The extension and the ingestion prefix are removed, then a trailing
// purely-numeric hyphen segment (the job timestamp) is dropped:
//
//	meetup-palla-1763239925.srt -> palla
//	standalone-name.srt         -> standalone-name
//
// Names that are already canonical come back unchanged.
func DeriveIdentity(filename string) string {
	return DeriveIdentityWithPrefix(filename, IngestionPrefix)
}

// DeriveIdentityWithPrefix is DeriveIdentity for a configurable ingestion
// prefix. An empty prefix strips nothing.
func DeriveIdentityWithPrefix(filename, prefix string) string {
	name := path.Base(filename)
	if ext := path.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	if prefix != "" {
		name = strings.TrimPrefix(name, prefix)
	}

	parts := strings.Split(name, "-")
	if len(parts) > 1 && isDigits(parts[len(parts)-1]) {
		return strings.Join(parts[:len(parts)-1], "-")
	}
	return name
}
