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

package transcript_test

import (
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/transcript"
	"github.com/stretchr/testify/assert"
)

const body = "1\n00:00:00,000 --> 00:00:02,000\nHello world\n"

func TestWithHeader(t *testing.T) {
	out := transcript.WithHeader(body, "gemini-2.5-flash")
	assert.Equal(t, "# Model: gemini-2.5-flash\n\n"+body, out)
}

func TestWithHeaderReplacesExistingHeader(t *testing.T) {
	first := transcript.WithHeader(body, "gemini-2.5-flash")
	second := transcript.WithHeader(first, "gemini-2.5-pro")

	assert.Equal(t, "# Model: gemini-2.5-pro\n\n"+body, second)
	assert.Equal(t, 1, strings.Count(second, transcript.HeaderMarker))
}

func TestWithHeaderIsIdempotent(t *testing.T) {
	once := transcript.WithHeader(body, "m")
	twice := transcript.WithHeader(once, "m")
	assert.Equal(t, once, twice)
}

func TestStripHeader(t *testing.T) {
	assert.Equal(t, body, transcript.StripHeader(body))
	assert.Equal(t, body, transcript.StripHeader("# Model: x\n\n\n"+body))
	assert.Equal(t, "", transcript.StripHeader("# Model: x"))
}

func TestSummaryAttribution(t *testing.T) {
	assert.Equal(t, "> *Model: gemini-2.5-flash*\n\n", transcript.SummaryAttribution("gemini-2.5-flash"))
}
