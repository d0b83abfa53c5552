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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIdentityCommand(t *testing.T) {
	out, err := run(t, "identity", "transcribe/meetup-palla-1730000000.srt", "model/transcribe/palla.srt")
	require.NoError(t, err)
	assert.Equal(t, "palla\npalla\n", out)
}

func TestSlugCommand(t *testing.T) {
	out, err := run(t, "slug", "gemini-2.5-flash")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash\tg25-flash\n", out)
}

func TestExtractCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.srt")
	require.NoError(t, os.WriteFile(path, []byte("# Model: x\n\n1\n00:00:01,000 --> 00:00:02,000\nHello world\n"), 0o644))

	out, err := run(t, "extract", path)
	require.NoError(t, err)
	assert.Equal(t, "Hello world\n", out)

	empty := filepath.Join(t.TempDir(), "empty.srt")
	require.NoError(t, os.WriteFile(empty, []byte("1\n00:00:01,000 --> 00:00:02,000\n"), 0o644))
	_, err = run(t, "extract", empty)
	assert.Error(t, err)
}
