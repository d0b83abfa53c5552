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

package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
)

// CaptionReader downloads the caption named by the trigger. Invalid UTF-8
// sequences are replaced so later steps always handle valid text.
type CaptionReader struct {
	cor.BaseCommand
	store cloud.ObjectStore
}

func NewCaptionReader(name string, store cloud.ObjectStore) *CaptionReader {
	return &CaptionReader{BaseCommand: *cor.NewBaseCommand(name), store: store}
}

func (c *CaptionReader) Execute(context cor.Context) {
	obj := context.Get(c.GetInputParam()).(*cloud.GCSObject)

	data, err := c.store.Get(context.GetContext(), obj.Bucket, obj.Name)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to read caption gs://%s/%s: %w", obj.Bucket, obj.Name, err))
		return
	}

	caption := strings.ToValidUTF8(string(data), "�")
	slog.DebugContext(context.GetContext(), "caption read", "key", obj.Name, "bytes", len(data))

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(ParamCaption, caption)
	context.Add(c.GetOutputParam(), caption)
}
