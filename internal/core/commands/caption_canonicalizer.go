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
	"log/slog"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/transcript"
)

// CaptionCanonicalizer rewrites the caption with a model header, promotes it
// to its canonical location and records which video revision it belongs to.
// None of these writes can fail the invocation.
type CaptionCanonicalizer struct {
	cor.BaseCommand
	store  cloud.ObjectStore
	layout model.StorageLayout
}

func NewCaptionCanonicalizer(name string, store cloud.ObjectStore, layout model.StorageLayout) *CaptionCanonicalizer {
	out := &CaptionCanonicalizer{BaseCommand: *cor.NewBaseCommand(name), store: store, layout: layout}
	out.InputParamName = ParamSummary
	return out
}

func (c *CaptionCanonicalizer) IsExecutable(context cor.Context) bool {
	return c.BaseCommand.IsExecutable(context) &&
		context.Get(ParamCaption) != nil &&
		context.Get(ParamIdentity) != nil &&
		context.Get(cloud.GetGCSObjectName()) != nil
}

func (c *CaptionCanonicalizer) Execute(context cor.Context) {
	ctx := context.GetContext()
	summary := context.Get(ParamSummary).(*model.Summary)
	caption := context.Get(ParamCaption).(string)
	identity := context.Get(ParamIdentity).(string)
	obj := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)

	annotated := []byte(transcript.WithHeader(caption, summary.ModelID))

	if err := c.store.Put(ctx, obj.Bucket, obj.Name, annotated, CaptionContentType); err != nil {
		slog.WarnContext(ctx, "caption header rewrite failed", "bucket", obj.Bucket, "key", obj.Name, "error", err)
	}

	canonical := c.layout.CanonicalCaptionKey(identity)
	if obj.Name != canonical {
		c.promote(context, obj, canonical, identity, annotated)
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), summary)
}

// promote copies the caption to its canonical key and removes the original.
// The video revision is only recorded for a caption that reached the canonical
// key, so a rerun on an already canonical caption keeps the marker of the
// video it was transcribed from.
func (c *CaptionCanonicalizer) promote(context cor.Context, obj *cloud.GCSObject, canonical, identity string, annotated []byte) {
	ctx := context.GetContext()
	if err := c.store.Put(ctx, obj.Bucket, canonical, annotated, CaptionContentType); err != nil {
		slog.WarnContext(ctx, "caption promotion failed, keeping original",
			"bucket", obj.Bucket, "key", obj.Name, "canonical_key", canonical, "error", err)
		return
	}
	if err := c.store.Delete(ctx, obj.Bucket, obj.Name); err != nil {
		slog.WarnContext(ctx, "original caption removal failed",
			"bucket", obj.Bucket, "key", obj.Name, "canonical_key", canonical, "error", err)
	} else {
		slog.InfoContext(ctx, "caption promoted", "bucket", obj.Bucket, "from", obj.Name, "to", canonical)
	}
	c.markVideoRevision(context, obj.Bucket, identity)
}

// markVideoRevision stores the ETag of the source video next to the canonical
// caption. The video may not exist, so every failure is only logged.
func (c *CaptionCanonicalizer) markVideoRevision(context cor.Context, bucket, identity string) {
	ctx := context.GetContext()
	videoKey := c.layout.VideoKey(identity)
	info, err := c.store.Head(ctx, bucket, videoKey)
	if err != nil {
		slog.DebugContext(ctx, "video revision unavailable", "bucket", bucket, "key", videoKey, "error", err)
		return
	}
	etag := cloud.NormalizeETag(info.ETag)
	if etag == "" {
		slog.DebugContext(ctx, "video has no etag", "bucket", bucket, "key", videoKey)
		return
	}
	markKey := c.layout.VideoETagKey(identity)
	if err := c.store.Put(ctx, bucket, markKey, []byte(etag), ETagMarkContentType); err != nil {
		slog.DebugContext(ctx, "video revision marker write failed", "bucket", bucket, "key", markKey, "error", err)
	}
}
