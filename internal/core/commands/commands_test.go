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

package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/commands"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
	"github.com/jaycherian/gcp-go-caption-summary/internal/testutil"
)

const (
	bucket   = "media-bucket"
	identity = "palla"
)

var layout = model.StorageLayout{
	ConfigPrefix:     "model/",
	OutputPrefix:     "model/resumo/",
	CaptionExtension: ".srt",
	VideoExtension:   ".mp4",
}

func newContext(input interface{}) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, input)
	return ctx
}

func result(t *testing.T, ctx cor.Context) *model.Result {
	t.Helper()
	res, ok := ctx.Get(cor.CtxResult).(*model.Result)
	if !assert.True(t, ok, "no result in context") {
		t.FailNow()
	}
	return res
}

// summaryContext is the chain context as it stands once a summary exists.
func summaryContext(captionKey string) cor.Context {
	ctx := newContext(nil)
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{Bucket: bucket, Name: captionKey})
	ctx.Add(commands.ParamCaption, "1\n00:00:01,000 --> 00:00:02,000\nHello world\n")
	ctx.Add(commands.ParamTranscript, "Hello world")
	ctx.Add(commands.ParamIdentity, identity)
	ctx.Add(commands.ParamInvocationID, "invocation-1")
	ctx.Add(commands.ParamSummary, &model.Summary{
		Text:      "## Summary\n\nHello.",
		ModelID:   "gemini-2.5-flash",
		InvokedID: "gemini-2.5-flash",
		Usage:     model.TokenUsage{InputTokens: 12, OutputTokens: 4},
	})
	return ctx
}

func TestObjectTriggerReaderIgnores(t *testing.T) {
	tests := []struct {
		name  string
		event *cloud.EventMessage
	}{
		{"wrong extension", testutil.CaptionEvent(bucket, "transcribe/meetup-palla.json")},
		{"written by pipeline", testutil.PipelineWrittenCaptionEvent(bucket, "transcribe/meetup-palla.srt")},
		{"deletion", testutil.NotificationEvent(bucket, "transcribe/meetup-palla.srt", "OBJECT_DELETE", nil)},
		{"missing key", testutil.CaptionEvent(bucket, "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newContext(tt.event)
			commands.NewObjectTriggerReader("trigger", ".srt").Execute(ctx)

			assert.False(t, ctx.HasErrors())
			assert.True(t, ctx.IsHalted())
			assert.Equal(t, model.StatusIgnored, result(t, ctx).Status)
			assert.Nil(t, ctx.Get(cloud.GetGCSObjectName()))
		})
	}
}

func TestObjectTriggerReaderAcceptsUppercaseExtensionAndDecodesKey(t *testing.T) {
	ctx := newContext(testutil.CaptionEvent(bucket, "transcribe/meetup-my+talk%21.SRT"))
	commands.NewObjectTriggerReader("trigger", ".srt").Execute(ctx)

	assert.False(t, ctx.IsHalted())
	obj := ctx.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)
	assert.Equal(t, "transcribe/meetup-my talk!.SRT", obj.Name)
	assert.Equal(t, bucket, obj.Bucket)
}

func TestObjectTriggerReaderRejectsUnexpectedInput(t *testing.T) {
	ctx := newContext("not an event")
	commands.NewObjectTriggerReader("trigger", ".srt").Execute(ctx)
	assert.True(t, ctx.HasErrors())
}

func TestCaptionReaderMissingObjectIsFatal(t *testing.T) {
	obj := &cloud.GCSObject{Bucket: bucket, Name: "transcribe/missing.srt"}
	ctx := newContext(obj)
	commands.NewCaptionReader("reader", testutil.NewMemoryStore()).Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.True(t, errors.Is(ctx.GetErrors()["reader"], model.ErrNotFound))
}

func TestTranscriptExtractorEmptyTranscriptHalts(t *testing.T) {
	ctx := newContext("1\n00:00:01,000 --> 00:00:02,000\n\n2\n00:00:03,000 --> 00:00:04,000\n")
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{Bucket: bucket, Name: "transcribe/meetup-palla.srt"})
	commands.NewTranscriptExtractor("extract").Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.True(t, ctx.IsHalted())
	assert.Equal(t, model.StatusEmptyTranscript, result(t, ctx).Status)
}

func TestIdentityResolverStripsPrefixAndSuffix(t *testing.T) {
	ctx := newContext(nil)
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{Bucket: bucket, Name: "transcribe/meetup-palla-1730000000.srt"})
	commands.NewIdentityResolver("identity", "meetup-").Execute(ctx)

	assert.Equal(t, identity, ctx.Get(commands.ParamIdentity))
}

func TestIdentityResolverIgnoresKeyWithoutIdentity(t *testing.T) {
	ctx := newContext(nil)
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{Bucket: bucket, Name: "transcribe/meetup-.srt"})
	commands.NewIdentityResolver("identity", "meetup-").Execute(ctx)

	assert.True(t, ctx.IsHalted())
	assert.False(t, ctx.HasErrors())
	assert.Nil(t, ctx.Get(commands.ParamIdentity))
	assert.Equal(t, model.StatusIgnored, result(t, ctx).Status)
}

func TestOutputConfigValidatorRequiresBucket(t *testing.T) {
	ctx := summaryContext("model/transcribe/palla.srt")
	commands.NewOutputConfigValidator("validate", "").Execute(ctx)

	assert.True(t, errors.Is(ctx.GetErrors()["validate"], model.ErrMissingOutputConfig))

	ctx = summaryContext("model/transcribe/palla.srt")
	commands.NewOutputConfigValidator("validate", "summary-bucket").Execute(ctx)
	assert.False(t, ctx.HasErrors())
}

func TestCaptionCanonicalizerPromotesAndMarksVideo(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.Seed(bucket, "transcribe/meetup-palla-1730000000.srt", []byte("1\n00:00:01,000 --> 00:00:02,000\nHello world\n"))
	store.SeedWithETag(bucket, layout.VideoKey(identity), []byte("video"), `"abc123"`)

	ctx := summaryContext("transcribe/meetup-palla-1730000000.srt")
	commands.NewCaptionCanonicalizer("canonical", store, layout).Execute(ctx)

	assert.False(t, ctx.HasErrors())
	caption, ok := store.Object(bucket, layout.CanonicalCaptionKey(identity))
	assert.True(t, ok)
	assert.Equal(t, "# Model: gemini-2.5-flash\n\n1\n00:00:01,000 --> 00:00:02,000\nHello world\n", caption)
	assert.Equal(t, commands.CaptionContentType, store.ContentType(bucket, layout.CanonicalCaptionKey(identity)))

	_, ok = store.Object(bucket, "transcribe/meetup-palla-1730000000.srt")
	assert.False(t, ok)
	assert.Equal(t, []string{bucket + "/transcribe/meetup-palla-1730000000.srt"}, store.Deleted())

	mark, ok := store.Object(bucket, layout.VideoETagKey(identity))
	assert.True(t, ok)
	assert.Equal(t, "abc123", mark)
}

func TestCaptionCanonicalizerAlreadyCanonical(t *testing.T) {
	store := testutil.NewMemoryStore()
	key := layout.CanonicalCaptionKey(identity)
	store.Seed(bucket, key, []byte("# Model: old-model\n\n1\n00:00:01,000 --> 00:00:02,000\nHello world\n"))
	store.SeedWithETag(bucket, layout.VideoKey(identity), []byte("video"), `"abc123"`)

	ctx := summaryContext(key)
	commands.NewCaptionCanonicalizer("canonical", store, layout).Execute(ctx)

	caption, _ := store.Object(bucket, key)
	assert.Equal(t, "# Model: gemini-2.5-flash\n\n1\n00:00:01,000 --> 00:00:02,000\nHello world\n", caption)
	assert.Empty(t, store.Deleted())
	_, ok := store.Object(bucket, layout.VideoETagKey(identity))
	assert.False(t, ok)
}

func TestCaptionCanonicalizerAlreadyCanonicalKeepsVideoMarker(t *testing.T) {
	store := testutil.NewMemoryStore()
	key := layout.CanonicalCaptionKey(identity)
	store.Seed(bucket, key, []byte("Hello world\n"))
	store.Seed(bucket, layout.VideoETagKey(identity), []byte("v1-etag"))
	store.SeedWithETag(bucket, layout.VideoKey(identity), []byte("new video"), `"v2-etag"`)

	ctx := summaryContext(key)
	commands.NewCaptionCanonicalizer("canonical", store, layout).Execute(ctx)

	assert.False(t, ctx.HasErrors())
	mark, _ := store.Object(bucket, layout.VideoETagKey(identity))
	assert.Equal(t, "v1-etag", mark)
}

func TestCaptionCanonicalizerMarksVideoWhenOriginalRemovalFails(t *testing.T) {
	original := "transcribe/meetup-palla-1730000000.srt"
	store := testutil.NewMemoryStore()
	store.Seed(bucket, original, []byte("Hello world\n"))
	store.SeedWithETag(bucket, layout.VideoKey(identity), []byte("video"), `"abc123"`)
	store.FailDelete(bucket, original, errors.New("permission denied"))

	ctx := summaryContext(original)
	commands.NewCaptionCanonicalizer("canonical", store, layout).Execute(ctx)

	assert.False(t, ctx.HasErrors())
	_, ok := store.Object(bucket, original)
	assert.True(t, ok)
	_, ok = store.Object(bucket, layout.CanonicalCaptionKey(identity))
	assert.True(t, ok)
	mark, ok := store.Object(bucket, layout.VideoETagKey(identity))
	assert.True(t, ok)
	assert.Equal(t, "abc123", mark)
}

func TestCaptionCanonicalizerFailuresAreNotFatal(t *testing.T) {
	original := "transcribe/meetup-palla-1730000000.srt"
	store := testutil.NewMemoryStore()
	store.Seed(bucket, original, []byte("Hello world\n"))
	store.SeedWithETag(bucket, layout.VideoKey(identity), []byte("video"), `"abc123"`)
	store.FailPut(bucket, original, errors.New("permission denied"))
	store.FailPut(bucket, layout.CanonicalCaptionKey(identity), errors.New("permission denied"))

	ctx := summaryContext(original)
	commands.NewCaptionCanonicalizer("canonical", store, layout).Execute(ctx)

	assert.False(t, ctx.HasErrors())
	caption, ok := store.Object(bucket, original)
	assert.True(t, ok)
	assert.Equal(t, "Hello world\n", caption)
	assert.Empty(t, store.Deleted())
	_, ok = store.Object(bucket, layout.VideoETagKey(identity))
	assert.False(t, ok)
}

func TestCaptionCanonicalizerVideoHeadFailureIsNotFatal(t *testing.T) {
	original := "transcribe/meetup-palla-1730000000.srt"
	store := testutil.NewMemoryStore()
	store.Seed(bucket, original, []byte("Hello world\n"))
	store.Seed(bucket, layout.VideoKey(identity), []byte("video"))
	store.FailHead(bucket, layout.VideoKey(identity), errors.New("permission denied"))

	ctx := summaryContext(original)
	commands.NewCaptionCanonicalizer("canonical", store, layout).Execute(ctx)

	assert.False(t, ctx.HasErrors())
	_, ok := store.Object(bucket, layout.CanonicalCaptionKey(identity))
	assert.True(t, ok)
	_, ok = store.Object(bucket, layout.VideoETagKey(identity))
	assert.False(t, ok)
}

func TestSummaryWriter(t *testing.T) {
	store := testutil.NewMemoryStore()
	ctx := summaryContext("model/transcribe/palla.srt")
	commands.NewSummaryWriter("writer", store, layout, "summary-bucket").Execute(ctx)

	assert.False(t, ctx.HasErrors())
	doc, ok := store.Object("summary-bucket", "model/resumo/palla-g25-flash.md")
	assert.True(t, ok)
	assert.Equal(t, "> *Model: gemini-2.5-flash*\n\n## Summary\n\nHello.", doc)
	assert.Equal(t, commands.SummaryContentType, store.ContentType("summary-bucket", "model/resumo/palla-g25-flash.md"))

	res := result(t, ctx)
	assert.Equal(t, model.StatusSummaryCreated, res.Status)
	assert.Equal(t, "summary-bucket", res.OutputBucket)
	assert.Equal(t, "model/resumo/palla-g25-flash.md", res.OutputKey)
}

func TestSummaryWriterFailureIsFatal(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.FailPut("summary-bucket", "model/resumo/palla-g25-flash.md", errors.New("quota exceeded"))
	ctx := summaryContext("model/transcribe/palla.srt")
	commands.NewSummaryWriter("writer", store, layout, "summary-bucket").Execute(ctx)

	assert.True(t, errors.Is(ctx.GetErrors()["writer"], model.ErrArtifactWrite))
	assert.Nil(t, ctx.Get(cor.CtxResult))
}

func TestSummaryPersistToBigQuery(t *testing.T) {
	ledger := &testutil.FakeLedger{}
	ctx := summaryContext("model/transcribe/palla.srt")
	ctx.Add(commands.ParamSummaryKey, "model/resumo/palla-g25-flash.md")

	cmd := commands.NewSummaryPersistToBigQuery("ledger", ledger, "summary-bucket")
	assert.True(t, cmd.IsExecutable(ctx))
	cmd.Execute(ctx)

	records := ledger.Records()
	if assert.Len(t, records, 1) {
		assert.Equal(t, "invocation-1", records[0].InvocationId)
		assert.Equal(t, identity, records[0].Identity)
		assert.Equal(t, "g25-flash", records[0].ModelSlug)
		assert.Equal(t, len("Hello world"), records[0].InputChars)
		assert.Equal(t, 12, records[0].InputTokens)
	}
}

func TestSummaryPersistToBigQueryFailureIsNotFatal(t *testing.T) {
	ledger := &testutil.FakeLedger{Err: errors.New("table not found")}
	ctx := summaryContext("model/transcribe/palla.srt")
	ctx.Add(commands.ParamSummaryKey, "model/resumo/palla-g25-flash.md")
	commands.NewSummaryPersistToBigQuery("ledger", ledger, "summary-bucket").Execute(ctx)

	assert.False(t, ctx.HasErrors())
}

func TestSummaryPersistToBigQueryWithoutLedger(t *testing.T) {
	ctx := summaryContext("model/transcribe/palla.srt")
	ctx.Add(commands.ParamSummaryKey, "model/resumo/palla-g25-flash.md")
	assert.False(t, commands.NewSummaryPersistToBigQuery("ledger", nil, "summary-bucket").IsExecutable(ctx))
}

func TestJobName(t *testing.T) {
	at := time.Unix(1730000000, 0)
	assert.Equal(t, "meetup-my-talk-1730000000", commands.JobName("meetup-", "uploads/my-talk.MP4", at))

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, commands.JobName("meetup-", string(long)+".mp4", at), 200)
}

func TestTranscriptionJobStarter(t *testing.T) {
	publisher := &testutil.FakePublisher{}
	settings := cloud.Transcription{OutputPrefix: "transcribe/", LanguageCode: "pt-BR"}
	cmd := commands.NewTranscriptionJobStarter("starter", publisher, settings, "meetup-").
		WithClock(func() time.Time { return time.Unix(1730000000, 0) })

	ctx := newContext(nil)
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{Bucket: bucket, Name: "video/palla.mp4"})
	cmd.Execute(ctx)

	assert.False(t, ctx.HasErrors())
	res := result(t, ctx)
	assert.Equal(t, model.StatusStarted, res.Status)
	assert.Equal(t, "meetup-palla-1730000000", res.JobName)

	jobs := publisher.Jobs()
	if assert.Len(t, jobs, 1) {
		assert.Equal(t, "gs://media-bucket/video/palla.mp4", jobs[0].MediaURI)
		assert.Equal(t, "mp4", jobs[0].MediaFormat)
		assert.Equal(t, "video/mp4", jobs[0].MediaMIMEType)
		assert.Equal(t, bucket, jobs[0].OutputBucket)
		assert.Equal(t, "transcribe/", jobs[0].OutputKey)
		assert.Equal(t, "pt-BR", jobs[0].LanguageCode)
		assert.Equal(t, []string{"srt"}, jobs[0].SubtitleFormats)
	}
}

func TestTranscriptionJobStarterPublishFailure(t *testing.T) {
	publisher := &testutil.FakePublisher{Err: errors.New("topic not found")}
	cmd := commands.NewTranscriptionJobStarter("starter", publisher, cloud.Transcription{}, "meetup-")

	ctx := newContext(nil)
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{Bucket: bucket, Name: "video/palla.mp4"})
	cmd.Execute(ctx)

	assert.True(t, ctx.HasErrors())
	assert.Empty(t, publisher.Jobs())
}
