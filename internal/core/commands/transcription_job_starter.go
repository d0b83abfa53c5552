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
	"path"
	"strings"
	"time"

	"github.com/h2non/filetype"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

const maxJobNameLength = 200

// TranscriptionJobStarter asks the transcription service to caption a newly
// uploaded video by publishing a job request.
type TranscriptionJobStarter struct {
	cor.BaseCommand
	publisher       cloud.JobPublisher
	settings        cloud.Transcription
	ingestionPrefix string
	now             func() time.Time
}

func NewTranscriptionJobStarter(name string, publisher cloud.JobPublisher, settings cloud.Transcription, ingestionPrefix string) *TranscriptionJobStarter {
	out := &TranscriptionJobStarter{
		BaseCommand:     *cor.NewBaseCommand(name),
		publisher:       publisher,
		settings:        settings,
		ingestionPrefix: ingestionPrefix,
		now:             time.Now,
	}
	out.InputParamName = cloud.GetGCSObjectName()
	return out
}

// WithClock replaces the clock used for job names.
func (c *TranscriptionJobStarter) WithClock(now func() time.Time) *TranscriptionJobStarter {
	c.now = now
	return c
}

// JobName builds the transcription job name for a video key at the given time.
func JobName(prefix, key string, at time.Time) string {
	base := path.Base(key)
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[:i]
	}
	name := fmt.Sprintf("%s%s-%d", prefix, base, at.Unix())
	if len(name) > maxJobNameLength {
		name = name[:maxJobNameLength]
	}
	return name
}

func (c *TranscriptionJobStarter) Execute(context cor.Context) {
	obj := context.Get(c.GetInputParam()).(*cloud.GCSObject)
	if c.publisher == nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("no transcription job topic configured"))
		return
	}

	format := strings.TrimPrefix(strings.ToLower(path.Ext(obj.Name)), ".")
	mimeType := filetype.GetType(format).MIME.Value
	if mimeType == "" {
		mimeType = obj.MIMEType
	}

	outputBucket := c.settings.OutputBucket
	if outputBucket == "" {
		outputBucket = obj.Bucket
	}

	job := &model.TranscriptionJob{
		Name:            JobName(c.ingestionPrefix, obj.Name, c.now()),
		LanguageCode:    c.settings.LanguageCode,
		MediaFormat:     format,
		MediaMIMEType:   mimeType,
		MediaURI:        fmt.Sprintf("gs://%s/%s", obj.Bucket, obj.Name),
		OutputBucket:    outputBucket,
		OutputKey:       c.settings.OutputPrefix,
		SubtitleFormats: []string{"srt"},
	}

	// Always emitted, whatever the verbosity.
	slog.InfoContext(context.GetContext(), "starting transcription job", "job_name", job.Name, "media_uri", job.MediaURI)

	messageID, err := c.publisher.Publish(context.GetContext(), job)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to start transcription job %s: %w", job.Name, err))
		return
	}
	slog.InfoContext(context.GetContext(), "transcription job started", "job_name", job.Name, "message_id", messageID)

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxResult, &model.Result{Status: model.StatusStarted, Key: obj.Name, JobName: job.Name})
	context.Add(c.GetOutputParam(), job)
}
