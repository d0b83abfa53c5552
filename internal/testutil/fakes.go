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

package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// FakeConversation records converse requests and answers them with Reply.
type FakeConversation struct {
	Reply func(req *model.ConverseRequest) (*model.ConverseResponse, error)

	mu    sync.Mutex
	calls []model.ConverseRequest
}

// NewFakeConversation answers every request with resp.
func NewFakeConversation(resp *model.ConverseResponse) *FakeConversation {
	return &FakeConversation{Reply: func(*model.ConverseRequest) (*model.ConverseResponse, error) {
		return resp, nil
	}}
}

func (f *FakeConversation) Converse(_ context.Context, req *model.ConverseRequest) (*model.ConverseResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, *req)
	f.mu.Unlock()
	if f.Reply == nil {
		return nil, errors.New("fake conversation has no reply")
	}
	return f.Reply(req)
}

// Calls returns a copy of the requests received so far.
func (f *FakeConversation) Calls() []model.ConverseRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ConverseRequest(nil), f.calls...)
}

// TextResponse is a response holding a single text block.
func TextResponse(text string, inputTokens, outputTokens int32) *model.ConverseResponse {
	return &model.ConverseResponse{
		Content: []model.ContentBlock{{Kind: model.ContentText, Text: text}},
		Usage:   model.TokenUsage{InputTokens: inputTokens, OutputTokens: outputTokens},
	}
}

// FakePublisher collects published transcription jobs.
type FakePublisher struct {
	Err error

	mu   sync.Mutex
	jobs []model.TranscriptionJob
}

var _ cloud.JobPublisher = (*FakePublisher)(nil)

func (f *FakePublisher) Publish(_ context.Context, job *model.TranscriptionJob) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, *job)
	return job.Name, nil
}

func (f *FakePublisher) Jobs() []model.TranscriptionJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.TranscriptionJob(nil), f.jobs...)
}

// FakeLedger collects summary ledger rows.
type FakeLedger struct {
	Err error

	mu      sync.Mutex
	records []model.SummaryRecord
}

var _ cloud.SummaryLedger = (*FakeLedger)(nil)

func (f *FakeLedger) Record(_ context.Context, record *model.SummaryRecord) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, *record)
	return nil
}

func (f *FakeLedger) Records() []model.SummaryRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.SummaryRecord(nil), f.records...)
}

// NotificationEvent builds a Cloud Storage notification message.
func NotificationEvent(bucket, key, eventType string, metadata map[string]string) *cloud.EventMessage {
	contentType := "application/x-subrip"
	if strings.HasSuffix(strings.ToLower(key), ".mp4") {
		contentType = "video/mp4"
	}
	payload := cloud.GCSPubSubNotification{
		Kind:           "storage#object",
		ID:             bucket + "/" + key + "/1728615848664286",
		Name:           key,
		Bucket:         bucket,
		Generation:     "1728615848664286",
		MetaGeneration: "1",
		ContentType:    contentType,
		TimeCreated:    "2025-11-15T20:52:05.672Z",
		Updated:        "2025-11-15T20:52:05.672Z",
		Size:           "1024",
		MD5Hash:        "67c1rAU+1RYZzK5zp8iBkA==",
		MetaData:       metadata,
		ETag:           "CN658+yrhYkDEAE=",
	}
	data, _ := json.Marshal(payload)
	return &cloud.EventMessage{
		ID:   "1234567890",
		Data: data,
		Attributes: map[string]string{
			"bucketId":               bucket,
			"objectId":               key,
			cloud.EventTypeAttribute: eventType,
			"payloadFormat":          "JSON_API_V1",
		},
	}
}

// CaptionEvent is the finalize notification of a caption written by the
// transcription service.
func CaptionEvent(bucket, key string) *cloud.EventMessage {
	return NotificationEvent(bucket, key, cloud.ObjectFinalize, nil)
}

// PipelineWrittenCaptionEvent is the notification produced by one of the
// pipeline's own caption writes.
func PipelineWrittenCaptionEvent(bucket, key string) *cloud.EventMessage {
	return NotificationEvent(bucket, key, cloud.ObjectFinalize,
		map[string]string{cloud.WrittenByMetadataKey: cloud.WrittenByMetadataValue})
}

// VideoEvent is the finalize notification of an uploaded video.
func VideoEvent(bucket, key string) *cloud.EventMessage {
	return NotificationEvent(bucket, key, cloud.ObjectFinalize, nil)
}

// NewTestConfig returns a validated configuration pointing at test buckets.
func NewTestConfig() *cloud.Config {
	config := cloud.NewConfig()
	config.Application.Name = "caption-summary-test"
	config.Application.GoogleProjectId = "test-project"
	config.Application.GoogleLocation = "us-central1"
	config.Storage.MediaBucket = "media-bucket"
	config.Summary.OutputBucket = "summary-bucket"
	config.Transcription.JobTopic = "transcription-jobs"
	config.BigQueryDataSource.DatasetName = "caption_summary"
	config.BigQueryDataSource.SummaryTable = "summaries"
	if err := config.Validate(); err != nil {
		panic(err)
	}
	return config
}
