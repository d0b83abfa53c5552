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

package cloud

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// JobPublisher submits transcription job requests.
type JobPublisher interface {
	Publish(ctx context.Context, job *model.TranscriptionJob) (string, error)
}

// PubSubJobPublisher publishes job requests as JSON to a topic consumed by the
// transcription service.
type PubSubJobPublisher struct {
	topic *pubsub.Topic
}

func NewPubSubJobPublisher(client *pubsub.Client, topicID string) *PubSubJobPublisher {
	return &PubSubJobPublisher{topic: client.Topic(topicID)}
}

// Publish blocks until the server acknowledges the message and returns its id.
func (p *PubSubJobPublisher) Publish(ctx context.Context, job *model.TranscriptionJob) (string, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transcription job %s: %w", job.Name, err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"job_name":      job.Name,
			"language_code": job.LanguageCode,
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish transcription job %s: %w", job.Name, err)
	}
	return id, nil
}

// Stop flushes pending messages.
func (p *PubSubJobPublisher) Stop() {
	p.topic.Stop()
}
