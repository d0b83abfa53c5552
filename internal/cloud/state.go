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
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/genai"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/inference"
)

// DefaultSafetySettings leaves content filtering off: the input is a trusted
// transcript of our own recordings.
var DefaultSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
}

// ServiceClients is the container for every Google Cloud client and the
// adapters built on them. It is created once at start-up and shared.
type ServiceClients struct {
	StorageClient   *storage.Client                   // Client for Google Cloud Storage (GCS).
	PubsubClient    *pubsub.Client                    // Client for Google Cloud Pub/Sub.
	GenAIClient     *genai.Client                     // Client for Vertex AI.
	BiqQueryClient  *bigquery.Client                  // Client for Google Cloud BigQuery.
	IAMClient       *credentials.IamCredentialsClient // Client for IAM, used to sign summary URLs.
	PubSubListeners map[string]*PubSubListener        // Active listeners keyed by CaptionTopicKey / VideoTopicKey.

	ObjectStore  ObjectStore            // Cloud Storage behind the narrow pipeline interface.
	Conversation inference.Conversation // Rate-limited Vertex AI converse adapter.
	JobPublisher JobPublisher           // Nil when no transcription topic is configured.
	Ledger       SummaryLedger          // Nil when no BigQuery dataset is configured.
}

// Close releases every client that was created.
func (c *ServiceClients) Close() {
	if p, ok := c.JobPublisher.(*PubSubJobPublisher); ok {
		p.Stop()
	}
	var errs []error
	if c.StorageClient != nil {
		errs = append(errs, c.StorageClient.Close())
	}
	if c.PubsubClient != nil {
		errs = append(errs, c.PubsubClient.Close())
	}
	if c.BiqQueryClient != nil {
		errs = append(errs, c.BiqQueryClient.Close())
	}
	if c.IAMClient != nil {
		errs = append(errs, c.IAMClient.Close())
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("failed to close cloud clients", "error", err)
	}
}

// NewCloudServiceClients creates the clients described by config. Optional
// collaborators (transcription publisher, summary ledger) are only created
// when configured.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}

	slog.Info("creating genai client", "project", config.Application.GoogleProjectId, "location", config.Application.GoogleLocation)
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  config.Application.GoogleProjectId,
		Location: config.Application.GoogleLocation,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	bc, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	ic, err := credentials.NewIamCredentialsClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create iam credentials client: %w", err)
	}

	subscriptions := make(map[string]*PubSubListener)
	for subKey := range config.TopicSubscriptions {
		values := config.TopicSubscriptions[subKey]
		actual, err := NewPubSubListener(pc, values.Name, nil)
		if err != nil {
			return nil, err
		}
		subscriptions[subKey] = actual
	}

	conversation := NewQuotaAwareConversation(gc.Models, config.Inference.RateLimit)
	conversation.SafetySettings = DefaultSafetySettings

	cloud = &ServiceClients{
		StorageClient:   sc,
		PubsubClient:    pc,
		GenAIClient:     gc,
		BiqQueryClient:  bc,
		IAMClient:       ic,
		PubSubListeners: subscriptions,
		ObjectStore:     NewGCSObjectStore(sc),
		Conversation:    conversation,
	}
	if config.Transcription.JobTopic != "" {
		cloud.JobPublisher = NewPubSubJobPublisher(pc, config.Transcription.JobTopic)
	}
	if config.BigQueryDataSource.DatasetName != "" {
		cloud.Ledger = NewBigQueryLedger(bc, config.BigQueryDataSource.DatasetName, config.BigQueryDataSource.SummaryTable)
	}

	return cloud, nil
}
