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
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/configsource"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/services"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/workflow"
)

type StateManager struct {
	config         *cloud.Config
	cloud          *cloud.ServiceClients
	catalog        *cloud.ModelCatalog
	videoService   *services.VideoService
	captionFlow    *workflow.CaptionSummaryWorkflow
	transcribeFlow *workflow.TranscriptionWorkflow
}

var state = &StateManager{}

// SetupOS points the configuration loader at the configs directory unless
// the environment already does.
func SetupOS() error {
	if _, ok := os.LookupEnv(cloud.EnvConfigFilePrefix); !ok {
		if err := os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if _, ok := os.LookupEnv(cloud.EnvConfigRuntime); !ok {
		return os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return nil
}

func GetConfig() (*cloud.Config, error) {
	if state.config == nil {
		if err := cloud.LoadEnvFiles(); err != nil {
			return nil, err
		}
		if err := SetupOS(); err != nil {
			return nil, fmt.Errorf("failed to setup os: %w", err)
		}
		config, err := cloud.LoadConfiguration()
		if err != nil {
			return nil, err
		}
		state.config = config
	}
	return state.config, nil
}

func InitState(ctx context.Context) error {
	config, err := GetConfig()
	if err != nil {
		return err
	}

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return err
	}
	state.cloud = cloudClients

	catalog, err := cloud.LoadModelCatalog(config.Inference.CatalogFile)
	if err != nil {
		return err
	}
	state.catalog = catalog

	guardrails := configsource.LoadGuardrails(config.Inference.GuardrailsFile, slog.Default())
	state.captionFlow = workflow.NewCaptionSummaryPipeline(config, cloudClients, guardrails)
	state.transcribeFlow = workflow.NewTranscriptionPipeline(config, cloudClients)

	var signer services.URLSigner
	if config.Application.SignerServiceAccountEmail != "" {
		signer = &services.IAMURLSigner{
			StorageClient: cloudClients.StorageClient,
			IAMClient:     cloudClients.IAMClient,
			SignerEmail:   config.Application.SignerServiceAccountEmail,
		}
	}
	state.videoService = &services.VideoService{
		Store:         cloudClients.ObjectStore,
		MediaBucket:   config.Storage.MediaBucket,
		SummaryBucket: config.Summary.OutputBucket,
		Layout:        config.Layout(),
		Catalog:       catalog,
		Defaults:      config.DefaultModel(),
		Signer:        signer,
	}

	SetupListeners(ctx, cloudClients, map[string]cor.Command{
		cloud.CaptionTopicKey: state.captionFlow,
		cloud.VideoTopicKey:   state.transcribeFlow,
	})
	return nil
}
