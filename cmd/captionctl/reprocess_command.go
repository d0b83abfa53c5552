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
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/configsource"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/workflow"
)

func newReprocessCommand() *cobra.Command {
	var bucket, key string

	cmd := &cobra.Command{
		Use:   "reprocess",
		Short: "Run the summary workflow once against a stored caption",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cloud.LoadEnvFiles(); err != nil {
				return err
			}
			config, err := cloud.LoadConfiguration()
			if err != nil {
				return err
			}
			if bucket == "" {
				bucket = config.Storage.MediaBucket
			}
			if bucket == "" || key == "" {
				return fmt.Errorf("both --bucket (or storage.media_bucket) and --key are required")
			}

			ctx := cmd.Context()
			clients, err := cloud.NewCloudServiceClients(ctx, config)
			if err != nil {
				return err
			}
			defer clients.Close()

			guardrails := configsource.LoadGuardrails(config.Inference.GuardrailsFile, slog.Default())
			pipeline := workflow.NewCaptionSummaryPipeline(config, clients, guardrails)

			result, err := workflow.Run(ctx, pipeline, cloud.NewObjectEvent(bucket, key))
			if err != nil {
				return err
			}
			out := json.NewEncoder(cmd.OutOrStdout())
			out.SetIndent("", "  ")
			return out.Encode(result)
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket holding the caption (defaults to storage.media_bucket)")
	cmd.Flags().StringVar(&key, "key", "", "Key of the caption to summarize")
	return cmd
}
