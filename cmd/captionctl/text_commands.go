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
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaycherian/gcp-go-caption-summary/internal/core/inference"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/transcript"
)

func newIdentityCommand() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "identity <caption-file-name>...",
		Short: "Print the content identity derived from caption file names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				fmt.Fprintln(cmd.OutOrStdout(), transcript.DeriveIdentityWithPrefix(name, prefix))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", transcript.IngestionPrefix, "Prefix added by the transcription service")
	return cmd
}

func newExtractCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <file.srt>",
		Short: "Print the plain text of a local caption file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read caption: %w", err)
			}
			text := transcript.ExtractPlainText(strings.ToValidUTF8(string(data), "�"))
			if text == "" {
				return fmt.Errorf("%s has no caption text", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func newSlugCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "slug <model-id>...",
		Short: "Print the summary file slug of model ids",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, inference.ModelSlug(id))
			}
			return nil
		},
	}
}
