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

package model

import (
	"time"

	"github.com/google/uuid"
)

// SummaryRecord is the ledger row written to BigQuery for every summary that
// reached storage. The row id is a name-based UUID of the output location so a
// reprocessed video with the same model keeps the same id.
type SummaryRecord struct {
	Id           string    `json:"id" bigquery:"id"`
	InvocationId string    `json:"invocation_id" bigquery:"invocation_id"`
	Identity     string    `json:"identity" bigquery:"identity"`
	ModelId      string    `json:"model_id" bigquery:"model_id"`
	InvokedId    string    `json:"invoked_id" bigquery:"invoked_id"`
	ModelSlug    string    `json:"model_slug" bigquery:"model_slug"`
	OutputBucket string    `json:"output_bucket" bigquery:"output_bucket"`
	OutputKey    string    `json:"output_key" bigquery:"output_key"`
	InputChars   int       `json:"input_chars" bigquery:"input_chars"`
	InputTokens  int       `json:"input_tokens" bigquery:"input_tokens"`
	OutputTokens int       `json:"output_tokens" bigquery:"output_tokens"`
	FallbackUsed bool      `json:"fallback_used" bigquery:"fallback_used"`
	CreateDate   time.Time `json:"create_date" bigquery:"create_date"`
}

// NewSummaryRecord builds a ledger row for a summary written to
// gs://outputBucket/outputKey.
func NewSummaryRecord(invocationID, identity, slug, outputBucket, outputKey string, inputChars int, summary *Summary) *SummaryRecord {
	return &SummaryRecord{
		Id:           uuid.NewSHA1(uuid.NameSpaceURL, []byte("gs://"+outputBucket+"/"+outputKey)).String(),
		InvocationId: invocationID,
		Identity:     identity,
		ModelId:      summary.ModelID,
		InvokedId:    summary.InvokedID,
		ModelSlug:    slug,
		OutputBucket: outputBucket,
		OutputKey:    outputKey,
		InputChars:   inputChars,
		InputTokens:  int(summary.Usage.InputTokens),
		OutputTokens: int(summary.Usage.OutputTokens),
		FallbackUsed: summary.FallbackUsed,
		CreateDate:   time.Now(),
	}
}
