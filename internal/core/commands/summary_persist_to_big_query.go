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
	"unicode/utf8"

	"github.com/jaycherian/gcp-go-caption-summary/internal/cloud"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/cor"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/inference"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// SummaryPersistToBigQuery appends a ledger row for the written summary. The
// summary is already in storage at this point, so a failed insert is logged
// and counted but does not fail the invocation.
type SummaryPersistToBigQuery struct {
	cor.BaseCommand
	ledger       cloud.SummaryLedger
	outputBucket string
}

func NewSummaryPersistToBigQuery(name string, ledger cloud.SummaryLedger, outputBucket string) *SummaryPersistToBigQuery {
	out := &SummaryPersistToBigQuery{BaseCommand: *cor.NewBaseCommand(name), ledger: ledger, outputBucket: outputBucket}
	out.InputParamName = ParamSummaryKey
	return out
}

func (c *SummaryPersistToBigQuery) IsExecutable(context cor.Context) bool {
	return c.ledger != nil &&
		c.BaseCommand.IsExecutable(context) &&
		context.Get(ParamSummary) != nil &&
		context.Get(ParamIdentity) != nil
}

func (c *SummaryPersistToBigQuery) Execute(context cor.Context) {
	key := context.Get(ParamSummaryKey).(string)
	summary := context.Get(ParamSummary).(*model.Summary)
	identity := context.Get(ParamIdentity).(string)
	invocationID, _ := context.Get(ParamInvocationID).(string)
	transcriptText, _ := context.Get(ParamTranscript).(string)

	record := model.NewSummaryRecord(invocationID, identity, inference.ModelSlug(summary.ModelID),
		c.outputBucket, key, utf8.RuneCountInString(transcriptText), summary)

	if err := c.ledger.Record(context.GetContext(), record); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		slog.WarnContext(context.GetContext(), "summary ledger insert failed", "identity", identity, "key", key, "error", err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), record)
}
