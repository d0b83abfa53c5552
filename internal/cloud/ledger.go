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
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-caption-summary/internal/core/model"
)

// SummaryLedger records every summary that reached storage.
type SummaryLedger interface {
	Record(ctx context.Context, record *model.SummaryRecord) error
}

// BigQueryLedger streams ledger rows into a BigQuery table.
type BigQueryLedger struct {
	client  *bigquery.Client
	dataset string
	table   string
}

func NewBigQueryLedger(client *bigquery.Client, dataset, table string) *BigQueryLedger {
	return &BigQueryLedger{client: client, dataset: dataset, table: table}
}

// Record inserts the row using its id as the insert id, so a redelivered
// event within the deduplication window does not produce a second row.
func (l *BigQueryLedger) Record(ctx context.Context, record *model.SummaryRecord) error {
	inserter := l.client.Dataset(l.dataset).Table(l.table).Inserter()
	saver := &bigquery.StructSaver{Struct: record, InsertID: record.Id}
	if err := inserter.Put(ctx, saver); err != nil {
		return fmt.Errorf("bigquery insert into %s.%s failed for %s: %w", l.dataset, l.table, record.OutputKey, err)
	}
	return nil
}
