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

// Package commands: this file persists the rows a batch run produced. It is
// the terminal command of the batch generation workflow; once the rows are
// in BigQuery the listener acknowledges the trigger message.
package commands

import (
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/model"
)

// BatchResultsToBigQuery streams the generated result rows into the batch
// results table.
type BatchResultsToBigQuery struct {
	cor.BaseCommand
	inserter *bigquery.Inserter
}

// NewBatchResultsToBigQuery is the constructor for the
// BatchResultsToBigQuery command.
func NewBatchResultsToBigQuery(name string, inserter *bigquery.Inserter) *BatchResultsToBigQuery {
	return &BatchResultsToBigQuery{BaseCommand: *cor.NewBaseCommand(name), inserter: inserter}
}

// Execute writes the piped-in rows in a single streaming insert.
func (c *BatchResultsToBigQuery) Execute(context cor.Context) {
	rows := context.Get(c.GetInputParam()).([]*model.BatchResultRow)

	if err := c.inserter.Put(context.GetContext(), rows); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to persist batch results: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	slog.InfoContext(context.GetContext(), "batch results persisted", "rows", len(rows))
	context.Add(c.GetOutputParam(), rows)
}
