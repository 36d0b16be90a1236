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

// Package workflow defines the high-level orchestrations that combine
// commands into pipelines. This file implements the batch generation
// workflow, triggered by the Pub/Sub message a batch submission publishes.
package workflow

import (
	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-media-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/commands"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/services"
)

// BatchGenerationWorkflow processes one submitted batch end to end: parse
// the trigger, expand the prompt list, generate every item through a worker
// pool, and persist the result rows to BigQuery.
type BatchGenerationWorkflow struct {
	cor.BaseCommand
	config          *cloud.Config
	bigqueryClient  *bigquery.Client
	promptFiles     *cloud.PromptFileStore
	generator       *services.GenerationService
	numberOfWorkers int
	chain           cor.Chain
}

// NewBatchGenerationWorkflow assembles the workflow chain.
func NewBatchGenerationWorkflow(
	name string,
	config *cloud.Config,
	bigqueryClient *bigquery.Client,
	promptFiles *cloud.PromptFileStore,
	generator *services.GenerationService,
	numberOfWorkers int,
) *BatchGenerationWorkflow {
	out := &BatchGenerationWorkflow{
		BaseCommand:     *cor.NewBaseCommand(name),
		config:          config,
		bigqueryClient:  bigqueryClient,
		promptFiles:     promptFiles,
		generator:       generator,
		numberOfWorkers: numberOfWorkers,
	}
	out.initializeChain()
	return out
}

// Execute runs the underlying chain against the shared context.
func (m *BatchGenerationWorkflow) Execute(context cor.Context) {
	m.chain.Execute(context)
}

// IsExecutable only requires a Go context, matching the chain itself.
func (m *BatchGenerationWorkflow) IsExecutable(context cor.Context) bool {
	return context.GetContext() != nil
}

// initializeChain builds the command sequence. Each command's output is
// piped into the next one.
func (m *BatchGenerationWorkflow) initializeChain() {
	out := cor.NewBaseChain(m.GetName())

	// Step 1: parse the Pub/Sub trigger back into a BatchJob.
	out.AddCommand(commands.NewBatchTriggerToJob("batch-trigger-to-job"))

	// Step 2: expand the job into its ordered prompt list, downloading the
	// prompt file from Cloud Storage when the job references one.
	out.AddCommand(commands.NewBatchPromptsLoader("load-batch-prompts", m.promptFiles))

	// Step 3: generate one item per prompt through the worker pool.
	out.AddCommand(commands.NewBatchItemGenerator("generate-batch-items", m.generator, m.numberOfWorkers))

	// Step 4: stream the result rows into BigQuery.
	inserter := m.bigqueryClient.
		Dataset(m.config.BigQueryDataSource.DatasetName).
		Table(m.config.BigQueryDataSource.BatchResultTable).
		Inserter()
	out.AddCommand(commands.NewBatchResultsToBigQuery("write-batch-results", inserter))

	m.chain = out
}
