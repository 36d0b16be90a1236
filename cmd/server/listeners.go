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

// Package main: Pub/Sub listener wiring. The batch listener receives the
// trigger message a batch submission publishes and runs the batch
// generation workflow against it.
package main

import (
	"context"

	"github.com/jaycherian/gcp-go-media-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/workflow"
)

// SetupListeners attaches the batch generation workflow to its subscription
// and starts receiving.
func SetupListeners(config *cloud.Config, cloudClients *cloud.ServiceClients, ctx context.Context) {
	batchWorkflow := workflow.NewBatchGenerationWorkflow(
		"batch-generation-workflow",
		config,
		cloudClients.BigQueryClient,
		cloud.NewPromptFileStore(cloudClients.StorageClient, config.Storage.BatchPromptBucket),
		state.generationService,
		config.Application.ThreadPoolSize,
	)
	cloudClients.PubSubListeners["BatchJobs"].SetCommand(batchWorkflow)
	cloudClients.PubSubListeners["BatchJobs"].Listen(ctx)
}
