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

// Package workflow_test contains tests for the batch generation workflow.
// This file provides the shared setup via TestMain: configuration, logging,
// and the cloud clients the workflow constructor needs. The clients are
// built without authentication since these tests never issue a remote call.
package workflow_test

import (
	"context"
	"os"
	"testing"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-media-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/services"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/workflow"
	"github.com/jaycherian/gcp-go-media-studio/internal/telemetry"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"google.golang.org/api/option"
)

// Shared resources initialized once in TestMain and used by the other test
// functions in this package.
var (
	ctx      context.Context
	config   *cloud.Config
	batchGen *workflow.BatchGenerationWorkflow
)

const tName = "github.com/jaycherian/gcp-go-media-studio/tests/workflow"

var (
	tracer = otel.Tracer(tName)
	logger = otelslog.NewLogger(tName)
)

func TestMain(m *testing.M) {
	var cancel context.CancelFunc
	ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	telemetry.SetupLogging()

	config = cloud.NewConfig()
	config.Application.Name = "media-studio"
	config.Application.GoogleProjectId = "test-project"
	config.Application.APIKey = "test-api-key"
	config.Application.ThreadPoolSize = 2
	config.BigQueryDataSource = cloud.BigQueryDataSource{
		DatasetName:      "media_studio",
		BatchTable:       "batch_jobs",
		BatchResultTable: "batch_results",
	}
	config.Polling = cloud.Polling{IntervalSeconds: 1, MaxAttempts: 3}

	bigqueryClient, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId, option.WithoutAuthentication())
	if err != nil {
		panic(err)
	}
	defer func() { _ = bigqueryClient.Close() }()

	storageClient, err := storage.NewClient(ctx, option.WithoutAuthentication())
	if err != nil {
		panic(err)
	}
	defer func() { _ = storageClient.Close() }()

	generator, err := services.NewGenerationService(
		map[string]services.ImageModel{},
		map[string]services.VideoModel{},
		config.Application.APIKey,
		config.Polling.IntervalSeconds,
		config.Polling.MaxAttempts)
	if err != nil {
		panic(err)
	}

	batchGen = workflow.NewBatchGenerationWorkflow(
		"batch-generation-workflow",
		config,
		bigqueryClient,
		cloud.NewPromptFileStore(storageClient, "test-batch-prompts"),
		generator,
		config.Application.ThreadPoolSize)

	logger.Info("completed test setup")

	os.Exit(m.Run())
}
