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

// Package main contains the setup and initialization logic for the
// application's state: a centralized container holding the configuration,
// the Google Cloud service clients, and the application-level services for
// generation, templates, and batches.
package main

import (
	"context"
	"log"
	"os"

	"github.com/jaycherian/gcp-go-media-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/services"
)

// StateManager holds the shared dependencies for the application, avoiding
// globals scattered across handlers.
type StateManager struct {
	config            *cloud.Config
	cloud             *cloud.ServiceClients
	generationService *services.GenerationService
	templateService   *services.TemplateService
	batchService      *services.BatchService
}

// state is the single StateManager instance for the process.
var state = &StateManager{}

// SetupOS points the configuration loader at the TOML files for this
// deployment.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	// The config loader overlays ".env.local.toml" on top of the base file.
	err = os.Setenv(cloud.EnvConfigRuntime, "local")
	return err
}

// GetConfig loads the application configuration once and caches it.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os environment: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState creates the cloud clients, wires the application services, and
// starts the batch listener.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	// The generation service looks models up by model identifier, the same
	// identifiers the task catalog hands to clients.
	imageModels := make(map[string]services.ImageModel)
	for _, m := range cloudClients.ImageModels {
		imageModels[m.ModelName] = m
	}
	videoModels := make(map[string]services.VideoModel)
	for _, m := range cloudClients.VideoModels {
		videoModels[m.ModelName] = m
	}

	state.generationService, err = services.NewGenerationService(
		imageModels,
		videoModels,
		config.Application.APIKey,
		config.Polling.IntervalSeconds,
		config.Polling.MaxAttempts,
	)
	if err != nil {
		panic(err)
	}

	// The template library persists to Cloud Storage when a bucket is
	// configured, otherwise to a local file.
	var templateStore cloud.TemplateStore
	if config.Storage.TemplateBucket != "" {
		templateStore = cloud.NewGCSTemplateStore(cloudClients.StorageClient, config.Storage.TemplateBucket, config.Storage.TemplateObject)
	} else {
		templateStore = &cloud.FileTemplateStore{Path: config.Storage.TemplateLocalPath}
	}
	state.templateService, err = services.NewTemplateService(ctx, templateStore)
	if err != nil {
		panic(err)
	}

	batchTopic := config.TopicSubscriptions["BatchJobs"]
	inserter := cloudClients.BigQueryClient.
		Dataset(config.BigQueryDataSource.DatasetName).
		Table(config.BigQueryDataSource.BatchTable).
		Inserter()
	state.batchService = services.NewBatchService(
		inserter,
		&services.TopicPublisher{Topic: cloudClients.PubsubClient.Topic(batchTopic.Topic)},
		cloud.NewPromptFileStore(cloudClients.StorageClient, config.Storage.BatchPromptBucket),
	)

	SetupListeners(config, cloudClients, ctx)
}
