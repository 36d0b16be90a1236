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
	"errors"
	"log"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"google.golang.org/genai"
)

// ErrMissingAPIKey indicates the configuration carries no Gemini API key.
var ErrMissingAPIKey = errors.New("application.api-key is not set")

// ServiceClients acts as a simple dependency injection container for the
// cloud clients and wrapped model handles used across the application.
type ServiceClients struct {
	Config         *Config
	StorageClient  *storage.Client
	PubsubClient   *pubsub.Client
	BigQueryClient *bigquery.Client
	GenAIClient    *genai.Client
	PubSubListeners map[string]*PubSubListener
	ImageModels    map[string]*QuotaAwareImageModel
	VideoModels    map[string]*QuotaAwareVideoModel
}

// Close releases all underlying client connections. Errors are logged and
// swallowed: Close runs on shutdown where there is nothing left to do with
// them.
func (s *ServiceClients) Close() {
	if s.StorageClient != nil {
		if err := s.StorageClient.Close(); err != nil {
			log.Printf("failed to close storage client: %v", err)
		}
	}
	if s.PubsubClient != nil {
		if err := s.PubsubClient.Close(); err != nil {
			log.Printf("failed to close pubsub client: %v", err)
		}
	}
	if s.BigQueryClient != nil {
		if err := s.BigQueryClient.Close(); err != nil {
			log.Printf("failed to close bigquery client: %v", err)
		}
	}
}

// NewCloudServiceClients constructs the full client container from the
// configuration. The GenAI client authenticates with the configured API key
// against the Gemini API backend; the remaining clients use application
// default credentials. Each configured image and video model is wrapped in
// its quota-aware decorator keyed by the configuration alias (e.g. "default",
// "fast").
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	if config.Application.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.Application.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	pubsubClient, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	bigqueryClient, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	out := &ServiceClients{
		Config:          config,
		StorageClient:   storageClient,
		PubsubClient:    pubsubClient,
		BigQueryClient:  bigqueryClient,
		GenAIClient:     genaiClient,
		PubSubListeners: make(map[string]*PubSubListener),
		ImageModels:     make(map[string]*QuotaAwareImageModel),
		VideoModels:     make(map[string]*QuotaAwareVideoModel),
	}

	// Listeners are created without commands; the workflows attach them
	// once the processing chains are assembled.
	for subKey, values := range config.TopicSubscriptions {
		listener, err := NewPubSubListener(pubsubClient, values.Name, nil)
		if err != nil {
			return nil, err
		}
		out.PubSubListeners[subKey] = listener
	}

	for alias, m := range config.ImageModels {
		out.ImageModels[alias] = NewQuotaAwareImageModel(m.Model, genaiClient.Models, m.MaxRequestsPerMinute)
	}
	for alias, m := range config.VideoModels {
		out.VideoModels[alias] = NewQuotaAwareVideoModel(m.Model, genaiClient.Models, genaiClient.Operations, m.MaxRequestsPerMinute)
	}

	return out, nil
}
