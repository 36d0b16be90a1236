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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the generation models, the polling loop, batch persistence, template
// storage, and Pub/Sub topics.
//
// The API credential lives here deliberately: every component that talks to
// the generation service receives the key through this struct rather than
// reading process-wide state at the call site.
//
// Structs:
//   - GenerativeModel: Rate limit for one generation model.
//   - Polling: Interval and attempt budget for long-running operations.
//   - Storage: GCS buckets/objects and the local template file fallback.
//   - BigQueryDataSource: Dataset and tables for batch records.
//   - TopicSubscription: Configuration for a single Pub/Sub subscription.
//   - Config: The top-level aggregate.
//
// Functions:
//   - NewConfig: Constructor that initializes a Config with empty maps.
package cloud

import "google.golang.org/genai"

// DefaultSafetySettings defines the default content safety thresholds for
// image generation models. These are non-restrictive; the studio is an
// internal tool operating on trusted input.
var DefaultSafetySettings = []*genai.SafetySetting{
	{
		Category:  genai.HarmCategoryDangerousContent,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHarassment,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategoryHateSpeech,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
	{
		Category:  genai.HarmCategorySexuallyExplicit,
		Threshold: genai.HarmBlockThresholdBlockNone,
	},
}

// GenerativeModel holds the per-model settings for one generation model.
// The map key in Config is the model identifier clients select by.
type GenerativeModel struct {
	Model                string `toml:"model"`                   // The model identifier passed to the GenAI API.
	MaxRequestsPerMinute int    `toml:"max_requests_per_minute"` // Request budget enforced by the quota-aware wrapper.
}

// Polling configures the long-running operation poll loop shared by all
// video generation paths.
type Polling struct {
	IntervalSeconds int `toml:"interval_seconds"` // Delay between status re-fetches. Defaults to 5.
	MaxAttempts     int `toml:"max_attempts"`     // Re-fetch budget before the operation is abandoned. Defaults to 120.
}

// Storage configures durable storage locations.
type Storage struct {
	TemplateBucket    string `toml:"template_bucket"`     // GCS bucket holding the serialized template collection.
	TemplateObject    string `toml:"template_object"`     // Object name of the template collection within the bucket.
	TemplateLocalPath string `toml:"template_local_path"` // Local file used instead of GCS when the bucket is unset.
	BatchPromptBucket string `toml:"batch_prompt_bucket"` // Bucket where batch prompt files are uploaded.
}

// BigQueryDataSource represents the configuration for the batch BigQuery
// data source.
type BigQueryDataSource struct {
	DatasetName      string `toml:"dataset"`            // The name of the BigQuery dataset.
	BatchTable       string `toml:"batch_table"`        // Table of submitted batch jobs.
	BatchResultTable string `toml:"batch_result_table"` // Table of per-item batch results.
}

// TopicSubscription represents the configuration for a Pub/Sub topic
// subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	Topic            string `toml:"topic"`              // The topic batch triggers are published to.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Config represents the overall configuration for the application, loaded
// from TOML files. It acts as the root container for all other configuration
// structs.
type Config struct {
	Application struct {
		Name            string `toml:"name"`              // The name of the application, used as the telemetry service name.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
		APIKey          string `toml:"api_key"`           // The GenAI API key. Absence fails every generation call fast.
		ThreadPoolSize  int    `toml:"thread_pool_size"`  // Worker pool size for batch item generation.
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"`
	Polling            Polling                      `toml:"polling"`
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Keyed by a logical name (e.g. "BatchTopic").
	ImageModels        map[string]GenerativeModel   `toml:"image_models"`        // Keyed by model identifier.
	VideoModels        map[string]GenerativeModel   `toml:"video_models"`        // Keyed by model identifier.
}

// NewConfig creates a new, initialized Config instance. The maps must be
// allocated before the TOML loader populates them.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
		ImageModels:        make(map[string]GenerativeModel),
		VideoModels:        make(map[string]GenerativeModel),
	}
}
