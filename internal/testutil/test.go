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

// Package test provides utility functions and mock data for the test
// suite: loading the test-specific configuration and sample trigger
// messages for the batch workflow.
package test

import (
	"log"
	"os"
	"testing"

	"github.com/jaycherian/gcp-go-media-studio/internal/cloud"
)

// StateManager caches the test configuration so it is loaded only once per
// run.
type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is non-nil. Convenience to cut
// boilerplate in the happy path.
func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("Error reading config file: %v", err)
	}
}

// GetTestBatchTriggerText returns the JSON of a quantity-driven batch
// trigger message, shaped like what the batch service publishes.
func GetTestBatchTriggerText() string {
	return `{
  "id": "0f1b6f32-9c30-4d9c-bb5f-47b8a60b61a1",
  "name": "neon city stills",
  "task_type": "Text-to-Image",
  "prompt": "Cyberpunk city at night, neon lights, rain reflections",
  "item_count": 3,
  "create_date": "2025-05-20T10:30:00Z"
}`
}

// GetTestBatchFileTriggerText returns the JSON of a file-driven batch
// trigger message referencing an uploaded prompt file.
func GetTestBatchFileTriggerText() string {
	return `{
  "id": "7c3e1d04-58aa-4f10-9a2e-2f6f0c9f8d12",
  "name": "storyboard shots",
  "task_type": "Text-to-Video",
  "item_count": 2,
  "prompt_file_bucket": "media-studio-batch-prompts",
  "prompt_file_object": "prompts/7c3e1d04-58aa-4f10-9a2e-2f6f0c9f8d12.txt",
  "create_date": "2025-05-20T11:00:00Z"
}`
}

// SetupOS points the configuration loader at the test TOML files. The
// loader overlays ".env.test.toml" on top of the base file.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, "configs")
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig is the singleton accessor for the test configuration.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}
