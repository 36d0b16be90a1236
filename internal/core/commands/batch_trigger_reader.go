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

// Package commands provides the concrete Command implementations that make
// up the batch generation workflow. This file defines the entry command:
// it parses the Pub/Sub trigger message published at batch submission time
// back into a BatchJob and hands it to the rest of the chain.
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jaycherian/gcp-go-media-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/model"
)

const batchJobParameterName = "__BATCH_JOB__"

// GetBatchJobParameterName returns the well-known context key the parsed
// BatchJob is stored under, so any command in the chain can reach it
// without relying on the piped input.
func GetBatchJobParameterName() string {
	return batchJobParameterName
}

// BatchTriggerToJob parses the raw trigger message into a BatchJob.
type BatchTriggerToJob struct {
	cor.BaseCommand
}

// NewBatchTriggerToJob is the constructor for the BatchTriggerToJob command.
func NewBatchTriggerToJob(name string) *BatchTriggerToJob {
	return &BatchTriggerToJob{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute unmarshals the message text from the input parameter and stores
// the job both under the well-known key and as the chain output.
func (c *BatchTriggerToJob) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)

	var job model.BatchJob
	if err := json.Unmarshal([]byte(in), &job); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("failed to unmarshal batch trigger: %w", err))
		return
	}
	if _, err := model.ParseTaskType(job.TaskType); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(GetBatchJobParameterName(), &job)
	context.Add(c.GetOutputParam(), &job)
}
