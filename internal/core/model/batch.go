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

// Package model defines the core data structures for the application.
// This file holds the persistent batch records. A BatchJob row is written to
// BigQuery when a batch is submitted, and the same struct is serialized as
// the Pub/Sub trigger message that hands the job to the out-of-band worker.
// BatchResultRow rows are written by the worker, one per generated item.
package model

import (
	"time"

	"github.com/google/uuid"
)

// BatchJob is one named batch submission. Prompt is carried explicitly for
// quantity-driven jobs so the worker sees the same prompt the user entered;
// file-driven jobs leave it empty and reference the uploaded prompt file
// instead. Only prompt-driven task types run as batches.
type BatchJob struct {
	Id               string    `json:"id" bigquery:"id"`
	Name             string    `json:"name" bigquery:"name"`
	TaskType         string    `json:"task_type" bigquery:"task_type"`
	Prompt           string    `json:"prompt,omitempty" bigquery:"prompt"`
	ItemCount        int       `json:"item_count" bigquery:"item_count"`
	PromptFileBucket string    `json:"prompt_file_bucket,omitempty" bigquery:"prompt_file_bucket"`
	PromptFileObject string    `json:"prompt_file_object,omitempty" bigquery:"prompt_file_object"`
	CreateDate       time.Time `json:"create_date" bigquery:"create_date"`
}

// NewBatchJob creates a batch record with a fresh identifier and the current
// timestamp.
func NewBatchJob(name string, taskType TaskType) *BatchJob {
	return &BatchJob{
		Id:         uuid.NewString(),
		Name:       name,
		TaskType:   string(taskType),
		CreateDate: time.Now(),
	}
}

// BatchResultRow is one generated artifact produced while processing a batch
// job, persisted to BigQuery by the batch worker.
type BatchResultRow struct {
	JobId      string    `json:"job_id" bigquery:"job_id"`
	Sequence   int       `json:"sequence" bigquery:"sequence"`
	Kind       string    `json:"kind" bigquery:"kind"`
	URI        string    `json:"uri" bigquery:"uri"`
	Status     string    `json:"status" bigquery:"status"`
	CreateDate time.Time `json:"create_date" bigquery:"create_date"`
}
