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

// Package services: batch submission. Submitting a batch records a BatchJob
// row in BigQuery and publishes the same record to a Pub/Sub topic, where
// the batch generation workflow picks it up. File-driven batches upload
// their prompt file to Cloud Storage first so the trigger message stays
// small.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/model"
)

// RowInserter is the slice of the BigQuery inserter the batch service
// needs. *bigquery.Inserter satisfies it.
type RowInserter interface {
	Put(ctx context.Context, src interface{}) error
}

// JobPublisher hands a serialized batch job to the processing pipeline.
type JobPublisher interface {
	Publish(ctx context.Context, data []byte) (serverID string, err error)
}

// PromptFileWriter uploads a batch prompt file and names the bucket it
// writes to.
type PromptFileWriter interface {
	Bucket() string
	Save(ctx context.Context, object string, data []byte) error
}

// TopicPublisher adapts a Pub/Sub topic to the JobPublisher interface,
// blocking until the server acknowledges the publish.
type TopicPublisher struct {
	Topic *pubsub.Topic
}

func (t *TopicPublisher) Publish(ctx context.Context, data []byte) (string, error) {
	return t.Topic.Publish(ctx, &pubsub.Message{Data: data}).Get(ctx)
}

// BatchService validates and records batch submissions.
type BatchService struct {
	inserter  RowInserter
	publisher JobPublisher
	prompts   PromptFileWriter
}

// NewBatchService wires the batch service to its persistence and messaging
// dependencies.
func NewBatchService(inserter RowInserter, publisher JobPublisher, prompts PromptFileWriter) *BatchService {
	return &BatchService{inserter: inserter, publisher: publisher, prompts: prompts}
}

// CountPrompts returns the number of non-blank lines in a prompt file.
// Lines containing only whitespace do not count.
func CountPrompts(data []byte) int {
	count := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// batchableTask parses the task type and rejects those whose requests need
// per-item binary attachments. The batch pipeline carries prompts only, so
// image-to-video and audio-to-video items could never pass validation.
func batchableTask(taskType string) (model.TaskType, error) {
	task, err := model.ParseTaskType(taskType)
	if err != nil {
		return "", NewValidationError("task_type", err.Error())
	}
	if task == model.TaskImageToVideo || task == model.TaskAudioToVideo {
		return "", NewValidationError("task_type", fmt.Sprintf("%s requires per-item attachments and cannot run as a batch", task))
	}
	return task, nil
}

// SubmitQuantity records a batch that repeats one prompt a fixed number of
// times.
func (s *BatchService) SubmitQuantity(ctx context.Context, name string, taskType string, prompt string, quantity int) (*model.BatchJob, error) {
	task, err := batchableTask(taskType)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, NewValidationError("prompt", "a prompt is required")
	}
	if quantity < 1 {
		return nil, NewValidationError("quantity", "quantity must be at least 1")
	}

	job := model.NewBatchJob(name, task)
	job.Prompt = prompt
	job.ItemCount = quantity
	return job, s.record(ctx, job)
}

// SubmitFile records a batch driven by an uploaded prompt file, one item
// per non-blank line. The file is stored in the prompt bucket under the job
// id.
func (s *BatchService) SubmitFile(ctx context.Context, name string, taskType string, fileData []byte) (*model.BatchJob, error) {
	task, err := batchableTask(taskType)
	if err != nil {
		return nil, err
	}
	count := CountPrompts(fileData)
	if count < 1 {
		return nil, NewValidationError("prompt_file", "the prompt file contains no prompts")
	}

	job := model.NewBatchJob(name, task)
	job.ItemCount = count

	object := fmt.Sprintf("prompts/%s.txt", job.Id)
	if err := s.prompts.Save(ctx, object, fileData); err != nil {
		return nil, fmt.Errorf("failed to store prompt file: %w", err)
	}
	job.PromptFileBucket = s.prompts.Bucket()
	job.PromptFileObject = object

	return job, s.record(ctx, job)
}

// record persists the job row and publishes the trigger message.
func (s *BatchService) record(ctx context.Context, job *model.BatchJob) error {
	if err := s.inserter.Put(ctx, job); err != nil {
		return fmt.Errorf("failed to persist batch job: %w", err)
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	serverID, err := s.publisher.Publish(ctx, data)
	if err != nil {
		return fmt.Errorf("failed to publish batch job: %w", err)
	}
	slog.InfoContext(ctx, "batch job submitted", "job", job.Id, "items", job.ItemCount, "message", serverID)
	return nil
}
