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

// Package commands: this file runs the generation calls for a batch. The
// prompts are fanned out to a worker pool so several items generate at
// once; per-model rate limits still apply inside the model wrappers. Each
// prompt produces one result row, completed or failed. A failed item does
// not fail the batch.
package commands

import (
	goctx "context"
	"fmt"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-media-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/services"
)

// BatchItemGenerator drives one generation call per prompt through a
// bounded worker pool.
type BatchItemGenerator struct {
	cor.BaseCommand
	generator       *services.GenerationService
	numberOfWorkers int
}

// itemJob is the unit of work handed to a pool worker.
type itemJob struct {
	ctx      goctx.Context
	sequence int
	task     model.TaskType
	params   *model.GenerationParams
}

// itemResponse carries one finished row back from a worker.
type itemResponse struct {
	row *model.BatchResultRow
}

// NewBatchItemGenerator is the constructor for the BatchItemGenerator
// command.
func NewBatchItemGenerator(name string, generator *services.GenerationService, numberOfWorkers int) *BatchItemGenerator {
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}
	return &BatchItemGenerator{
		BaseCommand:     *cor.NewBaseCommand(name),
		generator:       generator,
		numberOfWorkers: numberOfWorkers,
	}
}

// IsExecutable also requires the BatchJob stored by the trigger reader.
func (c *BatchItemGenerator) IsExecutable(context cor.Context) bool {
	return context != nil &&
		context.Get(c.GetInputParam()) != nil &&
		context.Get(GetBatchJobParameterName()) != nil
}

// Execute fans the prompts out to the worker pool and collects one result
// row per prompt, ordered by sequence on the row itself.
func (c *BatchItemGenerator) Execute(context cor.Context) {
	prompts := context.Get(c.GetInputParam()).([]string)
	job := context.Get(GetBatchJobParameterName()).(*model.BatchJob)

	task, err := model.ParseTaskType(job.TaskType)
	if err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), err)
		return
	}
	taskConfig, ok := model.LookupTask(task)
	if !ok {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("no task configuration for %q", job.TaskType))
		return
	}
	modelId := taskConfig.DefaultModel()

	var wg sync.WaitGroup
	jobs := make(chan *itemJob, len(prompts))
	results := make(chan *itemResponse, len(prompts))

	for w := 0; w < c.numberOfWorkers; w++ {
		wg.Add(1)
		go c.itemWorker(job.Id, jobs, results, &wg)
	}

	for i, prompt := range prompts {
		jobs <- &itemJob{
			ctx:      context.GetContext(),
			sequence: i,
			task:     task,
			params:   &model.GenerationParams{Model: modelId, Prompt: prompt, SampleCount: 1},
		}
	}
	close(jobs)

	wg.Wait()
	close(results)

	rows := make([]*model.BatchResultRow, 0, len(prompts))
	for r := range results {
		rows = append(rows, r.row)
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), rows)
}

// itemWorker processes jobs until the channel closes. Failures become
// failed rows rather than chain errors.
func (c *BatchItemGenerator) itemWorker(jobId string, jobs <-chan *itemJob, results chan<- *itemResponse, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		row := &model.BatchResultRow{
			JobId:      jobId,
			Sequence:   j.sequence,
			Status:     string(model.ResultStatusFailed),
			CreateDate: time.Now(),
		}
		generated, err := c.generator.GenerateSample(j.ctx, j.task, j.params)
		if err == nil && len(generated) > 0 {
			row.Kind = string(generated[0].Kind)
			row.URI = generated[0].URI
			row.Status = string(generated[0].Status)
		} else {
			c.GetErrorCounter().Add(j.ctx, 1)
			if j.task.IsVideo() {
				row.Kind = string(model.ResultKindVideo)
			} else {
				row.Kind = string(model.ResultKindImage)
			}
		}
		results <- &itemResponse{row: row}
	}
}
