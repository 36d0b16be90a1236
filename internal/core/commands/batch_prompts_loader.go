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

// Package commands: this file expands a BatchJob into the list of prompts
// to generate. A file-driven job downloads its prompt file from Cloud
// Storage and takes one prompt per non-blank line; a quantity-driven job
// repeats its inline prompt ItemCount times.
package commands

import (
	goctx "context"
	"fmt"
	"strings"

	"github.com/jaycherian/gcp-go-media-studio/internal/core/cor"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/model"
)

// PromptFileReader is the download surface the loader needs. The Cloud
// Storage prompt file store satisfies it; tests substitute fakes.
type PromptFileReader interface {
	Read(ctx goctx.Context, object string) ([]byte, error)
}

// BatchPromptsLoader turns a BatchJob into its ordered prompt list.
type BatchPromptsLoader struct {
	cor.BaseCommand
	reader PromptFileReader
}

// NewBatchPromptsLoader is the constructor for the BatchPromptsLoader
// command.
func NewBatchPromptsLoader(name string, reader PromptFileReader) *BatchPromptsLoader {
	return &BatchPromptsLoader{BaseCommand: *cor.NewBaseCommand(name), reader: reader}
}

// Execute produces the prompt list for the piped-in BatchJob.
func (c *BatchPromptsLoader) Execute(context cor.Context) {
	job := context.Get(c.GetInputParam()).(*model.BatchJob)

	var prompts []string
	if job.PromptFileObject != "" {
		data, err := c.reader.Read(context.GetContext(), job.PromptFileObject)
		if err != nil {
			c.GetErrorCounter().Add(context.GetContext(), 1)
			context.AddError(c.GetName(), fmt.Errorf("failed to load prompt file for job %s: %w", job.Id, err))
			return
		}
		for _, line := range strings.Split(string(data), "\n") {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				prompts = append(prompts, trimmed)
			}
		}
	} else {
		for i := 0; i < job.ItemCount; i++ {
			prompts = append(prompts, job.Prompt)
		}
	}

	if len(prompts) == 0 {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("batch job %s produced no prompts", job.Id))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(c.GetOutputParam(), prompts)
}
