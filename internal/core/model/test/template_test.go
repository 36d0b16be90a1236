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

// Package model_test: prompt template and batch record tests.
package model_test

import (
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-media-studio/internal/core/model"
	"github.com/stretchr/testify/assert"
)

// TestNewPromptTemplate verifies the constructor assigns a fresh identifier
// and carries the fields through.
func TestNewPromptTemplate(t *testing.T) {
	tpl := model.NewPromptTemplate("Moody Portrait", "low key lighting, 85mm", []string{"portrait"})
	assert.NotEmpty(t, tpl.Id)
	assert.Equal(t, "Moody Portrait", tpl.Name)
	assert.Equal(t, []string{"portrait"}, tpl.Tags)

	other := model.NewPromptTemplate("Moody Portrait", "low key lighting, 85mm", nil)
	assert.NotEqual(t, tpl.Id, other.Id)
}

// TestTemplateMatches verifies matching spans name, content, and tags,
// case-insensitively.
func TestTemplateMatches(t *testing.T) {
	tpl := model.NewPromptTemplate("Cinematic Lighting", "8k resolution, dramatic shadows", []string{"Film"})

	assert.True(t, tpl.Matches("cinematic"))
	assert.True(t, tpl.Matches("dramatic"))
	assert.True(t, tpl.Matches("film"))
	assert.False(t, tpl.Matches("underwater"))
}

// TestSeedTemplates verifies the starter library contents.
func TestSeedTemplates(t *testing.T) {
	seeds := model.SeedTemplates()
	assert.Equal(t, 2, len(seeds))
	assert.Equal(t, "Cinematic Lighting", seeds[0].Name)
	assert.Equal(t, "Cyberpunk City", seeds[1].Name)
}

// TestNewBatchJob verifies the batch record constructor.
func TestNewBatchJob(t *testing.T) {
	job := model.NewBatchJob("nightly renders", model.TaskTextToImage)
	assert.NotEmpty(t, job.Id)
	assert.Equal(t, "nightly renders", job.Name)
	assert.Equal(t, model.TaskTextToImage.String(), job.TaskType)
	assert.WithinDuration(t, time.Now(), job.CreateDate, time.Second)
	assert.Zero(t, job.ItemCount)
	assert.Empty(t, job.PromptFileObject)
}
