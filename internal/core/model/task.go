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
// This file defines the closed set of generation task types and the static
// catalog that maps each task type to its display metadata and the models
// it may be served by. The catalog is resolved at initialization time so
// an unknown task tag is an explicit error rather than a runtime lookup
// surprise.
package model

import "fmt"

// TaskType identifies one of the supported generation tasks. The set is
// closed: values outside the four constants below are rejected by
// ParseTaskType.
type TaskType string

const (
	TaskTextToImage  TaskType = "Text-to-Image"
	TaskTextToVideo  TaskType = "Text-to-Video"
	TaskAudioToVideo TaskType = "Audio-to-Video"
	TaskImageToVideo TaskType = "Image-to-Video"
)

// IsVideo reports whether results of this task are produced through the
// asynchronous video generation path (submit + poll) rather than a single
// synchronous call.
func (t TaskType) IsVideo() bool {
	return t == TaskTextToVideo || t == TaskAudioToVideo || t == TaskImageToVideo
}

// String returns the wire/display tag of the task type.
func (t TaskType) String() string { return string(t) }

// ParseTaskType converts a string tag into a TaskType. Unknown tags produce
// an error instead of a zero value so malformed client input fails loudly.
func ParseTaskType(in string) (TaskType, error) {
	switch TaskType(in) {
	case TaskTextToImage, TaskTextToVideo, TaskAudioToVideo, TaskImageToVideo:
		return TaskType(in), nil
	}
	return "", fmt.Errorf("unknown task type %q", in)
}

// ModelOption is a single model a task can be served by.
type ModelOption struct {
	Id   string `json:"id"`   // The model identifier passed to the generation API.
	Name string `json:"name"` // The human readable label shown in the picker.
}

// TaskConfig is the display metadata and model list for one task type.
type TaskConfig struct {
	Id          string        `json:"id"`          // Stable catalog identifier (section number of the product doc).
	Type        TaskType      `json:"type"`        // The task type this entry describes.
	Name        string        `json:"name"`        // Display name.
	Description string        `json:"description"` // One line description for the task picker.
	Icon        string        `json:"icon"`        // Icon tag consumed by the front end.
	Models      []ModelOption `json:"models"`      // Models this task may use. The first entry is the default.
}

// DefaultModel returns the model identifier used when a request does not name
// one explicitly.
func (c *TaskConfig) DefaultModel() string {
	if len(c.Models) == 0 {
		return ""
	}
	return c.Models[0].Id
}

// taskCatalog is the static task registry. Order matters: it is the order
// tasks are presented to clients.
var taskCatalog = []*TaskConfig{
	{
		Id:          "5.1",
		Type:        TaskTextToImage,
		Name:        "Text to Image",
		Description: "Generate high-quality visuals from text prompts using Gemini 3.0 Pro Image.",
		Icon:        "Image",
		Models: []ModelOption{
			{Id: "gemini-3-pro-image-preview", Name: "Gemini 3.0 Pro Image (Quality)"},
			{Id: "gemini-2.5-flash-image", Name: "Gemini 2.5 Flash Image (Fast)"},
		},
	},
	{
		Id:          "5.2",
		Type:        TaskTextToVideo,
		Name:        "Text to Video",
		Description: "Create cinematic videos from simple text descriptions using Veo.",
		Icon:        "Video",
		Models: []ModelOption{
			{Id: "veo-3.1-fast-generate-preview", Name: "Veo 3.1 Fast"},
			{Id: "veo-3.1-generate-preview", Name: "Veo 3.1 (High Quality)"},
		},
	},
	{
		Id:          "5.3",
		Type:        TaskAudioToVideo,
		Name:        "Audio to Video",
		Description: "Drive video generation with audio and reference images.",
		Icon:        "Mic",
		Models: []ModelOption{
			{Id: "veo-3.1-fast-generate-preview", Name: "Veo 3.1 Fast"},
			{Id: "veo-3.1-generate-preview", Name: "Veo 3.1 (High Quality)"},
		},
	},
	{
		Id:          "5.4",
		Type:        TaskImageToVideo,
		Name:        "Image to Video",
		Description: "Animate static images or create transitions between start and end frames.",
		Icon:        "Film",
		Models: []ModelOption{
			{Id: "veo-3.1-fast-generate-preview", Name: "Veo 3.1 Fast"},
			{Id: "veo-3.1-generate-preview", Name: "Veo 3.1 (High Quality)"},
		},
	},
}

// AvailableTasks returns the full task catalog in presentation order.
func AvailableTasks() []*TaskConfig {
	out := make([]*TaskConfig, len(taskCatalog))
	copy(out, taskCatalog)
	return out
}

// LookupTask returns the catalog entry for a task type. The second return
// value is false when the tag is not in the catalog.
func LookupTask(t TaskType) (*TaskConfig, bool) {
	for _, c := range taskCatalog {
		if c.Type == t {
			return c, true
		}
	}
	return nil, false
}
