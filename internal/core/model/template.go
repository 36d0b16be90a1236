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

package model

import (
	"strings"

	"github.com/google/uuid"
)

// PromptTemplate is a named, reusable block of prompt text owned entirely by
// the client. Templates are persisted as an ordered collection, newest first.
type PromptTemplate struct {
	Id      string   `json:"id"`
	Name    string   `json:"name"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// NewPromptTemplate creates a template with a fresh identifier.
func NewPromptTemplate(name string, content string, tags []string) *PromptTemplate {
	return &PromptTemplate{Id: uuid.NewString(), Name: name, Content: content, Tags: tags}
}

// Matches reports whether the lowercase needle appears in the template's
// name, content, or any tag. Callers lowercase the needle once.
func (t *PromptTemplate) Matches(needle string) bool {
	if strings.Contains(strings.ToLower(t.Name), needle) ||
		strings.Contains(strings.ToLower(t.Content), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// SeedTemplates returns the collection written on first start when no prior
// state exists in durable storage.
func SeedTemplates() []*PromptTemplate {
	return []*PromptTemplate{
		{
			Id:      "1",
			Name:    "Cinematic Lighting",
			Content: "Cinematic lighting, 8k resolution, highly detailed, photorealistic, dramatic shadows",
		},
		{
			Id:      "2",
			Name:    "Cyberpunk City",
			Content: "Cyberpunk city at night, neon lights, rain reflections, futuristic skyscrapers, flying cars, atmosphere",
		},
	}
}
