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

// Package services: the prompt template library. The library is an ordered
// in-memory list guarded by a read-write mutex, serialized to JSON in the
// configured store after every mutation. A store with nothing saved yet is
// seeded with the starter templates.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/jaycherian/gcp-go-media-studio/internal/cloud"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/model"
)

// TemplateService manages the prompt template library. All methods are safe
// for concurrent use.
type TemplateService struct {
	store     cloud.TemplateStore
	mu        sync.RWMutex
	templates []*model.PromptTemplate
}

// NewTemplateService loads the library from the store, seeding the starter
// templates when the store is empty.
func NewTemplateService(ctx context.Context, store cloud.TemplateStore) (*TemplateService, error) {
	s := &TemplateService{store: store}

	data, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load template library: %w", err)
	}
	if data == nil {
		s.templates = model.SeedTemplates()
		if err := s.persist(ctx); err != nil {
			return nil, err
		}
		return s, nil
	}
	if err := json.Unmarshal(data, &s.templates); err != nil {
		return nil, fmt.Errorf("failed to parse template library: %w", err)
	}
	return s, nil
}

// persist serializes the library to the store. Callers hold at least a read
// lock on s.mu.
func (s *TemplateService) persist(ctx context.Context) error {
	data, err := json.MarshalIndent(s.templates, "", "  ")
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save template library: %w", err)
	}
	return nil
}

// List returns the templates whose name, content, or tags contain the
// filter, case-insensitively. An empty filter returns the whole library in
// order.
func (s *TemplateService) List(filter string) []*model.PromptTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter == "" {
		return append([]*model.PromptTemplate(nil), s.templates...)
	}

	needle := strings.ToLower(filter)
	var out []*model.PromptTemplate
	for _, t := range s.templates {
		if t.Matches(needle) {
			out = append(out, t)
		}
	}
	return out
}

// Get returns the template with the given id.
func (s *TemplateService) Get(id string) (*model.PromptTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.templates {
		if t.Id == id {
			return t, nil
		}
	}
	return nil, ErrTemplateNotFound
}

// Create adds a template at the front of the library. A blank name gets the
// positional default "Template N" where N is the new library size.
func (s *TemplateService) Create(ctx context.Context, name string, content string, tags []string) (*model.PromptTemplate, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content", "template content is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("Template %d", len(s.templates)+1)
	}
	t := model.NewPromptTemplate(name, content, tags)
	s.templates = append([]*model.PromptTemplate{t}, s.templates...)

	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Update replaces the content and tags of an existing template. The name is
// replaced only when the new one is non-blank, so a client editing just the
// body never wipes the display name.
func (s *TemplateService) Update(ctx context.Context, id string, name string, content string, tags []string) (*model.PromptTemplate, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewValidationError("content", "template content is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.templates {
		if t.Id != id {
			continue
		}
		if strings.TrimSpace(name) != "" {
			t.Name = name
		}
		t.Content = content
		t.Tags = tags
		if err := s.persist(ctx); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, ErrTemplateNotFound
}

// Delete removes a template. Deleting an id that is not present is not an
// error.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.templates {
		if t.Id == id {
			s.templates = append(s.templates[:i], s.templates[i+1:]...)
			return s.persist(ctx)
		}
	}
	return nil
}
