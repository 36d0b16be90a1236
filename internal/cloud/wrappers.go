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

// Package cloud provides components for interacting with Google Cloud
// services. This file wraps the GenAI model handles with quota-aware
// decorators. The generation services never hold a raw *genai.Client; they
// hold these wrappers, which enforce the per-model request budget from the
// configuration before every outbound call.
//
// The submit paths (GenerateContent, GenerateVideos) retry transient
// failures a bounded number of times. Operation status re-fetches are never
// retried here: the polling loop owns that cadence and treats a failed fetch
// as a failed operation.
//
// Structs:
//   - QuotaAwareImageModel: Rate-limited wrapper for synchronous image generation.
//   - QuotaAwareVideoModel: Rate-limited wrapper for video submission and
//     operation status fetches.
package cloud

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// MaxRetries is the maximum number of times a failed submit call is retried.
const MaxRetries = 3

// retryBackoff is the wait between submit retries.
const retryBackoff = 5 * time.Second

// QuotaAwareImageModel decorates a GenAI model handle with a rate limiter
// for synchronous image generation calls.
type QuotaAwareImageModel struct {
	ModelName string                       // The model identifier passed on every call.
	Config    *genai.GenerateContentConfig // Base request configuration (safety settings etc.). Cloned per call.
	handle    *genai.Models
	limiter   *rate.Limiter
}

// NewQuotaAwareImageModel wraps a model handle with a requests-per-minute
// budget.
func NewQuotaAwareImageModel(name string, handle *genai.Models, requestsPerMinute int) *QuotaAwareImageModel {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return &QuotaAwareImageModel{
		ModelName: name,
		Config:    &genai.GenerateContentConfig{SafetySettings: DefaultSafetySettings},
		handle:    handle,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
	}
}

// GenerateContent issues a synchronous generation call, blocking until the
// rate limiter admits it. The provided config overrides the wrapper's base
// config when non-nil. Transient failures are retried up to MaxRetries.
func (q *QuotaAwareImageModel) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if config == nil {
		config = q.Config
	}
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if err := q.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err := q.handle.GenerateContent(ctx, q.ModelName, contents, config)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}
	return nil, fmt.Errorf("generation failed after %d retries: %w", MaxRetries, lastErr)
}

// QuotaAwareVideoModel decorates the GenAI video generation surface with a
// rate limiter. It covers both the submit call and the operation status
// fetch used by the polling loop.
type QuotaAwareVideoModel struct {
	ModelName  string // The model identifier passed on every submit.
	models     *genai.Models
	operations *genai.Operations
	limiter    *rate.Limiter
}

// NewQuotaAwareVideoModel wraps the video generation surface of a GenAI
// client with a requests-per-minute budget.
func NewQuotaAwareVideoModel(name string, models *genai.Models, operations *genai.Operations, requestsPerMinute int) *QuotaAwareVideoModel {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return &QuotaAwareVideoModel{
		ModelName:  name,
		models:     models,
		operations: operations,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), requestsPerMinute),
	}
}

// GenerateVideos submits a video generation request and returns its
// long-running operation handle. Transient submit failures are retried up
// to MaxRetries.
func (q *QuotaAwareVideoModel) GenerateVideos(ctx context.Context, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if err := q.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		op, err := q.models.GenerateVideos(ctx, q.ModelName, prompt, image, config)
		if err == nil {
			return op, nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}
	return nil, fmt.Errorf("video submission failed after %d retries: %w", MaxRetries, lastErr)
}

// GetVideosOperation re-fetches the latest server view of a long-running
// operation. The caller replaces its local copy wholesale with the returned
// value. No retry: the poll loop decides what a failed fetch means.
func (q *QuotaAwareVideoModel) GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	if err := q.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return q.operations.GetVideosOperation(ctx, op, nil)
}
