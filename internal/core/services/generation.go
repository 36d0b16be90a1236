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

// Package services holds the application's business logic. This file
// implements the generation orchestrator: it validates a request for one of
// the studio task types, dispatches it to the right model wrapper, drives
// any long-running video operation to completion, and normalizes the output
// into displayable results. Image output is returned inline as a data URI;
// video output is returned as the backend's download URI with the API key
// appended so a browser can fetch it directly.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaycherian/gcp-go-media-studio/internal/core/model"
	"google.golang.org/genai"
)

// DefaultSpeechPrompt drives audio-to-video requests that arrive without a
// prompt of their own.
const DefaultSpeechPrompt = "Animate this character speaking."

// ImageModel is the synchronous generation surface the orchestrator needs.
// The quota-aware cloud wrapper satisfies it; tests substitute fakes.
type ImageModel interface {
	GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// VideoModel is the long-running generation surface: submit plus status
// re-fetch.
type VideoModel interface {
	GenerateVideos(ctx context.Context, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error)
	GetVideosOperation(ctx context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error)
}

// GenerationService orchestrates a single generation request end to end.
// Model wrappers are keyed by model identifier, matching the task catalog's
// model options.
type GenerationService struct {
	imageModels  map[string]ImageModel
	videoModels  map[string]VideoModel
	apiKey       string
	pollInterval int
	pollAttempts int
}

// NewGenerationService wires the orchestrator to its model wrappers. The
// API key is only used to build downloadable video URIs; requests
// authenticate through the client inside the wrappers.
func NewGenerationService(
	imageModels map[string]ImageModel,
	videoModels map[string]VideoModel,
	apiKey string,
	pollIntervalSeconds int,
	pollMaxAttempts int,
) (*GenerationService, error) {
	if apiKey == "" {
		return nil, ErrMissingCredential
	}
	return &GenerationService{
		imageModels:  imageModels,
		videoModels:  videoModels,
		apiKey:       apiKey,
		pollInterval: pollIntervalSeconds,
		pollAttempts: pollMaxAttempts,
	}, nil
}

// GenerateSample runs one generation request for the given task type and
// returns the produced results. Image tasks may return several results in
// one call; video tasks return at most one. An empty result set with a nil
// error means the service accepted the request but produced nothing.
func (s *GenerationService) GenerateSample(ctx context.Context, taskType model.TaskType, params *model.GenerationParams) ([]*model.GeneratedResult, error) {
	if err := validateParams(taskType, params); err != nil {
		return nil, err
	}

	if taskType.IsVideo() {
		result, err := s.generateVideo(ctx, taskType, params)
		if err != nil {
			return nil, err
		}
		if result == nil {
			return []*model.GeneratedResult{}, nil
		}
		return []*model.GeneratedResult{result}, nil
	}
	return s.generateImages(ctx, params)
}

// validateParams rejects requests that would fail remotely before any call
// is made.
func validateParams(taskType model.TaskType, params *model.GenerationParams) error {
	if params == nil {
		return NewValidationError("params", "request body is required")
	}
	if params.Model == "" {
		return NewValidationError("model", "a model must be selected")
	}
	switch taskType {
	case model.TaskTextToImage, model.TaskTextToVideo:
		if strings.TrimSpace(params.Prompt) == "" {
			return NewValidationError("prompt", "a prompt is required")
		}
	case model.TaskImageToVideo:
		if params.StartImage == nil {
			return NewValidationError("start_image", "a start image is required")
		}
	case model.TaskAudioToVideo:
		if params.DriverAudio == nil {
			return NewValidationError("driver_audio", "a driver audio file is required")
		}
	default:
		return NewValidationError("task", fmt.Sprintf("unknown task type: %s", taskType))
	}
	return nil
}

// generateImages issues a synchronous image generation call and converts
// every returned inline image into a data URI result.
func (s *GenerationService) generateImages(ctx context.Context, params *model.GenerationParams) ([]*model.GeneratedResult, error) {
	imageModel, ok := s.imageModels[params.Model]
	if !ok {
		return nil, NewValidationError("model", fmt.Sprintf("no image model configured for %q", params.Model))
	}

	sampleCount := params.SampleCount
	if sampleCount < 1 {
		sampleCount = 1
	}

	parts := []*genai.Part{genai.NewPartFromText(params.Prompt)}
	for _, ref := range params.ReferenceImages {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: ref.MIMEType, Data: ref.Data},
		})
	}
	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	config := &genai.GenerateContentConfig{
		CandidateCount: int32(sampleCount),
		Seed:           params.Seed,
	}
	if params.AspectRatio != "" || params.Resolution != "" {
		config.ImageConfig = &genai.ImageConfig{
			AspectRatio: params.AspectRatio,
			ImageSize:   params.Resolution,
		}
	}

	resp, err := imageModel.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}

	// Zero usable outputs is a valid outcome: the service accepted the
	// request and produced nothing.
	results := make([]*model.GeneratedResult, 0)
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			results = append(results, model.NewImageResult(model.NewAttachment("", part.InlineData.MIMEType, part.InlineData.Data).DataURI()))
		}
	}
	slog.InfoContext(ctx, "image generation complete", "model", params.Model, "results", len(results))
	return results, nil
}

// generateVideo submits a video request, polls its long-running operation
// to completion, and returns the downloadable result, or nil when the
// finished operation produced no video.
func (s *GenerationService) generateVideo(ctx context.Context, taskType model.TaskType, params *model.GenerationParams) (*model.GeneratedResult, error) {
	videoModel, ok := s.videoModels[params.Model]
	if !ok {
		return nil, NewValidationError("model", fmt.Sprintf("no video model configured for %q", params.Model))
	}

	prompt := params.Prompt
	if taskType == model.TaskAudioToVideo && strings.TrimSpace(prompt) == "" {
		prompt = DefaultSpeechPrompt
	}

	config := &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    params.AspectRatio,
		Resolution:     params.Resolution,
		NegativePrompt: params.NegativePrompt,
	}
	if params.Seed != nil {
		config.Seed = params.Seed
	}
	// Only image-to-video consults the end frame; other tasks ignore the
	// field even when populated.
	if taskType == model.TaskImageToVideo && params.EndImage != nil {
		config.LastFrame = &genai.Image{
			ImageBytes: params.EndImage.Data,
			MIMEType:   params.EndImage.MIMEType,
		}
	}

	// Audio-to-video animates a character image: the base frame arrives as
	// the first reference image when no explicit start image is set.
	baseImage := params.StartImage
	if taskType == model.TaskAudioToVideo && baseImage == nil && len(params.ReferenceImages) > 0 {
		baseImage = params.ReferenceImages[0]
	}
	var startImage *genai.Image
	if baseImage != nil {
		startImage = &genai.Image{
			ImageBytes: baseImage.Data,
			MIMEType:   baseImage.MIMEType,
		}
	}

	op, err := videoModel.GenerateVideos(ctx, prompt, startImage, config)
	if err != nil {
		return nil, fmt.Errorf("video submission failed: %w", err)
	}
	slog.InfoContext(ctx, "video operation submitted", "model", params.Model, "operation", op.Name)

	poller := NewOperationPoller(s.pollInterval, s.pollAttempts)
	err = poller.Poll(ctx, func(ctx context.Context) (bool, error) {
		latest, err := videoModel.GetVideosOperation(ctx, op)
		if err != nil {
			return false, fmt.Errorf("operation fetch failed: %w", err)
		}
		op = latest
		return op.Done, nil
	})
	if err != nil {
		return nil, err
	}

	// A finished operation carrying no video is a valid empty outcome.
	if op.Response == nil || len(op.Response.GeneratedVideos) == 0 ||
		op.Response.GeneratedVideos[0].Video == nil ||
		op.Response.GeneratedVideos[0].Video.URI == "" {
		slog.WarnContext(ctx, "video operation finished without output", "model", params.Model, "operation", op.Name)
		return nil, nil
	}

	uri := appendKey(op.Response.GeneratedVideos[0].Video.URI, s.apiKey)
	slog.InfoContext(ctx, "video generation complete", "model", params.Model, "operation", op.Name)
	return model.NewVideoResult(uri), nil
}

// appendKey attaches the API key as a query parameter so the returned URI
// is directly fetchable by a browser.
func appendKey(uri string, key string) string {
	if strings.Contains(uri, "?") {
		return uri + "&key=" + key
	}
	return uri + "?key=" + key
}
