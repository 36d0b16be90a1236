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

// Package services_test: generation orchestrator tests against fake model
// wrappers, covering the synchronous image path, the submit-and-poll video
// path, and request validation.
package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jaycherian/gcp-go-media-studio/internal/core/model"
	"github.com/jaycherian/gcp-go-media-studio/internal/core/services"
	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

const testImageModel = "gemini-3-pro-image-preview"
const testVideoModel = "veo-3.1-fast-generate-preview"

// fakeImageModel records the last request and returns canned candidates.
type fakeImageModel struct {
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig
	response     *genai.GenerateContentResponse
	err          error
}

func (f *fakeImageModel) GenerateContent(_ context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.lastContents = contents
	f.lastConfig = config
	return f.response, f.err
}

// fakeVideoModel completes its operation after a configurable number of
// status fetches.
type fakeVideoModel struct {
	lastPrompt   string
	lastImage    *genai.Image
	lastConfig   *genai.GenerateVideosConfig
	fetches      int
	doneAfter    int
	finalURI     string
	submitErr    error
	fetchErr     error
	emptyOutcome bool
}

func (f *fakeVideoModel) GenerateVideos(_ context.Context, prompt string, image *genai.Image, config *genai.GenerateVideosConfig) (*genai.GenerateVideosOperation, error) {
	f.lastPrompt = prompt
	f.lastImage = image
	f.lastConfig = config
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &genai.GenerateVideosOperation{Name: "operations/test-op"}, nil
}

func (f *fakeVideoModel) GetVideosOperation(_ context.Context, op *genai.GenerateVideosOperation) (*genai.GenerateVideosOperation, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	f.fetches++
	if f.fetches < f.doneAfter {
		return &genai.GenerateVideosOperation{Name: op.Name}, nil
	}
	out := &genai.GenerateVideosOperation{Name: op.Name, Done: true}
	if !f.emptyOutcome {
		out.Response = &genai.GenerateVideosResponse{
			GeneratedVideos: []*genai.GeneratedVideo{
				{Video: &genai.Video{URI: f.finalURI}},
			},
		}
	}
	return out, nil
}

// inlinePNG builds a response candidate carrying inline image bytes.
func inlinePNG(data []byte) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{InlineData: &genai.Blob{MIMEType: "image/png", Data: data}},
					},
				},
			},
		},
	}
}

func newService(t *testing.T, image services.ImageModel, video services.VideoModel) *services.GenerationService {
	t.Helper()
	svc, err := services.NewGenerationService(
		map[string]services.ImageModel{testImageModel: image},
		map[string]services.VideoModel{testVideoModel: video},
		"test-api-key",
		1, // 1s poll interval keeps the video tests quick
		3,
	)
	assert.NoError(t, err)
	return svc
}

// TestGenerateImageReturnsDataURI verifies the image path produces inline
// data URI results and forwards the image configuration.
func TestGenerateImageReturnsDataURI(t *testing.T) {
	image := &fakeImageModel{response: inlinePNG([]byte{0x89, 0x50})}
	svc := newService(t, image, &fakeVideoModel{})

	results, err := svc.GenerateSample(context.Background(), model.TaskTextToImage, &model.GenerationParams{
		Model:       testImageModel,
		Prompt:      "a lighthouse at dusk",
		AspectRatio: "16:9",
		SampleCount: 2,
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(results))
	assert.Equal(t, model.ResultKindImage, results[0].Kind)
	assert.Equal(t, model.ResultStatusCompleted, results[0].Status)
	assert.True(t, strings.HasPrefix(results[0].URI, "data:image/png;base64,"))

	assert.Equal(t, int32(2), image.lastConfig.CandidateCount)
	assert.Equal(t, "16:9", image.lastConfig.ImageConfig.AspectRatio)
}

// TestGenerateImageEmptyResponse verifies an accepted call with no usable
// output is a valid empty result set, not an error.
func TestGenerateImageEmptyResponse(t *testing.T) {
	image := &fakeImageModel{response: &genai.GenerateContentResponse{}}
	svc := newService(t, image, &fakeVideoModel{})

	results, err := svc.GenerateSample(context.Background(), model.TaskTextToImage, &model.GenerationParams{
		Model:  testImageModel,
		Prompt: "anything",
	})
	assert.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

// TestGenerateVideoPollsToCompletion verifies the video path polls the
// operation until done and appends the API key to the download URI.
func TestGenerateVideoPollsToCompletion(t *testing.T) {
	video := &fakeVideoModel{doneAfter: 2, finalURI: "https://example.com/video.mp4"}
	svc := newService(t, &fakeImageModel{}, video)

	results, err := svc.GenerateSample(context.Background(), model.TaskTextToVideo, &model.GenerationParams{
		Model:  testVideoModel,
		Prompt: "waves crashing on a cliff",
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, len(results))
	assert.Equal(t, model.ResultKindVideo, results[0].Kind)
	assert.Equal(t, "https://example.com/video.mp4?key=test-api-key", results[0].URI)
	assert.Equal(t, 2, video.fetches)
	assert.Equal(t, int32(1), video.lastConfig.NumberOfVideos)
}

// TestGenerateVideoKeyAppendedToExistingQuery verifies the key joins an
// existing query string with "&".
func TestGenerateVideoKeyAppendedToExistingQuery(t *testing.T) {
	video := &fakeVideoModel{doneAfter: 1, finalURI: "https://example.com/video.mp4?alt=media"}
	svc := newService(t, &fakeImageModel{}, video)

	results, err := svc.GenerateSample(context.Background(), model.TaskTextToVideo, &model.GenerationParams{
		Model:  testVideoModel,
		Prompt: "a drifting paper boat",
	})
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/video.mp4?alt=media&key=test-api-key", results[0].URI)
}

// TestGenerateVideoTimesOut verifies the attempt budget surfaces as
// ErrPollTimeout.
func TestGenerateVideoTimesOut(t *testing.T) {
	video := &fakeVideoModel{doneAfter: 99, finalURI: "unused"}
	svc := newService(t, &fakeImageModel{}, video)

	_, err := svc.GenerateSample(context.Background(), model.TaskTextToVideo, &model.GenerationParams{
		Model:  testVideoModel,
		Prompt: "never finishes",
	})
	assert.ErrorIs(t, err, services.ErrPollTimeout)
}

// TestAudioToVideoFallbackPrompt verifies a blank prompt is replaced by the
// default speech prompt on the audio-to-video path.
func TestAudioToVideoFallbackPrompt(t *testing.T) {
	video := &fakeVideoModel{doneAfter: 1, finalURI: "https://example.com/talking.mp4"}
	svc := newService(t, &fakeImageModel{}, video)

	_, err := svc.GenerateSample(context.Background(), model.TaskAudioToVideo, &model.GenerationParams{
		Model:       testVideoModel,
		DriverAudio: model.NewAttachment("voice.mp3", "audio/mpeg", []byte{0x01}),
	})
	assert.NoError(t, err)
	assert.Equal(t, services.DefaultSpeechPrompt, video.lastPrompt)
}

// TestAudioToVideoUsesReferenceImageAsBase verifies the first reference
// image becomes the submitted base frame when no start image is set.
func TestAudioToVideoUsesReferenceImageAsBase(t *testing.T) {
	video := &fakeVideoModel{doneAfter: 1, finalURI: "https://example.com/talking.mp4"}
	svc := newService(t, &fakeImageModel{}, video)

	_, err := svc.GenerateSample(context.Background(), model.TaskAudioToVideo, &model.GenerationParams{
		Model:           testVideoModel,
		DriverAudio:     model.NewAttachment("voice.mp3", "audio/mpeg", []byte{0x01}),
		ReferenceImages: []*model.Attachment{model.NewAttachment("face.png", "image/png", []byte{0x02})},
	})
	assert.NoError(t, err)
	assert.NotNil(t, video.lastImage)
	assert.Equal(t, "image/png", video.lastImage.MIMEType)
	assert.Equal(t, []byte{0x02}, video.lastImage.ImageBytes)
}

// TestTextToVideoIgnoresEndImage verifies the end frame is only consulted
// for image-to-video requests.
func TestTextToVideoIgnoresEndImage(t *testing.T) {
	video := &fakeVideoModel{doneAfter: 1, finalURI: "https://example.com/clip.mp4"}
	svc := newService(t, &fakeImageModel{}, video)

	_, err := svc.GenerateSample(context.Background(), model.TaskTextToVideo, &model.GenerationParams{
		Model:    testVideoModel,
		Prompt:   "a comet over the sea",
		EndImage: model.NewAttachment("end.png", "image/png", []byte{0x03}),
	})
	assert.NoError(t, err)
	assert.Nil(t, video.lastConfig.LastFrame)
}

// TestImageToVideoSendsStartAndEndFrames verifies frame attachments reach
// the submit call.
func TestImageToVideoSendsStartAndEndFrames(t *testing.T) {
	video := &fakeVideoModel{doneAfter: 1, finalURI: "https://example.com/anim.mp4"}
	svc := newService(t, &fakeImageModel{}, video)

	_, err := svc.GenerateSample(context.Background(), model.TaskImageToVideo, &model.GenerationParams{
		Model:      testVideoModel,
		StartImage: model.NewAttachment("start.png", "image/png", []byte{0x01}),
		EndImage:   model.NewAttachment("end.png", "image/png", []byte{0x02}),
	})
	assert.NoError(t, err)
	assert.NotNil(t, video.lastImage)
	assert.Equal(t, "image/png", video.lastImage.MIMEType)
	assert.NotNil(t, video.lastConfig.LastFrame)
}

// TestValidation verifies the per-task required fields are enforced before
// any remote call.
func TestValidation(t *testing.T) {
	svc := newService(t, &fakeImageModel{}, &fakeVideoModel{})

	var validation *services.ValidationError

	_, err := svc.GenerateSample(context.Background(), model.TaskTextToImage, &model.GenerationParams{Model: testImageModel})
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, "prompt", validation.Field)

	_, err = svc.GenerateSample(context.Background(), model.TaskImageToVideo, &model.GenerationParams{Model: testVideoModel})
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, "start_image", validation.Field)

	_, err = svc.GenerateSample(context.Background(), model.TaskAudioToVideo, &model.GenerationParams{Model: testVideoModel})
	assert.ErrorAs(t, err, &validation)
	assert.Equal(t, "driver_audio", validation.Field)

	_, err = svc.GenerateSample(context.Background(), model.TaskTextToImage, nil)
	assert.ErrorAs(t, err, &validation)
}

// TestGenerateVideoEmptyOutcome verifies a finished operation with no
// videos yields zero results without an error.
func TestGenerateVideoEmptyOutcome(t *testing.T) {
	video := &fakeVideoModel{doneAfter: 1, emptyOutcome: true}
	svc := newService(t, &fakeImageModel{}, video)

	results, err := svc.GenerateSample(context.Background(), model.TaskTextToVideo, &model.GenerationParams{
		Model:  testVideoModel,
		Prompt: "an empty reel",
	})
	assert.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

// TestMissingCredential verifies construction fails without an API key.
func TestMissingCredential(t *testing.T) {
	_, err := services.NewGenerationService(nil, nil, "", 1, 1)
	assert.ErrorIs(t, err, services.ErrMissingCredential)
}
