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

import "github.com/google/uuid"

// ResultKind distinguishes image results from video results.
type ResultKind string

const (
	ResultKindImage ResultKind = "image"
	ResultKindVideo ResultKind = "video"
)

// ResultStatus is the lifecycle state of a generated artifact.
type ResultStatus string

const (
	ResultStatusPending   ResultStatus = "pending"
	ResultStatusCompleted ResultStatus = "completed"
	ResultStatusFailed    ResultStatus = "failed"
)

// GeneratedResult is one artifact produced by a generation request. URI is
// either a data URI (inline image bytes) or a fetchable remote location
// (video). Results are handed to the rendering layer and never persisted.
type GeneratedResult struct {
	Id     string       `json:"id"`
	Kind   ResultKind   `json:"kind"`
	URI    string       `json:"uri"`
	Status ResultStatus `json:"status"`
}

// NewImageResult wraps an inline image data URI as a completed result.
func NewImageResult(dataURI string) *GeneratedResult {
	return &GeneratedResult{
		Id:     uuid.NewString(),
		Kind:   ResultKindImage,
		URI:    dataURI,
		Status: ResultStatusCompleted,
	}
}

// NewVideoResult wraps a fetchable video location as a completed result.
func NewVideoResult(uri string) *GeneratedResult {
	return &GeneratedResult{
		Id:     uuid.NewString(),
		Kind:   ResultKindVideo,
		URI:    uri,
		Status: ResultStatusCompleted,
	}
}
