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

package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the generation, template, and batch
// services. Handlers map these to HTTP status codes.
var (
	// ErrMissingCredential indicates no API key was available for the
	// generation backend.
	ErrMissingCredential = errors.New("missing api credential")

	// ErrRemoteRejected indicates the generation backend refused the
	// request outright, e.g. for a malformed or policy-violating payload.
	ErrRemoteRejected = errors.New("generation backend rejected the request")

	// ErrPollTimeout indicates a long-running operation did not finish
	// within the configured polling budget.
	ErrPollTimeout = errors.New("operation polling timed out")

	// ErrOperationFailed indicates the remote operation finished in a
	// failure state.
	ErrOperationFailed = errors.New("operation failed")

	// ErrTemplateNotFound indicates a template id that is not in the
	// library.
	ErrTemplateNotFound = errors.New("template not found")
)

// ValidationError reports a rejected request field. It is returned before
// any remote call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field string, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
