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
// This file holds the parameter bundle for a single generation request and
// the Attachment type used to carry binary inputs (reference images, driver
// audio, start/end frames) from the transport layer to the orchestrator.
package model

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/h2non/filetype"
)

// Attachment is a binary input to a generation request. Data holds the raw
// bytes; any data-URI envelope has already been stripped by the time an
// Attachment exists.
type Attachment struct {
	Name     string // Original file name, informational only.
	MIMEType string // Content type, e.g. "image/png". Sniffed when the upload omits it.
	Data     []byte // Raw bytes, never base64.
}

// NewAttachment wraps raw bytes as an Attachment. When mimeType is empty the
// content type is sniffed from the leading bytes.
func NewAttachment(name string, mimeType string, data []byte) *Attachment {
	if mimeType == "" {
		if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
			mimeType = kind.MIME.Value
		}
	}
	return &Attachment{Name: name, MIMEType: mimeType, Data: data}
}

// NewAttachmentFromDataURI decodes a "data:<mime>;base64,<payload>" string
// into an Attachment. A bare base64 payload without the scheme prefix is
// also accepted; the MIME type is then sniffed from the decoded bytes.
func NewAttachmentFromDataURI(name string, in string) (*Attachment, error) {
	mimeType := ""
	payload := in
	if strings.HasPrefix(in, "data:") {
		comma := strings.Index(in, ",")
		if comma < 0 {
			return nil, fmt.Errorf("malformed data URI for %q", name)
		}
		meta := in[len("data:"):comma]
		payload = in[comma+1:]
		mimeType = strings.TrimSuffix(meta, ";base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment %q: %w", name, err)
	}
	return NewAttachment(name, mimeType, data), nil
}

// Base64 returns the transport-safe encoding of the attachment bytes with no
// data-URI prefix.
func (a *Attachment) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// DataURI renders the attachment as a browser-displayable data URI. An
// attachment with no known MIME type is labeled image/png, matching what
// the generation backend emits.
func (a *Attachment) DataURI() string {
	mimeType := a.MIMEType
	if mimeType == "" {
		mimeType = "image/png"
	}
	return "data:" + mimeType + ";base64," + a.Base64()
}

// GenerationParams is the parameter bundle for one sample generation. Which
// attachment fields are consulted depends on the active task type; populated
// fields that are irrelevant to the task are ignored.
type GenerationParams struct {
	Model          string // Model identifier. Empty selects the task's default model.
	Prompt         string
	NegativePrompt string
	AspectRatio    string // One of the fixed aspect ratio strings, e.g. "16:9".
	Resolution     string // "720p" or "1080p" for video tasks. Optional for image tasks.
	Seed           *int32
	SampleCount    int // Requested number of samples. Video tasks are pinned to one per request.

	ReferenceImages []*Attachment // Audio-to-video: the first entry is the base image.
	DriverAudio     *Attachment   // Audio-to-video: the driving audio clip.
	StartImage      *Attachment   // Image-to-video: first frame.
	EndImage        *Attachment   // Image-to-video: optional last frame.
}
