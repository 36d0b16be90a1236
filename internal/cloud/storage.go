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

package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
)

// TemplateStore abstracts the durable byte store backing the prompt
// template library. Load returns the raw serialized library; a store with
// nothing saved yet returns (nil, nil) so the caller can seed defaults.
type TemplateStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// GCSTemplateStore persists the template library as a single JSON object in
// a Cloud Storage bucket.
type GCSTemplateStore struct {
	client *storage.Client
	bucket string
	object string
}

// NewGCSTemplateStore returns a store bound to the given bucket and object.
func NewGCSTemplateStore(client *storage.Client, bucket string, object string) *GCSTemplateStore {
	return &GCSTemplateStore{client: client, bucket: bucket, object: object}
}

// Load reads the full template object. A missing object is not an error:
// it means the library has never been saved.
func (g *GCSTemplateStore) Load(ctx context.Context) ([]byte, error) {
	reader, err := g.client.Bucket(g.bucket).Object(g.object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", g.bucket, g.object, err)
	}
	defer func() { _ = reader.Close() }()
	return io.ReadAll(reader)
}

// Save overwrites the template object with the given bytes.
func (g *GCSTemplateStore) Save(ctx context.Context, data []byte) error {
	writer := g.client.Bucket(g.bucket).Object(g.object).NewWriter(ctx)
	writer.ContentType = "application/json"
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", g.bucket, g.object, err)
	}
	return writer.Close()
}

// FileTemplateStore persists the template library to a local file. Used in
// tests and single-machine deployments that have no bucket configured.
type FileTemplateStore struct {
	Path string
}

// Load reads the backing file. A file that does not exist yet returns
// (nil, nil).
func (f *FileTemplateStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Save writes the backing file, creating parent directories as needed.
func (f *FileTemplateStore) Save(_ context.Context, data []byte) error {
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(f.Path, data, 0o644)
}

// PromptFileStore holds the uploaded prompt files that drive batch jobs,
// one object per file, one prompt per non-blank line.
type PromptFileStore struct {
	client *storage.Client
	bucket string
}

// NewPromptFileStore returns a store bound to the batch prompt bucket.
func NewPromptFileStore(client *storage.Client, bucket string) *PromptFileStore {
	return &PromptFileStore{client: client, bucket: bucket}
}

// Bucket returns the bucket name files are stored under.
func (p *PromptFileStore) Bucket() string {
	return p.bucket
}

// Save uploads a prompt file under the given object name.
func (p *PromptFileStore) Save(ctx context.Context, object string, data []byte) error {
	writer := p.client.Bucket(p.bucket).Object(object).NewWriter(ctx)
	writer.ContentType = "text/plain"
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", p.bucket, object, err)
	}
	return writer.Close()
}

// Read downloads the full contents of a prompt file.
func (p *PromptFileStore) Read(ctx context.Context, object string) ([]byte, error) {
	reader, err := p.client.Bucket(p.bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", p.bucket, object, err)
	}
	defer func() { _ = reader.Close() }()
	return io.ReadAll(reader)
}
