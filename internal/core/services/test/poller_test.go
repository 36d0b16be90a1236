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

// Package services_test contains unit tests for the application services.
// This file covers the long-running operation poll loop.
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-media-studio/internal/core/services"
	"github.com/stretchr/testify/assert"
)

// fastPoller returns a poller with a short interval so tests stay quick.
func fastPoller(maxAttempts int) *services.OperationPoller {
	return &services.OperationPoller{Interval: time.Millisecond, MaxAttempts: maxAttempts}
}

// TestPollCompletes verifies the poller reaches the completed state once
// the fetch reports done.
func TestPollCompletes(t *testing.T) {
	p := fastPoller(10)
	calls := 0
	err := p.Poll(context.Background(), func(_ context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, services.PollStateCompleted, p.State())
}

// TestPollTimesOut verifies the attempt budget produces ErrPollTimeout and
// the timed-out state.
func TestPollTimesOut(t *testing.T) {
	p := fastPoller(4)
	calls := 0
	err := p.Poll(context.Background(), func(_ context.Context) (bool, error) {
		calls++
		return false, nil
	})
	assert.ErrorIs(t, err, services.ErrPollTimeout)
	assert.Equal(t, 4, calls)
	assert.Equal(t, services.PollStateTimedOut, p.State())
}

// TestPollFetchErrorIsTerminal verifies a failed fetch ends the poll
// immediately instead of being retried.
func TestPollFetchErrorIsTerminal(t *testing.T) {
	p := fastPoller(10)
	boom := errors.New("backend unavailable")
	calls := 0
	err := p.Poll(context.Background(), func(_ context.Context) (bool, error) {
		calls++
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Equal(t, services.PollStateFailed, p.State())
}

// TestPollHonorsCancellation verifies a canceled context stops the loop
// while it is waiting out an interval.
func TestPollHonorsCancellation(t *testing.T) {
	p := &services.OperationPoller{Interval: time.Minute, MaxAttempts: 10}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Poll(ctx, func(_ context.Context) (bool, error) {
		t.Fatal("fetch should not run after cancellation")
		return false, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, services.PollStateFailed, p.State())
}

// TestNewOperationPollerDefaults verifies non-positive settings fall back
// to the documented defaults.
func TestNewOperationPollerDefaults(t *testing.T) {
	p := services.NewOperationPoller(0, 0)
	assert.Equal(t, services.DefaultPollInterval, p.Interval)
	assert.Equal(t, services.DefaultPollMaxAttempts, p.MaxAttempts)
	assert.Equal(t, services.PollStateSubmitted, p.State())

	p = services.NewOperationPoller(2, 7)
	assert.Equal(t, 2*time.Second, p.Interval)
	assert.Equal(t, 7, p.MaxAttempts)
}
