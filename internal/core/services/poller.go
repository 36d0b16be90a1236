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
	"context"
	"time"
)

// Polling defaults, used when the configuration leaves them unset.
const (
	DefaultPollInterval    = 5 * time.Second
	DefaultPollMaxAttempts = 120
)

// PollState names the phases a long-running operation moves through.
type PollState string

const (
	PollStateSubmitted PollState = "SUBMITTED"
	PollStatePolling   PollState = "POLLING"
	PollStateCompleted PollState = "COMPLETED"
	PollStateFailed    PollState = "FAILED"
	PollStateTimedOut  PollState = "TIMED_OUT"
)

// OperationPoller drives a long-running operation to a terminal state by
// re-fetching its status on a fixed interval, bounded by a maximum attempt
// count. The fetch function returns whether the operation is done; a fetch
// error is terminal and marks the operation failed rather than being
// retried, since each fetch already reflects the full server-side state.
type OperationPoller struct {
	Interval    time.Duration
	MaxAttempts int
	state       PollState
}

// NewOperationPoller builds a poller from an interval in seconds and an
// attempt budget, substituting the defaults for non-positive values.
func NewOperationPoller(intervalSeconds int, maxAttempts int) *OperationPoller {
	interval := DefaultPollInterval
	if intervalSeconds > 0 {
		interval = time.Duration(intervalSeconds) * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollMaxAttempts
	}
	return &OperationPoller{
		Interval:    interval,
		MaxAttempts: maxAttempts,
		state:       PollStateSubmitted,
	}
}

// State reports the poller's current phase.
func (p *OperationPoller) State() PollState {
	return p.state
}

// Poll blocks until the operation completes, fails, times out, or the
// context is canceled. Each attempt waits one interval and then calls
// fetch. Context cancellation is honored both while waiting and between
// attempts.
func (p *OperationPoller) Poll(ctx context.Context, fetch func(ctx context.Context) (done bool, err error)) error {
	p.state = PollStatePolling
	timer := time.NewTimer(p.Interval)
	defer timer.Stop()

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			p.state = PollStateFailed
			return ctx.Err()
		case <-timer.C:
		}

		done, err := fetch(ctx)
		if err != nil {
			p.state = PollStateFailed
			return err
		}
		if done {
			p.state = PollStateCompleted
			return nil
		}
		timer.Reset(p.Interval)
	}

	p.state = PollStateTimedOut
	return ErrPollTimeout
}
