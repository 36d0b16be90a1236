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

// This file tests the BatchGenerationWorkflow wiring: precondition checks
// and the trigger-parsing front of the chain. Runs that reach the
// generation and persistence steps are covered by the command tests with
// fakes; here we only drive paths that stop before a remote call.
package workflow_test

import (
	"testing"

	"github.com/jaycherian/gcp-go-media-studio/internal/core/cor"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/codes"
)

// TestWorkflowRequiresGoContext verifies the workflow refuses to run
// without a Go context attached to the chain context.
func TestWorkflowRequiresGoContext(t *testing.T) {
	chainCtx := cor.NewBaseContext()
	assert.False(t, batchGen.IsExecutable(chainCtx))

	chainCtx.SetContext(ctx)
	assert.True(t, batchGen.IsExecutable(chainCtx))
}

// TestWorkflowRejectsMalformedTrigger runs the workflow against a trigger
// payload that is not a batch job and asserts the chain records the parse
// failure and stops.
func TestWorkflowRejectsMalformedTrigger(t *testing.T) {
	traceContext, span := tracer.Start(ctx, "batch-generation-test")
	defer span.End()

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(traceContext)
	chainCtx.Add(cor.CtxIn, "this is not a batch trigger")

	batchGen.Execute(chainCtx)

	if chainCtx.HasErrors() {
		span.SetStatus(codes.Ok, "workflow rejected the trigger as expected")
	}
	assert.True(t, chainCtx.HasErrors())
	assert.Error(t, chainCtx.GetErrors()["batch-trigger-to-job"])
}

// TestWorkflowRejectsUnknownTaskType verifies a well-formed trigger with an
// unsupported task type is rejected at the same parse step.
func TestWorkflowRejectsUnknownTaskType(t *testing.T) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	chainCtx.Add(cor.CtxIn, `{"id":"x","name":"bad","task_type":"Text-to-Hologram","item_count":1}`)

	batchGen.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	logger.Info("rejected unsupported task type", "errors", len(chainCtx.GetErrors()))
}
