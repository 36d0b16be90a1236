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

package cor_test

import (
	goctx "context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-media-studio/internal/core/cor"
	"github.com/stretchr/testify/assert"
)

// appendCommand appends its suffix to the string flowing through the chain.
type appendCommand struct {
	cor.BaseCommand
	suffix string
}

func newAppendCommand(name string, suffix string) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), suffix: suffix}
}

func (c *appendCommand) Execute(context cor.Context) {
	in := context.Get(c.GetInputParam()).(string)
	context.Add(c.GetOutputParam(), in+c.suffix)
}

// failingCommand records an error and produces no output.
type failingCommand struct {
	cor.BaseCommand
}

func (c *failingCommand) Execute(context cor.Context) {
	context.AddError(c.GetName(), errors.New("boom"))
}

func newChainContext(in string) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(goctx.Background())
	chainCtx.Add(cor.CtxIn, in)
	return chainCtx
}

// TestChainPipesOutputToInput verifies the output of each command becomes
// the input of the next, with the final value left under the input key.
func TestChainPipesOutputToInput(t *testing.T) {
	chain := cor.NewBaseChain("pipe-chain")
	chain.AddCommand(newAppendCommand("first", "-a"))
	chain.AddCommand(newAppendCommand("second", "-b"))

	chainCtx := newChainContext("start")
	chain.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	assert.Equal(t, "start-a-b", chainCtx.Get(cor.CtxIn))
	assert.Nil(t, chainCtx.Get(cor.CtxOut))
}

// TestChainStopsOnError verifies commands after a failure are skipped by
// default.
func TestChainStopsOnError(t *testing.T) {
	chain := cor.NewBaseChain("halting-chain")
	chain.AddCommand(newAppendCommand("first", "-a"))
	chain.AddCommand(&failingCommand{BaseCommand: *cor.NewBaseCommand("breaker")})
	chain.AddCommand(newAppendCommand("never", "-c"))

	chainCtx := newChainContext("start")
	chain.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Error(t, chainCtx.GetErrors()["breaker"])
	// The failure cleared the pipe before the last command could run.
	assert.Nil(t, chainCtx.Get(cor.CtxIn))
}

// TestChainContinueOnFailure verifies later commands still run when the
// chain is configured to tolerate failures.
func TestChainContinueOnFailure(t *testing.T) {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(goctx.Background())
	chainCtx.Add(cor.CtxIn, "start")
	chainCtx.Add("side", "channel")

	sideReader := newAppendCommand("side-reader", "-c")
	sideReader.InputParamName = "side"
	sideReader.OutputParamName = "side-out"

	chain := cor.NewBaseChain("tolerant-chain")
	chain.ContinueOnFailure(true)
	chain.AddCommand(&failingCommand{BaseCommand: *cor.NewBaseCommand("breaker")})
	chain.AddCommand(sideReader)

	chain.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.Equal(t, "channel-c", chainCtx.Get("side-out"))
}

// TestCommandDefaultParams verifies the default input/output keys and the
// executability precondition.
func TestCommandDefaultParams(t *testing.T) {
	command := cor.NewBaseCommand("defaults")
	assert.Equal(t, cor.CtxIn, command.GetInputParam())
	assert.Equal(t, cor.CtxOut, command.GetOutputParam())

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(goctx.Background())
	assert.False(t, command.IsExecutable(chainCtx), "no input present")

	chainCtx.Add(cor.CtxIn, "anything")
	assert.True(t, command.IsExecutable(chainCtx))
}

// TestContextCloseRemovesTempFiles verifies Close cleans up tracked files.
func TestContextCloseRemovesTempFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scratch.txt")
	assert.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	chainCtx := cor.NewBaseContext()
	chainCtx.AddTempFile(path)
	assert.Equal(t, []string{path}, chainCtx.GetTempFiles())

	chainCtx.Close()
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
