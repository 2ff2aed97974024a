/*
Copyright 2024 The Flowtable Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Commands(t *testing.T) {
	t.Run("root execute", func(t *testing.T) {
		rootCmd.SetOut(bytes.NewBufferString(""))
		rootCmd.SetArgs([]string{})
		assert.NotPanics(t, Execute, "help")
	})

	t.Run("version", func(t *testing.T) {
		b := bytes.NewBufferString("")
		cmd := NewVersionCommand()
		cmd.SetOut(b)
		require.NoError(t, cmd.Execute())
		assert.Contains(t, b.String(), "Version:")
	})
}

func Test_ReplayCommand(t *testing.T) {
	dump := filepath.Join(t.TempDir(), "changelog.jsonl")
	lines := `{"key":"k1","value":"InYxIg==","partition":0,"mode":"json"}
{"key":"k2","value":"InYyIg==","partition":0,"mode":"json"}
{"key":"k2","value":null,"partition":0,"mode":"raw"}
`
	require.NoError(t, os.WriteFile(dump, []byte(lines), 0600))

	b := bytes.NewBufferString("")
	cmd := NewReplayCommand()
	cmd.SetOut(b)
	cmd.SetArgs([]string{"--file", dump, "--table", "restored"})
	require.NoError(t, cmd.Execute())

	out := b.String()
	assert.Contains(t, out, "restored")
	assert.Contains(t, out, "k1")
	// the tombstone removed k2
	assert.NotContains(t, out, "k2")
}

func Test_ReplayCommand_MissingFile(t *testing.T) {
	cmd := NewReplayCommand()
	cmd.SetOut(bytes.NewBufferString(""))
	cmd.SetErr(bytes.NewBufferString(""))
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}
