package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	originalArgs := os.Args
	originalWd, err := os.Getwd()
	require.NoError(t, err)
	defer func() {
		os.Args = originalArgs
		_ = os.Chdir(originalWd)
	}()

	tests := []struct {
		name         string
		setupConfig  func(t *testing.T, tmpDir string)
		args         []string
		expectedExit int
	}{
		{
			name: "build a phony target succeeds",
			setupConfig: func(t *testing.T, tmpDir string) {
				content := `
client:
  name: keel
  version: 1
commands:
  group:
    tool: phony
    outputs: ["<built>"]
targets:
  all:
    members: ["<built>"]
`
				require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "keel.yaml"), []byte(content), 0o600))
			},
			args:         []string{"keel", "build", "all"},
			expectedExit: 0,
		},
		{
			name: "missing build file fails",
			setupConfig: func(t *testing.T, tmpDir string) {},
			args:         []string{"keel", "build", "all"},
			expectedExit: 1,
		},
		{
			name: "unknown target fails",
			setupConfig: func(t *testing.T, tmpDir string) {
				content := `
client:
  name: keel
  version: 1
`
				require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "keel.yaml"), []byte(content), 0o600))
			},
			args:         []string{"keel", "build", "nonexistent"},
			expectedExit: 1,
		},
		{
			name:         "version command succeeds",
			setupConfig:  func(t *testing.T, tmpDir string) {},
			args:         []string{"keel", "version"},
			expectedExit: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			tt.setupConfig(t, tmpDir)

			require.NoError(t, os.Chdir(tmpDir))
			os.Args = tt.args

			exitCode := run()
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}
