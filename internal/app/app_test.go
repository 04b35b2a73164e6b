package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/keel/internal/adapters/logger"
	"go.trai.ch/keel/internal/app"
)

func writeBuildFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "build.keel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestApp_Run_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "main.c")
	outPath := filepath.Join(dir, "main.o")
	require.NoError(t, os.WriteFile(srcPath, []byte("int main() { return 0; }"), 0o600))

	content := `
client:
  name: keel
  version: 1
commands:
  compile:
    tool: shell
    inputs: ["` + srcPath + `"]
    outputs: ["` + outPath + `"]
    attributes:
      args: "cp ` + srcPath + ` ` + outPath + `"
targets:
  all:
    members: ["` + outPath + `"]
`
	buildFile := writeBuildFile(t, dir, content)

	a := app.New(logger.New(), 2)
	err := a.Run(context.Background(), buildFile, "all", "", "")
	require.NoError(t, err)

	_, err = os.Stat(outPath)
	assert.NoError(t, err)
}

func TestApp_Run_PersistsAcrossRunsWithDB(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "main.c")
	outPath := filepath.Join(dir, "main.o")
	require.NoError(t, os.WriteFile(srcPath, []byte("content"), 0o600))
	dbPath := filepath.Join(dir, "keel.db")

	content := `
client:
  name: keel
  version: 1
commands:
  compile:
    tool: shell
    inputs: ["` + srcPath + `"]
    outputs: ["` + outPath + `"]
    attributes:
      args: "cp ` + srcPath + ` ` + outPath + `"
targets:
  all:
    members: ["` + outPath + `"]
`
	buildFile := writeBuildFile(t, dir, content)

	a := app.New(logger.New(), 2)
	require.NoError(t, a.Run(context.Background(), buildFile, "all", dbPath, ""))
	first, err := os.Stat(outPath)
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background(), buildFile, "all", dbPath, ""))
	second, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Equal(t, first.ModTime(), second.ModTime(), "second run must reuse the stored result instead of re-running the copy")
}

func TestApp_Run_MissingInputReturnsErrBuildFailed(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "main.o")

	content := `
client:
  name: keel
  version: 1
commands:
  compile:
    tool: shell
    inputs: ["` + filepath.Join(dir, "missing.c") + `"]
    outputs: ["` + outPath + `"]
    attributes:
      args: "true"
targets:
  all:
    members: ["` + outPath + `"]
`
	buildFile := writeBuildFile(t, dir, content)

	a := app.New(logger.New(), 2)
	err := a.Run(context.Background(), buildFile, "all", "", "")
	assert.ErrorIs(t, err, app.ErrBuildFailed)
}

func TestApp_Run_UnknownTargetReturnsError(t *testing.T) {
	dir := t.TempDir()
	content := `
client:
  name: keel
  version: 1
`
	buildFile := writeBuildFile(t, dir, content)

	a := app.New(logger.New(), 2)
	err := a.Run(context.Background(), buildFile, "nonexistent", "", "")
	require.Error(t, err)
}

func TestApp_Run_ClientMismatchReturnsError(t *testing.T) {
	dir := t.TempDir()
	content := `
client:
  name: other-tool
  version: 1
`
	buildFile := writeBuildFile(t, dir, content)

	a := app.New(logger.New(), 2)
	err := a.Run(context.Background(), buildFile, "all", "", "")
	require.Error(t, err)
}
