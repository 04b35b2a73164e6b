// Package app implements the application layer for keel: it wires the
// library's BuildSystem to a concrete host delegate, build-file loader, and
// result database, and exposes the single Run operation the CLI drives.
package app

import (
	"context"

	"go.trai.ch/keel/internal/adapters/config"
	"go.trai.ch/keel/internal/adapters/db"
	"go.trai.ch/keel/internal/buildsystem"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/zerr"
)

// ErrBuildFailed is returned when at least one command failed or was
// skipped due to a missing input during a build that otherwise completed.
var ErrBuildFailed = zerr.New("build completed with failures")

// App is the CLI's entry point into the library.
type App struct {
	logger      ports.Logger
	registry    *buildsystem.ToolRegistry
	loader      *config.Loader
	parallelism int
}

// New constructs an App. parallelism of 0 defers to runtime.NumCPU() at
// execution-queue creation time.
func New(logger ports.Logger, parallelism int) *App {
	// No delegate is passed to ToolRegistry here: keel's Delegate never
	// extends tool lookup, so the registry resolves only the three built-ins.
	registry := buildsystem.NewToolRegistry(nil)
	return &App{
		logger:      logger,
		registry:    registry,
		loader:      config.NewLoader(registry),
		parallelism: parallelism,
	}
}

// Run loads buildFile, attaches the result database at dbPath (if dbPath
// is non-empty) and a trace file at tracePath (if non-empty), then builds
// targetName. It returns ErrBuildFailed if the build completed but at
// least one command failed.
func (a *App) Run(ctx context.Context, buildFile, targetName, dbPath, tracePath string) error {
	delegate := NewDelegate(ctx, a.logger, a.parallelism)

	var opener buildsystem.DBOpener
	if dbPath != "" {
		opener = func(path string) (ports.ResultDatabase, error) {
			return db.Open(path, SchemaVersion)
		}
	}

	system := buildsystem.New(buildFile, delegate, a.loader, opener)
	defer system.Close()

	if dbPath != "" {
		if err := system.AttachDB(dbPath); err != nil {
			return err
		}
	}
	if tracePath != "" {
		if err := system.EnableTracing(tracePath); err != nil {
			return err
		}
	}

	completed, err := system.Build(ctx, targetName)
	if err != nil {
		return err
	}
	if !completed {
		return zerr.New("build did not complete")
	}
	if delegate.FailureCount() > 0 {
		return ErrBuildFailed
	}
	return nil
}
