// Package main is the entry point for the keel build tool.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/keel/cmd/keel/commands"
	"go.trai.ch/keel/internal/app"
	_ "go.trai.ch/keel/internal/wiring"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, _, err := graft.ExecuteFor[*app.App](ctx)
	if err != nil {
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	cli := commands.New(a)
	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, app.ErrBuildFailed) {
			return 1
		}
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}
	return 0
}
