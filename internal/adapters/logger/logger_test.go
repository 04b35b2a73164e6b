package logger_test

import (
	"errors"
	"testing"

	"go.trai.ch/keel/internal/adapters/logger"
	"go.trai.ch/keel/internal/core/ports"
)

func TestNew_ImplementsPortsLogger(t *testing.T) {
	var _ ports.Logger = logger.New()
}

func TestLogger_MethodsDoNotPanic(t *testing.T) {
	l := logger.New()
	l.Info("building", "target", "all")
	l.Warn("ignoring unknown attribute", "name", "color")
	l.Error(errors.New("boom"))
}
