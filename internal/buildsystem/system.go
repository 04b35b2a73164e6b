package buildsystem

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.trai.ch/keel/internal/core/domain"
	"go.trai.ch/keel/internal/core/ports"
	"go.trai.ch/keel/internal/engine"
	"go.trai.ch/zerr"
)

var (
	// ErrClientMismatch surfaces when the build file's declared client name
	// or schema version does not match the host delegate's.
	ErrClientMismatch = zerr.New("build file client does not match host")

	// ErrAlreadyLoaded is returned if the build file loader is invoked more
	// than once against the same BuildSystem (the build file is documented
	// as "load only once"; this implementation enforces that explicitly).
	ErrAlreadyLoaded = zerr.New("build file already loaded")
)

// DBOpener constructs a ResultDatabase for a path, used by AttachDB so this
// package never needs to know which storage engine backs the database.
type DBOpener func(path string) (ports.ResultDatabase, error)

// BuildSystem is the public entry point (C8/C9 wiring): a single library
// object exposing build(target_name), attach_db(path), enable_tracing(path).
type BuildSystem struct {
	mainFileName string
	delegate     ports.HostDelegate
	loader       ports.BuildFileLoader
	dbOpener     DBOpener

	file       *domain.BuildFile
	behaviors  map[string]ports.ExternalCommand
	db         ports.ResultDatabase
	queue      ports.ExecutionQueue
	dispatcher *Dispatcher
	eng        *engine.Engine
	trace      *os.File

	loaded bool
}

// New constructs a BuildSystem over the given host delegate and build-file
// loader. dbOpener may be nil, in which case AttachDB is unavailable and no
// results persist across builds.
func New(mainFileName string, delegate ports.HostDelegate, loader ports.BuildFileLoader, dbOpener DBOpener) *BuildSystem {
	return &BuildSystem{
		mainFileName: mainFileName,
		delegate:     delegate,
		loader:       loader,
		dbOpener:     dbOpener,
	}
}

// AttachDB opens the result database at path. Must be called before Build.
func (s *BuildSystem) AttachDB(path string) error {
	if s.dbOpener == nil {
		return nil
	}
	db, err := s.dbOpener(path)
	if err != nil {
		return zerr.Wrap(err, "attach_db failed")
	}
	s.db = db
	return nil
}

// EnableTracing opens path for appending; each Build then writes a
// timestamped line to it when it starts and when it ends. Individual command
// completions are not traced. Must be called before Build.
func (s *BuildSystem) EnableTracing(path string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G304 -- path is host-provided CLI flag
	if err != nil {
		return zerr.Wrap(err, "enable_tracing failed")
	}
	s.trace = f
	return nil
}

func (s *BuildSystem) emitTrace(event string) {
	if s.trace == nil {
		return
	}
	fmt.Fprintf(s.trace, "%s %s\n", time.Now().UTC().Format(time.RFC3339Nano), event)
}

// Build loads the build file (once), kicks the engine on Target{name}, and
// returns whether the build completed — not whether it succeeded; command
// failures are reported through the delegate.
func (s *BuildSystem) Build(ctx context.Context, targetName string) (bool, error) {
	if !s.loaded {
		if err := s.load(); err != nil {
			return false, err
		}
	}

	s.emitTrace(fmt.Sprintf("build start target=%s", targetName))
	_, err := s.eng.Build(ctx, domain.TargetKey(targetName))
	s.emitTrace(fmt.Sprintf("build end target=%s", targetName))
	if err != nil {
		// A cycle within the target graph is already reported to the
		// delegate by the OnCycle handler at the moment it's detected; it
		// never surfaces as the top-level key's own error unless the
		// requested target itself participates in one.
		return false, err
	}
	return true, nil
}

func (s *BuildSystem) load() error {
	if s.loaded {
		return ErrAlreadyLoaded
	}

	file, behaviors, err := s.loader.Load(s.mainFileName, s.delegate)
	if err != nil {
		return zerr.Wrap(err, "load error")
	}
	if file.ClientName != s.delegate.GetName() || file.ClientVersion != s.delegate.GetVersion() {
		return zerr.With(ErrClientMismatch, "client", file.ClientName)
	}

	s.file = file
	s.behaviors = behaviors
	s.queue = s.delegate.CreateExecutionQueue()
	s.dispatcher = NewDispatcher(file, behaviors, s.delegate, s.queue, loggerOrNoop(s.delegate), s.mainFileName)
	s.eng = engine.New(s.dispatcher, s.db)
	s.eng.OnCycle(func(cyclePath []string) {
		s.delegate.Error(s.mainFileName, ports.Token{}, "cycle detected while building")
	})
	s.loaded = true
	return nil
}

// Close releases the engine dispatcher goroutine and the result database.
func (s *BuildSystem) Close() error {
	if s.eng != nil {
		s.eng.Close()
	}
	if s.trace != nil {
		_ = s.trace.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// loggerOrNoop returns the logger a host delegate exposes through a
// Logger() method (app.Delegate does), so commands run from cmd/keel log
// through it; delegates that expose no logger get a no-op logger that will
// not nil-panic.
func loggerOrNoop(delegate ports.HostDelegate) ports.Logger {
	if withLogger, ok := delegate.(interface{ Logger() ports.Logger }); ok {
		return withLogger.Logger()
	}
	return noopLogger{}
}

type noopLogger struct{}

func (noopLogger) Info(msg string, args ...any) {}
func (noopLogger) Warn(msg string, args ...any) {}
func (noopLogger) Error(err error)              {}
