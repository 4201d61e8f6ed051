package arm

import "time"

// DiagnosticScope brackets one logical client operation for tracing. A scope
// is opened before an operation's first request and closed when the
// operation returns; failures are reported before closing.
type DiagnosticScope interface {
	// Failed records the error that terminated the scoped operation.
	Failed(err error)

	// Close ends the scope.
	Close()
}

// ScopeFactory creates diagnostic scopes. It is an injectable collaborator:
// components receive a factory rather than reaching for ambient state, so
// tests can substitute a no-op implementation.
type ScopeFactory interface {
	NewScope(name string) DiagnosticScope
}

// NoopScopeFactory produces scopes that do nothing.
type NoopScopeFactory struct{}

// NewScope implements ScopeFactory.
func (NoopScopeFactory) NewScope(string) DiagnosticScope {
	return noopScope{}
}

type noopScope struct{}

func (noopScope) Failed(error) {}
func (noopScope) Close()       {}

// LoggingScopeFactory produces scopes that log start, failure and duration
// through a Logger.
type LoggingScopeFactory struct {
	Logger Logger
}

// NewScope implements ScopeFactory.
func (f *LoggingScopeFactory) NewScope(name string) DiagnosticScope {
	f.Logger.Debug("scope started", map[string]interface{}{"scope": name})

	return &loggingScope{logger: f.Logger, name: name, start: time.Now()}
}

type loggingScope struct {
	logger Logger
	name   string
	start  time.Time
	failed error
}

func (s *loggingScope) Failed(err error) {
	s.failed = err
}

func (s *loggingScope) Close() {
	fields := map[string]interface{}{
		"scope":       s.name,
		"duration_ms": time.Since(s.start).Milliseconds(),
	}

	if s.failed != nil {
		fields["error"] = s.failed.Error()
		s.logger.Error("scope failed", fields)

		return
	}

	s.logger.Debug("scope completed", fields)
}
