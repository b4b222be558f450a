package extensibility

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/comalice/lsystemx/internal/core"
	"github.com/comalice/lsystemx/internal/primitives"
)

// DefaultCommandRunner calls the procedure bound to a module's symbol. Commands, if
// set, override procedures by symbol name.
type DefaultCommandRunner struct {
	Commands map[string]primitives.Procedure
}

// Run executes the command for m.
func (r *DefaultCommandRunner) Run(_ context.Context, m primitives.Module) error {
	sym := m.Symbol()
	if sym == nil {
		return fmt.Errorf("%w: zero module", primitives.ErrValidation)
	}
	if cmd, ok := r.Commands[sym.Name()]; ok && cmd != nil {
		cmd(m.Args())
		return nil
	}
	if proc := sym.Procedure(); proc != nil {
		proc(m.Args())
	}
	return nil
}

// LoggingCommandRunner wraps a CommandRunner and logs each command.
type LoggingCommandRunner struct {
	inner  core.CommandRunner
	logger *log.Logger
}

// NewLoggingCommandRunner creates a new LoggingCommandRunner wrapping the given inner runner.
func NewLoggingCommandRunner(inner core.CommandRunner, logger *log.Logger) *LoggingCommandRunner {
	if logger == nil {
		logger = log.Default()
	}
	return &LoggingCommandRunner{inner: inner, logger: logger}
}

// Run logs before and after delegating to the inner runner.
func (r *LoggingCommandRunner) Run(ctx context.Context, m primitives.Module) error {
	r.logger.Debug("executing command", "module", m.String())
	start := time.Now()
	err := r.inner.Run(ctx, m)
	if err != nil {
		r.logger.Error("command failed", "module", m.String(), "elapsed", time.Since(start), "err", err)
		return err
	}
	r.logger.Debug("command completed", "module", m.String(), "elapsed", time.Since(start))
	return nil
}
