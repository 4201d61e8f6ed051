package commands

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/ansolan/armclient/pkg/arm"
)

// zerologAdapter implements arm.Logger on top of zerolog.
type zerologAdapter struct {
	logger zerolog.Logger
}

// NewLogger creates a structured logger writing to stderr. Verbose enables
// debug-level output.
func NewLogger(verbose bool) arm.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr}
	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()

	return &zerologAdapter{logger: logger}
}

func (a *zerologAdapter) Debug(msg string, fields map[string]interface{}) {
	a.logger.Debug().Fields(fields).Msg(msg)
}

func (a *zerologAdapter) Info(msg string, fields map[string]interface{}) {
	a.logger.Info().Fields(fields).Msg(msg)
}

func (a *zerologAdapter) Warn(msg string, fields map[string]interface{}) {
	a.logger.Warn().Fields(fields).Msg(msg)
}

func (a *zerologAdapter) Error(msg string, fields map[string]interface{}) {
	a.logger.Error().Fields(fields).Msg(msg)
}
