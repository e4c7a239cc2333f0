package logger

import (
	"io"
	stdlog "log"
	"os"

	"sozblock/internal/config"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var zerologger zerolog.Logger

type logWrapper struct {
	zerolog.Logger
}

func (l logWrapper) Write(p []byte) (n int, err error) {
	n = len(p)
	if n > 0 && p[n-1] == '\n' {
		p = p[:n-1]
	}
	l.Info().Msg(string(p))
	return
}

// InitializeLogger sets up the global zerolog logger: console writer on a
// TTY, plain JSON otherwise, stdlib log redirected through it. The level
// comes from the loaded config so a configured level survives this call.
func InitializeLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(config.LogLevel())

	out := io.Writer(os.Stdout)
	if isatty.IsTerminal(os.Stdout.Fd()) {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: zerolog.TimeFormatUnix}
	}

	zerologger = zerolog.New(out).With().Timestamp().Caller().Logger()
	log.Logger = zerologger

	stdlog.SetFlags(0)
	stdlog.SetOutput(logWrapper{zerologger})
}
