// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	stdlog "log"
	"os"

	log "github.com/sirupsen/logrus"

	"educhain/internal/config"
)

// Setup applies level and formatter settings. Debug builds get the text
// formatter; everything else logs JSON.
func Setup(cfg *config.Config) {
	SetupTo(os.Stdout, cfg)
}

// SetupTo is Setup with an explicit output.
func SetupTo(out io.Writer, cfg *config.Config) {
	log.SetOutput(out)

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	if cfg.App.Debug && level < log.DebugLevel {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	if cfg.App.Debug {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

// For returns an entry tagged with the component name.
func For(component string) *log.Entry {
	return log.WithField("component", component)
}

// StdLogger adapts the component logger for APIs that take a *log.Logger,
// such as http.Server.ErrorLog. Lines are logged at error level.
func StdLogger(component string) *stdlog.Logger {
	return stdlog.New(For(component).WriterLevel(log.ErrorLevel), "", 0)
}
