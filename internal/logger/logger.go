// Package logger wraps logrus with the process-wide configuration used
// by every command.
package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Init configures the shared logger. Called once from the root command
// before any subcommand runs.
func Init(verbose bool) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
}

// L returns the shared logger.
func L() *logrus.Logger {
	return log
}
