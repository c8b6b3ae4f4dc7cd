// Package logging builds the process logger.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Options selects level and formatting
type Options struct {
	Level   string
	Debug   bool
	Colored bool
	Output  io.Writer
}

// New returns a logger entry configured from opts. An unparsable level falls
// back to info; Debug always wins.
func New(opts Options) *logrus.Entry {
	logger := logrus.New()

	ll, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		ll = logrus.InfoLevel
	}
	if opts.Debug {
		ll = logrus.DebugLevel
	}
	logger.SetLevel(ll)

	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:      opts.Colored,
		DisableColors:    !opts.Colored,
		FullTimestamp:    true,
		DisableQuote:     true,
		DisableSorting:   false,
		QuoteEmptyFields: true,
	})

	if opts.Output != nil {
		logger.SetOutput(opts.Output)
	} else {
		logger.SetOutput(os.Stderr)
	}

	return logrus.NewEntry(logger)
}

// Discard returns a logger that writes nothing, for tests
func Discard() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}
