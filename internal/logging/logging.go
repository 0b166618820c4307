// SPDX-License-Identifier: Unlicense OR MIT

// Package logging holds the logger shared by the generator packages.
package logging

import (
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// LogSubsys is the field naming the subsystem that emitted an entry.
const LogSubsys = "subsys"

// DefaultLogger is the logger every package derives its entry from.
var DefaultLogger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel parses level and applies it to DefaultLogger.
func SetLevel(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", level)
	}
	DefaultLogger.SetLevel(lvl)
	return nil
}
