// Package logging creates the per-component loggers used across the bot.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New returns a [log.Logger] prefixed with the component name, with
// timestamps enabled.
func New(component string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          component,
	})
}
