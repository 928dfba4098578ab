package driver

import (
	"log"
	"os"

	"github.com/mewkiz/pkg/term"
)

var (
	// dbg is a logger with the "sprsc:" prefix, which logs debug messages to
	// standard error.
	dbg = log.New(os.Stderr, term.MagentaBold("sprsc:")+" ", 0)
	// warn is a logger with the "sprsc:" prefix, which logs warning messages
	// to standard error.
	warn = log.New(os.Stderr, term.RedBold("sprsc:")+" ", 0)
)
