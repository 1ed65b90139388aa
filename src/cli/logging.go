// Contains various utility functions related to logging.

package cli

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"gopkg.in/op/go-logging.v1"
)

var log = logging.MustGetLogger("cli")

// StdErrIsATerminal is true if the process' stderr is an interactive TTY.
var StdErrIsATerminal = isTerminal(os.Stderr)

// logLevel is the current verbosity level that is set.
var logLevel = logging.WARNING

var fileLogLevel = logging.WARNING
var fileBackend logging.Backend

// A Verbosity is used as a flag to define logging verbosity. It accepts a
// named level ("error", "warning", "notice", "info", "debug"), a numeric
// index into that same list (0=error .. 4=debug), or a run of "v"s counted
// up from warning (so "v" == notice, "vv" == info, and so on).
type Verbosity logging.Level

var verbosityLevels = []logging.Level{
	logging.ERROR,
	logging.WARNING,
	logging.NOTICE,
	logging.INFO,
	logging.DEBUG,
}

var verbosityNames = map[string]logging.Level{
	"critical": logging.CRITICAL,
	"error":    logging.ERROR,
	"warning":  logging.WARNING,
	"warn":     logging.WARNING,
	"notice":   logging.NOTICE,
	"info":     logging.INFO,
	"debug":    logging.DEBUG,
}

// UnmarshalFlag implements the flags.Unmarshaler interface.
func (v *Verbosity) UnmarshalFlag(in string) error {
	if level, present := verbosityNames[strings.ToLower(in)]; present {
		*v = Verbosity(level)
		return nil
	}
	if n, err := strconv.Atoi(in); err == nil {
		if n < 0 || n >= len(verbosityLevels) {
			return fmt.Errorf("verbosity %d out of range", n)
		}
		*v = Verbosity(verbosityLevels[n])
		return nil
	}
	if in != "" && strings.Trim(in, "v") == "" {
		idx := 1 + len(in) // count up from "warning"
		if idx >= len(verbosityLevels) {
			idx = len(verbosityLevels) - 1
		}
		*v = Verbosity(verbosityLevels[idx])
		return nil
	}
	return fmt.Errorf("invalid verbosity %q", in)
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (v *Verbosity) UnmarshalText(text []byte) error {
	return v.UnmarshalFlag(string(text))
}

// InitLogging initialises logging backends at the given verbosity.
func InitLogging(verbosity Verbosity) {
	logLevel = logging.Level(verbosity)
	setLogBackend(logging.NewLogBackend(os.Stderr, "", 0))
}

// InitFileLogging initialises an optional logging backend to a file, in
// addition to the stderr backend InitLogging set up.
func InitFileLogging(logFile string, logFileLevel Verbosity) {
	fileLogLevel = logging.Level(logFileLevel)
	if err := os.MkdirAll(path.Dir(logFile), os.ModeDir|0775); err != nil {
		log.Fatalf("Error creating log file directory: %s", err)
	}
	file, err := os.Create(logFile)
	if err != nil {
		log.Fatalf("Error opening log file: %s", err)
	}
	fileBackend = logging.NewBackendFormatter(logging.NewLogBackend(file, "", 0), logFormatter(false))
	setLogBackend(logging.NewLogBackend(os.Stderr, "", 0))
	AtExit(func() {
		fileBackend = nil
		setLogBackend(logging.NewLogBackend(os.Stderr, "", 0))
		file.Close()
	})
}

func logFormatter(coloured bool) logging.Formatter {
	formatStr := "%{time:15:04:05.000} %{level:7s}: %{message}"
	if coloured {
		formatStr = "%{color}" + formatStr + "%{color:reset}"
	}
	return logging.MustStringFormatter(formatStr)
}

func setLogBackend(backend logging.Backend) {
	backend = logging.NewBackendFormatter(backend, logFormatter(StdErrIsATerminal))
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(logLevel, "")
	if fileBackend == nil {
		logging.SetBackend(leveled)
		return
	}
	fileBackendLeveled := logging.AddModuleLevel(fileBackend)
	fileBackendLeveled.SetLevel(fileLogLevel, "")
	logging.SetBackend(leveled, fileBackendLeveled)
}
