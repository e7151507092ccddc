package dispatch

import (
	"errors"
	"io"

	seelog "github.com/cihub/seelog"
)

// logger is disabled by default and only becomes active if the embedding
// application opts in via UseLogger or SetLogWriter. Grounded on
// mohae-rollie's parse/logger.go, the only logging idiom anywhere in the
// retrieval pack: a library that never forces a logging framework onto
// its consumers.
var logger seelog.LoggerInterface

func init() {
	DisableLog()
}

// DisableLog turns off all library log output. This is the default.
func DisableLog() {
	logger = seelog.Disabled
}

// UseLogger routes library log output through an application-supplied
// seelog logger.
func UseLogger(newLogger seelog.LoggerInterface) {
	logger = newLogger
}

// SetLogWriter routes library log output to writer for applications not
// already using seelog themselves.
func SetLogWriter(writer io.Writer) error {
	if writer == nil {
		return errors.New("dispatch: nil log writer")
	}
	newLogger, err := seelog.LoggerFromWriterWithMinLevel(writer, seelog.TraceLvl)
	if err != nil {
		return err
	}
	UseLogger(newLogger)
	return nil
}

// FlushLog flushes any buffered log output; call before process exit.
func FlushLog() { logger.Flush() }
