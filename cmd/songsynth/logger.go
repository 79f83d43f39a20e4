package main

import (
	"io"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"
)

var (
	logger      = log.New(os.Stdout, "", log.Ldate|log.Ltime)
	debugLogger = log.New(io.Discard, "debug: ", log.Ldate|log.Ltime)
)

func setDebugLogging(enabled bool) {
	if enabled {
		debugLogger.SetOutput(os.Stdout)
		return
	}
	debugLogger.SetOutput(io.Discard)
}

func logDebug(format string, v ...interface{}) {
	debugLogger.Printf(format, v...)
}

// logDump writes a full structural dump of v at debug level.
func logDump(label string, v interface{}) {
	if debugLogger.Writer() == io.Discard {
		return
	}
	debugLogger.Printf("%s:\n%s", label, spew.Sdump(v))
}
