package main

import "github.com/sqweek/dialog"

const noticeTitle = "Error"

const (
	msgNoInput     = "No file was opened. What should I play now?"
	msgBadFormat   = "The opened file has an invalid format."
	msgUnavailable = "The song could not be played: %v"
)

// notify shows a blocking message box. It returns once the user closes it.
var notify = func(format string, args ...interface{}) {
	dialog.Message(format, args...).Title(noticeTitle).Error()
}
