package logger

// nopLogger discards everything. Fatal still exits, nothing should call it in tests.
type nopLogger struct{}

// NewNopLogger returns a Logger that drops all messages.
func NewNopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Info(string, ...interface{})                   {}
func (nopLogger) InfoWithBlankLine(string, ...interface{})      {}
func (nopLogger) Warn(string, ...interface{})                   {}
func (nopLogger) WarnWithBlankLine(string, ...interface{})      {}
func (nopLogger) Error(string, ...interface{})                  {}
func (nopLogger) ErrorWithBlankLine(string, ...interface{})     {}
func (nopLogger) Debug(string, ...interface{})                  {}
func (nopLogger) DebugWithBlankLine(string, ...interface{})     {}
func (nopLogger) Success(string, ...interface{})                {}
func (nopLogger) SuccessWithBlankLine(string, ...interface{})   {}
func (nopLogger) Highlight(string, ...interface{})              {}
func (nopLogger) HighlightWithBlankLine(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{})                  { panic("fatal log on nop logger") }
func (nopLogger) FatalWithBlankLine(string, ...interface{})     { panic("fatal log on nop logger") }
