package teal

import "fmt"

// ParseError reports malformed immediate-operand syntax on a source line.
// It is an input error: callers analyzing a batch of contracts may report
// it and continue with the remaining files.
type ParseError struct {
	Line    int    // 1-based source line, 0 if unknown
	Text    string // offending line, comment stripped
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Message, e.Text)
	}
	return fmt.Sprintf("%s: %q", e.Message, e.Text)
}

func parseErrorf(line int, text, format string, args ...interface{}) *ParseError {
	return &ParseError{Line: line, Text: text, Message: fmt.Sprintf(format, args...)}
}

// InternalError reports a violated construction invariant: a cost query
// before block assignment, or a second write to a write-once field. It
// indicates a bug in the calling sequence, not bad input, and must abort
// the current analysis.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "internal: " + e.Message
}

func internalErrorf(format string, args ...interface{}) *InternalError {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
