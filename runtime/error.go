package runtime

import (
	"fmt"
	"strings"

	"github.com/dekarrin/ictiobus/lex"
)

// ParseError reports a token the parse table has no action for: an
// unexpected token, or input ending before the grammar expected it to.
// TokenText, TokenType, and Expected carry the structured diagnostic data
// (spec.md §6: "{token_text, token_type_name, expected: [names…]}"); the
// remaining fields back the teacher-style FullMessage/SourceLineWithCursor
// rendering (grounded on internal/tunascript/error.go's SyntaxError).
type ParseError struct {
	// TokenText is the literal text of the offending token.
	TokenText string

	// TokenType is the class name of the offending token's terminal.
	TokenType string

	// Expected is the sorted list of terminal names (and "end of input"
	// for EOF) that would have been valid in its place.
	Expected []string

	sourceLine string
	line       int
	col        int
	message    string
}

func (e *ParseError) Error() string {
	if e.line == 0 {
		return fmt.Sprintf("syntax error: %s", e.message)
	}
	return fmt.Sprintf("syntax error: around line %d, char %d: %s", e.line, e.col, e.message)
}

// Line returns the 1-indexed line the error occurred on, or 0 if unset.
func (e *ParseError) Line() int { return e.line }

// Position returns the 1-indexed column the error occurred on, or 0 if
// unset.
func (e *ParseError) Position() int { return e.col }

// Source returns the literal text of the token that caused the error; an
// alias of TokenText kept for teacher-style call sites.
func (e *ParseError) Source() string { return e.TokenText }

// FullMessage renders the error message together with the offending
// source line and a cursor pointing at the exact column.
func (e *ParseError) FullMessage() string {
	msg := e.Error()
	if e.line != 0 {
		msg = e.SourceLineWithCursor() + "\n" + msg
	}
	return msg
}

// SourceLineWithCursor returns the offending line with a "^" cursor placed
// under the error column, or "" if no source line is available.
func (e *ParseError) SourceLineWithCursor() string {
	if e.sourceLine == "" {
		return ""
	}
	cursor := strings.Repeat(" ", e.col-1) + "^"
	return e.sourceLine + "\n" + cursor
}

func parseErrorFromToken(msg string, tok lex.Token, expected []string) *ParseError {
	return &ParseError{
		TokenText:  tok.Lexeme,
		TokenType:  tok.ClassName,
		Expected:   expected,
		message:    msg,
		sourceLine: tok.FullLine,
		line:       tok.Line,
		col:        tok.Col,
	}
}
