package parser

import (
	"fmt"
	"strings"
)

// hintTable maps a substring of a low-level parse failure to a one-line
// hint appended to the surfaced error, per §4.2/§7.
var hintTable = []struct {
	match string
	hint  string
}{
	{"Empty expression", "Hint: check for a missing operand around a quote or bracket"},
	{"missing 'to'", `Hint: "Set" statements need a "to", e.g. Set x to 5`},
	{"missing 'as'", `Hint: function definitions need "as <expr>" for inline bodies`},
	{"unbalanced bracket", "Hint: every [ [ ( and { needs a matching closer"},
	{"index out of range", "Hint: Use negative indexing (-1) for last element"},
}

// Error is a parse-time error carrying the `[file: Line N: Col C] ...`
// location prefix required by §4.2/§7; parse errors are never thrown from
// running code.
type Error struct {
	File    string
	Line    int
	Col     int
	Message string
}

func (e *Error) Error() string {
	msg := e.Message
	for _, h := range hintTable {
		if strings.Contains(msg, h.match) {
			msg = msg + "\n" + h.hint
			break
		}
	}
	return fmt.Sprintf("[%s: Line %d: Col %d] %s", e.File, e.Line, e.Col, msg)
}

// parseErrAt and errHere are constructed by parser code; errHere uses
// column 1 as a placeholder when a precise column isn't tracked by the
// caller (statement-level errors), parseErrAt takes the column explicitly.
func (p *Parser) parseErrAt(line, col int, format string, args ...interface{}) error {
	return &Error{File: p.file, Line: line, Col: col, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) errHere(format string, args ...interface{}) error {
	return p.parseErrAt(p.curLine, 1, format, args...)
}

// parseErr is used by the tokenizer, which doesn't know the source line
// number; the parser wraps these with the current line before returning.
func parseErr(col int, format string, args ...interface{}) error {
	return fmt.Errorf("Col %d: %s", col, fmt.Sprintf(format, args...))
}
