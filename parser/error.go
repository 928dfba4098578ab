package parser

import (
	"fmt"
	"strings"

	"github.com/johmaru/sprs-sub000/token"
)

// Error is a parse error at a source location.
type Error struct {
	// File is the path of the offending source file.
	File string
	// Line and Col are 1-based.
	Line int
	Col  int
	// Tok is the offending token.
	Tok token.Token
	// Expected lists the token spellings that would have been accepted.
	Expected []string
	// SrcLine holds the source line the error occurred on.
	SrcLine string
}

// Error implements the error interface, producing the offending source line
// followed by a caret beneath the column.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%d:%d: unexpected token %s", e.File, e.Line, e.Col, e.Tok)
	if len(e.Expected) > 0 {
		fmt.Fprintf(&sb, ", expected %s", strings.Join(e.Expected, " or "))
	}
	sb.WriteByte('\n')
	sb.WriteString(e.SrcLine)
	sb.WriteByte('\n')
	for i := 1; i < e.Col; i++ {
		sb.WriteByte(' ')
	}
	sb.WriteByte('^')
	return sb.String()
}

// newError builds an Error for the token at offset tok.Start in src.
func newError(file, src string, tok token.Token, expected ...string) *Error {
	line, col, srcLine := locate(src, tok.Start)
	return &Error{
		File:     file,
		Line:     line,
		Col:      col,
		Tok:      tok,
		Expected: expected,
		SrcLine:  srcLine,
	}
}

// locate converts a byte offset into a 1-based line and column and returns
// the source line containing the offset.
func locate(src string, offset int) (line, col int, srcLine string) {
	if offset > len(src) {
		offset = len(src)
	}
	line = 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	lineEnd := len(src)
	for i := lineStart; i < len(src); i++ {
		if src[i] == '\n' {
			lineEnd = i
			break
		}
	}
	return line, offset - lineStart + 1, src[lineStart:lineEnd]
}
