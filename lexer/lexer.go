// Package lexer implements the scanner of the Sprs language, turning source
// text into a stream of positioned tokens.
package lexer

import (
	"fmt"

	"github.com/johmaru/sprs-sub000/token"
)

// ErrInvalidToken reports an unrecognized byte in the source.
type ErrInvalidToken struct {
	// Byte offsets of the offending span.
	Start, End int
}

// Error implements the error interface.
func (e *ErrInvalidToken) Error() string {
	return fmt.Sprintf("invalid token at byte offset %d..%d", e.Start, e.End)
}

// Lexer scans a source string left to right. The zero value is not usable;
// use New.
type Lexer struct {
	src string
	pos int
}

// New returns a lexer scanning src.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Scan tokenizes src in full. Invalid bytes each produce one ErrInvalidToken
// and scanning continues after the offending span; the returned token slice
// excludes the EOF sentinel.
func Scan(src string) ([]token.Token, []error) {
	l := New(src)
	var toks []token.Token
	var errs []error
	for {
		tok := l.Next()
		if tok.Kind == token.EOF {
			return toks, errs
		}
		if tok.Kind == token.Invalid {
			errs = append(errs, &ErrInvalidToken{Start: tok.Start, End: tok.End})
			continue
		}
		toks = append(toks, tok)
	}
}

// Next returns the next token. At end of input it returns an EOF token whose
// span is empty.
func (l *Lexer) Next() token.Token {
	l.skipSpaceAndComments()
	start := l.pos
	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Start: start, End: start}
	}
	c := l.src[l.pos]
	switch {
	case isIdentStart(c):
		return l.scanIdent(start)
	case isDigit(c):
		return l.scanNumber(start)
	case c == '"':
		return l.scanString(start)
	case c == '#':
		// skipSpaceAndComments leaves '#' in place only for #define.
		return l.scanDefine(start)
	}
	// Two-character operators take priority over their one-character
	// prefixes.
	if l.pos+1 < len(l.src) {
		if kind, ok := twoCharOps[l.src[l.pos:l.pos+2]]; ok {
			l.pos += 2
			return l.tok(kind, start)
		}
	}
	if kind, ok := oneCharOps[c]; ok {
		l.pos++
		return l.tok(kind, start)
	}
	l.pos++
	return l.tok(token.Invalid, start)
}

var twoCharOps = map[string]token.Kind{
	"==": token.Eq,
	"!=": token.Neq,
	"<=": token.Leq,
	">=": token.Geq,
	"++": token.Inc,
	"--": token.Dec,
	"..": token.DotDot,
	"->": token.Arrow,
}

var oneCharOps = map[byte]token.Kind{
	'{': token.LBrace,
	'}': token.RBrace,
	'(': token.LParen,
	')': token.RParen,
	'[': token.LBracket,
	']': token.RBracket,
	'=': token.Assign,
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'%': token.Percent,
	'<': token.Lt,
	'>': token.Gt,
	'.': token.Dot,
	',': token.Comma,
	';': token.Semicolon,
}

// tok builds a token spanning start..l.pos.
func (l *Lexer) tok(kind token.Kind, start int) token.Token {
	return token.Token{Kind: kind, Lit: l.src[start:l.pos], Start: start, End: l.pos}
}

// skipSpaceAndComments discards whitespace and `#` line comments. A `#` that
// begins a `#define` directive is kept for scanDefine.
func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '#':
			if l.hasPrefix("#define") {
				return
			}
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

// hasPrefix reports whether the remaining input starts with s.
func (l *Lexer) hasPrefix(s string) bool {
	return len(l.src)-l.pos >= len(s) && l.src[l.pos:l.pos+len(s)] == s
}

// scanIdent scans an identifier, keyword, or macro identifier. Identifiers
// match [A-Za-z_][A-Za-z0-9_]* with an optional trailing '!' marking a macro
// call.
func (l *Lexer) scanIdent(start int) token.Token {
	for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
		l.pos++
	}
	// A trailing '!' marks a macro name unless it starts a `!=` operator, so
	// `a!=b` compares a and b.
	if l.pos < len(l.src) && l.src[l.pos] == '!' && !(l.pos+1 < len(l.src) && l.src[l.pos+1] == '=') {
		l.pos++
		tok := l.tok(token.MacroIdent, start)
		tok.Lit = tok.Lit[:len(tok.Lit)-1] // drop the '!'
		return tok
	}
	tok := l.tok(token.Ident, start)
	tok.Kind = token.Lookup(tok.Lit)
	return tok
}

// scanNumber scans a decimal integer or float literal. A '.' only continues
// the literal when followed by a digit, so `1..5` lexes as `1`, `..`, `5`.
func (l *Lexer) scanNumber(start int) token.Token {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && isDigit(l.src[l.pos+1]) {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		return l.tok(token.Float, start)
	}
	return l.tok(token.Int, start)
}

// scanString scans a `"..."` literal. No escape sequences: the bytes between
// the quotes form the literal value verbatim.
func (l *Lexer) scanString(start int) token.Token {
	l.pos++ // opening quote
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		l.pos++
	}
	if l.pos >= len(l.src) {
		// Unterminated string.
		return l.tok(token.Invalid, start)
	}
	l.pos++ // closing quote
	tok := l.tok(token.String, start)
	tok.Lit = l.src[start+1 : l.pos-1]
	return tok
}

// scanDefine scans the `#define` keyword.
func (l *Lexer) scanDefine(start int) token.Token {
	l.pos += len("#define")
	return l.tok(token.Define, start)
}

func isIdentStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
