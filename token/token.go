// Package token defines the lexical tokens of the Sprs language and their
// source spans.
package token

import "fmt"

// Kind is the set of lexical token kinds.
type Kind int

const (
	// Special tokens.
	EOF Kind = iota
	Invalid

	// Structural tokens.
	LBrace   // {
	RBrace   // }
	LParen   // (
	RParen   // )
	LBracket // [
	RBracket // ]

	// Operators and delimiters.
	Assign    // =
	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Percent   // %
	Eq        // ==
	Neq       // !=
	Lt        // <
	Gt        // >
	Leq       // <=
	Geq       // >=
	Inc       // ++
	Dec       // --
	DotDot    // ..
	Dot       // .
	Comma     // ,
	Semicolon // ;
	Arrow     // ->

	// Keywords.
	Fn
	Return
	If
	Then
	Else
	While
	Var
	Pkg
	Import
	Pub
	Struct
	Enum
	Define // #define

	// Literals and identifiers.
	Ident
	MacroIdent // identifier with a trailing '!'
	Int
	Float
	String
	True
	False
)

var kindNames = [...]string{
	EOF:        "EOF",
	Invalid:    "invalid",
	LBrace:     "{",
	RBrace:     "}",
	LParen:     "(",
	RParen:     ")",
	LBracket:   "[",
	RBracket:   "]",
	Assign:     "=",
	Plus:       "+",
	Minus:      "-",
	Star:       "*",
	Slash:      "/",
	Percent:    "%",
	Eq:         "==",
	Neq:        "!=",
	Lt:         "<",
	Gt:         ">",
	Leq:        "<=",
	Geq:        ">=",
	Inc:        "++",
	Dec:        "--",
	DotDot:     "..",
	Dot:        ".",
	Comma:      ",",
	Semicolon:  ";",
	Arrow:      "->",
	Fn:         "fn",
	Return:     "return",
	If:         "if",
	Then:       "then",
	Else:       "else",
	While:      "while",
	Var:        "var",
	Pkg:        "pkg",
	Import:     "import",
	Pub:        "pub",
	Struct:     "struct",
	Enum:       "enum",
	Define:     "#define",
	Ident:      "identifier",
	MacroIdent: "macro identifier",
	Int:        "integer literal",
	Float:      "float literal",
	String:     "string literal",
	True:       "true",
	False:      "false",
}

// String returns the canonical spelling of the token kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps keyword spellings to their token kinds. Keywords take
// priority over identifiers.
var keywords = map[string]Kind{
	"fn":     Fn,
	"return": Return,
	"if":     If,
	"then":   Then,
	"else":   Else,
	"while":  While,
	"var":    Var,
	"pkg":    Pkg,
	"import": Import,
	"pub":    Pub,
	"struct": Struct,
	"enum":   Enum,
	"true":   True,
	"false":  False,
}

// Lookup returns the keyword kind of ident, or Ident if ident is not a
// keyword.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return Ident
}

// Token is a lexical token with its source span. Start and End are byte
// offsets into the source; the token text is source[Start:End].
type Token struct {
	Kind  Kind
	Lit   string
	Start int
	End   int
}

// String returns a description of the token for error messages.
func (tok Token) String() string {
	switch tok.Kind {
	case Ident, MacroIdent, Int, Float, String:
		return fmt.Sprintf("%s %q", tok.Kind, tok.Lit)
	}
	return fmt.Sprintf("%q", tok.Kind.String())
}
