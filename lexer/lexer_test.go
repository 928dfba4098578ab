package lexer

import (
	"testing"

	"github.com/johmaru/sprs-sub000/token"
)

func TestSingleTokens(t *testing.T) {
	golden := []struct {
		src  string
		kind token.Kind
		lit  string
	}{
		{"{", token.LBrace, "{"},
		{"}", token.RBrace, "}"},
		{"(", token.LParen, "("},
		{")", token.RParen, ")"},
		{"[", token.LBracket, "["},
		{"]", token.RBracket, "]"},
		{"=", token.Assign, "="},
		{"+", token.Plus, "+"},
		{"-", token.Minus, "-"},
		{"*", token.Star, "*"},
		{"/", token.Slash, "/"},
		{"%", token.Percent, "%"},
		{"==", token.Eq, "=="},
		{"!=", token.Neq, "!="},
		{"<", token.Lt, "<"},
		{">", token.Gt, ">"},
		{"<=", token.Leq, "<="},
		{">=", token.Geq, ">="},
		{"++", token.Inc, "++"},
		{"--", token.Dec, "--"},
		{"..", token.DotDot, ".."},
		{".", token.Dot, "."},
		{",", token.Comma, ","},
		{";", token.Semicolon, ";"},
		{"->", token.Arrow, "->"},
		{"fn", token.Fn, "fn"},
		{"return", token.Return, "return"},
		{"if", token.If, "if"},
		{"then", token.Then, "then"},
		{"else", token.Else, "else"},
		{"while", token.While, "while"},
		{"var", token.Var, "var"},
		{"pkg", token.Pkg, "pkg"},
		{"import", token.Import, "import"},
		{"pub", token.Pub, "pub"},
		{"struct", token.Struct, "struct"},
		{"enum", token.Enum, "enum"},
		{"#define", token.Define, "#define"},
		{"true", token.True, "true"},
		{"false", token.False, "false"},
		{"foo", token.Ident, "foo"},
		{"_bar9", token.Ident, "_bar9"},
		{"println!", token.MacroIdent, "println"},
		{"42", token.Int, "42"},
		{"3.14", token.Float, "3.14"},
		{`"hello"`, token.String, "hello"},
	}
	for _, g := range golden {
		toks, errs := Scan(g.src)
		if len(errs) > 0 {
			t.Errorf("%q: unexpected errors %v", g.src, errs)
			continue
		}
		if len(toks) != 1 {
			t.Errorf("%q: expected 1 token, got %d (%v)", g.src, len(toks), toks)
			continue
		}
		tok := toks[0]
		if tok.Kind != g.kind {
			t.Errorf("%q: expected kind %v, got %v", g.src, g.kind, tok.Kind)
		}
		if tok.Lit != g.lit {
			t.Errorf("%q: expected literal %q, got %q", g.src, g.lit, tok.Lit)
		}
		if tok.Start != 0 || tok.End != len(g.src) {
			t.Errorf("%q: expected span 0..%d, got %d..%d", g.src, len(g.src), tok.Start, tok.End)
		}
	}
}

func TestTwoCharOpsNotSplit(t *testing.T) {
	golden := []struct {
		src   string
		kinds []token.Kind
	}{
		{"a==b", []token.Kind{token.Ident, token.Eq, token.Ident}},
		{"a!=b", []token.Kind{token.Ident, token.Neq, token.Ident}},
		{"a<=b", []token.Kind{token.Ident, token.Leq, token.Ident}},
		{"a>=b", []token.Kind{token.Ident, token.Geq, token.Ident}},
		{"i++", []token.Kind{token.Ident, token.Inc}},
		{"i--", []token.Kind{token.Ident, token.Dec}},
		{"1..5", []token.Kind{token.Int, token.DotDot, token.Int}},
		{"a.b", []token.Kind{token.Ident, token.Dot, token.Ident}},
		{"fn f() -> i64", []token.Kind{token.Fn, token.Ident, token.LParen, token.RParen, token.Arrow, token.Ident}},
	}
	for _, g := range golden {
		toks, errs := Scan(g.src)
		if len(errs) > 0 {
			t.Errorf("%q: unexpected errors %v", g.src, errs)
			continue
		}
		if len(toks) != len(g.kinds) {
			t.Errorf("%q: expected %d tokens, got %d (%v)", g.src, len(g.kinds), len(toks), toks)
			continue
		}
		for i, kind := range g.kinds {
			if toks[i].Kind != kind {
				t.Errorf("%q: token %d: expected %v, got %v", g.src, i, kind, toks[i].Kind)
			}
		}
	}
}

func TestCommentsDiscarded(t *testing.T) {
	const src = "var x = 1; # trailing comment\n# full line\nvar y = 2;"
	toks, errs := Scan(src)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	want := []token.Kind{
		token.Var, token.Ident, token.Assign, token.Int, token.Semicolon,
		token.Var, token.Ident, token.Assign, token.Int, token.Semicolon,
	}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d (%v)", len(want), len(toks), toks)
	}
	for i, kind := range want {
		if toks[i].Kind != kind {
			t.Errorf("token %d: expected %v, got %v", i, kind, toks[i].Kind)
		}
	}
}

func TestDefineDirective(t *testing.T) {
	toks, errs := Scan("#define Linux\nfn main() {}")
	if len(errs) > 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if toks[0].Kind != token.Define {
		t.Fatalf("expected #define token, got %v", toks[0])
	}
	if toks[1].Kind != token.Ident || toks[1].Lit != "Linux" {
		t.Fatalf("expected Linux identifier after #define, got %v", toks[1])
	}
}

func TestInvalidByteContinues(t *testing.T) {
	toks, errs := Scan("var x @ = 1;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	e, ok := errs[0].(*ErrInvalidToken)
	if !ok {
		t.Fatalf("expected *ErrInvalidToken, got %T", errs[0])
	}
	if e.Start != 6 || e.End != 7 {
		t.Errorf("expected span 6..7, got %d..%d", e.Start, e.End)
	}
	// Scanning resumes after the offending byte.
	if len(toks) != 5 {
		t.Fatalf("expected 5 tokens after recovery, got %d (%v)", len(toks), toks)
	}
}

func TestStringNoEscapes(t *testing.T) {
	toks, errs := Scan(`"a\nb"`)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors %v", errs)
	}
	if toks[0].Lit != `a\nb` {
		t.Errorf("expected raw bytes between quotes, got %q", toks[0].Lit)
	}
}
