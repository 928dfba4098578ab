// Package parser implements the deterministic parser of the Sprs language,
// producing one ast.File per source file.
package parser

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/johmaru/sprs-sub000/ast"
	"github.com/johmaru/sprs-sub000/lexer"
	"github.com/johmaru/sprs-sub000/token"
)

// Parse parses the source text of the named file into its list of top-level
// items.
func Parse(name, src string) (*ast.File, error) {
	toks, lexErrs := lexer.Scan(src)
	if len(lexErrs) > 0 {
		e := lexErrs[0].(*lexer.ErrInvalidToken)
		bad := token.Token{Kind: token.Invalid, Lit: src[e.Start:e.End], Start: e.Start, End: e.End}
		return nil, newError(name, src, bad)
	}
	p := &parser{file: name, src: src, toks: toks}
	file := &ast.File{Name: name, Src: src}
	for !p.atEOF() {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		file.Items = append(file.Items, item)
	}
	return file, nil
}

// parser holds the token stream and a cursor into it.
type parser struct {
	file string
	src  string
	toks []token.Token
	pos  int
	// noStructInit suppresses struct literals while parsing an if or while
	// condition, where a `{` opens the statement block. Cleared inside
	// parentheses and brackets.
	noStructInit bool
}

// cur returns the token under the cursor, or an EOF token past the end.
func (p *parser) cur() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return token.Token{Kind: token.EOF, Start: len(p.src), End: len(p.src)}
}

// peek returns the token n positions ahead of the cursor.
func (p *parser) peek(n int) token.Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return token.Token{Kind: token.EOF, Start: len(p.src), End: len(p.src)}
}

// next consumes and returns the token under the cursor.
func (p *parser) next() token.Token {
	tok := p.cur()
	p.pos++
	return tok
}

// accept consumes the token under the cursor if it has the given kind.
func (p *parser) accept(kind token.Kind) bool {
	if p.cur().Kind == kind {
		p.pos++
		return true
	}
	return false
}

// expect consumes a token of the given kind or fails with a formatted parse
// error.
func (p *parser) expect(kind token.Kind) (token.Token, error) {
	if p.cur().Kind == kind {
		return p.next(), nil
	}
	return token.Token{}, p.errorf(kind.String())
}

// errorf builds a parse error at the current token naming the expected
// spellings.
func (p *parser) errorf(expected ...string) error {
	return newError(p.file, p.src, p.cur(), expected...)
}

func (p *parser) atEOF() bool {
	return p.cur().Kind == token.EOF
}

func span(start, end token.Token) ast.Span {
	return ast.Span{Start: start.Start, Stop: end.End}
}

// === [ Items ] ===============================================================

func (p *parser) parseItem() (ast.Item, error) {
	start := p.cur()
	switch start.Kind {
	case token.Import:
		p.next()
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		end, err := p.expect(token.Semicolon)
		if err != nil {
			return nil, err
		}
		return &ast.Import{Span: span(start, end), Name: name.Lit}, nil
	case token.Pkg:
		p.next()
		name, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		end, err := p.expect(token.Semicolon)
		if err != nil {
			return nil, err
		}
		return &ast.Package{Span: span(start, end), Name: name.Lit}, nil
	case token.Define:
		p.next()
		directive, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		return &ast.Preprocessor{Span: span(start, directive), Directive: directive.Lit}, nil
	case token.Var:
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		return &ast.VarItem{Span: ast.Span{Start: decl.Pos(), Stop: decl.End()}, Decl: decl}, nil
	case token.Pub, token.Fn, token.Struct, token.Enum:
		public := p.accept(token.Pub)
		switch p.cur().Kind {
		case token.Fn:
			fn, err := p.parseFunction(public)
			if err != nil {
				return nil, err
			}
			return &ast.FunctionItem{Span: fn.Span, Func: fn}, nil
		case token.Struct:
			decl, err := p.parseStructDecl(public)
			if err != nil {
				return nil, err
			}
			return &ast.StructItem{Span: decl.Span, Decl: decl}, nil
		case token.Enum:
			decl, err := p.parseEnumDecl(public)
			if err != nil {
				return nil, err
			}
			return &ast.EnumItem{Span: decl.Span, Decl: decl}, nil
		}
		return nil, p.errorf("fn", "struct", "enum")
	}
	return nil, p.errorf("import", "pkg", "#define", "var", "fn", "struct", "enum")
}

func (p *parser) parseVarDecl() (*ast.VarDecl, error) {
	start, err := p.expect(token.Var)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.Semicolon)
	if err != nil {
		return nil, err
	}
	return &ast.VarDecl{Span: span(start, end), Name: name.Lit, Value: value}, nil
}

func (p *parser) parseFunction(public bool) (*ast.Function, error) {
	start, err := p.expect(token.Fn)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var params []string
	for p.cur().Kind != token.RParen {
		param, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		params = append(params, param.Lit)
		if !p.accept(token.Comma) {
			break
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	var retTy ast.Type
	if p.accept(token.Arrow) {
		tyName, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		retTy = ast.TypeByName(tyName.Lit)
	}
	body, end, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Function{
		Span:   span(start, end),
		Ident:  name.Lit,
		Params: params,
		RetTy:  retTy,
		Public: public,
		Body:   body,
	}, nil
}

func (p *parser) parseStructDecl(public bool) (*ast.StructDecl, error) {
	start, err := p.expect(token.Struct)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var fields []*ast.Field
	for p.cur().Kind != token.RBrace {
		fieldPublic := p.accept(token.Pub)
		fieldStart := p.cur()
		fieldName, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		// Fields are `name type` pairs with the type spelled as an
		// identifier.
		tyName, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.Field{
			Span:   span(fieldStart, tyName),
			Name:   fieldName.Lit,
			Ty:     ast.TypeByName(tyName.Lit),
			Public: fieldPublic,
		})
		if !p.accept(token.Comma) {
			break
		}
	}
	end, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.StructDecl{Span: span(start, end), Name: name.Lit, Public: public, Fields: fields}, nil
}

func (p *parser) parseEnumDecl(public bool) (*ast.EnumDecl, error) {
	start, err := p.expect(token.Enum)
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var variants []*ast.Variant
	for p.cur().Kind != token.RBrace {
		variantPublic := p.accept(token.Pub)
		variantName, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		variants = append(variants, &ast.Variant{
			Span:   span(variantName, variantName),
			Name:   variantName.Lit,
			Public: variantPublic,
		})
		if !p.accept(token.Comma) {
			break
		}
	}
	end, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.EnumDecl{Span: span(start, end), Name: name.Lit, Public: public, Variants: variants}, nil
}

// === [ Statements ] ==========================================================

// parseBlock parses a `{ STMT* }` block and returns its statements together
// with the closing brace token.
func (p *parser) parseBlock() ([]ast.Stmt, token.Token, error) {
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, token.Token{}, err
	}
	var stmts []ast.Stmt
	for p.cur().Kind != token.RBrace {
		if p.atEOF() {
			return nil, token.Token{}, p.errorf("}")
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, token.Token{}, err
		}
		stmts = append(stmts, stmt)
	}
	end := p.next()
	return stmts, end, nil
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	start := p.cur()
	switch start.Kind {
	case token.Var:
		decl, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		return &ast.VarStmt{Span: ast.Span{Start: decl.Pos(), Stop: decl.End()}, Decl: decl}, nil
	case token.If:
		return p.parseIfStmt()
	case token.While:
		p.next()
		cond, err := p.parseCondExpr()
		if err != nil {
			return nil, err
		}
		body, end, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.WhileStmt{Span: span(start, end), Cond: cond, Body: body}, nil
	case token.Return:
		p.next()
		if end := p.cur(); end.Kind == token.Semicolon {
			p.next()
			return &ast.ReturnStmt{Span: span(start, end)}, nil
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		end, err := p.expect(token.Semicolon)
		if err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Span: span(start, end), X: x}, nil
	case token.Enum:
		decl, err := p.parseEnumDecl(false)
		if err != nil {
			return nil, err
		}
		return &ast.EnumStmt{Span: decl.Span, Decl: decl}, nil
	case token.Ident:
		// `NAME = EXPR;` is an assignment; anything else falls through to an
		// expression statement.
		if p.peek(1).Kind == token.Assign {
			p.next()
			p.next()
			x, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			end, err := p.expect(token.Semicolon)
			if err != nil {
				return nil, err
			}
			return &ast.AssignStmt{Span: span(start, end), Name: start.Lit, X: x}, nil
		}
	}
	x, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	end, err := p.expect(token.Semicolon)
	if err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Span: span(start, end), X: x}, nil
}

// parseIfStmt parses `if COND { ... } [else { ... }]`.
func (p *parser) parseIfStmt() (ast.Stmt, error) {
	start, err := p.expect(token.If)
	if err != nil {
		return nil, err
	}
	cond, err := p.parseCondExpr()
	if err != nil {
		return nil, err
	}
	then, end, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var els []ast.Stmt
	if p.accept(token.Else) {
		els, end, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Span: span(start, end), Cond: cond, Then: then, Else: els}, nil
}

// === [ Expressions ] =========================================================

// Expression precedence, low to high: comparison, range, additive,
// multiplicative, unary/postfix, primary.

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseComparison()
}

// parseCondExpr parses an if or while condition. Struct literals are
// suppressed so that the opening brace of the statement block is not
// consumed as an initializer list; `if x {}` tests x against an empty block.
func (p *parser) parseCondExpr() (ast.Expr, error) {
	outer := p.noStructInit
	p.noStructInit = true
	x, err := p.parseExpr()
	p.noStructInit = outer
	return x, err
}

// parseInnerExpr parses an expression inside parentheses or brackets, where
// struct literals are unambiguous again.
func (p *parser) parseInnerExpr() (ast.Expr, error) {
	outer := p.noStructInit
	p.noStructInit = false
	x, err := p.parseExpr()
	p.noStructInit = outer
	return x, err
}

func (p *parser) parseComparison() (ast.Expr, error) {
	x, err := p.parseRange()
	if err != nil {
		return nil, err
	}
	for {
		op := p.cur().Kind
		switch op {
		case token.Eq, token.Neq, token.Lt, token.Gt, token.Leq, token.Geq:
		default:
			return x, nil
		}
		p.next()
		y, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryExpr{Span: ast.Span{Start: x.Pos(), Stop: y.End()}, Op: op, X: x, Y: y}
	}
}

func (p *parser) parseRange() (ast.Expr, error) {
	x, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if !p.accept(token.DotDot) {
		return x, nil
	}
	y, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	return &ast.RangeExpr{Span: ast.Span{Start: x.Pos(), Stop: y.End()}, Start: x, Stop: y}, nil
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	x, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		op := p.cur().Kind
		if op != token.Plus && op != token.Minus {
			return x, nil
		}
		p.next()
		y, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryExpr{Span: ast.Span{Start: x.Pos(), Stop: y.End()}, Op: op, X: x, Y: y}
	}
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.cur().Kind
		if op != token.Star && op != token.Slash && op != token.Percent {
			return x, nil
		}
		p.next()
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = &ast.BinaryExpr{Span: ast.Span{Start: x.Pos(), Stop: y.End()}, Op: op, X: x, Y: y}
	}
}

func (p *parser) parseUnary() (ast.Expr, error) {
	start := p.cur()
	if start.Kind == token.Inc || start.Kind == token.Dec {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.IncDecExpr{Span: ast.Span{Start: start.Start, Stop: x.End()}, Op: start.Kind, X: x}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by left-associative
// postfix chains: `.field`, `[idx]`, `(args)`, `++`, `--`.
func (p *parser) parsePostfix() (ast.Expr, error) {
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.Dot:
			p.next()
			field, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			// `module.fn(args)` is a cross-module call when the base is a
			// bare name; any other dotted access is a field access.
			if base, ok := x.(*ast.VarRef); ok && p.cur().Kind == token.LParen {
				args, end, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				x = &ast.ModuleAccess{
					Span:   ast.Span{Start: x.Pos(), Stop: end.End},
					Module: base.Name,
					Fn:     field.Lit,
					Args:   args,
				}
				continue
			}
			x = &ast.FieldAccess{Span: ast.Span{Start: x.Pos(), Stop: field.End}, X: x, Field: field.Lit}
		case token.LBracket:
			p.next()
			idx, err := p.parseInnerExpr()
			if err != nil {
				return nil, err
			}
			end, err := p.expect(token.RBracket)
			if err != nil {
				return nil, err
			}
			x = &ast.IndexExpr{Span: ast.Span{Start: x.Pos(), Stop: end.End}, X: x, Index: idx}
		case token.Inc, token.Dec:
			op := p.next()
			x = &ast.IncDecExpr{Span: ast.Span{Start: x.Pos(), Stop: op.End}, Op: op.Kind, X: x, Post: true}
		default:
			return x, nil
		}
	}
}

// parseArgs parses a parenthesized, comma-separated argument list and
// returns the closing parenthesis token.
func (p *parser) parseArgs() ([]ast.Expr, token.Token, error) {
	if _, err := p.expect(token.LParen); err != nil {
		return nil, token.Token{}, err
	}
	var args []ast.Expr
	for p.cur().Kind != token.RParen {
		arg, err := p.parseInnerExpr()
		if err != nil {
			return nil, token.Token{}, err
		}
		args = append(args, arg)
		if !p.accept(token.Comma) {
			break
		}
	}
	end, err := p.expect(token.RParen)
	if err != nil {
		return nil, token.Token{}, err
	}
	return args, end, nil
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	start := p.cur()
	switch start.Kind {
	case token.Int:
		p.next()
		v, err := strconv.ParseInt(start.Lit, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid integer literal %q", start.Lit)
		}
		return &ast.NumberLit{Span: span(start, start), Value: v}, nil
	case token.Float:
		p.next()
		v, err := strconv.ParseFloat(start.Lit, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid float literal %q", start.Lit)
		}
		return &ast.FloatLit{Span: span(start, start), Value: v}, nil
	case token.String:
		p.next()
		return &ast.StringLit{Span: span(start, start), Value: start.Lit}, nil
	case token.True, token.False:
		p.next()
		return &ast.BoolLit{Span: span(start, start), Value: start.Kind == token.True}, nil
	case token.MacroIdent:
		p.next()
		args, end, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &ast.CallExpr{Span: span(start, end), Name: start.Lit, Args: args, Macro: true}, nil
	case token.Ident:
		// Type-name atoms evaluate to their tag.
		if ty := ast.TypeByName(start.Lit); ty.IsSizedNumeric() {
			p.next()
			return &ast.TypeAtom{Span: span(start, start), Ty: ty}, nil
		}
		if p.peek(1).Kind == token.LParen {
			p.next()
			args, end, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &ast.CallExpr{Span: span(start, end), Name: start.Lit, Args: args}, nil
		}
		// Struct literal `Name { field = expr, ... }`. Suppressed while
		// parsing an if or while condition, where the brace opens the
		// statement block instead.
		if !p.noStructInit && p.peek(1).Kind == token.LBrace && (p.peek(2).Kind == token.RBrace ||
			p.peek(2).Kind == token.Ident && p.peek(3).Kind == token.Assign) {
			return p.parseStructInit()
		}
		p.next()
		return &ast.VarRef{Span: span(start, start), Name: start.Lit}, nil
	case token.If:
		// Ternary `if COND then EXPR else EXPR`.
		p.next()
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Then); err != nil {
			return nil, err
		}
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Else); err != nil {
			return nil, err
		}
		els, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &ast.IfExpr{Span: ast.Span{Start: start.Start, Stop: els.End()}, Cond: cond, Then: then, Else: els}, nil
	case token.LBracket:
		p.next()
		var elems []ast.Expr
		for p.cur().Kind != token.RBracket {
			elem, err := p.parseInnerExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
			if !p.accept(token.Comma) {
				break
			}
		}
		end, err := p.expect(token.RBracket)
		if err != nil {
			return nil, err
		}
		return &ast.ListLit{Span: span(start, end), Elems: elems}, nil
	case token.LParen:
		p.next()
		if end := p.cur(); end.Kind == token.RParen {
			p.next()
			return &ast.UnitLit{Span: span(start, end)}, nil
		}
		x, err := p.parseInnerExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return x, nil
	}
	return nil, p.errorf("expression")
}

// parseStructInit parses `Name { field = expr, ... }`.
func (p *parser) parseStructInit() (ast.Expr, error) {
	name := p.next()
	if _, err := p.expect(token.LBrace); err != nil {
		return nil, err
	}
	var fields []*ast.FieldInit
	for p.cur().Kind != token.RBrace {
		fieldName, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Assign); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.FieldInit{
			Span:  ast.Span{Start: fieldName.Start, Stop: value.End()},
			Name:  fieldName.Lit,
			Value: value,
		})
		if !p.accept(token.Comma) {
			break
		}
	}
	end, err := p.expect(token.RBrace)
	if err != nil {
		return nil, err
	}
	return &ast.StructInit{Span: span(name, end), Name: name.Lit, Fields: fields}, nil
}
