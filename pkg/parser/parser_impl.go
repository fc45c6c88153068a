package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nanov7/nanov7/pkg/ast"
	"github.com/nanov7/nanov7/pkg/errs"
)

// parser implements the recursive-descent JS parser: current/prev token,
// advance(), expect(), and an error recovery list, allocating nodes into
// a flat *ast.Arena instead of pointer-linked nodes, plus statement-level
// parsing that a single-expression grammar would never need.
type parser struct {
	lex     *Lexer
	current Token
	prev    Token
	arena   *ast.Arena
	errors  []error
	opts    CompileOptions
	depth   int
}

func newParser(source string, opts ...CompileOption) *parser {
	options := CompileOptions{MaxDepth: 256}
	for _, opt := range opts {
		opt(&options)
	}
	p := &parser{
		lex:   NewLexer(source),
		arena: ast.NewArena(),
		opts:  options,
	}
	p.advance()
	return p
}

func (p *parser) parse() (*ast.Program, error) {
	if p.current.Type == TokenError {
		return nil, p.lex.Error()
	}

	var stmts []ast.Ref
	for p.current.Type != TokenEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			if !p.opts.EnableRecovery {
				return nil, err
			}
			p.synchronize()
			continue
		}
		stmts = append(stmts, stmt)
	}

	if p.opts.EnableRecovery && len(p.errors) > 0 {
		return nil, p.errors[0]
	}

	root := p.arena.Alloc(ast.KindProgram, 0)
	p.arena.Node(root).List = stmts
	return &ast.Program{Arena: p.arena, Root: root, Source: p.lex.input}, nil
}

// synchronize discards tokens until a plausible statement boundary, used
// only in EnableRecovery mode.
func (p *parser) synchronize() {
	for p.current.Type != TokenEOF && p.current.Type != TokenSemicolon {
		p.advance()
	}
	if p.current.Type == TokenSemicolon {
		p.advance()
	}
}

// --- token/precedence plumbing -------------------------------------------------

func (p *parser) advance() {
	p.prev = p.current
	p.current = p.lex.Next(p.regexAllowed())
}

// regexAllowed reports whether a '/' in the about-to-be-lexed position
// should be read as a regex literal rather than the division operator:
// true at expression start (after an operator, opening bracket, comma,
// keyword, or at the very beginning).
func (p *parser) regexAllowed() bool {
	switch p.current.Type {
	case TokenIdentifier, TokenNumber, TokenString, TokenBoolean, TokenNull,
		TokenUndefined, TokenThis, TokenParenClose, TokenBracketClose,
		TokenBraceClose, TokenPlusPlus, TokenMinusMinus:
		return false
	default:
		return true
	}
}

func (p *parser) expect(tt TokenType) (Token, error) {
	if p.current.Type != tt {
		return Token{}, p.errorf("expected %s but got %q", tt.String(), p.current.Value)
	}
	t := p.current
	p.advance()
	return t, nil
}

func (p *parser) errorf(format string, args ...any) error {
	err := errs.At(errs.CodeSyntaxError, fmt.Sprintf(format, args...), p.current.Position)
	p.errors = append(p.errors, err)
	return err
}

func (p *parser) enter() error {
	p.depth++
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return p.errorf("maximum nesting depth %d exceeded", p.opts.MaxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

// --- precedence table for binary operators --------------------------------

const (
	precAssign      = 2
	precConditional = 4
	precCoalesce    = 5
	precLogicalOr   = 6
	precLogicalAnd  = 7
)

var binaryPrecedence = map[TokenType]int{
	TokenBitOr:        8,
	TokenBitXor:       9,
	TokenBitAnd:       10,
	TokenEqual:        11,
	TokenStrictEqual:  11,
	TokenNotEqual:     11,
	TokenStrictNotEq:  11,
	TokenLess:         12,
	TokenLessEqual:    12,
	TokenGreater:      12,
	TokenGreaterEqual: 12,
	TokenInstanceof:   12,
	TokenShiftL:       13,
	TokenShiftR:       13,
	TokenUShiftR:      13,
	TokenPlus:         14,
	TokenMinus:        14,
	TokenMult:         15,
	TokenDiv:          15,
	TokenMod:          15,
	TokenPow:          16,
}

var assignOps = map[TokenType]bool{
	TokenAssign: true, TokenPlusAssign: true, TokenMinusAssign: true,
	TokenMultAssign: true, TokenDivAssign: true, TokenModAssign: true,
}

// --- statements -------------------------------------------------------------

func (p *parser) parseStatement() (ast.Ref, error) {
	if err := p.enter(); err != nil {
		return 0, err
	}
	defer p.leave()

	switch p.current.Type {
	case TokenBraceOpen:
		return p.parseBlock()
	case TokenVar, TokenLet, TokenConst:
		return p.parseVarDeclStatement()
	case TokenFunction:
		return p.parseFunctionDecl()
	case TokenIf:
		return p.parseIf()
	case TokenFor:
		return p.parseFor()
	case TokenWhile:
		return p.parseWhile()
	case TokenDo:
		return p.parseDoWhile()
	case TokenBreak:
		pos := p.current.Position
		p.advance()
		p.acceptSemicolon()
		return p.arena.Alloc(ast.KindBreak, pos), nil
	case TokenContinue:
		pos := p.current.Position
		p.advance()
		p.acceptSemicolon()
		return p.arena.Alloc(ast.KindContinue, pos), nil
	case TokenReturn:
		return p.parseReturn()
	case TokenThrow:
		return p.parseThrow()
	case TokenTry:
		return p.parseTry()
	case TokenSemicolon:
		pos := p.current.Position
		p.advance()
		return p.arena.Alloc(ast.KindEmpty, pos), nil
	default:
		return p.parseExpressionStatement()
	}
}

// acceptSemicolon consumes a trailing ';' if present. This parser does not
// implement full automatic-semicolon-insertion rules; treating the
// terminator as optional is a deliberate simplification.
func (p *parser) acceptSemicolon() {
	if p.current.Type == TokenSemicolon {
		p.advance()
	}
}

func (p *parser) parseBlock() (ast.Ref, error) {
	open, err := p.expect(TokenBraceOpen)
	if err != nil {
		return 0, err
	}
	var stmts []ast.Ref
	for p.current.Type != TokenBraceClose && p.current.Type != TokenEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return 0, err
		}
		stmts = append(stmts, stmt)
	}
	if _, err := p.expect(TokenBraceClose); err != nil {
		return 0, err
	}
	ref := p.arena.Alloc(ast.KindBlock, open.Position)
	p.arena.Node(ref).List = stmts
	return ref, nil
}

func (p *parser) parseVarDeclStatement() (ast.Ref, error) {
	ref, err := p.parseVarDecl()
	if err != nil {
		return 0, err
	}
	p.acceptSemicolon()
	return ref, nil
}

// parseVarDecl parses `var|let|const a = 1, b, c = 2` without the
// trailing terminator, so the `for` parser can reuse it for loop headers.
func (p *parser) parseVarDecl() (ast.Ref, error) {
	kindTok := p.current
	kindStr := kindTok.Value
	p.advance()

	var declarators []ast.Ref
	for {
		decl, err := p.parseVarDeclarator()
		if err != nil {
			return 0, err
		}
		declarators = append(declarators, decl)
		if p.current.Type != TokenComma {
			break
		}
		p.advance()
	}

	ref := p.arena.Alloc(ast.KindVarDecl, kindTok.Position)
	n := p.arena.Node(ref)
	n.Str = kindStr
	n.List = declarators
	return ref, nil
}

func (p *parser) parseVarDeclarator() (ast.Ref, error) {
	idTok, err := p.expect(TokenIdentifier)
	if err != nil {
		return 0, err
	}
	idRef := p.arena.Alloc(ast.KindIdentifier, idTok.Position)
	p.arena.Node(idRef).Str = idTok.Value

	var initRef ast.Ref
	if p.current.Type == TokenAssign {
		p.advance()
		initRef, err = p.parseAssignExpr()
		if err != nil {
			return 0, err
		}
	}

	ref := p.arena.Alloc(ast.KindVarDeclarator, idTok.Position)
	n := p.arena.Node(ref)
	n.A = idRef
	n.B = initRef
	return ref, nil
}

func (p *parser) parseFunctionDecl() (ast.Ref, error) {
	fn, err := p.parseFunctionExpr()
	if err != nil {
		return 0, err
	}
	ref := p.arena.Alloc(ast.KindFunctionDecl, p.arena.Node(fn).Pos)
	p.arena.Node(ref).A = fn
	return ref, nil
}

func (p *parser) parseFunctionExpr() (ast.Ref, error) {
	kw, err := p.expect(TokenFunction)
	if err != nil {
		return 0, err
	}
	name := ""
	if p.current.Type == TokenIdentifier {
		name = p.current.Value
		p.advance()
	}
	if _, err := p.expect(TokenParenOpen); err != nil {
		return 0, err
	}
	var params []ast.Ref
	for p.current.Type != TokenParenClose {
		paramTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return 0, err
		}
		paramRef := p.arena.Alloc(ast.KindIdentifier, paramTok.Position)
		p.arena.Node(paramRef).Str = paramTok.Value
		params = append(params, paramRef)
		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenParenClose); err != nil {
		return 0, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return 0, err
	}

	ref := p.arena.Alloc(ast.KindFunction, kw.Position)
	n := p.arena.Node(ref)
	n.Str = name
	n.List = params
	n.A = body
	return ref, nil
}

func (p *parser) parseIf() (ast.Ref, error) {
	kw, err := p.expect(TokenIf)
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(TokenParenOpen); err != nil {
		return 0, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(TokenParenClose); err != nil {
		return 0, err
	}
	cons, err := p.parseStatement()
	if err != nil {
		return 0, err
	}
	var alt ast.Ref
	if p.current.Type == TokenElse {
		p.advance()
		alt, err = p.parseStatement()
		if err != nil {
			return 0, err
		}
	}
	ref := p.arena.Alloc(ast.KindIf, kw.Position)
	n := p.arena.Node(ref)
	n.A, n.B, n.C = test, cons, alt
	return ref, nil
}

func (p *parser) parseWhile() (ast.Ref, error) {
	kw, err := p.expect(TokenWhile)
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(TokenParenOpen); err != nil {
		return 0, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(TokenParenClose); err != nil {
		return 0, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return 0, err
	}
	ref := p.arena.Alloc(ast.KindWhile, kw.Position)
	n := p.arena.Node(ref)
	n.A, n.B = test, body
	return ref, nil
}

func (p *parser) parseDoWhile() (ast.Ref, error) {
	kw, err := p.expect(TokenDo)
	if err != nil {
		return 0, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(TokenWhile); err != nil {
		return 0, err
	}
	if _, err := p.expect(TokenParenOpen); err != nil {
		return 0, err
	}
	test, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(TokenParenClose); err != nil {
		return 0, err
	}
	p.acceptSemicolon()
	ref := p.arena.Alloc(ast.KindDoWhile, kw.Position)
	n := p.arena.Node(ref)
	n.A, n.B = body, test
	return ref, nil
}

// parseFor handles classic `for(init;test;update)`, `for(x in obj)` and
// `for(x of iterable)`, unified behind a single left-hand-side parse: an
// optional var/let/const declarator (no initializer yet) or a bare
// expression, followed by a dispatch on whether `in`/`of` follows.
func (p *parser) parseFor() (ast.Ref, error) {
	kw, err := p.expect(TokenFor)
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(TokenParenOpen); err != nil {
		return 0, err
	}

	var isDecl bool
	var declKindStr string
	var identRef ast.Ref
	var leftExpr ast.Ref

	switch p.current.Type {
	case TokenVar, TokenLet, TokenConst:
		isDecl = true
		declKindStr = p.current.Value
		p.advance()
		idTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return 0, err
		}
		identRef = p.arena.Alloc(ast.KindIdentifier, idTok.Position)
		p.arena.Node(identRef).Str = idTok.Value
	case TokenSemicolon:
		// empty init
	default:
		leftExpr, err = p.parseExpression()
		if err != nil {
			return 0, err
		}
	}

	if p.current.Type == TokenIn || p.current.Type == TokenOf {
		opStr := p.current.Value
		p.advance()
		right, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		if _, err := p.expect(TokenParenClose); err != nil {
			return 0, err
		}
		body, err := p.parseStatement()
		if err != nil {
			return 0, err
		}
		var leftRef ast.Ref
		if isDecl {
			declRef := p.arena.Alloc(ast.KindVarDeclarator, kw.Position)
			p.arena.Node(declRef).A = identRef
			declNode := p.arena.Alloc(ast.KindVarDecl, kw.Position)
			n := p.arena.Node(declNode)
			n.Str = declKindStr
			n.List = []ast.Ref{declRef}
			leftRef = declNode
		} else {
			leftRef = leftExpr
		}
		ref := p.arena.Alloc(ast.KindForIn, kw.Position)
		n := p.arena.Node(ref)
		n.Str = opStr
		n.A, n.B, n.C = leftRef, right, body
		return ref, nil
	}

	// Classic C-style for loop.
	var initRef ast.Ref
	if isDecl {
		var initExpr ast.Ref
		if p.current.Type == TokenAssign {
			p.advance()
			initExpr, err = p.parseAssignExpr()
			if err != nil {
				return 0, err
			}
		}
		declRef := p.arena.Alloc(ast.KindVarDeclarator, kw.Position)
		n := p.arena.Node(declRef)
		n.A, n.B = identRef, initExpr
		declarators := []ast.Ref{declRef}
		for p.current.Type == TokenComma {
			p.advance()
			d, err := p.parseVarDeclarator()
			if err != nil {
				return 0, err
			}
			declarators = append(declarators, d)
		}
		declNode := p.arena.Alloc(ast.KindVarDecl, kw.Position)
		dn := p.arena.Node(declNode)
		dn.Str = declKindStr
		dn.List = declarators
		initRef = declNode
	} else {
		initRef = leftExpr
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return 0, err
	}
	var test ast.Ref
	if p.current.Type != TokenSemicolon {
		test, err = p.parseExpression()
		if err != nil {
			return 0, err
		}
	}
	if _, err := p.expect(TokenSemicolon); err != nil {
		return 0, err
	}
	var update ast.Ref
	if p.current.Type != TokenParenClose {
		update, err = p.parseExpression()
		if err != nil {
			return 0, err
		}
	}
	if _, err := p.expect(TokenParenClose); err != nil {
		return 0, err
	}
	body, err := p.parseStatement()
	if err != nil {
		return 0, err
	}
	ref := p.arena.Alloc(ast.KindFor, kw.Position)
	n := p.arena.Node(ref)
	n.A, n.B, n.C, n.D = initRef, test, update, body
	return ref, nil
}

func (p *parser) parseReturn() (ast.Ref, error) {
	kw, err := p.expect(TokenReturn)
	if err != nil {
		return 0, err
	}
	var arg ast.Ref
	if p.current.Type != TokenSemicolon && p.current.Type != TokenBraceClose && p.current.Type != TokenEOF {
		arg, err = p.parseExpression()
		if err != nil {
			return 0, err
		}
	}
	p.acceptSemicolon()
	ref := p.arena.Alloc(ast.KindReturn, kw.Position)
	p.arena.Node(ref).A = arg
	return ref, nil
}

func (p *parser) parseThrow() (ast.Ref, error) {
	kw, err := p.expect(TokenThrow)
	if err != nil {
		return 0, err
	}
	arg, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.acceptSemicolon()
	ref := p.arena.Alloc(ast.KindThrow, kw.Position)
	p.arena.Node(ref).A = arg
	return ref, nil
}

func (p *parser) parseTry() (ast.Ref, error) {
	kw, err := p.expect(TokenTry)
	if err != nil {
		return 0, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return 0, err
	}
	var catchParam, catchBlock, finallyBlock ast.Ref
	if p.current.Type == TokenCatch {
		p.advance()
		if p.current.Type == TokenParenOpen {
			p.advance()
			idTok, err := p.expect(TokenIdentifier)
			if err != nil {
				return 0, err
			}
			catchParam = p.arena.Alloc(ast.KindIdentifier, idTok.Position)
			p.arena.Node(catchParam).Str = idTok.Value
			if _, err := p.expect(TokenParenClose); err != nil {
				return 0, err
			}
		}
		catchBlock, err = p.parseBlock()
		if err != nil {
			return 0, err
		}
	}
	if p.current.Type == TokenFinally {
		p.advance()
		finallyBlock, err = p.parseBlock()
		if err != nil {
			return 0, err
		}
	}
	if !catchBlock.Valid() && !finallyBlock.Valid() {
		return 0, p.errorf("missing catch or finally after try block")
	}
	ref := p.arena.Alloc(ast.KindTry, kw.Position)
	n := p.arena.Node(ref)
	n.A, n.B, n.C, n.D = block, catchParam, catchBlock, finallyBlock
	return ref, nil
}

func (p *parser) parseExpressionStatement() (ast.Ref, error) {
	pos := p.current.Position
	expr, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.acceptSemicolon()
	ref := p.arena.Alloc(ast.KindExprStatement, pos)
	p.arena.Node(ref).A = expr
	return ref, nil
}

// --- expressions --------------------------------------------------------

// parseExpression parses a full expression including top-level comma
// sequencing (e.g. for-loop updates, grouped expressions).
func (p *parser) parseExpression() (ast.Ref, error) {
	first, err := p.parseAssignExpr()
	if err != nil {
		return 0, err
	}
	if p.current.Type != TokenComma {
		return first, nil
	}
	pos := p.arena.Node(first).Pos
	exprs := []ast.Ref{first}
	for p.current.Type == TokenComma {
		p.advance()
		next, err := p.parseAssignExpr()
		if err != nil {
			return 0, err
		}
		exprs = append(exprs, next)
	}
	ref := p.arena.Alloc(ast.KindSequence, pos)
	p.arena.Node(ref).List = exprs
	return ref, nil
}

// parseAssignExpr parses everything below the comma operator: assignment,
// the conditional operator, and all binary/unary/postfix expressions.
func (p *parser) parseAssignExpr() (ast.Ref, error) {
	if err := p.enter(); err != nil {
		return 0, err
	}
	defer p.leave()
	return p.parseBinaryOrHigher(precAssign)
}

// parseBinaryOrHigher implements precedence climbing over binary,
// logical, coalescing, conditional and (right-associative) assignment
// operators, via a parseExpression(rbp) loop shape.
func (p *parser) parseBinaryOrHigher(minPrec int) (ast.Ref, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		tt := p.current.Type

		if assignOps[tt] && minPrec <= precAssign {
			pos := p.current.Position
			op := p.current.Value
			p.advance()
			right, err := p.parseBinaryOrHigher(precAssign)
			if err != nil {
				return 0, err
			}
			ref := p.arena.Alloc(ast.KindAssign, pos)
			n := p.arena.Node(ref)
			n.Str, n.A, n.B = op, left, right
			left = ref
			continue
		}

		if tt == TokenQuestion && minPrec <= precConditional {
			pos := p.current.Position
			p.advance()
			cons, err := p.parseBinaryOrHigher(precAssign)
			if err != nil {
				return 0, err
			}
			if _, err := p.expect(TokenColon); err != nil {
				return 0, err
			}
			alt, err := p.parseBinaryOrHigher(precConditional)
			if err != nil {
				return 0, err
			}
			ref := p.arena.Alloc(ast.KindConditional, pos)
			n := p.arena.Node(ref)
			n.A, n.B, n.C = left, cons, alt
			left = ref
			continue
		}

		if tt == TokenCoalesce && minPrec <= precCoalesce {
			left, err = p.parseLogical(left, "??", minPrec, precCoalesce)
			if err != nil {
				return 0, err
			}
			continue
		}
		if tt == TokenOrOr && minPrec <= precLogicalOr {
			left, err = p.parseLogical(left, "||", minPrec, precLogicalOr)
			if err != nil {
				return 0, err
			}
			continue
		}
		if tt == TokenAndAnd && minPrec <= precLogicalAnd {
			left, err = p.parseLogical(left, "&&", minPrec, precLogicalAnd)
			if err != nil {
				return 0, err
			}
			continue
		}

		if prec, ok := binaryPrecedence[tt]; ok && minPrec <= prec {
			pos := p.current.Position
			op := p.current.Value
			p.advance()
			nextMin := prec + 1
			if tt == TokenPow {
				nextMin = prec // ** is right-associative
			}
			right, err := p.parseBinaryOrHigher(nextMin)
			if err != nil {
				return 0, err
			}
			ref := p.arena.Alloc(ast.KindBinary, pos)
			n := p.arena.Node(ref)
			n.Str, n.A, n.B = op, left, right
			left = ref
			continue
		}

		break
	}
	return left, nil
}

func (p *parser) parseLogical(left ast.Ref, op string, minPrec, ownPrec int) (ast.Ref, error) {
	pos := p.current.Position
	p.advance()
	right, err := p.parseBinaryOrHigher(ownPrec + 1)
	if err != nil {
		return 0, err
	}
	ref := p.arena.Alloc(ast.KindLogical, pos)
	n := p.arena.Node(ref)
	n.Str, n.A, n.B = op, left, right
	return ref, nil
}

// parseUnary handles prefix operators; everything else falls through to
// parsePostfix(parsePrimary()).
func (p *parser) parseUnary() (ast.Ref, error) {
	switch p.current.Type {
	case TokenNot, TokenBitNot, TokenPlus, TokenMinus, TokenTypeof, TokenVoid, TokenDelete:
		pos := p.current.Position
		op := p.current.Value
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		ref := p.arena.Alloc(ast.KindUnary, pos)
		n := p.arena.Node(ref)
		n.Str, n.A, n.Num = op, operand, 1
		return ref, nil
	case TokenPlusPlus, TokenMinusMinus:
		pos := p.current.Position
		op := p.current.Value
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		ref := p.arena.Alloc(ast.KindUnary, pos)
		n := p.arena.Node(ref)
		n.Str, n.A, n.Num = op, operand, 1
		return ref, nil
	default:
		primary, err := p.parsePrimary()
		if err != nil {
			return 0, err
		}
		return p.parsePostfix(primary)
	}
}

// parsePostfix chains member access, computed member access, calls and
// trailing ++/-- onto an already-parsed primary expression.
func (p *parser) parsePostfix(left ast.Ref) (ast.Ref, error) {
	for {
		switch p.current.Type {
		case TokenDot:
			pos := p.current.Position
			p.advance()
			nameTok, err := p.expect(TokenIdentifier)
			if err != nil {
				return 0, err
			}
			propRef := p.arena.Alloc(ast.KindIdentifier, nameTok.Position)
			p.arena.Node(propRef).Str = nameTok.Value
			ref := p.arena.Alloc(ast.KindMember, pos)
			n := p.arena.Node(ref)
			n.A, n.B = left, propRef
			left = ref
		case TokenBracketOpen:
			pos := p.current.Position
			p.advance()
			prop, err := p.parseExpression()
			if err != nil {
				return 0, err
			}
			if _, err := p.expect(TokenBracketClose); err != nil {
				return 0, err
			}
			ref := p.arena.Alloc(ast.KindMember, pos)
			n := p.arena.Node(ref)
			n.A, n.B, n.Num = left, prop, 1
			left = ref
		case TokenParenOpen:
			args, err := p.parseArguments()
			if err != nil {
				return 0, err
			}
			ref := p.arena.Alloc(ast.KindCall, p.arena.Node(left).Pos)
			n := p.arena.Node(ref)
			n.A, n.List = left, args
			left = ref
		case TokenPlusPlus, TokenMinusMinus:
			op := p.current.Value
			pos := p.current.Position
			p.advance()
			ref := p.arena.Alloc(ast.KindUnary, pos)
			n := p.arena.Node(ref)
			n.Str, n.A, n.Num = op, left, 0 // postfix
			left = ref
		default:
			return left, nil
		}
	}
}

func (p *parser) parseArguments() ([]ast.Ref, error) {
	if _, err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}
	var args []ast.Ref
	for p.current.Type != TokenParenClose {
		arg, err := p.parseAssignExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) parsePrimary() (ast.Ref, error) {
	tok := p.current
	switch tok.Type {
	case TokenNumber:
		p.advance()
		n, err := parseNumberLiteral(tok.Value)
		if err != nil {
			return 0, p.errorf("invalid number literal %q: %v", tok.Value, err)
		}
		ref := p.arena.Alloc(ast.KindNumber, tok.Position)
		p.arena.Node(ref).Num = n
		return ref, nil
	case TokenString:
		p.advance()
		ref := p.arena.Alloc(ast.KindString, tok.Position)
		p.arena.Node(ref).Str = tok.Value
		return ref, nil
	case TokenBoolean:
		p.advance()
		ref := p.arena.Alloc(ast.KindBoolean, tok.Position)
		if tok.Value == "true" {
			p.arena.Node(ref).Num = 1
		}
		return ref, nil
	case TokenNull:
		p.advance()
		return p.arena.Alloc(ast.KindNull, tok.Position), nil
	case TokenUndefined:
		p.advance()
		return p.arena.Alloc(ast.KindUndefined, tok.Position), nil
	case TokenThis:
		p.advance()
		return p.arena.Alloc(ast.KindThis, tok.Position), nil
	case TokenIdentifier:
		p.advance()
		ref := p.arena.Alloc(ast.KindIdentifier, tok.Position)
		p.arena.Node(ref).Str = tok.Value
		return ref, nil
	case TokenRegex:
		p.advance()
		ref := p.arena.Alloc(ast.KindRegexp, tok.Position)
		p.arena.Node(ref).Str = tok.Value
		return ref, nil
	case TokenBracketOpen:
		return p.parseArrayLiteral()
	case TokenBraceOpen:
		return p.parseObjectLiteral()
	case TokenParenOpen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		if _, err := p.expect(TokenParenClose); err != nil {
			return 0, err
		}
		return expr, nil
	case TokenFunction:
		return p.parseFunctionExpr()
	case TokenNew:
		return p.parseNewExpr()
	default:
		return 0, p.errorf("unexpected token %q", tok.Value)
	}
}

func (p *parser) parseNewExpr() (ast.Ref, error) {
	kw, err := p.expect(TokenNew)
	if err != nil {
		return 0, err
	}
	callee, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	// Member access binds tighter than the call parens that belong to `new`.
	for p.current.Type == TokenDot || p.current.Type == TokenBracketOpen {
		callee, err = p.parseMemberStep(callee)
		if err != nil {
			return 0, err
		}
	}
	var args []ast.Ref
	if p.current.Type == TokenParenOpen {
		args, err = p.parseArguments()
		if err != nil {
			return 0, err
		}
	}
	ref := p.arena.Alloc(ast.KindNew, kw.Position)
	n := p.arena.Node(ref)
	n.A, n.List = callee, args
	return p.parsePostfix(ref)
}

func (p *parser) parseMemberStep(left ast.Ref) (ast.Ref, error) {
	if p.current.Type == TokenDot {
		pos := p.current.Position
		p.advance()
		nameTok, err := p.expect(TokenIdentifier)
		if err != nil {
			return 0, err
		}
		propRef := p.arena.Alloc(ast.KindIdentifier, nameTok.Position)
		p.arena.Node(propRef).Str = nameTok.Value
		ref := p.arena.Alloc(ast.KindMember, pos)
		n := p.arena.Node(ref)
		n.A, n.B = left, propRef
		return ref, nil
	}
	pos := p.current.Position
	p.advance()
	prop, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(TokenBracketClose); err != nil {
		return 0, err
	}
	ref := p.arena.Alloc(ast.KindMember, pos)
	n := p.arena.Node(ref)
	n.A, n.B, n.Num = left, prop, 1
	return ref, nil
}

func (p *parser) parseArrayLiteral() (ast.Ref, error) {
	open, err := p.expect(TokenBracketOpen)
	if err != nil {
		return 0, err
	}
	var elems []ast.Ref
	for p.current.Type != TokenBracketClose {
		el, err := p.parseAssignExpr()
		if err != nil {
			return 0, err
		}
		elems = append(elems, el)
		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenBracketClose); err != nil {
		return 0, err
	}
	ref := p.arena.Alloc(ast.KindArray, open.Position)
	p.arena.Node(ref).List = elems
	return ref, nil
}

func (p *parser) parseObjectLiteral() (ast.Ref, error) {
	open, err := p.expect(TokenBraceOpen)
	if err != nil {
		return 0, err
	}
	var props []ast.Ref
	for p.current.Type != TokenBraceClose {
		propRef, err := p.parseObjectProperty()
		if err != nil {
			return 0, err
		}
		props = append(props, propRef)
		if p.current.Type == TokenComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(TokenBraceClose); err != nil {
		return 0, err
	}
	ref := p.arena.Alloc(ast.KindObject, open.Position)
	p.arena.Node(ref).List = props
	return ref, nil
}

func (p *parser) parseObjectProperty() (ast.Ref, error) {
	pos := p.current.Position
	var keyRef ast.Ref
	var computed bool

	switch p.current.Type {
	case TokenBracketOpen:
		p.advance()
		expr, err := p.parseAssignExpr()
		if err != nil {
			return 0, err
		}
		if _, err := p.expect(TokenBracketClose); err != nil {
			return 0, err
		}
		keyRef = expr
		computed = true
	case TokenString:
		keyRef = p.arena.Alloc(ast.KindString, p.current.Position)
		p.arena.Node(keyRef).Str = p.current.Value
		p.advance()
	case TokenNumber:
		n, err := parseNumberLiteral(p.current.Value)
		if err != nil {
			return 0, p.errorf("invalid number literal %q: %v", p.current.Value, err)
		}
		keyRef = p.arena.Alloc(ast.KindString, p.current.Position)
		p.arena.Node(keyRef).Str = strconv.FormatFloat(n, 'g', -1, 64)
		p.advance()
	default:
		// Any identifier-shaped token, including reserved words, is a
		// valid object key in JS.
		keyRef = p.arena.Alloc(ast.KindString, p.current.Position)
		p.arena.Node(keyRef).Str = p.current.Value
		p.advance()
	}

	if _, err := p.expect(TokenColon); err != nil {
		return 0, err
	}
	valueRef, err := p.parseAssignExpr()
	if err != nil {
		return 0, err
	}

	ref := p.arena.Alloc(ast.KindProperty, pos)
	n := p.arena.Node(ref)
	n.A, n.B = keyRef, valueRef
	if computed {
		n.Num = 1
	}
	return ref, nil
}

// parseNumberLiteral converts a scanned number token (decimal, scientific,
// or 0x/0o/0b) into a float64.
func parseNumberLiteral(s string) (float64, error) {
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "0x"):
		v, err := strconv.ParseUint(lower[2:], 16, 64)
		return float64(v), err
	case strings.HasPrefix(lower, "0o"):
		v, err := strconv.ParseUint(lower[2:], 8, 64)
		return float64(v), err
	case strings.HasPrefix(lower, "0b"):
		v, err := strconv.ParseUint(lower[2:], 2, 64)
		return float64(v), err
	default:
		return strconv.ParseFloat(s, 64)
	}
}
