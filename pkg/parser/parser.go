// Package parser implements a recursive-descent parser for MinC.
package parser

import (
	"fmt"

	"github.com/bspt628/minc-aarch64/pkg/ast"
	"github.com/bspt628/minc-aarch64/pkg/lexer"
)

// Parser parses MinC source code into an ast.Program.
type Parser struct {
	l         *lexer.Lexer
	curToken  lexer.Token
	peekToken lexer.Token
	errors    []string
}

// New creates a new Parser for the given lexer.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	// Read two tokens to initialize curToken and peekToken.
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

// Errors returns the list of parse errors accumulated so far.
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, fmt.Sprintf("line %d, col %d: %s",
		p.curToken.Line, p.curToken.Column, msg))
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.peekToken.Type))
	return false
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf("expected %s, got %s", t, p.curToken.Type))
	return false
}

// ParseProgram parses a full translation unit: a sequence of function
// definitions.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}

	for !p.curTokenIs(lexer.TokenEOF) {
		def := p.parseDefFun()
		if def != nil {
			prog.Defs = append(prog.Defs, def)
		} else if !p.curTokenIs(lexer.TokenEOF) {
			// Resynchronize past the offending token so one bad
			// definition doesn't cascade into every later one.
			p.nextToken()
		}
	}

	return prog
}

// parseDefFun parses `long name(params) { body }`.
func (p *Parser) parseDefFun() *ast.DefFun {
	if !p.curTokenIs(lexer.TokenLong) {
		p.addError(fmt.Sprintf("expected 'long', got %s", p.curToken.Type))
		return nil
	}
	line := p.curToken.Line
	p.nextToken()

	if !p.curTokenIs(lexer.TokenIdent) {
		p.addError(fmt.Sprintf("expected function name, got %s", p.curToken.Type))
		return nil
	}
	name := p.curToken.Literal
	p.nextToken()

	if !p.expect(lexer.TokenLParen) {
		return nil
	}
	params := p.parseParams()
	if !p.expect(lexer.TokenRParen) {
		return nil
	}

	if !p.curTokenIs(lexer.TokenLBrace) {
		p.addError(fmt.Sprintf("expected '{', got %s", p.curToken.Type))
		return nil
	}
	body := p.parseCompound()
	if body == nil {
		return nil
	}

	return &ast.DefFun{Name: name, Params: params, Body: body, Line: line}
}

func (p *Parser) parseParams() []ast.Param {
	var params []ast.Param
	if p.curTokenIs(lexer.TokenRParen) {
		return params
	}

	for {
		if !p.curTokenIs(lexer.TokenLong) {
			p.addError(fmt.Sprintf("expected parameter type 'long', got %s", p.curToken.Type))
			return params
		}
		p.nextToken()

		if !p.curTokenIs(lexer.TokenIdent) {
			p.addError(fmt.Sprintf("expected parameter name, got %s", p.curToken.Type))
			return params
		}
		params = append(params, ast.Param{Name: p.curToken.Literal, Line: p.curToken.Line})
		p.nextToken()

		if !p.curTokenIs(lexer.TokenComma) {
			break
		}
		p.nextToken()
	}
	return params
}

// parseCompound parses `{ decls stmts }`. The current token must be '{'.
func (p *Parser) parseCompound() *ast.StmtCompound {
	line := p.curToken.Line
	p.nextToken() // consume '{'

	compound := &ast.StmtCompound{Line: line}

	for p.curTokenIs(lexer.TokenLong) {
		p.nextToken()
		if !p.curTokenIs(lexer.TokenIdent) {
			p.addError(fmt.Sprintf("expected variable name, got %s", p.curToken.Type))
			return nil
		}
		compound.Decls = append(compound.Decls, ast.Decl{Name: p.curToken.Literal, Line: p.curToken.Line})
		p.nextToken()
		if !p.expect(lexer.TokenSemicolon) {
			return nil
		}
	}

	for !p.curTokenIs(lexer.TokenRBrace) && !p.curTokenIs(lexer.TokenEOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			compound.Stmts = append(compound.Stmts, stmt)
		}
	}

	if !p.expect(lexer.TokenRBrace) {
		return nil
	}
	return compound
}

func (p *Parser) parseStatement() ast.Stmt {
	switch p.curToken.Type {
	case lexer.TokenSemicolon:
		line := p.curToken.Line
		p.nextToken()
		return &ast.StmtEmpty{Line: line}
	case lexer.TokenContinue:
		line := p.curToken.Line
		p.nextToken()
		if !p.expect(lexer.TokenSemicolon) {
			return nil
		}
		return &ast.StmtContinue{Line: line}
	case lexer.TokenBreak:
		line := p.curToken.Line
		p.nextToken()
		if !p.expect(lexer.TokenSemicolon) {
			return nil
		}
		return &ast.StmtBreak{Line: line}
	case lexer.TokenReturn:
		return p.parseReturnStatement()
	case lexer.TokenLBrace:
		return p.parseCompound()
	case lexer.TokenIf:
		return p.parseIfStatement()
	case lexer.TokenWhile:
		return p.parseWhileStatement()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseReturnStatement() ast.Stmt {
	line := p.curToken.Line
	p.nextToken() // consume 'return'

	var expr ast.Expr
	if !p.curTokenIs(lexer.TokenSemicolon) {
		expr = p.parseExpression(precLowest)
	}

	if !p.expect(lexer.TokenSemicolon) {
		return nil
	}
	return &ast.StmtReturn{Expr: expr, Line: line}
}

func (p *Parser) parseExprStatement() ast.Stmt {
	line := p.curToken.Line
	expr := p.parseExpression(precLowest)
	if expr == nil {
		return nil
	}
	if !p.expect(lexer.TokenSemicolon) {
		return nil
	}
	return &ast.StmtExpr{Expr: expr, Line: line}
}

func (p *Parser) parseIfStatement() ast.Stmt {
	line := p.curToken.Line
	p.nextToken() // consume 'if'

	if !p.expect(lexer.TokenLParen) {
		return nil
	}
	cond := p.parseExpression(precLowest)
	if !p.expect(lexer.TokenRParen) {
		return nil
	}

	then := p.parseStatement()
	if then == nil {
		return nil
	}

	var els ast.Stmt
	if p.curTokenIs(lexer.TokenElse) {
		p.nextToken()
		els = p.parseStatement()
		if els == nil {
			return nil
		}
	}

	return &ast.StmtIf{Cond: cond, Then: then, Else: els, Line: line}
}

func (p *Parser) parseWhileStatement() ast.Stmt {
	line := p.curToken.Line
	p.nextToken() // consume 'while'

	if !p.expect(lexer.TokenLParen) {
		return nil
	}
	cond := p.parseExpression(precLowest)
	if !p.expect(lexer.TokenRParen) {
		return nil
	}

	body := p.parseStatement()
	if body == nil {
		return nil
	}

	return &ast.StmtWhile{Cond: cond, Body: body, Line: line}
}

// Operator precedence, lowest to highest: assignment, ||, &&, equality,
// relational, additive, multiplicative, unary, primary.
type precedence int

const (
	precLowest precedence = iota
	precAssign
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
)

func binOpFor(t lexer.TokenType) (ast.BinaryOp, bool) {
	switch t {
	case lexer.TokenPlus:
		return ast.OpAdd, true
	case lexer.TokenMinus:
		return ast.OpSub, true
	case lexer.TokenStar:
		return ast.OpMul, true
	case lexer.TokenSlash:
		return ast.OpDiv, true
	case lexer.TokenPercent:
		return ast.OpMod, true
	case lexer.TokenEq:
		return ast.OpEq, true
	case lexer.TokenNe:
		return ast.OpNe, true
	case lexer.TokenLt:
		return ast.OpLt, true
	case lexer.TokenLe:
		return ast.OpLe, true
	case lexer.TokenGt:
		return ast.OpGt, true
	case lexer.TokenGe:
		return ast.OpGe, true
	case lexer.TokenAnd:
		return ast.OpAnd, true
	case lexer.TokenOr:
		return ast.OpOr, true
	default:
		return 0, false
	}
}

func precedenceOf(t lexer.TokenType) precedence {
	switch t {
	case lexer.TokenOr:
		return precOr
	case lexer.TokenAnd:
		return precAnd
	case lexer.TokenEq, lexer.TokenNe:
		return precEquality
	case lexer.TokenLt, lexer.TokenLe, lexer.TokenGt, lexer.TokenGe:
		return precRelational
	case lexer.TokenPlus, lexer.TokenMinus:
		return precAdditive
	case lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent:
		return precMultiplicative
	default:
		return precLowest
	}
}

// parseExpression implements precedence-climbing: it parses a unary
// expression then repeatedly folds in binary operators whose precedence is
// at least minPrec. Assignment is handled first: an identifier followed by
// '=' is recognized by one-token lookahead before any primary is parsed,
// and the right-hand side is parsed at the lowest precedence.
func (p *Parser) parseExpression(minPrec precedence) ast.Expr {
	if p.curTokenIs(lexer.TokenIdent) && p.peekTokenIs(lexer.TokenAssign) {
		name := p.curToken.Literal
		line := p.curToken.Line
		p.nextToken() // consume ident
		p.nextToken() // consume '='
		rhs := p.parseExpression(precLowest)
		if rhs == nil {
			return nil
		}
		return &ast.ExprAssign{Name: name, RHS: rhs, Line: line}
	}

	left := p.parseUnary()
	if left == nil {
		return nil
	}

	for {
		op, ok := binOpFor(p.curToken.Type)
		if !ok {
			break
		}
		prec := precedenceOf(p.curToken.Type)
		if prec < minPrec {
			break
		}
		line := p.curToken.Line
		p.nextToken()
		// All of MinC's binary operators are left-associative, so the
		// right operand is parsed at one precedence level higher.
		right := p.parseExpression(prec + 1)
		if right == nil {
			return nil
		}
		left = &ast.ExprBinary{Op: op, Left: left, Right: right, Line: line}
	}

	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.curToken.Type {
	case lexer.TokenMinus:
		line := p.curToken.Line
		p.nextToken()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.ExprUnary{Op: ast.OpNeg, Operand: operand, Line: line}
	case lexer.TokenNot:
		line := p.curToken.Line
		p.nextToken()
		operand := p.parseUnary()
		if operand == nil {
			return nil
		}
		return &ast.ExprUnary{Op: ast.OpNot, Operand: operand, Line: line}
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	switch p.curToken.Type {
	case lexer.TokenInt:
		lit := p.curToken.Literal
		line := p.curToken.Line
		p.nextToken()
		var value int64
		fmt.Sscanf(lit, "%d", &value)
		return &ast.ExprIntLiteral{Value: value, Line: line}
	case lexer.TokenIdent:
		name := p.curToken.Literal
		line := p.curToken.Line
		p.nextToken()
		if p.curTokenIs(lexer.TokenLParen) {
			return p.parseCallArgs(name, line)
		}
		return &ast.ExprId{Name: name, Line: line}
	case lexer.TokenLParen:
		p.nextToken()
		expr := p.parseExpression(precLowest)
		if !p.expect(lexer.TokenRParen) {
			return nil
		}
		return expr
	default:
		p.addError(fmt.Sprintf("expected expression, got %s", p.curToken.Type))
		return nil
	}
}

func (p *Parser) parseCallArgs(callee string, line int) ast.Expr {
	p.nextToken() // consume '('

	var args []ast.Expr
	if !p.curTokenIs(lexer.TokenRParen) {
		for {
			arg := p.parseExpression(precLowest)
			if arg == nil {
				return nil
			}
			args = append(args, arg)
			if !p.curTokenIs(lexer.TokenComma) {
				break
			}
			p.nextToken()
		}
	}

	if !p.expect(lexer.TokenRParen) {
		return nil
	}
	return &ast.ExprCall{Callee: callee, Args: args, Line: line}
}
