package parser

import (
	"strconv"

	"github.com/lumabrowser/script-engine/errors"
)

// Parser consumes tokens from a Lexer and produces a Program. The first
// unrecoverable token aborts the parse with a syntax error.
type Parser struct {
	lex *Lexer
	cur Token
	err *errors.Error
}

// Parse parses a complete source buffer into a Program.
func Parse(src []byte) (*Program, error) {
	p := newParser(src)
	prog := &Program{}
	for p.cur.Type != TokenEOF {
		stmt := p.parseStatement()
		if p.err != nil {
			return nil, p.err
		}
		prog.Body = append(prog.Body, stmt)
	}
	return prog, nil
}

func newParser(src []byte) *Parser {
	p := &Parser{lex: NewLexer(src)}
	p.cur = p.lex.Next()
	return p
}

func (p *Parser) next() {
	p.cur = p.lex.Next()
}

func (p *Parser) fail(tok Token, detail string, args ...any) {
	if p.err == nil {
		p.err = errors.Syntax(tok.Pos.Line, tok.Pos.Col, detail, args...)
	}
}

// expect consumes the current token if it has the wanted type, otherwise
// records a syntax error.
func (p *Parser) expect(t TokenType, what string) Token {
	tok := p.cur
	if tok.Type != t {
		p.fail(tok, "expected %s, got %q", what, describe(tok))
		return tok
	}
	p.next()
	return tok
}

func (p *Parser) parseStatement() Stmt {
	switch p.cur.Type {
	case TokenFunction:
		return p.parseFunctionDeclaration()
	case TokenReturn:
		return p.parseReturnStatement()
	case TokenIllegal:
		p.fail(p.cur, "%s", p.cur.Literal)
		return nil
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseFunctionDeclaration() Stmt {
	decl := &FunctionDeclaration{Position: p.cur.Pos}
	p.next() // function

	name := p.expect(TokenIdent, "function name")
	if p.err != nil {
		return nil
	}
	decl.Name = name.Literal

	p.expect(TokenLParen, "'('")
	for p.err == nil && p.cur.Type != TokenRParen {
		param := p.expect(TokenIdent, "parameter name")
		if p.err != nil {
			return nil
		}
		decl.Params = append(decl.Params, param.Literal)
		if p.cur.Type == TokenComma {
			p.next()
		} else if p.cur.Type != TokenRParen {
			p.fail(p.cur, "expected ',' or ')' in parameter list, got %q", describe(p.cur))
			return nil
		}
	}
	p.expect(TokenRParen, "')'")
	p.expect(TokenLBrace, "'{'")
	for p.err == nil && p.cur.Type != TokenRBrace && p.cur.Type != TokenEOF {
		stmt := p.parseStatement()
		if p.err != nil {
			return nil
		}
		decl.Body = append(decl.Body, stmt)
	}
	p.expect(TokenRBrace, "'}'")
	if p.err != nil {
		return nil
	}
	return decl
}

func (p *Parser) parseReturnStatement() Stmt {
	ret := &ReturnStatement{Position: p.cur.Pos}
	p.next() // return

	if p.cur.Type != TokenSemicolon && p.cur.Type != TokenRBrace && p.cur.Type != TokenEOF {
		ret.Argument = p.parseExpression()
		if p.err != nil {
			return nil
		}
	}
	p.consumeSemicolon()
	return ret
}

func (p *Parser) parseExpressionStatement() Stmt {
	stmt := &ExpressionStatement{Position: p.cur.Pos}
	stmt.Expression = p.parseExpression()
	if p.err != nil {
		return nil
	}
	p.consumeSemicolon()
	return stmt
}

func (p *Parser) consumeSemicolon() {
	if p.cur.Type == TokenSemicolon {
		p.next()
	}
}

// parseExpression parses a flat binary chain. Every operator shares one
// precedence level and associates left to right.
func (p *Parser) parseExpression() Expr {
	left := p.parseCall()
	for p.err == nil && isOperator(p.cur.Type) {
		op := p.cur
		p.next()
		right := p.parseCall()
		if p.err != nil {
			return nil
		}
		left = &BinaryExpression{
			Operator: op.Literal,
			Left:     left,
			Right:    right,
			Position: op.Pos,
		}
	}
	return left
}

// parseCall parses a primary expression and any chained call suffixes.
func (p *Parser) parseCall() Expr {
	expr := p.parsePrimary()
	for p.err == nil && p.cur.Type == TokenLParen {
		call := &CallExpression{Callee: expr, Position: p.cur.Pos}
		p.next() // (
		for p.err == nil && p.cur.Type != TokenRParen {
			arg := p.parseExpression()
			if p.err != nil {
				return nil
			}
			call.Arguments = append(call.Arguments, arg)
			if p.cur.Type == TokenComma {
				p.next()
			} else if p.cur.Type != TokenRParen {
				p.fail(p.cur, "expected ',' or ')' in argument list, got %q", describe(p.cur))
				return nil
			}
		}
		p.expect(TokenRParen, "')'")
		expr = call
	}
	return expr
}

func (p *Parser) parsePrimary() Expr {
	tok := p.cur
	switch tok.Type {
	case TokenNumber:
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.fail(tok, "invalid number literal %q", tok.Literal)
			return nil
		}
		p.next()
		return &Literal{Kind: LiteralNumber, Number: f, Position: tok.Pos}
	case TokenString:
		p.next()
		return &Literal{Kind: LiteralString, Str: tok.Literal, Position: tok.Pos}
	case TokenIdent:
		p.next()
		return &Identifier{Name: tok.Literal, Position: tok.Pos}
	case TokenLParen:
		p.next()
		inner := p.parseExpression()
		if p.err != nil {
			return nil
		}
		p.expect(TokenRParen, "')'")
		return inner
	case TokenIllegal:
		p.fail(tok, "%s", tok.Literal)
		return nil
	default:
		p.fail(tok, "unexpected token %q", describe(tok))
		return nil
	}
}

func isOperator(t TokenType) bool {
	switch t {
	case TokenPlus, TokenMinus, TokenStar, TokenSlash,
		TokenEq, TokenNotEq, TokenLess, TokenGreater:
		return true
	}
	return false
}

func describe(tok Token) string {
	if tok.Type == TokenEOF {
		return "end of input"
	}
	return tok.Literal
}
