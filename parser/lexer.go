package parser

import "strings"

// TokenType identifies a lexical token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenIdent
	TokenNumber
	TokenString

	TokenFunction
	TokenReturn

	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenEq
	TokenNotEq
	TokenLess
	TokenGreater

	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenComma
	TokenSemicolon
)

// Token is a lexical token with its source position.
type Token struct {
	Literal string
	Type    TokenType
	Pos     Position
}

// Lexer scans source bytes into tokens with one character of lookahead.
type Lexer struct {
	src  string
	pos  int // current character
	next int // one past current
	ch   byte
	line int
	col  int
}

// NewLexer creates a lexer over the given source.
func NewLexer(src []byte) *Lexer {
	l := &Lexer{src: string(src), line: 1, col: 0}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	if l.next >= len(l.src) {
		l.ch = 0
	} else {
		l.ch = l.src[l.next]
	}
	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	l.pos = l.next
	l.next++
}

func (l *Lexer) peek() byte {
	if l.next >= len(l.src) {
		return 0
	}
	return l.src[l.next]
}

// Next scans and returns the next token.
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	pos := Position{Line: l.line, Col: l.col}

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Pos: pos}
	case isLetter(l.ch):
		word := l.readWord()
		switch word {
		case "function":
			return Token{Type: TokenFunction, Literal: word, Pos: pos}
		case "return":
			return Token{Type: TokenReturn, Literal: word, Pos: pos}
		default:
			return Token{Type: TokenIdent, Literal: word, Pos: pos}
		}
	case isDigit(l.ch):
		return Token{Type: TokenNumber, Literal: l.readNumber(), Pos: pos}
	case l.ch == '"' || l.ch == '\'':
		lit, ok := l.readString(l.ch)
		if !ok {
			return Token{Type: TokenIllegal, Literal: "unterminated string literal", Pos: pos}
		}
		return Token{Type: TokenString, Literal: lit, Pos: pos}
	}

	tok := Token{Literal: string(l.ch), Pos: pos}
	switch l.ch {
	case '+':
		tok.Type = TokenPlus
	case '-':
		tok.Type = TokenMinus
	case '*':
		tok.Type = TokenStar
	case '/':
		tok.Type = TokenSlash
	case '<':
		tok.Type = TokenLess
	case '>':
		tok.Type = TokenGreater
	case '=':
		if l.peek() == '=' {
			l.advance()
			tok.Type = TokenEq
			tok.Literal = "=="
		} else {
			tok.Type = TokenIllegal
			tok.Literal = "unexpected character '='"
		}
	case '!':
		if l.peek() == '=' {
			l.advance()
			tok.Type = TokenNotEq
			tok.Literal = "!="
		} else {
			tok.Type = TokenIllegal
			tok.Literal = "unexpected character '!'"
		}
	case '(':
		tok.Type = TokenLParen
	case ')':
		tok.Type = TokenRParen
	case '{':
		tok.Type = TokenLBrace
	case '}':
		tok.Type = TokenRBrace
	case ',':
		tok.Type = TokenComma
	case ';':
		tok.Type = TokenSemicolon
	default:
		tok.Type = TokenIllegal
		tok.Literal = "unexpected character " + quoteByte(l.ch)
	}
	l.advance()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.advance()
	}
}

func (l *Lexer) readWord() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.advance()
	}
	return l.src[start:l.pos]
}

// readNumber scans a decimal literal with an optional fraction. Hex, octal
// and exponent forms are outside the sampled grammar.
func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) {
		l.advance()
	}
	if l.ch == '.' && isDigit(l.peek()) {
		l.advance()
		for isDigit(l.ch) {
			l.advance()
		}
	}
	return l.src[start:l.pos]
}

// readString scans a quoted literal. A backslash consumes two characters;
// the common escapes are decoded, anything else passes through verbatim.
func (l *Lexer) readString(quote byte) (string, bool) {
	var b strings.Builder
	l.advance() // opening quote
	for l.ch != quote {
		if l.ch == 0 || l.ch == '\n' {
			return "", false
		}
		if l.ch == '\\' {
			l.advance()
			if l.ch == 0 {
				return "", false
			}
			switch l.ch {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '"', '\'':
				b.WriteByte(l.ch)
			default:
				b.WriteByte('\\')
				b.WriteByte(l.ch)
			}
			l.advance()
			continue
		}
		b.WriteByte(l.ch)
		l.advance()
	}
	l.advance() // closing quote
	return b.String(), true
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || ch == '$'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func quoteByte(ch byte) string {
	return "'" + string(ch) + "'"
}
