package query

import (
	"strings"
	"unicode"
)

// Token represents a lexical token
type Token struct {
	Kind  TokenKind
	Field string // TokField: field name; TokQuick: the sigil
	Value string
	Pos   int
}

// TokenKind is the type of token
type TokenKind int

const (
	TokWord TokenKind = iota
	TokString
	TokField
	TokQuick
	TokMinus
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokWord:
		return "Word"
	case TokString:
		return "String"
	case TokField:
		return "Field"
	case TokQuick:
		return "Quick"
	case TokMinus:
		return "Minus"
	case TokEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// Lexer tokenizes a search string. It never fails: anything it cannot
// classify becomes a word.
type Lexer struct {
	input []rune
	pos   int
}

// NewLexer creates a new lexer for the input string
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: []rune(input),
		pos:   0,
	}
}

// Lex tokenizes the entire input
func Lex(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token
	for {
		tok := lexer.Next()
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	return tokens
}

// Next returns the next token
func (l *Lexer) Next() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Kind: TokEOF, Pos: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch {
	case ch == '"':
		return Token{Kind: TokString, Value: l.scanString(), Pos: start}
	case ch == '-' && l.attached(1) && l.peek(1) != '-':
		l.pos++
		return Token{Kind: TokMinus, Pos: start}
	case isSigil(ch):
		l.pos++
		return Token{Kind: TokQuick, Field: string(ch), Value: l.scanValue(), Pos: start}
	case isWordChar(ch):
		if name, ok := l.scanFieldName(); ok {
			return Token{Kind: TokField, Field: name, Value: l.scanValue(), Pos: start}
		}
	}

	return Token{Kind: TokWord, Value: l.scanWord(), Pos: start}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos < len(l.input) {
		return l.input[pos]
	}
	return 0
}

// attached reports whether a non-space rune sits at pos+offset.
func (l *Lexer) attached(offset int) bool {
	pos := l.pos + offset
	return pos < len(l.input) && !unicode.IsSpace(l.input[pos])
}

// scanString consumes a quoted phrase. A missing closing quote takes the rest
// of the input literally.
func (l *Lexer) scanString() string {
	l.pos++ // consume opening quote
	var sb strings.Builder

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '"' {
			l.pos++
			return sb.String()
		}
		if ch == '\\' && (l.peek(1) == '"' || l.peek(1) == '\\') {
			sb.WriteRune(l.peek(1))
			l.pos += 2
			continue
		}
		sb.WriteRune(ch)
		l.pos++
	}
	return sb.String()
}

// scanValue consumes the phrase after a field colon or sigil: a quoted
// phrase, a bare run of non-space runes, or nothing.
func (l *Lexer) scanValue() string {
	if l.pos >= len(l.input) || unicode.IsSpace(l.input[l.pos]) {
		return ""
	}
	if l.input[l.pos] == '"' {
		return l.scanString()
	}
	return l.scanWord()
}

func (l *Lexer) scanWord() string {
	start := l.pos
	for l.pos < len(l.input) && !unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
	return string(l.input[start:l.pos])
}

// scanFieldName consumes `name:` when the word characters at pos are
// directly followed by a colon. The position is left untouched otherwise.
func (l *Lexer) scanFieldName() (string, bool) {
	end := l.pos
	for end < len(l.input) && isWordChar(l.input[end]) {
		end++
	}
	if end >= len(l.input) || l.input[end] != ':' {
		return "", false
	}
	name := string(l.input[l.pos:end])
	l.pos = end + 1
	return name, true
}

func isSigil(ch rune) bool {
	return ch == '@' || ch == '#' || ch == '!'
}

func isWordChar(ch rune) bool {
	return ch == '_' || (ch < unicode.MaxASCII && (unicode.IsLetter(ch) || unicode.IsDigit(ch)))
}
