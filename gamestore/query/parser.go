package query

// quickFields maps quick-search sigils to the field they filter on.
var quickFields = map[string]string{
	"@": "developer",
	"#": "tags",
	"!": "platform",
}

// Parse turns a search string into a ParsedQuery. It never fails; fragments
// that do not fit the grammar become title phrases and empty phrases are
// dropped.
func Parse(input string) ParsedQuery {
	p := &parser{tokens: Lex(input)}
	return p.parse()
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) current() Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return Token{Kind: TokEOF}
}

func (p *parser) advance() Token {
	tok := p.current()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *parser) match(kind TokenKind) bool {
	if p.current().Kind == kind {
		p.advance()
		return true
	}
	return false
}

func (p *parser) parse() ParsedQuery {
	var q ParsedQuery
	for p.current().Kind != TokEOF {
		inverse := p.match(TokMinus)
		tok := p.advance()

		switch tok.Kind {
		case TokString, TokWord:
			if tok.Value == "" {
				continue
			}
			q.TitleFilters = append(q.TitleFilters, TitleFilter{Phrase: tok.Value, Inverse: inverse})
		case TokField:
			if tok.Value == "" {
				continue
			}
			q.FieldFilters = append(q.FieldFilters, FieldFilter{Field: tok.Field, Phrase: tok.Value, Inverse: inverse})
		case TokQuick:
			if tok.Value == "" {
				continue
			}
			q.FieldFilters = append(q.FieldFilters, FieldFilter{Field: quickFields[tok.Field], Phrase: tok.Value, Inverse: inverse})
		case TokEOF:
			// a minus is only emitted when something follows it
			return q
		}
	}
	return q
}
