package query

import "strings"

// TitleFilter matches a phrase against the title-like fields of a game.
type TitleFilter struct {
	Phrase  string `json:"phrase"`
	Inverse bool   `json:"inverse,omitempty"`
}

// FieldFilter matches a phrase against one named field. Field is kept as the
// user typed it; aliases are resolved when compiling.
type FieldFilter struct {
	Field   string `json:"field"`
	Phrase  string `json:"phrase"`
	Inverse bool   `json:"inverse,omitempty"`
}

// ParsedQuery is the structured form of a search string.
type ParsedQuery struct {
	TitleFilters []TitleFilter `json:"titleFilters,omitempty"`
	FieldFilters []FieldFilter `json:"fieldFilters,omitempty"`
}

// Empty reports whether the query constrains nothing.
func (q ParsedQuery) Empty() bool {
	return len(q.TitleFilters) == 0 && len(q.FieldFilters) == 0
}

// String renders q in canonical query syntax. Parse(q.String()) is equal to q.
func (q ParsedQuery) String() string {
	var parts []string
	for _, tf := range q.TitleFilters {
		parts = append(parts, negate(tf.Inverse)+quote(tf.Phrase))
	}
	for _, ff := range q.FieldFilters {
		parts = append(parts, negate(ff.Inverse)+ff.Field+":"+quote(ff.Phrase))
	}
	return strings.Join(parts, " ")
}

func negate(inverse bool) string {
	if inverse {
		return "-"
	}
	return ""
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + quoteEscaper.Replace(s) + `"`
}
