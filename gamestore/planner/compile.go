package planner

import (
	"fmt"
	"strings"

	"github.com/nonibytes/gamestore/gamestore/filter"
	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/storage"
)

// CompileOutput is the store-native form of a filter.
type CompileOutput struct {
	Where        string
	ExplainSteps []string
}

// Compiler turns filter clauses into a WHERE expression over `game g`.
type Compiler struct {
	builder      storage.Builder
	explainSteps []string
}

// CompileWhere compiles every clause of f. Placeholders are allocated from
// builder in textual order.
func CompileWhere(builder storage.Builder, f *filter.Filter) (*CompileOutput, error) {
	c := &Compiler{builder: builder}
	var parts []string
	for _, cl := range f.Clauses() {
		sql, err := c.compileClause(cl)
		if err != nil {
			return nil, err
		}
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
	}
	where := "1=1"
	if len(parts) > 0 {
		where = strings.Join(parts, " AND ")
	}
	return &CompileOutput{Where: where, ExplainSteps: c.explainSteps}, nil
}

func (c *Compiler) explain(cl filter.Clause, sql string) {
	c.explainSteps = append(c.explainSteps, fmt.Sprintf("%s: %s", cl, sql))
}

func (c *Compiler) compileClause(cl filter.Clause) (string, error) {
	var sql string
	switch e := cl.(type) {
	case filter.TitleClause:
		sql = c.like(filter.TitleFields, e.Phrase)
		if e.Inverse {
			sql = "NOT " + sql
		}

	case filter.FieldClause:
		if e.Field.Kind == game.KindTags {
			sql = fmt.Sprintf(
				"EXISTS (SELECT 1 FROM game_value v WHERE v.game_id = g.id AND v.field = %s AND v.value LIKE %s ESCAPE '\\')",
				c.builder.Arg(e.Field.Name), c.builder.Arg(likePattern(e.Phrase)),
			)
		} else {
			sql = c.like([]string{e.Field.Name}, e.Phrase)
		}
		if e.Inverse {
			sql = "NOT " + sql
		}

	case filter.PresenceClause:
		col := "g." + e.Field.Column
		switch {
		case e.Field.Kind == game.KindBool && e.Present:
			sql = col + " = 1"
		case e.Field.Kind == game.KindBool:
			sql = col + " = 0"
		case e.Present:
			sql = col + " <> ''"
		default:
			sql = col + " = ''"
		}

	case filter.BoolClause:
		v := 0
		if e.Value {
			v = 1
		}
		sql = fmt.Sprintf("g.%s = %s", e.Field.Column, c.builder.Arg(v))

	case filter.ValueSetClause:
		sql = c.compileValueSet(e)

	case filter.ChildClause:
		sql = "g.parent_game_id = ''"

	case filter.PlaylistClause:
		// membership comes from the playlist join
		c.explain(cl, "JOIN playlist")
		return "", nil

	default:
		return "", fmt.Errorf("planner: unsupported clause %T", cl)
	}
	c.explain(cl, sql)
	return sql, nil
}

func (c *Compiler) compileValueSet(e filter.ValueSetClause) string {
	var parts []string
	exists := func(values []string) string {
		return fmt.Sprintf(
			"EXISTS (SELECT 1 FROM game_value v WHERE v.game_id = g.id AND v.field = %s AND v.value IN (%s))",
			c.builder.Arg(e.Field.Name), c.builder.List(values),
		)
	}
	if len(e.Whitelist) > 0 {
		if e.All {
			for _, v := range e.Whitelist {
				parts = append(parts, exists([]string{v}))
			}
		} else {
			parts = append(parts, exists(e.Whitelist))
		}
	}
	if len(e.Blacklist) > 0 {
		parts = append(parts, "NOT "+exists(e.Blacklist))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// like matches a lower-cased phrase as a substring of any of the named
// fields, using the folded copies in game_text. A game without a row for a
// field has empty text there, which only the empty phrase matches.
func (c *Compiler) like(fields []string, phrase string) string {
	if phrase == "" {
		return "1=1"
	}
	var field string
	if len(fields) == 1 {
		field = "t.field = " + c.builder.Arg(fields[0])
	} else {
		field = "t.field IN (" + c.builder.List(fields) + ")"
	}
	return fmt.Sprintf(
		"EXISTS (SELECT 1 FROM game_text t WHERE t.game_id = g.id AND %s AND t.text LIKE %s ESCAPE '\\')",
		field, c.builder.Arg(likePattern(phrase)),
	)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(phrase string) string {
	return "%" + likeEscaper.Replace(phrase) + "%"
}
