package order

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/nonibytes/gamestore/gamestore/game"
)

// NormalizeTitle folds a display title into its order title: diacritics
// removed, lower-cased, whitespace collapsed.
func NormalizeTitle(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// Prepare returns g in the canonical form stores keep: tags trimmed with
// empties dropped, timestamps in UTC at millisecond precision and the order
// title filled in.
func Prepare(g game.Game) game.Game {
	var tags []string
	for _, t := range g.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	g.Tags = tags
	g.DateAdded = g.DateAdded.UTC().Truncate(time.Millisecond)
	g.DateModified = g.DateModified.UTC().Truncate(time.Millisecond)
	g.OrderTitle = TitleOf(&g)
	return g
}
