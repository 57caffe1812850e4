package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/order"
	"github.com/nonibytes/gamestore/gamestore/paging"
	"github.com/nonibytes/gamestore/internal/cliutil"
)

// pageView is the JSON form of one search page.
type pageView struct {
	Total   int            `json:"total"`
	Order   order.Spec     `json:"order"`
	Games   []game.Game    `json:"games"`
	Next    string         `json:"next,omitempty"`
	Keyset  map[int]string `json:"keyset,omitempty"`
	Explain []string       `json:"explain,omitempty"`
}

func newPageView(res paging.Result, spec order.Spec, size int) (pageView, error) {
	v := pageView{Total: res.Total, Order: spec, Games: res.Games, Explain: res.Explain}
	if v.Games == nil {
		v.Games = []game.Game{}
	}
	// a short page is the last one
	if res.Next != nil && len(res.Games) == size {
		tok, err := order.EncodeEntry(*res.Next)
		if err != nil {
			return pageView{}, err
		}
		v.Next = tok
	}
	for page, e := range res.Keyset {
		tok, err := order.EncodeEntry(*e)
		if err != nil {
			return pageView{}, err
		}
		if v.Keyset == nil {
			v.Keyset = make(map[int]string)
		}
		v.Keyset[page+1] = tok
	}
	return v, nil
}

func printPage(w io.Writer, format cliutil.OutputFormat, v pageView, elapsed time.Duration) {
	switch format {
	case cliutil.FormatJSON:
		cliutil.PrintJSON(w, v)
	case cliutil.FormatIDs:
		for _, g := range v.Games {
			fmt.Fprintln(w, g.ID)
		}
	default:
		fmt.Fprintf(w, "%s games match, ordered by %s (%s)\n",
			humanize.Comma(int64(v.Total)), v.Order, elapsed.Round(time.Microsecond))
		for _, g := range v.Games {
			printGameLine(w, g)
		}
		if v.Next != "" {
			fmt.Fprintf(w, "\nnext: --after %s\n", v.Next)
		}
		if len(v.Explain) > 0 {
			fmt.Fprintln(w, "\nExplanation:")
			for _, s := range v.Explain {
				fmt.Fprintf(w, "  %s\n", s)
			}
		}
	}
}

func printGameLine(w io.Writer, g game.Game) {
	var extra []string
	for _, s := range []string{g.Developer, g.Platform} {
		if s != "" {
			extra = append(extra, s)
		}
	}
	line := fmt.Sprintf("- %s  %s", g.ID, g.Title)
	if len(extra) > 0 {
		line += "  [" + strings.Join(extra, " / ") + "]"
	}
	fmt.Fprintln(w, line)
}
