package ops

import (
	"encoding/json"
	"fmt"

	"github.com/nonibytes/gamestore/gamestore/game"
	"github.com/nonibytes/gamestore/gamestore/order"
)

type scanner interface {
	Scan(dest ...any) error
}

// gameRow mirrors storage.GameColumns.
type gameRow struct {
	id, parentGameID, title, orderTitle, alternateTitles       string
	developer, publisher, series, platform, playMode, library string
	status, notes, source, applicationPath, launchCommand      string
	originalDescription, language, version, releaseDate       string
	tagsStr, tagsJSON, dateAdded, dateModified                string
	broken, extreme, installed, legacy                        int64
}

func (r *gameRow) dest() []any {
	return []any{
		&r.id, &r.parentGameID, &r.title, &r.orderTitle, &r.alternateTitles,
		&r.developer, &r.publisher, &r.series, &r.platform, &r.playMode, &r.library,
		&r.status, &r.notes, &r.source, &r.applicationPath, &r.launchCommand,
		&r.originalDescription, &r.language, &r.version, &r.releaseDate,
		&r.tagsStr, &r.tagsJSON, &r.dateAdded, &r.dateModified,
		&r.broken, &r.extreme, &r.installed, &r.legacy,
	}
}

func (r *gameRow) game() (game.Game, error) {
	g := game.Game{
		ID:                  r.id,
		ParentGameID:        r.parentGameID,
		Title:               r.title,
		OrderTitle:          r.orderTitle,
		AlternateTitles:     r.alternateTitles,
		Developer:           r.developer,
		Publisher:           r.publisher,
		Series:              r.series,
		Platform:            r.platform,
		PlayMode:            r.playMode,
		Library:             r.library,
		Status:              r.status,
		Notes:               r.notes,
		Source:              r.source,
		ApplicationPath:     r.applicationPath,
		LaunchCommand:       r.launchCommand,
		OriginalDescription: r.originalDescription,
		Language:            r.language,
		Version:             r.version,
		ReleaseDate:         r.releaseDate,
		Broken:              r.broken != 0,
		Extreme:             r.extreme != 0,
		Installed:           r.installed != 0,
		Legacy:              r.legacy != 0,
	}
	if err := json.Unmarshal([]byte(r.tagsJSON), &g.Tags); err != nil {
		return game.Game{}, fmt.Errorf("game %s: tags json: %w", r.id, err)
	}
	if len(g.Tags) == 0 {
		g.Tags = nil
	}
	var err error
	if g.DateAdded, err = game.ParseTime(r.dateAdded); err != nil {
		return game.Game{}, fmt.Errorf("game %s: date_added: %w", r.id, err)
	}
	if g.DateModified, err = game.ParseTime(r.dateModified); err != nil {
		return game.Game{}, fmt.Errorf("game %s: date_modified: %w", r.id, err)
	}
	return g, nil
}

// rowValues renders a prepared game in storage.GameColumns order.
func rowValues(g game.Game) ([]any, error) {
	tags := g.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("game %s: tags json: %w", g.ID, err)
	}
	return []any{
		g.ID, g.ParentGameID, g.Title, g.OrderTitle, g.AlternateTitles,
		g.Developer, g.Publisher, g.Series, g.Platform, g.PlayMode, g.Library,
		g.Status, g.Notes, g.Source, g.ApplicationPath, g.LaunchCommand,
		g.OriginalDescription, g.Language, g.Version, g.ReleaseDate,
		g.TagString(), string(tagsJSON), game.FormatTime(g.DateAdded), game.FormatTime(g.DateModified),
		boolInt(g.Broken), boolInt(g.Extreme), boolInt(g.Installed), boolInt(g.Legacy),
	}, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// scanGame scans a row of storage.GameColumns.
func scanGame(sc scanner) (game.Game, error) {
	var r gameRow
	if err := sc.Scan(r.dest()...); err != nil {
		return game.Game{}, err
	}
	return r.game()
}

// scanGameEntry scans storage.GameColumns followed by sort_value,
// sort_title and sort_pos.
func scanGameEntry(sc scanner) (game.Game, order.Entry, error) {
	var r gameRow
	var e order.Entry
	dest := append(r.dest(), &e.Value, &e.Title, &e.Position)
	if err := sc.Scan(dest...); err != nil {
		return game.Game{}, order.Entry{}, err
	}
	g, err := r.game()
	if err != nil {
		return game.Game{}, order.Entry{}, err
	}
	e.ID = g.ID
	return g, e, nil
}
