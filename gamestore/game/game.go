package game

import (
	"strings"
	"time"
)

// TimeLayout is the canonical rendering of timestamps. Lexicographic order of
// rendered values equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// Game is one catalog record.
type Game struct {
	ID                  string    `json:"id"`
	ParentGameID        string    `json:"parentGameId,omitempty"`
	Title               string    `json:"title"`
	OrderTitle          string    `json:"orderTitle,omitempty"`
	AlternateTitles     string    `json:"alternateTitles,omitempty"`
	Developer           string    `json:"developer,omitempty"`
	Publisher           string    `json:"publisher,omitempty"`
	Series              string    `json:"series,omitempty"`
	Platform            string    `json:"platform,omitempty"`
	PlayMode            string    `json:"playMode,omitempty"`
	Library             string    `json:"library,omitempty"`
	Status              string    `json:"status,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	Source              string    `json:"source,omitempty"`
	ApplicationPath     string    `json:"applicationPath,omitempty"`
	LaunchCommand       string    `json:"launchCommand,omitempty"`
	OriginalDescription string    `json:"originalDescription,omitempty"`
	Language            string    `json:"language,omitempty"`
	Version             string    `json:"version,omitempty"`
	ReleaseDate         string    `json:"releaseDate,omitempty"`
	Tags                []string  `json:"tags,omitempty"`
	DateAdded           time.Time `json:"dateAdded"`
	DateModified        time.Time `json:"dateModified"`
	Broken              bool      `json:"broken,omitempty"`
	Extreme             bool      `json:"extreme,omitempty"`
	Installed           bool      `json:"installed,omitempty"`
	Legacy              bool      `json:"legacy,omitempty"`
}

// IsChild reports whether the game is rendered under a parent.
func (g *Game) IsChild() bool {
	return g.ParentGameID != ""
}

// TagString joins tags the way they are stored and ordered.
func (g *Game) TagString() string {
	return strings.Join(g.Tags, "; ")
}

// FormatTime renders t in TimeLayout. The zero time renders as "".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime is the inverse of FormatTime.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(TimeLayout, s)
}

// SplitValues splits a ';'-separated multi-value field into trimmed,
// non-empty values.
func SplitValues(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
