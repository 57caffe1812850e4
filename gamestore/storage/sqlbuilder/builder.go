package sqlbuilder

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota
	PlaceholderDollar
)

// Squirrel returns the matching squirrel placeholder format.
func (s PlaceholderStyle) Squirrel() squirrel.PlaceholderFormat {
	if s == PlaceholderDollar {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// Builder hands out placeholders in the order the SQL text uses them. For
// '?' placeholders callers must call Arg in textual order.
type Builder struct {
	Style PlaceholderStyle
	args  []any
}

func New(style PlaceholderStyle) *Builder {
	return &Builder{Style: style, args: make([]any, 0)}
}

func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	switch b.Style {
	case PlaceholderDollar:
		return "$" + itoa(len(b.args))
	default:
		return "?"
	}
}

// List returns "a, b, c" placeholders for values.
func (b *Builder) List(values []string) string {
	phs := make([]string, len(values))
	for i, v := range values {
		phs[i] = b.Arg(v)
	}
	return strings.Join(phs, ", ")
}

func (b *Builder) Args() []any { return b.args }
func (b *Builder) Len() int    { return len(b.args) }

// itoa converts int to string without fmt overhead
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [32]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + (n % 10))
		n /= 10
	}
	return string(buf[i:])
}
