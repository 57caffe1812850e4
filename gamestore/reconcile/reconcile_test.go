package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type item struct {
	id    string
	title string
}

func diff(old, new []item) Result[item] {
	return Diff(old, new,
		func(i item) string { return i.id },
		func(a, b item) bool { return a == b },
	)
}

func TestDiff(t *testing.T) {
	old := []item{{"a", "A"}, {"b", "B"}, {"c", "C"}, {"d", "D"}}
	new := []item{{"e", "E"}, {"b", "B2"}, {"a", "A"}, {"f", "F"}}

	got := diff(old, new)
	want := Result[item]{
		Added:   []item{{"e", "E"}, {"f", "F"}},
		Changed: []item{{"b", "B2"}},
		Removed: []item{{"c", "C"}, {"d", "D"}},
	}
	if d := cmp.Diff(want, got, cmp.AllowUnexported(item{})); d != "" {
		t.Fatalf("diff mismatch (-want +got):\n%s", d)
	}
	assert.False(t, got.Empty())
}

func TestDiffDuplicatesLastWins(t *testing.T) {
	old := []item{{"a", "1"}, {"a", "2"}}
	new := []item{{"a", "x"}, {"a", "2"}}
	assert.True(t, diff(old, new).Empty())

	got := diff(old, []item{{"a", "3"}})
	assert.Equal(t, []item{{"a", "3"}}, got.Changed)
}

func TestDiffEmpty(t *testing.T) {
	assert.True(t, diff(nil, nil).Empty())
	got := diff(nil, []item{{"a", "A"}})
	assert.Equal(t, []item{{"a", "A"}}, got.Added)
	got = diff([]item{{"a", "A"}}, nil)
	assert.Equal(t, []item{{"a", "A"}}, got.Removed)
}
