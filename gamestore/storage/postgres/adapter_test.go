package postgres

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonibytes/gamestore/gamestore/storage/sqlbuilder"
)

func TestConnectRejectsBadSchema(t *testing.T) {
	for _, schema := range []string{"", "a-b", `x"y`, "1abc"} {
		_, err := New("postgres://localhost/none", schema).Connect(context.Background())
		require.Error(t, err, schema)
		assert.Contains(t, err.Error(), "invalid postgres schema name")
	}
}

func TestPlaylistSourceUsesDollarPlaceholders(t *testing.T) {
	b := sqlbuilder.New(sqlbuilder.PlaceholderDollar)
	b.Arg("first")
	src := dialect{}.PlaylistSource(b, `["a","b"]`)
	assert.True(t, strings.Contains(src, "CAST($2 AS jsonb)"), src)
	assert.Equal(t, []any{"first", `["a","b"]`}, b.Args())
}

func TestReadTxIsSnapshot(t *testing.T) {
	opts := dialect{}.ReadTxOptions()
	require.NotNil(t, opts)
	assert.True(t, opts.ReadOnly)
}
