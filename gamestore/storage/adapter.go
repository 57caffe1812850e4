package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nonibytes/gamestore/gamestore/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Magic identifies a database created by this package.
const (
	MetaMagicKey   = "gamestore_magic"
	MetaMagic      = "gamestore"
	MetaVersionKey = "gamestore_version"
	MetaVersion    = "2"
)

// Adapter abstracts database-specific operations
type Adapter interface {
	Backend() Backend
	PlaceholderStyle() sqlbuilder.PlaceholderStyle
	StoreID() string

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	// CreateStore creates tables and stamps the meta magic.
	CreateStore(ctx context.Context, db *sql.DB) error
	// OpenStore verifies that db was created by CreateStore.
	OpenStore(ctx context.Context, db *sql.DB) error

	SQL() SQL
	Dialect() Dialect
}

// SQL holds prepared SQL templates for common operations
type SQL struct {
	GetMeta string
	SetMeta string
}

// Dialect covers the query fragments that differ between engines.
type Dialect interface {
	// PlaylistSource returns a row source yielding (game_id, position) for
	// a JSON array of ids. Duplicate ids keep their first position.
	PlaylistSource(b Builder, idsJSON string) string
	// ReadTxOptions returns the options for snapshot reads; nil means the
	// engine default already gives one snapshot per transaction.
	ReadTxOptions() *sql.TxOptions
}

// Builder interface for placeholder management
type Builder interface {
	Arg(v any) string
	List(values []string) string
	Args() []any
	Len() int
}

// GameColumns lists the columns of the game table in scan order.
var GameColumns = []string{
	"id", "parent_game_id", "title", "order_title", "alternate_titles",
	"developer", "publisher", "series", "platform", "play_mode", "library",
	"status", "notes", "source", "application_path", "launch_command",
	"original_description", "language", "version", "release_date",
	"tags_str", "tags_json", "date_added", "date_modified",
	"broken", "extreme", "installed", "legacy",
}

// OrderIndexColumns are the primary sort columns that get an index each.
var OrderIndexColumns = []string{
	"date_added", "date_modified", "release_date",
	"developer", "publisher", "series", "platform", "tags_str",
}

// CheckMeta verifies the magic and schema version stamped by CreateStore.
// getMeta is the engine's GetMeta template.
func CheckMeta(ctx context.Context, db *sql.DB, getMeta string) error {
	var magic, version string
	if err := db.QueryRowContext(ctx, getMeta, MetaMagicKey).Scan(&magic); err != nil {
		return err
	}
	if magic != MetaMagic {
		return fmt.Errorf("not a gamestore db")
	}
	if err := db.QueryRowContext(ctx, getMeta, MetaVersionKey).Scan(&version); err != nil {
		return err
	}
	if version != MetaVersion {
		return fmt.Errorf("schema version %s, want %s: recreate the store", version, MetaVersion)
	}
	return nil
}
