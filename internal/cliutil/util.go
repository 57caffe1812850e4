package cliutil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nonibytes/gamestore/gamestore"
	"github.com/nonibytes/gamestore/gamestore/storage"
	"github.com/nonibytes/gamestore/gamestore/storage/postgres"
	"github.com/nonibytes/gamestore/gamestore/storage/sqlite"
	"github.com/nonibytes/gamestore/internal/cliopt"
)

type OutputFormat string

const (
	FormatPretty OutputFormat = "pretty"
	FormatIDs    OutputFormat = "ids"
	FormatJSON   OutputFormat = "json"
)

func ParseOutputFormat(s string) OutputFormat {
	switch OutputFormat(s) {
	case FormatPretty, FormatIDs, FormatJSON:
		return OutputFormat(s)
	default:
		return FormatPretty
	}
}

func PrintJSON(w io.Writer, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(b))
}

// Adapter builds the storage adapter the global options select. The memory
// backend has no adapter.
func Adapter(g cliopt.GlobalOptions) (storage.Adapter, error) {
	switch strings.ToLower(g.Backend) {
	case "sqlite", "":
		return sqlite.NewWithDriver(g.SQLitePath, g.SQLiteDriver), nil
	case "postgres", "pg":
		if g.PostgresDSN == "" {
			return nil, fmt.Errorf("--pg-dsn is required for the postgres backend")
		}
		return postgres.New(g.PostgresDSN, g.PostgresSchema), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", g.Backend)
	}
}

func catalogOptions(env *cliopt.Env) gamestore.Options {
	opts := gamestore.DefaultOptions()
	opts.Logger = env.Logger
	opts.Metrics = env.Metrics
	return opts
}

// OpenCatalog opens the catalog selected by the global options.
func OpenCatalog(ctx context.Context, env *cliopt.Env) (*gamestore.Catalog, error) {
	if strings.EqualFold(env.Global.Backend, "memory") {
		return gamestore.NewMemory(catalogOptions(env)), nil
	}
	adapter, err := Adapter(*env.Global)
	if err != nil {
		return nil, err
	}
	return gamestore.Open(ctx, adapter, catalogOptions(env))
}

// CreateCatalog creates a new catalog at the location the global options
// select.
func CreateCatalog(ctx context.Context, env *cliopt.Env) (*gamestore.Catalog, error) {
	if strings.EqualFold(env.Global.Backend, "memory") {
		return gamestore.NewMemory(catalogOptions(env)), nil
	}
	adapter, err := Adapter(*env.Global)
	if err != nil {
		return nil, err
	}
	return gamestore.Create(ctx, adapter, catalogOptions(env))
}
