package cliopt

import (
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"pkt.systems/pslog"

	"github.com/nonibytes/gamestore/gamestore/metrics"
)

// GlobalOptions are bound once at the CLI root and passed to subcommands.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command and per-command code.
type GlobalOptions struct {
	Backend        string
	SQLitePath     string
	SQLiteDriver   string
	PostgresDSN    string
	PostgresSchema string

	Config      string
	LogLevel    string
	Format      string
	MetricsFile string
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		Backend:        "sqlite",
		SQLitePath:     "games.db",
		SQLiteDriver:   "sqlite",
		PostgresSchema: "gamestore",
		LogLevel:       "warn",
		Format:         "pretty",
	}
}

// globalFlags maps flag names to the option they fill.
func globalFlags(g *GlobalOptions) map[string]*string {
	return map[string]*string{
		"backend":       &g.Backend,
		"sqlite-path":   &g.SQLitePath,
		"sqlite-driver": &g.SQLiteDriver,
		"pg-dsn":        &g.PostgresDSN,
		"pg-schema":     &g.PostgresSchema,
		"config":        &g.Config,
		"log-level":     &g.LogLevel,
		"format":        &g.Format,
		"metrics-file":  &g.MetricsFile,
	}
}

func BindGlobalFlags(fs *pflag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|postgres|memory")
	fs.StringVar(&g.SQLitePath, "sqlite-path", g.SQLitePath, "sqlite database file")
	fs.StringVar(&g.SQLiteDriver, "sqlite-driver", g.SQLiteDriver, "sqlite driver: sqlite (pure Go) or sqlite3 (cgo)")
	fs.StringVar(&g.PostgresDSN, "pg-dsn", g.PostgresDSN, "postgres DSN")
	fs.StringVar(&g.PostgresSchema, "pg-schema", g.PostgresSchema, "postgres schema holding the catalog")
	fs.StringVar(&g.Config, "config", g.Config, "config file (yaml, json or toml)")
	fs.StringVar(&g.LogLevel, "log-level", g.LogLevel, "log level: trace|debug|info|warn|error")
	fs.StringVarP(&g.Format, "format", "o", g.Format, "output format: pretty|ids|json")
	fs.StringVar(&g.MetricsFile, "metrics-file", g.MetricsFile, "write Prometheus metrics to this file on exit (textfile collector format)")

	for name := range globalFlags(g) {
		if err := viper.BindPFlag(name, fs.Lookup(name)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("GAMESTORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Load reads an optional config file and resolves every global option from
// flags, GAMESTORE_* environment variables and the file, in that order.
func Load(g *GlobalOptions) error {
	if cfg := strings.TrimSpace(viper.GetString("config")); cfg != "" {
		viper.SetConfigFile(cfg)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}
	for name, dst := range globalFlags(g) {
		*dst = viper.GetString(name)
	}
	return nil
}

// Env is what every subcommand runs with.
type Env struct {
	Global *GlobalOptions
	Logger pslog.Logger
	In     io.Reader
	Out    io.Writer
	Err    io.Writer

	// Metrics is nil unless --metrics-file is set.
	Metrics  *metrics.Metrics
	registry *prometheus.Registry
}

// EnableMetrics registers the catalog collectors on a fresh registry.
func (e *Env) EnableMetrics() error {
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}
	e.Metrics, e.registry = m, reg
	return nil
}

// WriteMetrics writes the collected metrics to --metrics-file, if set.
func (e *Env) WriteMetrics() error {
	if e.registry == nil || e.Global.MetricsFile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(e.Global.MetricsFile, e.registry)
}
