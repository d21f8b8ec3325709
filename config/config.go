// Package config loads the engine's effective runtime configuration from a
// TOML file via spf13/viper, watching it for changes so connection-level
// PRAGMAs can be reapplied without a process restart — the same
// viper-over-a-config-file pattern the pack's CLI tools use for their own
// settings, adapted here to a TOML source instead of YAML.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/syssam/persisto/errkind"
)

// Config is the effective runtime configuration (spec.md §6 "Configuration
// surface"): the connection string, dialect, and the PRAGMA-like
// connection settings PragmaStatements renders.
type Config struct {
	Dialect         string        `mapstructure:"dialect"`
	DataSource      string        `mapstructure:"data_source"`
	BusyTimeout     time.Duration `mapstructure:"busy_timeout"`
	ForeignKeys     bool          `mapstructure:"foreign_keys"`
	JournalMode     string        `mapstructure:"journal_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	DefaultBatchSize int          `mapstructure:"default_batch_size"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("dialect", "sqlite3")
	v.SetDefault("busy_timeout", "5s")
	v.SetDefault("foreign_keys", true)
	v.SetDefault("journal_mode", "WAL")
	v.SetDefault("max_open_conns", 10)
	v.SetDefault("max_idle_conns", 5)
	v.SetDefault("default_batch_size", 500)
}

// Loader loads Config from a TOML file; Watch reports every subsequent
// reload triggered by viper's file watch (fsnotify) to its callback.
type Loader struct {
	v       *viper.Viper
	current Config
}

// Load reads path (TOML) into a Loader, applying ENGINE_-prefixed
// environment variable overrides (ENGINE_MAX_OPEN_CONNS, ...) the same way
// the pack's CLIs layer env vars over their config file.
func Load(path string) (*Loader, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	defaults(v)
	v.SetEnvPrefix("ENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, errkind.New(errkind.Misconfiguration, "", "Load", err)
	}
	l := &Loader{v: v}
	if err := v.Unmarshal(&l.current); err != nil {
		return nil, errkind.New(errkind.Misconfiguration, "", "Load", err)
	}
	return l, nil
}

// Current returns the most recently loaded Config.
func (l *Loader) Current() Config {
	return l.current
}

// WriteDefault encodes the zero-value-plus-defaults Config to path as TOML
// via BurntSushi/toml, for a CLI's "init config" command to seed a starter
// file a user then edits.
func WriteDefault(path string) error {
	v := viper.New()
	defaults(v)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return errkind.New(errkind.Misconfiguration, "", "WriteDefault", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errkind.New(errkind.Misconfiguration, "", "WriteDefault", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return errkind.New(errkind.Misconfiguration, "", "WriteDefault", err)
	}
	return nil
}

// Watch starts watching the config file (fsnotify, via viper.WatchConfig)
// and invokes onChange with the freshly unmarshaled Config every time it's
// edited on disk. onChange is called from viper's watcher goroutine, so it
// must not block.
func (l *Loader) Watch(onChange func(Config)) {
	l.v.OnConfigChange(func(_ fsnotify.Event) {
		var c Config
		if err := l.v.Unmarshal(&c); err != nil {
			return
		}
		l.current = c
		if onChange != nil {
			onChange(c)
		}
	})
	l.v.WatchConfig()
}

// PragmaStatements renders the SQLite PRAGMA statements implied by c, in
// the order a freshly opened connection (or one reacting to Watch) should
// apply them.
func (c Config) PragmaStatements() []string {
	var stmts []string
	if c.ForeignKeys {
		stmts = append(stmts, "PRAGMA foreign_keys=ON")
	} else {
		stmts = append(stmts, "PRAGMA foreign_keys=OFF")
	}
	if c.JournalMode != "" {
		stmts = append(stmts, "PRAGMA journal_mode="+c.JournalMode)
	}
	if c.BusyTimeout > 0 {
		stmts = append(stmts, "PRAGMA busy_timeout="+strconv.FormatInt(c.BusyTimeout.Milliseconds(), 10))
	}
	return stmts
}
