package database

// Config holds configuration for the embedded replay cache store.
type Config struct {
	// Path is the SQLite database file path. ":memory:" opens an
	// in-memory store (tests only; nothing is persisted).
	Path string `mapstructure:"path" default:"replay-cache.db"`
	// BusyTimeoutMS is the SQLite busy timeout applied at open.
	BusyTimeoutMS int `mapstructure:"busy_timeout_ms" default:"5000"`
	// MaxOpenConns bounds concurrent store connections. Writes are
	// serialized by SQLite itself; readers may run concurrently.
	MaxOpenConns int `mapstructure:"max_open_conns" default:"4"`
}
