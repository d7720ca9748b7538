package executor

import (
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
)

// Config tunes the network executor.
type Config struct {
	// GatewayURL is handed to the transport factory of the surrounding
	// tooling; the executor itself never interprets it.
	GatewayURL string

	// Attempts is the total budget of transport attempts for one
	// operation, first try included. An operation is never attempted
	// more often than this.
	Attempts int

	// Backoff is the delay before the second attempt; it doubles after
	// every further failure.
	Backoff time.Duration

	// PollInterval is the delay between two finality polls of a
	// broadcast transaction.
	PollInterval time.Duration

	// Timeout bounds a whole call when the caller's context carries no
	// deadline of its own.
	Timeout time.Duration
}

// DefaultConfig returns the configuration used when no file overrides
// it.
func DefaultConfig() Config {
	return Config{
		Attempts:     3,
		Backoff:      500 * time.Millisecond,
		PollInterval: time.Second,
		Timeout:      time.Minute,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Attempts <= 0 {
		c.Attempts = def.Attempts
	}
	if c.Backoff <= 0 {
		c.Backoff = def.Backoff
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}

// configToml is the on-disk form of Config, with durations as strings
// so the file stays readable ("500ms", "1m").
type configToml struct {
	GatewayURL   string `toml:"gateway_url"`
	Attempts     int    `toml:"attempts"`
	Backoff      string `toml:"backoff"`
	PollInterval string `toml:"poll_interval"`
	Timeout      string `toml:"timeout"`
}

// LoadConfig reads a TOML configuration file. Missing entries keep
// their default value.
func LoadConfig(path string) (Config, error) {
	var raw configToml
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return Config{}, xerrors.Errorf("reading config: %v", err)
	}
	return newConfig(raw)
}

// ParseConfig reads a TOML configuration from a string, mostly for
// tests.
func ParseConfig(data string) (Config, error) {
	var raw configToml
	if _, err := toml.Decode(data, &raw); err != nil {
		return Config{}, xerrors.Errorf("parsing config: %v", err)
	}
	return newConfig(raw)
}

func newConfig(raw configToml) (Config, error) {
	cfg := DefaultConfig()
	cfg.GatewayURL = raw.GatewayURL
	if raw.Attempts != 0 {
		cfg.Attempts = raw.Attempts
	}

	for _, d := range []struct {
		value  string
		target *time.Duration
	}{
		{raw.Backoff, &cfg.Backoff},
		{raw.PollInterval, &cfg.PollInterval},
		{raw.Timeout, &cfg.Timeout},
	} {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return Config{}, xerrors.Errorf("parsing duration %q: %v",
				d.value, err)
		}
		*d.target = parsed
	}

	return cfg, nil
}
