package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"smppgw/core/lib/logging"
	"smppgw/core/lib/session"
)

// File is the configuration of an ESME process.
// A zero ConnectTimeout dials without a deadline.
type File struct {
	Address        string
	ConnectTimeout time.Duration
	SystemID       string
	Password       string
	SystemType     string
	BindType       session.BindType
	Session        session.Config
	Logging        logging.Config
}

func Default() File {
	return File{
		Address:        "127.0.0.1:2775",
		ConnectTimeout: 10 * time.Second,
		BindType:       session.BindTransceiver,
		Session:        session.DefaultConfig(),
		Logging:        logging.DefaultConfig(logging.ProfileRuntime),
	}
}

type fileConfig struct {
	Address        string `toml:"address"`
	ConnectTimeout string `toml:"connect_timeout"`
	SystemID       string `toml:"system_id"`
	Password       string `toml:"password"`
	SystemType     string `toml:"system_type"`
	BindType       string `toml:"bind_type"`
	Session        struct {
		TransactionTimeout  string `toml:"transaction_timeout"`
		SweepInterval       string `toml:"sweep_interval"`
		EnquireLinkInterval string `toml:"enquire_link_interval"`
		BindTimeout         string `toml:"bind_timeout"`
	} `toml:"session"`
	Log struct {
		Level     string `toml:"level"`
		NoColor   bool   `toml:"no_color"`
		Timestamp bool   `toml:"timestamp"`
	} `toml:"log"`
}

// Load reads a TOML file. Keys that are absent keep their defaults.
func Load(path string) (File, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return File{}, fmt.Errorf("load config: %w", err)
	}
	return apply(Default(), raw, meta)
}

// Parse is Load for a configuration held in memory.
func Parse(data string) (File, error) {
	var raw fileConfig
	meta, err := toml.Decode(data, &raw)
	if err != nil {
		return File{}, fmt.Errorf("parse config: %w", err)
	}
	return apply(Default(), raw, meta)
}

func apply(cfg File, raw fileConfig, meta toml.MetaData) (File, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return File{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if meta.IsDefined("address") {
		cfg.Address = strings.TrimSpace(raw.Address)
	}
	if meta.IsDefined("connect_timeout") {
		v, err := time.ParseDuration(strings.TrimSpace(raw.ConnectTimeout))
		if err != nil {
			return File{}, fmt.Errorf("parse connect_timeout: %w", err)
		}
		if v < 0 {
			return File{}, fmt.Errorf("connect_timeout must not be negative")
		}
		cfg.ConnectTimeout = v
	}
	if meta.IsDefined("system_id") {
		cfg.SystemID = strings.TrimSpace(raw.SystemID)
	}
	if meta.IsDefined("password") {
		cfg.Password = raw.Password
	}
	if meta.IsDefined("system_type") {
		cfg.SystemType = strings.TrimSpace(raw.SystemType)
	}
	if meta.IsDefined("bind_type") {
		bindType, err := session.ParseBindType(strings.TrimSpace(raw.BindType))
		if err != nil {
			return File{}, fmt.Errorf("parse bind_type: %w", err)
		}
		cfg.BindType = bindType
	}

	durations := []struct {
		key    string
		raw    string
		target *time.Duration
	}{
		{"transaction_timeout", raw.Session.TransactionTimeout, &cfg.Session.TransactionTimeout},
		{"sweep_interval", raw.Session.SweepInterval, &cfg.Session.SweepInterval},
		{"enquire_link_interval", raw.Session.EnquireLinkInterval, &cfg.Session.EnquireLinkInterval},
		{"bind_timeout", raw.Session.BindTimeout, &cfg.Session.BindTimeout},
	}
	for _, d := range durations {
		if !meta.IsDefined("session", d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return File{}, fmt.Errorf("parse session.%s: %w", d.key, err)
		}
		if v < 0 {
			return File{}, fmt.Errorf("session.%s must not be negative", d.key)
		}
		*d.target = v
	}

	if meta.IsDefined("log", "level") {
		level, ok := logging.ParseLevel(raw.Log.Level)
		if !ok {
			return File{}, fmt.Errorf("parse log.level: unknown level %q", raw.Log.Level)
		}
		cfg.Logging.Level = level
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Logging.NoColor = raw.Log.NoColor
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Logging.Timestamp = raw.Log.Timestamp
	}
	return cfg, nil
}
