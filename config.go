package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds everything needed to reach a server and register, loaded from
// the TOML config file and overridable per-flag.
type Config struct {
	Server   string `toml:"server"`
	Port     int    `toml:"port"`
	SSL      bool   `toml:"ssl"`
	Nick     string `toml:"nick"`
	User     string `toml:"user"`
	RealName string `toml:"realname"`
	Channel  string `toml:"channel"`
	LogFile  string `toml:"log_file"`
	Verbose  bool   `toml:"verbose"`
}

func defaultConfig() Config {
	return Config{
		Server:   "irc.libera.chat",
		Port:     6697,
		SSL:      true,
		Nick:     "chatter_user",
		User:     "chatter_user",
		RealName: "chatter_user",
		Channel:  "#chatter",
		LogFile:  "chatter.log",
	}
}

// defaultConfigPath is ~/.config/chatter/config.toml (or the platform
// equivalent).
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "chatter", "config.toml")
}

// loadConfig reads the config file at path on top of the defaults. A missing
// file is not an error; a malformed one is.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// validate rejects values that would produce garbage on the wire.
func (c Config) validate() error {
	if c.Server == "" {
		return fmt.Errorf("server must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Nick == "" {
		return fmt.Errorf("nick must not be empty")
	}
	if strings.ContainsAny(c.Nick, " :") {
		return fmt.Errorf("nick %q contains reserved characters", c.Nick)
	}
	if c.Channel != "" && !isChannel(c.Channel) {
		return fmt.Errorf("channel %q must start with %s", c.Channel, channelMarker)
	}
	return nil
}

// addr is the dial target.
func (c Config) addr() string {
	return fmt.Sprintf("%s:%d", c.Server, c.Port)
}
