package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	var (
		configPath = flag.String("config", defaultConfigPath(), "path to config file")
		server     = flag.String("server", "", "IRC server to connect to")
		port       = flag.Int("port", 0, "port to connect to")
		ssl        = flag.Bool("ssl", true, "use TLS for the connection")
		nick       = flag.String("nick", "", "nickname to use")
		user       = flag.String("user", "", "username to use")
		realname   = flag.String("realname", "", "real name to use")
		channel    = flag.String("channel", "", "channel to join after registering")
		verbose    = flag.Bool("v", false, "enable verbose logging (all wire traffic)")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println(versionBanner())
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	// Flags beat the config file, but only when actually given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "server":
			cfg.Server = *server
		case "port":
			cfg.Port = *port
		case "ssl":
			cfg.SSL = *ssl
		case "nick":
			cfg.Nick = *nick
		case "user":
			cfg.User = *user
		case "realname":
			cfg.RealName = *realname
		case "channel":
			cfg.Channel = *channel
		case "v":
			cfg.Verbose = *verbose
		}
	})
	if cfg.User == "" {
		cfg.User = cfg.Nick
	}
	if cfg.RealName == "" {
		cfg.RealName = cfg.Nick
	}

	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer closeLog()

	slog.Info("starting", "version", chatterVersion, "server", cfg.addr(),
		"ssl", cfg.SSL, "nick", cfg.Nick, "channel", cfg.Channel)

	p := tea.NewProgram(initialModel(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setupLogging sends slog output to the log file; stdout belongs to the TUI.
func setupLogging(cfg Config) (func(), error) {
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))

	return func() { f.Close() }, nil
}
