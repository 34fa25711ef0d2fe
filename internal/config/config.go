package config

import (
	"path/filepath"
	"time"

	"github.com/paularlott/cli"
)

type Config struct {
	DataDir      string
	ListenAddr   string
	APIAuthToken string
	PingTimeout  time.Duration
	LogLevel     string
	LogFormat    string
}

var (
	dataDir        string
	listenAddr     string
	apiAuthToken   string
	pingTimeoutSec int
	logLevel       string
	logFormat      string
)

func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:         "data-dir",
			Usage:        "Data directory path",
			EnvVars:      []string{"INVD_DATA_DIR"},
			DefaultValue: filepath.Join(".", "data"),
			AssignTo:     &dataDir,
		},
		&cli.StringFlag{
			Name:         "addr",
			Usage:        "Server listen address",
			EnvVars:      []string{"INVD_LISTEN_ADDR"},
			DefaultValue: ":8080",
			AssignTo:     &listenAddr,
		},
		&cli.StringFlag{
			Name:     "api-token",
			Usage:    "API bearer token",
			EnvVars:  []string{"INVD_API_TOKEN"},
			AssignTo: &apiAuthToken,
		},
		&cli.IntFlag{
			Name:         "ping-timeout",
			Usage:        "Ping timeout in seconds",
			EnvVars:      []string{"INVD_PING_TIMEOUT"},
			DefaultValue: 2,
			AssignTo:     &pingTimeoutSec,
		},
		&cli.StringFlag{
			Name:         "log-level",
			Usage:        "Log level (debug, info, warn, error)",
			EnvVars:      []string{"INVD_LOG_LEVEL"},
			DefaultValue: "info",
			AssignTo:     &logLevel,
		},
		&cli.StringFlag{
			Name:         "log-format",
			Usage:        "Log format (console, json)",
			EnvVars:      []string{"INVD_LOG_FORMAT"},
			DefaultValue: "console",
			AssignTo:     &logFormat,
		},
	}
}

func Load() *Config {
	return &Config{
		DataDir:      dataDir,
		ListenAddr:   listenAddr,
		APIAuthToken: apiAuthToken,
		PingTimeout:  time.Duration(pingTimeoutSec) * time.Second,
		LogLevel:     logLevel,
		LogFormat:    logFormat,
	}
}

// IsAPIAuthEnabled checks if API authentication is configured
func (c *Config) IsAPIAuthEnabled() bool {
	return c.APIAuthToken != ""
}
