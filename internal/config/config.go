package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
)

type Settings struct {
	ListenAddr   string `envconfig:"LISTEN_ADDR" default:":8000"`
	DatabasePath string `envconfig:"DATABASE_PATH" default:"data/termgate.db"`
	LogPath      string `envconfig:"LOG_PATH" default:""`
	AuthDisabled bool   `envconfig:"AUTH_DISABLED" default:"false"`

	// Remote command gateway settings
	SSHConnectTimeout  string `envconfig:"SSH_CONNECT_TIMEOUT" default:"30s"`
	SSHCommandTimeout  string `envconfig:"SSH_COMMAND_TIMEOUT" default:"10s"`
	TerminalSessionTTL string `envconfig:"TERMINAL_SESSION_TTL" default:"1h"`

	AuditRetentionDays int `envconfig:"AUDIT_RETENTION_DAYS" default:"90"`
}

var Cfg Settings

func Load() {
	if err := envconfig.Process("TERMGATE", &Cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
}
