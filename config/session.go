package config

import (
	"net"
	"strings"
)

// SessionConfig contains session cookie and session store configuration.
// Sessions are persisted either in a local file directory or in Redis,
// selected by REDIS_ACTIVE.
type SessionConfig struct {
	// Secret signs the session cookie value (HMAC). Required.
	Secret string `env:"SESSION_SECRET,required,notEmpty"`

	// FileDirPath is the directory for file-backed session records.
	FileDirPath string `env:"SESSION_FILE_DIR_PATH" envDefault:"./sessions"`

	Redis RedisConfig `envPrefix:"REDIS_"`
}

// RedisConfig contains Redis session store configuration.
type RedisConfig struct {
	Active   bool   `env:"ACTIVE"        envDefault:"false"`
	Host     string `env:"HOST"          envDefault:"localhost"`
	Port     string `env:"PORT"          envDefault:"6379"`
	Password string `env:"AUTH_PASSWORD" envDefault:""`
}

// Sanitize normalises session store configuration values.
func (c *SessionConfig) Sanitize() {
	c.FileDirPath = strings.TrimSpace(c.FileDirPath)
	if c.FileDirPath == "" {
		c.FileDirPath = "./sessions"
	}
}

// Addr returns the Redis host:port address.
func (c *RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
