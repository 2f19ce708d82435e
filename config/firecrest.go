package config

import (
	"strings"
	"time"
)

// FirecrestConfig contains configuration for the FirecREST backend API.
type FirecrestConfig struct {
	// BaseURL is the absolute base URL of the FirecREST API,
	// e.g. "https://firecrest.example.org/api/v2".
	BaseURL string `env:"FIRECREST_API_BASE_URL,required"`

	// JobsTimeout bounds the job-list fetch per system. The underlying
	// call is raced against this deadline, not aborted.
	JobsTimeout time.Duration `env:"FIRECREST_JOBS_TIMEOUT" envDefault:"30s"`
}

// Sanitize applies guardrails to FirecREST configuration values.
func (c *FirecrestConfig) Sanitize() {
	c.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.BaseURL), "/")
	if c.JobsTimeout <= 0 {
		c.JobsTimeout = 30 * time.Second
	}
}
