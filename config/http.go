package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.Addr == "" {
		h.Addr = ":8080"
	}
}

// UIConfig groups values the browser UI needs: branding, support links and
// list/transfer limits.
type UIConfig struct {
	// CompanyName is shown in the dashboard footer and page titles.
	CompanyName string `env:"COMPANY_NAME" envDefault:"CSCS"`

	// SupportURL is the helpdesk link surfaced on error pages.
	SupportURL string `env:"SUPPORT_URL" envDefault:""`

	// ListPaginateLimit is the page size for file and job listings.
	ListPaginateLimit int `env:"UI_LIST_PAGINATE_LIMIT" envDefault:"100"`

	// FileUploadLimit is the maximum size in bytes for the synchronous
	// (small file) upload path. Larger files go through the transfer API.
	FileUploadLimit int64 `env:"FILE_UPLOAD_LIMIT" envDefault:"5242880"`

	// FileDownloadLimit is the maximum size in bytes for the synchronous
	// download passthrough.
	FileDownloadLimit int64 `env:"FILE_DOWNLOAD_LIMIT" envDefault:"5242880"`
}

// Sanitize applies guardrails to UI configuration values.
func (c *UIConfig) Sanitize() {
	if c.ListPaginateLimit <= 0 {
		c.ListPaginateLimit = 100
	}
	if c.FileUploadLimit <= 0 {
		c.FileUploadLimit = 5 * 1024 * 1024
	}
	if c.FileDownloadLimit <= 0 {
		c.FileDownloadLimit = 5 * 1024 * 1024
	}
}
