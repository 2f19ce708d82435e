// Package errtrack wraps the Sentry error-tracking collaborator. When Sentry
// is inactive a no-op reporter is used so call sites never branch.
package errtrack

import (
	"fmt"
	"time"

	"github.com/cscs/firecrest-ui-api/config"
	"github.com/getsentry/sentry-go"
)

// Reporter captures unclassified errors for later inspection.
type Reporter interface {
	Capture(err error)
	// Flush blocks until buffered events are sent or the timeout passes.
	Flush(timeout time.Duration)
}

// Init builds a Reporter from configuration. Inactive Sentry yields a no-op.
func Init(cfg config.SentryConfig, environment string) (Reporter, error) {
	if !cfg.Active {
		return NopReporter{}, nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Debug:            cfg.Debug,
		TracesSampleRate: cfg.TracesSampleRate,
		Environment:      environment,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	return sentryReporter{}, nil
}

type sentryReporter struct{}

func (sentryReporter) Capture(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}

func (sentryReporter) Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

// NopReporter discards everything. Used when Sentry is inactive and in tests.
type NopReporter struct{}

func (NopReporter) Capture(error)       {}
func (NopReporter) Flush(time.Duration) {}
