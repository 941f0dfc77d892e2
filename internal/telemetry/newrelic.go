package telemetry

import (
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/sipalaciosv/inspeccion-vehicular/config"
)

// InitNewRelic initializes the New Relic application. A missing license
// key or disabled flag returns a nil application, which callers treat as
// tracing off.
func InitNewRelic(cfg *config.NewRelicConfig) (*newrelic.Application, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return nil, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize New Relic: %w", err)
	}

	return app, nil
}
