package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/podium-pipeline/internal/config"
)

// Factory creates DataSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new data source factory
func NewFactory(logger *logrus.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewDataSource creates a new DataSource based on the provided configuration
func (f *Factory) NewDataSource(cfg config.DataSourceConfig) (DataSource, error) {
	httpCfg := DefaultHTTPClientConfig()
	if cfg.RateLimit > 0 {
		httpCfg.RateLimit = cfg.RateLimit
	}
	httpClient := NewRateLimitedHTTPClient(httpCfg, f.logger)

	switch cfg.Name {
	case "ergast":
		return NewErgastClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger), nil

	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Name)
	}
}

// NewDataSources creates all enabled data sources from configuration
func (f *Factory) NewDataSources(ingestionCfg config.IngestionConfig) ([]DataSource, error) {
	var sources []DataSource

	for _, srcCfg := range ingestionCfg.Sources {
		if !srcCfg.Enabled {
			f.logger.Infof("Skipping disabled data source: %s", srcCfg.Name)
			continue
		}

		source, err := f.NewDataSource(srcCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create data source %s: %w", srcCfg.Name, err)
		}

		sources = append(sources, source)
		f.logger.Infof("Created data source: %s", srcCfg.Name)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no enabled data sources configured")
	}

	return sources, nil
}

// NewStreamClient creates a live-timing stream client for a source that
// exposes a stream endpoint.
func (f *Factory) NewStreamClient(cfg config.DataSourceConfig) (*StreamClient, error) {
	if cfg.StreamURL == "" {
		return nil, fmt.Errorf("data source %s has no stream URL configured", cfg.Name)
	}
	return NewStreamClient(cfg.StreamURL, cfg.APIKey, f.logger), nil
}
