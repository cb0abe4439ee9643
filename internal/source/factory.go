package source

import (
	"fmt"
	"log/slog"

	"kindra/internal/source/memory"
	"kindra/internal/source/rest"
)

// New builds the fetch adapter selected by the config.
func New(cfg Config, logger *slog.Logger) (Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Kind {
	case KindREST:
		client, err := rest.NewClient(cfg.BaseURL, cfg.ServiceToken, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize rest source: %w", err)
		}
		logger.Info("Initialized rest source", "base_url", cfg.BaseURL)
		return client, nil
	case KindMemory:
		logger.Info("Initialized memory source", "data_directory", cfg.DataDirectory)
		return memory.New(cfg.DataDirectory), nil
	default:
		return nil, fmt.Errorf("unsupported source kind: %q", cfg.Kind)
	}
}
