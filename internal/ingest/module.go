package ingest

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/floristportal/internal/config"
)

// Module wires the normalization pipeline for dependency injection.
var Module = fx.Provide(
	newZoneMatcher,
	newDeliveryExtractor,
	newAddOnExtractor,
	NewNormalizer,
)

func newZoneMatcher(cfg *config.Config, logger *slog.Logger) (*ZoneMatcher, error) {
	if cfg.ZonesFile == "" {
		logger.Warn("no zone table configured, orders will not be zoned")
		return NewZoneMatcher(nil), nil
	}

	table, err := LoadZoneTable(cfg.ZonesFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("zone table not found, orders will not be zoned", slog.String("path", cfg.ZonesFile))
			return NewZoneMatcher(nil), nil
		}
		return nil, err
	}

	matcher := NewZoneMatcher(table)
	logger.Info("zone table loaded", slog.String("path", cfg.ZonesFile), slog.Int("rules", matcher.Len()))
	return matcher, nil
}

func newDeliveryExtractor(cfg *config.Config) (*DeliveryExtractor, error) {
	loc, err := time.LoadLocation(cfg.DeliveryTimezone)
	if err != nil {
		return nil, fmt.Errorf("load delivery timezone: %w", err)
	}
	return NewDeliveryExtractor(loc, time.Now), nil
}

func newAddOnExtractor() *AddOnExtractor {
	return NewAddOnExtractor(nil, nil, nil)
}
