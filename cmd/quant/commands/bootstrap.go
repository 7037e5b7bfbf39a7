package commands

import (
	"fmt"

	"github.com/wonny/geflip/internal/collector"
	"github.com/wonny/geflip/internal/strategyconfig"
	"github.com/wonny/geflip/pkg/config"
	"github.com/wonny/geflip/pkg/httputil"
	"github.com/wonny/geflip/pkg/logger"
	"github.com/wonny/geflip/pkg/redis"
)

// redisPrefix namespaces every key geflip writes
const redisPrefix = "geflip"

// deps holds the shared infrastructure of one command invocation
type deps struct {
	cfg   *config.Config
	log   *logger.Logger
	redis *redis.Client
}

// loadConfig applies the global flags on top of the env configuration
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}

// bootstrap loads config and wires logger + redis
func bootstrap() (*deps, error) {
	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to redis (REDIS_ENABLED=false → no-op client)
	rc, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &deps{cfg: cfg, log: log, redis: rc}, nil
}

// Close releases the redis connection
func (d *deps) Close() {
	if err := d.redis.Close(); err != nil {
		d.log.WithError(err).Warn("Failed to close redis")
	}
}

// newCollector builds the snapshot collector with shared pacing
func (d *deps) newCollector() *collector.Collector {
	limiter := redis.NewRateLimiter(d.redis, redisPrefix)
	client := httputil.New(d.cfg, d.log).
		WithRateLimiter(limiter, redis.PricesRateLimit(d.cfg.Prices.RatePerSec))
	cache := redis.NewCache(d.redis, redisPrefix)

	return collector.NewCollector(client, cache, collector.ConfigFrom(d.cfg), d.log)
}

// retentionWarnings logs and returns retention problems against the configured strategy
func (d *deps) retentionWarnings() []strategyconfig.Warning {
	strategy, err := strategyconfig.LoadOrDefault(d.cfg.StrategyFile)
	if err != nil {
		d.log.WithError(err).Warn("Skipping retention check")
		return nil
	}

	warnings := strategyconfig.WarnRetention(strategy, d.cfg.Retention.HourlyKeep)
	for _, w := range warnings {
		d.log.WithField("code", w.Code).Warn(w.Message)
	}
	return warnings
}
