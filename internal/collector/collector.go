package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/geflip/internal/s0_snapshot"
	"github.com/wonny/geflip/pkg/config"
	"github.com/wonny/geflip/pkg/httputil"
	"github.com/wonny/geflip/pkg/logger"
	"github.com/wonny/geflip/pkg/redis"
)

// Price API endpoints, relative to the base URL
const (
	EndpointLatest     = "latest"
	EndpointHourly     = "1h"
	EndpointMapping    = "mapping"
	EndpointFiveMinute = "5m"
)

// Collector fetches price snapshots and writes them where the loader reads them
// ⭐ SSOT: 스냅샷 수집/파일 기록은 이 패키지에서만
type Collector struct {
	client *httputil.Client
	cache  *redis.Cache
	config Config
	now    func() time.Time
	logger *logger.Logger
}

// Config holds collector configuration
type Config struct {
	BaseURL       string
	DataDir       string
	LogDir        string
	MappingMaxAge time.Duration
	HourlyKeep    int // 보관할 1h 파일 수
	LogKeepDays   int // 보관할 일별 jsonl 수 (오늘 포함)
}

// ConfigFrom maps the environment configuration onto the collector
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		BaseURL:       cfg.Prices.BaseURL,
		DataDir:       cfg.DataDir,
		LogDir:        cfg.Retention.LogDir,
		MappingMaxAge: cfg.Retention.MappingMaxAge,
		HourlyKeep:    cfg.Retention.HourlyKeep,
		LogKeepDays:   cfg.Retention.LogKeepDays,
	}
}

// Result describes one collection
type Result struct {
	Endpoint string `json:"endpoint"`
	Path     string `json:"path,omitempty"`
	Items    int    `json:"items"`
	Bytes    int    `json:"bytes"`
	Skipped  bool   `json:"skipped,omitempty"`
}

// NewCollector creates a new Collector instance
func NewCollector(client *httputil.Client, cache *redis.Cache, cfg Config, log *logger.Logger) *Collector {
	return &Collector{
		client: client,
		cache:  cache,
		config: cfg,
		now:    time.Now,
		logger: log.Module("collector"),
	}
}

// Config returns the collector configuration
func (c *Collector) Config() Config {
	return c.config
}

func (c *Collector) url(endpoint string) string {
	return strings.TrimRight(c.config.BaseURL, "/") + "/" + endpoint
}

func (c *Collector) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	body, err := c.client.GetBytes(ctx, c.url(endpoint))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	return body, nil
}

// CollectLatest downloads instant quotes into latest.json
func (c *Collector) CollectLatest(ctx context.Context) (*Result, error) {
	body, err := c.fetch(ctx, EndpointLatest)
	if err != nil {
		return nil, err
	}

	quotes, err := s0_snapshot.DecodeLatest(c.url(EndpointLatest), body)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(c.config.DataDir, s0_snapshot.LatestFile)
	if err := writeAtomic(path, body); err != nil {
		return nil, err
	}

	return c.done(ctx, &Result{Endpoint: EndpointLatest, Path: path, Items: len(quotes), Bytes: len(body)}), nil
}

// CollectHourly downloads the current hourly window into 1h-<timestamp>.json
// The payload timestamp names the file; without one the current hour is used.
func (c *Collector) CollectHourly(ctx context.Context) (*Result, error) {
	body, err := c.fetch(ctx, EndpointHourly)
	if err != nil {
		return nil, err
	}

	ts, ok := peekTimestamp(body)
	if !ok {
		ts = c.now().UTC().Truncate(time.Hour).Unix()
	}

	snapshot, err := s0_snapshot.DecodeHourly(c.url(EndpointHourly), ts, body)
	if err != nil {
		return nil, err
	}

	// 같은 시간대 파일은 덮어씀
	path := filepath.Join(c.config.DataDir, s0_snapshot.HourlyFileName(ts))
	if err := writeAtomic(path, body); err != nil {
		return nil, err
	}

	return c.done(ctx, &Result{Endpoint: EndpointHourly, Path: path, Items: len(snapshot.Windows), Bytes: len(body)}), nil
}

// CollectMapping refreshes mapping.json when it is older than MappingMaxAge or force is set
func (c *Collector) CollectMapping(ctx context.Context, force bool) (*Result, error) {
	path := filepath.Join(c.config.DataDir, s0_snapshot.MappingFile)

	if !force {
		fresh, err := c.mappingFresh(ctx, path)
		if err != nil {
			return nil, err
		}
		if fresh {
			c.logger.WithField("path", path).Debug("Mapping is fresh, skipping refresh")
			return &Result{Endpoint: EndpointMapping, Path: path, Skipped: true}, nil
		}
	}

	body, err := c.fetch(ctx, EndpointMapping)
	if err != nil {
		return nil, err
	}

	mapping, err := s0_snapshot.DecodeMapping(c.url(EndpointMapping), body)
	if err != nil {
		return nil, err
	}

	if err := writeAtomic(path, body); err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, redis.MappingRefreshKey(), c.now(), c.config.MappingMaxAge); err != nil {
		c.logger.WithError(err).Warn("Failed to record mapping refresh")
	}

	return c.done(ctx, &Result{Endpoint: EndpointMapping, Path: path, Items: len(mapping), Bytes: len(body)}), nil
}

// AppendLog appends the latest 5-minute snapshot as one line of <LogDir>/<YYYY-MM-DD>.jsonl
func (c *Collector) AppendLog(ctx context.Context) (*Result, error) {
	body, err := c.fetch(ctx, EndpointFiveMinute)
	if err != nil {
		return nil, err
	}

	// 5m 응답은 1h 와 같은 형태
	snapshot, err := s0_snapshot.DecodeHourly(c.url(EndpointFiveMinute), 0, body)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(c.config.LogDir, LogFileName(c.now()))
	n, err := appendLine(path, body)
	if err != nil {
		return nil, err
	}

	return c.done(ctx, &Result{Endpoint: EndpointFiveMinute, Path: path, Items: len(snapshot.Windows), Bytes: n}), nil
}

// CollectAll runs every collection concurrently; the first failure cancels the rest
func (c *Collector) CollectAll(ctx context.Context, forceMapping bool) ([]Result, error) {
	results := make([]Result, 4)

	g, ctx := errgroup.WithContext(ctx)
	run := func(i int, fn func(context.Context) (*Result, error)) {
		g.Go(func() error {
			res, err := fn(ctx)
			if err != nil {
				return err
			}
			results[i] = *res
			return nil
		})
	}

	run(0, c.CollectLatest)
	run(1, c.CollectHourly)
	run(2, func(ctx context.Context) (*Result, error) { return c.CollectMapping(ctx, forceMapping) })
	run(3, c.AppendLog)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.WithField("endpoints", len(results)).Info("Collection completed")

	return results, nil
}

// LastCollected returns when an endpoint was last collected (Redis only)
func (c *Collector) LastCollected(ctx context.Context, endpoint string) (time.Time, bool, error) {
	var at time.Time
	found, err := c.cache.Get(ctx, redis.SnapshotKey(endpoint), &at)
	if err != nil {
		return time.Time{}, false, err
	}
	return at, found, nil
}

// done records the collection marker and logs the result
func (c *Collector) done(ctx context.Context, res *Result) *Result {
	if err := c.cache.Set(ctx, redis.SnapshotKey(res.Endpoint), c.now(), redis.TTLWeek); err != nil {
		c.logger.WithError(err).WithField("endpoint", res.Endpoint).Warn("Failed to record collection marker")
	}

	c.logger.WithFields(map[string]interface{}{
		"endpoint": res.Endpoint,
		"path":     res.Path,
		"items":    res.Items,
		"bytes":    res.Bytes,
	}).Info("Snapshot collected")

	return res
}

// mappingFresh checks the Redis marker when enabled, the file mtime otherwise
func (c *Collector) mappingFresh(ctx context.Context, path string) (bool, error) {
	if c.config.MappingMaxAge <= 0 {
		return false, nil
	}

	if c.cache.Enabled() {
		var refreshedAt time.Time
		found, err := c.cache.Get(ctx, redis.MappingRefreshKey(), &refreshedAt)
		if err != nil {
			return false, err
		}
		if found && fileExists(path) {
			return c.now().Sub(refreshedAt) < c.config.MappingMaxAge, nil
		}
		return false, nil
	}

	modTime, ok := fileModTime(path)
	if !ok {
		return false, nil
	}
	return c.now().Sub(modTime) < c.config.MappingMaxAge, nil
}

// peekTimestamp reads the top-level "timestamp" of a 1h payload
func peekTimestamp(body []byte) (int64, bool) {
	var head struct {
		Timestamp *int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(body, &head); err != nil || head.Timestamp == nil {
		return 0, false
	}
	return *head.Timestamp, true
}
