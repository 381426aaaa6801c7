package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"attribution/internal/models"
)

// DefaultTTL is how long a computed attribution table is served from cache.
const DefaultTTL = 10 * time.Minute

// Connect parses a Redis URL, applies the password override and verifies the connection.
func Connect(redisURL, redisPassword string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if redisPassword != "" {
		opt.Password = redisPassword
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// ReportKey is the cache key of an attribution request. Every filter the
// event reads apply is part of the key, agency included.
func ReportKey(req *models.AttributionRequest) string {
	return fmt.Sprintf("traffic-sources:%s:%s:%s:%s:%s:%d",
		req.AgencyID,
		req.AdvertiserID,
		req.CampaignID,
		req.Start.Format(models.DateLayout),
		req.End.Format(models.DateLayout),
		req.MinVisits,
	)
}

// ResultCache stores computed attribution reports in Redis with a TTL.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewResultCache creates a result cache over an existing client.
func NewResultCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "result_cache"),
	}
}

// Get returns the cached report for req. A miss returns nil with no error.
func (c *ResultCache) Get(ctx context.Context, req *models.AttributionRequest) (*models.AttributionReport, error) {
	key := ReportKey(req)

	jsonBytes, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis GET failed: %w", err)
	}

	var report models.AttributionReport
	if err := json.Unmarshal(jsonBytes, &report); err != nil {
		return nil, fmt.Errorf("json unmarshal failed: %w", err)
	}

	c.logger.Debug("report_retrieved",
		"cache_key", key,
		"rows", len(report.Rows),
	)
	return &report, nil
}

// Set stores report under req's key.
func (c *ResultCache) Set(ctx context.Context, req *models.AttributionRequest, report *models.AttributionReport) error {
	startTime := time.Now()
	key := ReportKey(req)

	jsonBytes, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("json marshal failed: %w", err)
	}

	if err := c.client.Set(ctx, key, jsonBytes, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis SET failed: %w", err)
	}

	c.logger.Info("report_cached",
		"cache_key", key,
		"ttl_sec", c.ttl.Seconds(),
		"size_bytes", len(jsonBytes),
		"latency_ms", time.Since(startTime).Milliseconds(),
	)
	return nil
}

// Close closes the Redis connection.
func (c *ResultCache) Close() error {
	return c.client.Close()
}
