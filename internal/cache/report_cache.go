// Package cache stores computed analysis reports so repeated reads do not
// rerun the pipeline.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JonnyWalker81/healthjournal/backend/internal/logger"
	"github.com/JonnyWalker81/healthjournal/backend/internal/models"
)

// ReportCache holds at most one report per user
type ReportCache interface {
	Get(ctx context.Context, userID string) (*models.AnalysisReport, bool)
	Set(ctx context.Context, userID string, report *models.AnalysisReport)
	Invalidate(ctx context.Context, userID string) error
	Stats() Stats
}

// Stats tracks cache performance
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// HitRate returns hits as a percentage of lookups
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

type reportEntry struct {
	Report   *models.AnalysisReport `json:"report"`
	CachedAt time.Time              `json:"cached_at"`
}

// RedisReportCache implements ReportCache on Redis with a fixed TTL.
// Redis failures degrade to cache misses; they are logged, never returned
// from Get or Set.
type RedisReportCache struct {
	redis  *redis.Client
	ttl    time.Duration
	prefix string

	mu    sync.Mutex
	stats Stats
}

// NewRedisReportCache creates a new Redis-based report cache
func NewRedisReportCache(client *redis.Client, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{
		redis:  client,
		ttl:    ttl,
		prefix: "analysis_report:",
	}
}

func (c *RedisReportCache) key(userID string) string {
	return c.prefix + userID
}

// Get returns the cached report for userID
func (c *RedisReportCache) Get(ctx context.Context, userID string) (*models.AnalysisReport, bool) {
	data, err := c.redis.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Ctx(ctx).Warn("report cache read failed", logger.String("user_id", userID), logger.Err(err))
		}
		c.record(func(s *Stats) { s.Misses++ })
		return nil, false
	}

	var entry reportEntry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Report == nil {
		logger.Ctx(ctx).Warn("discarding unreadable cached report", logger.String("user_id", userID), logger.Err(err))
		c.record(func(s *Stats) { s.Misses++ })
		return nil, false
	}

	c.record(func(s *Stats) { s.Hits++ })
	return entry.Report, true
}

// Set stores report for userID with the cache TTL
func (c *RedisReportCache) Set(ctx context.Context, userID string, report *models.AnalysisReport) {
	data, err := json.Marshal(reportEntry{Report: report, CachedAt: time.Now()})
	if err != nil {
		logger.Ctx(ctx).Warn("failed to encode report for cache", logger.String("user_id", userID), logger.Err(err))
		return
	}

	if err := c.redis.Set(ctx, c.key(userID), data, c.ttl).Err(); err != nil {
		logger.Ctx(ctx).Warn("report cache write failed", logger.String("user_id", userID), logger.Err(err))
		return
	}

	c.record(func(s *Stats) { s.Sets++ })
	logger.Ctx(ctx).Debug("cached analysis report",
		logger.String("user_id", userID),
		logger.Int("insights", len(report.Insights)),
		logger.Duration("ttl", c.ttl),
	)
}

// Invalidate drops the cached report for userID
func (c *RedisReportCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.redis.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached report: %w", err)
	}
	return nil
}

// Stats returns a snapshot of the counters
func (c *RedisReportCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *RedisReportCache) record(update func(*Stats)) {
	c.mu.Lock()
	update(&c.stats)
	c.mu.Unlock()
}

// NopReportCache never stores anything. It is used when Redis is not configured.
type NopReportCache struct{}

func (NopReportCache) Get(context.Context, string) (*models.AnalysisReport, bool) { return nil, false }
func (NopReportCache) Set(context.Context, string, *models.AnalysisReport)         {}
func (NopReportCache) Invalidate(context.Context, string) error                    { return nil }
func (NopReportCache) Stats() Stats                                                { return Stats{} }
