package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andresuchdata/stockwise/internal/config"
	"github.com/andresuchdata/stockwise/internal/domain"
)

const (
	analysisResultsKeyPrefix = "analysis:results"
	analysisSummaryKey       = "analysis:summary"
	analysisScanBatchSize    = 100
)

// AnalysisCache caches filtered result pages and the status summary between
// recomputations.
type AnalysisCache interface {
	GetResults(ctx context.Context, filter domain.ResultFilter) ([]domain.AnalysisResult, bool, error)
	SetResults(ctx context.Context, filter domain.ResultFilter, results []domain.AnalysisResult) error
	GetSummary(ctx context.Context) ([]domain.StatusSummary, bool, error)
	SetSummary(ctx context.Context, summaries []domain.StatusSummary) error
	InvalidateAll(ctx context.Context) error
}

type redisAnalysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopAnalysisCache struct{}

func NewAnalysisCache(cfg config.CacheConfig) (AnalysisCache, error) {
	if !cfg.Enabled {
		return &noopAnalysisCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisAnalysisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopAnalysisCache() AnalysisCache {
	return &noopAnalysisCache{}
}

func (c *redisAnalysisCache) GetResults(ctx context.Context, filter domain.ResultFilter) ([]domain.AnalysisResult, bool, error) {
	key := buildResultsKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var results []domain.AnalysisResult
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, false, fmt.Errorf("decode analysis results cache: %w", err)
	}

	return results, true, nil
}

func (c *redisAnalysisCache) SetResults(ctx context.Context, filter domain.ResultFilter, results []domain.AnalysisResult) error {
	key := buildResultsKey(filter)
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("encode analysis results cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalysisCache) GetSummary(ctx context.Context) ([]domain.StatusSummary, bool, error) {
	payload, err := c.client.Get(ctx, analysisSummaryKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summaries []domain.StatusSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode analysis summary cache: %w", err)
	}

	return summaries, true, nil
}

func (c *redisAnalysisCache) SetSummary(ctx context.Context, summaries []domain.StatusSummary) error {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode analysis summary cache: %w", err)
	}

	if err := c.client.Set(ctx, analysisSummaryKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisAnalysisCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, analysisResultsKeyPrefix, analysisScanBatchSize); err != nil {
		return err
	}
	return c.client.Del(ctx, analysisSummaryKey).Err()
}

func (n *noopAnalysisCache) GetResults(ctx context.Context, filter domain.ResultFilter) ([]domain.AnalysisResult, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) SetResults(ctx context.Context, filter domain.ResultFilter, results []domain.AnalysisResult) error {
	return nil
}

func (n *noopAnalysisCache) GetSummary(ctx context.Context) ([]domain.StatusSummary, bool, error) {
	return nil, false, nil
}

func (n *noopAnalysisCache) SetSummary(ctx context.Context, summaries []domain.StatusSummary) error {
	return nil
}

func (n *noopAnalysisCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildResultsKey(filter domain.ResultFilter) string {
	return fmt.Sprintf("%s:%s", analysisResultsKeyPrefix, resultFilterHash(filter))
}

func resultFilterHash(filter domain.ResultFilter) string {
	parts := []string{}

	if len(filter.Statuses) > 0 {
		values := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			values = append(values, string(s))
		}
		parts = append(parts, "statuses="+joinStrings(values))
	}
	if len(filter.Branches) > 0 {
		parts = append(parts, "branches="+joinStrings(filter.Branches))
	}
	if len(filter.Classes) > 0 {
		values := make([]string, 0, len(filter.Classes))
		for _, c := range filter.Classes {
			values = append(values, string(c))
		}
		parts = append(parts, "classes="+joinStrings(values))
	}
	if filter.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", filter.Page))
	}
	if filter.PageSize > 0 {
		parts = append(parts, fmt.Sprintf("page_size=%d", filter.PageSize))
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinStrings(values []string) string {
	c := append([]string(nil), values...)
	for i := range c {
		c[i] = strings.TrimSpace(strings.ToLower(c[i]))
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
