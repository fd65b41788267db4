// internal/service/analysis_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/stockwise/internal/cache"
	"github.com/andresuchdata/stockwise/internal/domain"
	"github.com/andresuchdata/stockwise/internal/engine"
	"github.com/andresuchdata/stockwise/internal/repository"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ErrNoSnapshotStore is returned by snapshot queries when no database is
// configured.
var ErrNoSnapshotStore = errors.New("snapshot persistence is not configured")

// AnalysisService owns the loaded dataset and the latest computed results.
// A computation failure never leaves stale results visible: the result set is
// cleared and the error reported.
type AnalysisService struct {
	mu      sync.RWMutex
	dataset domain.Dataset
	results []domain.AnalysisResult

	cfg   domain.ServiceLevelConfig
	cache cache.AnalysisCache
	repo  repository.AnalysisRepository
}

// NewAnalysisService builds a service around cfg. cacheImpl may be nil; repo
// may be nil when snapshot persistence is not configured.
func NewAnalysisService(cfg domain.ServiceLevelConfig, cacheImpl cache.AnalysisCache, repo repository.AnalysisRepository) *AnalysisService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAnalysisCache()
	}
	return &AnalysisService{
		cfg:   cfg,
		cache: cacheImpl,
		repo:  repo,
	}
}

// LoadDataset replaces the current inputs. Results are cleared until the next
// Recompute.
func (s *AnalysisService) LoadDataset(ctx context.Context, dataset domain.Dataset) {
	s.mu.Lock()
	dataset.LoadedAt = time.Now()
	s.dataset = dataset
	s.results = nil
	s.mu.Unlock()

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("analysis: cache invalidation failed")
	}
}

// Recompute runs the full computation over the loaded dataset and swaps the
// result set atomically. On any failure the visible results become empty.
func (s *AnalysisService) Recompute(ctx context.Context) (err error) {
	s.mu.RLock()
	dataset := s.dataset
	s.mu.RUnlock()

	var results []domain.AnalysisResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("analysis: computation panicked")
				err = fmt.Errorf("computation failed: %v", r)
			}
		}()
		results = engine.Compute(ctx, dataset.Products, dataset.Transactions, dataset.PurchaseOrders, s.cfg)
	}()
	if err != nil {
		results = []domain.AnalysisResult{}
	}

	s.mu.Lock()
	s.results = results
	s.mu.Unlock()

	if cacheErr := s.cache.InvalidateAll(ctx); cacheErr != nil {
		log.Warn().Err(cacheErr).Msg("analysis: cache invalidation failed")
	}

	if err == nil && s.repo != nil {
		if runID, saveErr := s.repo.SaveSnapshot(ctx, results); saveErr != nil {
			log.Warn().Err(saveErr).Msg("analysis: snapshot persistence failed")
		} else {
			log.Info().Int64("run_id", runID).Int("items", len(results)).Msg("analysis: snapshot saved")
		}
	}

	return err
}

// Results returns one page of results matching filter, plus the total match
// count before pagination.
func (s *AnalysisService) Results(ctx context.Context, filter domain.ResultFilter) ([]domain.AnalysisResult, int, error) {
	s.mu.RLock()
	all := s.results
	s.mu.RUnlock()

	matched := filterResults(all, filter)
	total := len(matched)

	if cached, ok, err := s.cache.GetResults(ctx, filter); err == nil && ok {
		return cached, total, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analysis: cache get results failed")
	}

	page := paginate(matched, filter.Page, filter.PageSize)

	if err := s.cache.SetResults(ctx, filter, page); err != nil {
		log.Warn().Err(err).Msg("analysis: cache set results failed")
	}

	return page, total, nil
}

// Summary counts results per stock status, covering every status even when
// its count is zero.
func (s *AnalysisService) Summary(ctx context.Context) ([]domain.StatusSummary, error) {
	if cached, ok, err := s.cache.GetSummary(ctx); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("analysis: cache get summary failed")
	}

	s.mu.RLock()
	counts := make(map[domain.StockStatus]int)
	for _, r := range s.results {
		counts[r.Status]++
	}
	s.mu.RUnlock()

	summaries := make([]domain.StatusSummary, 0, len(domain.AllStockStatuses))
	for _, status := range domain.AllStockStatuses {
		summaries = append(summaries, domain.StatusSummary{Status: status, Count: counts[status]})
	}

	if err := s.cache.SetSummary(ctx, summaries); err != nil {
		log.Warn().Err(err).Msg("analysis: cache set summary failed")
	}

	return summaries, nil
}

// Runs lists persisted computation snapshots, newest first.
func (s *AnalysisService) Runs(ctx context.Context, limit int) ([]repository.AnalysisRun, error) {
	if s.repo == nil {
		return nil, ErrNoSnapshotStore
	}
	return s.repo.ListRuns(ctx, limit)
}

// LatestSnapshot returns the persisted results of the most recent run.
func (s *AnalysisService) LatestSnapshot(ctx context.Context) ([]domain.AnalysisResult, error) {
	if s.repo == nil {
		return nil, ErrNoSnapshotStore
	}
	return s.repo.LatestResults(ctx)
}

// Config returns the computation configuration in effect.
func (s *AnalysisService) Config() domain.ServiceLevelConfig {
	return s.cfg
}

// DatasetInfo reports the sizes of the loaded inputs.
func (s *AnalysisService) DatasetInfo() (products, transactions, purchaseOrders int, loadedAt time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dataset.Products), len(s.dataset.Transactions), len(s.dataset.PurchaseOrders), s.dataset.LoadedAt
}

func filterResults(results []domain.AnalysisResult, filter domain.ResultFilter) []domain.AnalysisResult {
	matched := make([]domain.AnalysisResult, 0, len(results))
	for _, r := range results {
		if !matchStatus(r.Status, filter.Statuses) {
			continue
		}
		if !matchBranch(r.Branch, filter.Branches) {
			continue
		}
		if !matchClass(r.Class, filter.Classes) {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

func matchStatus(status domain.StockStatus, wanted []domain.StockStatus) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if status == w {
			return true
		}
	}
	return false
}

func matchBranch(branch string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if strings.EqualFold(strings.TrimSpace(w), branch) {
			return true
		}
	}
	return false
}

func matchClass(class domain.ABCClass, wanted []domain.ABCClass) bool {
	if len(wanted) == 0 {
		return true
	}
	for _, w := range wanted {
		if class == w {
			return true
		}
	}
	return false
}

func paginate(results []domain.AnalysisResult, page, pageSize int) []domain.AnalysisResult {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * pageSize
	if start >= len(results) {
		return []domain.AnalysisResult{}
	}
	end := start + pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
