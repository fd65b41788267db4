package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/stockwise/internal/domain"
)

// AnalysisRun identifies one persisted computation snapshot.
type AnalysisRun struct {
	ID        int64     `db:"id" json:"id"`
	RunAt     time.Time `db:"run_at" json:"run_at"`
	ItemCount int       `db:"item_count" json:"item_count"`
}

// AnalysisRepository persists computation snapshots. Persistence is optional;
// callers hold a nil repository when no database is configured.
type AnalysisRepository interface {
	SaveSnapshot(ctx context.Context, results []domain.AnalysisResult) (int64, error)
	LatestResults(ctx context.Context) ([]domain.AnalysisResult, error)
	ListRuns(ctx context.Context, limit int) ([]AnalysisRun, error)
}
