package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/clientintel/pkg/intelligence"
	"github.com/jordanlanch/clientintel/pkg/logger"
	"github.com/jordanlanch/clientintel/pkg/metrics"
	"github.com/jordanlanch/clientintel/pkg/models"
)

// ClientLister loads clients with their history by status.
type ClientLister interface {
	ListByStatuses(ctx context.Context, statuses []models.Status) ([]models.Client, error)
}

// SnapshotWriter persists computed analyses.
type SnapshotWriter interface {
	Put(ctx context.Context, a *intelligence.Analysis) error
	InvalidateAll(ctx context.Context) (int, error)
}

// RecomputeResult summarizes one bulk recompute.
type RecomputeResult struct {
	Computed int `json:"computed"`
	Errors   int `json:"errors"`
	Total    int `json:"total"`
	Cleared  int `json:"cleared"`
}

// Recomputer refreshes the stored analysis of every client in an active status.
type Recomputer struct {
	clients   ClientLister
	engine    *intelligence.Service
	snapshots SnapshotWriter
	metrics   *metrics.Metrics
	logger    logger.Logger
}

// NewRecomputer creates a recomputer. m may be nil.
func NewRecomputer(clients ClientLister, engine *intelligence.Service, snapshots SnapshotWriter, m *metrics.Metrics, log logger.Logger) *Recomputer {
	if log == nil {
		log = logger.Discard()
	}
	return &Recomputer{
		clients:   clients,
		engine:    engine,
		snapshots: snapshots,
		metrics:   m,
		logger:    log,
	}
}

// RunOnce drops every stored snapshot, then analyzes each active client
// against a single "now" and stores the results. Snapshots of clients that
// left the active set do not survive a run. A failing client is counted and
// skipped; only a failure to load the clients aborts the run.
func (r *Recomputer) RunOnce(ctx context.Context) (RecomputeResult, error) {
	start := time.Now()

	clients, err := r.clients.ListByStatuses(ctx, r.engine.Config().ActiveStatuses)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("failed to load active clients: %w", err)
	}

	now := r.engine.Now()
	res := RecomputeResult{Total: len(clients)}
	if res.Cleared, err = r.snapshots.InvalidateAll(ctx); err != nil {
		r.logger.Warn("failed to clear snapshots before recompute", "error", err)
	}
	for i := range clients {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		a, err := r.engine.AnalyzeAt(&clients[i], now)
		if err == nil {
			err = r.snapshots.Put(ctx, a)
		}
		if err != nil {
			res.Errors++
			r.logger.Warn("recompute failed for client", "client_id", clients[i].ID, "error", err)
			continue
		}
		res.Computed++
		if r.metrics != nil {
			r.metrics.RecordAnalysis(string(a.Disposition.Category))
		}
	}

	if r.metrics != nil {
		r.metrics.RecordRecompute(res.Computed, res.Errors, time.Since(start))
	}
	r.logger.Info("recompute finished",
		"computed", res.Computed,
		"errors", res.Errors,
		"total", res.Total,
		"cleared", res.Cleared,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
