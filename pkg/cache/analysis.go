package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jordanlanch/clientintel/pkg/intelligence"
)

// ErrMiss is returned when a key is absent or its value is stale.
var ErrMiss = errors.New("cache miss")

const analysisKeyPrefix = "clientintel:analysis:"

// DefaultAnalysisTTL is how long a stored analysis counts as fresh.
const DefaultAnalysisTTL = time.Hour

// AnalysisCache stores the last computed analysis per client. Entries are
// overwritten wholesale, so concurrent writers for the same client only race
// on which identical-shaped snapshot wins.
type AnalysisCache struct {
	client *Client
	ttl    time.Duration
	now    func() time.Time
}

// NewAnalysisCache creates a snapshot cache with the given freshness window.
func NewAnalysisCache(client *Client, ttl time.Duration) *AnalysisCache {
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}
	return &AnalysisCache{client: client, ttl: ttl, now: time.Now}
}

// SetClock replaces the time source used for freshness checks.
func (c *AnalysisCache) SetClock(now func() time.Time) {
	c.now = now
}

func analysisKey(clientID int) string {
	return analysisKeyPrefix + strconv.Itoa(clientID)
}

// Put stores a snapshot of a.
func (c *AnalysisCache) Put(ctx context.Context, a *intelligence.Analysis) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}
	if err := c.client.Set(ctx, analysisKey(a.ClientID), data, c.ttl); err != nil {
		return fmt.Errorf("failed to store analysis for client %d: %w", a.ClientID, err)
	}
	return nil
}

// Get returns the fresh snapshot for clientID, or ErrMiss.
func (c *AnalysisCache) Get(ctx context.Context, clientID int) (*intelligence.Analysis, error) {
	raw, err := c.client.Get(ctx, analysisKey(clientID))
	if err != nil {
		return nil, err
	}
	a, err := decodeAnalysis(raw)
	if err != nil {
		return nil, err
	}
	if !c.fresh(a) {
		return nil, ErrMiss
	}
	return a, nil
}

// GetMany returns the fresh snapshots among ids, keyed by client id.
func (c *AnalysisCache) GetMany(ctx context.Context, ids []int) (map[int]*intelligence.Analysis, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = analysisKey(id)
	}

	values, err := c.client.GetMulti(ctx, keys...)
	if err != nil {
		return nil, err
	}

	out := make(map[int]*intelligence.Analysis, len(ids))
	for i, raw := range values {
		if raw == "" {
			continue
		}
		a, err := decodeAnalysis(raw)
		if err != nil || !c.fresh(a) {
			continue
		}
		out[ids[i]] = a
	}
	return out, nil
}

// Invalidate drops the snapshot for clientID.
func (c *AnalysisCache) Invalidate(ctx context.Context, clientID int) error {
	return c.client.Delete(ctx, analysisKey(clientID))
}

// InvalidateAll drops every stored snapshot and returns how many were removed.
func (c *AnalysisCache) InvalidateAll(ctx context.Context) (int, error) {
	return c.client.DeletePattern(ctx, analysisKeyPrefix+"*")
}

func (c *AnalysisCache) fresh(a *intelligence.Analysis) bool {
	return c.now().Sub(a.ComputedAt) < c.ttl
}

func decodeAnalysis(raw string) (*intelligence.Analysis, error) {
	var a intelligence.Analysis
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &a, nil
}
