// Package search provides the universal search engine: intent-driven
// strategy fan-out, result merging, and ranking over the card catalog.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardfolio/searchd/internal/config"
	"github.com/cardfolio/searchd/internal/models"
	"github.com/cardfolio/searchd/internal/ranking"
	"github.com/cardfolio/searchd/internal/storage"
)

// minQueryLength is the cheap short-circuit: queries shorter than this
// return empty without touching the store.
const minQueryLength = 2

// maxStrategyLimit bounds the per-strategy result headroom.
const maxStrategyLimit = 30

// Engine is the search orchestrator. It analyzes the query, dispatches the
// eligible strategies concurrently, and merges, dedupes, ranks, and
// truncates their output. Engines hold no per-request state and are safe
// for concurrent use.
type Engine struct {
	analyzer   *ranking.QueryAnalyzer
	ranker     *ranking.Ranker
	strategies strategySet
	logger     *zap.Logger

	mu      sync.RWMutex
	timeout time.Duration
}

// NewEngine creates an engine over the given store.
func NewEngine(store storage.Storage, cfg *config.SearchConfig, logger *zap.Logger) *Engine {
	return &Engine{
		analyzer: ranking.NewQueryAnalyzer(),
		ranker:   ranking.NewRanker(),
		strategies: strategySet{
			cardNumberPlayer: &cardNumberPlayerStrategy{store: store},
			cardNumber:       &cardNumberStrategy{store: store},
			cardType:         &cardTypeStrategy{store: store},
			player:           &playerStrategy{store: store},
			team:             &teamStrategy{store: store},
			series:           &seriesStrategy{store: store},
		},
		logger:  logger,
		timeout: cfg.StrategyTimeout(),
	}
}

// SetStrategyTimeout adjusts the joined-wait deadline. Used by config
// hot-reload; safe to call while searches are in flight.
func (e *Engine) SetStrategyTimeout(d time.Duration) {
	e.mu.Lock()
	e.timeout = d
	e.mu.Unlock()
}

func (e *Engine) strategyTimeout() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.timeout
}

// strategyOutcome is one strategy's contribution, slotted by dispatch
// order so merging stays deterministic under concurrent completion.
type strategyOutcome struct {
	index   int
	results []*models.SearchResult
	err     error
}

// Search runs the full pipeline and returns the ranked, truncated results.
// Individual strategy failures are logged and contribute nothing; only a
// store that is unreachable across the board surfaces as an error.
func (e *Engine) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()
	if err := query.Validate(); err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(query.Query)
	response := &models.SearchResponse{
		Query:   trimmed,
		Results: make([]*models.SearchResult, 0),
	}
	if utf8.RuneCountInString(trimmed) < minQueryLength {
		response.QueryTime = time.Since(start).Milliseconds()
		return response, nil
	}

	searchID := uuid.NewString()
	intent := e.analyzer.Analyze(trimmed)
	strategies := e.strategies.strategiesFor(query.Category, intent)
	e.logger.Debug("dispatching search",
		zap.String("search_id", searchID),
		zap.String("query", trimmed),
		zap.String("category", string(query.Category)),
		zap.Int("strategies", len(strategies)),
		zap.Bool("card_number", intent.HasCardNumber()),
		zap.Bool("card_number_with_player", intent.CardNumberWithPlayer),
		zap.Strings("card_types", intent.CardTypes.Types()),
	)

	merged := e.runStrategies(ctx, strategies, &Request{
		Query:  trimmed,
		Intent: intent,
		Limit:  strategyLimit(query.Limit),
	}, searchID)
	if merged == nil {
		return nil, fmt.Errorf("search %s: %w", searchID, storage.ErrUnavailable)
	}

	merged = Dedupe(merged)
	merged = e.ranker.Rank(merged)
	if len(merged) > query.Limit {
		merged = merged[:query.Limit]
	}

	response.Results = merged
	response.TotalResults = len(merged)
	response.QueryTime = time.Since(start).Milliseconds()
	return response, nil
}

// runStrategies fans the strategies out concurrently and joins them under
// the engine deadline. Late strategies are abandoned: their context is
// canceled and whatever completed so far is used. Returns nil only when
// every strategy failed with an unreachable store.
func (e *Engine) runStrategies(ctx context.Context, strategies []Strategy, req *Request, searchID string) []*models.SearchResult {
	if len(strategies) == 0 {
		return []*models.SearchResult{}
	}

	runCtx, cancel := context.WithTimeout(ctx, e.strategyTimeout())
	defer cancel()

	outcomes := make(chan strategyOutcome, len(strategies))
	for i, s := range strategies {
		go func(i int, s Strategy) {
			results, err := s.Run(runCtx, req)
			outcomes <- strategyOutcome{index: i, results: results, err: err}
		}(i, s)
	}

	slots := make([][]*models.SearchResult, len(strategies))
	failures, unavailable := 0, 0
	collected := 0
join:
	for collected < len(strategies) {
		select {
		case out := <-outcomes:
			collected++
			if out.err != nil {
				failures++
				if errors.Is(out.err, storage.ErrUnavailable) {
					unavailable++
				}
				e.logger.Warn("strategy failed",
					zap.String("search_id", searchID),
					zap.String("strategy", strategies[out.index].Name()),
					zap.Error(out.err),
				)
				continue
			}
			slots[out.index] = out.results
		case <-runCtx.Done():
			e.logger.Warn("strategy deadline exceeded",
				zap.String("search_id", searchID),
				zap.Int("pending", len(strategies)-collected),
			)
			break join
		}
	}

	if failures == len(strategies) && unavailable > 0 {
		return nil
	}

	// Concatenate in dispatch order so dedup keeps the intended priority.
	merged := make([]*models.SearchResult, 0, len(strategies)*req.Limit/2)
	for _, results := range slots {
		merged = append(merged, results...)
	}
	return merged
}

// strategyLimit derives the per-strategy headroom from the requested
// limit: twice the request, capped, so the ranker can discard duplicates
// without starving any entity type.
func strategyLimit(limit int) int {
	headroom := 2 * limit
	if headroom > maxStrategyLimit {
		return maxStrategyLimit
	}
	return headroom
}
