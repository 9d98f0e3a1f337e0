package search

import (
	"context"
	"strconv"
	"strings"

	"github.com/cardfolio/searchd/internal/models"
	"github.com/cardfolio/searchd/internal/ranking"
	"github.com/cardfolio/searchd/internal/storage"
)

// Base relevance scores for the card strategies. Player and team scores
// are computed per entity by the ranking scorers.
const (
	scoreCardNumberPlayer  = 95.0
	scoreCardNumberExact   = 100.0
	scoreCardNumberPartial = 80.0
	scoreCardType          = 85.0
)

// Request bundles the per-request inputs shared by all strategies.
type Request struct {
	// Query is the trimmed original query text.
	Query string
	// Intent is the analyzer output for Query.
	Intent *ranking.DetectedIntent
	// Limit is the strategy-local result cap, already derived from the
	// requested limit.
	Limit int
}

// Strategy is one independent retrieval unit specialized for an entity
// type or query shape. Strategies are read-only and safe to run
// concurrently; errors are handled at the engine boundary.
type Strategy interface {
	Name() string
	Run(ctx context.Context, req *Request) ([]*models.SearchResult, error)
}

// cardNumberPlayerStrategy finds cards matching both a card number and a
// player name, e.g. "108 bieber".
type cardNumberPlayerStrategy struct {
	store storage.Storage
}

func (s *cardNumberPlayerStrategy) Name() string { return "card_number_player" }

func (s *cardNumberPlayerStrategy) Run(ctx context.Context, req *Request) ([]*models.SearchResult, error) {
	cards, err := s.store.FindCardsByNumberAndPlayer(ctx, req.Intent.CardNumber, req.Intent.PlayerNameRemainder, req.Limit)
	if err != nil {
		return nil, err
	}
	results := make([]*models.SearchResult, 0, len(cards))
	for _, c := range cards {
		results = append(results, cardResult(c, scoreCardNumberPlayer))
	}
	return results, nil
}

// cardNumberStrategy finds cards by number alone. Exact number matches
// outrank partial ones.
type cardNumberStrategy struct {
	store storage.Storage
}

func (s *cardNumberStrategy) Name() string { return "card_number" }

func (s *cardNumberStrategy) Run(ctx context.Context, req *Request) ([]*models.SearchResult, error) {
	cards, err := s.store.FindCardsByNumber(ctx, req.Intent.CardNumber, req.Limit)
	if err != nil {
		return nil, err
	}
	results := make([]*models.SearchResult, 0, len(cards))
	for _, c := range cards {
		score := scoreCardNumberPartial
		if strings.EqualFold(c.CardNumber, req.Intent.CardNumber) {
			score = scoreCardNumberExact
		}
		results = append(results, cardResult(c, score))
	}
	return results, nil
}

// cardTypeStrategy finds cards by the detected type flags (OR semantics),
// optionally narrowed by the player-name remainder.
type cardTypeStrategy struct {
	store storage.Storage
}

func (s *cardTypeStrategy) Name() string { return "card_type" }

func (s *cardTypeStrategy) Run(ctx context.Context, req *Request) ([]*models.SearchResult, error) {
	cards, err := s.store.FindCardsByType(ctx, req.Intent.CardTypes, req.Intent.PlayerNameRemainder, req.Limit)
	if err != nil {
		return nil, err
	}
	results := make([]*models.SearchResult, 0, len(cards))
	for _, c := range cards {
		results = append(results, cardResult(c, scoreCardType))
	}
	return results, nil
}

// playerStrategy finds players by name substring over every name variant.
type playerStrategy struct {
	store storage.Storage
}

func (s *playerStrategy) Name() string { return "player" }

func (s *playerStrategy) Run(ctx context.Context, req *Request) ([]*models.SearchResult, error) {
	players, err := s.store.FindPlayersByName(ctx, storage.Split(req.Query), req.Limit)
	if err != nil {
		return nil, err
	}
	results := make([]*models.SearchResult, 0, len(players))
	for _, p := range players {
		results = append(results, &models.SearchResult{
			Type:           models.EntityPlayer,
			ID:             strconv.FormatInt(p.ID, 10),
			Title:          p.FullName(),
			RelevanceScore: ranking.ScorePlayer(p, req.Query),
			Data:           p,
		})
	}
	return results, nil
}

// teamStrategy finds teams by name, city, mascot, or abbreviation.
type teamStrategy struct {
	store storage.Storage
}

func (s *teamStrategy) Name() string { return "team" }

func (s *teamStrategy) Run(ctx context.Context, req *Request) ([]*models.SearchResult, error) {
	teams, err := s.store.FindTeams(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, err
	}
	results := make([]*models.SearchResult, 0, len(teams))
	for _, t := range teams {
		results = append(results, &models.SearchResult{
			Type:           models.EntityTeam,
			ID:             strconv.FormatInt(t.ID, 10),
			Title:          strings.TrimSpace(t.City + " " + t.Name),
			RelevanceScore: ranking.ScoreTeam(t, req.Query),
			Data:           t,
		})
	}
	return results, nil
}

// seriesStrategy finds series by series, set, or manufacturer name.
type seriesStrategy struct {
	store storage.Storage
}

func (s *seriesStrategy) Name() string { return "series" }

func (s *seriesStrategy) Run(ctx context.Context, req *Request) ([]*models.SearchResult, error) {
	series, err := s.store.FindSeries(ctx, req.Query, req.Limit)
	if err != nil {
		return nil, err
	}
	results := make([]*models.SearchResult, 0, len(series))
	for _, sr := range series {
		results = append(results, &models.SearchResult{
			Type:           models.EntitySeries,
			ID:             strconv.FormatInt(sr.ID, 10),
			Title:          sr.Name,
			RelevanceScore: ranking.SeriesScore,
			Data:           sr,
		})
	}
	return results, nil
}

func cardResult(c *models.Card, score float64) *models.SearchResult {
	return &models.SearchResult{
		Type:           models.EntityCard,
		ID:             strconv.FormatInt(c.ID, 10),
		Title:          c.DisplayTitle(),
		RelevanceScore: score,
		Data:           c,
	}
}
