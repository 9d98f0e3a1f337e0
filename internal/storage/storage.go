// Package storage defines the read-only catalog lookup interface used by
// the search strategies, with Postgres and SQLite implementations.
package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/cardfolio/searchd/internal/models"
	"github.com/cardfolio/searchd/internal/ranking"
)

// ErrUnavailable indicates the catalog store cannot be reached at all, as
// opposed to a single query failing. Callers map it to a degraded
// "search temporarily unavailable" response.
var ErrUnavailable = errors.New("catalog store unavailable")

// PlayerNameQuery carries the name variants a player lookup should match.
// Term is always set; First/Last are the two-token split tried in addition
// when the query has multiple words.
type PlayerNameQuery struct {
	Term  string
	First string
	Last  string
}

// Split derives a PlayerNameQuery from raw query text, splitting the first
// token off as a candidate first name when two or more tokens are present.
func Split(term string) PlayerNameQuery {
	q := PlayerNameQuery{Term: strings.TrimSpace(term)}
	if fields := strings.Fields(q.Term); len(fields) >= 2 {
		q.First = fields[0]
		q.Last = strings.Join(fields[1:], " ")
	}
	return q
}

// Counts holds per-entity row counts for the status endpoint.
type Counts struct {
	Cards   int64 `json:"cards"`
	Players int64 `json:"players"`
	Teams   int64 `json:"teams"`
	Series  int64 `json:"series"`
}

// Storage is the read-only lookup surface the search engine depends on.
// All substring matching is case-insensitive, all user terms are bound
// parameters, and implementations must respect the given row limit.
type Storage interface {
	// FindCardsByNumber returns cards whose number contains number.
	FindCardsByNumber(ctx context.Context, number string, limit int) ([]*models.Card, error)
	// FindCardsByNumberAndPlayer returns cards whose number contains number
	// and whose player's first, last, or nickname contains playerName.
	FindCardsByNumberAndPlayer(ctx context.Context, number, playerName string, limit int) ([]*models.Card, error)
	// FindCardsByType returns cards having any of the filter's type flags,
	// optionally narrowed by a player-name substring.
	FindCardsByType(ctx context.Context, filter ranking.CardTypeFilter, playerName string, limit int) ([]*models.Card, error)
	// FindPlayersByName matches the name variants in q, ordered by card
	// count descending.
	FindPlayersByName(ctx context.Context, q PlayerNameQuery, limit int) ([]*models.Player, error)
	// FindTeams matches team name, city, mascot, or abbreviation.
	FindTeams(ctx context.Context, term string, limit int) ([]*models.Team, error)
	// FindSeries matches series name, set name, or manufacturer.
	FindSeries(ctx context.Context, term string, limit int) ([]*models.Series, error)

	// CountEntities returns row counts for the status endpoint.
	CountEntities(ctx context.Context) (Counts, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// escapeLike neutralizes LIKE metacharacters in a user term so it matches
// literally as a substring. Both backends use backslash as the escape
// character.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// splitAggregatedNames splits a "Name One, Name Two" aggregate produced by
// string_agg/group_concat into a slice, dropping empties.
func splitAggregatedNames(agg string) []string {
	if agg == "" {
		return nil
	}
	parts := strings.Split(agg, ", ")
	names := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}

// typeConditions translates a card-type filter into SQL conditions joined
// with OR. Only fixed column expressions are produced; user text never
// passes through here.
func typeConditions(filter ranking.CardTypeFilter, boolTrue string) []string {
	var conds []string
	if filter.Rookie {
		conds = append(conds, "c.is_rookie = "+boolTrue)
	}
	if filter.Autograph {
		conds = append(conds, "c.is_autograph = "+boolTrue)
	}
	if filter.Relic {
		conds = append(conds, "c.is_relic = "+boolTrue)
	}
	if filter.Parallel {
		conds = append(conds, "(c.parallel_type IS NOT NULL AND c.parallel_type <> '')")
	}
	return conds
}
