package models

import "fmt"

// Category restricts a search to one entity type, or "all" for everything.
type Category string

const (
	CategoryAll     Category = "all"
	CategoryCards   Category = "cards"
	CategoryPlayers Category = "players"
	CategoryTeams   Category = "teams"
	CategorySeries  Category = "series"
)

// Includes reports whether results of the given entity type belong to
// this category.
func (c Category) Includes(t EntityType) bool {
	switch c {
	case CategoryAll:
		return true
	case CategoryCards:
		return t == EntityCard
	case CategoryPlayers:
		return t == EntityPlayer
	case CategoryTeams:
		return t == EntityTeam
	case CategorySeries:
		return t == EntitySeries
	}
	return false
}

// SearchQuery represents a single search request. Values are immutable
// after Validate; nothing about a query outlives its request.
type SearchQuery struct {
	Query    string   `json:"query"`
	Limit    int      `json:"limit,omitempty"`
	Category Category `json:"category,omitempty"`
}

// Validate normalizes the query's limit and category and rejects unknown
// category values. The upper limit bound is the caller's concern; only
// non-positive limits are defaulted here.
func (q *SearchQuery) Validate() error {
	if q.Limit <= 0 {
		q.Limit = 50
	}
	if q.Category == "" {
		q.Category = CategoryAll
	}
	switch q.Category {
	case CategoryAll, CategoryCards, CategoryPlayers, CategoryTeams, CategorySeries:
		return nil
	}
	return fmt.Errorf("unknown search category: %q", q.Category)
}
