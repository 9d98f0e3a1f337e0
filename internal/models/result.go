package models

// EntityType discriminates the four searchable record kinds. Every
// SearchResult carries one so downstream stages can handle all cases
// exhaustively instead of sniffing payload shapes.
type EntityType string

const (
	EntityCard   EntityType = "card"
	EntityPlayer EntityType = "player"
	EntityTeam   EntityType = "team"
	EntitySeries EntityType = "series"
)

// Priority returns the fixed tie-break rank used when relevance scores
// are equal: card > player > team > series.
func (t EntityType) Priority() int {
	switch t {
	case EntityCard:
		return 4
	case EntityPlayer:
		return 3
	case EntityTeam:
		return 2
	case EntitySeries:
		return 1
	}
	return 0
}

// SearchResult is a single ranked hit. ID is always the stringified store
// identifier; Data holds the entity record (Card, Player, Team, or Series)
// and is opaque to dedup and ranking.
type SearchResult struct {
	Type           EntityType `json:"type"`
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Subtitle       *string    `json:"subtitle"`
	Description    *string    `json:"description"`
	RelevanceScore float64    `json:"relevanceScore"`
	Data           any        `json:"data"`
}

// ResultKey identifies a result for deduplication.
type ResultKey struct {
	Type EntityType
	ID   string
}

// Key returns the result's (type, id) identity.
func (r *SearchResult) Key() ResultKey {
	return ResultKey{Type: r.Type, ID: r.ID}
}

// SearchResponse is the response for a search request.
type SearchResponse struct {
	Query        string          `json:"query"`
	Results      []*SearchResult `json:"results"`
	TotalResults int             `json:"totalResults"`
	QueryTime    int64           `json:"query_time_ms"`
}
