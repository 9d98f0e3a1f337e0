package ranking

import (
	"sort"

	"github.com/cardfolio/searchd/internal/models"
)

// Ranker orders merged search results for presentation.
type Ranker struct{}

// NewRanker creates a new Ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank sorts results by relevance score descending, breaking ties by the
// fixed entity-type priority (card > player > team > series). The sort is
// stable so equally-ranked results keep their upstream strategy order.
func (r *Ranker) Rank(results []*models.SearchResult) []*models.SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].RelevanceScore != results[j].RelevanceScore {
			return results[i].RelevanceScore > results[j].RelevanceScore
		}
		return results[i].Type.Priority() > results[j].Type.Priority()
	})
	return results
}
