package search

import "github.com/cardfolio/searchd/internal/models"

// Dedupe removes results sharing a (type, id) key, keeping the first
// occurrence. Order is preserved: strategies are concatenated in intended
// priority order upstream, so first-seen wins regardless of score.
func Dedupe(results []*models.SearchResult) []*models.SearchResult {
	seen := make(map[models.ResultKey]struct{}, len(results))
	deduped := make([]*models.SearchResult, 0, len(results))
	for _, r := range results {
		key := r.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, r)
	}
	return deduped
}
