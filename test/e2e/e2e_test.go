package e2e

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/cardfolio/searchd/internal/config"
	"github.com/cardfolio/searchd/internal/models"
	"github.com/cardfolio/searchd/internal/search"
	"github.com/cardfolio/searchd/internal/storage"
)

const e2eSearchLimit = 30

func TestE2E_SearchReturnsCorrectResults(t *testing.T) {
	dir := t.TempDir()

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	corpus := BuildCorpus()
	if len(corpus.Cards) == 0 {
		t.Fatal("corpus has no cards")
	}
	if len(corpus.TestCases) == 0 {
		t.Fatal("corpus has no query test cases")
	}
	if err := corpus.Seed(store.DB()); err != nil {
		t.Fatalf("seed corpus: %v", err)
	}

	cfg := &config.SearchConfig{DefaultLimit: 50, MaxLimit: 100, StrategyTimeoutMS: 5000}
	engine := search.NewEngine(store, cfg, zap.NewNop())
	ctx := context.Background()

	t.Logf("seeded %d cards, %d players, %d teams, %d series; running %d query test cases",
		len(corpus.Cards), len(corpus.Players), len(corpus.Teams), len(corpus.Series), len(corpus.TestCases))

	for _, tc := range corpus.TestCases {
		t.Run(tc.Description, func(t *testing.T) {
			resp, err := engine.Search(ctx, &models.SearchQuery{
				Query:    tc.Query,
				Limit:    e2eSearchLimit,
				Category: models.Category(tc.Category),
			})
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			keys := resultKeys(resp)
			if !containsAny(keys, tc.ExpectedKeys) {
				t.Errorf("query %q: expected at least one of %v in results, got %d results (keys: %v)",
					tc.Query, tc.ExpectedKeys, len(keys), keys)
			}
		})
	}
}

func TestE2E_ResultsAreRankedAndDeduplicated(t *testing.T) {
	dir := t.TempDir()

	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	corpus := BuildCorpus()
	if err := corpus.Seed(store.DB()); err != nil {
		t.Fatalf("seed corpus: %v", err)
	}

	cfg := &config.SearchConfig{DefaultLimit: 50, MaxLimit: 100, StrategyTimeoutMS: 5000}
	engine := search.NewEngine(store, cfg, zap.NewNop())

	// "rookie rodriguez" matches the same card through the type lookup and
	// the player's name also matches the player lookup; no key may repeat.
	resp, err := engine.Search(context.Background(), &models.SearchQuery{
		Query: "rookie rodriguez",
		Limit: e2eSearchLimit,
	})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	seen := make(map[string]bool)
	for _, r := range resp.Results {
		key := string(r.Type) + ":" + r.ID
		if seen[key] {
			t.Errorf("duplicate result %s", key)
		}
		seen[key] = true
	}
	for i := 1; i < len(resp.Results); i++ {
		if resp.Results[i].RelevanceScore > resp.Results[i-1].RelevanceScore {
			t.Errorf("results not sorted by score: %f at %d after %f",
				resp.Results[i].RelevanceScore, i, resp.Results[i-1].RelevanceScore)
		}
	}
}

func resultKeys(resp *models.SearchResponse) []string {
	keys := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		keys = append(keys, string(r.Type)+":"+r.ID)
	}
	return keys
}

func containsAny(got []string, expected []string) bool {
	set := make(map[string]bool)
	for _, k := range got {
		set[k] = true
	}
	for _, k := range expected {
		if set[k] {
			return true
		}
	}
	return false
}
