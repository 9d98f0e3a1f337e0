package search

import (
	"testing"

	"github.com/cardfolio/searchd/internal/models"
)

func TestDedupe(t *testing.T) {
	card55a := &models.SearchResult{Type: models.EntityCard, ID: "55", RelevanceScore: 95}
	card55b := &models.SearchResult{Type: models.EntityCard, ID: "55", RelevanceScore: 85}
	player55 := &models.SearchResult{Type: models.EntityPlayer, ID: "55", RelevanceScore: 90}
	card7 := &models.SearchResult{Type: models.EntityCard, ID: "7", RelevanceScore: 80}

	t.Run("first occurrence wins", func(t *testing.T) {
		deduped := Dedupe([]*models.SearchResult{card55a, card7, card55b})
		if len(deduped) != 2 {
			t.Fatalf("got %d results, want 2", len(deduped))
		}
		if deduped[0] != card55a {
			t.Error("expected the first card 55 to survive")
		}
		if deduped[1] != card7 {
			t.Error("expected card 7 second")
		}
	})

	t.Run("same id different type is not a duplicate", func(t *testing.T) {
		deduped := Dedupe([]*models.SearchResult{card55a, player55})
		if len(deduped) != 2 {
			t.Fatalf("got %d results, want 2", len(deduped))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := Dedupe(nil); len(got) != 0 {
			t.Errorf("Dedupe(nil) returned %d results", len(got))
		}
	})
}
