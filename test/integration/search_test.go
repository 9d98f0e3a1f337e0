// Package integration exercises the search engine against a real SQLite
// catalog, from config load through ranked results.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/cardfolio/searchd/internal/config"
	"github.com/cardfolio/searchd/internal/models"
	"github.com/cardfolio/searchd/internal/search"
	"github.com/cardfolio/searchd/internal/storage"
)

func TestIntegration_Search(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
storage:
  driver: "sqlite"
  database_path: "./catalog.db"
search:
  default_limit: 10
  max_limit: 50
  strategy_timeout_ms: 5000
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatal(err)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	db := store.DB()
	stmts := []string{
		`INSERT INTO teams (id, name, city, abbreviation) VALUES (1, 'Guardians', 'Cleveland', 'CLE')`,
		`INSERT INTO players (id, first_name, last_name, team_id) VALUES (1, 'Shane', 'Bieber', 1)`,
		`INSERT INTO series (id, name, set_name, manufacturer, year) VALUES (1, 'Topps Chrome', 'Topps Chrome', 'Topps', 2021)`,
		`INSERT INTO cards (id, card_number, year, team_id, series_id) VALUES (1, '108', 2021, 1, 1)`,
		`INSERT INTO card_players (card_id, player_id) VALUES (1, 1)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	engine := search.NewEngine(store, &cfg.Search, zap.NewNop())
	ctx := context.Background()

	resp, err := engine.Search(ctx, &models.SearchQuery{Query: "108 bieber", Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if resp.TotalResults < 1 {
		t.Fatalf("expected at least 1 result, got %d", resp.TotalResults)
	}
	top := resp.Results[0]
	if top.Type != models.EntityCard || top.ID != "1" {
		t.Errorf("top result = %s/%s, want card/1", top.Type, top.ID)
	}
	if top.Title != "#108 Shane Bieber - Topps Chrome" {
		t.Errorf("title = %q", top.Title)
	}
}
