package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cardfolio/searchd/internal/config"
	"github.com/cardfolio/searchd/internal/models"
	"github.com/cardfolio/searchd/internal/ranking"
	"github.com/cardfolio/searchd/internal/storage"
)

// fakeStore is a canned-response Storage for engine tests. Each lookup
// records its invocation so tests can assert which strategies ran.
type fakeStore struct {
	mu    sync.Mutex
	calls map[string]int

	cardsByNumber       []*models.Card
	cardsByNumberPlayer []*models.Card
	cardsByType         []*models.Card
	players             []*models.Player
	teams               []*models.Team
	series              []*models.Series

	err        error         // returned by every lookup when set
	playerLag  time.Duration // sleep before returning players
	lastFilter ranking.CardTypeFilter
	lastPlayer string
}

func newFakeStore() *fakeStore {
	return &fakeStore{calls: map[string]int{}}
}

func (f *fakeStore) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeStore) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeStore) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeStore) FindCardsByNumber(_ context.Context, _ string, _ int) ([]*models.Card, error) {
	f.record("cards_by_number")
	return f.cardsByNumber, f.err
}

func (f *fakeStore) FindCardsByNumberAndPlayer(_ context.Context, _, _ string, _ int) ([]*models.Card, error) {
	f.record("cards_by_number_player")
	return f.cardsByNumberPlayer, f.err
}

func (f *fakeStore) FindCardsByType(_ context.Context, filter ranking.CardTypeFilter, playerName string, _ int) ([]*models.Card, error) {
	f.record("cards_by_type")
	f.mu.Lock()
	f.lastFilter = filter
	f.lastPlayer = playerName
	f.mu.Unlock()
	return f.cardsByType, f.err
}

func (f *fakeStore) FindPlayersByName(ctx context.Context, _ storage.PlayerNameQuery, _ int) ([]*models.Player, error) {
	f.record("players")
	if f.playerLag > 0 {
		select {
		case <-time.After(f.playerLag):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.players, f.err
}

func (f *fakeStore) FindTeams(_ context.Context, _ string, _ int) ([]*models.Team, error) {
	f.record("teams")
	return f.teams, f.err
}

func (f *fakeStore) FindSeries(_ context.Context, _ string, _ int) ([]*models.Series, error) {
	f.record("series")
	return f.series, f.err
}

func (f *fakeStore) CountEntities(context.Context) (storage.Counts, error) {
	return storage.Counts{}, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.err }
func (f *fakeStore) Close() error               { return nil }

func newTestEngine(store storage.Storage) *Engine {
	cfg := &config.SearchConfig{DefaultLimit: 50, MaxLimit: 100, StrategyTimeoutMS: 2000}
	return NewEngine(store, cfg, zap.NewNop())
}

func card(id int64, number string) *models.Card {
	return &models.Card{ID: id, CardNumber: number}
}

func TestSearch_ShortQueryShortCircuits(t *testing.T) {
	store := newFakeStore()
	engine := newTestEngine(store)

	for _, q := range []string{"", "a", " a ", "\t"} {
		resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: q})
		require.NoError(t, err, "query %q", q)
		assert.Empty(t, resp.Results, "query %q", q)
		assert.Equal(t, 0, resp.TotalResults, "query %q", q)
	}
	assert.Equal(t, 0, store.totalCalls(), "short queries must not contact the store")
}

func TestSearch_CardNumberWithPlayer(t *testing.T) {
	store := newFakeStore()
	store.cardsByNumberPlayer = []*models.Card{card(1, "108")}
	engine := newTestEngine(store)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "108 bieber"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.callCount("cards_by_number_player"))
	assert.Equal(t, 0, store.callCount("cards_by_number"), "bare number lookup must not run")
	assert.Equal(t, 0, store.callCount("cards_by_type"))

	require.NotEmpty(t, resp.Results)
	assert.Equal(t, models.EntityCard, resp.Results[0].Type)
	assert.Equal(t, "1", resp.Results[0].ID)
	assert.Equal(t, 95.0, resp.Results[0].RelevanceScore)
}

func TestSearch_CardNumberExactVsPartial(t *testing.T) {
	store := newFakeStore()
	store.cardsByNumber = []*models.Card{card(2, "1089"), card(1, "108")}
	engine := newTestEngine(store)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "108"})
	require.NoError(t, err)
	assert.Equal(t, 1, store.callCount("cards_by_number"))

	require.Len(t, resp.Results, 2)
	assert.Equal(t, "1", resp.Results[0].ID, "exact match ranks first")
	assert.Equal(t, 100.0, resp.Results[0].RelevanceScore)
	assert.Equal(t, "2", resp.Results[1].ID)
	assert.Equal(t, 80.0, resp.Results[1].RelevanceScore)
}

func TestSearch_CardTypeWithPlayerFilter(t *testing.T) {
	store := newFakeStore()
	store.cardsByType = []*models.Card{{ID: 3, CardNumber: "27", IsRookie: true}}
	engine := newTestEngine(store)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "rookie trout"})
	require.NoError(t, err)

	assert.Equal(t, 1, store.callCount("cards_by_type"))
	assert.Equal(t, ranking.CardTypeFilter{Rookie: true}, store.lastFilter)
	assert.Equal(t, "trout", store.lastPlayer)

	require.NotEmpty(t, resp.Results)
	assert.Equal(t, 85.0, resp.Results[0].RelevanceScore)
	assert.True(t, resp.Results[0].Data.(*models.Card).IsRookie)
}

func TestSearch_DeduplicatesAcrossStrategies(t *testing.T) {
	// "108 rookie" runs both the number+player lookup (remainder "rookie")
	// and the type lookup; both return card 55.
	store := newFakeStore()
	store.cardsByNumberPlayer = []*models.Card{card(55, "108")}
	store.cardsByType = []*models.Card{card(55, "108")}
	engine := newTestEngine(store)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "108 rookie"})
	require.NoError(t, err)

	ids := map[string]int{}
	for _, r := range resp.Results {
		if r.Type == models.EntityCard {
			ids[r.ID]++
		}
	}
	assert.Equal(t, 1, ids["55"], "card 55 must appear exactly once")
	// First-seen wins: the number+player score survives.
	for _, r := range resp.Results {
		if r.Type == models.EntityCard && r.ID == "55" {
			assert.Equal(t, 95.0, r.RelevanceScore)
		}
	}
}

func TestSearch_LimitTruncatesRankedResults(t *testing.T) {
	store := newFakeStore()
	for i := int64(1); i <= 20; i++ {
		store.cardsByNumber = append(store.cardsByNumber, card(i, "1080"))
	}
	engine := newTestEngine(store)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "108", Limit: 5})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 5)
	assert.Equal(t, 5, resp.TotalResults)
}

func TestSearch_CategoryRestricts(t *testing.T) {
	store := newFakeStore()
	store.players = []*models.Player{{ID: 9, FirstName: "Mike", LastName: "Trout"}}
	store.teams = []*models.Team{{ID: 4, Name: "Angels", City: "Los Angeles", Abbreviation: "LAA"}}
	engine := newTestEngine(store)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "trout", Category: models.CategoryPlayers})
	require.NoError(t, err)

	assert.Equal(t, 1, store.callCount("players"))
	assert.Equal(t, 0, store.callCount("teams"))
	assert.Equal(t, 0, store.callCount("series"))
	for _, r := range resp.Results {
		assert.Equal(t, models.EntityPlayer, r.Type)
	}
}

func TestSearch_InvalidCategory(t *testing.T) {
	engine := newTestEngine(newFakeStore())
	_, err := engine.Search(context.Background(), &models.SearchQuery{Query: "trout", Category: "boxes"})
	require.Error(t, err)
}

func TestSearch_StrategyFailureIsPartial(t *testing.T) {
	// Teams and series succeed while the player lookup fails; the search
	// must still return the surviving results.
	store := newFakeStore()
	store.teams = []*models.Team{{ID: 4, Name: "Angels", City: "Los Angeles", Abbreviation: "LAA"}}
	failing := &failingPlayerStore{fakeStore: store}
	engine := newTestEngine(failing)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "angels"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, models.EntityTeam, resp.Results[0].Type)
}

// failingPlayerStore fails only the player lookup.
type failingPlayerStore struct {
	*fakeStore
}

func (f *failingPlayerStore) FindPlayersByName(context.Context, storage.PlayerNameQuery, int) ([]*models.Player, error) {
	return nil, errors.New("connection reset")
}

func TestSearch_AllStrategiesUnavailable(t *testing.T) {
	store := newFakeStore()
	store.err = storage.ErrUnavailable
	engine := newTestEngine(store)

	_, err := engine.Search(context.Background(), &models.SearchQuery{Query: "trout"})
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestSearch_SlowStrategyDoesNotBlockOthers(t *testing.T) {
	store := newFakeStore()
	store.teams = []*models.Team{{ID: 4, Name: "Angels", City: "Los Angeles", Abbreviation: "LAA"}}
	store.playerLag = 5 * time.Second
	cfg := &config.SearchConfig{DefaultLimit: 50, MaxLimit: 100, StrategyTimeoutMS: 100}
	engine := NewEngine(store, cfg, zap.NewNop())

	start := time.Now()
	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "angels"})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second, "search must not wait for the slow strategy")

	var types []models.EntityType
	for _, r := range resp.Results {
		types = append(types, r.Type)
	}
	assert.Contains(t, types, models.EntityTeam)
	assert.NotContains(t, types, models.EntityPlayer)
}

func TestSearch_TypePriorityTieBreak(t *testing.T) {
	// A series (fixed 75) and a player scoring 75 (base 50 + contains 25)
	// tie; the player must sort first.
	store := newFakeStore()
	store.players = []*models.Player{{ID: 1, FirstName: "Toppsy", LastName: "Smith"}}
	store.series = []*models.Series{{ID: 2, Name: "Topps Chrome"}}
	engine := newTestEngine(store)

	resp, err := engine.Search(context.Background(), &models.SearchQuery{Query: "topps"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, models.EntityPlayer, resp.Results[0].Type)
	assert.Equal(t, models.EntitySeries, resp.Results[1].Type)
}

func TestStrategyLimit(t *testing.T) {
	tests := []struct {
		limit int
		want  int
	}{
		{5, 10},
		{15, 30},
		{50, 30},
		{1, 2},
	}
	for _, tt := range tests {
		if got := strategyLimit(tt.limit); got != tt.want {
			t.Errorf("strategyLimit(%d) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}
