package models

import (
	"testing"
)

func TestSearchQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   *SearchQuery
		wantErr bool
	}{
		{"defaults limit and category", &SearchQuery{Query: "trout"}, false},
		{"keeps explicit limit", &SearchQuery{Query: "trout", Limit: 5}, false},
		{"accepts cards category", &SearchQuery{Query: "108", Category: CategoryCards}, false},
		{"rejects unknown category", &SearchQuery{Query: "108", Category: "boxes"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if tt.query.Limit <= 0 {
				t.Error("expected default limit to be set")
			}
			if tt.query.Category == "" {
				t.Error("expected default category to be set")
			}
		})
	}
}

func TestCategory_Includes(t *testing.T) {
	tests := []struct {
		category Category
		entity   EntityType
		want     bool
	}{
		{CategoryAll, EntityCard, true},
		{CategoryAll, EntitySeries, true},
		{CategoryCards, EntityCard, true},
		{CategoryCards, EntityPlayer, false},
		{CategoryPlayers, EntityPlayer, true},
		{CategoryTeams, EntityTeam, true},
		{CategoryTeams, EntitySeries, false},
		{CategorySeries, EntitySeries, true},
	}
	for _, tt := range tests {
		if got := tt.category.Includes(tt.entity); got != tt.want {
			t.Errorf("%s.Includes(%s) = %v, want %v", tt.category, tt.entity, got, tt.want)
		}
	}
}

func TestEntityType_Priority(t *testing.T) {
	order := []EntityType{EntitySeries, EntityTeam, EntityPlayer, EntityCard}
	for i := 1; i < len(order); i++ {
		if order[i].Priority() <= order[i-1].Priority() {
			t.Errorf("expected %s priority > %s priority", order[i], order[i-1])
		}
	}
}

func TestCard_DisplayTitle(t *testing.T) {
	card := &Card{
		CardNumber:  "108",
		PlayerNames: []string{"Shane Bieber"},
		SeriesName:  "Topps Chrome",
	}
	got := card.DisplayTitle()
	want := "#108 Shane Bieber - Topps Chrome"
	if got != want {
		t.Errorf("DisplayTitle() = %q, want %q", got, want)
	}

	bare := &Card{CardNumber: "RC-1"}
	if bare.DisplayTitle() != "#RC-1" {
		t.Errorf("DisplayTitle() = %q, want %q", bare.DisplayTitle(), "#RC-1")
	}
}
