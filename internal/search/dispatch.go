package search

import (
	"github.com/cardfolio/searchd/internal/models"
	"github.com/cardfolio/searchd/internal/ranking"
)

// strategySet names the engine's strategy instances so the dispatch table
// can select them by intent and category.
type strategySet struct {
	cardNumberPlayer Strategy
	cardNumber       Strategy
	cardType         Strategy
	player           Strategy
	team             Strategy
	series           Strategy
}

// strategiesFor is the dispatch table mapping (category, detected intent)
// to the strategies to run, in intended priority order: card strategies
// first, then player, team, series. Card sub-strategy selection follows
// the intent — a card-number+player query runs only the combined lookup,
// a bare card number runs the number lookup, and type keywords add the
// type lookup independently of either.
func (s *strategySet) strategiesFor(category models.Category, intent *ranking.DetectedIntent) []Strategy {
	var selected []Strategy

	if category.Includes(models.EntityCard) {
		switch {
		case intent.CardNumberWithPlayer:
			selected = append(selected, s.cardNumberPlayer)
		case intent.HasCardNumber():
			selected = append(selected, s.cardNumber)
		}
		if intent.CardTypes.Any() {
			selected = append(selected, s.cardType)
		}
	}
	if category.Includes(models.EntityPlayer) {
		selected = append(selected, s.player)
	}
	if category.Includes(models.EntityTeam) {
		selected = append(selected, s.team)
	}
	if category.Includes(models.EntitySeries) {
		selected = append(selected, s.series)
	}
	return selected
}
