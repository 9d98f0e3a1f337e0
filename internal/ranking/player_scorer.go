package ranking

import (
	"strings"

	"github.com/cardfolio/searchd/internal/models"
)

const (
	playerBaseScore          = 50.0
	playerFullNameExactBonus = 40.0
	playerFullNameContains   = 25.0
	playerFirstNameExact     = 30.0
	playerLastNameExact      = 30.0
	playerNicknameExact      = 35.0
	playerHallOfFameBonus    = 10.0
	playerDeepCatalogBonus   = 5.0

	// deepCatalogThreshold is the card count above which a player's catalog
	// presence earns a small relevance bump.
	deepCatalogThreshold = 1000
)

// ScorePlayer computes the relevance score for a player hit against the
// original query. Bonuses are additive and not mutually exclusive: a
// one-word query can earn both the contains and last-name-exact bonuses.
func ScorePlayer(player *models.Player, query string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	fullName := strings.ToLower(player.FullName())

	score := playerBaseScore
	if fullName == q {
		score += playerFullNameExactBonus
	} else if strings.Contains(fullName, q) {
		score += playerFullNameContains
	}
	if strings.EqualFold(player.FirstName, q) {
		score += playerFirstNameExact
	}
	if strings.EqualFold(player.LastName, q) {
		score += playerLastNameExact
	}
	if player.Nickname != "" && strings.EqualFold(player.Nickname, q) {
		score += playerNicknameExact
	}
	if player.HallOfFame {
		score += playerHallOfFameBonus
	}
	if player.CardCount > deepCatalogThreshold {
		score += playerDeepCatalogBonus
	}
	return score
}
