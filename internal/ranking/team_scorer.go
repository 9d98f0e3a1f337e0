package ranking

import (
	"strings"

	"github.com/cardfolio/searchd/internal/models"
)

const (
	teamBaseScore         = 50.0
	teamAbbreviationExact = 40.0
	teamNameContains      = 25.0
	teamCityContains      = 20.0
	teamMascotContains    = 20.0
)

// SeriesScore is the flat score for series hits. Series carry no dynamic
// discrimination in this design; ordering among them falls to the
// type-priority tie-break.
const SeriesScore = 75.0

// ScoreTeam computes the relevance score for a team hit against the
// original query.
func ScoreTeam(team *models.Team, query string) float64 {
	q := strings.ToLower(strings.TrimSpace(query))

	score := teamBaseScore
	if strings.EqualFold(team.Abbreviation, q) {
		score += teamAbbreviationExact
	}
	if strings.Contains(strings.ToLower(team.Name), q) {
		score += teamNameContains
	}
	if strings.Contains(strings.ToLower(team.City), q) {
		score += teamCityContains
	}
	if team.Mascot != "" && strings.Contains(strings.ToLower(team.Mascot), q) {
		score += teamMascotContains
	}
	return score
}
