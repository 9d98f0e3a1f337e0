// Package e2e provides end-to-end tests over a generated card catalog.
package e2e

import (
	"database/sql"
	"fmt"
)

// CorpusTeam is a team row in the generated catalog.
type CorpusTeam struct {
	ID           int64
	Name         string
	City         string
	Mascot       string
	Abbreviation string
}

// CorpusPlayer is a player row in the generated catalog.
type CorpusPlayer struct {
	ID         int64
	FirstName  string
	LastName   string
	Nickname   string
	HallOfFame bool
	TeamID     int64
}

// CorpusSeries is a series row in the generated catalog.
type CorpusSeries struct {
	ID           int64
	Name         string
	SetName      string
	Manufacturer string
	Year         int
}

// CorpusCard is a card row plus its player links.
type CorpusCard struct {
	ID          int64
	CardNumber  string
	Year        int
	IsRookie    bool
	IsAutograph bool
	IsRelic     bool
	Parallel    string
	TeamID      int64
	SeriesID    int64
	PlayerIDs   []int64
}

// QueryTestCase defines a query and the result key(s) that must appear.
// Keys are "type:id" (e.g. "card:1002", "player:3"). At least one of
// ExpectedKeys must be present in the ranked results.
type QueryTestCase struct {
	Query        string
	Category     string
	ExpectedKeys []string
	Description  string
}

// Corpus holds a generated catalog and query test cases for E2E tests.
type Corpus struct {
	Teams     []CorpusTeam
	Players   []CorpusPlayer
	Series    []CorpusSeries
	Cards     []CorpusCard
	TestCases []QueryTestCase
}

// BuildCorpus returns a catalog with several teams, players and series
// and one card per player/series pairing, plus query test cases that
// exercise every retrieval path.
func BuildCorpus() *Corpus {
	teams := []CorpusTeam{
		{1, "Guardians", "Cleveland", "Slider", "CLE"},
		{2, "Angels", "Los Angeles", "Rally Monkey", "LAA"},
		{3, "Yankees", "New York", "", "NYY"},
		{4, "Dodgers", "Los Angeles", "", "LAD"},
		{5, "Braves", "Atlanta", "Blooper", "ATL"},
		{6, "Mariners", "Seattle", "Mariner Moose", "SEA"},
	}
	players := []CorpusPlayer{
		{1, "Shane", "Bieber", "", false, 1},
		{2, "Mike", "Trout", "", false, 2},
		{3, "Aaron", "Judge", "", false, 3},
		{4, "Mookie", "Betts", "", false, 4},
		{5, "Ronald", "Acuna", "", false, 5},
		{6, "Julio", "Rodriguez", "J-Rod", false, 6},
		{7, "Ken", "Griffey", "The Kid", true, 6},
		{8, "Babe", "Ruth", "The Bambino", true, 3},
		{9, "Shohei", "Ohtani", "", false, 4},
		{10, "Jose", "Ramirez", "", false, 1},
	}
	series := []CorpusSeries{
		{1, "Topps Chrome", "Topps Chrome", "Topps", 2021},
		{2, "Bowman Draft Chrome", "Bowman Draft", "Topps", 2022},
		{3, "Prizm", "Panini Prizm", "Panini", 2022},
		{4, "Stadium Club", "Topps Stadium Club", "Topps", 2023},
	}

	var cards []CorpusCard
	nextID := int64(1000)
	addCard := func(number string, year int, rookie, auto, relic bool, parallel string, teamID, seriesID int64, playerIDs ...int64) {
		nextID++
		cards = append(cards, CorpusCard{
			ID: nextID, CardNumber: number, Year: year,
			IsRookie: rookie, IsAutograph: auto, IsRelic: relic,
			Parallel: parallel, TeamID: teamID, SeriesID: seriesID,
			PlayerIDs: playerIDs,
		})
	}

	// One base card per player in Topps Chrome, numbered from 100.
	for i, p := range players {
		addCard(fmt.Sprintf("%d", 100+i), 2021, false, false, false, "", p.TeamID, 1, p.ID)
	}
	// Rookies and inserts.
	addCard("BDC-7", 2022, true, false, false, "", 6, 2, 6)       // Rodriguez rookie
	addCard("BDC-12", 2022, true, true, false, "", 5, 2, 5)       // Acuna rookie auto
	addCard("27", 2022, false, false, true, "", 3, 3, 8)          // Ruth relic
	addCard("108", 2023, false, false, false, "Refractor", 1, 4, 1) // second Bieber #108 in a later set
	addCard("SC-2", 2023, false, true, false, "Gold /50", 2, 4, 2)  // Trout auto parallel
	addCard("1089", 2021, false, false, false, "", 4, 1, 4)       // partial-number collision with 108

	cases := []QueryTestCase{
		{
			Query:        "100",
			ExpectedKeys: []string{"card:1001"},
			Description:  "bare card number finds the card",
		},
		{
			Query:        "108 bieber",
			ExpectedKeys: []string{"card:1014"},
			Description:  "card number with player name scopes to that player",
		},
		{
			Query:        "BDC-7",
			ExpectedKeys: []string{"card:1011"},
			Description:  "prefixed card number finds the insert card",
		},
		{
			Query:        "rookie rodriguez",
			ExpectedKeys: []string{"card:1011"},
			Description:  "type keyword with trailing name narrows to that player's rookies",
		},
		{
			Query:        "relic ruth",
			ExpectedKeys: []string{"card:1013"},
			Description:  "relic keyword finds memorabilia cards",
		},
		{
			Query:        "mike trout",
			ExpectedKeys: []string{"player:2"},
			Description:  "full player name finds the player",
		},
		{
			Query:        "j-rod",
			ExpectedKeys: []string{"player:6"},
			Description:  "nickname finds the player",
		},
		{
			Query:        "griffey",
			ExpectedKeys: []string{"player:7"},
			Description:  "last name alone finds the player",
		},
		{
			Query:        "CLE",
			ExpectedKeys: []string{"team:1"},
			Description:  "team abbreviation finds the team",
		},
		{
			Query:        "cleveland",
			ExpectedKeys: []string{"team:1"},
			Description:  "city finds the team",
		},
		{
			Query:        "topps chrome",
			ExpectedKeys: []string{"series:1"},
			Description:  "series name finds the series",
		},
		{
			Query:        "panini",
			ExpectedKeys: []string{"series:3"},
			Description:  "manufacturer finds the series",
		},
		{
			Query:        "trout",
			Category:     "players",
			ExpectedKeys: []string{"player:2"},
			Description:  "players category returns the player",
		},
		{
			Query:        "auto trout",
			Category:     "cards",
			ExpectedKeys: []string{"card:1015"},
			Description:  "autograph keyword in cards category narrows to signed cards",
		},
	}

	return &Corpus{
		Teams:     teams,
		Players:   players,
		Series:    series,
		Cards:     cards,
		TestCases: cases,
	}
}

// Seed inserts the corpus into a catalog database created by the SQLite
// backend's schema bootstrap.
func (c *Corpus) Seed(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, t := range c.Teams {
		if _, err := tx.Exec(
			`INSERT INTO teams (id, name, city, mascot, abbreviation) VALUES (?, ?, ?, ?, ?)`,
			t.ID, t.Name, t.City, t.Mascot, t.Abbreviation,
		); err != nil {
			return fmt.Errorf("seed team %d: %w", t.ID, err)
		}
	}
	for _, p := range c.Players {
		if _, err := tx.Exec(
			`INSERT INTO players (id, first_name, last_name, nickname, hall_of_fame, team_id) VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.FirstName, p.LastName, p.Nickname, p.HallOfFame, p.TeamID,
		); err != nil {
			return fmt.Errorf("seed player %d: %w", p.ID, err)
		}
	}
	for _, s := range c.Series {
		if _, err := tx.Exec(
			`INSERT INTO series (id, name, set_name, manufacturer, year) VALUES (?, ?, ?, ?, ?)`,
			s.ID, s.Name, s.SetName, s.Manufacturer, s.Year,
		); err != nil {
			return fmt.Errorf("seed series %d: %w", s.ID, err)
		}
	}
	for _, card := range c.Cards {
		if _, err := tx.Exec(
			`INSERT INTO cards (id, card_number, year, is_rookie, is_autograph, is_relic, parallel_type, team_id, series_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			card.ID, card.CardNumber, card.Year, card.IsRookie, card.IsAutograph, card.IsRelic,
			card.Parallel, card.TeamID, card.SeriesID,
		); err != nil {
			return fmt.Errorf("seed card %d: %w", card.ID, err)
		}
		for _, pid := range card.PlayerIDs {
			if _, err := tx.Exec(
				`INSERT INTO card_players (card_id, player_id) VALUES (?, ?)`,
				card.ID, pid,
			); err != nil {
				return fmt.Errorf("seed card_players %d/%d: %w", card.ID, pid, err)
			}
		}
	}
	return tx.Commit()
}
