// Package models defines core data structures for catalog entities, queries, and search results.
package models

import "strings"

// Card is a catalog card joined with its player, team, and series attributes.
// The numeric ID serializes as a string so JSON consumers never lose precision
// on wide identifiers.
type Card struct {
	ID               int64    `json:"id,string"`
	CardNumber       string   `json:"card_number"`
	Year             int      `json:"year,omitempty"`
	IsRookie         bool     `json:"is_rookie"`
	IsAutograph      bool     `json:"is_autograph"`
	IsRelic          bool     `json:"is_relic"`
	ParallelType     string   `json:"parallel_type,omitempty"`
	PlayerNames      []string `json:"player_names,omitempty"`
	TeamAbbreviation string   `json:"team_abbreviation,omitempty"`
	SeriesName       string   `json:"series_name,omitempty"`
	SetName          string   `json:"set_name,omitempty"`
	Manufacturer     string   `json:"manufacturer,omitempty"`
}

// DisplayTitle builds the card's human-readable title, e.g.
// "#108 Shane Bieber - Topps Chrome".
func (c *Card) DisplayTitle() string {
	var b strings.Builder
	b.WriteString("#")
	b.WriteString(c.CardNumber)
	if len(c.PlayerNames) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(c.PlayerNames, " / "))
	}
	if c.SeriesName != "" {
		b.WriteString(" - ")
		b.WriteString(c.SeriesName)
	}
	return b.String()
}

// Player is a catalog player with the aggregate card count used for
// secondary ordering at the store level.
type Player struct {
	ID         int64  `json:"id,string"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Nickname   string `json:"nickname,omitempty"`
	HallOfFame bool   `json:"hall_of_fame"`
	CardCount  int    `json:"card_count"`
}

// FullName returns "first last".
func (p *Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Team is a catalog team with the aggregate card count across its players.
type Team struct {
	ID           int64  `json:"id,string"`
	Name         string `json:"name"`
	City         string `json:"city"`
	Mascot       string `json:"mascot,omitempty"`
	Abbreviation string `json:"abbreviation"`
	CardCount    int    `json:"card_count"`
}

// Series is a catalog series with its parent set and manufacturer.
type Series struct {
	ID           int64  `json:"id,string"`
	Name         string `json:"name"`
	SetName      string `json:"set_name,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Year         int    `json:"year,omitempty"`
	CardCount    int    `json:"card_count"`
}
