package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/cardfolio/searchd/internal/models"
	"github.com/cardfolio/searchd/internal/ranking"
)

// SQLiteStorage implements Storage over an embedded SQLite database. It is
// the development and test backend; the schema is bootstrapped on open.
//
// SQLite LIKE is already case-insensitive for ASCII, so the queries match
// the Postgres backend's ILIKE semantics for catalog data.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and
// initializes the catalog schema. Parent directories are created if they
// do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS teams (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL,
		mascot TEXT,
		abbreviation TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		nickname TEXT,
		hall_of_fame INTEGER NOT NULL DEFAULT 0,
		team_id INTEGER REFERENCES teams(id)
	);

	CREATE TABLE IF NOT EXISTS series (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		set_name TEXT,
		manufacturer TEXT,
		year INTEGER
	);

	CREATE TABLE IF NOT EXISTS cards (
		id INTEGER PRIMARY KEY,
		card_number TEXT NOT NULL,
		year INTEGER,
		is_rookie INTEGER NOT NULL DEFAULT 0,
		is_autograph INTEGER NOT NULL DEFAULT 0,
		is_relic INTEGER NOT NULL DEFAULT 0,
		parallel_type TEXT,
		team_id INTEGER REFERENCES teams(id),
		series_id INTEGER REFERENCES series(id)
	);

	CREATE TABLE IF NOT EXISTS card_players (
		card_id INTEGER NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
		player_id INTEGER NOT NULL REFERENCES players(id) ON DELETE CASCADE,
		PRIMARY KEY (card_id, player_id)
	);

	CREATE INDEX IF NOT EXISTS idx_cards_card_number ON cards(card_number);
	CREATE INDEX IF NOT EXISTS idx_card_players_player ON card_players(player_id);
	`
	_, err := db.Exec(schema)
	return err
}

const sqliteCardSelect = `
SELECT c.id, c.card_number, COALESCE(c.year, 0),
       c.is_rookie, c.is_autograph, c.is_relic, COALESCE(c.parallel_type, ''),
       COALESCE(group_concat(p.first_name || ' ' || p.last_name, ', '), ''),
       COALESCE(t.abbreviation, ''),
       COALESCE(s.name, ''), COALESCE(s.set_name, ''), COALESCE(s.manufacturer, '')
FROM cards c
LEFT JOIN card_players cp ON cp.card_id = c.id
LEFT JOIN players p ON p.id = cp.player_id
LEFT JOIN teams t ON t.id = c.team_id
LEFT JOIN series s ON s.id = c.series_id
`

const sqliteCardGroupBy = `
GROUP BY c.id
ORDER BY c.card_number, c.id
`

func sqlitePlayerNameExists() string {
	return ` AND EXISTS (
    SELECT 1 FROM card_players cpf
    JOIN players pf ON pf.id = cpf.player_id
    WHERE cpf.card_id = c.id
      AND (pf.first_name LIKE ? ESCAPE '\' OR pf.last_name LIKE ? ESCAPE '\'
           OR COALESCE(pf.nickname, '') LIKE ? ESCAPE '\')
  )`
}

// FindCardsByNumber returns cards whose number contains number.
func (s *SQLiteStorage) FindCardsByNumber(ctx context.Context, number string, limit int) ([]*models.Card, error) {
	query := sqliteCardSelect + `WHERE c.card_number LIKE ? ESCAPE '\'` + sqliteCardGroupBy + `LIMIT ?`
	rows, err := s.db.QueryContext(ctx, query, likePattern(number), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find cards by number: %w", err)
	}
	return scanCards(rows)
}

// FindCardsByNumberAndPlayer returns cards whose number contains number and
// whose player name contains playerName.
func (s *SQLiteStorage) FindCardsByNumberAndPlayer(ctx context.Context, number, playerName string, limit int) ([]*models.Card, error) {
	query := sqliteCardSelect + `WHERE c.card_number LIKE ? ESCAPE '\'` + sqlitePlayerNameExists() + sqliteCardGroupBy + `LIMIT ?`
	namePattern := likePattern(playerName)
	rows, err := s.db.QueryContext(ctx, query, likePattern(number), namePattern, namePattern, namePattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find cards by number and player: %w", err)
	}
	return scanCards(rows)
}

// FindCardsByType returns cards having any of the filter's type flags set,
// optionally narrowed by a player-name substring.
func (s *SQLiteStorage) FindCardsByType(ctx context.Context, filter ranking.CardTypeFilter, playerName string, limit int) ([]*models.Card, error) {
	conds := typeConditions(filter, "1")
	if len(conds) == 0 {
		return nil, nil
	}
	query := sqliteCardSelect + `WHERE (` + strings.Join(conds, " OR ") + `)`
	var args []any
	if playerName != "" {
		query += sqlitePlayerNameExists()
		namePattern := likePattern(playerName)
		args = append(args, namePattern, namePattern, namePattern)
	}
	query += sqliteCardGroupBy + `LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find cards by type: %w", err)
	}
	return scanCards(rows)
}

// FindPlayersByName matches players over first/last/nickname and the
// concatenated name variants, ordered by card count descending.
func (s *SQLiteStorage) FindPlayersByName(ctx context.Context, q PlayerNameQuery, limit int) ([]*models.Player, error) {
	query := `
SELECT p.id, p.first_name, p.last_name, COALESCE(p.nickname, ''),
       p.hall_of_fame, COUNT(cp.card_id) AS card_count
FROM players p
LEFT JOIN card_players cp ON cp.player_id = p.id
WHERE p.first_name LIKE ?1 ESCAPE '\' OR p.last_name LIKE ?1 ESCAPE '\'
   OR COALESCE(p.nickname, '') LIKE ?1 ESCAPE '\'
   OR (p.first_name || ' ' || p.last_name) LIKE ?1 ESCAPE '\'
   OR (p.first_name || ' ' || COALESCE(p.nickname, '') || ' ' || p.last_name) LIKE ?1 ESCAPE '\'
   OR (COALESCE(p.nickname, '') || ' ' || p.last_name) LIKE ?1 ESCAPE '\'`
	args := []any{likePattern(q.Term)}
	if q.First != "" {
		query += `
   OR (p.first_name LIKE ?2 ESCAPE '\' AND p.last_name LIKE ?3 ESCAPE '\')`
		args = append(args, likePattern(q.First), likePattern(q.Last))
	}
	query += `
GROUP BY p.id
ORDER BY card_count DESC, p.last_name, p.first_name
LIMIT ?` + fmt.Sprint(len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Nickname, &p.HallOfFame, &p.CardCount); err != nil {
			return nil, err
		}
		players = append(players, &p)
	}
	return players, rows.Err()
}

// FindTeams matches teams by name, city, mascot, or abbreviation.
func (s *SQLiteStorage) FindTeams(ctx context.Context, term string, limit int) ([]*models.Team, error) {
	query := `
SELECT t.id, t.name, t.city, COALESCE(t.mascot, ''), t.abbreviation, COUNT(c.id) AS card_count
FROM teams t
LEFT JOIN cards c ON c.team_id = t.id
WHERE t.name LIKE ?1 ESCAPE '\' OR t.city LIKE ?1 ESCAPE '\'
   OR COALESCE(t.mascot, '') LIKE ?1 ESCAPE '\' OR t.abbreviation LIKE ?1 ESCAPE '\'
GROUP BY t.id
ORDER BY card_count DESC, t.name
LIMIT ?2`
	rows, err := s.db.QueryContext(ctx, query, likePattern(term), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.City, &t.Mascot, &t.Abbreviation, &t.CardCount); err != nil {
			return nil, err
		}
		teams = append(teams, &t)
	}
	return teams, rows.Err()
}

// FindSeries matches series by series name, parent set name, or manufacturer.
func (s *SQLiteStorage) FindSeries(ctx context.Context, term string, limit int) ([]*models.Series, error) {
	query := `
SELECT s.id, s.name, COALESCE(s.set_name, ''), COALESCE(s.manufacturer, ''),
       COALESCE(s.year, 0), COUNT(c.id) AS card_count
FROM series s
LEFT JOIN cards c ON c.series_id = s.id
WHERE s.name LIKE ?1 ESCAPE '\' OR COALESCE(s.set_name, '') LIKE ?1 ESCAPE '\'
   OR COALESCE(s.manufacturer, '') LIKE ?1 ESCAPE '\'
GROUP BY s.id
ORDER BY card_count DESC, s.name
LIMIT ?2`
	rows, err := s.db.QueryContext(ctx, query, likePattern(term), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find series: %w", err)
	}
	defer rows.Close()

	var series []*models.Series
	for rows.Next() {
		var sr models.Series
		if err := rows.Scan(&sr.ID, &sr.Name, &sr.SetName, &sr.Manufacturer, &sr.Year, &sr.CardCount); err != nil {
			return nil, err
		}
		series = append(series, &sr)
	}
	return series, rows.Err()
}

// CountEntities returns row counts for the status endpoint.
func (s *SQLiteStorage) CountEntities(ctx context.Context) (Counts, error) {
	var counts Counts
	err := s.db.QueryRowContext(ctx, `
SELECT (SELECT COUNT(*) FROM cards),
       (SELECT COUNT(*) FROM players),
       (SELECT COUNT(*) FROM teams),
       (SELECT COUNT(*) FROM series)`,
	).Scan(&counts.Cards, &counts.Players, &counts.Teams, &counts.Series)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count entities: %w", err)
	}
	return counts, nil
}

// Ping verifies the database file is readable.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for test fixtures.
func (s *SQLiteStorage) DB() *sql.DB {
	return s.db
}

func scanCards(rows *sql.Rows) ([]*models.Card, error) {
	defer rows.Close()
	var cards []*models.Card
	for rows.Next() {
		var c models.Card
		var playerAgg string
		err := rows.Scan(&c.ID, &c.CardNumber, &c.Year,
			&c.IsRookie, &c.IsAutograph, &c.IsRelic, &c.ParallelType,
			&playerAgg, &c.TeamAbbreviation,
			&c.SeriesName, &c.SetName, &c.Manufacturer)
		if err != nil {
			return nil, err
		}
		c.PlayerNames = splitAggregatedNames(playerAgg)
		cards = append(cards, &c)
	}
	return cards, rows.Err()
}
