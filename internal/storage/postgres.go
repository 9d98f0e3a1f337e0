package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardfolio/searchd/internal/models"
	"github.com/cardfolio/searchd/internal/ranking"
)

// PostgresStorage implements Storage over a pgx connection pool. It is the
// production backend; the catalog schema is owned by the main application,
// this side only reads it.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage connects to the catalog database at dsn and verifies
// the connection. A connect failure is reported as ErrUnavailable.
func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to configure postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &PostgresStorage{pool: pool}, nil
}

// cardSelect is the shared projection for card lookups: card attributes
// plus the aggregated player name list and the team/series/set names.
const cardSelect = `
SELECT c.id, c.card_number, COALESCE(c.year, 0),
       c.is_rookie, c.is_autograph, c.is_relic, COALESCE(c.parallel_type, ''),
       COALESCE(string_agg(DISTINCT p.first_name || ' ' || p.last_name, ', '), ''),
       COALESCE(t.abbreviation, ''),
       COALESCE(s.name, ''), COALESCE(s.set_name, ''), COALESCE(s.manufacturer, '')
FROM cards c
LEFT JOIN card_players cp ON cp.card_id = c.id
LEFT JOIN players p ON p.id = cp.player_id
LEFT JOIN teams t ON t.id = c.team_id
LEFT JOIN series s ON s.id = c.series_id
`

const cardGroupBy = `
GROUP BY c.id, c.card_number, c.year, c.is_rookie, c.is_autograph, c.is_relic,
         c.parallel_type, t.abbreviation, s.name, s.set_name, s.manufacturer
ORDER BY c.card_number, c.id
`

// playerNameExists narrows a card lookup to cards whose player matches the
// bound name pattern.
func playerNameExists(param string) string {
	return ` AND EXISTS (
    SELECT 1 FROM card_players cpf
    JOIN players pf ON pf.id = cpf.player_id
    WHERE cpf.card_id = c.id
      AND (pf.first_name ILIKE ` + param + ` OR pf.last_name ILIKE ` + param + `
           OR COALESCE(pf.nickname, '') ILIKE ` + param + `)
  )`
}

// FindCardsByNumber returns cards whose number contains number.
func (s *PostgresStorage) FindCardsByNumber(ctx context.Context, number string, limit int) ([]*models.Card, error) {
	query := cardSelect + `WHERE c.card_number ILIKE $1` + cardGroupBy + `LIMIT $2`
	rows, err := s.pool.Query(ctx, query, likePattern(number), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find cards by number: %w", err)
	}
	return collectCards(rows)
}

// FindCardsByNumberAndPlayer returns cards whose number contains number and
// whose player name contains playerName.
func (s *PostgresStorage) FindCardsByNumberAndPlayer(ctx context.Context, number, playerName string, limit int) ([]*models.Card, error) {
	query := cardSelect + `WHERE c.card_number ILIKE $1` + playerNameExists("$2") + cardGroupBy + `LIMIT $3`
	rows, err := s.pool.Query(ctx, query, likePattern(number), likePattern(playerName), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find cards by number and player: %w", err)
	}
	return collectCards(rows)
}

// FindCardsByType returns cards having any of the filter's type flags set,
// optionally narrowed by a player-name substring.
func (s *PostgresStorage) FindCardsByType(ctx context.Context, filter ranking.CardTypeFilter, playerName string, limit int) ([]*models.Card, error) {
	conds := typeConditions(filter, "TRUE")
	if len(conds) == 0 {
		return nil, nil
	}
	query := cardSelect + `WHERE (` + strings.Join(conds, " OR ") + `)`
	args := make([]any, 0, 2)
	if playerName != "" {
		args = append(args, likePattern(playerName))
		query += playerNameExists("$1")
		query += cardGroupBy + `LIMIT $2`
	} else {
		query += cardGroupBy + `LIMIT $1`
	}
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find cards by type: %w", err)
	}
	return collectCards(rows)
}

// FindPlayersByName matches players over first/last/nickname and the
// concatenated name variants, ordered by card count descending.
func (s *PostgresStorage) FindPlayersByName(ctx context.Context, q PlayerNameQuery, limit int) ([]*models.Player, error) {
	query := `
SELECT p.id, p.first_name, p.last_name, COALESCE(p.nickname, ''),
       p.hall_of_fame, COUNT(cp.card_id) AS card_count
FROM players p
LEFT JOIN card_players cp ON cp.player_id = p.id
WHERE p.first_name ILIKE $1 OR p.last_name ILIKE $1 OR COALESCE(p.nickname, '') ILIKE $1
   OR (p.first_name || ' ' || p.last_name) ILIKE $1
   OR (p.first_name || ' ' || COALESCE(p.nickname, '') || ' ' || p.last_name) ILIKE $1
   OR (COALESCE(p.nickname, '') || ' ' || p.last_name) ILIKE $1`
	args := []any{likePattern(q.Term)}
	if q.First != "" {
		query += `
   OR (p.first_name ILIKE $2 AND p.last_name ILIKE $3)`
		args = append(args, likePattern(q.First), likePattern(q.Last))
	}
	query += `
GROUP BY p.id, p.first_name, p.last_name, p.nickname, p.hall_of_fame
ORDER BY card_count DESC, p.last_name, p.first_name
LIMIT $` + fmt.Sprint(len(args)+1)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find players: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Player, error) {
		var p models.Player
		err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.Nickname, &p.HallOfFame, &p.CardCount)
		return &p, err
	})
}

// FindTeams matches teams by name, city, mascot, or abbreviation.
func (s *PostgresStorage) FindTeams(ctx context.Context, term string, limit int) ([]*models.Team, error) {
	query := `
SELECT t.id, t.name, t.city, COALESCE(t.mascot, ''), t.abbreviation, COUNT(c.id) AS card_count
FROM teams t
LEFT JOIN cards c ON c.team_id = t.id
WHERE t.name ILIKE $1 OR t.city ILIKE $1 OR COALESCE(t.mascot, '') ILIKE $1 OR t.abbreviation ILIKE $1
GROUP BY t.id, t.name, t.city, t.mascot, t.abbreviation
ORDER BY card_count DESC, t.name
LIMIT $2`
	rows, err := s.pool.Query(ctx, query, likePattern(term), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find teams: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Team, error) {
		var t models.Team
		err := row.Scan(&t.ID, &t.Name, &t.City, &t.Mascot, &t.Abbreviation, &t.CardCount)
		return &t, err
	})
}

// FindSeries matches series by series name, parent set name, or manufacturer.
func (s *PostgresStorage) FindSeries(ctx context.Context, term string, limit int) ([]*models.Series, error) {
	query := `
SELECT s.id, s.name, COALESCE(s.set_name, ''), COALESCE(s.manufacturer, ''),
       COALESCE(s.year, 0), COUNT(c.id) AS card_count
FROM series s
LEFT JOIN cards c ON c.series_id = s.id
WHERE s.name ILIKE $1 OR COALESCE(s.set_name, '') ILIKE $1 OR COALESCE(s.manufacturer, '') ILIKE $1
GROUP BY s.id, s.name, s.set_name, s.manufacturer, s.year
ORDER BY card_count DESC, s.name
LIMIT $2`
	rows, err := s.pool.Query(ctx, query, likePattern(term), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find series: %w", err)
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Series, error) {
		var sr models.Series
		err := row.Scan(&sr.ID, &sr.Name, &sr.SetName, &sr.Manufacturer, &sr.Year, &sr.CardCount)
		return &sr, err
	})
}

// CountEntities returns row counts for the status endpoint.
func (s *PostgresStorage) CountEntities(ctx context.Context) (Counts, error) {
	var counts Counts
	err := s.pool.QueryRow(ctx, `
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

// Ping verifies the pool can reach the database.
func (s *PostgresStorage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}

// likePattern wraps an escaped term in LIKE wildcards.
func likePattern(term string) string {
	return "%" + escapeLike(term) + "%"
}

// collectCards drains a card-projection result set.
func collectCards(rows pgx.Rows) ([]*models.Card, error) {
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Card, error) {
		var c models.Card
		var playerAgg string
		err := row.Scan(&c.ID, &c.CardNumber, &c.Year,
			&c.IsRookie, &c.IsAutograph, &c.IsRelic, &c.ParallelType,
			&playerAgg, &c.TeamAbbreviation,
			&c.SeriesName, &c.SetName, &c.Manufacturer)
		if err != nil {
			return nil, err
		}
		c.PlayerNames = splitAggregatedNames(playerAgg)
		return &c, nil
	})
}
