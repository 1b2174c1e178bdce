package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}

	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			player_id TEXT PRIMARY KEY,
			puuid TEXT NOT NULL,
			platform TEXT NOT NULL DEFAULT 'pc',
			region TEXT NOT NULL,
			display_name TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			match_id TEXT PRIMARY KEY,
			queue_id INTEGER NOT NULL UNIQUE,
			map_name TEXT NOT NULL,
			game_length_ms INTEGER NOT NULL,
			started_at TIMESTAMP NOT NULL,
			region TEXT NOT NULL,
			winning_team TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS match_teams (
			match_id TEXT NOT NULL REFERENCES matches(match_id),
			team_name TEXT NOT NULL,
			rounds_won INTEGER NOT NULL,
			rounds_lost INTEGER NOT NULL,
			won INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (match_id, team_name)
		)`,
		`CREATE TABLE IF NOT EXISTS player_performances (
			match_id TEXT NOT NULL REFERENCES matches(match_id),
			puuid TEXT NOT NULL,
			team_name TEXT NOT NULL,
			agent TEXT,
			rank_at_match TEXT,
			score INTEGER NOT NULL DEFAULT 0,
			kills INTEGER NOT NULL DEFAULT 0,
			deaths INTEGER NOT NULL DEFAULT 0,
			assists INTEGER NOT NULL DEFAULT 0,
			headshots INTEGER NOT NULL DEFAULT 0,
			bodyshots INTEGER NOT NULL DEFAULT 0,
			legshots INTEGER NOT NULL DEFAULT 0,
			damage_dealt INTEGER NOT NULL DEFAULT 0,
			damage_received INTEGER NOT NULL DEFAULT 0,
			ability_casts TEXT,
			economy TEXT,
			PRIMARY KEY (match_id, puuid)
		)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_started ON matches(started_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// UpsertAccount creates or updates a linked account.
func (s *SQLiteStore) UpsertAccount(ctx context.Context, account *Account) error {
	now := time.Now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (player_id, puuid, platform, region, display_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET
		 	puuid = excluded.puuid,
		 	platform = excluded.platform,
		 	region = excluded.region,
		 	display_name = excluded.display_name,
		 	updated_at = excluded.updated_at`,
		account.PlayerID, account.PUUID, account.Platform, account.Region,
		account.DisplayName, now, now,
	)
	return err
}

// AccountsByPlayerIDs retrieves the linked accounts for the given platform
// user ids. Results come back in the order of playerIDs; ids without a
// linked account are simply absent.
func (s *SQLiteStore) AccountsByPlayerIDs(ctx context.Context, playerIDs []string) ([]Account, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(playerIDs)), ",")
	args := make([]interface{}, len(playerIDs))
	for i, id := range playerIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, puuid, platform, region, display_name, created_at, updated_at
		 FROM accounts WHERE player_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]Account, len(playerIDs))
	for rows.Next() {
		var a Account
		var name sql.NullString
		if err := rows.Scan(&a.PlayerID, &a.PUUID, &a.Platform, &a.Region, &name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.DisplayName = name.String
		byID[a.PlayerID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve caller order so the validation sweep is deterministic.
	accounts := make([]Account, 0, len(byID))
	for _, id := range playerIDs {
		if a, ok := byID[id]; ok {
			accounts = append(accounts, a)
		}
	}
	return accounts, nil
}

// SaveMatch writes the match, its teams, its player performances and an
// audit log row in a single transaction. The match row is inserted with
// ON CONFLICT DO NOTHING so concurrent detections of the same match are
// safe: the loser sees zero rows affected and backs out without writing
// anything.
func (s *SQLiteStore) SaveMatch(ctx context.Context, match *Match, teams []Team, players []PlayerPerformance, actorID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO matches (match_id, queue_id, map_name, game_length_ms, started_at, region, winning_team)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(match_id) DO NOTHING`,
		match.MatchID, match.QueueID, match.MapName, match.GameLengthMS,
		match.StartedAt, match.Region, match.WinningTeam,
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert match: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if inserted == 0 {
		// Already persisted by an earlier cycle.
		return false, nil
	}

	for _, t := range teams {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO match_teams (match_id, team_name, rounds_won, rounds_lost, won)
			 VALUES (?, ?, ?, ?, ?)`,
			match.MatchID, t.TeamName, t.RoundsWon, t.RoundsLost, t.Won,
		); err != nil {
			return false, fmt.Errorf("failed to insert team %s: %w", t.TeamName, err)
		}
	}

	for _, p := range players {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO player_performances (match_id, puuid, team_name, agent, rank_at_match,
				score, kills, deaths, assists, headshots, bodyshots, legshots,
				damage_dealt, damage_received, ability_casts, economy)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			match.MatchID, p.PUUID, p.TeamName, p.Agent, p.RankAtMatch,
			p.Score, p.Kills, p.Deaths, p.Assists, p.Headshots, p.Bodyshots, p.Legshots,
			p.DamageDealt, p.DamageReceived, nullableBlob(p.AbilityCasts), nullableBlob(p.Economy),
		); err != nil {
			return false, fmt.Errorf("failed to insert performance for %s: %w", p.PUUID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO audit_logs (action, actor_id, created_at) VALUES (?, ?, ?)`,
		"MCH_add", actorID, time.Now(),
	); err != nil {
		return false, fmt.Errorf("failed to insert audit log: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit match: %w", err)
	}
	return true, nil
}

func nullableBlob(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// GetMatch retrieves a match header by id.
func (s *SQLiteStore) GetMatch(ctx context.Context, matchID string) (*Match, error) {
	var m Match
	err := s.db.QueryRowContext(ctx,
		`SELECT match_id, queue_id, map_name, game_length_ms, started_at, region, winning_team
		 FROM matches WHERE match_id = ?`, matchID).Scan(
		&m.MatchID, &m.QueueID, &m.MapName, &m.GameLengthMS,
		&m.StartedAt, &m.Region, &m.WinningTeam,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetMatchDetail retrieves a match with its teams and player performances.
func (s *SQLiteStore) GetMatchDetail(ctx context.Context, matchID string) (*MatchDetail, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}

	detail := &MatchDetail{Match: *match}

	teamRows, err := s.db.QueryContext(ctx,
		`SELECT match_id, team_name, rounds_won, rounds_lost, won
		 FROM match_teams WHERE match_id = ? ORDER BY team_name`, matchID)
	if err != nil {
		return nil, err
	}
	defer teamRows.Close()
	for teamRows.Next() {
		var t Team
		if err := teamRows.Scan(&t.MatchID, &t.TeamName, &t.RoundsWon, &t.RoundsLost, &t.Won); err != nil {
			return nil, err
		}
		detail.Teams = append(detail.Teams, t)
	}
	if err := teamRows.Err(); err != nil {
		return nil, err
	}

	playerRows, err := s.db.QueryContext(ctx,
		`SELECT match_id, puuid, team_name, agent, rank_at_match,
			score, kills, deaths, assists, headshots, bodyshots, legshots,
			damage_dealt, damage_received, ability_casts, economy
		 FROM player_performances WHERE match_id = ? ORDER BY team_name, score DESC`, matchID)
	if err != nil {
		return nil, err
	}
	defer playerRows.Close()
	for playerRows.Next() {
		var p PlayerPerformance
		var agent, rank, casts, economy sql.NullString
		if err := playerRows.Scan(&p.MatchID, &p.PUUID, &p.TeamName, &agent, &rank,
			&p.Score, &p.Kills, &p.Deaths, &p.Assists, &p.Headshots, &p.Bodyshots, &p.Legshots,
			&p.DamageDealt, &p.DamageReceived, &casts, &economy); err != nil {
			return nil, err
		}
		p.Agent = agent.String
		p.RankAtMatch = rank.String
		if casts.Valid {
			p.AbilityCasts = []byte(casts.String)
		}
		if economy.Valid {
			p.Economy = []byte(economy.String)
		}
		detail.Players = append(detail.Players, p)
	}
	if err := playerRows.Err(); err != nil {
		return nil, err
	}

	return detail, nil
}

// ListMatches retrieves the most recently played matches.
func (s *SQLiteStore) ListMatches(ctx context.Context, limit int) ([]Match, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT match_id, queue_id, map_name, game_length_ms, started_at, region, winning_team
		 FROM matches
		 ORDER BY started_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.MatchID, &m.QueueID, &m.MapName, &m.GameLengthMS,
			&m.StartedAt, &m.Region, &m.WinningTeam); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
