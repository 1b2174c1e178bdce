package store

import (
	"context"
	"time"
)

// Account is a linked Valorant account for a platform user. Accounts are
// written by the account-linking flow and read during match detection.
type Account struct {
	PlayerID    string // platform user id the announcement mentions
	PUUID       string
	Platform    string
	Region      string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Match is one persisted match header. Rows are written once and never
// updated or deleted.
type Match struct {
	MatchID      string
	QueueID      int64
	MapName      string
	GameLengthMS int64
	StartedAt    time.Time
	Region       string
	WinningTeam  string
}

// Team is one side's result within a match.
type Team struct {
	MatchID    string
	TeamName   string
	RoundsWon  int
	RoundsLost int
	Won        bool
}

// PlayerPerformance is one player's scoreboard line within a match.
// AbilityCasts and Economy are stored as raw JSON when the API provides
// them, nil otherwise.
type PlayerPerformance struct {
	MatchID        string
	PUUID          string
	TeamName       string
	Agent          string
	RankAtMatch    string
	Score          int
	Kills          int
	Deaths         int
	Assists        int
	Headshots      int
	Bodyshots      int
	Legshots       int
	DamageDealt    int
	DamageReceived int
	AbilityCasts   []byte
	Economy        []byte
}

// MatchDetail is a match with its child rows, as served by the web API.
type MatchDetail struct {
	Match
	Teams   []Team
	Players []PlayerPerformance
}

type Store interface {
	UpsertAccount(ctx context.Context, account *Account) error
	AccountsByPlayerIDs(ctx context.Context, playerIDs []string) ([]Account, error)

	// SaveMatch writes a match with its teams and player performances in
	// one transaction, plus an audit log row for the acting identity.
	// If a match with the same id already exists the call is a no-op and
	// created is false.
	SaveMatch(ctx context.Context, match *Match, teams []Team, players []PlayerPerformance, actorID string) (created bool, err error)

	GetMatch(ctx context.Context, matchID string) (*Match, error)
	GetMatchDetail(ctx context.Context, matchID string) (*MatchDetail, error)
	ListMatches(ctx context.Context, limit int) ([]Match, error)

	Close() error
}
