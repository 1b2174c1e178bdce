package henrik

import (
	"encoding/json"
	"time"
)

// Match is one entry from the HenrikDev v4 match history endpoint.
// Only the fields this service reads are modeled; ability casts and
// economy are carried through as opaque JSON.
type Match struct {
	Metadata Metadata `json:"metadata"`
	Players  []Player `json:"players"`
	Teams    []Team   `json:"teams"`
}

// Metadata holds the per-match header fields.
type Metadata struct {
	MatchID      string          `json:"match_id"`
	Map          NamedRef        `json:"map"`
	Queue        QueueInfo       `json:"queue"`
	StartedAt    time.Time       `json:"started_at"`
	GameLengthMS int64           `json:"game_length_in_ms"`
	IsCompleted  bool            `json:"is_completed"`
	Season       json.RawMessage `json:"season,omitempty"`
	Platform     string          `json:"platform"`
	Region       string          `json:"region"`
	Cluster      string          `json:"cluster"`
}

// NamedRef is the API's common {id, name} pair.
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QueueInfo describes the queue the match was played in. Name is the
// human label ("Custom Game", "Competitive", ...) the validator keys on.
type QueueInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ModeType string `json:"mode_type"`
}

// Team is one side of the match with its round totals.
type Team struct {
	TeamID string `json:"team_id"`
	Rounds Rounds `json:"rounds"`
	Won    bool   `json:"won"`
}

// Rounds is a team's round win/loss split.
type Rounds struct {
	Won  int `json:"won"`
	Lost int `json:"lost"`
}

// Player is one participant's slice of the match payload.
type Player struct {
	PUUID        string          `json:"puuid"`
	Name         string          `json:"name"`
	Tag          string          `json:"tag"`
	TeamID       string          `json:"team_id"`
	Agent        NamedRef        `json:"agent"`
	Tier         NamedRef        `json:"tier"`
	Stats        PlayerStats     `json:"stats"`
	AbilityCasts json.RawMessage `json:"ability_casts,omitempty"`
	Economy      json.RawMessage `json:"economy,omitempty"`
}

// PlayerStats holds the scoreboard numbers for one player.
type PlayerStats struct {
	Score     int    `json:"score"`
	Kills     int    `json:"kills"`
	Deaths    int    `json:"deaths"`
	Assists   int    `json:"assists"`
	Headshots int    `json:"headshots"`
	Bodyshots int    `json:"bodyshots"`
	Legshots  int    `json:"legshots"`
	Damage    Damage `json:"damage"`
}

// Damage is the dealt/received pair from the stats block.
type Damage struct {
	Dealt    int `json:"dealt"`
	Received int `json:"received"`
}

// EndedAt returns when the match finished (start time plus game length).
func (m *Match) EndedAt() time.Time {
	return m.Metadata.StartedAt.Add(time.Duration(m.Metadata.GameLengthMS) * time.Millisecond)
}

// WinningTeam returns the team_id of the winning side, or "" if the
// payload reports no winner.
func (m *Match) WinningTeam() string {
	for _, t := range m.Teams {
		if t.Won {
			return t.TeamID
		}
	}
	return ""
}
