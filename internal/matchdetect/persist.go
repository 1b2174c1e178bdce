package matchdetect

import (
	"github.com/edvin/valo-customs/internal/henrik"
	"github.com/edvin/valo-customs/internal/store"
)

// buildMatchRows converts a validated API match into the relational rows
// the store persists, tagged with the announcement's queue id.
func buildMatchRows(m *henrik.Match, queueID int64) (*store.Match, []store.Team, []store.PlayerPerformance) {
	meta := m.Metadata

	match := &store.Match{
		MatchID:      meta.MatchID,
		QueueID:      queueID,
		MapName:      meta.Map.Name,
		GameLengthMS: meta.GameLengthMS,
		StartedAt:    meta.StartedAt,
		Region:       meta.Region,
		WinningTeam:  m.WinningTeam(),
	}

	teams := make([]store.Team, 0, len(m.Teams))
	for _, t := range m.Teams {
		teams = append(teams, store.Team{
			MatchID:    meta.MatchID,
			TeamName:   t.TeamID,
			RoundsWon:  t.Rounds.Won,
			RoundsLost: t.Rounds.Lost,
			Won:        t.Won,
		})
	}

	players := make([]store.PlayerPerformance, 0, len(m.Players))
	for _, p := range m.Players {
		players = append(players, store.PlayerPerformance{
			MatchID:        meta.MatchID,
			PUUID:          p.PUUID,
			TeamName:       p.TeamID,
			Agent:          p.Agent.Name,
			RankAtMatch:    p.Tier.Name,
			Score:          p.Stats.Score,
			Kills:          p.Stats.Kills,
			Deaths:         p.Stats.Deaths,
			Assists:        p.Stats.Assists,
			Headshots:      p.Stats.Headshots,
			Bodyshots:      p.Stats.Bodyshots,
			Legshots:       p.Stats.Legshots,
			DamageDealt:    p.Stats.Damage.Dealt,
			DamageReceived: p.Stats.Damage.Received,
			AbilityCasts:   p.AbilityCasts,
			Economy:        p.Economy,
		})
	}

	return match, teams, players
}
