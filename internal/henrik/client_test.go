package henrik

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matchHistoryBody = `{
	"data": [
		{
			"metadata": {
				"match_id": "f8ee4c4e-2c5f-4c1b-a3a2-0000deadbeef",
				"map": {"id": "ascent-id", "name": "Ascent"},
				"queue": {"id": "custom", "name": "Custom Game", "mode_type": "Standard"},
				"started_at": "2026-08-29T18:04:07Z",
				"game_length_in_ms": 2143000,
				"is_completed": true,
				"platform": "pc",
				"region": "eu",
				"cluster": "Frankfurt"
			},
			"players": [
				{
					"puuid": "puuid-1",
					"name": "Ana",
					"tag": "EUW",
					"team_id": "Red",
					"agent": {"id": "jett-id", "name": "Jett"},
					"tier": {"id": "21", "name": "Diamond 2"},
					"stats": {
						"score": 4500,
						"kills": 21,
						"deaths": 12,
						"assists": 4,
						"headshots": 10,
						"bodyshots": 30,
						"legshots": 2,
						"damage": {"dealt": 3800, "received": 2900}
					},
					"ability_casts": {"grenade_casts": 12},
					"economy": {"spent": {"overall": 23000}}
				}
			],
			"teams": [
				{"team_id": "Red", "rounds": {"won": 13, "lost": 8}, "won": true},
				{"team_id": "Blue", "rounds": {"won": 8, "lost": 13}, "won": false}
			]
		}
	]
}`

func TestLatestCustomMatch(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(matchHistoryBody))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	match, err := c.LatestCustomMatch(context.Background(), "eu", "pc", "puuid-1")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "/v4/by-puuid/matches/eu/pc/puuid-1", gotPath)
	assert.Equal(t, "mode=custom&size=1", gotQuery)
	assert.Equal(t, "test-key", gotAuth)

	assert.Equal(t, "f8ee4c4e-2c5f-4c1b-a3a2-0000deadbeef", match.Metadata.MatchID)
	assert.Equal(t, "Custom Game", match.Metadata.Queue.Name)
	assert.Equal(t, "Ascent", match.Metadata.Map.Name)
	assert.Equal(t, int64(2143000), match.Metadata.GameLengthMS)
	assert.Equal(t, time.Date(2026, 8, 29, 18, 4, 7, 0, time.UTC), match.Metadata.StartedAt.UTC())

	require.Len(t, match.Players, 1)
	p := match.Players[0]
	assert.Equal(t, "Jett", p.Agent.Name)
	assert.Equal(t, "Diamond 2", p.Tier.Name)
	assert.Equal(t, 21, p.Stats.Kills)
	assert.Equal(t, 3800, p.Stats.Damage.Dealt)
	assert.JSONEq(t, `{"grenade_casts": 12}`, string(p.AbilityCasts))

	assert.Equal(t, "Red", match.WinningTeam())
	wantEnd := match.Metadata.StartedAt.Add(2143000 * time.Millisecond)
	assert.Equal(t, wantEnd, match.EndedAt())
}

func TestLatestCustomMatchEmptyHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))
	match, err := c.LatestCustomMatch(context.Background(), "eu", "pc", "puuid-1")
	require.ErrorIs(t, err, ErrNoMatch)
	assert.Nil(t, match)
}

func TestLatestCustomMatchErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"rate limited", http.StatusTooManyRequests},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			c := NewClient("test-key", WithBaseURL(srv.URL))
			match, err := c.LatestCustomMatch(context.Background(), "eu", "pc", "puuid-1")
			require.ErrorIs(t, err, ErrNoMatch)
			assert.Nil(t, match)
			assert.Equal(t, 1, calls, "the client must not retry")
		})
	}
}

func TestLatestCustomMatchNoAPIKey(t *testing.T) {
	c := NewClient("")
	_, err := c.LatestCustomMatch(context.Background(), "eu", "pc", "puuid-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMatch)
}
