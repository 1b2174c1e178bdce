package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/valo-customs/internal/henrik"
	"github.com/edvin/valo-customs/internal/matchdetect"
	"github.com/edvin/valo-customs/internal/store"
)

type noMatchFetcher struct{}

func (noMatchFetcher) LatestCustomMatch(ctx context.Context, region, platform, puuid string) (*henrik.Match, error) {
	return nil, henrik.ErrNoMatch
}

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	validator := matchdetect.NewValidator(noMatchFetcher{}, matchdetect.ValidatorConfig{Region: "eu"}, log)
	detector := matchdetect.NewDetector(st, validator, "bot-1", log)
	return NewServer(st, detector, log), st
}

func seedMatch(t *testing.T, st *store.SQLiteStore, matchID string, queueID int64) {
	t.Helper()
	match := &store.Match{
		MatchID:      matchID,
		QueueID:      queueID,
		MapName:      "Haven",
		GameLengthMS: 2_000_000,
		StartedAt:    time.Now().Add(-time.Hour),
		Region:       "eu",
		WinningTeam:  "Red",
	}
	teams := []store.Team{
		{MatchID: matchID, TeamName: "Red", RoundsWon: 13, RoundsLost: 5, Won: true},
		{MatchID: matchID, TeamName: "Blue", RoundsWon: 5, RoundsLost: 13, Won: false},
	}
	players := []store.PlayerPerformance{
		{MatchID: matchID, PUUID: "puuid-1", TeamName: "Red", Agent: "Sage", Score: 4000, Kills: 17, Deaths: 11},
	}
	created, err := st.SaveMatch(context.Background(), match, teams, players, "test")
	require.NoError(t, err)
	require.True(t, created)
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListMatches(t *testing.T) {
	srv, st := newTestServer(t)
	seedMatch(t, st, "match-1", 41)
	seedMatch(t, st, "match-2", 42)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/matches", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var matches []store.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &matches))
	assert.Len(t, matches, 2)
}

func TestGetMatchDetail(t *testing.T) {
	srv, st := newTestServer(t)
	seedMatch(t, st, "match-1", 41)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/matches/match-1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var detail store.MatchDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Haven", detail.MapName)
	assert.Len(t, detail.Teams, 2)
	assert.Len(t, detail.Players, 1)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/api/matches/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnnouncementIntake(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"title":"Winner For Queue #42","fields":[{"name":"_Alpha_","value":"<@123> +23.500 187.000"}]}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("POST", "/api/announcements", strings.NewReader(body)))
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("POST", "/api/announcements", strings.NewReader("not json")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
