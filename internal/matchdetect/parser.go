package matchdetect

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Queue number token in the announcement title, e.g. "Winner For Queue #42".
	queueTokenPattern = regexp.MustCompile(`#(\d+)`)
	// One result line: player mention, signed elo delta, then the new elo.
	// Non-greedy gaps so only the first number pair on a line is taken.
	playerLinePattern = regexp.MustCompile(`<@(\d+)>.*?([+-]?\d+\.\d+).*?(\d+\.\d+)`)
)

var (
	// ErrNoQueueToken means the title carried no "#<digits>" token, so the
	// message is not a result announcement.
	ErrNoQueueToken = errors.New("announcement title has no queue token")
	// ErrNoPlayers means the token was there but no result line parsed.
	ErrNoPlayers = errors.New("announcement has no parseable player lines")
)

// Announcement is the inbound result message: a title plus the embed's
// named sections. Delivery is the relay's concern; this package only
// interprets the content.
type Announcement struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Field is one named section of an announcement.
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Candidate is the parsed form of an announcement, consumed by one
// detection cycle and then discarded.
type Candidate struct {
	QueueID int64
	Players []CandidatePlayer
}

// CandidatePlayer is one player's announced outcome.
type CandidatePlayer struct {
	PlayerID  string
	Team      string
	Won       bool
	EloChange float64
	NewElo    float64
}

// ParseAnnouncement turns an announcement into a Candidate. The team
// whose field name is wrapped in underscores is the winner; lines that
// don't look like a result are skipped rather than failing the parse.
func ParseAnnouncement(ann Announcement) (*Candidate, error) {
	token := queueTokenPattern.FindStringSubmatch(ann.Title)
	if token == nil {
		return nil, ErrNoQueueToken
	}
	queueID, err := strconv.ParseInt(token[1], 10, 64)
	if err != nil {
		return nil, ErrNoQueueToken
	}

	cand := &Candidate{QueueID: queueID}
	for _, field := range ann.Fields {
		isWinner := strings.HasPrefix(field.Name, "_") && strings.HasSuffix(field.Name, "_")
		teamName := strings.Trim(field.Name, "_")
		for _, line := range strings.Split(field.Value, "\n") {
			m := playerLinePattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			eloChange, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			newElo, err := strconv.ParseFloat(m[3], 64)
			if err != nil {
				continue
			}
			cand.Players = append(cand.Players, CandidatePlayer{
				PlayerID:  m[1],
				Team:      teamName,
				Won:       isWinner,
				EloChange: eloChange,
				NewElo:    newElo,
			})
		}
	}

	if len(cand.Players) == 0 {
		return nil, ErrNoPlayers
	}
	return cand, nil
}
