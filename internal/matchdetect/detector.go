package matchdetect

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/edvin/valo-customs/internal/store"
)

// Outcome is the terminal result of one detection cycle. Every outcome
// except OutcomeFailed is a normal end state, not an error.
type Outcome int

const (
	OutcomeSaved          Outcome = iota // match validated and persisted
	OutcomeAlreadyExists                 // match was persisted by an earlier cycle
	OutcomeNoCandidate                   // announcement did not parse into a candidate
	OutcomeNoKnownPlayers                // none of the mentioned players have linked accounts
	OutcomeNoValidMatch                  // validation sweep exhausted every participant
	OutcomeFailed                        // store or other hard failure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeAlreadyExists:
		return "already_exists"
	case OutcomeNoCandidate:
		return "no_candidate"
	case OutcomeNoKnownPlayers:
		return "no_known_players"
	case OutcomeNoValidMatch:
		return "no_valid_match"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Detector runs detection cycles: parse an announcement, validate it
// against known participants' match history, persist the confirmed
// match. Cycles are independent; a failed cycle leaves nothing behind.
type Detector struct {
	store         store.Store
	validator     *Validator
	actorID       string
	log           *logrus.Logger
	announcements chan Announcement
}

// NewDetector creates a Detector. actorID is the acting identity written
// to the audit log with each persisted match.
func NewDetector(st store.Store, validator *Validator, actorID string, log *logrus.Logger) *Detector {
	return &Detector{
		store:         st,
		validator:     validator,
		actorID:       actorID,
		log:           log,
		announcements: make(chan Announcement, 16),
	}
}

// Submit queues an announcement for detection. Returns false if the
// queue is full; the announcement is dropped, never blocked on.
func (d *Detector) Submit(ann Announcement) bool {
	select {
	case d.announcements <- ann:
		return true
	default:
		d.log.Warn("Announcement queue full, dropping announcement")
		return false
	}
}

// Run consumes submitted announcements until ctx is cancelled.
func (d *Detector) Run(ctx context.Context) {
	d.log.Info("Match detector started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info("Match detector shutting down")
			return
		case ann := <-d.announcements:
			outcome, err := d.HandleAnnouncement(ctx, ann)
			if err != nil {
				d.log.WithError(err).Error("Detection cycle failed")
			} else {
				d.log.WithField("outcome", outcome.String()).Debug("Detection cycle finished")
			}
		}
	}
}

// HandleAnnouncement runs one full detection cycle for an announcement
// and reports how it ended. Negative outcomes return a nil error: only
// store and lookup failures are errors.
func (d *Detector) HandleAnnouncement(ctx context.Context, ann Announcement) (Outcome, error) {
	log := d.log.WithField("cycle_id", uuid.NewString()[:8])

	cand, err := ParseAnnouncement(ann)
	if err != nil {
		// Not a result announcement; nothing to do.
		log.WithError(err).Debug("Announcement did not parse")
		return OutcomeNoCandidate, nil
	}
	log = log.WithField("queue_id", cand.QueueID)
	log.Info("Match detected, starting validation")

	playerIDs := make([]string, 0, len(cand.Players))
	for _, p := range cand.Players {
		playerIDs = append(playerIDs, p.PlayerID)
	}

	accounts, err := d.store.AccountsByPlayerIDs(ctx, playerIDs)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to look up linked accounts: %w", err)
	}
	if len(accounts) == 0 {
		log.Info("No known players found for this queue")
		return OutcomeNoKnownPlayers, nil
	}

	match, err := d.validator.FindMatch(ctx, accounts)
	if errors.Is(err, ErrNoValidMatch) {
		log.Info("Match validation failed")
		return OutcomeNoValidMatch, nil
	}
	if err != nil {
		return OutcomeFailed, fmt.Errorf("validation sweep failed: %w", err)
	}

	row, teams, players := buildMatchRows(match, cand.QueueID)
	created, err := d.store.SaveMatch(ctx, row, teams, players, d.actorID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("failed to save match %s: %w", row.MatchID, err)
	}
	if !created {
		log.WithField("match_id", row.MatchID).Info("Match already persisted")
		return OutcomeAlreadyExists, nil
	}

	log.WithField("match_id", row.MatchID).Info("Match validated and saved")
	return OutcomeSaved, nil
}
