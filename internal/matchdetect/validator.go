package matchdetect

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/edvin/valo-customs/internal/henrik"
	"github.com/edvin/valo-customs/internal/store"
)

const (
	// DefaultStalenessWindow is how long after a match ends it is still
	// trusted to be the one an announcement refers to.
	DefaultStalenessWindow = 15 * time.Minute
	// DefaultCustomQueueName is the queue label the API currently uses
	// for custom games. It is a config default, not a contract: the
	// API's vocabulary is not guaranteed stable.
	DefaultCustomQueueName = "Custom Game"
)

// ErrNoValidMatch means every known participant was checked and none had
// a recent custom match matching the announcement. A negative result,
// not a failure.
var ErrNoValidMatch = errors.New("no recent valid custom match found")

// MatchFetcher fetches a player's most recent custom match.
type MatchFetcher interface {
	LatestCustomMatch(ctx context.Context, region, platform, puuid string) (*henrik.Match, error)
}

// ValidatorConfig holds the knobs for the validation sweep.
type ValidatorConfig struct {
	Region          string
	QueueName       string        // queue label for custom games
	StalenessWindow time.Duration // max time since match end
}

// Validator corroborates an announcement against the match history of
// the known participants.
type Validator struct {
	fetcher MatchFetcher
	cfg     ValidatorConfig
	log     *logrus.Logger
	now     func() time.Time
}

// NewValidator creates a Validator. Zero config fields fall back to the
// defaults above.
func NewValidator(fetcher MatchFetcher, cfg ValidatorConfig, log *logrus.Logger) *Validator {
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultCustomQueueName
	}
	if cfg.StalenessWindow == 0 {
		cfg.StalenessWindow = DefaultStalenessWindow
	}
	return &Validator{fetcher: fetcher, cfg: cfg, log: log, now: time.Now}
}

// FindMatch sweeps the known participants in order and returns the first
// participant's latest custom match that passes every check: correct
// queue label, complete metadata, and an end time within the staleness
// window. The sweep stops at the first hit, so participants after the
// winner are never fetched. Fetch failures for individual participants
// are logged and skipped; only exhausting the whole list yields
// ErrNoValidMatch.
func (v *Validator) FindMatch(ctx context.Context, accounts []store.Account) (*henrik.Match, error) {
	regional := make([]store.Account, 0, len(accounts))
	for _, a := range accounts {
		if a.Region == v.cfg.Region {
			regional = append(regional, a)
		}
	}
	if len(regional) == 0 {
		v.log.WithField("region", v.cfg.Region).Info("No known players in the target region")
		return nil, ErrNoValidMatch
	}

	for _, account := range regional {
		log := v.log.WithField("player", account.DisplayName)
		log.Debug("Checking match history")

		match, err := v.fetcher.LatestCustomMatch(ctx, account.Region, account.Platform, account.PUUID)
		if errors.Is(err, henrik.ErrNoMatch) {
			continue
		}
		if err != nil {
			// Transient API trouble for one player must not abort the sweep.
			log.WithError(err).Warn("Match history fetch failed, skipping player")
			continue
		}

		if match.Metadata.Queue.Name != v.cfg.QueueName {
			continue
		}
		if match.Metadata.StartedAt.IsZero() || match.Metadata.GameLengthMS == 0 {
			continue
		}
		if v.now().Sub(match.EndedAt()) > v.cfg.StalenessWindow {
			continue
		}

		log.WithField("match_id", match.Metadata.MatchID).Info("Validated match from player history")
		return match, nil
	}

	v.log.Info("Checked all known players, no recent valid custom match")
	return nil, ErrNoValidMatch
}
