package signal

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/ember/pkg/logging"
)

// Window limits bound how much history one synthesis cycle reads.
const (
	JournalWindow   = 30
	SessionWindow   = 10
	ShortFormWindow = 20
)

// DefaultSourceTimeout bounds each individual adapter read.
const DefaultSourceTimeout = 3 * time.Second

// FailureRecorder observes per-source gather failures. Implemented by the
// metrics package; nil-safe at the call sites.
type FailureRecorder interface {
	SourceFailure(source string)
}

// Gatherer fans out reads across all signal sources and fans the results
// into a single Bundle. A failed source degrades to its zero value rather
// than failing the whole gather.
type Gatherer struct {
	sources  Sources
	timeout  time.Duration
	logger   *logging.Logger
	recorder FailureRecorder
}

// NewGatherer creates a gatherer over the given sources.
func NewGatherer(sources Sources, logger *logging.Logger) *Gatherer {
	return &Gatherer{
		sources: sources,
		timeout: DefaultSourceTimeout,
		logger:  logger,
	}
}

// SetTimeout overrides the per-source read timeout.
func (g *Gatherer) SetTimeout(timeout time.Duration) {
	if timeout > 0 {
		g.timeout = timeout
	}
}

// SetFailureRecorder wires a metrics sink for per-source failures.
func (g *Gatherer) SetFailureRecorder(recorder FailureRecorder) {
	g.recorder = recorder
}

// Gather reads every source concurrently and returns the assembled bundle.
// It never returns an error: unavailable signals are substituted with
// defaults so synthesis can proceed on whatever is present.
func (g *Gatherer) Gather(ctx context.Context, userID string) *Bundle {
	bundle := &Bundle{GatheredAt: time.Now()}

	grp, ctx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		if g.sources.Profile == nil {
			return nil
		}
		profile, err := g.readProfile(ctx)
		if err != nil {
			g.degrade("profile", err)
			return nil // don't propagate; degrade instead
		}
		bundle.Profile = profile
		return nil
	})

	grp.Go(func() error {
		if g.sources.Profile == nil {
			return nil
		}
		firstUse, err := g.readFirstUse(ctx)
		if err != nil {
			g.degrade("first_use", err)
			return nil
		}
		bundle.FirstUseAt = firstUse
		return nil
	})

	grp.Go(func() error {
		if g.sources.Journal == nil {
			return nil
		}
		entries, err := g.readJournal(ctx)
		if err != nil {
			g.degrade("journal", err)
			return nil
		}
		bundle.Journal = entries
		return nil
	})

	grp.Go(func() error {
		if g.sources.Journal == nil {
			return nil
		}
		count, err := g.readJournalCount(ctx)
		if err != nil {
			g.degrade("journal_count", err)
			return nil
		}
		bundle.TotalEntries = count
		return nil
	})

	grp.Go(func() error {
		if g.sources.ShortForm == nil {
			return nil
		}
		entries, err := g.readShortForm(ctx)
		if err != nil {
			g.degrade("short_form", err)
			return nil
		}
		bundle.ShortForm = entries
		return nil
	})

	grp.Go(func() error {
		if g.sources.Sessions == nil {
			return nil
		}
		sessions, err := g.readSessions(ctx, userID)
		if err != nil {
			g.degrade("sessions", err)
			return nil
		}
		bundle.Sessions = sessions
		return nil
	})

	grp.Go(func() error {
		if g.sources.Streaks == nil {
			return nil
		}
		streaks, err := g.readStreaks(ctx)
		if err != nil {
			g.degrade("streaks", err)
			return nil
		}
		bundle.Streaks = streaks
		return nil
	})

	grp.Go(func() error {
		if g.sources.Preferences == nil {
			return nil
		}
		prefs, err := g.readPreferences(ctx)
		if err != nil {
			g.degrade("preferences", err)
			return nil
		}
		bundle.Preferences = prefs
		return nil
	})

	// Workers never return errors; Wait is a pure join.
	_ = grp.Wait()

	return bundle
}

func (g *Gatherer) readProfile(ctx context.Context) (*Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.sources.Profile.UserProfile(ctx)
}

func (g *Gatherer) readFirstUse(ctx context.Context) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.sources.Profile.FirstUseAt(ctx)
}

func (g *Gatherer) readJournal(ctx context.Context) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.sources.Journal.RecentEntries(ctx, JournalWindow)
}

func (g *Gatherer) readJournalCount(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.sources.Journal.CountEntries(ctx)
}

func (g *Gatherer) readShortForm(ctx context.Context) ([]ShortEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.sources.ShortForm.RecentShortEntries(ctx, ShortFormWindow)
}

func (g *Gatherer) readSessions(ctx context.Context, userID string) ([]SessionSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.sources.Sessions.RecentSessions(ctx, userID, SessionWindow)
}

func (g *Gatherer) readStreaks(ctx context.Context) (StreakStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.sources.Streaks.StreakStatus(ctx)
}

func (g *Gatherer) readPreferences(ctx context.Context) (PreferencesSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var prefs PreferencesSnapshot
	completed, err := g.sources.Preferences.OnboardingCompleted(ctx)
	if err != nil {
		return prefs, err
	}
	prefs.OnboardingCompleted = completed

	shownAt, err := g.sources.Preferences.LastIntroShownAt(ctx)
	if err != nil {
		return prefs, err
	}
	prefs.LastIntroShownAt = shownAt
	return prefs, nil
}

func (g *Gatherer) degrade(source string, err error) {
	if g.recorder != nil {
		g.recorder.SourceFailure(source)
	}
	if g.logger != nil {
		g.logger.Warn(logging.CategorySignal, "source_degraded", "substituting empty signal", map[string]any{
			"source": source,
			"error":  err.Error(),
		})
	}
}
