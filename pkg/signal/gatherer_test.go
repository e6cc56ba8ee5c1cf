package signal

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSources struct {
	profile    *Profile
	firstUse   time.Time
	entries    []Entry
	short      []ShortEntry
	sessions   []SessionSummary
	streaks    StreakStatus
	onboarded  bool
	introShown time.Time

	total       int
	journalErr  error
	countErr    error
	streaksErr  error
	journalWait time.Duration

	journalLimit int
	sessionLimit int
	shortLimit   int
}

func (f *fakeSources) UserProfile(ctx context.Context) (*Profile, error) {
	return f.profile, nil
}

func (f *fakeSources) FirstUseAt(ctx context.Context) (time.Time, error) {
	return f.firstUse, nil
}

func (f *fakeSources) RecentEntries(ctx context.Context, limit int) ([]Entry, error) {
	f.journalLimit = limit
	if f.journalWait > 0 {
		select {
		case <-time.After(f.journalWait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.journalErr != nil {
		return nil, f.journalErr
	}
	return f.entries, nil
}

func (f *fakeSources) CountEntries(ctx context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	if f.total > 0 {
		return f.total, nil
	}
	return len(f.entries), nil
}

func (f *fakeSources) RecentShortEntries(ctx context.Context, limit int) ([]ShortEntry, error) {
	f.shortLimit = limit
	return f.short, nil
}

func (f *fakeSources) RecentSessions(ctx context.Context, userID string, limit int) ([]SessionSummary, error) {
	f.sessionLimit = limit
	return f.sessions, nil
}

func (f *fakeSources) StreakStatus(ctx context.Context) (StreakStatus, error) {
	if f.streaksErr != nil {
		return StreakStatus{}, f.streaksErr
	}
	return f.streaks, nil
}

func (f *fakeSources) OnboardingCompleted(ctx context.Context) (bool, error) {
	return f.onboarded, nil
}

func (f *fakeSources) LastIntroShownAt(ctx context.Context) (time.Time, error) {
	return f.introShown, nil
}

func sourcesFor(f *fakeSources) Sources {
	return Sources{
		Profile:     f,
		Journal:     f,
		ShortForm:   f,
		Sessions:    f,
		Streaks:     f,
		Preferences: f,
	}
}

func TestGather_AllSources(t *testing.T) {
	now := time.Now()
	fake := &fakeSources{
		profile:   &Profile{DisplayName: "Ada"},
		firstUse:  now.AddDate(0, 0, -30),
		entries:   []Entry{{ID: "e1", Mood: "happy", CreatedAt: now}},
		short:     []ShortEntry{{ID: "s1", CreatedAt: now}},
		sessions:  []SessionSummary{{ID: "sess1", CreatedAt: now}},
		streaks:   StreakStatus{Journal: StreakTrack{Current: 4}, CheckIn: StreakTrack{Current: 2}},
		onboarded: true,
	}

	g := NewGatherer(sourcesFor(fake), nil)
	bundle := g.Gather(context.Background(), "user-1")

	if bundle.Profile == nil || bundle.Profile.DisplayName != "Ada" {
		t.Error("profile should be gathered")
	}
	if len(bundle.Journal) != 1 {
		t.Errorf("journal entries = %d, want 1", len(bundle.Journal))
	}
	if len(bundle.ShortForm) != 1 {
		t.Errorf("short entries = %d, want 1", len(bundle.ShortForm))
	}
	if len(bundle.Sessions) != 1 {
		t.Errorf("sessions = %d, want 1", len(bundle.Sessions))
	}
	if bundle.Streaks.Journal.Current != 4 {
		t.Errorf("journal streak = %d, want 4", bundle.Streaks.Journal.Current)
	}
	if !bundle.Preferences.OnboardingCompleted {
		t.Error("preferences should be gathered")
	}
	if !bundle.FirstUseAt.Equal(fake.firstUse) {
		t.Error("first use timestamp should be gathered")
	}
	if bundle.GatheredAt.IsZero() {
		t.Error("GatheredAt should be set")
	}
}

func TestGather_WindowLimits(t *testing.T) {
	fake := &fakeSources{}
	g := NewGatherer(sourcesFor(fake), nil)
	g.Gather(context.Background(), "user-1")

	if fake.journalLimit != JournalWindow {
		t.Errorf("journal limit = %d, want %d", fake.journalLimit, JournalWindow)
	}
	if fake.sessionLimit != SessionWindow {
		t.Errorf("session limit = %d, want %d", fake.sessionLimit, SessionWindow)
	}
	if fake.shortLimit != ShortFormWindow {
		t.Errorf("short-form limit = %d, want %d", fake.shortLimit, ShortFormWindow)
	}
}

func TestGather_TotalEntriesBeyondWindow(t *testing.T) {
	now := time.Now()
	entries := make([]Entry, JournalWindow)
	for i := range entries {
		entries[i] = Entry{CreatedAt: now}
	}
	fake := &fakeSources{entries: entries, total: 60}

	g := NewGatherer(sourcesFor(fake), nil)
	bundle := g.Gather(context.Background(), "user-1")

	if bundle.TotalEntries != 60 {
		t.Errorf("total entries = %d, want 60", bundle.TotalEntries)
	}
	if bundle.EntryCount() != 60 {
		t.Errorf("entry count = %d, want 60", bundle.EntryCount())
	}
}

func TestGather_DegradedCountFallsBackToWindow(t *testing.T) {
	now := time.Now()
	fake := &fakeSources{
		entries:  []Entry{{CreatedAt: now}, {CreatedAt: now}},
		countErr: errors.New("count offline"),
	}

	g := NewGatherer(sourcesFor(fake), nil)
	bundle := g.Gather(context.Background(), "user-1")

	if bundle.TotalEntries != 0 {
		t.Errorf("total entries = %d, want 0", bundle.TotalEntries)
	}
	if bundle.EntryCount() != 2 {
		t.Errorf("entry count = %d, want 2", bundle.EntryCount())
	}
}

func TestGather_DegradesFailedSource(t *testing.T) {
	now := time.Now()
	fake := &fakeSources{
		entries:    []Entry{{ID: "e1", CreatedAt: now}},
		journalErr: errors.New("db locked"),
		streaks:    StreakStatus{Journal: StreakTrack{Current: 9}},
	}

	g := NewGatherer(sourcesFor(fake), nil)
	bundle := g.Gather(context.Background(), "user-1")

	if len(bundle.Journal) != 0 {
		t.Error("failed journal source should degrade to empty")
	}
	// Other sources still gathered
	if bundle.Streaks.Journal.Current != 9 {
		t.Error("other sources should still be gathered")
	}
}

func TestGather_SlowSourceTimesOut(t *testing.T) {
	fake := &fakeSources{
		entries:     []Entry{{ID: "e1"}},
		journalWait: 200 * time.Millisecond,
	}

	g := NewGatherer(sourcesFor(fake), nil)
	g.SetTimeout(20 * time.Millisecond)

	start := time.Now()
	bundle := g.Gather(context.Background(), "user-1")

	if len(bundle.Journal) != 0 {
		t.Error("slow journal source should time out and degrade to empty")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("gather took %v, should be bounded by the source timeout", elapsed)
	}
}

func TestGather_NilSources(t *testing.T) {
	g := NewGatherer(Sources{}, nil)
	bundle := g.Gather(context.Background(), "user-1")

	if bundle == nil {
		t.Fatal("bundle should never be nil")
	}
	if bundle.EntryCount() != 0 {
		t.Error("bundle over nil sources should be empty")
	}
}

func TestBundle_DaysSinceFirstUse(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		firstUse time.Time
		want     int
	}{
		{"zero timestamp floors to 1", time.Time{}, 1},
		{"today floors to 1", now, 1},
		{"three days ago", now.AddDate(0, 0, -3), 3},
		{"thirty days ago", now.AddDate(0, 0, -30), 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Bundle{FirstUseAt: tt.firstUse}
			if got := b.DaysSinceFirstUse(now); got != tt.want {
				t.Errorf("DaysSinceFirstUse = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBundle_DaysSinceLastEntry(t *testing.T) {
	now := time.Now()

	empty := &Bundle{}
	if got := empty.DaysSinceLastEntry(now); got != -1 {
		t.Errorf("DaysSinceLastEntry with no entries = %d, want -1", got)
	}

	b := &Bundle{Journal: []Entry{{CreatedAt: now.AddDate(0, 0, -5)}}}
	if got := b.DaysSinceLastEntry(now); got != 5 {
		t.Errorf("DaysSinceLastEntry = %d, want 5", got)
	}
}

func TestBundle_AverageWordCount(t *testing.T) {
	b := &Bundle{Journal: []Entry{
		{WordCount: 100},
		{WordCount: 200},
		{WordCount: 300},
		{WordCount: 1000},
	}}

	if got := b.AverageWordCount(3); got != 200 {
		t.Errorf("AverageWordCount(3) = %v, want 200", got)
	}
	if got := b.AverageWordCount(0); got != 400 {
		t.Errorf("AverageWordCount(0) = %v, want 400", got)
	}

	empty := &Bundle{}
	if got := empty.AverageWordCount(5); got != 0 {
		t.Errorf("AverageWordCount on empty = %v, want 0", got)
	}
}
