package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/domain/timeline"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
)

type fakeSportsFeed struct {
	mu           sync.Mutex
	detailCalls  int32
	details      match.Match
	detailsErr   error
	schedule     []match.Match
	scheduleErr  error
	lineups      *match.Lineups
	lineupsErr   error
	stats        []match.StatisticRow
	statsCalls   int32
	rawTimeline  timeline.RawFeed
	timelineCnt  int32
	injuries     []match.Injury
	injuriesErr  error
	topPlayers   []match.TopPlayer
	standings    []match.StandingRow
	history      []match.HistoricalFixture
	teams        []match.Team
	teamsErr     error
	detailsDelay time.Duration
}

func (f *fakeSportsFeed) FetchScheduleByDate(ctx context.Context, leagueID string, date time.Time) ([]match.Match, error) {
	return f.schedule, f.scheduleErr
}

func (f *fakeSportsFeed) FetchMatchDetails(ctx context.Context, ref match.Match) (match.Match, error) {
	atomic.AddInt32(&f.detailCalls, 1)
	if f.detailsDelay > 0 {
		time.Sleep(f.detailsDelay)
	}
	return f.details, f.detailsErr
}

func (f *fakeSportsFeed) FetchLineups(ctx context.Context, matchID string) (*match.Lineups, error) {
	return f.lineups, f.lineupsErr
}

func (f *fakeSportsFeed) FetchStatistics(ctx context.Context, matchID string) ([]match.StatisticRow, error) {
	atomic.AddInt32(&f.statsCalls, 1)
	return f.stats, nil
}

func (f *fakeSportsFeed) FetchRawTimeline(ctx context.Context, matchID string) (timeline.RawFeed, error) {
	atomic.AddInt32(&f.timelineCnt, 1)
	return f.rawTimeline, nil
}

func (f *fakeSportsFeed) FetchInjuries(ctx context.Context, teamIDs []string) ([]match.Injury, error) {
	return f.injuries, f.injuriesErr
}

func (f *fakeSportsFeed) FetchTopPlayers(ctx context.Context, leagueID string, teamIDs []string) ([]match.TopPlayer, error) {
	return f.topPlayers, nil
}

func (f *fakeSportsFeed) FetchStandings(ctx context.Context, leagueID string) ([]match.StandingRow, error) {
	return f.standings, nil
}

func (f *fakeSportsFeed) FetchTeamHistory(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error) {
	return f.history, nil
}

func (f *fakeSportsFeed) ListTeams(ctx context.Context, leagueID string) ([]match.Team, error) {
	return f.teams, f.teamsErr
}

type fakeCompetition struct {
	details     match.Match
	detailsErr  error
	schedule    []match.Match
	scheduleErr error
	history     []match.HistoricalFixture
	historyErr  error
	teams       []match.Team
	teamsErr    error
}

func (f *fakeCompetition) FetchScheduleByDate(ctx context.Context, leagueID string, date time.Time) ([]match.Match, error) {
	return f.schedule, f.scheduleErr
}

func (f *fakeCompetition) FetchMatchDetails(ctx context.Context, ref match.Match) (match.Match, error) {
	return f.details, f.detailsErr
}

func (f *fakeCompetition) FetchTeamHistory(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error) {
	return f.history, f.historyErr
}

func (f *fakeCompetition) ListTeams(ctx context.Context, leagueID string) ([]match.Team, error) {
	return f.teams, f.teamsErr
}

type fakeBroadcast struct {
	poll      *match.PollResult
	pollErr   error
	recent    []match.HistoricalFixture
	recentErr error
	teams     []match.Team
	teamsErr  error
}

func (f *fakeBroadcast) FetchPoll(ctx context.Context, ref match.Match) (*match.PollResult, error) {
	return f.poll, f.pollErr
}

func (f *fakeBroadcast) FetchRecentMatches(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error) {
	return f.recent, f.recentErr
}

func (f *fakeBroadcast) ListTeams(ctx context.Context, leagueID string) ([]match.Team, error) {
	return f.teams, f.teamsErr
}

func sportsFeedMatch(status string) match.Match {
	return match.Match{
		ID:     "Soccer_League_2025_Match_77",
		Date:   time.Date(2025, 3, 8, 19, 0, 0, 0, time.UTC),
		Status: status,
		Home:   match.Team{ProviderID: "Soccer_League_2025_Team_5981", Name: "Palmeiras"},
		Away:   match.Team{ProviderID: "Soccer_League_2025_Team_6044", Name: "Santos"},
		League: match.League{ID: "Soccer_League_2025", Name: "League 2025"},
	}
}

func newTestService(t *testing.T, feed *fakeSportsFeed, comp *fakeCompetition, bc *fakeBroadcast) *MatchDetailService {
	t.Helper()
	svc, err := NewMatchDetailService(feed, comp, bc, nil, 4, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestGetMatchDetailsFacetFailureStaysReady(t *testing.T) {
	t.Parallel()

	base := sportsFeedMatch(match.StatusFinished)
	feed := &fakeSportsFeed{
		details:     base,
		lineups:     &match.Lineups{HomeFormation: "4-3-3"},
		injuriesErr: errors.New("feed timeout"),
	}
	svc := newTestService(t, feed, &fakeCompetition{}, &fakeBroadcast{})

	got, err := svc.GetMatchDetails(context.Background(), base)
	require.NoError(t, err)
	require.Equal(t, StateReady, got.State)
	require.Equal(t, base.ID, got.Match.ID)
	require.NotNil(t, got.Match.Lineups)
	require.Nil(t, got.Match.Injuries)
}

func TestGetMatchDetailsCollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	base := sportsFeedMatch(match.StatusLive)
	feed := &fakeSportsFeed{details: base, detailsDelay: 30 * time.Millisecond}
	svc := newTestService(t, feed, &fakeCompetition{}, &fakeBroadcast{})

	const callers = 12
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetMatchDetails(context.Background(), base)
			if err != nil {
				t.Errorf("GetMatchDetails: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls := atomic.LoadInt32(&feed.detailCalls); calls != 1 {
		t.Fatalf("detail fetches = %d, want 1 shared flight", calls)
	}
}

func TestGetMatchDetailsSkipsEventDataBeforeKickoff(t *testing.T) {
	t.Parallel()

	base := sportsFeedMatch(match.StatusNotStarted)
	feed := &fakeSportsFeed{details: base}
	svc := newTestService(t, feed, &fakeCompetition{}, &fakeBroadcast{})

	got, err := svc.GetMatchDetails(context.Background(), base)
	require.NoError(t, err)
	require.Equal(t, StateReady, got.State)
	require.Zero(t, atomic.LoadInt32(&feed.statsCalls))
	require.Zero(t, atomic.LoadInt32(&feed.timelineCnt))
}

func TestGetMatchDetailsFallsBackToCompetition(t *testing.T) {
	t.Parallel()

	ref := sportsFeedMatch(match.StatusNotStarted)
	feed := &fakeSportsFeed{detailsErr: errors.New("upstream 502")}
	comp := &fakeCompetition{details: match.Match{
		ID:   "10553",
		Home: ref.Home,
		Away: ref.Away,
	}}
	svc := newTestService(t, feed, comp, &fakeBroadcast{})

	got, err := svc.GetMatchDetails(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, StatePartialReady, got.State)
	require.Equal(t, "10553", got.Match.ID)
}

func TestGetMatchDetailsFailedKeepsOriginalReference(t *testing.T) {
	t.Parallel()

	ref := sportsFeedMatch(match.StatusNotStarted)
	feed := &fakeSportsFeed{detailsErr: errors.New("down")}
	comp := &fakeCompetition{detailsErr: errors.New("also down")}
	svc := newTestService(t, feed, comp, &fakeBroadcast{})

	got, err := svc.GetMatchDetails(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, StateFailed, got.State)
	require.Equal(t, ref.ID, got.Match.ID)
	require.Nil(t, got.Match.Lineups)
}

func TestGetMatchDetailsFallbackChainIsReady(t *testing.T) {
	t.Parallel()

	ref := match.Match{
		ID:   "10553",
		Home: match.Team{LocalID: 4, Name: "Palmeiras"},
		Away: match.Team{LocalID: 9, Name: "Santos"},
	}
	comp := &fakeCompetition{details: ref}
	svc := newTestService(t, &fakeSportsFeed{}, comp, &fakeBroadcast{})

	got, err := svc.GetMatchDetails(context.Background(), ref)
	require.NoError(t, err)
	require.Equal(t, StateReady, got.State)
}

func TestGetMatchDetailsEmptyReference(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, &fakeSportsFeed{}, &fakeCompetition{}, &fakeBroadcast{})

	_, err := svc.GetMatchDetails(context.Background(), match.Match{})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetMatchDetailsHonorsCallerCancellation(t *testing.T) {
	t.Parallel()

	base := sportsFeedMatch(match.StatusLive)
	feed := &fakeSportsFeed{details: base, detailsDelay: 50 * time.Millisecond}
	svc := newTestService(t, feed, &fakeCompetition{}, &fakeBroadcast{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	_, err := svc.GetMatchDetails(ctx, base)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// The detached aggregation still ran to completion.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&feed.detailCalls) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestGetScheduleByDateMergesProviders(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC)
	shared := sportsFeedMatch(match.StatusNotStarted)
	shared.Date = day

	feed := &fakeSportsFeed{schedule: []match.Match{shared}}
	comp := &fakeCompetition{schedule: []match.Match{
		{
			// Same meeting under the competition API's numeric namespace.
			ID:   "10553",
			Date: day.Add(19 * time.Hour),
			Home: match.Team{LocalID: 4, Name: "Palmeiras"},
			Away: match.Team{LocalID: 9, Name: "Santos"},
		},
		{
			ID:   "10554",
			Date: day,
			Home: match.Team{LocalID: 2, Name: "Flamengo"},
			Away: match.Team{LocalID: 7, Name: "Fluminense"},
		},
	}}
	svc := newTestService(t, feed, comp, &fakeBroadcast{})

	got, err := svc.GetScheduleByDate(context.Background(), "Soccer_League_2025", day)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, shared.ID, got[0].ID)
	require.Equal(t, "10554", got[1].ID)
}

func TestGetScheduleByDateBothSourcesDown(t *testing.T) {
	t.Parallel()

	feed := &fakeSportsFeed{scheduleErr: errors.New("down")}
	comp := &fakeCompetition{scheduleErr: errors.New("down")}
	svc := newTestService(t, feed, comp, &fakeBroadcast{})

	_, err := svc.GetScheduleByDate(context.Background(), "Soccer_League_2025", time.Now())
	require.ErrorIs(t, err, ErrDependencyUnavailable)
}
