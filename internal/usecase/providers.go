package usecase

import (
	"context"
	"time"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/domain/timeline"
)

// SportsFeedProvider is the primary provider family: composite string
// identifiers, the richest facet coverage. Facet calls return their zero
// value with a nil error on "no data" and a wrapped ErrProvider on
// transport/parse failure.
type SportsFeedProvider interface {
	FetchScheduleByDate(ctx context.Context, leagueID string, date time.Time) ([]match.Match, error)
	FetchMatchDetails(ctx context.Context, ref match.Match) (match.Match, error)
	FetchLineups(ctx context.Context, matchID string) (*match.Lineups, error)
	FetchStatistics(ctx context.Context, matchID string) ([]match.StatisticRow, error)
	FetchRawTimeline(ctx context.Context, matchID string) (timeline.RawFeed, error)
	FetchInjuries(ctx context.Context, teamIDs []string) ([]match.Injury, error)
	FetchTopPlayers(ctx context.Context, leagueID string, teamIDs []string) ([]match.TopPlayer, error)
	FetchStandings(ctx context.Context, leagueID string) ([]match.StandingRow, error)
	FetchTeamHistory(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error)
	ListTeams(ctx context.Context, leagueID string) ([]match.Team, error)
}

// CompetitionProvider is the REST competition API, keyed by numeric local
// IDs; the fallback chain for match details and one of the two sources of
// head-to-head history.
type CompetitionProvider interface {
	FetchScheduleByDate(ctx context.Context, leagueID string, date time.Time) ([]match.Match, error)
	FetchMatchDetails(ctx context.Context, ref match.Match) (match.Match, error)
	FetchTeamHistory(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error)
	ListTeams(ctx context.Context, leagueID string) ([]match.Team, error)
}

// BroadcastProvider is the broadcast-oriented feed: polls and recent form,
// under its own identifier scheme.
type BroadcastProvider interface {
	FetchPoll(ctx context.Context, ref match.Match) (*match.PollResult, error)
	FetchRecentMatches(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error)
	ListTeams(ctx context.Context, leagueID string) ([]match.Team, error)
}
