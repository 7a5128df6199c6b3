package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
	"github.com/rahmatagung/scorecenter/internal/platform/resilience"
)

// DetailState is the terminal state of one aggregation request.
type DetailState string

const (
	// StateReady: a base match record was obtained from the primary chain;
	// any number of optional facets may still be absent.
	StateReady DetailState = "ready"
	// StatePartialReady: the primary chain produced nothing and the base
	// record came from the fallback competition API, so facet coverage is
	// reduced by construction.
	StatePartialReady DetailState = "partial_ready"
	// StateFailed: no provider produced a base record; the caller's original
	// reference is returned unenriched.
	StateFailed DetailState = "failed"
)

type MatchDetails struct {
	Match match.Enriched `json:"match"`
	State DetailState    `json:"state"`
}

// MatchDetailService is the aggregation orchestrator: it classifies a match
// reference onto a provider chain, fans facet fetches out concurrently and
// merges whatever arrived into one enriched match. Facet failures never fail
// the request.
type MatchDetailService struct {
	sportsFeed  SportsFeedProvider
	competition CompetitionProvider
	broadcast   BroadcastProvider
	timelines   *TimelineService

	pool   *ants.Pool
	flight resilience.SingleFlight
	logger *logging.Logger
}

func NewMatchDetailService(
	sportsFeed SportsFeedProvider,
	competition CompetitionProvider,
	broadcast BroadcastProvider,
	timelines *TimelineService,
	facetWorkers int,
	logger *logging.Logger,
) (*MatchDetailService, error) {
	if sportsFeed == nil || competition == nil {
		return nil, fmt.Errorf("%w: sports feed and competition providers are required", ErrDependencyUnavailable)
	}
	if timelines == nil {
		timelines = NewTimelineService()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if facetWorkers < 1 {
		facetWorkers = 8
	}

	pool, err := ants.NewPool(facetWorkers)
	if err != nil {
		return nil, fmt.Errorf("create facet worker pool: %w", err)
	}

	return &MatchDetailService{
		sportsFeed:  sportsFeed,
		competition: competition,
		broadcast:   broadcast,
		timelines:   timelines,
		pool:        pool,
		logger:      logger,
	}, nil
}

func (s *MatchDetailService) Close() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// GetMatchDetails aggregates every available facet for ref. Concurrent calls
// for the same logical match share one in-flight aggregation. The underlying
// fetches run detached from the caller's context so a torn-down view still
// warms the cache; caller cancellation is honored here, at the merge point,
// by discarding the result.
func (s *MatchDetailService) GetMatchDetails(ctx context.Context, ref match.Match) (MatchDetails, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchDetailService.GetMatchDetails")
	defer span.End()

	if ref.ID == "" && ref.Home.IsZero() && ref.Away.IsZero() {
		return MatchDetails{}, fmt.Errorf("%w: match reference is empty", ErrInvalidInput)
	}

	key := detailFlightKey(ref)
	detached := context.WithoutCancel(ctx)

	out, _, shared := s.flight.Do(key, func() (any, error) {
		return s.aggregate(detached, ref), nil
	})

	if err := ctx.Err(); err != nil {
		return MatchDetails{}, err
	}

	details, ok := out.(MatchDetails)
	if !ok {
		return MatchDetails{}, fmt.Errorf("unexpected aggregation result type %T", out)
	}
	if shared {
		s.logger.DebugContext(ctx, "joined in-flight aggregation", "key", key)
	}
	return details, nil
}

func (s *MatchDetailService) aggregate(ctx context.Context, ref match.Match) MatchDetails {
	chain := ClassifyChain(ref)

	if chain == ChainSportsFeed {
		if details, ok := s.aggregateSportsFeed(ctx, ref); ok {
			return details
		}
		// Primary chain produced nothing; degrade to the fallback call.
	}

	base, err := s.competition.FetchMatchDetails(ctx, ref)
	if err != nil || base.ID == "" {
		if err != nil {
			s.logger.WarnContext(ctx, "fallback match details failed", "match_id", ref.ID, "error", err)
		}
		return MatchDetails{
			Match: match.Enriched{Match: ref},
			State: StateFailed,
		}
	}

	state := StatePartialReady
	if chain == ChainFallback {
		// The fallback chain is the native chain for this match; nothing was
		// degraded.
		state = StateReady
	}
	return MatchDetails{
		Match: match.Enriched{Match: base},
		State: state,
	}
}

func (s *MatchDetailService) aggregateSportsFeed(ctx context.Context, ref match.Match) (MatchDetails, bool) {
	base, err := s.sportsFeed.FetchMatchDetails(ctx, ref)
	if err != nil || base.ID == "" {
		if err != nil {
			s.logger.WarnContext(ctx, "sports feed match details failed", "match_id", ref.ID, "error", err)
		}
		return MatchDetails{}, false
	}

	enriched := match.Enriched{Match: base}
	var mu sync.Mutex
	var wg sync.WaitGroup

	run := func(name string, task func(context.Context) error) {
		wg.Add(1)
		submit := s.pool.Submit(func() {
			defer wg.Done()
			if err := task(ctx); err != nil {
				// A failed facet stays absent; it never aborts the request.
				s.logger.WarnContext(ctx, "facet fetch failed",
					"facet", name,
					"match_id", base.ID,
					"error", err,
				)
			}
		})
		if submit != nil {
			wg.Done()
			s.logger.WarnContext(ctx, "facet submit rejected", "facet", name, "error", submit)
		}
	}

	teamIDs := collectTeamIDs(base)

	run("lineups", func(ctx context.Context) error {
		lineups, err := s.sportsFeed.FetchLineups(ctx, base.ID)
		if err != nil {
			return err
		}
		mu.Lock()
		enriched.Lineups = lineups
		mu.Unlock()
		return nil
	})

	run("injuries", func(ctx context.Context) error {
		injuries, err := s.sportsFeed.FetchInjuries(ctx, teamIDs)
		if err != nil {
			return err
		}
		mu.Lock()
		enriched.Injuries = injuries
		mu.Unlock()
		return nil
	})

	run("top_players", func(ctx context.Context) error {
		players, err := s.sportsFeed.FetchTopPlayers(ctx, base.League.ID, teamIDs)
		if err != nil {
			return err
		}
		mu.Lock()
		enriched.TopPlayers = players
		mu.Unlock()
		return nil
	})

	run("standings", func(ctx context.Context) error {
		standings, err := s.sportsFeed.FetchStandings(ctx, base.League.ID)
		if err != nil {
			return err
		}
		mu.Lock()
		enriched.Standings = standings
		mu.Unlock()
		return nil
	})

	run("recent_home", func(ctx context.Context) error {
		recent, err := s.recentMatches(ctx, base.Home)
		if err != nil {
			return err
		}
		mu.Lock()
		enriched.RecentHome = recent
		mu.Unlock()
		return nil
	})

	run("recent_away", func(ctx context.Context) error {
		recent, err := s.recentMatches(ctx, base.Away)
		if err != nil {
			return err
		}
		mu.Lock()
		enriched.RecentAway = recent
		mu.Unlock()
		return nil
	})

	if s.broadcast != nil {
		run("poll", func(ctx context.Context) error {
			poll, err := s.broadcast.FetchPoll(ctx, base)
			if err != nil {
				return err
			}
			mu.Lock()
			enriched.Poll = poll
			mu.Unlock()
			return nil
		})
	}

	// Event data is pointless for a game that has not been played.
	if !match.EventDataPointless(base.Status) {
		run("statistics", func(ctx context.Context) error {
			stats, err := s.sportsFeed.FetchStatistics(ctx, base.ID)
			if err != nil {
				return err
			}
			mu.Lock()
			enriched.Statistics = stats
			mu.Unlock()
			return nil
		})

		run("timeline", func(ctx context.Context) error {
			feed, err := s.sportsFeed.FetchRawTimeline(ctx, base.ID)
			if err != nil {
				return err
			}
			events := s.timelines.Transform(feed, base.Home)
			mu.Lock()
			enriched.Timeline = events
			mu.Unlock()
			return nil
		})
	}

	wg.Wait()

	return MatchDetails{Match: enriched, State: StateReady}, true
}

func (s *MatchDetailService) recentMatches(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error) {
	if s.broadcast != nil {
		recent, err := s.broadcast.FetchRecentMatches(ctx, team)
		if err == nil && len(recent) > 0 {
			return recent, nil
		}
		if err != nil {
			s.logger.DebugContext(ctx, "broadcast recent matches unavailable", "team", team.Name, "error", err)
		}
	}
	return s.sportsFeed.FetchTeamHistory(ctx, team)
}

// GetScheduleByDate merges both schedule-capable providers, preferring the
// sports feed and topping up with competition-API matches not already
// covered.
func (s *MatchDetailService) GetScheduleByDate(ctx context.Context, leagueID string, date time.Time) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchDetailService.GetScheduleByDate")
	defer span.End()

	if strings.TrimSpace(leagueID) == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	primary, primaryErr := s.sportsFeed.FetchScheduleByDate(ctx, leagueID, date)
	if primaryErr != nil {
		s.logger.WarnContext(ctx, "sports feed schedule failed", "league_id", leagueID, "error", primaryErr)
	}

	fallback, fallbackErr := s.competition.FetchScheduleByDate(ctx, leagueID, date)
	if fallbackErr != nil {
		s.logger.WarnContext(ctx, "competition schedule failed", "league_id", leagueID, "error", fallbackErr)
	}

	if primaryErr != nil && fallbackErr != nil {
		return nil, fmt.Errorf("%w: no schedule source available", ErrDependencyUnavailable)
	}

	out := make([]match.Match, 0, len(primary)+len(fallback))
	out = append(out, primary...)
	for _, candidate := range fallback {
		if !scheduleContains(out, candidate) {
			out = append(out, candidate)
		}
	}
	return out, nil
}

func scheduleContains(existing []match.Match, candidate match.Match) bool {
	for _, m := range existing {
		if m.ID != "" && m.ID == candidate.ID {
			return true
		}
		if sameDay(m.Date, candidate.Date) &&
			teamsEqual(m.Home, candidate.Home) &&
			teamsEqual(m.Away, candidate.Away) {
			return true
		}
	}
	return false
}

func collectTeamIDs(m match.Match) []string {
	out := make([]string, 0, 2)
	if id := strings.TrimSpace(m.Home.ProviderID); id != "" {
		out = append(out, id)
	}
	if id := strings.TrimSpace(m.Away.ProviderID); id != "" {
		out = append(out, id)
	}
	return out
}

func detailFlightKey(ref match.Match) string {
	if id := strings.TrimSpace(ref.ID); id != "" {
		return "match:" + id
	}
	return fmt.Sprintf("match:%s|%s|%s|%s",
		ref.League.ID, ref.Home.Name, ref.Away.Name, ref.Date.UTC().Format("2006-01-02"))
}

func sameDay(a, b time.Time) bool {
	ya, ma, da := a.UTC().Date()
	yb, mb, db := b.UTC().Date()
	return ya == yb && ma == mb && da == db
}
