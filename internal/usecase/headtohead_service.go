package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/identity"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
)

// H2HMatch is one prior meeting between the two teams, oriented so that Home
// always refers to the first team passed to GetHeadToHead regardless of who
// hosted the original fixture.
type H2HMatch struct {
	Date      time.Time `json:"date"`
	HomeName  string    `json:"homeName"`
	AwayName  string    `json:"awayName"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
	Hosted    bool      `json:"hosted"`
}

// H2HRecord is the win/draw/loss and goal tally from the first team's
// perspective.
type H2HRecord struct {
	Total        int `json:"total"`
	Wins         int `json:"wins"`
	Draws        int `json:"draws"`
	Losses       int `json:"losses"`
	GoalsFor     int `json:"goalsFor"`
	GoalsAgainst int `json:"goalsAgainst"`
}

type HeadToHead struct {
	Record  H2HRecord  `json:"record"`
	Matches []H2HMatch `json:"matches"`
}

// HeadToHeadService builds a head-to-head summary between two teams from
// whatever history feeds are reachable. History feeds are noisy: the same
// meeting can appear in both teams' feeds and in more than one provider, with
// home/away flipped, so everything funnels through Compute for dedup and
// orientation.
type HeadToHeadService struct {
	competition CompetitionProvider
	broadcast   BroadcastProvider
	logger      *logging.Logger
}

func NewHeadToHeadService(competition CompetitionProvider, broadcast BroadcastProvider, logger *logging.Logger) *HeadToHeadService {
	if logger == nil {
		logger = logging.Default()
	}
	return &HeadToHeadService{
		competition: competition,
		broadcast:   broadcast,
		logger:      logger,
	}
}

// GetHeadToHead fans out over every history source for both teams and reduces
// the union of fixtures. Individual source failures only shrink the input set.
func (s *HeadToHeadService) GetHeadToHead(ctx context.Context, teamA, teamB match.Team) (HeadToHead, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HeadToHeadService.GetHeadToHead")
	defer span.End()

	if teamA.IsZero() || teamB.IsZero() {
		return HeadToHead{}, fmt.Errorf("%w: both teams are required", ErrInvalidInput)
	}

	type source struct {
		name  string
		fetch func(context.Context, match.Team) ([]match.HistoricalFixture, error)
	}
	sources := make([]source, 0, 2)
	if s.competition != nil {
		sources = append(sources, source{"competition", s.competition.FetchTeamHistory})
	}
	if s.broadcast != nil {
		sources = append(sources, source{"broadcast", s.broadcast.FetchRecentMatches})
	}
	if len(sources) == 0 {
		return HeadToHead{}, fmt.Errorf("%w: no history source configured", ErrDependencyUnavailable)
	}

	var (
		mu       sync.Mutex
		fixtures []match.HistoricalFixture
		wg       conc.WaitGroup
	)
	for _, src := range sources {
		for _, team := range []match.Team{teamA, teamB} {
			src, team := src, team
			wg.Go(func() {
				history, err := src.fetch(ctx, team)
				if err != nil {
					s.logger.DebugContext(ctx, "history source failed",
						"source", src.name, "team", team.Name, "error", err)
					return
				}
				mu.Lock()
				fixtures = append(fixtures, history...)
				mu.Unlock()
			})
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return HeadToHead{}, err
	}
	return Compute(fixtures, teamA, teamB), nil
}

// Compute reduces a union of history fixtures into a head-to-head summary.
// It keeps only fixtures where both teams participate, deduplicates by day
// plus opponent, and reorients every kept fixture to teamA's perspective.
// Fixtures without a full score count toward nothing.
func Compute(fixtures []match.HistoricalFixture, teamA, teamB match.Team) HeadToHead {
	out := HeadToHead{Matches: make([]H2HMatch, 0, len(fixtures))}
	seen := make(map[string]struct{}, len(fixtures))

	for _, fx := range fixtures {
		home := match.Team{ProviderID: fx.HomeID, Name: fx.HomeName}
		away := match.Team{ProviderID: fx.AwayID, Name: fx.AwayName}

		var hosted bool
		switch {
		case identity.TeamsMatch(home, teamA) && identity.TeamsMatch(away, teamB):
			hosted = true
		case identity.TeamsMatch(home, teamB) && identity.TeamsMatch(away, teamA):
			hosted = false
		default:
			continue
		}
		if fx.HomeScore == nil || fx.AwayScore == nil {
			continue
		}

		// Both teams' feeds report the same meeting, so the day alone
		// identifies it once the pair is fixed.
		key := fx.Date.UTC().Format("2006-01-02")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		entry := H2HMatch{Date: fx.Date, Hosted: hosted}
		if hosted {
			entry.HomeName = fx.HomeName
			entry.AwayName = fx.AwayName
			entry.HomeScore = *fx.HomeScore
			entry.AwayScore = *fx.AwayScore
		} else {
			entry.HomeName = fx.AwayName
			entry.AwayName = fx.HomeName
			entry.HomeScore = *fx.AwayScore
			entry.AwayScore = *fx.HomeScore
		}

		out.Matches = append(out.Matches, entry)
		out.Record.Total++
		out.Record.GoalsFor += entry.HomeScore
		out.Record.GoalsAgainst += entry.AwayScore
		switch {
		case entry.HomeScore > entry.AwayScore:
			out.Record.Wins++
		case entry.HomeScore < entry.AwayScore:
			out.Record.Losses++
		default:
			out.Record.Draws++
		}
	}

	sort.Slice(out.Matches, func(i, j int) bool {
		return out.Matches[i].Date.After(out.Matches[j].Date)
	})
	return out
}
