package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/identity"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
)

// TeamSearchService answers free-text team lookups across every provider's
// catalog, collapsing entries that the entity matcher resolves to the same
// real-world team.
type TeamSearchService struct {
	sportsFeed  SportsFeedProvider
	competition CompetitionProvider
	broadcast   BroadcastProvider
	logger      *logging.Logger
}

func NewTeamSearchService(
	sportsFeed SportsFeedProvider,
	competition CompetitionProvider,
	broadcast BroadcastProvider,
	logger *logging.Logger,
) *TeamSearchService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TeamSearchService{
		sportsFeed:  sportsFeed,
		competition: competition,
		broadcast:   broadcast,
		logger:      logger,
	}
}

// SearchTeams lists every catalog concurrently and keeps teams whose
// normalized name contains the normalized query. A provider failure drops
// that provider's catalog from the result, nothing more.
func (s *TeamSearchService) SearchTeams(ctx context.Context, leagueID, query string) ([]match.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamSearchService.SearchTeams")
	defer span.End()

	needle := identity.NormalizeName(query)
	if needle == "" {
		return nil, fmt.Errorf("%w: search query is empty", ErrInvalidInput)
	}

	type catalog struct {
		name string
		list func(context.Context, string) ([]match.Team, error)
	}
	catalogs := make([]catalog, 0, 3)
	if s.sportsFeed != nil {
		catalogs = append(catalogs, catalog{"sports_feed", s.sportsFeed.ListTeams})
	}
	if s.competition != nil {
		catalogs = append(catalogs, catalog{"competition", s.competition.ListTeams})
	}
	if s.broadcast != nil {
		catalogs = append(catalogs, catalog{"broadcast", s.broadcast.ListTeams})
	}
	if len(catalogs) == 0 {
		return nil, fmt.Errorf("%w: no team catalog configured", ErrDependencyUnavailable)
	}

	var (
		mu    sync.Mutex
		found []match.Team
		wg    conc.WaitGroup
	)
	for _, c := range catalogs {
		c := c
		wg.Go(func() {
			teams, err := c.list(ctx, leagueID)
			if err != nil {
				s.logger.WarnContext(ctx, "team catalog failed", "provider", c.name, "error", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, team := range teams {
				if strings.Contains(identity.NormalizeName(team.Name), needle) {
					found = append(found, team)
				}
			}
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deduped := dedupeTeams(found)
	sort.Slice(deduped, func(i, j int) bool {
		return identity.NormalizeName(deduped[i].Name) < identity.NormalizeName(deduped[j].Name)
	})
	return deduped, nil
}

// dedupeTeams keeps the first occurrence of each resolved identity, preferring
// the entry that carries a provider identifier when a later duplicate has one
// and the kept entry does not.
func dedupeTeams(teams []match.Team) []match.Team {
	out := make([]match.Team, 0, len(teams))
	for _, candidate := range teams {
		merged := false
		for i := range out {
			if teamsEqual(out[i], candidate) {
				if out[i].ProviderID == "" && candidate.ProviderID != "" {
					out[i].ProviderID = candidate.ProviderID
				}
				if out[i].LogoURL == "" && candidate.LogoURL != "" {
					out[i].LogoURL = candidate.LogoURL
				}
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, candidate)
		}
	}
	return out
}

func teamsEqual(a, b match.Team) bool {
	return identity.TeamsMatch(a, b)
}
