package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
)

func TestSearchTeamsDedupesAcrossProviders(t *testing.T) {
	t.Parallel()

	feed := &fakeSportsFeed{teams: []match.Team{
		{ProviderID: "Soccer_League_2025_Team_5981", Name: "SE Palmeiras"},
		{ProviderID: "Soccer_League_2025_Team_6044", Name: "Santos FC"},
	}}
	comp := &fakeCompetition{teams: []match.Team{
		{LocalID: 4, Name: "Palmeiras"},
	}}
	bc := &fakeBroadcast{teams: []match.Team{
		{ProviderID: "BC_Team_5981", Name: "Palmeiras", LogoURL: "https://cdn.example/palmeiras.png"},
	}}

	svc := NewTeamSearchService(feed, comp, bc, logging.NewNop())
	got, err := svc.SearchTeams(context.Background(), "Soccer_League_2025", "palmeiras")
	if err != nil {
		t.Fatalf("SearchTeams: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("teams = %d, want 1 after identity dedup: %+v", len(got), got)
	}
}

func TestSearchTeamsDiacriticInsensitive(t *testing.T) {
	t.Parallel()

	comp := &fakeCompetition{teams: []match.Team{
		{LocalID: 11, Name: "São Paulo"},
		{LocalID: 12, Name: "Botafogo"},
	}}
	svc := NewTeamSearchService(nil, comp, nil, logging.NewNop())

	got, err := svc.SearchTeams(context.Background(), "", "sao paulo")
	if err != nil {
		t.Fatalf("SearchTeams: %v", err)
	}
	if len(got) != 1 || got[0].LocalID != 11 {
		t.Fatalf("teams = %+v, want the São Paulo entry", got)
	}
}

func TestSearchTeamsToleratesProviderFailure(t *testing.T) {
	t.Parallel()

	feed := &fakeSportsFeed{teamsErr: errors.New("catalog down")}
	comp := &fakeCompetition{teams: []match.Team{{LocalID: 9, Name: "Santos"}}}

	svc := NewTeamSearchService(feed, comp, nil, logging.NewNop())
	got, err := svc.SearchTeams(context.Background(), "", "santos")
	if err != nil {
		t.Fatalf("SearchTeams: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("teams = %d, want 1 from the surviving catalog", len(got))
	}
}

func TestSearchTeamsEmptyQuery(t *testing.T) {
	t.Parallel()

	svc := NewTeamSearchService(nil, &fakeCompetition{}, nil, logging.NewNop())
	if _, err := svc.SearchTeams(context.Background(), "", "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
