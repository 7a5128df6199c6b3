package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
)

func intp(v int) *int { return &v }

func TestComputeEmptyHistories(t *testing.T) {
	t.Parallel()

	got := Compute(nil,
		match.Team{Name: "Palmeiras"},
		match.Team{Name: "Santos"},
	)
	if got.Record != (H2HRecord{}) {
		t.Fatalf("record = %+v, want zero", got.Record)
	}
	if len(got.Matches) != 0 {
		t.Fatalf("matches = %d, want 0", len(got.Matches))
	}
}

func TestComputeDedupesSymmetricFeeds(t *testing.T) {
	t.Parallel()

	teamA := match.Team{ProviderID: "Feed_A_Team_5981", Name: "Palmeiras"}
	teamB := match.Team{ProviderID: "Feed_A_Team_6044", Name: "Santos"}
	day := time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)

	fixtures := []match.HistoricalFixture{
		// Same meeting as seen from A's feed and from B's feed, with the
		// orientation flipped and one side using a different provider ID.
		{Date: day.Add(20 * time.Hour), HomeName: "Palmeiras", AwayName: "Santos", HomeScore: intp(2), AwayScore: intp(1)},
		{Date: day, HomeName: "Santos", AwayName: "Palmeiras", HomeID: "Feed_B_Team_6044", AwayID: "Feed_B_Team_5981", HomeScore: intp(1), AwayScore: intp(2)},
		// A meeting where neither side is the pair under analysis.
		{Date: day, HomeName: "Flamengo", AwayName: "Gremio", HomeScore: intp(0), AwayScore: intp(0)},
	}

	got := Compute(fixtures, teamA, teamB)
	if got.Record.Total != 1 {
		t.Fatalf("total = %d, want 1 after dedup", got.Record.Total)
	}
	if got.Record.Wins != 1 || got.Record.Draws != 0 || got.Record.Losses != 0 {
		t.Fatalf("record = %+v, want one win for Palmeiras", got.Record)
	}
}

func TestComputeOrientationNormalization(t *testing.T) {
	t.Parallel()

	teamA := match.Team{Name: "Palmeiras"}
	teamB := match.Team{Name: "Santos"}

	fixtures := []match.HistoricalFixture{
		// Palmeiras hosted and won 3-0.
		{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), HomeName: "Palmeiras", AwayName: "Santos", HomeScore: intp(3), AwayScore: intp(0)},
		// Santos hosted and won 2-1: a loss from Palmeiras' perspective.
		{Date: time.Date(2024, 8, 14, 0, 0, 0, 0, time.UTC), HomeName: "Santos", AwayName: "Palmeiras", HomeScore: intp(2), AwayScore: intp(1)},
		// Draw away.
		{Date: time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC), HomeName: "Santos", AwayName: "Palmeiras", HomeScore: intp(1), AwayScore: intp(1)},
		// Abandoned row with no score counts toward nothing.
		{Date: time.Date(2025, 3, 30, 0, 0, 0, 0, time.UTC), HomeName: "Palmeiras", AwayName: "Santos"},
	}

	got := Compute(fixtures, teamA, teamB)

	if got.Record.Total != 3 {
		t.Fatalf("total = %d, want 3", got.Record.Total)
	}
	if sum := got.Record.Wins + got.Record.Draws + got.Record.Losses; sum != got.Record.Total {
		t.Fatalf("wins+draws+losses = %d, total = %d", sum, got.Record.Total)
	}
	if got.Record.Wins != 1 || got.Record.Losses != 1 || got.Record.Draws != 1 {
		t.Fatalf("record = %+v, want 1/1/1", got.Record)
	}
	if got.Record.GoalsFor != 5 || got.Record.GoalsAgainst != 3 {
		t.Fatalf("goal totals = %d:%d, want 5:3 after orientation", got.Record.GoalsFor, got.Record.GoalsAgainst)
	}

	// Matches come back newest first, oriented to teamA.
	if !got.Matches[0].Date.After(got.Matches[1].Date) {
		t.Fatalf("matches not sorted newest first: %v before %v", got.Matches[0].Date, got.Matches[1].Date)
	}
	for _, m := range got.Matches {
		if m.HomeName != "Palmeiras" {
			t.Fatalf("entry not oriented to first team: %+v", m)
		}
	}
}

func TestGetHeadToHeadMergesSourcesAndToleratesFailure(t *testing.T) {
	t.Parallel()

	teamA := match.Team{Name: "Palmeiras"}
	teamB := match.Team{Name: "Santos"}

	comp := &fakeCompetition{history: []match.HistoricalFixture{
		{Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), HomeName: "Palmeiras", AwayName: "Santos", HomeScore: intp(3), AwayScore: intp(0)},
	}}
	bc := &fakeBroadcast{recentErr: errors.New("broadcast feed down")}

	svc := NewHeadToHeadService(comp, bc, logging.NewNop())
	got, err := svc.GetHeadToHead(context.Background(), teamA, teamB)
	if err != nil {
		t.Fatalf("GetHeadToHead: %v", err)
	}
	if got.Record.Total != 1 || got.Record.Wins != 1 {
		t.Fatalf("record = %+v, want one win from the surviving source", got.Record)
	}
}

func TestGetHeadToHeadRequiresBothTeams(t *testing.T) {
	t.Parallel()

	svc := NewHeadToHeadService(&fakeCompetition{}, &fakeBroadcast{}, logging.NewNop())
	_, err := svc.GetHeadToHead(context.Background(), match.Team{Name: "Palmeiras"}, match.Team{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
