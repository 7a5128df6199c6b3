package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/domain/timeline"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
	"github.com/rahmatagung/scorecenter/internal/usecase"
)

type stubSportsFeed struct {
	details match.Match
	teams   []match.Team
}

func (s *stubSportsFeed) FetchScheduleByDate(ctx context.Context, leagueID string, date time.Time) ([]match.Match, error) {
	return []match.Match{s.details}, nil
}

func (s *stubSportsFeed) FetchMatchDetails(ctx context.Context, ref match.Match) (match.Match, error) {
	return s.details, nil
}

func (s *stubSportsFeed) FetchLineups(ctx context.Context, matchID string) (*match.Lineups, error) {
	return nil, nil
}

func (s *stubSportsFeed) FetchStatistics(ctx context.Context, matchID string) ([]match.StatisticRow, error) {
	return nil, nil
}

func (s *stubSportsFeed) FetchRawTimeline(ctx context.Context, matchID string) (timeline.RawFeed, error) {
	return timeline.RawFeed{}, nil
}

func (s *stubSportsFeed) FetchInjuries(ctx context.Context, teamIDs []string) ([]match.Injury, error) {
	return nil, nil
}

func (s *stubSportsFeed) FetchTopPlayers(ctx context.Context, leagueID string, teamIDs []string) ([]match.TopPlayer, error) {
	return nil, nil
}

func (s *stubSportsFeed) FetchStandings(ctx context.Context, leagueID string) ([]match.StandingRow, error) {
	return nil, nil
}

func (s *stubSportsFeed) FetchTeamHistory(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error) {
	return nil, nil
}

func (s *stubSportsFeed) ListTeams(ctx context.Context, leagueID string) ([]match.Team, error) {
	return s.teams, nil
}

type stubCompetition struct{}

func (s *stubCompetition) FetchScheduleByDate(ctx context.Context, leagueID string, date time.Time) ([]match.Match, error) {
	return nil, nil
}

func (s *stubCompetition) FetchMatchDetails(ctx context.Context, ref match.Match) (match.Match, error) {
	return match.Match{}, nil
}

func (s *stubCompetition) FetchTeamHistory(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error) {
	return nil, nil
}

func (s *stubCompetition) ListTeams(ctx context.Context, leagueID string) ([]match.Team, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	feed := &stubSportsFeed{
		details: match.Match{
			ID:     "Soccer_League_2025_Match_77",
			Date:   time.Date(2025, 3, 8, 19, 0, 0, 0, time.UTC),
			Status: match.StatusFinished,
			Home:   match.Team{ProviderID: "Soccer_League_2025_Team_5981", Name: "Palmeiras"},
			Away:   match.Team{ProviderID: "Soccer_League_2025_Team_6044", Name: "Santos"},
			League: match.League{ID: "Soccer_League_2025"},
		},
		teams: []match.Team{
			{ProviderID: "Soccer_League_2025_Team_5981", Name: "Palmeiras"},
			{ProviderID: "Soccer_League_2025_Team_6044", Name: "Santos"},
		},
	}
	comp := &stubCompetition{}

	matchService, err := usecase.NewMatchDetailService(feed, comp, nil, nil, 4, logging.NewNop())
	if err != nil {
		t.Fatalf("new match detail service: %v", err)
	}
	t.Cleanup(matchService.Close)

	h2hService := usecase.NewHeadToHeadService(comp, nil, logging.NewNop())
	searchService := usecase.NewTeamSearchService(feed, comp, nil, logging.NewNop())

	handler := NewHandler(matchService, h2hService, searchService, nil, slog.New(slog.DiscardHandler))
	return NewRouter(handler, slog.New(slog.DiscardHandler), []string{"*"})
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestReadyzWithoutDependencyIsOK(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestReadyzReportsDependencyFailure(t *testing.T) {
	t.Parallel()

	failing := func(ctx context.Context) error { return errors.New("connection refused") }
	handler := NewHandler(nil, nil, nil, failing, slog.New(slog.DiscardHandler))

	rec := httptest.NewRecorder()
	handler.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestGetMatchDetailsEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	body := `{"match":{"id":"Soccer_League_2025_Match_77","home":{"name":"Palmeiras"},"away":{"name":"Santos"}}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/matches/details", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data usecase.MatchDetails `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.State != usecase.StateReady {
		t.Fatalf("state = %q, want ready", envelope.Data.State)
	}
	if envelope.Data.Match.ID != "Soccer_League_2025_Match_77" {
		t.Fatalf("match id = %q", envelope.Data.Match.ID)
	}
}

func TestGetMatchDetailsRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/matches/details", strings.NewReader(`{"match":`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSearchTeamsEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/teams/search?q=palmeiras", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Palmeiras") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestSearchTeamsEmptyQueryIsBadRequest(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/teams/search", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCORSPreflightAllowsConfiguredOrigin(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/teams/search", nil)
	req.Header.Set("Origin", "https://app.example.com")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q", got)
	}
}
