package broadcastwire

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/platform/cache"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Logger:     logging.NewNop(),
		Cache:      cache.NewStore(time.Minute),
	})
}

func TestFetchPoll(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("home"); got != "palmeiras" {
			t.Errorf("home query = %q, want normalized name", got)
		}
		_, _ = w.Write([]byte(`{"poll":{"home":1200,"draw":300,"away":450}}`))
	}))

	ref := match.Match{
		Date: time.Date(2025, 3, 8, 19, 0, 0, 0, time.UTC),
		Home: match.Team{Name: "Palmeiras"},
		Away: match.Team{Name: "Santos"},
	}
	got, err := client.FetchPoll(context.Background(), ref)
	if err != nil {
		t.Fatalf("FetchPoll: %v", err)
	}
	if got == nil || got.HomeVotes != 1200 || got.DrawVotes != 300 || got.AwayVotes != 450 {
		t.Fatalf("poll = %+v", got)
	}
}

func TestFetchPollMissingIsNil(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	ref := match.Match{
		Home: match.Team{Name: "Palmeiras"},
		Away: match.Team{Name: "Santos"},
	}
	got, err := client.FetchPoll(context.Background(), ref)
	if err != nil {
		t.Fatalf("FetchPoll: %v", err)
	}
	if got != nil {
		t.Fatalf("poll = %+v, want nil for absent poll", got)
	}
}

func TestFetchRecentMatchesResolvesForeignTeam(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/teams":
			_, _ = w.Write([]byte(`{"teams":[
				{"teamId":"BC_Team_5981","name":"SE Palmeiras"},
				{"teamId":"BC_Team_6044","name":"Santos FC"}
			]}`))
		case "/teams/BC_Team_5981/recent":
			_, _ = w.Write([]byte(`{"matches":[
				{"date":"2025-02-20","homeName":"SE Palmeiras","awayName":"Flamengo","homeScore":1,"awayScore":1}
			]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	// Sports-feed composite ID shares the numeric suffix with the wire's own.
	team := match.Team{ProviderID: "Soccer_League_2025_Team_5981", Name: "Palmeiras"}
	got, err := client.FetchRecentMatches(context.Background(), team)
	if err != nil {
		t.Fatalf("FetchRecentMatches: %v", err)
	}
	if len(got) != 1 || got[0].HomeName != "SE Palmeiras" {
		t.Fatalf("recent = %+v", got)
	}
}
