package broadcastwire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/identity"
	"github.com/rahmatagung/scorecenter/internal/platform/cache"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
	"github.com/rahmatagung/scorecenter/internal/usecase"
)

const (
	providerName   = "broadcastwire"
	defaultBaseURL = "https://wire.broadcast.example.com/api"

	pollTTL    = 30 * time.Second
	recentTTL  = 5 * time.Minute
	catalogTTL = 12 * time.Hour
)

type Cache interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	Logger     *logging.Logger
	Cache      Cache
}

// Client talks to the broadcast wire, the source for viewer polls and
// recent-form data. The wire runs its own identifier scheme, so team lookups
// lean on the entity matcher harder than the other adapters.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	store      Cache
}

var _ usecase.BroadcastProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	store := cfg.Cache
	if store == nil {
		store = cache.NewStore(recentTTL)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
		store:      store,
	}
}

type wirePoll struct {
	Home *int64 `json:"home,omitempty"`
	Draw *int64 `json:"draw,omitempty"`
	Away *int64 `json:"away,omitempty"`
}

type wireRecentMatch struct {
	Date      string `json:"date"`
	HomeName  string `json:"homeName"`
	AwayName  string `json:"awayName"`
	HomeID    string `json:"homeId,omitempty"`
	AwayID    string `json:"awayId,omitempty"`
	HomeScore *int   `json:"homeScore,omitempty"`
	AwayScore *int   `json:"awayScore,omitempty"`
}

type wireTeam struct {
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
	Badge  string `json:"badge,omitempty"`
}

// FetchPoll returns the viewer prediction poll for a match, addressed by
// participant names and day since the wire does not know foreign match IDs.
// A missing poll is a nil result, not an error.
func (c *Client) FetchPoll(ctx context.Context, ref match.Match) (*match.PollResult, error) {
	if ref.Home.Name == "" || ref.Away.Name == "" {
		return nil, nil
	}

	query := map[string]string{
		"home": identity.NormalizeName(ref.Home.Name),
		"away": identity.NormalizeName(ref.Away.Name),
		"date": ref.Date.UTC().Format("2006-01-02"),
	}

	var envelope struct {
		Poll *wirePoll `json:"poll,omitempty"`
	}
	if err := c.doJSON(ctx, "/polls", query, pollTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch poll: %w", err)
	}
	if envelope.Poll == nil || envelope.Poll.Home == nil || envelope.Poll.Away == nil {
		return nil, nil
	}

	out := &match.PollResult{
		HomeVotes: *envelope.Poll.Home,
		AwayVotes: *envelope.Poll.Away,
	}
	if envelope.Poll.Draw != nil {
		out.DrawVotes = *envelope.Poll.Draw
	}
	return out, nil
}

func (c *Client) FetchRecentMatches(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error) {
	teamID, err := c.resolveTeamID(ctx, team)
	if err != nil {
		return nil, err
	}
	if teamID == "" {
		return nil, nil
	}

	var envelope struct {
		Matches []wireRecentMatch `json:"matches"`
	}
	if err := c.doJSON(ctx, "/teams/"+url.PathEscape(teamID)+"/recent", nil, recentTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch recent matches id=%s: %w", teamID, err)
	}

	out := make([]match.HistoricalFixture, 0, len(envelope.Matches))
	for _, item := range envelope.Matches {
		if strings.TrimSpace(item.HomeName) == "" || strings.TrimSpace(item.AwayName) == "" {
			continue
		}
		out = append(out, match.HistoricalFixture{
			Date:      parseWireTime(item.Date),
			HomeName:  strings.TrimSpace(item.HomeName),
			AwayName:  strings.TrimSpace(item.AwayName),
			HomeID:    item.HomeID,
			AwayID:    item.AwayID,
			HomeScore: item.HomeScore,
			AwayScore: item.AwayScore,
		})
	}
	return out, nil
}

func (c *Client) ListTeams(ctx context.Context, leagueID string) ([]match.Team, error) {
	query := map[string]string{}
	if strings.TrimSpace(leagueID) != "" {
		query["league"] = strings.TrimSpace(leagueID)
	}

	var envelope struct {
		Teams []wireTeam `json:"teams"`
	}
	if err := c.doJSON(ctx, "/teams", query, catalogTTL, &envelope); err != nil {
		return nil, fmt.Errorf("list teams league=%s: %w", leagueID, err)
	}

	out := make([]match.Team, 0, len(envelope.Teams))
	for _, item := range envelope.Teams {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		out = append(out, match.Team{
			ProviderID: strings.TrimSpace(item.TeamID),
			Name:       name,
			LogoURL:    strings.TrimSpace(item.Badge),
		})
	}
	return out, nil
}

func (c *Client) resolveTeamID(ctx context.Context, team match.Team) (string, error) {
	if id := strings.TrimSpace(team.ProviderID); strings.HasPrefix(id, "BC_") {
		return id, nil
	}

	catalog, err := c.ListTeams(ctx, "")
	if err != nil {
		return "", err
	}
	for _, candidate := range catalog {
		if identity.TeamsMatch(candidate, team) {
			return candidate.ProviderID, nil
		}
	}
	return "", nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, ttl time.Duration, target any) error {
	values := url.Values{}
	for key, value := range query {
		if value != "" {
			values.Set(key, value)
		}
	}
	encoded := values.Encode()

	cacheKey := cache.Key(providerName, path, encoded)
	if cached, ok := c.store.Get(ctx, cacheKey); ok {
		if raw, ok := cached.([]byte); ok {
			if err := sonic.Unmarshal(raw, target); err == nil {
				return nil
			}
			c.store.Delete(ctx, cacheKey)
		}
	}

	fullURL := c.baseURL + path
	if encoded != "" {
		fullURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", usecase.ErrProvider, err)
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send request: %v", usecase.ErrProvider, err)
	}
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("%w: read response body: %v", usecase.ErrProvider, readErr)
	}
	if resp.StatusCode == http.StatusNotFound {
		raw = []byte("{}")
	} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "broadcast wire request failed", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: provider status=%d", usecase.ErrProvider, resp.StatusCode)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode payload: %v", usecase.ErrProvider, err)
	}

	c.store.Set(ctx, cacheKey, raw, ttl)
	return nil
}

func parseWireTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
