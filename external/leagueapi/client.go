package leagueapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
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
	providerName   = "leagueapi"
	defaultBaseURL = "https://api.competitions.example.com/v1"

	scheduleTTL = time.Minute
	detailsTTL  = 30 * time.Second
	historyTTL  = 5 * time.Minute
	catalogTTL  = 12 * time.Hour
)

// Cache is the raw-blob slice of the cache layer the adapter writes through.
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

// Client talks to the REST competition API, the fallback chain for match
// details and one of the head-to-head history sources. Identifiers here are
// plain numerics, unique only within this API's namespace.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	store      Cache
}

var _ usecase.CompetitionProvider = (*Client)(nil)

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
		store = cache.NewStore(historyTTL)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
		store:      store,
	}
}

func (c *Client) FetchScheduleByDate(ctx context.Context, leagueID string, date time.Time) ([]match.Match, error) {
	var envelope struct {
		Matches []wireMatch `json:"matches"`
	}
	query := map[string]string{
		"league": strings.TrimSpace(leagueID),
		"date":   date.UTC().Format("2006-01-02"),
	}
	if err := c.doJSON(ctx, "/matches", query, scheduleTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch schedule league=%s: %w", leagueID, err)
	}

	out := make([]match.Match, 0, len(envelope.Matches))
	for _, item := range envelope.Matches {
		mapped := mapWireMatch(item)
		if mapped.ID == "" {
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) FetchMatchDetails(ctx context.Context, ref match.Match) (match.Match, error) {
	matchID := strings.TrimSpace(ref.ID)
	if _, err := strconv.ParseInt(matchID, 10, 64); err != nil {
		// Foreign identifier: this API cannot address it directly, so search
		// the day's schedule by participant names instead.
		return c.findByParticipants(ctx, ref)
	}

	var envelope struct {
		Match wireMatch `json:"match"`
	}
	if err := c.doJSON(ctx, "/matches/"+url.PathEscape(matchID), nil, detailsTTL, &envelope); err != nil {
		return match.Match{}, fmt.Errorf("fetch match details id=%s: %w", matchID, err)
	}
	return mapWireMatch(envelope.Match), nil
}

func (c *Client) findByParticipants(ctx context.Context, ref match.Match) (match.Match, error) {
	if ref.Home.IsZero() || ref.Away.IsZero() || ref.Date.IsZero() {
		return match.Match{}, nil
	}

	schedule, err := c.FetchScheduleByDate(ctx, "", ref.Date)
	if err != nil {
		return match.Match{}, err
	}
	for _, candidate := range schedule {
		if identity.TeamsMatch(candidate.Home, ref.Home) && identity.TeamsMatch(candidate.Away, ref.Away) {
			return candidate, nil
		}
	}
	return match.Match{}, nil
}

func (c *Client) FetchTeamHistory(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error) {
	teamID, err := c.resolveTeamID(ctx, team)
	if err != nil {
		return nil, err
	}
	if teamID == 0 {
		return nil, nil
	}

	var envelope struct {
		Fixtures []wireFixture `json:"fixtures"`
	}
	path := "/teams/" + strconv.FormatInt(teamID, 10) + "/matches"
	if err := c.doJSON(ctx, path, map[string]string{"limit": "50"}, historyTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch team history id=%d: %w", teamID, err)
	}

	out := make([]match.HistoricalFixture, 0, len(envelope.Fixtures))
	for _, item := range envelope.Fixtures {
		if strings.TrimSpace(item.HomeName) == "" || strings.TrimSpace(item.AwayName) == "" {
			continue
		}
		out = append(out, match.HistoricalFixture{
			Date:      parseAPITime(item.Date),
			HomeName:  strings.TrimSpace(item.HomeName),
			AwayName:  strings.TrimSpace(item.AwayName),
			HomeID:    formatLocalID(item.HomeID),
			AwayID:    formatLocalID(item.AwayID),
			HomeScore: item.HomeScore,
			AwayScore: item.AwayScore,
		})
	}
	return out, nil
}

func (c *Client) ListTeams(ctx context.Context, leagueID string) ([]match.Team, error) {
	var envelope struct {
		Teams []wireTeam `json:"teams"`
	}
	query := map[string]string{}
	if strings.TrimSpace(leagueID) != "" {
		query["league"] = strings.TrimSpace(leagueID)
	}
	if err := c.doJSON(ctx, "/teams", query, catalogTTL, &envelope); err != nil {
		return nil, fmt.Errorf("list teams league=%s: %w", leagueID, err)
	}

	out := make([]match.Team, 0, len(envelope.Teams))
	for _, item := range envelope.Teams {
		mapped := mapWireTeam(item)
		if mapped.IsZero() {
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) resolveTeamID(ctx context.Context, team match.Team) (int64, error) {
	if team.LocalID > 0 {
		return team.LocalID, nil
	}
	if team.Name == "" {
		return 0, nil
	}

	catalog, err := c.ListTeams(ctx, "")
	if err != nil {
		return 0, err
	}
	for _, candidate := range catalog {
		if identity.TeamsMatch(candidate, team) {
			return candidate.LocalID, nil
		}
	}
	return 0, nil
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
	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	_ = resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("%w: read response body: %v", usecase.ErrProvider, readErr)
	}
	if resp.StatusCode == http.StatusNotFound {
		raw = []byte("{}")
	} else if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "competition api request failed", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("%w: provider status=%d", usecase.ErrProvider, resp.StatusCode)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode payload: %v", usecase.ErrProvider, err)
	}

	c.store.Set(ctx, cacheKey, raw, ttl)
	return nil
}

func formatLocalID(id int64) string {
	if id <= 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}
