package sportsfeed

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
	"github.com/rahmatagung/scorecenter/internal/domain/timeline"
	"github.com/rahmatagung/scorecenter/internal/identity"
	"github.com/rahmatagung/scorecenter/internal/platform/cache"
	"github.com/rahmatagung/scorecenter/internal/platform/logging"
	"github.com/rahmatagung/scorecenter/internal/platform/resilience"
	"github.com/rahmatagung/scorecenter/internal/usecase"
)

const (
	providerName   = "sportsfeed"
	defaultBaseURL = "https://feed.sportsdata.example.com/v2"

	scheduleTTL  = time.Minute
	detailsTTL   = 30 * time.Second
	facetTTL     = 2 * time.Minute
	catalogTTL   = 12 * time.Hour
	standingsTTL = 10 * time.Minute
)

// ByteCache is the slice of the cache layer this adapter needs: raw response
// blobs keyed by request signature.
type ByteCache interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	Cache          ByteCache
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the composite-identifier sports feed. Every successful
// response is written through the cache layer; the breaker and singleflight
// sit between callers and the wire.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	maxRetries     int
	logger         *logging.Logger
	store          ByteCache
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

var _ usecase.SportsFeedProvider = (*Client)(nil)

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
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	store := cfg.Cache
	if store == nil {
		store = cache.NewStore(facetTTL)
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		maxRetries:     cfg.MaxRetries,
		logger:         logger,
		store:          store,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureLimit, breakerCfg.Cooldown, breakerCfg.ProbeLimit),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) FetchScheduleByDate(ctx context.Context, leagueID string, date time.Time) ([]match.Match, error) {
	path := "/schedules/" + url.PathEscape(leagueID)
	query := map[string]string{"date": date.UTC().Format("2006-01-02")}

	var envelope scheduleEnvelope
	if err := c.doJSON(ctx, path, query, scheduleTTL, &envelope); err != nil {
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
	if matchID == "" || !strings.Contains(strings.ToLower(matchID), "_match_") {
		resolved, ok := resolveForeignMatch(ref)
		if !ok {
			return match.Match{}, nil
		}
		matchID = resolved
	}

	var envelope detailsEnvelope
	if err := c.doJSON(ctx, "/matches/"+url.PathEscape(matchID), nil, detailsTTL, &envelope); err != nil {
		return match.Match{}, fmt.Errorf("fetch match details id=%s: %w", matchID, err)
	}
	return mapWireMatch(envelope.Match), nil
}

func (c *Client) FetchLineups(ctx context.Context, matchID string) (*match.Lineups, error) {
	var envelope lineupsEnvelope
	if err := c.doJSON(ctx, "/matches/"+url.PathEscape(matchID)+"/lineups", nil, facetTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch lineups id=%s: %w", matchID, err)
	}
	return mapWireLineups(envelope), nil
}

func (c *Client) FetchStatistics(ctx context.Context, matchID string) ([]match.StatisticRow, error) {
	var envelope statisticsEnvelope
	if err := c.doJSON(ctx, "/matches/"+url.PathEscape(matchID)+"/statistics", nil, facetTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch statistics id=%s: %w", matchID, err)
	}
	return pairStatistics(envelope.Home, envelope.Away), nil
}

func (c *Client) FetchRawTimeline(ctx context.Context, matchID string) (timeline.RawFeed, error) {
	var envelope timelineEnvelope
	if err := c.doJSON(ctx, "/matches/"+url.PathEscape(matchID)+"/events", nil, facetTTL, &envelope); err != nil {
		return timeline.RawFeed{}, fmt.Errorf("fetch timeline id=%s: %w", matchID, err)
	}
	return mapWireTimeline(envelope), nil
}

func (c *Client) FetchInjuries(ctx context.Context, teamIDs []string) ([]match.Injury, error) {
	ids := joinIDs(teamIDs)
	if ids == "" {
		return nil, nil
	}

	var envelope injuriesEnvelope
	if err := c.doJSON(ctx, "/teams/injuries", map[string]string{"teamIds": ids}, facetTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch injuries teams=%s: %w", ids, err)
	}

	out := make([]match.Injury, 0, len(envelope.Injuries))
	for _, item := range envelope.Injuries {
		if strings.TrimSpace(item.PlayerName) == "" {
			continue
		}
		out = append(out, match.Injury{
			PlayerName: strings.TrimSpace(item.PlayerName),
			TeamID:     item.TeamID,
			Reason:     item.Reason,
			Status:     item.Status,
		})
	}
	return out, nil
}

func (c *Client) FetchTopPlayers(ctx context.Context, leagueID string, teamIDs []string) ([]match.TopPlayer, error) {
	query := map[string]string{}
	if ids := joinIDs(teamIDs); ids != "" {
		query["teamIds"] = ids
	}

	var envelope topPlayersEnvelope
	if err := c.doJSON(ctx, "/leagues/"+url.PathEscape(leagueID)+"/top-players", query, facetTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch top players league=%s: %w", leagueID, err)
	}

	out := make([]match.TopPlayer, 0, len(envelope.Players))
	for _, item := range envelope.Players {
		if strings.TrimSpace(item.PlayerName) == "" {
			continue
		}
		out = append(out, match.TopPlayer{
			PlayerName: strings.TrimSpace(item.PlayerName),
			TeamID:     item.TeamID,
			Metric:     item.Metric,
			Value:      item.Value,
		})
	}
	return out, nil
}

func (c *Client) FetchStandings(ctx context.Context, leagueID string) ([]match.StandingRow, error) {
	var envelope standingsEnvelope
	if err := c.doJSON(ctx, "/leagues/"+url.PathEscape(leagueID)+"/standings", nil, standingsTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch standings league=%s: %w", leagueID, err)
	}

	out := make([]match.StandingRow, 0, len(envelope.Rows))
	for _, item := range envelope.Rows {
		out = append(out, match.StandingRow{
			Position: item.Position,
			Team: match.Team{
				ProviderID: item.TeamID,
				Name:       strings.TrimSpace(item.TeamName),
				LogoURL:    item.Logo,
			},
			Played: item.Played,
			Won:    item.Won,
			Draw:   item.Draw,
			Lost:   item.Lost,
			Points: item.Points,
			Form:   item.Form,
		})
	}
	return out, nil
}

func (c *Client) FetchTeamHistory(ctx context.Context, team match.Team) ([]match.HistoricalFixture, error) {
	teamID, err := c.resolveTeamID(ctx, team)
	if err != nil {
		return nil, err
	}
	if teamID == "" {
		return nil, nil
	}

	var envelope historyEnvelope
	if err := c.doJSON(ctx, "/teams/"+url.PathEscape(teamID)+"/history", nil, facetTTL, &envelope); err != nil {
		return nil, fmt.Errorf("fetch team history id=%s: %w", teamID, err)
	}

	out := make([]match.HistoricalFixture, 0, len(envelope.Fixtures))
	for _, item := range envelope.Fixtures {
		mapped, ok := mapWireFixture(item)
		if !ok {
			continue
		}
		out = append(out, mapped)
	}
	return out, nil
}

func (c *Client) ListTeams(ctx context.Context, leagueID string) ([]match.Team, error) {
	path := "/teams"
	query := map[string]string{}
	if strings.TrimSpace(leagueID) != "" {
		path = "/leagues/" + url.PathEscape(leagueID) + "/teams"
	}

	var envelope teamsEnvelope
	if err := c.doJSON(ctx, path, query, catalogTTL, &envelope); err != nil {
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

// resolveTeamID turns a possibly-foreign team reference into this provider's
// composite identifier: native IDs pass through, the static known-mapping
// table is consulted next, and name matching over the catalog is the last
// resort.
func (c *Client) resolveTeamID(ctx context.Context, team match.Team) (string, error) {
	if id := strings.TrimSpace(team.ProviderID); id != "" && strings.Contains(strings.ToLower(id), "_team_") {
		return id, nil
	}
	if mapped, ok := knownTeamID(team); ok {
		return mapped, nil
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
		values.Set(key, value)
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

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "sports feed circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: sports feed is temporarily unavailable", usecase.ErrProvider)
		}
	}

	out, err, _ := c.flight.Do(cacheKey, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, path, encoded)
		if c.circuitEnabled {
			if reqErr != nil {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("%w: unexpected response payload type %T", usecase.ErrProvider, out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode payload: %v", usecase.ErrProvider, err)
	}

	c.store.Set(ctx, cacheKey, raw, ttl)
	return nil
}

func (c *Client) executeRequest(ctx context.Context, path, encoded string) ([]byte, error) {
	fullURL := c.baseURL + path
	if encoded != "" {
		fullURL += "?" + encoded
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: build request: %v", usecase.ErrProvider, err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", usecase.ErrProvider, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", usecase.ErrProvider, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				// "Nothing here" is an empty payload, never a provider error.
				return []byte("{}"), nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d", usecase.ErrProvider, resp.StatusCode)
			default:
				return nil, fmt.Errorf("%w: provider status=%d", usecase.ErrProvider, resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 500 * time.Millisecond
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("%w: request failed", usecase.ErrProvider)
	}
	c.logger.WarnContext(ctx, "sports feed request failed", "path", path, "error", lastErr)
	return nil, lastErr
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func joinIDs(ids []string) string {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, ",")
}
