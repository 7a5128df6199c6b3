package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/usecase"
)

// ReadinessFunc reports whether a backing dependency is reachable. A nil
// func means the service has no external readiness dependency.
type ReadinessFunc func(ctx context.Context) error

type Handler struct {
	matchService  *usecase.MatchDetailService
	h2hService    *usecase.HeadToHeadService
	searchService *usecase.TeamSearchService
	ready         ReadinessFunc
	logger        *slog.Logger
	validator     *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchDetailService,
	h2hService *usecase.HeadToHeadService,
	searchService *usecase.TeamSearchService,
	ready ReadinessFunc,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		matchService:  matchService,
		h2hService:    h2hService,
		searchService: searchService,
		ready:         ready,
		logger:        logger,
		validator:     validator.New(),
	}
}

type teamRefDTO struct {
	LocalID    int64  `json:"localId,omitempty"`
	ProviderID string `json:"providerId,omitempty"`
	Name       string `json:"name,omitempty" validate:"max=128"`
	ShortName  string `json:"shortName,omitempty"`
	LogoURL    string `json:"logoUrl,omitempty"`
}

func (d teamRefDTO) toDomain() match.Team {
	return match.Team{
		LocalID:    d.LocalID,
		ProviderID: strings.TrimSpace(d.ProviderID),
		Name:       strings.TrimSpace(d.Name),
		ShortName:  strings.TrimSpace(d.ShortName),
		LogoURL:    strings.TrimSpace(d.LogoURL),
	}
}

type matchRefDTO struct {
	ID       string     `json:"id,omitempty"`
	Date     string     `json:"date,omitempty"`
	Status   string     `json:"status,omitempty"`
	Home     teamRefDTO `json:"home"`
	Away     teamRefDTO `json:"away"`
	LeagueID string     `json:"leagueId,omitempty"`
}

type matchDetailsRequest struct {
	Match matchRefDTO `json:"match" validate:"required"`
}

type headToHeadRequest struct {
	Home teamRefDTO `json:"home" validate:"required"`
	Away teamRefDTO `json:"away" validate:"required"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Readyz")
	defer span.End()

	if h.ready != nil {
		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.ready(checkCtx); err != nil {
			h.logger.WarnContext(ctx, "readiness check failed", "error", err)
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err))
			return
		}
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) GetScheduleByDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScheduleByDate")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	rawDate := strings.TrimSpace(r.URL.Query().Get("date"))

	date := time.Now().UTC()
	if rawDate != "" {
		parsed, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: date must be YYYY-MM-DD", usecase.ErrInvalidInput))
			return
		}
		date = parsed
	}

	schedule, err := h.matchService.GetScheduleByDate(ctx, leagueID, date)
	if err != nil {
		h.logger.ErrorContext(ctx, "get schedule failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"matches": schedule})
}

func (h *Handler) GetMatchDetails(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchDetails")
	defer span.End()

	var req matchDetailsRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	ref, err := matchRefToDomain(req.Match)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	details, err := h.matchService.GetMatchDetails(ctx, ref)
	if err != nil {
		h.logger.ErrorContext(ctx, "get match details failed", "match_id", ref.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, details)
}

func (h *Handler) GetHeadToHead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetHeadToHead")
	defer span.End()

	var req headToHeadRequest
	if err := h.decodeBody(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.h2hService.GetHeadToHead(ctx, req.Home.toDomain(), req.Away.toDomain())
	if err != nil {
		h.logger.ErrorContext(ctx, "get head-to-head failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) SearchTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchTeams")
	defer span.End()

	query := r.URL.Query().Get("q")
	leagueID := r.URL.Query().Get("league")

	teams, err := h.searchService.SearchTeams(ctx, leagueID, query)
	if err != nil {
		h.logger.ErrorContext(ctx, "team search failed", "query", query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"teams": teams})
}

func (h *Handler) decodeBody(ctx context.Context, r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.StructCtx(ctx, target); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func matchRefToDomain(dto matchRefDTO) (match.Match, error) {
	out := match.Match{
		ID:     strings.TrimSpace(dto.ID),
		Status: match.NormalizeStatus(dto.Status),
		Home:   dto.Home.toDomain(),
		Away:   dto.Away.toDomain(),
		League: match.League{ID: strings.TrimSpace(dto.LeagueID)},
	}

	if raw := strings.TrimSpace(dto.Date); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			parsed, err = time.Parse("2006-01-02", raw)
		}
		if err != nil {
			return match.Match{}, fmt.Errorf("%w: date must be RFC3339 or YYYY-MM-DD", usecase.ErrInvalidInput)
		}
		out.Date = parsed.UTC()
	}

	return out, nil
}
