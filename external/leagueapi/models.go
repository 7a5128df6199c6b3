package leagueapi

import (
	"strings"
	"time"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
)

type wireTeam struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	Crest     string `json:"crest,omitempty"`
}

type wireCompetition struct {
	ID      int64  `json:"id"`
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
}

type wireMatch struct {
	ID          int64           `json:"id"`
	KickoffAt   string          `json:"kickoffAt"`
	Status      string          `json:"status"`
	HomeTeam    wireTeam        `json:"homeTeam"`
	AwayTeam    wireTeam        `json:"awayTeam"`
	Competition wireCompetition `json:"competition"`
	HomeGoals   *int            `json:"homeGoals,omitempty"`
	AwayGoals   *int            `json:"awayGoals,omitempty"`
}

type wireFixture struct {
	Date      string `json:"date"`
	HomeName  string `json:"homeName"`
	AwayName  string `json:"awayName"`
	HomeID    int64  `json:"homeId,omitempty"`
	AwayID    int64  `json:"awayId,omitempty"`
	HomeScore *int   `json:"homeScore,omitempty"`
	AwayScore *int   `json:"awayScore,omitempty"`
}

var apiStatusByWireStatus = map[string]string{
	"scheduled": match.StatusNotStarted,
	"timed":     match.StatusNotStarted,
	"in_play":   match.StatusLive,
	"paused":    match.StatusHalftime,
	"finished":  match.StatusFinished,
	"postponed": match.StatusPostponed,
	"suspended": match.StatusPostponed,
	"cancelled": match.StatusCancelled,
	"awarded":   match.StatusFinished,
}

func mapWireTeam(w wireTeam) match.Team {
	return match.Team{
		LocalID:   w.ID,
		Name:      strings.TrimSpace(w.Name),
		ShortName: strings.TrimSpace(w.ShortName),
		LogoURL:   strings.TrimSpace(w.Crest),
	}
}

func mapWireMatch(w wireMatch) match.Match {
	if w.ID <= 0 {
		return match.Match{}
	}

	status := match.NormalizeStatus(w.Status)
	if mapped, ok := apiStatusByWireStatus[strings.ToLower(strings.TrimSpace(w.Status))]; ok {
		status = mapped
	}

	out := match.Match{
		ID:     formatLocalID(w.ID),
		Date:   parseAPITime(w.KickoffAt),
		Status: status,
		Home:   mapWireTeam(w.HomeTeam),
		Away:   mapWireTeam(w.AwayTeam),
		League: match.League{
			ID:      formatLocalID(w.Competition.ID),
			Name:    strings.TrimSpace(w.Competition.Name),
			Country: strings.TrimSpace(w.Competition.Country),
		},
	}
	if w.HomeGoals != nil && w.AwayGoals != nil {
		out.Score = &match.Score{Home: *w.HomeGoals, Away: *w.AwayGoals}
	}
	return out
}

func parseAPITime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
