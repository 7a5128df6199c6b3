package match

import (
	"strings"
	"time"

	"github.com/rahmatagung/scorecenter/internal/domain/timeline"
)

const (
	StatusNotStarted = "NOT_STARTED"
	StatusLive       = "LIVE"
	StatusHalftime   = "HALFTIME"
	StatusFinished   = "FINISHED"
	StatusPostponed  = "POSTPONED"
	StatusCancelled  = "CANCELLED"
)

// Team is the provider-independent team reference. LocalID is only unique
// within the competition-API namespace; ProviderID is an opaque composite
// string whose trailing numeric segment is the only cross-provider anchor.
type Team struct {
	LocalID    int64  `json:"localId,omitempty"`
	ProviderID string `json:"providerId,omitempty"`
	Name       string `json:"name"`
	ShortName  string `json:"shortName,omitempty"`
	LogoURL    string `json:"logoUrl,omitempty"`
}

func (t Team) IsZero() bool {
	return t.LocalID == 0 && strings.TrimSpace(t.ProviderID) == "" && strings.TrimSpace(t.Name) == ""
}

type League struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
}

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Match is an immutable value object built by a provider adapter at fetch
// time; refetches produce a new value instead of mutating an existing one.
type Match struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
	Home   Team      `json:"home"`
	Away   Team      `json:"away"`
	League League    `json:"league"`
	Score  *Score    `json:"score,omitempty"`
}

// StatisticRow pairs one metric across both sides. Rows only exist when both
// sides reported a value; partial metrics are dropped upstream.
type StatisticRow struct {
	Type string `json:"type"`
	Home string `json:"home"`
	Away string `json:"away"`
}

type LineupPlayer struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Number   int    `json:"number,omitempty"`
	Position string `json:"position,omitempty"`
	Starter  bool   `json:"starter"`
}

type Lineups struct {
	HomeFormation string         `json:"homeFormation,omitempty"`
	AwayFormation string         `json:"awayFormation,omitempty"`
	Home          []LineupPlayer `json:"home"`
	Away          []LineupPlayer `json:"away"`
}

type Injury struct {
	PlayerName string `json:"playerName"`
	TeamID     string `json:"teamId,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Status     string `json:"status,omitempty"`
}

type TopPlayer struct {
	PlayerName string  `json:"playerName"`
	TeamID     string  `json:"teamId,omitempty"`
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
}

type StandingRow struct {
	Position int    `json:"position"`
	Team     Team   `json:"team"`
	Played   int    `json:"played"`
	Won      int    `json:"won"`
	Draw     int    `json:"draw"`
	Lost     int    `json:"lost"`
	Points   int    `json:"points"`
	Form     string `json:"form,omitempty"`
}

type PollResult struct {
	HomeVotes int64 `json:"homeVotes"`
	DrawVotes int64 `json:"drawVotes"`
	AwayVotes int64 `json:"awayVotes"`
}

// HistoricalFixture is one noisy entry from a provider's team-history feed.
// Home/away labeling follows the provider and may be inverted relative to the
// fixture under analysis; scores are optional for abandoned rows.
type HistoricalFixture struct {
	Date      time.Time `json:"date"`
	HomeName  string    `json:"homeName"`
	AwayName  string    `json:"awayName"`
	HomeID    string    `json:"homeId,omitempty"`
	AwayID    string    `json:"awayId,omitempty"`
	HomeScore *int      `json:"homeScore,omitempty"`
	AwayScore *int      `json:"awayScore,omitempty"`
}

// Enriched is a Match plus independently nullable facets. A nil facet means
// "unavailable", never an error signal. It is owned by the aggregation
// orchestrator for the duration of one request and is not cached as a whole.
type Enriched struct {
	Match

	Statistics  []StatisticRow      `json:"statistics,omitempty"`
	Lineups     *Lineups            `json:"lineups,omitempty"`
	Timeline    []timeline.Event    `json:"timeline,omitempty"`
	Injuries    []Injury            `json:"injuries,omitempty"`
	TopPlayers  []TopPlayer         `json:"topPlayers,omitempty"`
	Standings   []StandingRow       `json:"standings,omitempty"`
	RecentHome  []HistoricalFixture `json:"recentHome,omitempty"`
	RecentAway  []HistoricalFixture `json:"recentAway,omitempty"`
	Poll        *PollResult         `json:"poll,omitempty"`
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusNotStarted
	}
	return status
}

// EventDataPointless reports whether fetching statistics/timeline for the
// given status is useless (the game has not been played).
func EventDataPointless(status string) bool {
	switch NormalizeStatus(status) {
	case StatusNotStarted, StatusPostponed, StatusCancelled:
		return true
	default:
		return false
	}
}

func IsLiveStatus(status string) bool {
	switch NormalizeStatus(status) {
	case StatusLive, StatusHalftime, "IN_PLAY", "1H", "2H", "ET":
		return true
	default:
		return false
	}
}
