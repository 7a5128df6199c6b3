package sportsfeed

import (
	"strings"
	"time"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/domain/timeline"
)

var wireStatusByFeedStatus = map[string]string{
	"notstarted": match.StatusNotStarted,
	"scheduled":  match.StatusNotStarted,
	"inprogress": match.StatusLive,
	"live":       match.StatusLive,
	"halftime":   match.StatusHalftime,
	"finished":   match.StatusFinished,
	"fulltime":   match.StatusFinished,
	"postponed":  match.StatusPostponed,
	"cancelled":  match.StatusCancelled,
	"canceled":   match.StatusCancelled,
	"abandoned":  match.StatusCancelled,
}

func mapFeedStatus(raw string) string {
	if mapped, ok := wireStatusByFeedStatus[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return mapped
	}
	return match.NormalizeStatus(raw)
}

func mapWireTeam(w wireTeam) match.Team {
	return match.Team{
		ProviderID: strings.TrimSpace(w.TeamID),
		Name:       strings.TrimSpace(w.Name),
		ShortName:  strings.TrimSpace(w.ShortName),
		LogoURL:    strings.TrimSpace(w.Logo),
	}
}

func mapWireMatch(w wireMatch) match.Match {
	out := match.Match{
		ID:     strings.TrimSpace(w.MatchID),
		Date:   parseFeedTime(w.Date),
		Status: mapFeedStatus(w.Status),
		Home:   mapWireTeam(w.HomeTeam),
		Away:   mapWireTeam(w.AwayTeam),
		League: match.League{
			ID:      strings.TrimSpace(w.League.LeagueID),
			Name:    strings.TrimSpace(w.League.Name),
			Country: strings.TrimSpace(w.League.Country),
		},
	}
	if w.Score != nil && w.Score.Home != nil && w.Score.Away != nil {
		out.Score = &match.Score{Home: *w.Score.Home, Away: *w.Score.Away}
	}
	return out
}

func mapWireLineups(w lineupsEnvelope) *match.Lineups {
	if len(w.Home.Players) == 0 && len(w.Away.Players) == 0 {
		return nil
	}
	return &match.Lineups{
		HomeFormation: w.Home.Formation,
		AwayFormation: w.Away.Formation,
		Home:          mapLineupSide(w.Home.Players),
		Away:          mapLineupSide(w.Away.Players),
	}
}

func mapLineupSide(players []wireLineupPlayer) []match.LineupPlayer {
	out := make([]match.LineupPlayer, 0, len(players))
	for _, p := range players {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		out = append(out, match.LineupPlayer{
			ID:       p.PlayerID,
			Name:     name,
			Number:   p.Number,
			Position: p.Position,
			Starter:  p.Starter,
		})
	}
	return out
}

// pairStatistics joins the per-side metric lists on metric type, preserving
// the home-side order. A row is only emitted when both sides reported a
// value; a partial metric shown as zero reads as a real zero, so it is
// dropped instead.
func pairStatistics(home, away []wireStatistic) []match.StatisticRow {
	awayByType := make(map[string]string, len(away))
	for _, stat := range away {
		if stat.Value == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(stat.Type))
		if key == "" {
			continue
		}
		awayByType[key] = *stat.Value
	}

	out := make([]match.StatisticRow, 0, len(home))
	for _, stat := range home {
		if stat.Value == nil {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(stat.Type))
		awayValue, ok := awayByType[key]
		if !ok {
			continue
		}
		out = append(out, match.StatisticRow{
			Type: strings.TrimSpace(stat.Type),
			Home: *stat.Value,
			Away: awayValue,
		})
	}
	return out
}

func mapWireTimeline(w timelineEnvelope) timeline.RawFeed {
	feed := timeline.RawFeed{Groups: make([]timeline.RawGroup, 0, len(w.Periods))}
	for _, period := range w.Periods {
		group := timeline.RawGroup{
			Period: period.Name,
			Items:  make([]timeline.RawItem, 0, len(period.Events)),
		}
		for _, ev := range period.Events {
			group.Items = append(group.Items, timeline.RawItem{
				EventType:  ev.Type,
				Minute:     ev.Minute,
				TeamID:     ev.TeamID,
				TeamName:   ev.TeamName,
				Player:     ev.Player,
				Assist:     ev.Assist,
				PlayerIn:   ev.PlayerIn,
				PlayerOut:  ev.PlayerOut,
				CardColor:  ev.CardColor,
				Reason:     ev.Reason,
				Decision:   ev.Decision,
				Outcome:    ev.Outcome,
				PeriodName: ev.PeriodName,
				OwnGoal:    ev.OwnGoal,
				Penalty:    ev.Penalty,
			})
		}
		feed.Groups = append(feed.Groups, group)
	}
	return feed
}

func mapWireFixture(w wireFixture) (match.HistoricalFixture, bool) {
	if strings.TrimSpace(w.HomeName) == "" || strings.TrimSpace(w.AwayName) == "" {
		return match.HistoricalFixture{}, false
	}
	return match.HistoricalFixture{
		Date:      parseFeedTime(w.Date),
		HomeName:  strings.TrimSpace(w.HomeName),
		AwayName:  strings.TrimSpace(w.AwayName),
		HomeID:    w.HomeID,
		AwayID:    w.AwayID,
		HomeScore: w.HomeScore,
		AwayScore: w.AwayScore,
	}, true
}

var feedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseFeedTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	for _, layout := range feedTimeLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
