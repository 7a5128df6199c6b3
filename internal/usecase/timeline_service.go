package usecase

import (
	"strings"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/domain/timeline"
	"github.com/rahmatagung/scorecenter/internal/identity"
)

// TimelineService converts raw provider event feeds into typed timeline
// events. Unmapped event types are dropped, minute strings pass through
// verbatim (clock formats differ per sport) and side attribution runs through
// the entity matcher against the home anchor.
type TimelineService struct{}

func NewTimelineService() *TimelineService {
	return &TimelineService{}
}

var rawEventKinds = map[string]string{
	"goal":          timeline.KindGoal,
	"own_goal":      timeline.KindGoal,
	"penalty_goal":  timeline.KindGoal,
	"card":          timeline.KindCard,
	"yellow_card":   timeline.KindCard,
	"red_card":      timeline.KindCard,
	"yellowred":     timeline.KindCard,
	"substitution":  timeline.KindSubstitution,
	"sub":           timeline.KindSubstitution,
	"var":           timeline.KindVARDecision,
	"var_decision":  timeline.KindVARDecision,
	"var_review":    timeline.KindVARDecision,
	"penalty_miss":  timeline.KindPenaltyMissed,
	"missed_pen":    timeline.KindPenaltyMissed,
	"period_start":  timeline.KindPeriodStart,
	"half_start":    timeline.KindPeriodStart,
	"match_started": timeline.KindPeriodStart,
	"period_end":    timeline.KindPeriodEnd,
	"half_end":      timeline.KindPeriodEnd,
	"match_ended":   timeline.KindPeriodEnd,
}

// Transform maps every recognized item of feed onto a typed event. Total:
// malformed groups or unknown types just produce fewer events.
func (s *TimelineService) Transform(feed timeline.RawFeed, home match.Team) []timeline.Event {
	out := make([]timeline.Event, 0, 16)
	for _, group := range feed.Groups {
		for _, item := range group.Items {
			kind, ok := classifyRawEvent(item.EventType)
			if !ok {
				continue
			}

			event := timeline.Event{
				Kind:   kind,
				Minute: item.Minute,
				TeamID: item.TeamID,
				Side:   eventSide(item, home),
			}

			switch kind {
			case timeline.KindGoal:
				event.Goal = &timeline.GoalDetail{
					Scorer:  item.Player,
					Assist:  item.Assist,
					OwnGoal: item.OwnGoal || equalFoldType(item.EventType, "own_goal"),
					Penalty: item.Penalty || equalFoldType(item.EventType, "penalty_goal"),
				}
			case timeline.KindCard:
				event.Card = &timeline.CardDetail{
					Player: item.Player,
					Color:  cardColor(item),
					Reason: item.Reason,
				}
			case timeline.KindSubstitution:
				event.Substitution = &timeline.SubstitutionDetail{
					PlayerIn:  item.PlayerIn,
					PlayerOut: item.PlayerOut,
				}
			case timeline.KindVARDecision:
				event.VAR = &timeline.VARDetail{
					Decision: item.Decision,
					Outcome:  item.Outcome,
				}
			case timeline.KindPeriodStart, timeline.KindPeriodEnd:
				label := item.PeriodName
				if label == "" {
					label = group.Period
				}
				event.Period = &timeline.PeriodDetail{Label: label}
			}

			out = append(out, event)
		}
	}
	return out
}

func classifyRawEvent(eventType string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(eventType))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")
	kind, ok := rawEventKinds[normalized]
	return kind, ok
}

func eventSide(item timeline.RawItem, home match.Team) string {
	participant := match.Team{ProviderID: item.TeamID, Name: item.TeamName}
	if identity.TeamsMatch(participant, home) {
		return timeline.SideHome
	}
	return timeline.SideAway
}

func cardColor(item timeline.RawItem) string {
	if item.CardColor != "" {
		return item.CardColor
	}
	switch strings.ToLower(strings.TrimSpace(item.EventType)) {
	case "yellow_card":
		return "yellow"
	case "red_card":
		return "red"
	case "yellowred":
		return "yellow_red"
	default:
		return ""
	}
}

func equalFoldType(eventType, want string) bool {
	normalized := strings.ToLower(strings.TrimSpace(eventType))
	return strings.ReplaceAll(normalized, "-", "_") == want
}
