package timeline

const (
	SideHome = "home"
	SideAway = "away"
)

const (
	KindGoal          = "GOAL"
	KindCard          = "CARD"
	KindSubstitution  = "SUBSTITUTION"
	KindVARDecision   = "VAR_DECISION"
	KindPenaltyMissed = "PENALTY_MISSED"
	KindPeriodStart   = "PERIOD_START"
	KindPeriodEnd     = "PERIOD_END"
)

type GoalDetail struct {
	Scorer  string `json:"scorer,omitempty"`
	Assist  string `json:"assist,omitempty"`
	OwnGoal bool   `json:"ownGoal,omitempty"`
	Penalty bool   `json:"penalty,omitempty"`
}

type CardDetail struct {
	Player string `json:"player,omitempty"`
	Color  string `json:"color,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type SubstitutionDetail struct {
	PlayerIn  string `json:"playerIn,omitempty"`
	PlayerOut string `json:"playerOut,omitempty"`
}

type VARDetail struct {
	Decision string `json:"decision,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
}

type PeriodDetail struct {
	Label string `json:"label,omitempty"`
}

// Event is a tagged union over the supported timeline event kinds. Minute is
// the provider's clock display string verbatim; clock formats differ per
// sport, so no numeric reinterpretation happens here. Exactly one detail
// pointer matching Kind is set.
type Event struct {
	Kind   string `json:"kind"`
	Minute string `json:"minute,omitempty"`
	TeamID string `json:"teamId,omitempty"`
	Side   string `json:"side"`

	Goal         *GoalDetail         `json:"goal,omitempty"`
	Card         *CardDetail         `json:"card,omitempty"`
	Substitution *SubstitutionDetail `json:"substitution,omitempty"`
	VAR          *VARDetail          `json:"var,omitempty"`
	Period       *PeriodDetail       `json:"period,omitempty"`
}

// RawItem is one untyped entry from a provider event feed, already lifted out
// of provider JSON by an adapter but not yet classified.
type RawItem struct {
	EventType  string `json:"eventType"`
	Minute     string `json:"minute,omitempty"`
	TeamID     string `json:"teamId,omitempty"`
	TeamName   string `json:"teamName,omitempty"`
	Player     string `json:"player,omitempty"`
	Assist     string `json:"assist,omitempty"`
	PlayerIn   string `json:"playerIn,omitempty"`
	PlayerOut  string `json:"playerOut,omitempty"`
	CardColor  string `json:"cardColor,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Decision   string `json:"decision,omitempty"`
	Outcome    string `json:"outcome,omitempty"`
	PeriodName string `json:"periodName,omitempty"`
	OwnGoal    bool   `json:"ownGoal,omitempty"`
	Penalty    bool   `json:"penalty,omitempty"`
}

// RawGroup mirrors the nested period grouping providers use for event feeds.
type RawGroup struct {
	Period string    `json:"period,omitempty"`
	Items  []RawItem `json:"items"`
}

type RawFeed struct {
	Groups []RawGroup `json:"groups"`
}
