package sportsfeed

// Wire envelopes for the sports feed. The feed is generous with optional
// fields, so everything parses into pointers or zero values and the mapper
// decides what survives.

type wireTeam struct {
	TeamID    string `json:"teamId"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	Logo      string `json:"logo,omitempty"`
}

type wireLeague struct {
	LeagueID string `json:"leagueId"`
	Name     string `json:"name,omitempty"`
	Country  string `json:"country,omitempty"`
}

type wireScore struct {
	Home *int `json:"home,omitempty"`
	Away *int `json:"away,omitempty"`
}

type wireMatch struct {
	MatchID  string     `json:"matchId"`
	Date     string     `json:"date"`
	Status   string     `json:"status"`
	HomeTeam wireTeam   `json:"homeTeam"`
	AwayTeam wireTeam   `json:"awayTeam"`
	League   wireLeague `json:"league"`
	Score    *wireScore `json:"score,omitempty"`
}

type scheduleEnvelope struct {
	Matches []wireMatch `json:"matches"`
}

type detailsEnvelope struct {
	Match wireMatch `json:"match"`
}

type wireLineupPlayer struct {
	PlayerID string `json:"playerId,omitempty"`
	Name     string `json:"name"`
	Number   int    `json:"number,omitempty"`
	Position string `json:"position,omitempty"`
	Starter  bool   `json:"starter"`
}

type wireLineupSide struct {
	Formation string             `json:"formation,omitempty"`
	Players   []wireLineupPlayer `json:"players"`
}

type lineupsEnvelope struct {
	Home wireLineupSide `json:"home"`
	Away wireLineupSide `json:"away"`
}

type wireStatistic struct {
	Type  string  `json:"type"`
	Value *string `json:"value,omitempty"`
}

type statisticsEnvelope struct {
	Home []wireStatistic `json:"home"`
	Away []wireStatistic `json:"away"`
}

type wireEvent struct {
	Type       string `json:"type"`
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

type wirePeriod struct {
	Name   string      `json:"name,omitempty"`
	Events []wireEvent `json:"events"`
}

type timelineEnvelope struct {
	Periods []wirePeriod `json:"periods"`
}

type wireInjury struct {
	PlayerName string `json:"playerName"`
	TeamID     string `json:"teamId,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Status     string `json:"status,omitempty"`
}

type injuriesEnvelope struct {
	Injuries []wireInjury `json:"injuries"`
}

type wireTopPlayer struct {
	PlayerName string  `json:"playerName"`
	TeamID     string  `json:"teamId,omitempty"`
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
}

type topPlayersEnvelope struct {
	Players []wireTopPlayer `json:"players"`
}

type wireStandingRow struct {
	Position int    `json:"position"`
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
	Logo     string `json:"logo,omitempty"`
	Played   int    `json:"played"`
	Won      int    `json:"won"`
	Draw     int    `json:"draw"`
	Lost     int    `json:"lost"`
	Points   int    `json:"points"`
	Form     string `json:"form,omitempty"`
}

type standingsEnvelope struct {
	Rows []wireStandingRow `json:"standings"`
}

type wireFixture struct {
	Date      string `json:"date"`
	HomeName  string `json:"homeName"`
	AwayName  string `json:"awayName"`
	HomeID    string `json:"homeId,omitempty"`
	AwayID    string `json:"awayId,omitempty"`
	HomeScore *int   `json:"homeScore,omitempty"`
	AwayScore *int   `json:"awayScore,omitempty"`
}

type historyEnvelope struct {
	Fixtures []wireFixture `json:"fixtures"`
}

type teamsEnvelope struct {
	Teams []wireTeam `json:"teams"`
}
