package sportsfeed

import (
	"strconv"
	"strings"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
	"github.com/rahmatagung/scorecenter/internal/identity"
)

// knownTeamIDs seeds verified cross-provider pairs so a foreign reference can
// be resolved without a catalog round-trip. Keys are competition-API local IDs
// and normalized names of teams confirmed by hand; values are this feed's
// composite identifiers. Kept deliberately small.
var knownTeamIDsByLocal = map[int64]string{
	4:  "Soccer_League_2025_Team_5981",
	9:  "Soccer_League_2025_Team_6044",
	2:  "Soccer_League_2025_Team_5967",
	7:  "Soccer_League_2025_Team_6012",
	11: "Soccer_League_2025_Team_5993",
}

var knownTeamIDsByName = map[string]string{
	"palmeiras":  "Soccer_League_2025_Team_5981",
	"santos":     "Soccer_League_2025_Team_6044",
	"flamengo":   "Soccer_League_2025_Team_5967",
	"fluminense": "Soccer_League_2025_Team_6012",
	"sao paulo":  "Soccer_League_2025_Team_5993",
}

func knownTeamID(team match.Team) (string, bool) {
	if team.LocalID > 0 {
		if id, ok := knownTeamIDsByLocal[team.LocalID]; ok {
			return id, true
		}
	}
	if normalized := identity.NormalizeName(team.Name); normalized != "" {
		if id, ok := knownTeamIDsByName[normalized]; ok {
			return id, true
		}
	}
	// A foreign composite ID with the same numeric suffix scheme still
	// anchors: rebuild a native-looking ID only when a known team shares the
	// suffix.
	if suffix, ok := identity.ExtractTeamNumber(team.ProviderID); ok {
		for _, id := range knownTeamIDsByLocal {
			if native, nativeOK := identity.ExtractTeamNumber(id); nativeOK && native == suffix {
				return id, true
			}
		}
	}
	return "", false
}

// resolveForeignMatch rebuilds a native match identifier from a numeric
// fallback-API one when the league is known. Purely heuristic; callers treat
// a miss as "this provider has nothing".
func resolveForeignMatch(ref match.Match) (string, bool) {
	leagueID := strings.TrimSpace(ref.League.ID)
	matchID := strings.TrimSpace(ref.ID)
	if leagueID == "" || matchID == "" {
		return "", false
	}
	if !strings.Contains(leagueID, "_") {
		return "", false
	}
	if _, err := strconv.ParseInt(matchID, 10, 64); err != nil {
		return "", false
	}
	return leagueID + "_Match_" + matchID, true
}
