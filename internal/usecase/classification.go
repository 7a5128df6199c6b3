package usecase

import (
	"strings"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
)

// Chain names the adapter chain used to enrich a match.
type Chain string

const (
	ChainSportsFeed Chain = "sports_feed"
	ChainFallback   Chain = "fallback"
)

// Sport prefixes the sports-feed provider embeds in its league identifiers.
// This is a naming convention of that provider, not a contract; if the
// provider renames its leagues the classifier silently misclassifies, which
// is why it lives behind this one function instead of inline conditionals.
var sportsFeedLeaguePrefixes = []string{"Soccer_", "Basketball_"}

// ClassifyChain decides whether a match belongs to the sports-feed provider
// family. Best-effort: presence of a sports-feed match identifier, a
// sports-feed team identifier on either side, or a sport-prefixed league
// identifier all count.
func ClassifyChain(m match.Match) Chain {
	if looksLikeSportsFeedID(m.ID) {
		return ChainSportsFeed
	}
	if looksLikeSportsFeedID(m.Home.ProviderID) || looksLikeSportsFeedID(m.Away.ProviderID) {
		return ChainSportsFeed
	}
	for _, prefix := range sportsFeedLeaguePrefixes {
		if strings.Contains(m.League.ID, prefix) {
			return ChainSportsFeed
		}
	}
	return ChainFallback
}

func looksLikeSportsFeedID(id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}
	for _, prefix := range sportsFeedLeaguePrefixes {
		if strings.Contains(id, prefix) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(id), "_team_") ||
		strings.Contains(strings.ToLower(id), "_match_")
}
