package identity

import (
	"strings"

	"github.com/rahmatagung/scorecenter/internal/domain/match"
)

// TeamsMatch decides whether two team references denote the same real-world
// team. Rules run in strict precedence order and short-circuit on the first
// positive:
//
//  1. equal numeric suffixes extracted from both composite provider IDs
//  2. equal normalized names
//  3. one normalized name containing the other (both longer than 2 runes)
//  4. any shared whitespace token longer than 3 runes
//
// Suffix matches are high confidence; everything below is a best-effort guess
// and callers must treat a positive as possibly wrong. No usable signal at
// all reports false rather than an error.
func TeamsMatch(a, b match.Team) bool {
	if suffixA, okA := ExtractTeamNumber(a.ProviderID); okA {
		if suffixB, okB := ExtractTeamNumber(b.ProviderID); okB {
			if suffixA == suffixB {
				return true
			}
		}
	}

	nameA := NormalizeName(a.Name)
	nameB := NormalizeName(b.Name)
	if nameA == "" || nameB == "" {
		return false
	}
	if nameA == nameB {
		return true
	}

	if len(nameA) > 2 && len(nameB) > 2 {
		if strings.Contains(nameA, nameB) || strings.Contains(nameB, nameA) {
			return true
		}
	}

	return tokensOverlap(nameA, nameB)
}

// tokensOverlap handles prefixed club styles like "SE Palmeiras" vs
// "Palmeiras": short legal-form tokens are ignored, any shared long token is
// enough.
func tokensOverlap(nameA, nameB string) bool {
	tokensA := longTokens(nameA)
	if len(tokensA) == 0 {
		return false
	}

	for _, tokenB := range longTokens(nameB) {
		for _, tokenA := range tokensA {
			if tokenA == tokenB {
				return true
			}
		}
	}
	return false
}

func longTokens(name string) []string {
	fields := strings.Fields(name)
	out := fields[:0]
	for _, field := range fields {
		if len([]rune(field)) > 3 {
			out = append(out, field)
		}
	}
	return out
}
