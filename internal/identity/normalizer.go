package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const teamMarker = "_team_"

// NormalizeName lowercases, strips diacritics and collapses whitespace so
// team/player names from different providers compare cleanly. It is pure and
// idempotent; an empty input yields an empty output.
func NormalizeName(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return ""
	}

	decomposed := norm.NFD.String(lowered)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// ExtractTeamNumber returns the digit run following the last case-insensitive
// "_Team_" marker of a composite provider identifier. The marker position is
// the only structurally reliable part of those identifiers; everything else
// is treated as opaque. Malformed input reports false, never a panic.
func ExtractTeamNumber(compositeID string) (string, bool) {
	lowered := strings.ToLower(compositeID)
	idx := strings.LastIndex(lowered, teamMarker)
	if idx < 0 {
		return "", false
	}

	// Index into the lowered string, not the original: ToLower can change
	// byte lengths for some scripts, so idx is only valid in lowered. The
	// digits we want are unaffected by lowering.
	rest := lowered[idx+len(teamMarker):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return "", false
	}

	return rest[:end], true
}
