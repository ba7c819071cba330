// Package aggregate merges odds quotes from multiple sources into canonical matches.
package aggregate

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// clubPrefixes are stripped for grouping so "FC Porto" and "Porto" resolve
// to the same team. Longer variants come first.
var clubPrefixes = []string{
	"f.c. ", "fc ", "c.f. ", "cf ", "a.c. ", "ac ", "a.s. ", "as ",
	"s.c. ", "sc ", "s.s.c. ", "ssc ", "r.c. ", "rc ", "u.d. ", "ud ",
	"c.d. ", "cd ", "n.k. ", "nk ", "f.k. ", "fk ", "b.k. ", "bk ",
	"afc ", "cfc ", "real ",
}

// clubSuffixes are stripped the same way ("Arsenal FC" -> "arsenal")
var clubSuffixes = []string{
	" fc", " f.c.", " cf", " c.f.", " afc", " bk", " sk",
}

// NormalizeTeam normalizes a team name for comparison and grouping.
// Lowercases, strips club prefixes and suffixes, collapses whitespace.
func NormalizeTeam(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	for _, p := range clubPrefixes {
		if strings.HasPrefix(s, p) && len(s) > len(p) {
			s = strings.TrimSpace(s[len(p):])
			break
		}
	}
	for _, suf := range clubSuffixes {
		if strings.HasSuffix(s, suf) && len(s) > len(suf) {
			s = strings.TrimSpace(s[:len(s)-len(suf)])
			break
		}
	}

	// drop punctuation that bookmakers disagree on
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', ',', '\'', '-':
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}

// pairKey groups quotes that name the same two teams
func pairKey(home, away string) string {
	return NormalizeTeam(home) + "|" + NormalizeTeam(away)
}

// MatchID derives a stable identifier from the normalized team pair and
// the kickoff time truncated to the hour, so sources reporting kickoff a
// few minutes apart agree on the ID.
func MatchID(home, away string, kickoff time.Time) string {
	key := pairKey(home, away) + "|" + kickoff.UTC().Truncate(time.Hour).Format(time.RFC3339)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
