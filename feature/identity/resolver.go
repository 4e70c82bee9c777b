package identity

import (
	"regexp"
	"strings"

	"replay-manager/feature/replay/models"
)

// Handles appear in several inconsistent encodings across replays:
//
//	2-S2-1-6861867   region-prefixed internal handle
//	S2-1-6861867     canonical protocol-realm-id form
//	1-6861867        realm-id suffix only
//
// Battle tags additionally show up with a fullwidth number sign pasted from
// in-game chat ("Name＃1234").
var (
	prefixedHandleRe = regexp.MustCompile(`^\d-(S\d-\d+-\d+)$`)
	canonicalRe      = regexp.MustCompile(`^S\d-\d+-\d+$`)
	realmIDRe        = regexp.MustCompile(`(\d+-\d+)$`)
	battleTagRe      = regexp.MustCompile(`^.+#\d+$`)
)

const fullwidthHash = "＃"

// NormalizeHandle strips a leading single-digit region code from an internal
// handle when it is immediately followed by the realm-protocol marker
// segment, yielding the canonical <protocol>-<realm>-<id> form. Inputs
// already canonical, or not recognizable as handles, pass through unchanged.
func NormalizeHandle(raw string) string {
	raw = strings.TrimSpace(raw)
	if canonicalRe.MatchString(raw) {
		return raw
	}
	if m := prefixedHandleRe.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// RealmID extracts the trailing <realm>-<id> suffix of a handle, used for
// degraded matching when region prefixes disagree. Returns "" when the input
// carries no such suffix.
func RealmID(raw string) string {
	raw = NormalizeHandle(raw)
	if !canonicalRe.MatchString(raw) && !realmIDRe.MatchString(raw) {
		return ""
	}
	segs := strings.Split(raw, "-")
	if len(segs) < 2 {
		return ""
	}
	realm, id := segs[len(segs)-2], segs[len(segs)-1]
	if !isDigits(realm) || !isDigits(id) {
		return ""
	}
	return realm + "-" + id
}

// NormalizeBattleTag trims the input, substitutes the fullwidth number sign
// with '#', and validates the result against the name#digits shape. Inputs
// that do not match the shape are returned unchanged (best-effort).
func NormalizeBattleTag(raw string) string {
	tag := strings.TrimSpace(raw)
	tag = strings.ReplaceAll(tag, fullwidthHash, "#")
	if !battleTagRe.MatchString(tag) {
		return raw
	}
	return tag
}

// Match resolves a query identifier against the participants of a replay.
// Four tiers are tried in strict priority order, returning on the first hit:
//
//  1. exact case-insensitive battle tag equality
//  2. exact equality of normalized internal handles
//  3. realm-id suffix equality (tolerates inconsistent region prefixes)
//  4. case-insensitive substring containment on the display name
//
// Precise identifiers are deliberately trusted over display names, which can
// collide or change. The second return is false when no tier matches; this
// is a normal outcome for opponents not yet seen, not an error.
func Match(players []models.PlayerInfo, query string) (models.PlayerInfo, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.PlayerInfo{}, false
	}

	queryTag := NormalizeBattleTag(query)
	for _, p := range players {
		if p.BattleTag != "" && strings.EqualFold(NormalizeBattleTag(p.BattleTag), queryTag) {
			return p, true
		}
	}

	queryHandle := NormalizeHandle(query)
	for _, p := range players {
		if p.Handle != "" && NormalizeHandle(p.Handle) == queryHandle {
			return p, true
		}
	}

	if suffix := RealmID(query); suffix != "" {
		for _, p := range players {
			if p.Handle != "" && RealmID(p.Handle) == suffix {
				return p, true
			}
		}
	}

	queryName := strings.ToLower(displayName(query))
	if queryName != "" {
		for _, p := range players {
			if strings.Contains(strings.ToLower(p.Name), queryName) {
				return p, true
			}
		}
	}

	return models.PlayerInfo{}, false
}

// displayName strips a battle tag discriminator so that "Name#1234" still
// matches a bare display name in the containment tier.
func displayName(query string) string {
	tag := NormalizeBattleTag(query)
	if i := strings.IndexByte(tag, '#'); i > 0 {
		return tag[:i]
	}
	return tag
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
