package identity

import (
	"testing"

	"replay-manager/feature/replay/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"strips region prefix", "2-S2-1-6861867", "S2-1-6861867"},
		{"strips other region prefix", "1-S2-2-1234", "S2-2-1234"},
		{"canonical passes through", "S2-1-6861867", "S2-1-6861867"},
		{"trims whitespace", "  S2-1-6861867 ", "S2-1-6861867"},
		{"unrecognized passes through", "not-a-handle", "not-a-handle"},
		{"two-digit region not stripped", "12-S2-1-99", "12-S2-1-99"},
		{"empty passes through", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHandle(tt.input))
		})
	}
}

func TestRealmID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"from prefixed handle", "2-S2-1-6861867", "1-6861867"},
		{"from canonical handle", "S2-1-6861867", "1-6861867"},
		{"from bare suffix", "1-6861867", "1-6861867"},
		{"no suffix", "somename", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RealmID(tt.input))
		})
	}
}

func TestNormalizeBattleTag(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"valid tag unchanged", "Serral#1234", "Serral#1234"},
		{"fullwidth separator substituted", "Serral＃1234", "Serral#1234"},
		{"trimmed", "  Serral#1234  ", "Serral#1234"},
		{"no discriminator returned unchanged", "Serral", "Serral"},
		{"non-numeric discriminator returned unchanged", "Serral#abc", "Serral#abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeBattleTag(tt.input))
		})
	}
}

func matchPlayers() []models.PlayerInfo {
	return []models.PlayerInfo{
		{Name: "Maru", BattleTag: "Maru#2112", Handle: "2-S2-1-100", Race: models.RaceTerran},
		{Name: "Serral", BattleTag: "Serral#1234", Handle: "1-S2-2-200", Race: models.RaceZerg},
	}
}

func TestMatch_BattleTagTier(t *testing.T) {
	p, ok := Match(matchPlayers(), "serral#1234")
	assert.True(t, ok)
	assert.Equal(t, "Serral", p.Name)
}

func TestMatch_HandleTier(t *testing.T) {
	// Query carries no region prefix; the stored handle does.
	p, ok := Match(matchPlayers(), "S2-1-100")
	assert.True(t, ok)
	assert.Equal(t, "Maru", p.Name)
}

func TestMatch_RealmSuffixTier(t *testing.T) {
	// Region prefixes disagree (query says region 3, record says 1), so the
	// handle tier misses but the realm-id suffix still identifies the player.
	p, ok := Match(matchPlayers(), "3-S2-2-200")
	assert.True(t, ok)
	assert.Equal(t, "Serral", p.Name)
}

func TestMatch_DisplayNameTier(t *testing.T) {
	p, ok := Match(matchPlayers(), "mar")
	assert.True(t, ok)
	assert.Equal(t, "Maru", p.Name)
}

func TestMatch_TierPriority(t *testing.T) {
	// "Handle" as display name would match the second player by containment
	// (tier 4), but the identifier matches the first player's handle
	// exactly (tier 2). The handle match must win.
	players := []models.PlayerInfo{
		{Name: "Alpha", Handle: "2-S2-1-100"},
		{Name: "S2-1-100 fanclub", Handle: "2-S2-1-999"},
	}
	p, ok := Match(players, "S2-1-100")
	assert.True(t, ok)
	assert.Equal(t, "Alpha", p.Name)
}

func TestMatch_NotFound(t *testing.T) {
	_, ok := Match(matchPlayers(), "Dark#777")
	assert.False(t, ok)

	_, ok = Match(matchPlayers(), "")
	assert.False(t, ok)

	_, ok = Match(nil, "Serral#1234")
	assert.False(t, ok)
}
