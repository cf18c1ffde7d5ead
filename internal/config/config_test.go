package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.WebSocket.Address)
	assert.Equal(t, "/ws", cfg.Server.WebSocket.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 5, cfg.Game.InitialHand)
	assert.Equal(t, 7, cfg.Game.HandLimit)
	assert.Equal(t, 10, cfg.Game.LandLimit)
	assert.Equal(t, 12, cfg.Game.DeckSizePerColor)
	assert.Equal(t, 8, cfg.Game.GiftsInDisplay)
	assert.Equal(t, 24, cfg.Game.GiftPoolSize)
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  websocket:
    address: ":9090"
    path: "/game"
logging:
  level: debug
  format: console
game:
  hand_limit: 9
`))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.WebSocket.Address)
	assert.Equal(t, "/game", cfg.Server.WebSocket.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 9, cfg.Game.HandLimit)
	// Untouched sections keep their defaults.
	assert.Equal(t, 5, cfg.Game.InitialHand)
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			name: "database enabled without url",
			content: `
database:
  enabled: true
`,
		},
		{
			name: "hand limit below initial hand",
			content: `
game:
  initial_hand: 8
  hand_limit: 7
`,
		},
		{
			name: "gift pool smaller than display",
			content: `
game:
  gifts_in_display: 8
  gift_pool_size: 4
`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SHOWDOWN_LOGGING_LEVEL", "warn")
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
}
