package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/phanxgames/offgrid"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 800, cfg.Window.Height)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, offgrid.DefaultEffectConfig(), cfg.Effects)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesOntoDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "offgrid.yaml", `
window:
  width: 1024
  show_stats: true
metrics:
  addr: 127.0.0.1:9100
effects:
  smooth: 0
  magnetic:
    strength: 0.25
  bento_reveal:
    from_rotation:
      odd: -5
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1024, cfg.Window.Width)
	assert.Equal(t, 800, cfg.Window.Height, "unset keys keep defaults")
	assert.Equal(t, "Digital Brutalism", cfg.Window.Title)
	assert.True(t, cfg.Window.ShowStats)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)

	def := offgrid.DefaultEffectConfig()
	assert.Zero(t, cfg.Effects.Smooth)
	assert.Equal(t, 0.25, cfg.Effects.Magnetic.Strength)
	assert.Equal(t, def.Magnetic.Radius, cfg.Effects.Magnetic.Radius)
	assert.Equal(t, -5.0, cfg.Effects.BentoReveal.FromRotation.Odd)
	assert.Equal(t, def.BentoReveal.FromRotation.Even, cfg.Effects.BentoReveal.FromRotation.Even)
	assert.Equal(t, def.Glitch, cfg.Effects.Glitch)
}

func TestLoadWithoutExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "offgridrc", "window:\n  height: 720\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 720, cfg.Window.Height)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"size", "window:\n  width: -1\n", "window:"},
		{"level", "log:\n  level: chatty\n", "log.level:"},
		{"offset", "effects:\n  parallax:\n    start: sideways\n", "parallax.start"},
		{"ease", "effects:\n  glitch:\n    ease: wobble\n", "glitch.ease"},
		{"smooth", "effects:\n  smooth: -1\n", "effects:"},
		{"yaml", "window: [", "read config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, dir, tc.name+".yaml", tc.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Window.Height = 0
	cfg.Log.Level = "loud"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window:")
	assert.Contains(t, err.Error(), "log.level:")
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger(LogConfig{Level: "warn"}, false)
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = NewLogger(LogConfig{Level: "warn", Development: true}, true)
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel), "debug flag forces debug level")

	_, err = NewLogger(LogConfig{Level: "chatty"}, false)
	assert.Error(t, err)
}
