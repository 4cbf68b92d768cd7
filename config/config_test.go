package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-imgprep/images"
	"github.com/nvr-ai/go-imgprep/oled"
)

// isolate runs the test in an empty directory so no stray .env or config file is read.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, args, err := Load("resize", []string{"photo.jpg"}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"photo.jpg"}, args)
	assert.Equal(t, "native", cfg.Engine)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, oled.DefaultThreshold, cfg.OLED.Threshold)
	assert.Equal(t, "header", cfg.OLED.Format)
	assert.Equal(t, "oled_image", cfg.OLED.Symbol)
	assert.Equal(t, "32x32", cfg.OLED.Panel)
	assert.Empty(t, cfg.Input)
	assert.Empty(t, cfg.Output)
}

func TestLoadPrecedence(t *testing.T) {
	isolate(t)

	t.Setenv("IMGPREP_LOG_LEVEL", "warn")
	cfg, _, err := Load("resize", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel, "env beats default")

	cfg, _, err = Load("resize", []string{"--log-level", "debug"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel, "flag beats env")
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)

	yaml := "log_format: json\noutput: from-file.h\noled:\n  threshold: 90\n  dither: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "imgprep.yaml"), []byte(yaml), 0o644))

	cfg, _, err := Load("oledpack", []string{"x.png"}, Options{OLEDFlags: true, DefaultOutput: "oled_image.h"})
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "from-file.h", cfg.Output)
	assert.Equal(t, 90, cfg.OLED.Threshold)
	assert.True(t, cfg.OLED.Dither)

	t.Setenv("IMGPREP_OLED_THRESHOLD", "200")
	cfg, _, err = Load("oledpack", []string{"-o", "flag.h"}, Options{OLEDFlags: true})
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.OLED.Threshold, "env beats file")
	assert.Equal(t, "flag.h", cfg.Output, "flag beats file")
}

func TestLoadExplicitConfigFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"input": "in.png", "output": "out.jpg"}`), 0o644))

	cfg, _, err := Load("grayconvert", []string{"--config", path}, Options{PathFlags: true})
	require.NoError(t, err)
	assert.Equal(t, "in.png", cfg.Input)
	assert.Equal(t, "out.jpg", cfg.Output)

	_, _, err = Load("grayconvert", []string{"--config", filepath.Join(dir, "missing.yaml")}, Options{PathFlags: true})
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("IMGPREP_INPUT=dotenv.png\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("IMGPREP_INPUT") })

	cfg, _, err := Load("grayconvert", nil, Options{PathFlags: true})
	require.NoError(t, err)
	assert.Equal(t, "dotenv.png", cfg.Input)
}

func TestLoadFlagsPerProgram(t *testing.T) {
	isolate(t)

	cfg, _, err := Load("grayconvert", []string{"--input", "a.png", "--output", "b.jpg"}, Options{PathFlags: true})
	require.NoError(t, err)
	assert.Equal(t, "a.png", cfg.Input)
	assert.Equal(t, "b.jpg", cfg.Output)

	cfg, args, err := Load("oledpack", []string{"--dither", "--invert", "--threshold", "64", "--symbol", "logo", "--panel", "128x64", "img.png"},
		Options{OLEDFlags: true, DefaultOutput: "oled_image.h"})
	require.NoError(t, err)
	assert.Equal(t, []string{"img.png"}, args)
	assert.Equal(t, OLEDConfig{Threshold: 64, Dither: true, Invert: true, Symbol: "logo", Panel: "128x64", Format: "header"}, cfg.OLED)

	cfg, _, err = Load("oledpack", []string{"--panel", "auto", "--format", "bin", "img.png"}, Options{OLEDFlags: true})
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.OLED.Panel)
	assert.Equal(t, "bin", cfg.OLED.Format)
	assert.Equal(t, "oled_image.h", cfg.Output)

	// Programs without path flags reject them.
	_, _, err = Load("resize", []string{"--input", "a.png"}, Options{})
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		env  map[string]string
		opts Options
		want string
	}{
		{"unknown engine flag", []string{"--engine", "cuda"}, nil, Options{}, "unknown engine"},
		{"unknown engine env", nil, map[string]string{"IMGPREP_ENGINE": "bogus"}, Options{}, "unknown engine"},
		{"bad log format", []string{"--log-format", "xml"}, nil, Options{}, "unknown log format"},
		{"bad log level", []string{"--log-level", "loud"}, nil, Options{}, "unknown log level"},
		{"threshold too high", []string{"--threshold", "300"}, nil, Options{OLEDFlags: true}, "out of range"},
		{"unknown panel", []string{"--panel", "1x1"}, nil, Options{OLEDFlags: true}, "unknown panel"},
		{"threshold negative", []string{"--threshold", "-1"}, nil, Options{OLEDFlags: true}, "out of range"},
		{"unknown format", []string{"--format", "png"}, nil, Options{OLEDFlags: true}, "unknown oled format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, _, err := Load("test", tt.args, tt.opts)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadRequiresInputBeforeReadingFiles(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "imgprep.yaml"), []byte("engine: [unclosed\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("not an assignment\n"), 0o644))

	for _, args := range [][]string{nil, {""}, {"--log-level", "debug"}} {
		_, _, err := Load("resize", args, Options{RequiresInput: true})
		assert.True(t, images.IsMissingArgument(err), "%v: %v", args, err)
	}

	// With the path present the broken files are read and reported.
	_, _, err := Load("resize", []string{"photo.jpg"}, Options{RequiresInput: true})
	require.Error(t, err)
	assert.False(t, images.IsMissingArgument(err))

	// Flag errors still win over the missing path.
	_, _, err = Load("resize", []string{"--bogus"}, Options{RequiresInput: true})
	assert.ErrorContains(t, err, "bogus")
}

func TestLoadHelp(t *testing.T) {
	isolate(t)

	_, _, err := Load("resize", []string{"-h"}, Options{})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}
