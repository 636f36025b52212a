package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhpenta/lynx"
	"github.com/mhpenta/lynx/internal/config"
	"github.com/mhpenta/lynx/store"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvBackend, config.BackendMemory)

	var out bytes.Buffer
	cmd := NewCLI()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_ListEmpty(t *testing.T) {
	out, err := runCLI(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "PROMPT")
}

func TestCLI_DeleteUnknown(t *testing.T) {
	_, err := runCLI(t, "delete", "nope")
	assert.ErrorIs(t, err, lynx.ErrImageNotFound)
}

func TestCLI_ExportUnknown(t *testing.T) {
	_, err := runCLI(t, "export", "nope", "--dir", t.TempDir())
	assert.ErrorIs(t, err, lynx.ErrImageNotFound)
}

func TestCLI_Settings(t *testing.T) {
	out, err := runCLI(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "backend: memory")
	assert.Contains(t, out, "gemini-3-pro-image-preview")
}

func TestCLI_GenerateRejectsBadFlags(t *testing.T) {
	_, err := runCLI(t, "generate", "a fox", "--ratio", "2:1")
	assert.Error(t, err)
}

func TestSettingsFromFlags(t *testing.T) {
	cmd := NewGenerateCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--model", "pro", "--ratio", "16:9", "--size", "4k", "--count", "2"}))

	got, err := settingsFromFlags(cmd, lynx.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, lynx.GenerationSettings{
		Model:          lynx.ModelPro,
		AspectRatio:    lynx.AspectRatio16x9,
		ImageSize:      lynx.ImageSize4K,
		NumberOfImages: 2,
	}, got)
}

func TestSettingsFromFlags_Untouched(t *testing.T) {
	cmd := NewGenerateCmd()
	require.NoError(t, cmd.ParseFlags(nil))

	base := lynx.DefaultSettings().WithAspectRatio(lynx.AspectRatio4x3)
	got, err := settingsFromFlags(cmd, base)
	require.NoError(t, err)
	assert.Equal(t, base, got)
}

func TestSettingsFromFlags_Invalid(t *testing.T) {
	for _, args := range [][]string{
		{"--model", "imagen"},
		{"--ratio", "5:4"},
		{"--size", "8K"},
		{"--count", "0"},
	} {
		cmd := &cobra.Command{}
		cmd.Flags().AddFlagSet(NewGenerateCmd().Flags())
		require.NoError(t, cmd.ParseFlags(args))
		_, err := settingsFromFlags(cmd, lynx.DefaultSettings())
		assert.Error(t, err, strings.Join(args, " "))
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	renderHistory(&buf, []lynx.GeneratedImage{
		{
			ID:        "img-1",
			Prompt:    "a red fox in snow",
			Settings:  lynx.DefaultSettings(),
			CreatedAt: 1763631000000,
		},
		{
			ID:       "img-2",
			Prompt:   strings.Repeat("long ", 20),
			Settings: lynx.GenerationSettings{Model: lynx.ModelPro, AspectRatio: lynx.AspectRatio9x16},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "img-1")
	assert.Contains(t, out, "FLASH")
	assert.Contains(t, out, "a red fox in snow")
	assert.Contains(t, out, "PRO")
	assert.Contains(t, out, "9:16")
	assert.Contains(t, out, "...")
}

func TestNewBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	b, err := newBackend(t.Context(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.File{}, b)

	cfg.Backend = config.BackendMemory
	b, err = newBackend(t.Context(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.Memory{}, b)

	cfg.Backend = "s3"
	_, err = newBackend(t.Context(), cfg)
	assert.Error(t, err)
}
