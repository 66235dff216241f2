package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJSON = `{
	"name": "Test Config",
	"description": "Test configuration",
	"ranks": 13,
	"multiplicity": 4,
	"board_rows": 3,
	"board_cols": 3,
	"non_pairing_rank": 13
}`

const openHCL = `
name             = "open"
ranks            = 6
multiplicity     = 2
board_rows       = 2
board_cols       = 2
non_pairing_rank = -1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidateConfig_ValidConfig(t *testing.T) {
	path := writeFile(t, t.TempDir(), "classic.json", validJSON)

	result := validateConfig(path)
	require.True(t, result.Valid, "unexpected errors: %v", result.Errors)
	assert.Equal(t, "classic.json", result.File)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)

	info := strings.Join(result.Info, "\n")
	assert.Contains(t, info, "✓ Name: Test Config")
	assert.Contains(t, info, "✓ Board: 3x3")
	assert.Contains(t, info, "13 ranks x 4 = 52 cards")
	assert.Contains(t, info, "1+2, 3+4, 5+6, 7+8, 9+10, 11+12")
	assert.Contains(t, info, "Non-pairing rank: 13")
	assert.Contains(t, info, "Perfect clear: impossible (4 non-pairing cards")
}

func TestValidateConfig_HCL(t *testing.T) {
	path := writeFile(t, t.TempDir(), "open.hcl", openHCL)

	result := validateConfig(path)
	require.True(t, result.Valid, "unexpected errors: %v", result.Errors)

	info := strings.Join(result.Info, "\n")
	assert.Contains(t, info, "✓ Pairs: 1+2, 3+4, 5+6")
	assert.Contains(t, info, "Non-pairing rank: none")
	assert.Contains(t, info, "Perfect clear: possible")
}

func TestValidateConfig_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		contains string
	}{
		{"bad json", "bad.json", `{"name": "test", invalid json}`, "Failed to load"},
		{"bad hcl", "bad.hcl", `name = `, "HCL"},
		{"unsupported format", "rules.yaml", "name: x", "unsupported config format"},
		{"missing name", "noname.json", `{"ranks": 13}`, "name is required"},
		{"ranks out of range", "ranks.json", `{"name": "x", "ranks": 1}`, "ranks must be between"},
		{"board too large", "board.json", `{"name": "x", "board_rows": 11}`, "board_rows must be between"},
		{"odd pairing ranks", "odd.json", `{"name": "x", "ranks": 13, "non_pairing_rank": -1}`, "cannot be split into pairs"},
		{"non-pairing rank out of range", "npr.json", `{"name": "x", "ranks": 13, "non_pairing_rank": 20}`, "non_pairing_rank must be between"},
		{"matched without verb", "msg.json", `{"name": "x", "messages": {"matched": "Pair!"}}`, "messages.matched"},
		{"jammed board", "jam.json", `{"name": "x", "ranks": 3, "multiplicity": 4, "board_rows": 2, "board_cols": 2}`, "can fill all 4 cells"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			result := validateConfig(path)
			assert.False(t, result.Valid)
			require.NotEmpty(t, result.Errors)
			assert.Contains(t, strings.Join(result.Errors, "\n"), tt.contains)
			assert.Empty(t, result.Info)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		result := validateConfig(filepath.Join(t.TempDir(), "nope.json"))
		assert.False(t, result.Valid)
	})
}

func TestValidateConfig_Warnings(t *testing.T) {
	dir := t.TempDir()

	t.Run("crowded board", func(t *testing.T) {
		path := writeFile(t, dir, "crowded.json", `{"name": "x", "ranks": 5, "multiplicity": 3, "board_rows": 2, "board_cols": 2}`)
		result := validateConfig(path)
		require.True(t, result.Valid, "unexpected errors: %v", result.Errors)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "3 of 4 cells")
	})

	t.Run("small deck", func(t *testing.T) {
		path := writeFile(t, dir, "small.json", `{"name": "x", "ranks": 2, "multiplicity": 1, "non_pairing_rank": -1}`)
		result := validateConfig(path)
		require.True(t, result.Valid, "unexpected errors: %v", result.Errors)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "the board never fills")
	})
}

func TestConfigFilesAndDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", validJSON)
	writeFile(t, dir, "a.hcl", openHCL)
	writeFile(t, dir, "b.hcl", openHCL)
	writeFile(t, dir, "notes.txt", "ignored")

	files, err := configFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "a.hcl", filepath.Base(files[0]))
	assert.Equal(t, "b.hcl", filepath.Base(files[1]))
	assert.Equal(t, "b.json", filepath.Base(files[2]))

	assert.Equal(t, []string{"b"}, duplicateIDs(files))
}

func TestCommand(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "classic.json", validJSON)
		writeFile(t, dir, "open.hcl", openHCL)

		var out bytes.Buffer
		err := newCommand(&out).Run(context.Background(), []string{"validate", "--dir", dir})
		require.NoError(t, err)

		text := out.String()
		assert.Equal(t, 2, strings.Count(text, "✅ VALID"))
		assert.Contains(t, text, "==================== classic.json")
		assert.Contains(t, text, "✅ All configurations are valid!")
	})

	t.Run("some invalid", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "classic.json", validJSON)
		writeFile(t, dir, "broken.json", `{"name": ""}`)

		var out bytes.Buffer
		err := newCommand(&out).Run(context.Background(), []string{"validate", "--dir", dir})
		assert.ErrorIs(t, err, errInvalidConfigs)

		text := out.String()
		assert.Contains(t, text, "❌ INVALID")
		assert.Contains(t, text, "  ❌ name is required")
		assert.Contains(t, text, "❌ Some configurations have errors")
	})

	t.Run("explicit files", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "open.hcl", openHCL)
		writeFile(t, dir, "broken.json", `{"name": ""}`)

		var out bytes.Buffer
		err := newCommand(&out).Run(context.Background(), []string{"validate", path})
		require.NoError(t, err)
		assert.NotContains(t, out.String(), "broken.json")
	})

	t.Run("empty directory", func(t *testing.T) {
		var out bytes.Buffer
		err := newCommand(&out).Run(context.Background(), []string{"validate", "--dir", t.TempDir()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no config files found")
	})

	t.Run("bundled configs", func(t *testing.T) {
		var out bytes.Buffer
		err := newCommand(&out).Run(context.Background(), []string{"validate", "--dir", "../configs"})
		require.NoError(t, err, out.String())
		assert.Contains(t, out.String(), "classic.json")
		assert.Contains(t, out.String(), "quick.hcl")
	})
}
