package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fess-mcp/internal/adapters/driven/config/file"
)

const validTOML = `
fessBaseUrl = "http://localhost:8080/"
fessApiToken = "secret-token"

[domain]
id = "hr"
name = "HR Portal"

[labels.hr]
title = "Human resources"
description = "Policies"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestConfigShow_MasksSecrets(t *testing.T) {
	resetState(t)
	path := writeConfig(t, validTOML)

	out, err := run("config", "show", "--config", path)

	require.NoError(t, err)
	assert.Contains(t, out, `fessBaseUrl = 'http://localhost:8080'`)
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "secret-token")
}

func TestConfigValidate(t *testing.T) {
	resetState(t)
	path := writeConfig(t, validTOML)

	out, err := run("config", "validate", "--config", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid.")
	assert.Contains(t, out, "hr (HR Portal)")
	assert.Contains(t, out, "1 configured")
}

func TestConfigValidate_Invalid(t *testing.T) {
	resetState(t)
	path := writeConfig(t, `fessBaseUrl = "ftp://x"`)

	_, err := run("config", "validate", "--config", path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain.id is required")
	assert.Contains(t, err.Error(), "fessBaseUrl must be an http(s) URL")
}

func TestConfigValidate_Missing(t *testing.T) {
	resetState(t)

	_, err := run("config", "validate", "--config", filepath.Join(t.TempDir(), "nope.toml"))

	assert.ErrorIs(t, err, file.ErrNotFound)
}

func TestConfigInit(t *testing.T) {
	resetState(t)
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	_, err := run("config", "init", "--config", path, "--domain-id", "docs", "--fess-url", "http://fess:8080")
	require.NoError(t, err)

	cfg, err := file.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "docs", cfg.Domain.ID)
	assert.Equal(t, "http://fess:8080", cfg.FessBaseURL)
	assert.Equal(t, "all", cfg.DefaultLabel)

	_, err = run("config", "init", "--config", path, "--domain-id", "docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run("config", "init", "--config", path, "--domain-id", "other", "--force")
	require.NoError(t, err)
}

func TestConfigInit_RequiresDomain(t *testing.T) {
	resetState(t)

	_, err := run("config", "init", "--config", filepath.Join(t.TempDir(), "c.toml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--domain-id is required")
}
