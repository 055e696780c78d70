// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := NewLoader("", "v-test").Load()
	require.NoError(t, err)

	assert.Equal(t, "v-test", cfg.Version)
	assert.Equal(t, DefaultListenAddr, cfg.Server.ListenAddr)
	assert.Equal(t, DefaultChatModel, cfg.Chat.DefaultModel)
	assert.Equal(t, DefaultChatTemperature, cfg.Chat.DefaultTemperature)
	assert.Equal(t, DefaultChatMaxTokens, cfg.Chat.DefaultMaxTokens)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Empty(t, cfg.Chat.APIKey)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  listenAddr: "127.0.0.1:9000"
chat:
  defaultModel: gpt-4o-mini
  timeout: 12s
demo:
  refreshInterval: 2s
`)
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.ListenAddr)
	assert.Equal(t, "gpt-4o-mini", cfg.Chat.DefaultModel)
	assert.Equal(t, 12*time.Second, cfg.Chat.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Demo.RefreshInterval)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultChatMaxTokens, cfg.Chat.DefaultMaxTokens)
	assert.Equal(t, DefaultUpstreamURL, cfg.Chat.UpstreamURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "chat:\n  defaultModel: from-file\n")
	t.Setenv(EnvChatModel, "from-env")
	t.Setenv(EnvAPIKey, "  sk-test-123456789  ")
	t.Setenv(EnvAllowedOrigins, "https://a.example, https://b.example,")
	t.Setenv(EnvCacheBackend, "NONE")
	t.Setenv(EnvTrustedProxies, "10.0.0.0/8,192.0.2.1")

	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Chat.DefaultModel)
	assert.Equal(t, "sk-test-123456789", cfg.Chat.APIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, CacheBackendNone, cfg.Cache.Backend)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.1"}, cfg.HTTP.TrustedProxies)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeFile(t, "chat:\n  defaultModle: typo\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownConfigField), "got %v", err)
}

func TestLoad_SecretsNotReadFromFile(t *testing.T) {
	path := writeFile(t, "chat:\n  apiKey: sk-from-file\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err, "apiKey is ENV-only and must be an unknown file key")
}

func TestLoad_MultipleDocumentsRejected(t *testing.T) {
	path := writeFile(t, "logLevel: debug\n---\nlogLevel: info\n")
	_, err := NewLoader(path, "").Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple documents")
}

func TestLoad_EmptyFileIsDefaults(t *testing.T) {
	path := writeFile(t, "")
	cfg, err := NewLoader(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultListenAddr, cfg.Server.ListenAddr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml"), "").Load()
	require.Error(t, err)
}

func TestLoad_TracksConsumedEnvKeys(t *testing.T) {
	l := NewLoader("", "")
	_, err := l.Load()
	require.NoError(t, err)
	assert.Contains(t, l.ConsumedEnvKeys, EnvAPIKey)
	assert.Contains(t, l.ConsumedEnvKeys, EnvListen)
}

func TestParseStringList(t *testing.T) {
	t.Setenv("LAUNCHPAD_TEST_LIST", " a ,, b ")
	assert.Equal(t, []string{"a", "b"}, ParseStringList("LAUNCHPAD_TEST_LIST", nil))
	assert.Equal(t, []string{"x"}, ParseStringList("LAUNCHPAD_TEST_UNSET", []string{"x"}))
}

func TestParseHelpers_InvalidFallsBack(t *testing.T) {
	t.Setenv("LAUNCHPAD_TEST_INT", "abc")
	t.Setenv("LAUNCHPAD_TEST_DUR", "5 parsecs")
	t.Setenv("LAUNCHPAD_TEST_BOOL", "maybe")
	t.Setenv("LAUNCHPAD_TEST_FLOAT", "0.x")

	assert.Equal(t, 7, ParseInt("LAUNCHPAD_TEST_INT", 7))
	assert.Equal(t, time.Second, ParseDuration("LAUNCHPAD_TEST_DUR", time.Second))
	assert.True(t, ParseBool("LAUNCHPAD_TEST_BOOL", true))
	assert.Equal(t, 1.5, ParseFloat("LAUNCHPAD_TEST_FLOAT", 1.5))
}
