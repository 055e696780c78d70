// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHolder_Reload(t *testing.T) {
	path := writeFile(t, "chat:\n  defaultModel: model-a\n")
	loader := NewLoader(path, "")
	initial, err := loader.Load()
	require.NoError(t, err)

	holder := NewConfigHolder(initial, loader)
	assert.Equal(t, "model-a", holder.Get().Chat.DefaultModel)

	updates := make(chan AppConfig, 1)
	holder.RegisterListener(updates)

	require.NoError(t, os.WriteFile(path, []byte("chat:\n  defaultModel: model-b\n"), 0o600))
	require.NoError(t, holder.Reload(context.Background()))

	assert.Equal(t, "model-b", holder.Get().Chat.DefaultModel)
	select {
	case cfg := <-updates:
		assert.Equal(t, "model-b", cfg.Chat.DefaultModel)
	default:
		t.Fatal("listener was not notified")
	}
}

func TestConfigHolder_ReloadFailureKeepsOld(t *testing.T) {
	path := writeFile(t, "chat:\n  defaultModel: model-a\n")
	loader := NewLoader(path, "")
	initial, err := loader.Load()
	require.NoError(t, err)
	holder := NewConfigHolder(initial, loader)

	require.NoError(t, os.WriteFile(path, []byte("chat:\n  defaultTemperature: 9\n"), 0o600))
	require.Error(t, holder.Reload(context.Background()))
	assert.Equal(t, "model-a", holder.Get().Chat.DefaultModel)
	assert.Equal(t, DefaultChatTemperature, holder.Get().Chat.DefaultTemperature)
}

func TestConfigHolder_ReloadWithoutLoader(t *testing.T) {
	holder := NewConfigHolder(Default(), nil)
	require.Error(t, holder.Reload(context.Background()))
	require.NoError(t, holder.StartWatcher(context.Background()))
}

func TestConfigHolder_SlowListenerDoesNotBlock(t *testing.T) {
	path := writeFile(t, "logLevel: info\n")
	loader := NewLoader(path, "")
	holder := NewConfigHolder(Default(), loader)

	unbuffered := make(chan AppConfig)
	holder.RegisterListener(unbuffered)

	done := make(chan error, 1)
	go func() { done <- holder.Reload(context.Background()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reload blocked on listener")
	}
}

func TestConfigHolder_WatcherReloadsOnWrite(t *testing.T) {
	path := writeFile(t, "chat:\n  defaultModel: model-a\n")
	loader := NewLoader(path, "")
	initial, err := loader.Load()
	require.NoError(t, err)
	holder := NewConfigHolder(initial, loader)

	updates := make(chan AppConfig, 1)
	holder.RegisterListener(updates)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, holder.StartWatcher(ctx))

	require.NoError(t, WriteFile(path, withModel(initial, "model-w"), true))

	select {
	case cfg := <-updates:
		assert.Equal(t, "model-w", cfg.Chat.DefaultModel)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not reload config")
	}
}

func withModel(cfg AppConfig, model string) AppConfig {
	cfg.Chat.DefaultModel = model
	return cfg
}
