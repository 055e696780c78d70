// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ManuGH/launchpad/internal/config"
	"github.com/ManuGH/launchpad/internal/log"
	"github.com/rs/zerolog"
)

// PerformStartupChecks validates the filesystem and credentials before the server starts.
// Missing optional pieces only log warnings.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Str(log.FieldEvent, "startup.checks_begin").Msg("running pre-flight startup checks")

	if cfg.Usage.DBPath != "" {
		if err := checkWritableDir(filepath.Dir(cfg.Usage.DBPath)); err != nil {
			return fmt.Errorf("usage database directory check failed: %w", err)
		}
	}
	if cfg.Site.Dir != "" {
		if err := checkSiteDir(cfg.Site.Dir); err != nil {
			return fmt.Errorf("site directory check failed: %w", err)
		}
	}
	warnOptional(logger, cfg)

	logger.Info().Str(log.FieldEvent, "startup.checks_passed").Msg("all startup checks passed")
	return nil
}

func checkWritableDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", path)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", path)
	}

	f, err := os.CreateTemp(path, ".write_test-*")
	if err != nil {
		return fmt.Errorf("directory is not writable: %s: %w", path, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

func checkSiteDir(dir string) error {
	info, err := os.Stat(filepath.Join(dir, "index.html"))
	if err != nil {
		return fmt.Errorf("index.html not readable in %s: %w", dir, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s/index.html is a directory", dir)
	}
	return nil
}

func warnOptional(logger zerolog.Logger, cfg config.AppConfig) {
	if cfg.Chat.APIKey == "" {
		logger.Warn().
			Str(log.FieldEvent, "startup.api_key_missing").
			Str("env", config.EnvAPIKey).
			Msg("upstream API key not set; chat requests will fail with 500")
	}
	if cfg.Usage.DBPath != "" && cfg.Usage.AdminToken == "" {
		logger.Warn().
			Str(log.FieldEvent, "startup.admin_token_missing").
			Msg("usage ledger enabled without admin token; the usage endpoint stays hidden")
	}
}
