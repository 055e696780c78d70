// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for launchpad.
//
// Values are resolved with the precedence ENV > YAML file > defaults. The YAML
// file is parsed strictly: unknown keys are rejected so typos surface at startup
// instead of silently falling back to defaults. Secrets (the upstream API key and
// the admin token) are only read from the environment.
package config
