// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ManuGH/launchpad/internal/config"
	"github.com/ManuGH/launchpad/internal/version"
)

const defaultConfigFile = "config.yaml"

func runConfigCLI(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage(stderr)
		return 0
	}

	switch args[0] {
	case "init":
		return runConfigInit(args[1:], stdout, stderr)
	case "validate":
		return runConfigValidate(args[1:], stdout, stderr)
	case "dump":
		return runConfigDump(args[1:], stdout, stderr)
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage(stderr)
		return 2
	}
}

func printConfigUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  launchpad config init [--out config.yaml] [--force]")
	_, _ = fmt.Fprintln(w, "  launchpad config validate [--file|-f config.yaml]")
	_, _ = fmt.Fprintln(w, "  launchpad config dump [--file|-f config.yaml]")
}

func runConfigInit(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("launchpad config init", flag.ContinueOnError)
	fs.SetOutput(stderr)

	out := fs.String("out", defaultConfigFile, "where to write the default configuration")
	force := fs.Bool("force", false, "overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := strings.TrimSpace(*out)
	if path == "" {
		_, _ = fmt.Fprintln(stderr, "Error: --out must not be empty")
		return 2
	}

	if err := config.WriteFile(path, config.Default(), *force); err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "wrote default configuration to %s\n", path)
	return 0
}

// fileFlag registers --file and its -f shorthand.
func fileFlag(fs *flag.FlagSet) *string {
	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	return &file
}

func resolveConfigPath(file string) string {
	if path := strings.TrimSpace(file); path != "" {
		return path
	}
	return strings.TrimSpace(config.ParseString(envConfigPath, ""))
}

func runConfigValidate(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("launchpad config validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fileFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := resolveConfigPath(*file)
	if path == "" {
		_, _ = fmt.Fprintf(stderr, "Error: --file is required (or set %s)\n", envConfigPath)
		return 2
	}

	if _, err := config.NewLoader(path, version.Version).Load(); err != nil {
		_, _ = fmt.Fprintf(stderr, "Configuration error in %s:\n  %v\n", path, err)
		return 1
	}

	_, _ = fmt.Fprintf(stdout, "✓ %s is valid\n", path)
	return 0
}

// runConfigDump prints the effective configuration (defaults + file + env).
// Secrets carry no YAML key and are never printed.
func runConfigDump(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("launchpad config dump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fileFlag(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := resolveConfigPath(*file)
	cfg, err := config.NewLoader(path, version.Version).Load()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}

	data, err := config.Marshal(cfg)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Failed to encode YAML: %v\n", err)
		return 1
	}
	_, _ = stdout.Write(data)
	return 0
}
