// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package i18n loads the front end's translation bundles and negotiates locales.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localesFS embed.FS

// Fallback is the locale every bundle falls back to.
var Fallback = language.English

// Catalog holds one flat key/value bundle per locale.
type Catalog struct {
	tags    []language.Tag // Fallback first
	bundles map[language.Tag]map[string]string
	matcher language.Matcher
}

// Load reads the embedded bundles.
func Load() (*Catalog, error) {
	return LoadFS(localesFS, "locales")
}

// LoadFS reads every <tag>.yaml in dir. A bundle for Fallback is required.
func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("i18n: read %s: %w", dir, err)
	}

	c := &Catalog{bundles: make(map[language.Tag]map[string]string)}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".yaml" {
			continue
		}
		tag, err := language.Parse(strings.TrimSuffix(e.Name(), ".yaml"))
		if err != nil {
			return nil, fmt.Errorf("i18n: bad locale file name %q: %w", e.Name(), err)
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		bundle := map[string]string{}
		if err := yaml.Unmarshal(raw, &bundle); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
		c.bundles[tag] = bundle
	}

	if _, ok := c.bundles[Fallback]; !ok {
		return nil, fmt.Errorf("i18n: no bundle for fallback locale %s", Fallback)
	}

	c.tags = append(c.tags, Fallback)
	others := make([]language.Tag, 0, len(c.bundles)-1)
	for tag := range c.bundles {
		if tag != Fallback {
			others = append(others, tag)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].String() < others[j].String() })
	c.tags = append(c.tags, others...)
	c.matcher = language.NewMatcher(c.tags)
	return c, nil
}

// Tags lists the available locales, fallback first.
func (c *Catalog) Tags() []language.Tag {
	return append([]language.Tag(nil), c.tags...)
}

// Match picks the best available locale for an Accept-Language header value.
// Unparseable or unmatched input yields Fallback.
func (c *Catalog) Match(acceptLanguage string) language.Tag {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return Fallback
	}
	tag, _ := c.match(prefs...)
	return tag
}

// match returns the available tag for prefs and whether it was a real match.
func (c *Catalog) match(prefs ...language.Tag) (language.Tag, bool) {
	_, idx, conf := c.matcher.Match(prefs...)
	if conf == language.No {
		return Fallback, false
	}
	return c.tags[idx], true
}

// Bundle returns the messages for tag. Keys missing from the locale carry the
// fallback text. Tags without a bundle are matched to the closest one first.
func (c *Catalog) Bundle(tag language.Tag) map[string]string {
	if _, ok := c.bundles[tag]; !ok {
		tag, _ = c.match(tag)
	}
	base := c.bundles[Fallback]
	out := make(map[string]string, len(base))
	for k, v := range base {
		out[k] = v
	}
	if tag != Fallback {
		for k, v := range c.bundles[tag] {
			out[k] = v
		}
	}
	return out
}

// Missing lists the fallback keys tag does not translate, sorted.
func (c *Catalog) Missing(tag language.Tag) []string {
	bundle, ok := c.bundles[tag]
	if !ok {
		return nil
	}
	var missing []string
	for k := range c.bundles[Fallback] {
		if _, ok := bundle[k]; !ok {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}
