// Package lintcfg parses the Python lint configuration shipped with the
// agent repository (ruff.toml or the [tool.ruff] table of pyproject.toml)
// and resolves it into the effective rule model. The pipeline validates
// this configuration as a pre-flight check; it never runs the linter.
package lintcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var ruleCodePattern = regexp.MustCompile(`^[A-Z]{1,3}[0-9]*$`)

// Config is the resolved lint configuration.
type Config struct {
	LineLength     int                 `toml:"line-length"`
	TargetVersion  string              `toml:"target-version"`
	Select         []string            `toml:"select"`
	Ignore         []string            `toml:"ignore"`
	PerFileIgnores map[string][]string `toml:"per-file-ignores,omitempty"`
	Format         Format              `toml:"format"`
}

type Format struct {
	QuoteStyle  string `toml:"quote-style"`
	IndentStyle string `toml:"indent-style"`
}

// ruffFile mirrors the on-disk layout. Ruff accepts rule selection both at
// the top level (legacy) and under [lint]; the [lint] table wins when both
// are present.
type ruffFile struct {
	LineLength     int                 `toml:"line-length"`
	TargetVersion  string              `toml:"target-version"`
	Select         []string            `toml:"select"`
	Ignore         []string            `toml:"ignore"`
	PerFileIgnores map[string][]string `toml:"per-file-ignores"`
	Lint           *ruffLintTable      `toml:"lint"`
	Format         Format              `toml:"format"`
}

type ruffLintTable struct {
	Select         []string            `toml:"select"`
	Ignore         []string            `toml:"ignore"`
	PerFileIgnores map[string][]string `toml:"per-file-ignores"`
}

type pyprojectFile struct {
	Tool struct {
		Ruff *ruffFile `toml:"ruff"`
	} `toml:"tool"`
}

// Load reads a lint configuration. path may point to a ruff.toml or a
// pyproject.toml; for the latter the [tool.ruff] table is used.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read lint config '%s': %w", path, err)
	}

	var raw *ruffFile
	if filepath.Base(path) == "pyproject.toml" {
		var pyproject pyprojectFile
		if err := toml.Unmarshal(data, &pyproject); err != nil {
			return Config{}, fmt.Errorf("failed to parse '%s': %w", path, err)
		}
		if pyproject.Tool.Ruff == nil {
			return Config{}, fmt.Errorf("no [tool.ruff] table in '%s'", path)
		}
		raw = pyproject.Tool.Ruff
	} else {
		raw = &ruffFile{}
		if err := toml.Unmarshal(data, raw); err != nil {
			return Config{}, fmt.Errorf("failed to parse '%s': %w", path, err)
		}
	}

	cfg := Config{
		LineLength:     raw.LineLength,
		TargetVersion:  raw.TargetVersion,
		Select:         raw.Select,
		Ignore:         raw.Ignore,
		PerFileIgnores: raw.PerFileIgnores,
		Format:         raw.Format,
	}
	if raw.Lint != nil {
		if raw.Lint.Select != nil {
			cfg.Select = raw.Lint.Select
		}
		if raw.Lint.Ignore != nil {
			cfg.Ignore = raw.Lint.Ignore
		}
		if raw.Lint.PerFileIgnores != nil {
			cfg.PerFileIgnores = raw.Lint.PerFileIgnores
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid lint config '%s': %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.LineLength < 0 {
		return fmt.Errorf("line-length %d is negative", c.LineLength)
	}
	for _, code := range append(append([]string{}, c.Select...), c.Ignore...) {
		if !ruleCodePattern.MatchString(code) {
			return fmt.Errorf("invalid rule code '%s'", code)
		}
	}
	for pattern, codes := range c.PerFileIgnores {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("per-file-ignores has an empty pattern")
		}
		for _, code := range codes {
			if !ruleCodePattern.MatchString(code) {
				return fmt.Errorf("invalid rule code '%s' for pattern '%s'", code, pattern)
			}
		}
	}
	return nil
}

// RuleSelected reports whether a rule code is covered by the select list.
// Selection is by prefix, the way ruff treats categories: "E" selects
// "E402", "UP" selects "UP035".
func (c *Config) RuleSelected(code string) bool {
	return matchesAny(c.Select, code)
}

// RuleIgnored reports whether a rule code is globally ignored.
func (c *Config) RuleIgnored(code string) bool {
	return matchesAny(c.Ignore, code)
}

// RuleEnabledFor resolves the full precedence for one rule and one file:
// selected, minus global ignores, minus per-file exemptions.
func (c *Config) RuleEnabledFor(code, path string) bool {
	if !c.RuleSelected(code) || c.RuleIgnored(code) {
		return false
	}
	for pattern, codes := range c.PerFileIgnores {
		if matchesAny(codes, code) && matchPath(pattern, path) {
			return false
		}
	}
	return true
}

// LineLengthAdvisory reports whether the line-length limit is advisory
// only, i.e. set but not enforced because E501 is not an active rule.
func (c *Config) LineLengthAdvisory() bool {
	return c.LineLength > 0 && !(c.RuleSelected("E501") && !c.RuleIgnored("E501"))
}

func matchesAny(prefixes []string, code string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(code, prefix) {
			// "E" must not select "EXE101"-style codes of another
			// category: the remainder must be digits only.
			rest := strings.TrimPrefix(code, prefix)
			if rest == "" || strings.Trim(rest, "0123456789") == "" {
				return true
			}
		}
	}
	return false
}

// matchPath matches a ruff per-file-ignores pattern against a repo-relative
// path. Patterns without a slash match the file's base name; "**" matches
// any number of path segments.
func matchPath(pattern, path string) bool {
	path = filepath.ToSlash(path)
	if !strings.Contains(pattern, "/") {
		ok, err := filepath.Match(pattern, filepath.Base(path))
		return err == nil && ok
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(path, "/"))
}

func matchSegments(pattern, segments []string) bool {
	if len(pattern) == 0 {
		return len(segments) == 0
	}
	if pattern[0] == "**" {
		// "**" may swallow zero or more leading segments.
		for i := 0; i <= len(segments); i++ {
			if matchSegments(pattern[1:], segments[i:]) {
				return true
			}
		}
		return false
	}
	if len(segments) == 0 {
		return false
	}
	ok, err := filepath.Match(pattern[0], segments[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], segments[1:])
}
