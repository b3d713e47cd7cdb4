// Package taxonomy holds the keyword sets that drive comment classification
// and sentiment scoring. The defaults are the canonical research lists; a
// YAML file can override them for sensitivity analyses. A Taxonomy is
// immutable once constructed: components receive it by value and accessors
// hand out copies.
package taxonomy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Taxonomy groups the category keyword lists and the sentiment phrase lists.
// Category lists are independent of each other: a comment may match several.
// Sentiment entries may be multi-word phrases and must match as a unit.
type Taxonomy struct {
	Corrective []string `yaml:"corrective"`
	Style      []string `yaml:"style"`
	Security   []string `yaml:"security"`
	Testing    []string `yaml:"testing"`
	Positive   []string `yaml:"positive"`
	Negative   []string `yaml:"negative"`
}

// Default returns the canonical keyword taxonomy.
func Default() Taxonomy {
	return Taxonomy{
		Corrective: []string{
			"bug", "error", "fix", "wrong", "incorrect", "mistake", "issue", "problem",
			"broken", "fails", "exception", "crash", "null", "undefined",
		},
		Style: []string{
			"style", "format", "indent", "spacing", "naming", "convention", "lint",
			"pep8", "pylint", "formatting", "whitespace", "semicolon", "brace",
		},
		Security: []string{
			"security", "vulnerability", "xss", "sql injection", "csrf", "auth",
			"authentication", "authorization", "password", "token", "secret", "key",
			"encrypt", "hash", "sanitize", "escape", "injection",
		},
		Testing: []string{
			"test", "testing", "coverage", "unit test", "integration", "mock",
			"assert", "should test", "missing test", "test case", "scenario",
		},
		Positive: []string{
			"good", "great", "nice", "excellent", "perfect", "thanks", "thank you",
			"approved", "looks good", "well done", "lgtm",
		},
		Negative: []string{
			"bad", "wrong", "incorrect", "should not", "don't", "cannot", "error",
			"issue", "problem", "concern", "worried", "disappointed",
		},
	}
}

// Load reads a taxonomy override from a YAML file. Every list must be
// present and non-empty; a partial override would silently change the
// classification contract, so it is rejected instead.
func Load(path string) (Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy file: %w", err)
	}

	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Taxonomy{}, fmt.Errorf("parse taxonomy file %s: %w", path, err)
	}

	if err := t.validate(); err != nil {
		return Taxonomy{}, fmt.Errorf("taxonomy file %s: %w", path, err)
	}
	return t.Normalized(), nil
}

func (t Taxonomy) validate() error {
	for _, l := range []struct {
		name string
		list []string
	}{
		{"corrective", t.Corrective},
		{"style", t.Style},
		{"security", t.Security},
		{"testing", t.Testing},
		{"positive", t.Positive},
		{"negative", t.Negative},
	} {
		if len(l.list) == 0 {
			return fmt.Errorf("keyword list %q is missing or empty", l.name)
		}
		for _, kw := range l.list {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("keyword list %q contains a blank entry", l.name)
			}
		}
	}
	return nil
}

// Normalized lowercases every keyword so matching is a plain substring test.
func (t Taxonomy) Normalized() Taxonomy {
	return Taxonomy{
		Corrective: lowerAll(t.Corrective),
		Style:      lowerAll(t.Style),
		Security:   lowerAll(t.Security),
		Testing:    lowerAll(t.Testing),
		Positive:   lowerAll(t.Positive),
		Negative:   lowerAll(t.Negative),
	}
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
