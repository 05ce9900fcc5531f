package iso

import (
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v2"

	"github.com/lovi-cloud/tanuki/types"
)

// Rule maps file names to a flavor. A rule matches when every group in
// Contains has at least one of its substrings present in the file name.
// Rules are evaluated in order; the first match wins.
type Rule struct {
	Flavor   types.Flavor `yaml:"flavor"`
	Contains [][]string   `yaml:"contains"`
}

// Classifier assigns a Flavor to ISO file names from an ordered rule table.
type Classifier struct {
	rules []Rule
}

// NewClassifier is
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// DefaultRules returns the built-in rule table.
func DefaultRules() []Rule {
	return []Rule{
		{
			Flavor:   types.FlavorUbuntuServer,
			Contains: [][]string{{"ubuntu"}, {"live-server"}},
		},
		{
			Flavor:   types.FlavorUbuntuDesktop,
			Contains: [][]string{{"ubuntu"}, {"desktop"}},
		},
		{
			Flavor:   types.FlavorUbuntuDesktop,
			Contains: [][]string{{"xubuntu"}},
		},
		{
			Flavor:   types.FlavorKaliInstaller,
			Contains: [][]string{{"kali-linux"}, {"installer"}},
		},
	}
}

// LoadRules reads a rule table from a yaml file.
func LoadRules(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule file %s: %w", path, err)
	}
	defer f.Close()

	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode rule file %s: %w", path, err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("rule file %s has no rules", path)
	}
	return doc.Rules, nil
}

// Classify returns the flavor of the first matching rule, or FlavorGeneric
// when no rule matches.
func (c *Classifier) Classify(name string) types.Flavor {
	for _, r := range c.rules {
		if r.matches(name) {
			return r.Flavor
		}
	}
	return types.FlavorGeneric
}

func (r Rule) matches(name string) bool {
	for _, group := range r.Contains {
		ok := false
		for _, sub := range group {
			if strings.Contains(name, sub) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return len(r.Contains) > 0
}
