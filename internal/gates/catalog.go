package gates

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/truthgate/internal/model"
)

// Entry maps one gate to an ordered list of raw regex patterns.
type Entry struct {
	Gate     model.GateID `yaml:"gate"`
	Patterns []string     `yaml:"patterns"`
}

// Patterns holds the raw catalogs. Order matters: the first entry whose
// pattern matches wins.
type Patterns struct {
	Commands []Entry `yaml:"commands"`
	Files    []Entry `yaml:"files"`
}

type rule struct {
	gate model.GateID
	re   *regexp.Regexp
}

// Catalog holds compiled patterns for classification.
type Catalog struct {
	commands []rule
	files    []rule
	raw      Patterns
}

// New compiles a Catalog from raw patterns. Invalid expressions are skipped.
func New(p Patterns) *Catalog {
	return &Catalog{
		commands: compile(p.Commands),
		files:    compile(p.Files),
		raw:      p,
	}
}

// NewDefault returns the built-in catalog.
func NewDefault() *Catalog {
	return New(DefaultPatterns)
}

// LoadCatalog returns the built-in catalog extended with the patterns in the
// YAML file at path. Extra patterns for a gate are appended after that
// gate's built-ins; gates not already in a catalog are appended at its end.
// An empty path or missing file yields the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return NewDefault(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var extra Patterns
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return New(Merge(DefaultPatterns, extra)), nil
}

// Merge appends extra patterns to base, preserving base gate order.
func Merge(base, extra Patterns) Patterns {
	return Patterns{
		Commands: mergeEntries(base.Commands, extra.Commands),
		Files:    mergeEntries(base.Files, extra.Files),
	}
}

func mergeEntries(base, extra []Entry) []Entry {
	out := make([]Entry, len(base))
	index := make(map[model.GateID]int, len(base))
	for i, e := range base {
		out[i] = Entry{Gate: e.Gate, Patterns: append([]string(nil), e.Patterns...)}
		index[e.Gate] = i
	}
	for _, e := range extra {
		if i, ok := index[e.Gate]; ok {
			out[i].Patterns = append(out[i].Patterns, e.Patterns...)
			continue
		}
		index[e.Gate] = len(out)
		out = append(out, Entry{Gate: e.Gate, Patterns: append([]string(nil), e.Patterns...)})
	}
	return out
}

// ClassifyCommand returns the gate a shell command belongs to.
func (c *Catalog) ClassifyCommand(command string) (model.GateID, bool) {
	return match(c.commands, command)
}

// ClassifyFile returns the gate a file path belongs to.
func (c *Catalog) ClassifyFile(path string) (model.GateID, bool) {
	return match(c.files, path)
}

// Classify returns the gate for an action, if any.
func (c *Catalog) Classify(action *model.Action) (model.GateID, bool) {
	if action == nil {
		return "", false
	}
	switch action.Kind {
	case model.KindCommand:
		return c.ClassifyCommand(action.Command)
	case model.KindFile:
		return c.ClassifyFile(action.Path)
	}
	return "", false
}

// Raw returns the patterns the catalog was built from.
func (c *Catalog) Raw() Patterns {
	return c.raw
}

func compile(entries []Entry) []rule {
	var rules []rule
	for _, e := range entries {
		for _, p := range e.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				continue
			}
			rules = append(rules, rule{gate: e.Gate, re: re})
		}
	}
	return rules
}

func match(rules []rule, s string) (model.GateID, bool) {
	for _, r := range rules {
		if r.re.MatchString(s) {
			return r.gate, true
		}
	}
	return "", false
}
