// Package heuristics holds the keyword tables driving the rule-based
// generator and the category/folder suggestion scorer. Defaults are embedded
// and can be overridden by a YAML file.
package heuristics

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Tables is the full set of content-analysis heuristics.
type Tables struct {
	// DocumentTypes maps a document type label to the keywords counted when
	// classifying text. Order matters: on equal scores the first entry wins.
	DocumentTypes []DocumentType `yaml:"document_types"`

	// SubjectPatterns is an ordered list of subject-matter phrases; the
	// first phrase found in the text becomes the subject.
	SubjectPatterns []string `yaml:"subject_patterns"`

	// TopicPatterns maps a topic label to a regular expression; up to three
	// matching topics are reported.
	TopicPatterns []TopicPattern `yaml:"topic_patterns"`

	// KeywordGroups maps a group name to related keywords. A group applies
	// to a category when the group name is a substring of the category name.
	KeywordGroups []KeywordGroup `yaml:"keyword_groups"`
}

type DocumentType struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

type TopicPattern struct {
	Label   string `yaml:"label"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

type KeywordGroup struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Load reads tables from path, or the embedded defaults when path is empty.
func Load(path string) (*Tables, error) {
	raw := defaultTables
	if path != "" {
		fileRaw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read heuristics file: %w", err)
		}
		raw = fileRaw
	}

	var tables Tables
	if err := yaml.Unmarshal(raw, &tables); err != nil {
		return nil, fmt.Errorf("parse heuristics yaml: %w", err)
	}
	if err := tables.compile(); err != nil {
		return nil, err
	}
	return &tables, nil
}

// MustDefaults loads the embedded tables and panics on failure. The embedded
// file is validated by tests, so a panic here means a broken build.
func MustDefaults() *Tables {
	tables, err := Load("")
	if err != nil {
		panic(err)
	}
	return tables
}

func (t *Tables) compile() error {
	for i := range t.TopicPatterns {
		re, err := regexp.Compile(t.TopicPatterns[i].Pattern)
		if err != nil {
			return fmt.Errorf("compile topic pattern %q: %w", t.TopicPatterns[i].Label, err)
		}
		t.TopicPatterns[i].re = re
	}
	return nil
}

// Matches reports whether the topic pattern matches the given text.
func (p TopicPattern) Matches(text string) bool {
	return p.re != nil && p.re.MatchString(text)
}
