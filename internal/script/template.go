// Package script drives template-scripted conversations: a static library of task
// walkthrough templates and a per-chat progression engine that replays them. It is
// the stand-in for a live response generator when chats are spawned from predefined
// tasks.
package script

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// DefaultTemplateName is the fallback key every unknown title resolves to
const DefaultTemplateName = "default"

// StepStatus tags a walkthrough step for display
type StepStatus string

const (
	StepComplete StepStatus = "complete"
	StepCurrent  StepStatus = "current"
	StepPending  StepStatus = "pending"
)

// Step is one line of the presentational progress sequence shown while the agent
// "works". Steps never write to the message store.
type Step struct {
	Text        string     `yaml:"text"`
	Status      StepStatus `yaml:"status"`
	DelayMillis int        `yaml:"delayMillis"`
}

// Delay returns the step's display delay relative to walkthrough start
func (s Step) Delay() time.Duration {
	return time.Duration(s.DelayMillis) * time.Millisecond
}

// SupportLink is one-shot side content surfaced after the first assistant reply
type SupportLink struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Exchange is one scripted turn: the assistant reply at this progression index,
// with the user line the script anticipated (informational only; the engine replies
// to whatever the user actually typed).
type Exchange struct {
	User      string `yaml:"user,omitempty"`
	Assistant string `yaml:"assistant"`
}

// Template is a named, static script used to simulate agent behavior for one task
type Template struct {
	Name           string        `yaml:"-"`
	InitialMessage string        `yaml:"initialMessage"`
	Steps          []Step        `yaml:"steps"`
	SupportLinks   []SupportLink `yaml:"supportLinks"`
	Responses      []Exchange    `yaml:"responses"`
}

// Library is a template table keyed by task title
type Library struct {
	templates map[string]Template
}

// LoadLibrary parses a YAML template table. The table must contain a "default"
// template, which guarantees Resolve is total.
func LoadLibrary(data []byte) (*Library, error) {
	templates := map[string]Template{}
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse template table: %w", err)
	}
	if _, ok := templates[DefaultTemplateName]; !ok {
		return nil, fmt.Errorf("template table has no %q template", DefaultTemplateName)
	}
	for name, t := range templates {
		t.Name = name
		templates[name] = t
	}
	return &Library{templates: templates}, nil
}

// BuiltinLibrary loads the embedded template table
func BuiltinLibrary() (*Library, error) {
	return LoadLibrary(templatesYAML)
}

// Resolve returns the template for a task title. Lookup is by exact, case-sensitive
// match; unknown titles resolve to the default template, so Resolve never fails.
func (l *Library) Resolve(title string) Template {
	if t, ok := l.templates[title]; ok {
		return t
	}
	return l.templates[DefaultTemplateName]
}

// Names returns the titles in the table, including the default
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	return names
}
