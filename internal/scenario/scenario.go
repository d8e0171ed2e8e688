// Package scenario loads the ordered section declarations that drive
// background imagery: section names, image prompts, descriptions and the
// optional spoken keywords used to locate unmarked sections.
package scenario

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ozdemircibaris/youtube-video-generator/internal/pipeline"
	"gopkg.in/yaml.v3"
)

// ErrNoScenarioBlock is returned when a template has no #images_scenario: block.
var ErrNoScenarioBlock = errors.New("template has no #images_scenario block")

// Section is one image scenario entry.
type Section struct {
	Name        string   `yaml:"section" json:"section"`
	Prompt      string   `yaml:"prompt,omitempty" json:"prompt,omitempty"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty" json:"keywords,omitempty"`
}

// Scenario is the ordered list of sections.
type Scenario []Section

// ToPipeline keeps only what section resolution consumes: names, order and keywords.
func (s Scenario) ToPipeline() pipeline.Scenario {
	out := make(pipeline.Scenario, len(s))
	for i, sec := range s {
		out[i] = pipeline.SectionDecl{Name: sec.Name, Keywords: sec.Keywords}
	}
	return out
}

// Load reads a scenario file. Files ending in .yaml or .yml are parsed as a
// YAML list; anything else is treated as a video template.
func Load(path string) (Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scenario: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(f)
	default:
		return ParseTemplate(f)
	}
}

// LoadYAML decodes a YAML list of sections.
func LoadYAML(r io.Reader) (Scenario, error) {
	var s Scenario
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Scenario{}, nil
		}
		return nil, fmt.Errorf("decode scenario yaml: %w", err)
	}
	for i := range s {
		s[i].Name = strings.TrimSpace(s[i].Name)
	}
	return s, nil
}

// ParseTemplate extracts the #images_scenario: block of a video template:
//
//	#images_scenario:
//	- section: intro
//	  prompt: a misty forest at dawn
//	  description: opening shot
//	  keywords: forest, dawn
//
// The block ends at the next line starting with '#'. Lines that continue a
// field without a key are appended to it.
func ParseTemplate(r io.Reader) (Scenario, error) {
	var (
		s       Scenario
		inBlock bool
		found   bool
		field   *string
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()

		if strings.HasPrefix(line, "#") {
			inBlock = strings.HasPrefix(line, "#images_scenario:")
			found = found || inBlock
			field = nil
			continue
		}
		if !inBlock || strings.TrimSpace(line) == "" {
			continue
		}

		trimmed := strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(trimmed, "- "); ok {
			s = append(s, Section{})
			trimmed = strings.TrimSpace(rest)
		}
		if len(s) == 0 {
			continue
		}
		cur := &s[len(s)-1]

		key, value, ok := strings.Cut(trimmed, ":")
		switch k := strings.TrimSpace(key); {
		case ok && k == "section":
			cur.Name, field = strings.TrimSpace(value), &cur.Name
		case ok && k == "prompt":
			cur.Prompt, field = strings.TrimSpace(value), &cur.Prompt
		case ok && k == "description":
			cur.Description, field = strings.TrimSpace(value), &cur.Description
		case ok && k == "keywords":
			cur.Keywords, field = splitKeywords(value), nil
		case field != nil:
			*field = strings.TrimSpace(*field + " " + trimmed)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	if !found {
		return nil, ErrNoScenarioBlock
	}
	return s, nil
}

func splitKeywords(value string) []string {
	value = strings.Trim(strings.TrimSpace(value), "[]")
	var out []string
	for _, kw := range strings.Split(value, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}
