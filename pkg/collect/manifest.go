package collect

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/stylegrade/pkg/config"
	"github.com/yaklabco/stylegrade/pkg/engine"
	"github.com/yaklabco/stylegrade/pkg/fsutil"
	"github.com/yaklabco/stylegrade/pkg/normalize"
	"github.com/yaklabco/stylegrade/pkg/runner"
)

// ErrInvalidManifest is returned for manifests that fail validation.
var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest lists submissions with pre-recorded analyzer output, so a batch
// can be graded without running any analyzer.
type Manifest struct {
	Submissions []ManifestSubmission `yaml:"submissions"`

	// dir resolves relative source and output_file paths.
	dir string

	// defaults supplies format and class for tools that omit them, and the
	// column offset of known tools.
	defaults map[string]config.ToolConfig

	// byID indexes Submissions after validation.
	byID map[string]int
}

// ManifestSubmission is one submitter's recorded analysis.
type ManifestSubmission struct {
	ID     string         `yaml:"id"`
	Source string         `yaml:"source,omitempty"`
	Parsed *bool          `yaml:"parsed,omitempty"`
	Tools  []RecordedTool `yaml:"tools"`
}

// IsParsed reports the parse flag, defaulting to true.
func (s ManifestSubmission) IsParsed() bool {
	return s.Parsed == nil || *s.Parsed
}

// RecordedTool is one analyzer's recorded result. Exactly one of Output,
// OutputFile, Records or Error is expected; Error records a crash.
type RecordedTool struct {
	Name       string             `yaml:"name"`
	Format     string             `yaml:"format,omitempty"`
	Class      string             `yaml:"class,omitempty"`
	Output     string             `yaml:"output,omitempty"`
	OutputFile string             `yaml:"output_file,omitempty"`
	Records    []normalize.Record `yaml:"records,omitempty"`
	Error      string             `yaml:"error,omitempty"`
}

// LoadManifest reads and validates a manifest file. Relative paths inside it
// are resolved against the manifest's directory.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return ParseManifest(data, filepath.Dir(path))
}

// ParseManifest decodes and validates manifest YAML.
func ParseManifest(data []byte, dir string) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.dir = dir
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewManifest builds a validated manifest in memory.
func NewManifest(dir string, submissions ...ManifestSubmission) (*Manifest, error) {
	m := &Manifest{Submissions: submissions, dir: dir}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// UseTools sets the configured tools whose format and class apply to
// recorded tools that omit them.
func (m *Manifest) UseTools(tools []config.ToolConfig) {
	m.defaults = make(map[string]config.ToolConfig, len(tools))
	for _, tool := range tools {
		m.defaults[tool.Name] = tool
	}
}

// Validate checks ids, tool names and formats, joining every problem found.
func (m *Manifest) Validate() error {
	var errs []error
	m.byID = make(map[string]int, len(m.Submissions))

	for i, sub := range m.Submissions {
		if sub.ID == "" {
			errs = append(errs, fmt.Errorf("submission %d: missing id", i+1))
			continue
		}
		if _, dup := m.byID[sub.ID]; dup {
			errs = append(errs, fmt.Errorf("submission %q: duplicate id", sub.ID))
			continue
		}
		m.byID[sub.ID] = i

		for j, tool := range sub.Tools {
			if tool.Name == "" {
				errs = append(errs, fmt.Errorf("submission %q tool %d: missing name", sub.ID, j+1))
			}
			if tool.Format != "" {
				if _, err := normalize.ParseFormat(tool.Format); err != nil {
					errs = append(errs, fmt.Errorf("submission %q tool %q: %w", sub.ID, tool.Name, err))
				}
			}
			if tool.Output != "" && tool.OutputFile != "" {
				errs = append(errs, fmt.Errorf("submission %q tool %q: output and output_file are exclusive",
					sub.ID, tool.Name))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, errors.Join(errs...))
	}
	return nil
}

// Targets returns one target per submission, sorted by id.
func (m *Manifest) Targets() []runner.Target {
	targets := make([]runner.Target, 0, len(m.Submissions))
	for _, sub := range m.Submissions {
		targets = append(targets, runner.Target{ID: sub.ID, Path: m.resolve(sub.Source)})
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].ID < targets[j].ID
	})
	return targets
}

// Collect replays the recorded outcomes of target's submission.
func (m *Manifest) Collect(ctx context.Context, target runner.Target) (engine.Submission, error) {
	if err := ctx.Err(); err != nil {
		return engine.Submission{}, err
	}

	idx, ok := m.byID[target.ID]
	if !ok {
		return engine.Submission{}, fmt.Errorf("submission %q not in manifest", target.ID)
	}
	sub := m.Submissions[idx]

	result := engine.Submission{
		ID:     sub.ID,
		Path:   m.resolve(sub.Source),
		Parsed: sub.IsParsed(),
	}

	if result.Path != "" {
		source, _, err := fsutil.ReadFile(ctx, result.Path)
		if err != nil {
			return engine.Submission{}, fmt.Errorf("read source: %w", err)
		}
		result.Source = string(source)
	}

	for _, tool := range sub.Tools {
		outcome, err := m.outcome(tool)
		if err != nil {
			return engine.Submission{}, fmt.Errorf("tool %s: %w", tool.Name, err)
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result, nil
}

// outcome converts a recorded tool into an analyzer outcome.
func (m *Manifest) outcome(tool RecordedTool) (normalize.Outcome, error) {
	format, class := tool.Format, tool.Class
	var offset int
	if def, ok := m.defaults[tool.Name]; ok {
		offset = def.Offset()
		if format == "" {
			format = def.Format
		}
		if class == "" {
			class = def.Class
		}
	}

	parsedFormat, err := normalize.ParseFormat(format)
	if err != nil {
		return normalize.Outcome{}, err
	}

	outcome := normalize.Outcome{
		Tool:    tool.Name,
		Format:  parsedFormat,
		Class:   class,
		Output:  tool.Output,
		Records: tool.Records,

		ColumnOffset: offset,
	}

	if tool.Error != "" {
		outcome.Err = errors.New(tool.Error)
		return outcome, nil
	}

	if tool.OutputFile != "" {
		data, err := os.ReadFile(m.resolve(tool.OutputFile))
		if err != nil {
			return normalize.Outcome{}, fmt.Errorf("read output: %w", err)
		}
		outcome.Output = string(data)
	}

	return outcome, nil
}

func (m *Manifest) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || m.dir == "" {
		return path
	}
	return filepath.Join(m.dir, path)
}
