package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	apperrors "github.com/kbukum/tabkit/errors"
	"github.com/kbukum/tabkit/ingest"
	"github.com/kbukum/tabkit/record"
)

// Job is a batch of ingest settings read from a YAML file.
//
//	format: csv
//	settings:
//	  - path: people.csv
//	    filter: {country: US}
//	    format:
//	      toInt: [age]
//	  - url: https://example.com/people.csv
type Job struct {
	// Format is the discriminator for URL sources.
	Format   string       `yaml:"format"`
	Settings []JobSetting `yaml:"settings"`
}

// JobSetting is the file form of ingest.Setting. Hooks cannot be expressed
// in a job file.
type JobSetting struct {
	Text       *string        `yaml:"text"`
	Data       any            `yaml:"data"`
	Path       string         `yaml:"path"`
	URL        string         `yaml:"url"`
	Encoding   string         `yaml:"encoding"`
	Header     *bool          `yaml:"header"`
	Delimiter  string         `yaml:"delimiter"`
	Comment    string         `yaml:"comment"`
	Filter     map[string]any `yaml:"filter"`
	Format     record.Rules   `yaml:"format"`
	Event      string         `yaml:"event"`
	ErrorEvent string         `yaml:"errorEvent"`
}

// readJob parses the job file at path.
func readJob(path string) (*Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ReadFailed(path, err)
	}
	var job Job
	if err := yaml.Unmarshal(b, &job); err != nil {
		return nil, apperrors.ParseFailed("yaml", err)
	}
	if len(job.Settings) == 0 {
		return nil, apperrors.InvalidSetting("settings", "job has no settings")
	}
	return &job, nil
}

// ingestSettings converts the job's settings. Relative paths are resolved
// against baseDir when it is non-empty.
func (j *Job) ingestSettings(baseDir string) ([]ingest.Setting, error) {
	out := make([]ingest.Setting, len(j.Settings))
	for i, js := range j.Settings {
		filter, err := record.MatchFromMap(js.Filter)
		if err != nil {
			return nil, fmt.Errorf("setting %d: %w", i, err)
		}
		p := js.Path
		if p != "" && baseDir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		out[i] = ingest.Setting{
			Text:       js.Text,
			Data:       js.Data,
			Path:       p,
			URL:        js.URL,
			Encoding:   js.Encoding,
			Header:     js.Header,
			Delimiter:  js.Delimiter,
			Comment:    js.Comment,
			Filter:     filter,
			Format:     js.Format,
			Event:      js.Event,
			ErrorEvent: js.ErrorEvent,
		}
	}
	return out, nil
}
