package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// EnvironmentDefinition is a declarative dependency file found under the
// workflow's envs folder. Its Name is the file name without extension.
type EnvironmentDefinition struct {
	Name string
	Path string
}

// NewEnvironmentDefinition derives the definition name from its file path.
func NewEnvironmentDefinition(path string) EnvironmentDefinition {
	base := filepath.Base(path)
	return EnvironmentDefinition{
		Name: strings.TrimSuffix(base, filepath.Ext(base)),
		Path: path,
	}
}

// CreationResult is the outcome of materializing a single environment.
type CreationResult struct {
	Name     string
	Address  string
	Err      error
	Duration time.Duration
}

// OK reports whether the environment was created (or already existed).
func (r CreationResult) OK() bool {
	return r.Err == nil
}

// Batch aggregates the results of a create call.
// Successful environments are never rolled back when a sibling fails.
type Batch struct {
	Results []CreationResult
}

// Failed reports whether any environment in the batch failed.
func (b Batch) Failed() bool {
	for _, r := range b.Results {
		if !r.OK() {
			return true
		}
	}
	return false
}

// Failures returns the failed results in dispatch order.
func (b Batch) Failures() []CreationResult {
	var out []CreationResult
	for _, r := range b.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}
