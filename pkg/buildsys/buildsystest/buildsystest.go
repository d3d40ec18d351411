// Package buildsystest provides fakes for testing code that drives the build pipeline.
package buildsystest

import (
	"context"
	"sync"

	"github.com/mazesearch/build-web/pkg/buildsys"
)

// FakeRunner records commands instead of running them. Results and Hooks are keyed by Command.String().
type FakeRunner struct {
	Results map[string]buildsys.Result
	// Hooks run before the result is returned, e.g. to create the files a real tool would produce.
	Hooks map[string]func() error

	mu    sync.Mutex
	calls []buildsys.Command
}

// NewFakeRunner creates a runner where every command succeeds
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Results: map[string]buildsys.Result{},
		Hooks:   map[string]func() error{},
	}
}

// Fail makes the given command line exit with code
func (f *FakeRunner) Fail(cmdline string, code int, stderr string) *FakeRunner {
	f.Results[cmdline] = buildsys.Result{ExitCode: code, Stderr: stderr}
	return f
}

// On registers a hook for the given command line
func (f *FakeRunner) On(cmdline string, hook func() error) *FakeRunner {
	f.Hooks[cmdline] = hook
	return f
}

// Run implements buildsys.Runner
func (f *FakeRunner) Run(ctx context.Context, cmd buildsys.Command) (buildsys.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	key := cmd.String()
	if hook, ok := f.Hooks[key]; ok {
		if err := hook(); err != nil {
			return buildsys.Result{}, err
		}
	}

	return f.Results[key], nil
}

// Calls returns the command lines that were run, in order
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]string, len(f.calls))
	for idx, cmd := range f.calls {
		result[idx] = cmd.String()
	}
	return result
}

// Entry is a single recorded report
type Entry struct {
	Severity buildsys.Severity
	Summary  string
	Detail   string
	Hint     string
}

// Recorder is a buildsys.Reporter that keeps every report
type Recorder struct {
	mu      sync.Mutex
	Entries []Entry
}

// Report implements buildsys.Reporter
func (r *Recorder) Report(severity buildsys.Severity, summary, detail, hint string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Entries = append(r.Entries, Entry{
		Severity: severity,
		Summary:  summary,
		Detail:   detail,
		Hint:     hint,
	})
}

// Filter returns all entries with the given severity
func (r *Recorder) Filter(severity buildsys.Severity) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]Entry, 0)
	for _, entry := range r.Entries {
		if entry.Severity == severity {
			result = append(result, entry)
		}
	}
	return result
}
