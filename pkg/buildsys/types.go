package buildsys

import (
	"strings"
)

// Options contains the settings derived from the command line. It is built once before the pipeline starts
// and never modified afterwards.
type Options struct {
	Release bool
	Clean   bool
	// RemoveSource is only set after the user confirmed the removal.
	RemoveSource bool
}

// Profile returns the cargo profile directory name for these options
func (o Options) Profile() string {
	if o.Release {
		return "release"
	}
	return "debug"
}

// Command describes a single external tool invocation
type Command struct {
	Name string
	Args []string
	// Capture collects stdout and stderr in the Result instead of passing them through to the console.
	Capture bool
}

// String returns the command line as it would be typed into a shell
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result contains the outcome of a Command
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success returns true if the command exited with status 0
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Severity classifies messages passed to a Reporter
type Severity int

const (
	// SeverityInfo is used for plain status messages
	SeverityInfo Severity = iota
	// SeverityStep announces the start of a pipeline step
	SeverityStep
	SeverityWarning
	SeverityError
	SeveritySuccess
)

var severityNames = map[Severity]string{
	SeverityInfo:    "info",
	SeverityStep:    "step",
	SeverityWarning: "warning",
	SeverityError:   "error",
	SeveritySuccess: "success",
}

func (s Severity) String() string {
	name, ok := severityNames[s]
	if !ok {
		return "unknown"
	}
	return name
}
