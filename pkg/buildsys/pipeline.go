package buildsys

import (
	"context"
	"path/filepath"

	"github.com/mazesearch/build-web/pkg/config"
)

// Build contains everything the pipeline steps need. It's created once per run.
type Build struct {
	Options  Options
	Config   *config.Config
	Root     string
	Runner   Runner
	Reporter Reporter
}

// Step is a single stage of the pipeline
type Step struct {
	// Name is announced before the step runs. Steps without a name run silently.
	Name string
	// When decides whether the step applies to this build. A nil When always runs the step.
	When func(b *Build) bool
	Run  func(ctx context.Context, b *Build) error
}

// Pipeline is an ordered list of steps
type Pipeline []Step

// Run executes the steps in order and stops at the first one that fails. Nothing is rolled back.
func (p Pipeline) Run(ctx context.Context, b *Build) error {
	for idx, step := range p {
		if err := ctx.Err(); err != nil {
			return err
		}

		if step.When != nil && !step.When(b) {
			log(ctx).Debug().Int("step", idx).Msgf("skipping %s", step.Name)
			continue
		}

		if step.Name != "" {
			b.Reporter.Report(SeverityStep, step.Name, "", "")
		}

		err := step.Run(ctx, b)
		if err != nil {
			log(ctx).Debug().Err(err).Int("step", idx).Msgf("%s failed", step.Name)
			return err
		}
	}

	return nil
}

// Path resolves the given elements relative to the project root
func (b *Build) Path(elem ...string) string {
	return filepath.Join(append([]string{b.Root}, elem...)...)
}

// OutputPath returns the path of the output directory
func (b *Build) OutputPath() string {
	return b.Path(b.Config.OutputDir)
}

// ArtifactDir returns the directory cargo places the compiled module in, relative to the root
func (b *Build) ArtifactDir() string {
	return filepath.Join("target", b.Config.Toolchain.Target, b.Options.Profile())
}

func (b *Build) warn(summary, detail, hint string) {
	b.Reporter.Report(SeverityWarning, summary, detail, hint)
}

// exec runs cmd and turns runner failures into fatal errors. Non-zero exit codes are left to the caller.
func (b *Build) exec(ctx context.Context, cmd Command) (Result, error) {
	result, err := b.Runner.Run(ctx, cmd)
	if err != nil {
		return result, Fatal("couldn't run "+cmd.Name+", ", "the shell interpreter failed", "", err)
	}
	return result, nil
}

// mustSucceed runs cmd and propagates its exit code if it fails
func (b *Build) mustSucceed(ctx context.Context, cmd Command) error {
	result, err := b.exec(ctx, cmd)
	if err != nil {
		return err
	}

	if !result.Success() {
		return ExitStatus(result.ExitCode)
	}
	return nil
}
