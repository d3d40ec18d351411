package buildsys

import (
	"context"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Runner executes external commands. A non-zero exit status is reported through Result.ExitCode; the
// returned error is reserved for failures of the runner itself.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ShellRunner runs commands through the mvdan.cc/sh interpreter in a fixed directory.
type ShellRunner struct {
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// NewShellRunner returns a ShellRunner that passes output through to the console
func NewShellRunner(dir string) *ShellRunner {
	return &ShellRunner{
		Dir:    dir,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

var defaultExecHandler = interp.DefaultExecHandler(2 * time.Second)

// Run implements Runner
func (s *ShellRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	expr, err := callExpr(cmd)
	if err != nil {
		return Result{}, err
	}
	stmt := &syntax.Stmt{Cmd: expr}

	strBuffer := strings.Builder{}
	printer := syntax.NewPrinter(syntax.Minify(true))
	if err = printer.Print(&strBuffer, stmt); err == nil {
		log(ctx).Debug().
			Bool("command", true).
			Str("dir", s.Dir).
			Msg(strBuffer.String())
	}

	var stdout, stderr strings.Builder
	var out, errOut io.Writer = s.Stdout, s.Stderr
	if cmd.Capture {
		out = &stdout
		errOut = &stderr
	}

	runner, err := interp.New(
		interp.Dir(s.Dir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.ExecHandler(defaultExecHandler),
		interp.StdIO(nil, out, errOut),
	)
	if err != nil {
		return Result{}, eris.Wrap(err, "Failed to initialize runner")
	}

	err = runner.Run(ctx, stmt)
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		status, ok := interp.IsExitStatus(err)
		if !ok {
			return result, eris.Wrapf(err, "failed to run %s", cmd.Name)
		}
		result.ExitCode = int(status)
	}

	return result, nil
}

// rootedReadDir lists directories relative to root. Paths the expander already made absolute are used as is.
func rootedReadDir(root string) func(string) ([]os.FileInfo, error) {
	return func(path string) ([]os.FileInfo, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}

		return ioutil.ReadDir(path)
	}
}

// resolvePatterns expands the glob patterns relative to root and returns the matching paths relative to root.
// Patterns that don't match anything are dropped. Only the patterns are expanded, so root may contain glob
// characters.
func resolvePatterns(root string, patterns ...string) ([]string, error) {
	result := []string{}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	cfg := expand.Config{
		Env:      expand.ListEnviron("PWD=" + root),
		ReadDir:  rootedReadDir(root),
		GlobStar: true,
	}

	parser := syntax.NewParser()
	for _, pattern := range patterns {
		item := filepath.ToSlash(pattern)

		words := make([]*syntax.Word, 0)
		err := parser.Words(strings.NewReader(item), func(w *syntax.Word) bool {
			words = append(words, w)
			return true
		})
		if err != nil {
			return nil, eris.Wrapf(err, "Failed to parse pattern %s", pattern)
		}

		matches, err := expand.Fields(&cfg, words...)
		if err != nil {
			return nil, eris.Wrapf(err, "Failed to resolve pattern %s", pattern)
		}

		for _, match := range matches {
			path := filepath.FromSlash(match)
			if !filepath.IsAbs(path) {
				path = filepath.Join(root, path)
			}

			// If a pattern didn't match anything, it's returned as a result. Skip those results.
			if _, err := os.Lstat(path); err != nil {
				continue
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return nil, eris.Wrapf(err, "Failed to simplify %s", match)
			}
			result = append(result, relPath)
		}
	}
	return result, nil
}
