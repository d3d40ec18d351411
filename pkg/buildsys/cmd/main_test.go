package cmd

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mazesearch/build-web/pkg/buildsys"
	"github.com/mazesearch/build-web/pkg/buildsys/buildsystest"
	"github.com/mazesearch/build-web/pkg/config"
)

type testEnv struct {
	*Env
	runner   *buildsystest.FakeRunner
	reporter *buildsystest.Recorder
	out      *strings.Builder
}

func newTestEnv(t *testing.T, answer string) *testEnv {
	t.Helper()
	t.Setenv("CI", "true")

	root := t.TempDir()
	for _, name := range []string{"index.html", "Cargo.toml", filepath.Join("src", "lib.rs")} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, ioutil.WriteFile(path, []byte(name), 0644))
	}

	cfg, err := config.Load(filepath.Join(t.TempDir(), "build-web.toml"))
	require.NoError(t, err)

	runner := buildsystest.NewFakeRunner()
	for _, profile := range []string{"debug", "release"} {
		cmdline := "cargo build --lib --target wasm32-unknown-unknown"
		if profile == "release" {
			cmdline += " --release"
		}

		artifact := filepath.Join(root, "target", "wasm32-unknown-unknown", profile, "site.wasm")
		runner.On(cmdline, func() error {
			if err := os.MkdirAll(filepath.Dir(artifact), 0755); err != nil {
				return err
			}
			return ioutil.WriteFile(artifact, nil, 0644)
		})
	}

	logger := zerolog.Nop()
	env := &testEnv{
		runner:   runner,
		reporter: &buildsystest.Recorder{},
		out:      &strings.Builder{},
	}
	env.Env = &Env{
		Root:      root,
		Config:    cfg,
		Runner:    runner,
		Reporter:  env.reporter,
		Confirmer: &buildsys.PromptConfirmer{In: strings.NewReader(answer), Out: env.out},
		Logger:    &logger,
		Out:       env.out,
	}
	return env
}

func (e *testEnv) rootEntries(t *testing.T) []string {
	t.Helper()

	entries, err := ioutil.ReadDir(e.Root)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestInvalidArguments(t *testing.T) {
	for _, args := range [][]string{{"--bogus"}, {"-r", "-x"}, {"build"}, {"-c", "release"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			env := newTestEnv(t, "")

			assert.Equal(t, 1, Run(env.Env, args))
			assert.Empty(t, env.runner.Calls())

			errs := env.reporter.Filter(buildsys.SeverityError)
			require.Len(t, errs, 1)
			assert.Equal(t, "pass -h or --help as argument to see possible flags", errs[0].Hint)
		})
	}
}

func TestHelp(t *testing.T) {
	for _, args := range [][]string{{"-h"}, {"--help"}, {"-r", "-h"}, {"-c", "--rm-src", "--help"}} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			env := newTestEnv(t, "y\n")

			assert.Equal(t, 0, Run(env.Env, args))
			assert.Empty(t, env.runner.Calls())
			assert.Contains(t, env.out.String(), "--rm-src")
			assert.Contains(t, env.out.String(), "use rust compiler in release mode instead of debug")
			assert.NotContains(t, env.out.String(), "y=YES")
		})
	}
}

func TestDeclineRemoval(t *testing.T) {
	env := newTestEnv(t, "n\n")
	before := env.rootEntries(t)

	assert.Equal(t, 0, Run(env.Env, []string{"--rm-src"}))
	assert.Empty(t, env.runner.Calls())
	assert.Equal(t, before, env.rootEntries(t))

	infos := env.reporter.Filter(buildsys.SeverityInfo)
	require.Len(t, infos, 1)
	assert.Equal(t, "ok, exiting...", infos[0].Summary)
}

func TestInvalidConfirmation(t *testing.T) {
	env := newTestEnv(t, "yes please\n")
	before := env.rootEntries(t)

	assert.Equal(t, 1, Run(env.Env, []string{"-r", "--rm-src"}))
	assert.Empty(t, env.runner.Calls())
	assert.Equal(t, before, env.rootEntries(t))

	errs := env.reporter.Filter(buildsys.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "yes please is not valid, ", errs[0].Summary)
	assert.Equal(t, "try y for YES, n for NO", errs[0].Detail)
}

func TestReleaseRun(t *testing.T) {
	env := newTestEnv(t, "")

	assert.Equal(t, 0, Run(env.Env, []string{"-r"}))

	calls := env.runner.Calls()
	assert.Contains(t, calls, "cargo build --lib --target wasm32-unknown-unknown --release")
	assert.Equal(t,
		"wasm-bindgen --target web --out-dir dist --no-typescript target/wasm32-unknown-unknown/release/site.wasm",
		calls[len(calls)-1])
	assert.FileExists(t, filepath.Join(env.Root, "dist", "index.html"))

	success := env.reporter.Filter(buildsys.SeveritySuccess)
	require.Len(t, success, 1)
	assert.Equal(t, "files built, ", success[0].Summary)
}

func TestConfirmedRemoval(t *testing.T) {
	env := newTestEnv(t, "Y\n")

	assert.Equal(t, 0, Run(env.Env, []string{"--clean", "--rm-src"}))
	assert.Contains(t, env.runner.Calls(), "cargo clean")
	assert.ElementsMatch(t, []string{"dist", "index.html"}, env.rootEntries(t))
}

func TestProbeFailure(t *testing.T) {
	env := newTestEnv(t, "")
	env.runner.Fail("rustup --version", 127, "not found")

	assert.Equal(t, 1, Run(env.Env, nil))
	assert.Equal(t, []string{"rustup --version"}, env.runner.Calls())

	errs := env.reporter.Filter(buildsys.SeverityError)
	require.Len(t, errs, 1)
	assert.Equal(t, "couldn't find rustup, ", errs[0].Summary)
	assert.Equal(t, "not found", errs[0].Hint)
	assert.Empty(t, env.reporter.Filter(buildsys.SeveritySuccess))
}

func TestToolExitCode(t *testing.T) {
	env := newTestEnv(t, "")
	env.runner.Fail("cargo install wasm-bindgen-cli", 101, "")

	assert.Equal(t, 101, Run(env.Env, []string{"-c"}))
	// the tool printed its own error already
	assert.Empty(t, env.reporter.Filter(buildsys.SeverityError))
}

func TestCustomPipeline(t *testing.T) {
	env := newTestEnv(t, "")

	var got buildsys.Options
	env.Pipeline = buildsys.Pipeline{{Run: func(_ context.Context, b *buildsys.Build) error {
		got = b.Options
		return nil
	}}}

	assert.Equal(t, 0, Run(env.Env, []string{"--release", "-c"}))
	assert.Equal(t, buildsys.Options{Release: true, Clean: true}, got)
	assert.Empty(t, env.runner.Calls())
}
