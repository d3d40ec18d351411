package buildsys

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rotisserie/eris"
)

// Platforms the build has been tested on
var Platforms = []string{"linux", "windows"}

// DefaultPipeline returns the steps of a complete build in execution order
func DefaultPipeline() Pipeline {
	return Pipeline{
		{Run: checkPlatform},
		{Name: "checking for rust toolkit", Run: probeEnvironment},
		{Name: "checking for rust wasm compiler", Run: installTarget},
		{Name: "checking for wasm-bindgen cli", Run: installBindgen},
		{Name: "removing old files", When: func(b *Build) bool { return b.Options.Clean }, Run: clean},
		{Name: "compiling wasm", Run: compile},
		{Name: "bundling wasm", Run: bundle},
		{Name: "copying static assets", Run: copyAssets},
		{Name: "compressing output files", When: func(b *Build) bool { return b.Config.Precompress }, Run: precompress},
		{Name: "removing development files", When: func(b *Build) bool { return b.Options.RemoveSource }, Run: removeSource},
	}
}

func checkPlatform(ctx context.Context, b *Build) error {
	for _, platform := range Platforms {
		if platform == runtime.GOOS {
			return nil
		}
	}

	b.warn("build not tested for "+runtime.GOOS+", ",
		"supported platforms: "+strings.Join(Platforms, ", "),
		"if it fails, try building manually with cargo and the wasm-bindgen cli and copy "+b.Config.EntryPoint+" yourself")
	return nil
}

func probeEnvironment(ctx context.Context, b *Build) error {
	tc := b.Config.Toolchain

	result, err := b.exec(ctx, Command{Name: tc.Manager, Args: []string{"--version"}, Capture: true})
	if err != nil {
		return err
	}
	if !result.Success() {
		return Fatal("couldn't find "+tc.Manager+", ", "download from rust-lang.org/tools/install", strings.TrimSpace(result.Stderr), nil)
	}
	log(ctx).Debug().Msg(strings.TrimSpace(result.Stdout))

	result, err = b.exec(ctx, Command{Name: tc.Cargo, Args: []string{"--version"}, Capture: true})
	if err != nil {
		return err
	}
	if !result.Success() {
		return Fatal("couldn't find "+tc.Cargo+", ",
			"but "+tc.Manager+" is installed; the toolchain looks incomplete, try reinstalling it",
			strings.TrimSpace(result.Stderr), nil)
	}
	log(ctx).Debug().Msg(strings.TrimSpace(result.Stdout))

	return nil
}

func installTarget(ctx context.Context, b *Build) error {
	tc := b.Config.Toolchain
	return b.mustSucceed(ctx, Command{Name: tc.Manager, Args: []string{"target", "add", tc.Target}})
}

func installBindgen(ctx context.Context, b *Build) error {
	return b.mustSucceed(ctx, Command{Name: b.Config.Toolchain.Cargo, Args: []string{"install", b.Config.Bindgen.Package}})
}

func clean(ctx context.Context, b *Build) error {
	result, err := b.exec(ctx, Command{Name: b.Config.Toolchain.Cargo, Args: []string{"clean"}, Capture: true})
	if err != nil {
		b.warn("failed to clean, ", "couldn't run "+b.Config.Toolchain.Cargo+" clean", err.Error())
	} else if !result.Success() {
		output := strings.TrimSpace(result.Stderr + result.Stdout)
		b.warn("failed to clean, ", "see "+b.Config.Toolchain.Cargo+" error:", output)
	}

	outPath := b.OutputPath()
	_, err = os.Stat(outPath)
	if err == nil {
		err = os.RemoveAll(outPath)
	}
	if err != nil {
		b.warn("failed to clean, ", "couldn't delete "+b.Config.OutputDir+" folder", err.Error())
	}

	return nil
}

func compile(ctx context.Context, b *Build) error {
	args := []string{"build", "--lib", "--target", b.Config.Toolchain.Target}
	if b.Options.Release {
		args = append(args, "--release")
	}

	return b.mustSucceed(ctx, Command{Name: b.Config.Toolchain.Cargo, Args: args})
}

// findArtifact returns the single compiled module in the artifact directory (relative to the root)
func findArtifact(b *Build) (string, error) {
	pattern := filepath.Join(b.ArtifactDir(), "*.wasm")
	matches, err := resolvePatterns(b.Root, pattern)
	if err != nil {
		return "", Fatal("no wasm file ", "in expected directory, see glob error:", "", err)
	}

	switch len(matches) {
	case 0:
		return "", Fatal("no wasm file ", "in expected directory", "missing "+pattern, nil)
	case 1:
		return matches[0], nil
	default:
		return "", Fatal("multiple wasm files, ", "can't choose", "found "+strings.Join(matches, ", "),
			eris.Errorf("%d matches for %s", len(matches), pattern))
	}
}

func bundle(ctx context.Context, b *Build) error {
	artifact, err := findArtifact(b)
	if err != nil {
		return err
	}

	log(ctx).Debug().Str("path", artifact).Msg("found wasm module")
	return b.mustSucceed(ctx, Command{
		Name: b.Config.Bindgen.Command,
		Args: []string{
			"--target", b.Config.Bindgen.Target,
			"--out-dir", b.Config.OutputDir,
			"--no-typescript",
			filepath.ToSlash(artifact),
		},
	})
}
