package buildsys

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
)

// progressOutput receives the progress bars of long-running file operations
var progressOutput io.Writer = os.Stderr

// progressVisible returns false if the bars would garble machine-readable output
func (b *Build) progressVisible() bool {
	if os.Getenv("CI") == "true" {
		return false
	}
	return b.Config == nil || !b.Config.Log.JSON
}

func (b *Build) progressBar(length int64, desc string) *progressbar.ProgressBar {
	if !b.progressVisible() {
		return progressbar.NewOptions64(length, progressbar.OptionSetVisibility(false))
	}

	return progressbar.NewOptions64(length,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetWriter(progressOutput),
		progressbar.OptionShowBytes(true),
		progressbar.OptionOnCompletion(func() {
			io.WriteString(progressOutput, "\n")
		}),
	)
}

// outsideRoot returns true if the root-relative path points above the root
func outsideRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel)
}

// collectAssets returns the root-relative paths of all files that belong into the output directory. The entry
// point always comes first.
func collectAssets(b *Build) ([]string, error) {
	sources := []string{b.Config.EntryPoint}
	seen := map[string]bool{b.Config.EntryPoint: true}
	outPrefix := b.Config.OutputDir + string(filepath.Separator)

	for _, pattern := range b.Config.Assets {
		matches, err := resolvePatterns(b.Root, pattern)
		if err != nil {
			return nil, Fatal("couldn't copy files, ", "invalid asset pattern "+pattern, "", err)
		}

		if len(matches) == 0 {
			b.warn("no files match asset pattern ", pattern, "")
			continue
		}

		for _, match := range matches {
			if outsideRoot(match) {
				return nil, Fatal("couldn't copy files, ", "asset pattern "+pattern+" leaves the project root",
					"matched "+match, nil)
			}

			if seen[match] || match == b.Config.OutputDir || strings.HasPrefix(match, outPrefix) {
				continue
			}

			info, err := os.Stat(b.Path(match))
			if err != nil {
				return nil, Fatal("couldn't copy file, ", "failed to check "+match, "", err)
			}

			// with ** patterns the directories match as well as their contents
			if info.IsDir() {
				continue
			}

			seen[match] = true
			sources = append(sources, match)
		}
	}

	return sources, nil
}

func copyAssets(ctx context.Context, b *Build) error {
	entryInfo, err := os.Stat(b.Path(b.Config.EntryPoint))
	if err == nil && entryInfo.IsDir() {
		err = eris.Errorf("%s is a directory", b.Config.EntryPoint)
	}
	if err != nil {
		return Fatal("couldn't copy file, ", "missing "+b.Config.EntryPoint+"? using unsupported OS?", "", err)
	}

	sources, err := collectAssets(b)
	if err != nil {
		return err
	}

	var total int64
	for _, src := range sources {
		info, err := os.Stat(b.Path(src))
		if err != nil {
			return Fatal("couldn't copy file, ", "failed to check "+src, "", err)
		}
		total += info.Size()
	}

	bar := b.progressBar(total, "copying files")
	defer bar.Finish()

	for _, src := range sources {
		dest := filepath.Join(b.OutputPath(), src)
		log(ctx).Debug().Str("path", src).Msgf("copying %s to %s", src, dest)

		err := copyFile(b.Path(src), dest, bar)
		if err != nil {
			hint := "missing " + b.Config.EntryPoint + "? using unsupported OS?"
			if src != b.Config.EntryPoint {
				hint = "failed to copy " + src
			}
			return Fatal("couldn't copy file, ", hint, "", err)
		}
	}

	return nil
}

func copyFile(src, dest string, progress io.Writer) error {
	info, err := os.Stat(src)
	if err != nil {
		return eris.Wrapf(err, "Could not stat %s", src)
	}

	err = os.MkdirAll(filepath.Dir(dest), 0755)
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", filepath.Dir(dest))
	}

	in, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "Failed to open %s", src)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", dest)
	}

	_, err = io.Copy(io.MultiWriter(out, progress), in)
	if err != nil {
		out.Close()
		return eris.Wrapf(err, "Failed to copy %s to %s", src, dest)
	}

	err = out.Close()
	if err != nil {
		return eris.Wrapf(err, "Failed to write %s", dest)
	}
	return nil
}
