package buildsys

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/rotisserie/eris"
)

// CompressExtensions lists the file types that get a brotli compressed sibling
var CompressExtensions = []string{".wasm", ".js", ".html", ".css", ".svg", ".json"}

func shouldCompress(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, item := range CompressExtensions {
		if ext == item {
			return true
		}
	}
	return false
}

func precompress(ctx context.Context, b *Build) error {
	files := make([]string, 0)
	var total int64

	err := filepath.Walk(b.OutputPath(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.Mode().IsRegular() && shouldCompress(info.Name()) {
			files = append(files, path)
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		b.warn("failed to compress output, ", "couldn't list "+b.Config.OutputDir, err.Error())
		return nil
	}

	bar := b.progressBar(total, "compressing files")
	defer bar.Finish()

	for _, item := range files {
		log(ctx).Debug().Str("path", item).Msg("compressing")

		err := compressFile(item, item+".br", bar)
		if err != nil {
			relPath, relErr := filepath.Rel(b.Root, item)
			if relErr != nil {
				relPath = item
			}
			b.warn("failed to compress "+relPath+", ", "the uncompressed file is still usable", err.Error())
		}
	}

	return nil
}

func compressFile(src, dest string, progress io.Writer) error {
	in, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "Failed to open %s", src)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "Failed to create %s", dest)
	}
	defer out.Close()

	brw := brotli.NewWriterLevel(out, brotli.BestCompression)
	_, err = io.Copy(brw, io.TeeReader(in, progress))
	if err != nil {
		return eris.Wrapf(err, "Failed to compress %s", src)
	}

	err = brw.Close()
	if err != nil {
		return eris.Wrapf(err, "Failed to finish %s", dest)
	}

	return out.Close()
}
