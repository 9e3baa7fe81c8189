package corpus

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WalkStats counts what the archive walk encountered.
type WalkStats struct {
	Read      int // well-formed documents yielded
	Malformed int // XML parse failures, skipped
	Empty     int // parsed but without article text, skipped
}

// Walk streams every story in the corpus archives under root, laid out as
// <root>/<year>/<month>.tgz. Well-formed documents are passed to fn in
// deterministic (sorted) archive order. Malformed stories are counted and
// logged, never fatal; an unreadable root or archive is.
func Walk(ctx context.Context, root string, logger *slog.Logger, fn func(*Document) error) (WalkStats, error) {
	var stats WalkStats

	years, err := os.ReadDir(root)
	if err != nil {
		return stats, fmt.Errorf("corpus: read corpus path: %w", err)
	}

	var yearNames []string
	for _, y := range years {
		if y.IsDir() {
			yearNames = append(yearNames, y.Name())
		}
	}
	sort.Strings(yearNames)

	for _, year := range yearNames {
		tarballs, err := filepath.Glob(filepath.Join(root, year, "*.tgz"))
		if err != nil {
			return stats, fmt.Errorf("corpus: glob %s: %w", year, err)
		}
		sort.Strings(tarballs)

		for _, tb := range tarballs {
			if err := walkTarball(ctx, tb, year, logger, fn, &stats); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

func walkTarball(ctx context.Context, path, year string, logger *slog.Logger, fn func(*Document) error, stats *WalkStats) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("corpus: open archive %s: %w", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("corpus: gunzip %s: %w", path, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("corpus: read archive %s: %w", path, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if !strings.HasSuffix(hdr.Name, ".xml") {
			continue
		}

		memberPath := year + "/" + strings.TrimPrefix(hdr.Name, "./")
		logger.Debug("reading story", "path", memberPath)

		doc, err := ParseDocument(memberPath, tr, logger)
		if err != nil {
			stats.Malformed++
			logger.Warn("malformed story skipped", "path", memberPath, "error", err)
			continue
		}
		if !doc.WellFormed() {
			stats.Empty++
			logger.Debug("story without article text skipped", "path", memberPath)
			continue
		}

		stats.Read++
		if err := fn(doc); err != nil {
			return err
		}
	}
}
