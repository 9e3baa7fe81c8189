// Package extract orchestrates the pipeline: corpus read into the document
// cache, clean and filter, partition, and export of the dataset store.
package extract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hazyhaar/nytx/corpus"
	"github.com/hazyhaar/nytx/docstore"
	"github.com/hazyhaar/nytx/filter"
	"github.com/hazyhaar/nytx/observability"
	"github.com/hazyhaar/nytx/partition"
)

// Report summarizes one extraction run.
type Report struct {
	RunID      string
	CacheDocs  int
	Kept       int
	Drops      map[string]int
	Partitions map[string]int
	Duration   time.Duration
}

var errLimitReached = errors.New("extract: document limit reached")

// Run executes one extraction with a validated config. The corpus is read
// only when the cache is empty; reruns work entirely from the cache.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()

	var runlog *observability.RunLog
	if cfg.RunLogPath != "" {
		var err error
		runlog, err = observability.Open(cfg.RunLogPath)
		if err != nil {
			// Observability never blocks the pipeline.
			logger.Warn("run log unavailable", "path", cfg.RunLogPath, "error", err)
		} else {
			defer runlog.Close()
		}
	}
	runID := ""
	if runlog != nil {
		runID = runlog.Start(ctx, "nytx", cfg.Digest())
	}
	event := func(stage, detail string) {
		if runlog != nil {
			runlog.Event(ctx, runID, stage, detail)
		}
	}

	cache, err := docstore.Open(cfg.CachePath)
	if err != nil {
		return nil, err
	}
	defer cache.Close()

	cached, err := cache.CountDocs(ctx)
	if err != nil {
		return nil, err
	}
	if cached == 0 {
		n, err := corpus.Build(ctx, cache, cfg.CorpusPath, corpus.BuildOptions{
			SummaryType:       cfg.SummaryType,
			Descriptors:       cfg.Descriptors,
			DescriptorClasses: cfg.DescriptorClasses,
			Exclude:           cfg.ExcludeDescriptors,
		}, logger)
		if err != nil {
			return nil, err
		}
		cached = n
		event("build", fmt.Sprintf("cached %d documents", n))
	} else {
		logger.Info("cache present, corpus read skipped",
			"path", cache.Path(), "documents", cached)
		event("build", fmt.Sprintf("cache present with %d documents", cached))
	}

	out, err := docstore.Open(cfg.OutputPath)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	f, err := filter.New(cfg.Thresholds(), logger)
	if err != nil {
		return nil, err
	}

	var kept []string
	err = cache.EachDoc(ctx, func(id string, payload []byte) error {
		doc, err := corpus.Unmarshal(payload)
		if err != nil {
			logger.Warn("undecodable cached document skipped", "id", id, "error", err)
			return nil
		}
		if !f.Apply(doc) {
			return nil
		}
		payload, err = doc.Marshal()
		if err != nil {
			return err
		}
		if err := out.PutDoc(ctx, doc.ID, doc.Path, payload); err != nil {
			return err
		}
		kept = append(kept, doc.ID)
		if cfg.Limit > 0 && len(kept) >= cfg.Limit {
			return errLimitReached
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimitReached) {
		return nil, err
	}
	drops := f.Drops()
	event("filter", fmt.Sprintf("kept %d of %d", len(kept), cached))
	logger.Info("filtering done", "kept", len(kept), "cached", cached, "drops", drops)

	res, err := split(cfg.Split, kept)
	if err != nil {
		return nil, err
	}
	for name, ids := range map[string][]string{
		"train": res.Train, "dev": res.Dev, "test": res.Test,
	} {
		if err := out.PutPartition(ctx, name, ids); err != nil {
			return nil, err
		}
	}
	sizes := res.Sizes()
	event("partition", fmt.Sprintf("train=%d dev=%d test=%d",
		sizes["train"], sizes["dev"], sizes["test"]))

	report := &Report{
		RunID:      runID,
		CacheDocs:  cached,
		Kept:       len(kept),
		Drops:      drops,
		Partitions: sizes,
		Duration:   time.Since(started),
	}
	if runlog != nil {
		counters := map[string]int{
			"cached": cached,
			"kept":   len(kept),
			"train":  sizes["train"],
			"dev":    sizes["dev"],
			"test":   sizes["test"],
		}
		for reason, n := range drops {
			counters["drop_"+reason] = n
		}
		runlog.Finish(ctx, runID, "ok", counters)
	}
	logger.Info("extraction done",
		"kept", report.Kept,
		"train", sizes["train"], "dev", sizes["dev"], "test", sizes["test"],
		"duration", report.Duration.Round(time.Millisecond))
	return report, nil
}

func split(cfg SplitConfig, ids []string) (partition.Result, error) {
	switch {
	case cfg.Ratios != nil:
		r := cfg.Ratios
		return partition.ByRatio(ids, r.Train, r.Dev, r.Test, r.Seed)
	case cfg.Lists != nil:
		dev, err := readIDFile(cfg.Lists.DevFile)
		if err != nil {
			return partition.Result{}, err
		}
		test, err := readIDFile(cfg.Lists.TestFile)
		if err != nil {
			return partition.Result{}, err
		}
		return partition.ByLists(ids, dev, test)
	default:
		return partition.ByBoundaries(ids, cfg.Boundaries.Lower, cfg.Boundaries.Upper)
	}
}

// readIDFile reads one document ID per line; blank lines and '#' comments
// are skipped.
func readIDFile(path string) ([]string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("extract: read id list: %w", err)
	}
	defer fd.Close()

	var ids []string
	sc := bufio.NewScanner(fd)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("extract: read id list %s: %w", path, err)
	}
	sort.Strings(ids)
	return ids, nil
}
