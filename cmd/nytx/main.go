// nytx builds a summarization dataset from the NYT Annotated Corpus: it
// caches the corpus into a document store, cleans and filters the cached
// documents, partitions the survivors into train/dev/test, and writes the
// dataset store.
//
// Usage:
//
//	nytx -config nytx.yaml [-corpus DIR] [-limit N]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/hazyhaar/nytx/extract"
)

func main() {
	var (
		cfgPath     = flag.String("config", "", "yaml config file (defaults apply when empty)")
		corpusPath  = flag.String("corpus", "", "corpus root, overrides the config")
		cachePath   = flag.String("cache", "", "document cache database, overrides the config")
		outputPath  = flag.String("output", "", "dataset database, overrides the config")
		summaryType = flag.String("summary", "", "summary type: abstract, lead, online_lead")
		limit       = flag.Int("limit", 0, "cap on exported documents, 0 for none")
		minSize     = flag.Int("min-size", -1, "minimum summary size, overrides the config")
		maxSize     = flag.Int("max-size", -1, "maximum summary size, overrides the config")
		minExtr     = flag.Float64("min-extractive", -1, "minimum extractiveness ratio")
		maxExtr     = flag.Float64("max-extractive", -1, "maximum extractiveness ratio")
		ratios      = flag.String("ratios", "", "train,dev,test split ratios, e.g. 0.6,0.2,0.2")
		seed        = flag.Int64("seed", 0, "shuffle seed for the ratio split")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := extract.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *corpusPath != "" {
		cfg.CorpusPath = *corpusPath
	}
	if *cachePath != "" {
		cfg.CachePath = *cachePath
	}
	if *outputPath != "" {
		cfg.OutputPath = *outputPath
	}
	if *summaryType != "" {
		cfg.SummaryType = *summaryType
	}
	if *limit > 0 {
		cfg.Limit = *limit
	}
	if *minSize >= 0 {
		cfg.Filter.MinSize = *minSize
	}
	if *maxSize >= 0 {
		cfg.Filter.MaxSize = *maxSize
	}
	if *minExtr >= 0 {
		cfg.Filter.MinExtractive = *minExtr
	}
	if *maxExtr >= 0 {
		cfg.Filter.MaxExtractive = *maxExtr
	}
	if *ratios != "" {
		split, err := parseRatios(*ratios, *seed)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg.Split = split
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := extract.Run(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("extract: %v", err)
	}

	fmt.Printf("cached    %d\n", report.CacheDocs)
	fmt.Printf("kept      %d\n", report.Kept)
	for _, name := range []string{"train", "dev", "test"} {
		fmt.Printf("%-9s %d\n", name, report.Partitions[name])
	}
	fmt.Printf("dataset   %s\n", cfg.OutputPath)
}

// parseRatios turns "0.6,0.2,0.2" into a ratio split configuration.
func parseRatios(s string, seed int64) (extract.SplitConfig, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return extract.SplitConfig{}, fmt.Errorf("ratios %q: want train,dev,test", s)
	}
	vals := make([]float64, 3)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return extract.SplitConfig{}, fmt.Errorf("ratios %q: %w", s, err)
		}
		vals[i] = v
	}
	return extract.SplitConfig{
		Ratios: &extract.RatioSplit{Train: vals[0], Dev: vals[1], Test: vals[2], Seed: seed},
	}, nil
}
