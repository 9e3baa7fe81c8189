package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/nytx/corpus"
	"github.com/hazyhaar/nytx/filter"
)

// Config drives one extraction run. Exactly one partition mode must be set.
type Config struct {
	// CorpusPath is the root of the corpus archives (year directories of
	// per-month .tgz files).
	CorpusPath string `yaml:"corpus_path"`

	// CachePath is the document cache database. When the cache already
	// holds documents the corpus read is skipped.
	CachePath string `yaml:"cache_path"`

	// OutputPath is the dataset database receiving the cleaned documents
	// and the train/dev/test partitions.
	OutputPath string `yaml:"output_path"`

	// RunLogPath is the run log database. Empty disables run logging.
	RunLogPath string `yaml:"runlog_path"`

	SummaryType        string   `yaml:"summary_type"`
	Descriptors        []string `yaml:"descriptors"`
	DescriptorClasses  []string `yaml:"descriptor_classes"`
	ExcludeDescriptors bool     `yaml:"exclude_descriptors"`

	// Limit caps the number of documents exported. Zero means no cap.
	Limit int `yaml:"limit"`

	Filter FilterConfig `yaml:"filter"`
	Split  SplitConfig  `yaml:"split"`
}

// FilterConfig is the yaml shape of filter.Thresholds.
type FilterConfig struct {
	Measure       string  `yaml:"measure"`
	MinSize       int     `yaml:"min_size"`
	MaxSize       int     `yaml:"max_size"`
	MinSents      int     `yaml:"min_sents"`
	MaxSents      int     `yaml:"max_sents"`
	MinExtractive float64 `yaml:"min_extractive"`
	MaxExtractive float64 `yaml:"max_extractive"`
	Match         string  `yaml:"match"`

	KeepAllCaps       bool `yaml:"keep_allcaps"`
	KeepTemplates     bool `yaml:"keep_templates"`
	KeepNonSentential bool `yaml:"keep_non_sentential"`
	KeepCovering      bool `yaml:"keep_covering"`
}

// SplitConfig selects the partition mode.
type SplitConfig struct {
	Ratios     *RatioSplit    `yaml:"ratios,omitempty"`
	Lists      *ListSplit     `yaml:"lists,omitempty"`
	Boundaries *BoundarySplit `yaml:"boundaries,omitempty"`
}

// UnmarshalYAML replaces, not merges: a split section in the config file
// drops the default mode instead of stacking a second one onto it.
func (s *SplitConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain SplitConfig
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	*s = SplitConfig(p)
	return nil
}

// RatioSplit partitions by proportion with a seeded shuffle.
type RatioSplit struct {
	Train float64 `yaml:"train"`
	Dev   float64 `yaml:"dev"`
	Test  float64 `yaml:"test"`
	Seed  int64   `yaml:"seed"`
}

// ListSplit partitions by explicit ID-list files, one ID per line. IDs in
// neither file go to train.
type ListSplit struct {
	DevFile  string `yaml:"dev_file"`
	TestFile string `yaml:"test_file"`
}

// BoundarySplit partitions by document-ID prefix, typically date prefixes.
type BoundarySplit struct {
	Lower string `yaml:"lower"`
	Upper string `yaml:"upper"`
}

// DefaultConfig returns the documented defaults: the online lead summary,
// word-measured size bounds wide open, subsequence matching, and the
// customary 2005/2006 date-boundary split.
func DefaultConfig() Config {
	return Config{
		CachePath:   "nytx.cache.db",
		OutputPath:  "nytx.dataset.db",
		RunLogPath:  "nytx.runs.db",
		SummaryType: corpus.SummaryOnlineLead,
		Filter: FilterConfig{
			Measure:       filter.MeasureWord,
			MinSents:      1,
			MaxExtractive: 1,
			Match:         filter.MatchSubsequence,
		},
		Split: SplitConfig{
			Boundaries: &BoundarySplit{Lower: "2005/", Upper: "2006/"},
		},
	}
}

// LoadConfig reads a yaml config over the defaults. An empty path returns
// the defaults unchanged. Validation happens in Run, after any command-line
// overrides have been applied.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("extract: read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("extract: parse config: %w", err)
		}
	}
	return cfg, nil
}

// Thresholds assembles the filter thresholds from the config.
func (c Config) Thresholds() filter.Thresholds {
	return filter.Thresholds{
		SummaryType:       c.SummaryType,
		Measure:           c.Filter.Measure,
		MinSize:           c.Filter.MinSize,
		MaxSize:           c.Filter.MaxSize,
		MinSents:          c.Filter.MinSents,
		MaxSents:          c.Filter.MaxSents,
		MinExtractive:     c.Filter.MinExtractive,
		MaxExtractive:     c.Filter.MaxExtractive,
		Match:             c.Filter.Match,
		KeepAllCaps:       c.Filter.KeepAllCaps,
		KeepTemplates:     c.Filter.KeepTemplates,
		KeepNonSentential: c.Filter.KeepNonSentential,
		KeepCovering:      c.Filter.KeepCovering,
	}
}

// Validate rejects configurations no run should start with.
func (c Config) Validate() error {
	if c.CorpusPath == "" {
		return fmt.Errorf("extract: corpus_path is required")
	}
	if c.CachePath == "" || c.OutputPath == "" {
		return fmt.Errorf("extract: cache_path and output_path are required")
	}
	if c.CachePath == c.OutputPath {
		return fmt.Errorf("extract: cache_path and output_path must differ")
	}
	if c.Limit < 0 {
		return fmt.Errorf("extract: negative limit %d", c.Limit)
	}
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}

	modes := 0
	if c.Split.Ratios != nil {
		modes++
		r := c.Split.Ratios
		if sum := r.Train + r.Dev + r.Test; sum < 0.999 || sum > 1.001 {
			return fmt.Errorf("extract: split ratios sum to %v, want 1", sum)
		}
	}
	if c.Split.Lists != nil {
		modes++
		if c.Split.Lists.DevFile == "" || c.Split.Lists.TestFile == "" {
			return fmt.Errorf("extract: list split needs dev_file and test_file")
		}
	}
	if c.Split.Boundaries != nil {
		modes++
		if c.Split.Boundaries.Lower == "" || c.Split.Boundaries.Upper == "" {
			return fmt.Errorf("extract: boundary split needs lower and upper")
		}
	}
	if modes != 1 {
		return fmt.Errorf("extract: exactly one split mode required, got %d", modes)
	}
	return nil
}

// Digest fingerprints the effective configuration for the run log.
func (c Config) Digest() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
