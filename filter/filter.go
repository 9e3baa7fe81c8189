// Package filter selects the documents that make usable summarization
// instances. Each document is cleaned, then run through a chain of
// predicates; every rejection is counted by reason.
package filter

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/nytx/clean"
	"github.com/hazyhaar/nytx/corpus"
	"github.com/hazyhaar/nytx/lexical"
)

// Summary size measures.
const (
	MeasureChar = "char"
	MeasureWord = "word"
	MeasureSent = "sent"
)

// Match modes for the extractiveness check, in increasing laxity.
const (
	MatchIdentical   = "identical"
	MatchContained   = "contained"
	MatchSubsequence = "subsequence"
)

// Thresholds configure the per-document predicates. Zero maxima mean
// unbounded. The Keep flags disable individual predicates.
type Thresholds struct {
	SummaryType string

	Measure string
	MinSize int
	MaxSize int

	MinSents int
	MaxSents int

	// Fraction of summary sentences that must (Min) and may (Max) match
	// some article sentence under the Match mode.
	MinExtractive float64
	MaxExtractive float64
	Match         string

	KeepAllCaps       bool
	KeepTemplates     bool
	KeepNonSentential bool
	KeepCovering      bool
}

// Validate rejects threshold combinations no run should start with.
func (t Thresholds) Validate() error {
	switch t.SummaryType {
	case corpus.SummaryAbstract, corpus.SummaryLead, corpus.SummaryOnlineLead:
	default:
		return fmt.Errorf("filter: unknown summary type %q", t.SummaryType)
	}
	switch t.Measure {
	case MeasureChar, MeasureWord, MeasureSent:
	default:
		return fmt.Errorf("filter: unknown size measure %q", t.Measure)
	}
	switch t.Match {
	case MatchIdentical, MatchContained, MatchSubsequence:
	default:
		return fmt.Errorf("filter: unknown match mode %q", t.Match)
	}
	if t.MinSize < 0 || (t.MaxSize > 0 && t.MaxSize < t.MinSize) {
		return fmt.Errorf("filter: invalid size bounds [%d,%d]", t.MinSize, t.MaxSize)
	}
	if t.MinSents < 0 || (t.MaxSents > 0 && t.MaxSents < t.MinSents) {
		return fmt.Errorf("filter: invalid sentence bounds [%d,%d]", t.MinSents, t.MaxSents)
	}
	if t.MinExtractive < 0 || t.MaxExtractive > 1 || t.MinExtractive > t.MaxExtractive {
		return fmt.Errorf("filter: invalid extractiveness bounds [%v,%v]",
			t.MinExtractive, t.MaxExtractive)
	}
	return nil
}

// Filter applies the predicate chain. Not safe for concurrent use.
type Filter struct {
	th       Thresholds
	splitter *lexical.Splitter
	hasVerb  func(string) (bool, error)
	logger   *slog.Logger

	kept  int
	drops map[string]int
}

// Option adjusts a Filter.
type Option func(*Filter)

// WithVerbCheck replaces the part-of-speech verb check.
func WithVerbCheck(fn func(string) (bool, error)) Option {
	return func(f *Filter) { f.hasVerb = fn }
}

// New validates the thresholds and builds a Filter.
func New(th Thresholds, logger *slog.Logger, opts ...Option) (*Filter, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	sp, err := lexical.NewSplitter()
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	f := &Filter{
		th:       th,
		splitter: sp,
		hasVerb:  lexical.HasVerb,
		logger:   logger,
		drops:    map[string]int{},
	}
	for _, o := range opts {
		o(f)
	}
	return f, nil
}

// Apply cleans the document in place and reports whether it passes every
// predicate. Rejections are never errors; they are counted by reason.
func (f *Filter) Apply(doc *corpus.Document) bool {
	clean.Apply(doc, f.th.SummaryType)

	summText := strings.TrimSpace(strings.Join(doc.Summary(f.th.SummaryType), " "))
	if summText == "" {
		return f.drop(doc, "no_summary")
	}

	if !f.th.KeepAllCaps && allCapsTitle(doc) {
		return f.drop(doc, "allcaps_title")
	}
	if !f.th.KeepTemplates && f.templated(doc, summText) {
		return f.drop(doc, "template")
	}

	summSents := f.splitter.Sentences(summText)
	if len(summSents) < f.th.MinSents || (f.th.MaxSents > 0 && len(summSents) > f.th.MaxSents) {
		return f.drop(doc, "sent_bounds")
	}
	if size := summarySize(summSents, f.th.Measure); size < f.th.MinSize ||
		(f.th.MaxSize > 0 && size > f.th.MaxSize) {
		return f.drop(doc, "size_bounds")
	}

	srcSents := f.splitter.Sentences(strings.Join(doc.FullText, " "))

	if r := extractiveRatio(summSents, srcSents, f.th.Match); r < f.th.MinExtractive ||
		r > f.th.MaxExtractive {
		return f.drop(doc, "extractive")
	}

	if !f.th.KeepNonSentential && !f.sentential(summSents) {
		return f.drop(doc, "non_sentential")
	}
	if !f.th.KeepCovering && covering(summSents, srcSents) {
		return f.drop(doc, "covering")
	}

	f.kept++
	return true
}

// Kept returns the number of documents that passed.
func (f *Filter) Kept() int { return f.kept }

// Drops returns a copy of the per-reason rejection counters.
func (f *Filter) Drops() map[string]int {
	out := make(map[string]int, len(f.drops))
	for k, v := range f.drops {
		out[k] = v
	}
	return out
}

func (f *Filter) drop(doc *corpus.Document, reason string) bool {
	f.drops[reason]++
	f.logger.Debug("document dropped", "id", doc.ID, "reason", reason)
	return false
}

// templated recognizes recurring structured articles (briefing columns,
// corrections, paid notices) by type descriptor, headline, summary text,
// and opening sentence.
func (f *Filter) templated(doc *corpus.Document, summText string) bool {
	for _, label := range doc.Descriptors[corpus.DescType] {
		if clean.IsTemplateDescriptor(label) {
			return true
		}
	}
	if clean.IsTemplateTitle(title(doc)) {
		return true
	}
	if clean.IsTemplateSummary(summText) {
		return true
	}
	if summ := doc.Summary(f.th.SummaryType); len(summ) > 0 {
		if first := f.splitter.Split(summ[0]); len(first) > 0 &&
			clean.IsTemplateSummaryLead(first[0]) {
			return true
		}
	}
	if len(doc.FullText) > 0 {
		if clean.IsRoundupLead(doc.FullText[0]) {
			return true
		}
		if first := f.splitter.Split(doc.FullText[0]); len(first) > 0 &&
			clean.IsTemplateLead(first[0]) {
			return true
		}
	}
	return false
}

// sentential reports whether every summary sentence reads as a sentence:
// it ends in terminal punctuation, is not a truncation artifact, and
// contains a verb. Tagger failures are logged and treated as missing verbs.
func (f *Filter) sentential(sents []lexical.Sentence) bool {
	for _, s := range sents {
		if !s.HasEOSPunct() || clean.IncompleteEnding(s.Raw) {
			return false
		}
		ok, err := f.hasVerb(s.Raw)
		if err != nil {
			f.logger.Warn("verb check failed", "error", err)
			return false
		}
		if !ok {
			return false
		}
	}
	return true
}

func allCapsTitle(doc *corpus.Document) bool {
	t := title(doc)
	return t != "" && t == strings.ToUpper(t) && t != strings.ToLower(t)
}

func title(doc *corpus.Document) string {
	if t := doc.Headlines["print"]; t != "" {
		return t
	}
	return doc.Meta["title"]
}

func summarySize(sents []lexical.Sentence, measure string) int {
	switch measure {
	case MeasureSent:
		return len(sents)
	case MeasureWord:
		n := 0
		for _, s := range sents {
			n += len(s.Words())
		}
		return n
	default: // MeasureChar, counting the joining spaces
		n := 0
		for _, s := range sents {
			n += len(s.Raw)
		}
		if len(sents) > 1 {
			n += len(sents) - 1
		}
		return n
	}
}

// extractiveRatio is the fraction of summary sentences with a match among
// the article sentences. Each mode accepts everything the stricter ones do.
func extractiveRatio(summ, src []lexical.Sentence, mode string) float64 {
	if len(summ) == 0 {
		return 0
	}
	matched := 0
	for _, s := range summ {
		for _, t := range src {
			if sentMatches(s, t, mode) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(summ))
}

func sentMatches(s, t lexical.Sentence, mode string) bool {
	switch mode {
	case MatchIdentical:
		return s.IdenticalTo(t)
	case MatchContained:
		return s.IdenticalTo(t) || s.ContainedIn(t)
	default: // MatchSubsequence
		return s.IdenticalTo(t) || s.ContainedIn(t) || s.SubsequenceOf(t)
	}
}

// covering reports whether the summary is the whole article. Such pairs
// teach a model nothing about compression.
func covering(summ, src []lexical.Sentence) bool {
	if len(src) == 0 || abs(len(summ)-len(src)) > 1 {
		return false
	}
	return strippedConcat(summ) == strippedConcat(src)
}

func strippedConcat(sents []lexical.Sentence) string {
	var b strings.Builder
	for _, s := range sents {
		b.WriteString(s.Stripped())
	}
	return b.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
