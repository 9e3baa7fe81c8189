// Package clean repairs known artifacts of the NYT corpus so that summaries
// and article text can be compared reliably: stray page and author markers,
// encoding glitches, stitched and split words, truncation periods. Every
// repair is deterministic and idempotent; applying the package twice to the
// same document yields the same text.
package clean

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/hazyhaar/nytx/corpus"
)

// Page markers like [Page A1] or [A12] at the end of a paragraph.
var pagemarkerRe = regexp.MustCompile(` *\[(?:Page )?[A-Z]?[0-9]{1,2}\][. ]*$`)

// Unexpected author markers like [?][?][?]Author Name.
var authmarkerRe = regexp.MustCompile(` *\[\?\]\[.*`)

// Extraneous periods appended after terminators in summaries.
var extraneousRe = regexp.MustCompile(`(?:[?!]|[?!'.]'')\s*\.$`)

// Spurious periods added to truncated summaries.
var incompleteRe = regexp.MustCompile(`[-,:;]\.$`)

// Roundup articles open with an all-caps location line ending in a dash.
var roundupRe = regexp.MustCompile(`^[A-Z.\- ]+--`)

// Spaces wrongly inserted before .com/.org/.net in URLs.
var dotcomRe = regexp.MustCompile(`(at +[^ ]+) (\.com|\.org|\.net)`)

// A hyphen-final fragment followed by a space and the rest of the word.
var hyphenSplitRe = regexp.MustCompile(`([^ -]-) (\(?[A-Za-z]+)`)

// summPrefixRe strips known prefixes from the start of a summary, honoring
// the priority order of the wordlist.
var summPrefixRe = func() *regexp.Regexp {
	quoted := make([]string, len(summPrefixes))
	for i, p := range summPrefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`^(?:` + strings.Join(quoted, "|") + `)\s*`)
}()

// unicodeSubs normalizes symbol variants in summaries to the ASCII
// conventions of the article text.
var unicodeSubs = map[rune]string{
	'`':      "'",
	'´': "'",
	'‘': "'",
	'’': "'",
	'"':      "''",
	'“': "''",
	'”': "''",
	'„': "''",
	'\x86':   "+",
	'\x91':   "'",
	'\x92':   "'",
	'\x93':   "''",
	'\x94':   "''",
	'\x95':   " ",
	'\x96':   "--",
	'\x97':   "--",
	'—': "--",
	' ': " ",
	'©': "$;",
	'­': "--",
	'²': "2",
	'·': ".",
	'½': "1/2",
	'¾': "3/4",
}

// Apply repairs a document in place: the article text and the summary of
// the given type are normalized against each other. Safe to call on a
// document without that summary, and safe to call more than once.
func Apply(doc *corpus.Document, summaryType string) {
	summary := doc.Summaries[summaryType]

	if len(summary) > 0 {
		doc.FullText = fixCapitalization(doc.FullText, summary)
		summary = conditionalReplace(summary, doc.FullText, ambiguousStitches)
		doc.FullText = conditionalReplace(doc.FullText, summary, docSplits)
	}

	doc.FullText = FullText(doc.FullText)
	if len(summary) > 0 {
		doc.Summaries[summaryType] = Summary(summary)
	}
}

// FullText removes trailing all-caps metadata paragraphs, correction blocks,
// and page/author markers from article paragraphs, and repairs URL spacing.
func FullText(paras []string) []string {
	var processed []string
	var allcaps []string

	for _, para := range paras {
		// Everything after a correction belongs to the correction.
		if strings.HasPrefix(para, "Correction:") {
			break
		}

		// Hold back all-caps paragraphs; trailing ones are metadata.
		if para == strings.ToUpper(para) {
			allcaps = append(allcaps, para)
			continue
		}

		para = strings.TrimSpace(pagemarkerRe.ReplaceAllString(para, " "))
		para = strings.TrimSpace(authmarkerRe.ReplaceAllString(para, ""))
		if para == "" {
			continue
		}

		// Non-trailing all-caps paragraphs go back in.
		if len(allcaps) > 0 {
			processed = append(processed, allcaps...)
			allcaps = nil
		}

		para = dotcomRe.ReplaceAllString(para, "$1$2")
		processed = append(processed, para)
	}
	return processed
}

// Summary normalizes summary paragraphs: known prefixes are stripped from
// the first paragraph, Unicode symbol variants are folded to the article's
// ASCII conventions, markers and extraneous periods are removed, stitched
// words are separated, wrongly split hyphenated words are merged, and
// single dashes widen to double dashes.
func Summary(paras []string) []string {
	var processed []string

	for p, para := range paras {
		if p == 0 {
			para = strings.TrimLeft(summPrefixRe.ReplaceAllString(para, ""), " ")
		}

		para = normalizeSymbols(para)
		para = strings.TrimSpace(pagemarkerRe.ReplaceAllString(para, " "))
		para = strings.TrimSpace(authmarkerRe.ReplaceAllString(para, ""))

		// Must follow symbol normalization.
		if extraneousRe.MatchString(para) {
			para = para[:len(para)-1]
		}
		if para == "" {
			continue
		}

		para = dotcomRe.ReplaceAllString(para, "$1$2")
		para = replaceStitches(para, summStitches)
		para = mergeHyphenSplits(para)
		para = strings.ReplaceAll(para, " - ", " -- ")
		processed = append(processed, para)
	}
	return processed
}

// IncompleteEnding reports whether a sentence ends with a spurious period
// added to a truncated summary.
func IncompleteEnding(sent string) bool { return incompleteRe.MatchString(sent) }

// IsRoundupLead reports whether an article's first paragraph opens like a
// roundup of sub-stories.
func IsRoundupLead(para string) bool { return roundupRe.MatchString(para) }

func normalizeSymbols(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if sub, ok := unicodeSubs[r]; ok {
			b.WriteString(sub)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// replaceStitches separates known stitched words, matching on space-bounded
// occurrences.
func replaceStitches(para string, table map[string]string) string {
	padded := " " + para + " "
	for _, key := range sortedKeys(table) {
		padded = strings.ReplaceAll(padded, " "+key+" ", " "+table[key]+" ")
	}
	return strings.TrimSpace(padded)
}

// mergeHyphenSplits joins hyphenated words that were split into two tokens,
// leaving genuine "x- and y-" constructions alone.
func mergeHyphenSplits(para string) string {
	return hyphenSplitRe.ReplaceAllStringFunc(para, func(m string) string {
		sub := hyphenSplitRe.FindStringSubmatch(m)
		switch sub[2] {
		case "and", "or", "(or", "to":
			return m
		}
		return sub[1] + sub[2]
	})
}

// conditionalReplace repairs ambiguous stitched or split words in the target
// paragraphs, but only when the repaired form occurs in the source
// paragraphs with non-alphanumeric boundaries.
func conditionalReplace(tgt, src []string, table map[string]string) []string {
	var matched []string
	for _, key := range sortedKeys(table) {
		for _, para := range tgt {
			if strings.Contains(" "+para+" ", " "+key+" ") {
				matched = append(matched, key)
				break
			}
		}
	}
	if len(matched) == 0 {
		return tgt
	}

	out := tgt
	copied := false
	for _, key := range matched {
		repl := table[key]
		if !foundBounded(src, repl) {
			continue
		}
		if !copied {
			out = append([]string(nil), tgt...)
			copied = true
		}
		for i, para := range out {
			out[i] = strings.TrimSpace(strings.ReplaceAll(" "+para+" ", " "+key+" ", " "+repl+" "))
		}
	}
	return out
}

// foundBounded reports whether needle occurs in any paragraph with
// non-alphanumeric characters (or ends of string) on both sides.
func foundBounded(paras []string, needle string) bool {
	for _, para := range paras {
		for from := 0; ; {
			i := strings.Index(para[from:], needle)
			if i < 0 {
				break
			}
			i += from
			j := i + len(needle)
			beforeOK := i == 0 || !isAlnumByte(para[i-1])
			afterOK := j == len(para) || !isAlnumByte(para[j])
			if beforeOK && afterOK {
				return true
			}
			from = j
		}
	}
	return false
}

func isAlnumByte(b byte) bool {
	r := rune(b)
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// fixCapitalization replaces an all-caps leading span of the article's first
// paragraph with its mixed-case equivalent from the summary, leaving
// title-like paragraphs untouched.
func fixCapitalization(tgt, src []string) []string {
	if len(tgt) == 0 || len(src) == 0 {
		return tgt
	}
	t0, s0 := tgt[0], src[0]

	i := strings.IndexByte(t0, ' ')
	if i == -1 || looksLikeTitle(t0) {
		return tgt
	}

	for i <= len(s0) && strings.EqualFold(t0[:i], s0[:i]) {
		if t0[:i] == strings.ToUpper(t0[:i]) {
			// Extend over the next all-caps word.
			j := i
			if k := strings.IndexByte(t0[min(i+1, len(t0)):], ' '); k >= 0 {
				j = i + 1 + k
			}
			if i != j {
				i = j
				continue
			}
			if len(s0) >= len(t0) && strings.EqualFold(t0, s0[:len(t0)]) {
				i = len(t0)
			} else {
				break
			}
		}

		// Identical spans need no repair.
		if t0[:i] == s0[:i] {
			break
		}

		out := append([]string{s0[:i] + t0[i:]}, tgt[1:]...)
		return out
	}
	return tgt
}

// looksLikeTitle reports whether a paragraph is an all-caps title: ends in a
// letter or digit and contains no lowercase letters.
func looksLikeTitle(s string) bool {
	rs := []rune(s)
	if len(rs) == 0 || !unicode.IsLetter(rs[len(rs)-1]) && !unicode.IsDigit(rs[len(rs)-1]) {
		return false
	}
	return s == strings.ToUpper(s) && s != strings.ToLower(s)
}
