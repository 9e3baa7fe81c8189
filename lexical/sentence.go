package lexical

import (
	"strings"
	"unicode"
)

// Sentence is a single sentence with its tokenization and a stripped form
// (lowercase, alphanumeric only) used for containment comparisons between
// reference summaries and article text.
type Sentence struct {
	Raw    string
	Tokens []string

	stripped string
}

// NewSentence tokenizes raw text into a Sentence.
func NewSentence(raw string) Sentence {
	return Sentence{
		Raw:      raw,
		Tokens:   Tokenize(raw),
		stripped: Strip(raw),
	}
}

// Strip lowercases text and removes everything that is not a letter or digit.
func Strip(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Stripped returns the comparison form of the sentence.
func (s Sentence) Stripped() string { return s.stripped }

// IdenticalTo reports whether two sentences match exactly when case,
// punctuation and spacing are ignored.
func (s Sentence) IdenticalTo(other Sentence) bool {
	return s.stripped != "" && s.stripped == other.stripped
}

// ContainedIn reports whether the sentence appears as a contiguous substring
// of another sentence when case, punctuation and spacing are ignored.
func (s Sentence) ContainedIn(other Sentence) bool {
	return s.stripped != "" && strings.Contains(other.stripped, s.stripped)
}

// SubsequenceOf reports whether the sentence's word tokens appear in order
// (not necessarily contiguously) within another sentence, ignoring case.
// Pure punctuation tokens are skipped.
func (s Sentence) SubsequenceOf(other Sentence) bool {
	j := 0
	for _, tok := range s.Tokens {
		if !isWordToken(tok) {
			continue
		}
		found := false
		for j < len(other.Tokens) {
			cand := other.Tokens[j]
			j++
			if strings.EqualFold(tok, cand) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Words returns the non-punctuation tokens of the sentence.
func (s Sentence) Words() []string {
	var words []string
	for _, tok := range s.Tokens {
		if isWordToken(tok) {
			words = append(words, tok)
		}
	}
	return words
}

// HasEOSPunct reports whether the sentence ends with sentence-terminating
// punctuation. Trailing quote and closing-bracket tokens are skipped, since
// the tokenizer leaves them after the terminator.
func (s Sentence) HasEOSPunct() bool {
	for i := len(s.Tokens) - 1; i >= 0; i-- {
		switch s.Tokens[i] {
		case "''", "'", ")", "]", "}":
			continue
		case ".", "!", "?":
			return true
		default:
			return false
		}
	}
	return false
}

// isWordToken reports whether a token is word-like: it starts or ends with a
// letter or digit.
func isWordToken(tok string) bool {
	rs := []rune(tok)
	if len(rs) == 0 {
		return false
	}
	return isAlnum(rs[0]) || isAlnum(rs[len(rs)-1])
}
