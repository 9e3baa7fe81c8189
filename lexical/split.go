package lexical

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Abbreviations that the Punkt model still splits after when they end a
// clause. A boundary directly after one of these is re-merged. Entries are
// matched case-sensitively against the last whitespace-delimited word of the
// preceding sentence.
var splitAbbrevs = map[string]bool{
	"Mr.": true, "Mrs.": true, "Ms.": true, "Dr.": true, "Prof.": true,
	"Gov.": true, "Gen.": true, "Sen.": true, "Rep.": true, "Sgt.": true,
	"Col.": true, "Lt.": true, "Capt.": true, "Adm.": true, "Maj.": true,
	"St.": true, "Mt.": true, "Ft.": true, "Jr.": true, "Sr.": true,
	"vs.": true, "No.": true, "Nos.": true, "Co.": true, "Corp.": true,
	"Inc.": true, "Ltd.": true, "Bros.": true, "Rev.": true, "Hon.": true,
}

// Splitter segments paragraphs into sentences using the Punkt sentence
// tokenizer with post-processing repairs: boundaries after known
// abbreviations are re-merged, and dangling close-quote or terminator
// prefixes are re-attached to the preceding sentence.
type Splitter struct {
	punkt *sentences.DefaultSentenceTokenizer
}

// NewSplitter loads the English Punkt model.
func NewSplitter() (*Splitter, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("lexical: load punkt model: %w", err)
	}
	return &Splitter{punkt: tok}, nil
}

// Split segments text into sentences.
func (sp *Splitter) Split(text string) []string {
	var raw []string
	for _, s := range sp.punkt.Tokenize(text) {
		t := strings.TrimSpace(s.Text)
		if t != "" {
			raw = append(raw, t)
		}
	}
	return fixBoundaries(raw)
}

// Sentences segments text and tokenizes each sentence.
func (sp *Splitter) Sentences(text string) []Sentence {
	parts := sp.Split(text)
	out := make([]Sentence, 0, len(parts))
	for _, p := range parts {
		out = append(out, NewSentence(p))
	}
	return out
}

// fixBoundaries re-merges sentences that were split incorrectly: after a
// known abbreviation the whole next sentence is merged back; a leading run
// of close-quotes, closing brackets or terminators moves to the previous
// sentence.
func fixBoundaries(sents []string) []string {
	var fixed []string
	for _, sent := range sents {
		if len(fixed) > 0 {
			prev := fixed[len(fixed)-1]
			if endsWithAbbrev(prev) {
				fixed[len(fixed)-1] = prev + " " + sent
				continue
			}
			if prefix, rest := badPrefix(sent); prefix != "" {
				fixed[len(fixed)-1] = prev + prefix
				if rest == "" {
					continue
				}
				sent = rest
			}
		}
		fixed = append(fixed, sent)
	}
	return fixed
}

func endsWithAbbrev(sent string) bool {
	i := strings.LastIndexByte(sent, ' ')
	last := sent[i+1:]
	return splitAbbrevs[last]
}

// badPrefix splits off a leading run of characters that belong to the
// previous sentence: closing quotes, closing brackets and sentence
// terminators, optionally followed by a possessive s.
func badPrefix(sent string) (prefix, rest string) {
	i := 0
	rs := []rune(sent)
	for i < len(rs) && isTrailingPunct(rs[i]) {
		i++
	}
	if i == 0 {
		return "", ""
	}
	if i < len(rs) && rs[i] == 's' {
		i++
	}
	if i < len(rs) && rs[i] != ' ' {
		// Prefix runs into a word; not a displaced boundary.
		return "", ""
	}
	return string(rs[:i]), strings.TrimSpace(string(rs[i:]))
}

func isTrailingPunct(r rune) bool {
	switch r {
	case ')', ']', '}', '\'', '`', '"', '.', '!', '?',
		'‘', '’', '“', '”':
		return true
	}
	return false
}
