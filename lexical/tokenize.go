// Package lexical provides the token- and sentence-level primitives used to
// compare reference summaries against article text: a rule tokenizer, a
// Punkt-backed sentence splitter with boundary repairs, and a POS-based verb
// check. Splitting and tagging are delegated to external libraries; this
// package only adapts their output to the corpus's conventions.
package lexical

import (
	"strings"
	"unicode"
)

var nbspReplacer = strings.NewReplacer("&nbsp;", " ", "&#160;", " ", "&#xA0;", " ", " ", " ")

// Tokenize splits a sentence into tokens. Punctuation is separated out,
// with these exceptions: periods stay attached to the preceding word unless
// they terminate the sentence (abbreviations, decimal points), and , : ; /
// stay attached inside numbers. Ellipses are normalized to "...", double
// hyphens to a standalone "--", and repeated ?! runs collapse to their first
// symbol.
func Tokenize(text string) []string {
	text = nbspReplacer.Replace(text)

	rs := []rune(text)
	n := len(rs)
	var toks []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			toks = append(toks, string(cur))
			cur = cur[:0]
		}
	}

	i := 0
	for i < n {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			flush()
			i++

		case r == '.':
			j := i
			for j < n && rs[j] == '.' {
				j++
			}
			if j-i >= 2 {
				// Ellipsis
				flush()
				toks = append(toks, "...")
				i = j
				continue
			}
			if terminalPeriod(rs, i) {
				flush()
				toks = append(toks, ".")
			} else {
				cur = append(cur, r)
			}
			i++

		case r == '!' || r == '?':
			flush()
			toks = append(toks, string(r))
			for i < n && (rs[i] == '!' || rs[i] == '?') {
				i++
			}

		case r == ',' || r == ':' || r == ';' || r == '/':
			// Keep punctuation inside numbers: 1,000 or 3:30
			if i > 0 && i+1 < n && unicode.IsDigit(rs[i-1]) && unicode.IsDigit(rs[i+1]) {
				cur = append(cur, r)
			} else {
				flush()
				toks = append(toks, string(r))
			}
			i++

		case r == '(' || r == ')' || r == '[' || r == ']' || r == '{' || r == '}':
			flush()
			toks = append(toks, string(r))
			i++

		case r == '"' || r == '“' || r == '”':
			flush()
			toks = append(toks, "''")
			i++

		case r == '-':
			j := i
			for j < n && rs[j] == '-' {
				j++
			}
			if j-i >= 2 {
				flush()
				toks = append(toks, "--")
				i = j
				continue
			}
			// Single hyphens stay inside words
			if len(cur) > 0 && i+1 < n && isAlnum(rs[i+1]) {
				cur = append(cur, r)
			} else {
				flush()
				toks = append(toks, "-")
			}
			i++

		case r == '\'' || r == '`' || r == '‘' || r == '’':
			// Apostrophes stay attached inside words (contractions,
			// possessives); standalone quotes become tokens.
			if len(cur) > 0 && i+1 < n && isAlnum(rs[i+1]) {
				cur = append(cur, '\'')
			} else {
				flush()
				toks = append(toks, "'")
			}
			i++

		default:
			cur = append(cur, r)
			i++
		}
	}
	flush()
	return toks
}

// terminalPeriod reports whether the period at rs[i] terminates the sentence:
// nothing word-like follows it and it is not part of an abbreviation's final
// dotted letter run (a preceding period keeps it attached).
func terminalPeriod(rs []rune, i int) bool {
	if i > 0 && rs[i-1] == '.' {
		return false
	}
	for j := i + 1; j < len(rs); j++ {
		if isAlnum(rs[j]) {
			return false
		}
	}
	return true
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
