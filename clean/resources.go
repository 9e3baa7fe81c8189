package clean

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed wordlists/*.lst wordlists/*.map
var wordlists embed.FS

// mustLines reads the non-blank, non-comment lines of an embedded wordlist.
func mustLines(name string) []string {
	data, err := wordlists.ReadFile("wordlists/" + name)
	if err != nil {
		panic(fmt.Sprintf("clean: missing wordlist %s: %v", name, err))
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// mustSet reads a wordlist into a membership set.
func mustSet(name string) map[string]bool {
	set := map[string]bool{}
	for _, line := range mustLines(name) {
		set[strings.TrimSpace(line)] = true
	}
	return set
}

// mustMap reads a tab-separated wordlist into a replacement table.
func mustMap(name string) map[string]string {
	m := map[string]string{}
	for _, line := range mustLines(name) {
		key, value, ok := strings.Cut(line, "\t")
		if !ok {
			panic(fmt.Sprintf("clean: malformed entry in %s: %q", name, line))
		}
		if _, dup := m[key]; dup {
			panic(fmt.Sprintf("clean: duplicate key in %s: %q", name, key))
		}
		m[key] = value
	}
	return m
}

// sortedKeys returns map keys in deterministic order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	templateDescriptors = mustSet("descriptors.type.lst")
	templateTitles      = mustSet("repeated.title.lst")
	templateLeads       = mustSet("repeated.lead.lst")
	templateSummLeads   = mustSet("repeated.summlead.lst")
	templateSummaries   = mustSet("repeated.fullsummary.lst")

	summPrefixes = mustLines("prefixes.summlead.lst")

	summStitches      = mustMap("stitches.summ.map")
	ambiguousStitches = mustMap("stitches.ambiguous.map")
	docSplits         = mustMap("stitches.doc.map")
)

// IsTemplateDescriptor reports whether a types_of_material descriptor marks
// a templated article.
func IsTemplateDescriptor(label string) bool { return templateDescriptors[label] }

// IsTemplateTitle reports whether a headline belongs to a recurring
// templated article.
func IsTemplateTitle(title string) bool { return templateTitles[title] }

// IsTemplateLead reports whether an article's first sentence belongs to a
// recurring templated article.
func IsTemplateLead(sent string) bool { return templateLeads[sent] }

// IsTemplateSummaryLead reports whether a summary's first sentence belongs
// to a recurring templated article.
func IsTemplateSummaryLead(sent string) bool { return templateSummLeads[sent] }

// IsTemplateSummary reports whether a complete summary belongs to a
// recurring templated article.
func IsTemplateSummary(summary string) bool { return templateSummaries[summary] }
