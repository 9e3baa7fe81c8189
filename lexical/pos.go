package lexical

import (
	"fmt"
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// HasVerb reports whether the text contains at least one verb according to
// the prose POS tagger (any tag starting with V). Used to check that a
// summary is a real sentence and not a title or fragment.
func HasVerb(text string) (bool, error) {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		return false, fmt.Errorf("lexical: tag %q: %w", truncate(text, 40), err)
	}
	for _, tok := range doc.Tokens() {
		if strings.HasPrefix(tok.Tag, "V") {
			return true, nil
		}
	}
	return false, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
