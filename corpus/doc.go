// Package corpus reads the LDC NYT Annotated Corpus: it walks the per-month
// .tgz archives, parses each story's XML into a Document, and populates the
// persistent document cache.
package corpus

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"unicode"
)

// Summary types present in the corpus.
const (
	SummaryAbstract   = "abstract"
	SummaryLead       = "lead"
	SummaryOnlineLead = "online_lead"
)

// Descriptor classes assigned by the indexing service and online producers.
const (
	DescIndexing      = "indexing"
	DescTaxonomic     = "taxonomic"
	DescOnline        = "online"
	DescOnlineGeneral = "online_general"
	DescType          = "type"
)

// Document is one story from the corpus. It is immutable after parsing
// except for the one-time cleaning repairs applied before filtering.
type Document struct {
	ID          string              `json:"id"`
	Path        string              `json:"path"`
	Meta        map[string]string   `json:"meta,omitempty"`
	Headlines   map[string]string   `json:"headlines,omitempty"`
	Summaries   map[string][]string `json:"summaries,omitempty"`
	Descriptors map[string][]string `json:"descriptors,omitempty"`
	FullText    []string            `json:"full_text,omitempty"`
	Correction  []string            `json:"correction,omitempty"`
}

// xmlStory mirrors the subset of the NYT Document Format (nitf) we consume.
type xmlStory struct {
	XMLName xml.Name `xml:"nitf"`
	Head    struct {
		Title string `xml:"title"`
		Metas []struct {
			Name    string `xml:"name,attr"`
			Content string `xml:"content,attr"`
		} `xml:"meta"`
		Pubdata []struct {
			Attrs []xml.Attr `xml:",any,attr"`
		} `xml:"pubdata"`
		DocID struct {
			ID string `xml:"id-string,attr"`
		} `xml:"docdata>doc-id"`
		Classifiers []struct {
			Class string `xml:"class,attr"`
			Type  string `xml:"type,attr"`
			Label string `xml:",chardata"`
		} `xml:"docdata>identified-content>classifier"`
	} `xml:"head"`
	Body struct {
		Hedline struct {
			Print  string `xml:"hl1"`
			Online []struct {
				Class string `xml:"class,attr"`
				Text  string `xml:",chardata"`
			} `xml:"hl2"`
		} `xml:"body.head>hedline"`
		Abstract []string `xml:"body.head>abstract>p"`
		Blocks   []struct {
			Class      string   `xml:"class,attr"`
			Paragraphs []string `xml:"p"`
		} `xml:"body.content>block"`
	} `xml:"body"`
}

// ParseDocument parses one story. path is the member path inside the corpus
// ("2005/01/02/1234567.xml"); the document ID is the path without its
// extension. Unknown classifiers are logged at debug, never fatal.
func ParseDocument(path string, r io.Reader, logger *slog.Logger) (*Document, error) {
	var story xmlStory
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&story); err != nil {
		return nil, fmt.Errorf("corpus: parse %s: %w", path, err)
	}

	doc := &Document{
		ID:          strings.TrimSuffix(path, ".xml"),
		Path:        path,
		Meta:        map[string]string{},
		Headlines:   map[string]string{},
		Summaries:   map[string][]string{},
		Descriptors: map[string][]string{},
	}

	if story.Head.Title != "" {
		doc.Meta["title"] = story.Head.Title
	}
	for _, m := range story.Head.Metas {
		doc.Meta[m.Name] = m.Content
	}
	for _, pd := range story.Head.Pubdata {
		for _, a := range pd.Attrs {
			doc.Meta[a.Name.Local] = a.Value
		}
	}
	if story.Head.DocID.ID != "" {
		doc.Meta["docid"] = story.Head.DocID.ID
	}

	descriptors := map[string]map[string]bool{}
	for _, c := range story.Head.Classifiers {
		label := strings.TrimSpace(c.Label)
		if label == "" {
			continue
		}
		if label == strings.ToUpper(label) {
			label = titleCase(label)
		}
		class := descriptorClass(c.Class, c.Type)
		if class == "" {
			logger.Debug("unknown classifier", "class", c.Class, "type", c.Type, "path", path)
			continue
		}
		if descriptors[class] == nil {
			descriptors[class] = map[string]bool{}
		}
		descriptors[class][label] = true
	}
	for class, set := range descriptors {
		labels := make([]string, 0, len(set))
		for l := range set {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		doc.Descriptors[class] = labels
	}

	if story.Body.Hedline.Print != "" {
		doc.Headlines["print"] = story.Body.Hedline.Print
	}
	for _, hl := range story.Body.Hedline.Online {
		if hl.Class == "online_headline" {
			doc.Headlines["online"] = strings.TrimSpace(hl.Text)
		} else {
			logger.Warn("unknown headline class", "class", hl.Class, "path", path)
		}
	}

	if ps := nonEmpty(story.Body.Abstract); len(ps) > 0 {
		doc.Summaries[SummaryAbstract] = ps
	}

	for _, b := range story.Body.Blocks {
		ps := nonEmpty(b.Paragraphs)
		switch b.Class {
		case "lead_paragraph":
			doc.Summaries[SummaryLead] = ps
		case "online_lead_paragraph":
			doc.Summaries[SummaryOnlineLead] = ps
		case "full_text":
			doc.FullText = ps
		case "correction_text":
			doc.Correction = ps
		default:
			logger.Warn("unknown body block class", "class", b.Class, "path", path)
		}
	}

	return doc, nil
}

// descriptorClass maps a classifier's class/type attribute pair to one of
// the descriptor classes, or "" for ignored classifiers (names, orgs, etc).
func descriptorClass(class, typ string) string {
	switch {
	case class == "indexing_service" && typ == "descriptor":
		return DescIndexing
	case class == "online_producer" && typ == "types_of_material":
		return DescType
	case class == "online_producer" && typ == "taxonomic_classifier":
		return DescTaxonomic
	case class == "online_producer" && typ == "descriptor":
		return DescOnline
	case class == "online_producer" && typ == "general_descriptor":
		return DescOnlineGeneral
	}
	return ""
}

// WellFormed reports whether the story parsed with article text present.
func (d *Document) WellFormed() bool {
	return len(d.FullText) > 0
}

// HasSummary reports whether a summary of the given type is present and
// non-empty. An empty summaryType matches any document.
func (d *Document) HasSummary(summaryType string) bool {
	if summaryType == "" {
		return true
	}
	return len(d.Summaries[summaryType]) > 0
}

// Summary returns the paragraphs of the given summary type.
func (d *Document) Summary(summaryType string) []string {
	return d.Summaries[summaryType]
}

// HasDescriptor reports whether any of the given labels appears among the
// document's descriptors of the given classes. Labels match exactly or
// title-cased. Empty classes means all classes.
func (d *Document) HasDescriptor(labels, classes []string) bool {
	if len(classes) == 0 {
		for class := range d.Descriptors {
			classes = append(classes, class)
		}
	}
	for _, class := range classes {
		have := d.Descriptors[class]
		if len(have) == 0 {
			continue
		}
		for _, label := range labels {
			for _, h := range have {
				if h == label || h == titleCase(label) {
					return true
				}
			}
		}
	}
	return false
}

// Marshal encodes the document for the document cache.
func (d *Document) Marshal() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("corpus: marshal %s: %w", d.ID, err)
	}
	return b, nil
}

// Unmarshal decodes a cached document payload.
func Unmarshal(payload []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("corpus: unmarshal: %w", err)
	}
	return &d, nil
}

func nonEmpty(paragraphs []string) []string {
	var out []string
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// titleCase uppercases the first letter of each space-separated word and
// lowercases the rest, mirroring how the corpus title-cases all-caps labels.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		rs := []rune(strings.ToLower(w))
		if len(rs) > 0 {
			rs[0] = unicode.ToUpper(rs[0])
		}
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
