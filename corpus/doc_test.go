package corpus

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

const sampleStory = `<?xml version="1.0" encoding="UTF-8"?>
<nitf>
  <head>
    <title>Cats Return Home</title>
    <meta name="publication_month" content="1"/>
    <pubdata date.publication="20050102T000000" item-length="820"/>
    <docdata>
      <doc-id id-string="1234567"/>
      <identified-content>
        <classifier class="indexing_service" type="descriptor">CATS</classifier>
        <classifier class="online_producer" type="general_descriptor">Animals</classifier>
        <classifier class="online_producer" type="types_of_material">Summary</classifier>
        <classifier class="indexing_service" type="names">John Smith</classifier>
      </identified-content>
    </docdata>
  </head>
  <body>
    <body.head>
      <hedline>
        <hl1>Cats Return Home</hl1>
        <hl2 class="online_headline">Cats Return</hl2>
      </hedline>
      <abstract>
        <p>Cats return home after a long journey.</p>
      </abstract>
    </body.head>
    <body.content>
      <block class="online_lead_paragraph">
        <p>The cats came home on Tuesday.</p>
      </block>
      <block class="full_text">
        <p>The cats came home on Tuesday.</p>
        <p>Neighbors cheered.</p>
      </block>
    </body.content>
  </body>
</nitf>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseSample(t *testing.T) *Document {
	t.Helper()
	doc, err := ParseDocument("2005/01/02/1234567.xml", strings.NewReader(sampleStory), discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestParseDocument_ID(t *testing.T) {
	doc := parseSample(t)
	if doc.ID != "2005/01/02/1234567" {
		t.Fatalf("ID: got %q", doc.ID)
	}
	if doc.Meta["docid"] != "1234567" {
		t.Fatalf("meta docid: got %q", doc.Meta["docid"])
	}
}

func TestParseDocument_Meta(t *testing.T) {
	doc := parseSample(t)
	if doc.Meta["title"] != "Cats Return Home" {
		t.Fatalf("title: got %q", doc.Meta["title"])
	}
	if doc.Meta["publication_month"] != "1" {
		t.Fatalf("meta: got %q", doc.Meta["publication_month"])
	}
	if doc.Meta["date.publication"] != "20050102T000000" {
		t.Fatalf("pubdata: got %q", doc.Meta["date.publication"])
	}
}

func TestParseDocument_Descriptors(t *testing.T) {
	doc := parseSample(t)

	// All-caps labels are title-cased.
	if got := doc.Descriptors[DescIndexing]; len(got) != 1 || got[0] != "Cats" {
		t.Fatalf("indexing descriptors: got %v", got)
	}
	if got := doc.Descriptors[DescOnlineGeneral]; len(got) != 1 || got[0] != "Animals" {
		t.Fatalf("online_general descriptors: got %v", got)
	}
	if got := doc.Descriptors[DescType]; len(got) != 1 || got[0] != "Summary" {
		t.Fatalf("type descriptors: got %v", got)
	}
	// Names are not descriptors.
	for class, labels := range doc.Descriptors {
		for _, l := range labels {
			if l == "John Smith" {
				t.Fatalf("names leaked into descriptors: %s/%s", class, l)
			}
		}
	}
}

func TestParseDocument_HeadlinesAndsummaries(t *testing.T) {
	doc := parseSample(t)
	if doc.Headlines["print"] != "Cats Return Home" {
		t.Fatalf("print headline: got %q", doc.Headlines["print"])
	}
	if doc.Headlines["online"] != "Cats Return" {
		t.Fatalf("online headline: got %q", doc.Headlines["online"])
	}
	if !doc.HasSummary(SummaryAbstract) || !doc.HasSummary(SummaryOnlineLead) {
		t.Fatalf("summaries: got %v", doc.Summaries)
	}
	if doc.HasSummary(SummaryLead) {
		t.Fatal("lead summary should be absent")
	}
	if len(doc.FullText) != 2 {
		t.Fatalf("full text: got %v", doc.FullText)
	}
}

func TestParseDocument_Malformed(t *testing.T) {
	_, err := ParseDocument("2005/01/02/x.xml", strings.NewReader("<nitf><head>"), discardLogger())
	if err == nil {
		t.Fatal("expected parse error for truncated XML")
	}
}

func TestWellFormed(t *testing.T) {
	doc := parseSample(t)
	if !doc.WellFormed() {
		t.Fatal("sample should be well-formed")
	}
	empty := &Document{ID: "x"}
	if empty.WellFormed() {
		t.Fatal("document without text should not be well-formed")
	}
}

func TestHasDescriptor(t *testing.T) {
	doc := parseSample(t)

	if !doc.HasDescriptor([]string{"Animals"}, []string{DescOnlineGeneral}) {
		t.Fatal("expected descriptor match")
	}
	// Lowercase query matches via title-casing.
	if !doc.HasDescriptor([]string{"cats"}, []string{DescIndexing}) {
		t.Fatal("expected title-cased match")
	}
	// Wrong class does not match.
	if doc.HasDescriptor([]string{"Animals"}, []string{DescIndexing}) {
		t.Fatal("unexpected cross-class match")
	}
	// Empty classes searches everywhere.
	if !doc.HasDescriptor([]string{"Animals"}, nil) {
		t.Fatal("expected match across all classes")
	}
}

func TestMarshal_RoundTrip(t *testing.T) {
	doc := parseSample(t)
	payload, err := doc.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	got, err := Unmarshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != doc.ID || len(got.FullText) != len(doc.FullText) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.Summaries[SummaryOnlineLead][0] != doc.Summaries[SummaryOnlineLead][0] {
		t.Fatal("summary lost in round trip")
	}
}
