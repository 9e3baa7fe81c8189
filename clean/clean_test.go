package clean

import (
	"strings"
	"testing"

	"github.com/hazyhaar/nytx/corpus"
)

func TestFullText_DropsCorrectionAndTrailingAllCaps(t *testing.T) {
	paras := []string{
		"The cats came home on Tuesday.",
		"Neighbors cheered for hours.",
		"Correction: an earlier version misstated the day.",
		"This paragraph follows the correction.",
	}
	got := FullText(paras)
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}

	trailing := []string{
		"The cats came home.",
		"CATS; HOMECOMINGS; SUBURBS",
	}
	got = FullText(trailing)
	if len(got) != 1 {
		t.Fatalf("trailing all-caps kept: %v", got)
	}
}

func TestFullText_KeepsInteriorAllCaps(t *testing.T) {
	paras := []string{
		"The cats came home.",
		"WASHINGTON",
		"Officials were unavailable.",
	}
	got := FullText(paras)
	if len(got) != 3 {
		t.Fatalf("interior all-caps dropped: %v", got)
	}
	if got[1] != "WASHINGTON" {
		t.Fatalf("order: %v", got)
	}
}

func TestFullText_StripsPageMarkers(t *testing.T) {
	got := FullText([]string{"The story continues. [Page A1]"})
	if len(got) != 1 || got[0] != "The story continues." {
		t.Fatalf("got %v", got)
	}
}

func TestSummary_StripsPrefix(t *testing.T) {
	got := Summary([]string{"LEAD: The cats came home."})
	if len(got) != 1 || got[0] != "The cats came home." {
		t.Fatalf("got %v", got)
	}
}

func TestSummary_NormalizesSymbols(t *testing.T) {
	got := Summary([]string{"The mayor’s plan — a bold one — failed."})
	if len(got) != 1 {
		t.Fatalf("got %v", got)
	}
	if got[0] != "The mayor's plan -- a bold one -- failed." {
		t.Fatalf("got %q", got[0])
	}
}

func TestSummary_NormalizesControlDashes(t *testing.T) {
	// The corpus carries stray C1 control characters where dashes belong.
	got := Summary([]string{"A plan  a bold one  failed."})
	if len(got) != 1 || got[0] != "A plan -- a bold one -- failed." {
		t.Fatalf("got %v", got)
	}
}

func TestSummary_DropsExtraneousPeriod(t *testing.T) {
	got := Summary([]string{"Did the cats come home?."})
	if len(got) != 1 || got[0] != "Did the cats come home?" {
		t.Fatalf("got %v", got)
	}
}

func TestSummary_RepairsStitchedWords(t *testing.T) {
	got := Summary([]string{"The mayor ofthe city resigned."})
	if len(got) != 1 || got[0] != "The mayor of the city resigned." {
		t.Fatalf("got %v", got)
	}
}

func TestSummary_MergesHyphenSplits(t *testing.T) {
	got := Summary([]string{"A well- known artist appeared."})
	if len(got) != 1 || got[0] != "A well-known artist appeared." {
		t.Fatalf("got %v", got)
	}

	// "x- and y-" constructions keep their space.
	got = Summary([]string{"Pre- and post-war homes sold."})
	if got[0] != "Pre- and post-war homes sold." {
		t.Fatalf("got %q", got[0])
	}
}

func TestSummary_WidensSingleDashes(t *testing.T) {
	got := Summary([]string{"The plan - a bold one - failed."})
	if got[0] != "The plan -- a bold one -- failed." {
		t.Fatalf("got %q", got[0])
	}
}

func TestSummary_FixesDotcomSpacing(t *testing.T) {
	got := Summary([]string{"More at nytimes .com today."})
	if got[0] != "More at nytimes.com today." {
		t.Fatalf("got %q", got[0])
	}
}

func TestApply_Idempotent(t *testing.T) {
	// WHAT: re-applying cleaning to already-cleaned text yields the same text.
	doc := &corpus.Document{
		ID: "2005/01/02/1",
		Summaries: map[string][]string{
			corpus.SummaryOnlineLead: {"LEAD: The mayor’s plan - bold - failed maybe today?."},
		},
		FullText: []string{
			"The mayor's plan may be bold. [Page A1]",
			"It failed on Tuesday.",
			"CITY HALL; POLITICS",
		},
	}

	Apply(doc, corpus.SummaryOnlineLead)
	once := append([]string(nil), doc.FullText...)
	onceSumm := append([]string(nil), doc.Summaries[corpus.SummaryOnlineLead]...)

	Apply(doc, corpus.SummaryOnlineLead)
	if strings.Join(doc.FullText, "\x00") != strings.Join(once, "\x00") {
		t.Fatalf("full text changed on second apply:\n%v\n%v", once, doc.FullText)
	}
	if strings.Join(doc.Summaries[corpus.SummaryOnlineLead], "\x00") != strings.Join(onceSumm, "\x00") {
		t.Fatalf("summary changed on second apply:\n%v\n%v", onceSumm, doc.Summaries[corpus.SummaryOnlineLead])
	}
}

func TestApply_AmbiguousStitchRepairedOnlyWithEvidence(t *testing.T) {
	// "maybe" separates only because "may be" occurs in the article text.
	doc := &corpus.Document{
		Summaries: map[string][]string{
			corpus.SummaryOnlineLead: {"The plan maybe dead."},
		},
		FullText: []string{"Officials said the plan may be dead."},
	}
	Apply(doc, corpus.SummaryOnlineLead)
	if doc.Summaries[corpus.SummaryOnlineLead][0] != "The plan may be dead." {
		t.Fatalf("got %q", doc.Summaries[corpus.SummaryOnlineLead][0])
	}

	// Without evidence the word is left alone.
	doc2 := &corpus.Document{
		Summaries: map[string][]string{
			corpus.SummaryOnlineLead: {"The plan maybe dead."},
		},
		FullText: []string{"Officials said the plan is dead."},
	}
	Apply(doc2, corpus.SummaryOnlineLead)
	if doc2.Summaries[corpus.SummaryOnlineLead][0] != "The plan maybe dead." {
		t.Fatalf("got %q", doc2.Summaries[corpus.SummaryOnlineLead][0])
	}
}

func TestFixCapitalization(t *testing.T) {
	tgt := []string{"THE MAYOR of the city resigned."}
	src := []string{"The Mayor of the city resigned suddenly."}
	got := fixCapitalization(tgt, src)
	if got[0] != "The Mayor of the city resigned." {
		t.Fatalf("got %q", got[0])
	}

	// All-caps titles are left alone.
	title := []string{"CITY HALL IN TURMOIL"}
	got = fixCapitalization(title, src)
	if got[0] != "CITY HALL IN TURMOIL" {
		t.Fatalf("title edited: %q", got[0])
	}
}

func TestIncompleteEnding(t *testing.T) {
	if !IncompleteEnding("The mayor said that,.") {
		t.Fatal("expected truncation detection")
	}
	if IncompleteEnding("The mayor resigned.") {
		t.Fatal("false positive")
	}
}

func TestIsRoundupLead(t *testing.T) {
	if !IsRoundupLead("NEW HAVEN -- A fire destroyed a warehouse.") {
		t.Fatal("expected roundup detection")
	}
	if IsRoundupLead("A fire destroyed a warehouse.") {
		t.Fatal("false positive")
	}
}

func TestTemplateWordlists(t *testing.T) {
	if !IsTemplateDescriptor("Paid Death Notice") {
		t.Fatal("descriptor list not loaded")
	}
	if !IsTemplateTitle("News Summary") {
		t.Fatal("title list not loaded")
	}
	if !IsTemplateSummaryLead("Corrections.") {
		t.Fatal("summlead list not loaded")
	}
}
