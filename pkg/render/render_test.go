package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/yumyai/panva/pkg/config"
	"github.com/yumyai/panva/pkg/model"
	"github.com/yumyai/panva/pkg/tree"
)

func testSession(t *testing.T) *model.Session {
	t.Helper()
	root, err := tree.ParseNewick("((a,b),c);")
	if err != nil {
		t.Fatalf("parse tree: %v", err)
	}

	rows := []struct {
		id     string
		genome int
		row    string
	}{{"a", 1, "ACGT"}, {"b", 1, "ACGA"}, {"c", 2, "TTG-"}}
	var records []model.AlignmentRecord
	for _, r := range rows {
		for i := 0; i < len(r.row); i++ {
			records = append(records, model.AlignmentRecord{MRNAID: r.id, GenomeNr: r.genome, Position: i + 1, Nucleotide: r.row[i : i+1]})
		}
	}

	data, err := model.Merge(model.MergeInput{
		Homology:          &model.Homology{ID: "h1"},
		DefaultTree:       root,
		Alignment:         records,
		Sequences:         []model.SequenceRecord{{MRNAID: "a", Metadata: model.Metadata{"country": "NL"}}},
		VariablePositions: []model.VariablePositionRecord{{Position: 4, A: 1, T: 1, Gap: 1}},
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	s := model.NewSession(nil)
	s.Install(data)
	return s
}

func TestWriteFASTA(t *testing.T) {
	s := testSession(t)

	var buf bytes.Buffer
	if err := WriteFASTA(&buf, s.View(), 3); err != nil {
		t.Fatalf("write: %v", err)
	}
	want := ">a genome_nr=1\nACG\nT\n>b genome_nr=1\nACG\nA\n>c genome_nr=2\nTTG\n-\n"
	if buf.String() != want {
		t.Fatalf("unexpected FASTA.\ngot  %q\nwant %q", buf.String(), want)
	}
}

func TestWriteFASTAFollowsFilters(t *testing.T) {
	s := testSession(t)
	if err := s.SetPositionRange(model.PositionRange{Start: 2, End: 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddSequenceFilter(model.MetadataFilter{Column: "genome_nr", Operator: model.OpEquals, Values: []any{2.0}}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteFASTA(&buf, s.View(), FASTALineWidth); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != ">c genome_nr=2\nTG\n" {
		t.Fatalf("unexpected FASTA %q", got)
	}
}

func TestWriteFASTAUninitialized(t *testing.T) {
	err := WriteFASTA(&bytes.Buffer{}, model.NewSession(nil).View(), FASTALineWidth)
	if !errors.Is(err, model.ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestRenderOverviewPage(t *testing.T) {
	s := testSession(t)
	if err := s.DragStart(0, false); err != nil {
		t.Fatal(err)
	}
	end := 1
	s.DragEnd(&end)
	g, err := s.CreateGroup(model.GroupAttributes{Name: "pair", IsCollapsed: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetReference(model.DataReference{DataIndex: 2}); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Parse([]byte("sequences:\n  metadata:\n    - {name: country, type: categorical}\n  default_visible: [country]\n"))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := RenderOverviewPage(&buf, OverviewData{View: s.View(), Config: cfg, MaxPositions: 3}); err != nil {
		t.Fatalf("render: %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"Homology group h1: 3 sequences, 4 positions.",
		"first 3 drawn",
		g.Name + " (2)",
		"<th>country</th>",
		"<strong>reference</strong>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("overview misses %q", want)
		}
	}
}

func TestOverviewRows(t *testing.T) {
	s := testSession(t)
	if err := s.SetReference(model.DataReference{DataIndex: 2}); err != nil {
		t.Fatal(err)
	}
	page := buildOverviewPage(OverviewData{View: s.View()})

	if len(page.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(page.Rows))
	}
	// c is the reference, so every cell of its own row matches
	for _, c := range page.Rows[2].Cells {
		if c.Symbol != "." {
			t.Fatalf("reference row should be blank, got %+v", page.Rows[2].Cells)
		}
	}
	if got := page.Rows[0].Cells[0]; got.Symbol != "A" || got.Color != nucleotideColors['A'] {
		t.Errorf("unexpected first cell %+v", got)
	}
	if got := page.Rows[0].Cells[2]; got.Symbol != "." {
		t.Errorf("G matches the reference, got %+v", got)
	}
	if page.Conservation[0].Color != nucleotideColors['-'] {
		t.Errorf("position 1 is not variable")
	}
}

func TestRenderOverviewUninitialized(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderOverviewPage(&buf, OverviewData{View: model.NewSession(nil).View()}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No homology group loaded.") {
		t.Fatalf("unexpected page %q", buf.String())
	}
}

func TestCellColors(t *testing.T) {
	if got := cellFor("A", "AC"); got.Symbol != "." {
		t.Errorf("A within AC should match, got %+v", got)
	}
	if got := cellFor("t", "AC"); got.Symbol != "t" || got.Color != nucleotideColors['T'] {
		t.Errorf("unexpected cell %+v", got)
	}
	if got := cellFor("AG", ""); got.Symbol != "*" || got.Color != mixedColor {
		t.Errorf("unexpected mixed cell %+v", got)
	}

	for _, tc := range []struct {
		fraction float64
		want     string
	}{{1, "#00FF00"}, {0.75, "#808000"}, {0.2, "#8B8989"}} {
		if got := calculateColorByConservation(tc.fraction); got != tc.want {
			t.Errorf("conservation %v: got %s, want %s", tc.fraction, got, tc.want)
		}
	}
}

func TestRenderLoadJobPage(t *testing.T) {
	var buf bytes.Buffer
	err := RenderLoadJobPage(&buf, LoadJobPageData{JobID: "j1", Kind: "homology_group", Target: "h1", Status: "running", ShouldRefresh: true, RefreshIntervalSeconds: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "2000") || !strings.Contains(buf.String(), "still running") {
		t.Fatalf("unexpected page %q", buf.String())
	}
}
