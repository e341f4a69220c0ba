// Render HTML for the alignment overview

package render

import (
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/config"
	"github.com/yumyai/panva/pkg/model"
	"go.uber.org/zap"
)

// nucleotideColors follows the usual alignment viewer palette.
var nucleotideColors = map[byte]string{
	'A': "#7FC97F",
	'C': "#80B1D3",
	'G': "#FDB462",
	'T': "#FB8072",
	'N': "#8B8989",
	'-': "#FFFFFF",
}

const (
	matchColor = "#EEEEEE"
	mixedColor = "#CCCCCC"
)

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func nucleotideColor(c byte) string {
	if color, ok := nucleotideColors[upper(c)]; ok {
		return color
	}
	return nucleotideColors['N']
}

// calculateColorByConservation maps the conserved fraction of a column from 0.5..1
// onto red..green; anything lower is grey.
func calculateColorByConservation(fraction float64) string {
	if fraction >= 1 {
		return fmt.Sprintf("#%02X%02X00", 0, 255)
	}
	if fraction < 0.5 {
		return "#8B8989"
	}

	t := (fraction - 0.5) / 0.5
	r := int(math.Round(lerp(255, 0, t)))
	g := int(math.Round(lerp(0, 255, t)))
	return fmt.Sprintf("#%02X%02X00", r, g)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Cell represents one alignment cell of a rendered row.
type Cell struct {
	Symbol string
	Color  string
}

type OverviewRow struct {
	Label    string
	IsGroup  bool
	Color    string
	Size     int
	Metadata []string
	Cells    []Cell
}

type OverviewData struct {
	View         *model.View
	Config       *config.Config
	MaxPositions int
}

type overviewPage struct {
	OverviewData
	Positions       []int
	Truncated       bool
	Columns         []string
	Conservation    []Cell
	Reference       []Cell
	Rows            []OverviewRow
	TreeLabels      []string
	ErrorMessage    string
	SortDescription string
}

// cellFor colors symbols against the reference; cells agreeing with it are blanked.
func cellFor(symbols string, reference string) Cell {
	if reference != "" && symbols != "" {
		match := true
		for i := 0; i < len(symbols); i++ {
			if strings.IndexByte(reference, upper(symbols[i])) < 0 {
				match = false
				break
			}
		}
		if match {
			return Cell{Symbol: ".", Color: matchColor}
		}
	}
	if len(symbols) == 1 {
		return Cell{Symbol: symbols, Color: nucleotideColor(symbols[0])}
	}
	return Cell{Symbol: "*", Color: mixedColor}
}

func describeSorting(s model.SortingJSON) string {
	switch {
	case s.Tree != nil:
		return "tree " + *s.Tree
	case s.MRNAID != nil:
		return "mRNA id"
	case s.Metadata != nil:
		return "metadata " + *s.Metadata
	case s.Position != nil:
		return fmt.Sprintf("position %d", *s.Position)
	default:
		return ""
	}
}

func metadataText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

func buildOverviewPage(data OverviewData) *overviewPage {
	page := &overviewPage{OverviewData: data}
	view := data.View
	if view.Error != nil {
		page.ErrorMessage = view.Error.Message()
	}
	page.SortDescription = describeSorting(view.Sorting)
	if data.Config != nil {
		page.Columns = data.Config.Sequences.DefaultVisible
		for _, name := range view.Trees {
			page.TreeLabels = append(page.TreeLabels, data.Config.TreeLabel(name))
		}
	}
	if !view.IsInitialized {
		return page
	}

	page.Positions = view.Positions
	if data.MaxPositions > 0 && len(page.Positions) > data.MaxPositions {
		page.Positions = page.Positions[:data.MaxPositions]
		page.Truncated = true
	}

	reference := make(map[int]string, len(view.ReferenceStrings))
	for i, p := range view.Positions {
		if i < len(view.ReferenceStrings) {
			reference[p] = view.ReferenceStrings[i]
		}
	}

	hd := view.Data
	for _, p := range page.Positions {
		vp := hd.VariablePositions[p-1]
		if vp == nil {
			page.Conservation = append(page.Conservation, Cell{Color: nucleotideColors['-']})
		} else {
			fraction := float64(vp.Conservation) / float64(max(view.SequenceCount, 1))
			page.Conservation = append(page.Conservation, Cell{Color: calculateColorByConservation(fraction)})
		}
		if ref, ok := reference[p]; ok {
			page.Reference = append(page.Reference, cellFor(ref, ""))
		}
	}

	groups := make(map[int]*model.Group, len(view.GroupsFiltered))
	for _, g := range view.GroupsFiltered {
		groups[g.ID] = g
	}

	for _, item := range view.SortedDataIndicesCollapsed {
		var row OverviewRow
		if item.IsGroup() {
			g := groups[item.GroupID]
			if g == nil {
				continue
			}
			row = OverviewRow{Label: g.Name, IsGroup: true, Color: g.Color, Size: len(g.DataIndices)}
			for _, p := range page.Positions {
				row.Cells = append(row.Cells, cellFor(model.SymbolSet(hd.Alignment, g.DataIndices, p), reference[p]))
			}
		} else {
			seq := hd.Sequences[item.DataIndex]
			row = OverviewRow{Label: seq.MRNAID, Size: 1}
			for _, c := range page.Columns {
				row.Metadata = append(row.Metadata, metadataText(seq.Metadata[c]))
			}
			for _, p := range page.Positions {
				row.Cells = append(row.Cells, cellFor(string(hd.Alignment.At(item.DataIndex, p)), reference[p]))
			}
		}
		page.Rows = append(page.Rows, row)
	}
	return page
}

var overviewPageTemplate *template.Template

// init initializes the templates used for rendering the HTML page.
func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		<title>PanVA {{ .View.HomologyID }}</title>
		<style>
			table.alignment td { font-family: monospace; text-align: center; padding: 0 2px; }
			table.alignment td.label { text-align: left; white-space: nowrap; }
		</style>
	</head>
	<body>
		<header class="app-header">
			<h1 class="app-name">PanVA</h1>
		</header>
		{{ if .ErrorMessage }}
			<p style="color: red;">{{ .ErrorMessage }}</p>
		{{ end }}
		{{ if .View.IsInitialized }}
			{{ template "summary" . }}
			{{ template "groups" . }}
			{{ template "alignment" . }}
		{{ else }}
			<p>No homology group loaded.</p>
		{{ end }}
	</body>
	</html>`

	summaryTmpl := `
	{{ define "summary" }}
		<div>
			<p>Homology group {{ .View.HomologyID }}: {{ .View.SequenceCount }} sequences, {{ .View.GeneLength }} positions.</p>
			<p>Showing {{ len .View.SortedDataIndicesFiltered }} sequences and {{ len .View.Positions }} positions
			   ({{ .View.PositionRange.Start }}-{{ .View.PositionRange.End }}){{ if .Truncated }}, first {{ len .Positions }} drawn{{ end }}.</p>
			{{ if .SortDescription }}<p>Sorted by {{ .SortDescription }}.</p>{{ end }}
			{{ if .TreeLabels }}<p>Trees: {{ range $i, $t := .TreeLabels }}{{ if $i }}, {{ end }}{{ $t }}{{ end }}</p>{{ end }}
			<p>[<a href="/api/v1/alignment.fasta">FASTA</a>] [<a href="/api/v1/state">JSON</a>]</p>
		</div>
	{{ end }}`

	groupsTmpl := `
	{{ define "groups" }}
		{{ if .View.Groups }}
		<table border="1">
			<tr><th>Group</th><th>Name</th><th>Size</th><th>Collapsed</th></tr>
			{{ range .View.Groups }}
			<tr>
				<td bgcolor="{{ .Color }}">{{ .ID }}</td>
				<td>{{ .Name }}</td>
				<td>{{ .Size }}</td>
				<td>{{ .IsCollapsed }}</td>
			</tr>
			{{ end }}
		</table>
		{{ end }}
	{{ end }}`

	alignmentTmpl := `
	{{ define "alignment" }}
		<table class="alignment">
			<tr>
				<th></th>
				{{ range .Columns }}<th>{{ . }}</th>{{ end }}
				{{ range .Positions }}<th>{{ . }}</th>{{ end }}
			</tr>
			<tr>
				<td class="label">conservation</td>
				{{ range .Columns }}<td></td>{{ end }}
				{{ range .Conservation }}<td bgcolor="{{ .Color }}"></td>{{ end }}
			</tr>
			{{ if .Reference }}
			<tr>
				<td class="label"><strong>reference</strong></td>
				{{ range .Columns }}<td></td>{{ end }}
				{{ range .Reference }}<td bgcolor="{{ .Color }}">{{ .Symbol }}</td>{{ end }}
			</tr>
			{{ end }}
			{{ range .Rows }}
			<tr>
				{{ if .IsGroup }}
					<td class="label" bgcolor="{{ .Color }}">{{ .Label }} ({{ .Size }})</td>
					{{ range $.Columns }}<td></td>{{ end }}
				{{ else }}
					<td class="label">{{ .Label }}</td>
					{{ range .Metadata }}<td>{{ . }}</td>{{ end }}
				{{ end }}
				{{ range .Cells }}<td bgcolor="{{ .Color }}">{{ .Symbol }}</td>{{ end }}
			</tr>
			{{ end }}
		</table>
	{{ end }}`

	overviewPageTemplate = template.Must(template.New("overview").Parse(mainTmpl))
	overviewPageTemplate = template.Must(overviewPageTemplate.Parse(summaryTmpl))
	overviewPageTemplate = template.Must(overviewPageTemplate.Parse(groupsTmpl))
	overviewPageTemplate = template.Must(overviewPageTemplate.Parse(alignmentTmpl))
}

// RenderOverviewPage renders the current view as an alignment table.
func RenderOverviewPage(w io.Writer, data OverviewData) error {
	page := buildOverviewPage(data)
	logger.Debug("Rendering overview", zap.String("homology_id", data.View.HomologyID), zap.Int("rows", len(page.Rows)))
	return overviewPageTemplate.Execute(w, page)
}
