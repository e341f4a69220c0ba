package model

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yumyai/panva/pkg/tree"
)

// fixture describes a small homology group; rows are aligned sequences by mRNA id.
type fixture struct {
	newick   string
	rows     map[string]string
	genomes  map[string]int
	metadata map[string]Metadata
	variable []VariablePositionRecord
}

func (f fixture) input(t *testing.T) MergeInput {
	t.Helper()
	root, err := tree.ParseNewick(f.newick)
	require.NoError(t, err)

	var records []AlignmentRecord
	length := 0
	for id, row := range f.rows {
		length = max(length, len(row))
		for i := 0; i < len(row); i++ {
			records = append(records, AlignmentRecord{
				MRNAID:     id,
				GenomeNr:   f.genomes[id],
				Position:   i + 1,
				Nucleotide: row[i : i+1],
			})
		}
	}

	var seqs []SequenceRecord
	for id, md := range f.metadata {
		seqs = append(seqs, SequenceRecord{MRNAID: id, Metadata: md})
	}

	return MergeInput{
		Homology:          &Homology{ID: "h1", AlignmentLength: length},
		DefaultTree:       root,
		Alignment:         records,
		Sequences:         seqs,
		VariablePositions: f.variable,
	}
}

func (f fixture) data(t *testing.T) *HomologyData {
	t.Helper()
	data, err := Merge(f.input(t))
	require.NoError(t, err)
	return data
}

func (f fixture) session(t *testing.T, quantitative ...string) *Session {
	t.Helper()
	s := NewSession(quantitative)
	s.Install(f.data(t))
	return s
}

// fiveGenes is the e,b,d,a,c scenario.
var fiveGenes = fixture{
	newick: "(((e,b),d),(a,c));",
	rows: map[string]string{
		"e": "ACGT",
		"b": "ACGA",
		"d": "TCGA",
		"a": "ACcT",
		"c": "AGG-",
	},
	genomes: map[string]int{"e": 1, "b": 2, "d": 1, "a": 3, "c": 9},
	metadata: map[string]Metadata{
		"e": {"country": "NL", "length": 3.0},
		"b": {"country": "TH", "length": 1.0},
		"d": {"country": "NL"},
		"a": {"country": "US", "length": 2.0},
		"c": {"country": "TH", "length": 1.0},
	},
	variable: []VariablePositionRecord{
		{Position: 1, A: 4, T: 1, Metadata: Metadata{"is_snp": true}},
		{Position: 4, A: 2, T: 2, Gap: 1, Metadata: Metadata{"is_snp": false}},
	},
}

func isPermutation(order []int, n int) bool {
	if len(order) != n {
		return false
	}
	seen := make([]bool, n)
	for _, v := range order {
		if v < 0 || v >= n || seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// selectRange drags over collapsed draw positions [from, to].
func selectRange(t *testing.T, s *Session, from, to int) {
	t.Helper()
	require.NoError(t, s.DragStart(from, false))
	s.DragEnd(&to)
}
