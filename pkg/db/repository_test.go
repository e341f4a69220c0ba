package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yumyai/panva/pkg/model"
	"github.com/yumyai/panva/pkg/tree"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(context.Background(), filepath.Join(t.TempDir(), "panva.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustTree(t *testing.T, newick string) *tree.Node {
	t.Helper()
	root, err := tree.ParseNewick(newick)
	require.NoError(t, err)
	return root
}

func alignmentRecords(rows map[string]string, genomes map[string]int) []model.AlignmentRecord {
	var res []model.AlignmentRecord
	for id, row := range rows {
		for i := 0; i < len(row); i++ {
			res = append(res, model.AlignmentRecord{MRNAID: id, GenomeNr: genomes[id], Position: i + 1, Nucleotide: row[i : i+1]})
		}
	}
	return res
}

// seed stores homology h1 with sequences a, b, c and the auxiliary tree coreSNP.
func seed(t *testing.T, repo *Repository) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.PutHomologies(ctx, []*model.Homology{
		{ID: "h1", Name: "heat shock", Members: 3, AlignmentLength: 4, Metadata: model.Metadata{"core": true}},
		{ID: "h2", Name: "no tree", Members: 1, AlignmentLength: 1},
	}))
	require.NoError(t, repo.PutTree(ctx, "h1", model.DendroDefault, mustTree(t, "((a,b),c);")))
	require.NoError(t, repo.PutTree(ctx, "", "coreSNP", mustTree(t, "(2,1);")))

	records := alignmentRecords(
		map[string]string{"a": "AC-T", "b": "ACGT", "c": "TTGA"},
		map[string]int{"a": 1, "b": 1, "c": 2},
	)
	for i := range records {
		if records[i].MRNAID == "c" && records[i].Position == 1 {
			records[i].Metadata = model.Metadata{"snp": true}
		}
	}
	require.NoError(t, repo.PutAlignment(ctx, "h1", records))

	require.NoError(t, repo.PutSequences(ctx, "h1", []model.SequenceRecord{
		{MRNAID: "a", Metadata: model.Metadata{"country": "NL", "length": 3.5}},
		{MRNAID: "b", Metadata: model.Metadata{"country": "TH"}},
		{MRNAID: "c"},
	}))
	require.NoError(t, repo.PutVariablePositions(ctx, "h1", []model.VariablePositionRecord{
		{Position: 1, A: 2, T: 1, Metadata: model.Metadata{"is_snp": true}},
		{Position: 3, G: 2, Gap: 1},
	}))
	require.NoError(t, repo.PutAnnotations(ctx, "h1", []model.AnnotationRecord{
		{MRNAID: "b", Position: 2, Flags: map[string]bool{"exon": true, "intron": false}},
	}))
}

func TestRepositoryReadsBack(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo)
	ctx := context.Background()

	homologies, err := repo.Homologies(ctx)
	require.NoError(t, err)
	require.Len(t, homologies, 2)
	assert.Equal(t, &model.Homology{ID: "h1", Name: "heat shock", Members: 3, AlignmentLength: 4, Metadata: model.Metadata{"core": true}}, homologies[0])
	assert.Nil(t, homologies[1].Metadata)

	root, err := repo.DefaultTree(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, root.Leaves())

	aux, err := repo.AuxiliaryTree(ctx, "coreSNP")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1"}, aux.Leaves())

	alignment, err := repo.Alignment(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, alignment, 12)
	assert.Equal(t, model.AlignmentRecord{MRNAID: "a", GenomeNr: 1, Position: 3, Nucleotide: "-"}, alignment[2])
	assert.Equal(t, model.Metadata{"snp": true}, alignment[8].Metadata)

	seqs, err := repo.SequenceMetadata(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, seqs, 3)
	assert.Equal(t, 3.5, seqs[0].Metadata["length"])
	assert.Nil(t, seqs[2].Metadata)

	variable, err := repo.VariablePositions(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, variable, 2)
	assert.Equal(t, model.VariablePositionRecord{Position: 3, G: 2, Gap: 1}, variable[1])

	annotations, err := repo.Annotations(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, annotations, 1)
	assert.True(t, annotations[0].Flags["exon"])
	assert.False(t, annotations[0].Flags["intron"])
}

func TestRepositoryMissingTrees(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo)
	ctx := context.Background()

	_, err := repo.DefaultTree(ctx, "h2")
	assert.ErrorIs(t, err, model.ErrNoDefaultTree)

	_, err = repo.AuxiliaryTree(ctx, "mlst")
	assert.ErrorIs(t, err, model.ErrUnknownTree)
}

func TestRepositoryPutReplaces(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo)
	ctx := context.Background()

	require.NoError(t, repo.PutTree(ctx, "h1", model.DendroDefault, mustTree(t, "(c,(b,a));")))
	root, err := repo.DefaultTree(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b", "a"}, root.Leaves())
}

func TestCustomDendrogram(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo)
	ctx := context.Background()

	// a and b agree on positions 1-2, c differs everywhere
	root, err := repo.CustomDendrogram(ctx, "h1", []int{1, 2})
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.Equal(t, []string{"a", "b"}, root.Children[0].Leaves())
	assert.Equal(t, "c", root.Children[1].Name)

	// at position 3 a has a gap while b and c share G
	root, err = repo.CustomDendrogram(ctx, "h1", []int{3})
	require.NoError(t, err)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "a", root.Children[0].Name)
	assert.Equal(t, []string{"b", "c"}, root.Children[1].Leaves())

	// repeated positions count once
	want, err := repo.CustomDendrogram(ctx, "h1", []int{1, 2})
	require.NoError(t, err)
	got, err := repo.CustomDendrogram(ctx, "h1", []int{2, 1, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, want.String(), got.String())

	_, err = repo.CustomDendrogram(ctx, "h2", []int{1})
	assert.ErrorIs(t, err, tree.ErrNoLabels)
}

func TestRepositoryFeedsStore(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo)
	ctx := context.Background()

	st := model.NewStore(repo, model.Options{
		AnnotationColumns: []string{"exon"},
		AuxiliaryTrees:    []string{"coreSNP"},
	})
	require.NoError(t, st.LoadHomologies(ctx))
	_, err := st.LoadHomologyGroup(ctx, "h1")
	require.NoError(t, err)

	v := st.View()
	require.True(t, v.IsInitialized)
	assert.Nil(t, v.Error)
	assert.Equal(t, 3, v.SequenceCount)
	assert.Equal(t, 4, v.GeneLength)
	assert.Equal(t, "TH", v.Sequences[1].Metadata["country"])
	assert.True(t, v.Data.Annotations.Feature(1, 2, "exon"))
	assert.True(t, v.Data.Alignment.CellMetadata(2, 1)["snp"].(bool))

	require.NoError(t, st.Do(func(s *model.Session) error {
		return s.ChangeSorting(model.TreeSorting{Tree: "coreSNP"})
	}))
	assert.Equal(t, []int{2, 0, 1}, st.View().SortedDataIndices)

	_, err = st.LoadCustomDendrogram(ctx, []int{3})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, st.View().SortedDataIndices)
}
