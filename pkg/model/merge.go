// Reproject fetched records onto dense, data-index aligned arrays

package model

import (
	"fmt"

	"github.com/yumyai/panva/logger"
	"github.com/yumyai/panva/pkg/tree"
	"go.uber.org/zap"
)

const (
	DendroDefault = "dendroDefault"
	DendroCustom  = "dendroCustom"
)

// MergeInput is everything fetched for one homology group. Degraded datasets are
// passed as empty slices.
type MergeInput struct {
	Homology          *Homology
	DefaultTree       *tree.Node
	Alignment         []AlignmentRecord
	Sequences         []SequenceRecord
	VariablePositions []VariablePositionRecord
	Annotations       []AnnotationRecord
	AnnotationColumns []string
	AuxiliaryTrees    map[string]*tree.Node
}

// HomologyData is the merged, immutable dataset of one homology group. Only the
// custom dendrogram entry of Trees changes after the merge.
type HomologyData struct {
	HomologyID        string
	Identity          *IdentityIndex
	GeneLength        int
	GenomeNrs         []int
	Sequences         []*Sequence
	Alignment         *Alignment
	VariablePositions []*VariablePosition
	Annotations       *Annotations
	Trees             map[string]*tree.Node
	SkippedRecords    int
}

func (d *HomologyData) SequenceCount() int {
	return d.Identity.Len()
}

// DataIndicesByGenome maps genome numbers to the data indices they contribute.
func (d *HomologyData) DataIndicesByGenome() map[int][]int {
	res := make(map[int][]int)
	for di, nr := range d.GenomeNrs {
		res[nr] = append(res[nr], di)
	}
	return res
}

func Merge(in MergeInput) (*HomologyData, error) {

	if in.DefaultTree == nil {
		return nil, ErrNoDefaultTree
	}

	identity, err := NewIdentityIndex(in.DefaultTree.Leaves())
	if err != nil {
		return nil, err
	}
	count := identity.Len()

	geneLength := 0
	homologyID := ""
	if in.Homology != nil {
		geneLength = in.Homology.AlignmentLength
		homologyID = in.Homology.ID
	}
	if geneLength <= 0 {
		for _, r := range in.Alignment {
			geneLength = max(geneLength, r.Position)
		}
	}

	data := &HomologyData{
		HomologyID: homologyID,
		Identity:   identity,
		GeneLength: geneLength,
		GenomeNrs:  make([]int, count),
		Sequences:  make([]*Sequence, count),
		Alignment:  NewAlignment(count, geneLength),
		Trees:      map[string]*tree.Node{DendroDefault: in.DefaultTree},
	}

	for di := 0; di < count; di++ {
		data.GenomeNrs[di] = -1
		data.Sequences[di] = &Sequence{
			DataIndex: di,
			MRNAID:    identity.MRNAID(di),
			GenomeNr:  -1,
			Metadata:  Metadata{},
		}
	}

	for _, r := range in.Alignment {
		di, ok := identity.Index(r.MRNAID)
		if !ok || !data.Alignment.Contains(di, r.Position) {
			data.SkippedRecords++
			continue
		}
		data.GenomeNrs[di] = r.GenomeNr
		data.Sequences[di].GenomeNr = r.GenomeNr
		data.Alignment.set(di, r.Position, NormalizeNucleotide(r.Nucleotide), r.Metadata)
	}

	for _, r := range in.Sequences {
		di, ok := identity.Index(r.MRNAID)
		if !ok {
			data.SkippedRecords++
			continue
		}
		for k, v := range r.Metadata {
			data.Sequences[di].Metadata[k] = v
		}
	}

	data.VariablePositions = mergeVariablePositions(in.VariablePositions, geneLength, &data.SkippedRecords)
	data.Annotations = mergeAnnotations(in.Annotations, in.AnnotationColumns, identity, geneLength, &data.SkippedRecords)

	for name, root := range in.AuxiliaryTrees {
		if name == DendroDefault || name == DendroCustom {
			return nil, fmt.Errorf("%w: reserved tree name %s", ErrUnknownTree, name)
		}
		if root != nil {
			data.Trees[name] = root
		}
	}

	if data.SkippedRecords > 0 {
		logger.Warn("Skipped records not matching the default dendrogram",
			zap.String("homology_id", homologyID),
			zap.Int("skipped", data.SkippedRecords))
	}

	return data, nil
}

func mergeVariablePositions(records []VariablePositionRecord, geneLength int, skipped *int) []*VariablePosition {
	res := make([]*VariablePosition, geneLength)
	for _, r := range records {
		if r.Position < 1 || r.Position > geneLength {
			*skipped++
			continue
		}
		md := r.Metadata
		if md == nil {
			md = Metadata{}
		}
		res[r.Position-1] = &VariablePosition{
			Position:     r.Position,
			A:            r.A,
			C:            r.C,
			G:            r.G,
			T:            r.T,
			Gap:          r.Gap,
			Conservation: max(r.A, r.C, r.G, r.T, r.Gap),
			Metadata:     md,
		}
	}
	return res
}

func mergeAnnotations(records []AnnotationRecord, columns []string, identity *IdentityIndex, geneLength int, skipped *int) *Annotations {
	if len(columns) == 0 {
		return &Annotations{}
	}
	ann := newAnnotations(columns, identity.Len(), geneLength)
	for _, r := range records {
		di, ok := identity.Index(r.MRNAID)
		if !ok || r.Position < 1 || r.Position > geneLength {
			*skipped++
			continue
		}
		flags := ann.At(di, r.Position)
		for i, c := range columns {
			flags[i] = r.Flags[c]
		}
	}
	return ann
}
