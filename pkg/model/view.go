package model

import "slices"

// View is a read-only snapshot of a session. Slices are copies, so a View stays
// valid after the session changes.
type View struct {
	IsInitialized              bool                `json:"isInitialized"`
	HomologyID                 string              `json:"homologyId"`
	SequenceCount              int                 `json:"sequenceCount"`
	GeneLength                 int                 `json:"geneLength"`
	Sequences                  []*Sequence         `json:"sequences"`
	GenomeNrs                  []int               `json:"genomeNrs"`
	VariablePositions          []*VariablePosition `json:"variablePositions"`
	Trees                      []string            `json:"trees"`
	Sorting                    SortingJSON         `json:"sorting"`
	SortedDataIndices          []int               `json:"sortedDataIndices"`
	SortedDataIndicesFiltered  []int               `json:"sortedDataIndicesFiltered"`
	SortedDataIndicesCollapsed []DrawItem          `json:"sortedDataIndicesCollapsed"`
	Selection                  []int               `json:"selection"`
	IsDragging                 bool                `json:"isDragging"`
	Groups                     []*Group            `json:"groups"`
	GroupsFiltered             []*Group            `json:"groupsFiltered"`
	Reference                  *ReferenceJSON      `json:"reference"`
	ReferenceStrings           []string            `json:"referenceStrings"`
	PositionRange              PositionRange       `json:"positionRange"`
	Positions                  []int               `json:"positions"`
	SequenceFilters            []MetadataFilter    `json:"sequenceFilters"`
	PositionFilters            []MetadataFilter    `json:"positionFilters"`
	Error                      *LoadError          `json:"error"`

	// Set for renderers, not serialized.
	Data                       *HomologyData       `json:"-"`
}

func (s *Session) View() *View {
	v := &View{
		IsInitialized:   s.IsInitialized(),
		Sorting:         EncodeSorting(s.sorting),
		SequenceFilters: s.SequenceFilters(),
		PositionFilters: s.PositionFilters(),
	}
	if s.data == nil {
		return v
	}

	positions := slices.Clone(s.PositionsFiltered())

	v.HomologyID = s.data.HomologyID
	v.SequenceCount = s.data.SequenceCount()
	v.GeneLength = s.data.GeneLength
	v.Sequences = s.data.Sequences
	v.GenomeNrs = slices.Clone(s.data.GenomeNrs)
	v.VariablePositions = s.VariablePositionsFiltered()
	v.Trees = s.TreeNames()
	v.SortedDataIndices = s.SortedDataIndices()
	v.SortedDataIndicesFiltered = slices.Clone(s.SortedDataIndicesFiltered())
	v.SortedDataIndicesCollapsed = slices.Clone(s.SortedDataIndicesCollapsed())
	v.Selection = s.Selection()
	v.IsDragging = s.IsDragging()
	v.Groups = s.Groups()
	v.GroupsFiltered = s.GroupsFiltered()
	v.Reference = EncodeReference(s.reference)
	v.ReferenceStrings = s.ReferenceStrings(positions)
	v.PositionRange = s.positionRange
	v.Positions = positions
	v.Data = s.data
	return v
}

// Group finds a group of the snapshot by id.
func (v *View) Group(id int) *Group {
	for _, g := range v.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}
