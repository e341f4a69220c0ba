package model

import "fmt"

// Sorting is one of TreeSorting, MRNAIDSorting, MetadataSorting or PositionSorting.
// Variants are comparable, so two strategies are identical iff they are ==.
type Sorting interface {
	isSorting()
}

type TreeSorting struct{ Tree string }

type MRNAIDSorting struct{}

type MetadataSorting struct{ Column string }

type PositionSorting struct{ Position int }

func (TreeSorting) isSorting()     {}
func (MRNAIDSorting) isSorting()   {}
func (MetadataSorting) isSorting() {}
func (PositionSorting) isSorting() {}

func DefaultSorting() Sorting {
	return TreeSorting{Tree: DendroDefault}
}

// reversible is false for strategies pinned to a tree ordering.
func reversible(s Sorting) bool {
	switch s.(type) {
	case TreeSorting:
		return false
	case MRNAIDSorting, MetadataSorting, PositionSorting:
		return true
	default:
		panic(fmt.Sprintf("unhandled sorting %T", s))
	}
}

// SortingJSON is the wire form: exactly one field is set.
type SortingJSON struct {
	Tree     *string `json:"tree,omitempty"`
	MRNAID   *bool   `json:"mrnaId,omitempty"`
	Metadata *string `json:"metadata,omitempty"`
	Position *int    `json:"position,omitempty"`
}

func EncodeSorting(s Sorting) SortingJSON {
	switch v := s.(type) {
	case TreeSorting:
		return SortingJSON{Tree: &v.Tree}
	case MRNAIDSorting:
		t := true
		return SortingJSON{MRNAID: &t}
	case MetadataSorting:
		return SortingJSON{Metadata: &v.Column}
	case PositionSorting:
		return SortingJSON{Position: &v.Position}
	default:
		panic(fmt.Sprintf("unhandled sorting %T", s))
	}
}

func (j SortingJSON) Decode() (Sorting, error) {
	var res Sorting
	set := 0
	if j.Tree != nil {
		set++
		res = TreeSorting{Tree: *j.Tree}
	}
	if j.MRNAID != nil && *j.MRNAID {
		set++
		res = MRNAIDSorting{}
	}
	if j.Metadata != nil {
		set++
		res = MetadataSorting{Column: *j.Metadata}
	}
	if j.Position != nil {
		set++
		res = PositionSorting{Position: *j.Position}
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: expected exactly one of tree, mrnaId, metadata, position", ErrInvalidSorting)
	}
	return res, nil
}
