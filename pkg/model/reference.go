package model

import (
	"fmt"
	"strings"
)

// Reference is a GroupReference or DataReference; nil means no reference.
type Reference interface {
	isReference()
}

type GroupReference struct{ ID int }

type DataReference struct{ DataIndex int }

func (GroupReference) isReference() {}
func (DataReference) isReference()  {}

// ReferenceJSON is the wire form {"type":"group","id":1} or {"type":"data","dataIndex":3}.
type ReferenceJSON struct {
	Type      string `json:"type"`
	ID        *int   `json:"id,omitempty"`
	DataIndex *int   `json:"dataIndex,omitempty"`
}

func EncodeReference(r Reference) *ReferenceJSON {
	switch v := r.(type) {
	case nil:
		return nil
	case GroupReference:
		return &ReferenceJSON{Type: "group", ID: &v.ID}
	case DataReference:
		return &ReferenceJSON{Type: "data", DataIndex: &v.DataIndex}
	default:
		panic(fmt.Sprintf("unhandled reference %T", r))
	}
}

func (j ReferenceJSON) Decode() (Reference, error) {
	switch j.Type {
	case "group":
		if j.ID == nil {
			return nil, fmt.Errorf("%w: group reference needs id", ErrInvalidReference)
		}
		return GroupReference{ID: *j.ID}, nil
	case "data":
		if j.DataIndex == nil {
			return nil, fmt.Errorf("%w: data reference needs dataIndex", ErrInvalidReference)
		}
		return DataReference{DataIndex: *j.DataIndex}, nil
	default:
		return nil, fmt.Errorf("%w: type %q", ErrInvalidReference, j.Type)
	}
}

func (s *Session) Reference() Reference {
	return s.reference
}

// SetReference activates ref after checking that its target exists. nil clears it.
func (s *Session) SetReference(ref Reference) error {
	switch v := ref.(type) {
	case nil:
	case GroupReference:
		if _, _, err := s.group(v.ID); err != nil {
			return err
		}
	case DataReference:
		if s.data == nil {
			return ErrNotInitialized
		}
		if v.DataIndex < 0 || v.DataIndex >= s.data.SequenceCount() {
			return fmt.Errorf("%w: %d", ErrInvalidDataIndex, v.DataIndex)
		}
	default:
		panic(fmt.Sprintf("unhandled reference %T", ref))
	}
	s.reference = ref
	return nil
}

// nucleotideOrder is the canonical order of symbols in a group reference string.
const nucleotideOrder = "ACGTN-"

// ReferenceStrings gives one comparison string per position: the symbol of a data
// reference, or the distinct symbols of a group reference in A C G T N - order.
// Returns nil without a reference.
func (s *Session) ReferenceStrings(positions []int) []string {
	if s.data == nil || s.reference == nil {
		return nil
	}
	aln := s.data.Alignment

	switch v := s.reference.(type) {
	case DataReference:
		res := make([]string, len(positions))
		for i, p := range positions {
			res[i] = string(aln.At(v.DataIndex, p))
		}
		return res

	case GroupReference:
		_, g, err := s.group(v.ID)
		if err != nil {
			// DeleteGroup clears the reference, so this cannot happen
			panic(err)
		}
		res := make([]string, len(positions))
		for i, p := range positions {
			res[i] = SymbolSet(aln, g.DataIndices, p)
		}
		return res

	default:
		panic(fmt.Sprintf("unhandled reference %T", s.reference))
	}
}

// SymbolSet lists the distinct symbols of members at position in A C G T N - order.
func SymbolSet(aln *Alignment, members []int, position int) string {
	var present [len(nucleotideOrder)]bool
	for _, di := range members {
		c := aln.At(di, position)
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		i := strings.IndexByte(nucleotideOrder, c)
		if i < 0 {
			i = strings.IndexByte(nucleotideOrder, Unknown)
		}
		present[i] = true
	}
	var sb strings.Builder
	for i, ok := range present {
		if ok {
			sb.WriteByte(nucleotideOrder[i])
		}
	}
	return sb.String()
}
