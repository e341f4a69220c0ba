package model

import (
	"fmt"
	"slices"
)

// AnnotationTable holds the annotation flags of the filtered sequences in draw
// order, one flag per column at every listed position.
type AnnotationTable struct {
	Columns   []string        `json:"columns"`
	Positions []int           `json:"positions"`
	Rows      []AnnotationRow `json:"rows"`
}

type AnnotationRow struct {
	DataIndex int      `json:"dataIndex"`
	Flags     [][]bool `json:"flags"`
}

// AlignmentTable holds the aligned symbols of the filtered sequences in draw order.
type AlignmentTable struct {
	Positions []int          `json:"positions"`
	Rows      []AlignmentRow `json:"rows"`
}

type AlignmentRow struct {
	DataIndex int        `json:"dataIndex"`
	MRNAID    string     `json:"mRNA_id"`
	GenomeNr  int        `json:"genome_nr"`
	Sequence  string     `json:"sequence"`
	// Per position cell metadata, only set when some cell of the row has any.
	Metadata  []Metadata `json:"metadata,omitempty"`
}

// resolvePositions validates positions; an empty list means the filtered positions.
func (s *Session) resolvePositions(positions []int) ([]int, error) {
	if s.data == nil {
		return nil, ErrNotInitialized
	}
	if len(positions) == 0 {
		return slices.Clone(s.PositionsFiltered()), nil
	}
	for _, p := range positions {
		if p < 1 || p > s.data.GeneLength {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, p)
		}
	}
	return slices.Clone(positions), nil
}

// VariablePositionsFiltered lists the variable positions among the filtered positions.
func (s *Session) VariablePositionsFiltered() []*VariablePosition {
	if s.data == nil {
		return nil
	}
	res := make([]*VariablePosition, 0)
	for _, p := range s.PositionsFiltered() {
		if vp := s.data.VariablePositions[p-1]; vp != nil {
			res = append(res, vp)
		}
	}
	return res
}

func (s *Session) AnnotationTable(positions []int) (*AnnotationTable, error) {
	positions, err := s.resolvePositions(positions)
	if err != nil {
		return nil, err
	}
	ann := s.data.Annotations
	table := &AnnotationTable{
		Columns:   slices.Clone(ann.Columns),
		Positions: positions,
		Rows:      make([]AnnotationRow, 0, len(s.SortedDataIndicesFiltered())),
	}
	if table.Columns == nil {
		table.Columns = []string{}
	}
	for _, di := range s.SortedDataIndicesFiltered() {
		row := AnnotationRow{DataIndex: di, Flags: make([][]bool, len(positions))}
		for i, p := range positions {
			row.Flags[i] = slices.Clone(ann.At(di, p))
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func (s *Session) AlignmentTable(positions []int) (*AlignmentTable, error) {
	positions, err := s.resolvePositions(positions)
	if err != nil {
		return nil, err
	}
	aln := s.data.Alignment
	table := &AlignmentTable{
		Positions: positions,
		Rows:      make([]AlignmentRow, 0, len(s.SortedDataIndicesFiltered())),
	}
	for _, di := range s.SortedDataIndicesFiltered() {
		symbols := make([]byte, len(positions))
		var metadata []Metadata
		for i, p := range positions {
			symbols[i] = aln.At(di, p)
			if md := aln.CellMetadata(di, p); md != nil {
				if metadata == nil {
					metadata = make([]Metadata, len(positions))
				}
				metadata[i] = md
			}
		}
		table.Rows = append(table.Rows, AlignmentRow{
			DataIndex: di,
			MRNAID:    s.data.Identity.MRNAID(di),
			GenomeNr:  s.data.GenomeNrs[di],
			Sequence:  string(symbols),
			Metadata:  metadata,
		})
	}
	return table, nil
}
