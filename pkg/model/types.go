package model

import (
	"context"

	"github.com/yumyai/panva/pkg/tree"
)

// Metadata holds configured columns for a sequence, position, cell or homology.
// Values are float64, string, bool, []any or nil as decoded from JSON.
type Metadata map[string]any

type Sequence struct {
	DataIndex int      `json:"dataIndex"`
	MRNAID    string   `json:"mRNA_id"`
	GenomeNr  int      `json:"genome_nr"`
	Metadata  Metadata `json:"metadata"`
}

// VariablePosition aggregates one alignment column. Positions are 1-indexed.
type VariablePosition struct {
	Position     int      `json:"position"`
	A            int      `json:"A"`
	C            int      `json:"C"`
	G            int      `json:"G"`
	T            int      `json:"T"`
	Gap          int      `json:"gap"`
	Conservation int      `json:"conservation"`
	Metadata     Metadata `json:"metadata"`
}

// Homology is one entry of the homology group catalog.
type Homology struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Members         int      `json:"members"`
	AlignmentLength int      `json:"alignment_length"`
	Metadata        Metadata `json:"metadata"`
}

// Records as provided by a Source, before reindexing.

type AlignmentRecord struct {
	MRNAID     string   `json:"mRNA_id"`
	GenomeNr   int      `json:"genome_nr"`
	Position   int      `json:"position"`
	Nucleotide string   `json:"nucleotide"`
	Metadata   Metadata `json:"metadata,omitempty"`
}

type SequenceRecord struct {
	MRNAID   string   `json:"mRNA_id"`
	Metadata Metadata `json:"metadata"`
}

type VariablePositionRecord struct {
	Position int      `json:"position"`
	A        int      `json:"A"`
	C        int      `json:"C"`
	G        int      `json:"G"`
	T        int      `json:"T"`
	Gap      int      `json:"gap"`
	Metadata Metadata `json:"metadata,omitempty"`
}

type AnnotationRecord struct {
	MRNAID   string          `json:"mRNA_id"`
	Position int             `json:"position"`
	Flags    map[string]bool `json:"flags"`
}

// Source fetches the datasets of a homology group. Implementations may be called
// concurrently for the same load.
type Source interface {
	Homologies(ctx context.Context) ([]*Homology, error)
	DefaultTree(ctx context.Context, homologyID string) (*tree.Node, error)
	Alignment(ctx context.Context, homologyID string) ([]AlignmentRecord, error)
	SequenceMetadata(ctx context.Context, homologyID string) ([]SequenceRecord, error)
	VariablePositions(ctx context.Context, homologyID string) ([]VariablePositionRecord, error)
	Annotations(ctx context.Context, homologyID string) ([]AnnotationRecord, error)
	AuxiliaryTree(ctx context.Context, name string) (*tree.Node, error)
	CustomDendrogram(ctx context.Context, homologyID string, positions []int) (*tree.Node, error)
}
