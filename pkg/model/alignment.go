package model

const (
	Gap     byte = '-'
	Unknown byte = 'N'
)

// Alignment is the sequenceCount x geneLength nucleotide matrix kept as one flat slice.
type Alignment struct {
	GeneLength int
	count      int
	cells      []byte
	// parallel to cells, nil unless some record carried cell metadata
	metadata []Metadata
}

func NewAlignment(count, geneLength int) *Alignment {
	cells := make([]byte, count*geneLength)
	for i := range cells {
		cells[i] = Gap
	}
	return &Alignment{GeneLength: geneLength, count: count, cells: cells}
}

// offset is the only place the flat layout is spelled out.
func (a *Alignment) offset(dataIndex, position int) int {
	return dataIndex*a.GeneLength + position - 1
}

func (a *Alignment) Contains(dataIndex, position int) bool {
	return dataIndex >= 0 && dataIndex < a.count && position >= 1 && position <= a.GeneLength
}

func (a *Alignment) At(dataIndex, position int) byte {
	return a.cells[a.offset(dataIndex, position)]
}

// Row returns the aligned sequence of dataIndex. The slice must not be modified.
func (a *Alignment) Row(dataIndex int) []byte {
	start := a.offset(dataIndex, 1)
	return a.cells[start : start+a.GeneLength]
}

func (a *Alignment) CellMetadata(dataIndex, position int) Metadata {
	if a.metadata == nil {
		return nil
	}
	return a.metadata[a.offset(dataIndex, position)]
}

func (a *Alignment) set(dataIndex, position int, nucleotide byte, md Metadata) {
	off := a.offset(dataIndex, position)
	a.cells[off] = nucleotide
	if len(md) > 0 {
		if a.metadata == nil {
			a.metadata = make([]Metadata, len(a.cells))
		}
		a.metadata[off] = md
	}
}

// NormalizeNucleotide keeps A, C, G, T (either case) and gaps; anything else is N.
func NormalizeNucleotide(raw string) byte {
	if len(raw) != 1 {
		if raw == "" {
			return Gap
		}
		return Unknown
	}
	switch c := raw[0]; c {
	case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't', Gap:
		return c
	default:
		return Unknown
	}
}

// Annotations holds per sequence, per position feature flags, all false by default.
type Annotations struct {
	Columns    []string
	geneLength int
	flags      []bool
}

func newAnnotations(columns []string, count, geneLength int) *Annotations {
	return &Annotations{
		Columns:    columns,
		geneLength: geneLength,
		flags:      make([]bool, count*geneLength*len(columns)),
	}
}

func (a *Annotations) offset(dataIndex, position int) int {
	return (dataIndex*a.geneLength + position - 1) * len(a.Columns)
}

// At returns one flag per column for the cell. Empty when no annotation columns exist.
func (a *Annotations) At(dataIndex, position int) []bool {
	if a == nil || len(a.Columns) == 0 {
		return nil
	}
	off := a.offset(dataIndex, position)
	return a.flags[off : off+len(a.Columns)]
}

// Feature reports a single named flag.
func (a *Annotations) Feature(dataIndex, position int, column string) bool {
	if a == nil {
		return false
	}
	for i, c := range a.Columns {
		if c == column {
			return a.At(dataIndex, position)[i]
		}
	}
	return false
}
