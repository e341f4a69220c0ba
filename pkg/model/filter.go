package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

type FilterOperator string

const (
	OpBetween          FilterOperator = "between"
	OpEquals           FilterOperator = "equals"
	OpGreaterThan      FilterOperator = "greater-than"
	OpLessThan         FilterOperator = "less-than"
	OpGreaterThanEqual FilterOperator = "greater-than-equal"
	OpLessThanEqual    FilterOperator = "less-than-equal"
	OpIn               FilterOperator = "in"
	OpNotIn            FilterOperator = "not-in"
)

// VariableColumn is the pseudo column of position filters that holds for positions
// with a variability record.
const VariableColumn = "variable"

type MetadataFilter struct {
	Column   string         `json:"column"`
	Operator FilterOperator `json:"operator"`
	Values   []any          `json:"values"`
}

func (f MetadataFilter) Validate() error {
	if f.Column == "" {
		return fmt.Errorf("%w: missing column", ErrInvalidFilter)
	}
	need := 1
	switch f.Operator {
	case OpBetween:
		need = 2
	case OpEquals, OpGreaterThan, OpLessThan, OpGreaterThanEqual, OpLessThanEqual:
	case OpIn, OpNotIn:
		need = 0
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperator, f.Operator)
	}
	if len(f.Values) < need {
		return fmt.Errorf("%w: %s on %s needs %d value(s)", ErrInvalidFilter, f.Operator, f.Column, need)
	}
	return nil
}

// Match evaluates the filter against one value. nil never satisfies a comparison;
// in and not-in also look inside list values.
func (f MetadataFilter) Match(v any) bool {
	switch f.Operator {
	case OpIn:
		return v != nil && f.containsAny(v)
	case OpNotIn:
		return v == nil || !f.containsAny(v)
	}

	if v == nil {
		return false
	}
	if _, isList := v.([]any); isList {
		return false
	}

	switch f.Operator {
	case OpEquals:
		return equalValues(v, f.Values[0])
	case OpBetween:
		lo, ok1 := compareValues(v, f.Values[0])
		hi, ok2 := compareValues(v, f.Values[1])
		return ok1 && ok2 && lo >= 0 && hi <= 0
	case OpGreaterThan:
		c, ok := compareValues(v, f.Values[0])
		return ok && c > 0
	case OpLessThan:
		c, ok := compareValues(v, f.Values[0])
		return ok && c < 0
	case OpGreaterThanEqual:
		c, ok := compareValues(v, f.Values[0])
		return ok && c >= 0
	case OpLessThanEqual:
		c, ok := compareValues(v, f.Values[0])
		return ok && c <= 0
	default:
		return false
	}
}

func (f MetadataFilter) containsAny(v any) bool {
	items, isList := v.([]any)
	if !isList {
		items = []any{v}
	}
	for _, item := range items {
		for _, want := range f.Values {
			if equalValues(item, want) {
				return true
			}
		}
	}
	return false
}

// MatchesAll is the logical AND of filters over the values returned by value.
func MatchesAll(filters []MetadataFilter, value func(column string) any) bool {
	for _, f := range filters {
		if !f.Match(value(f.Column)) {
			return false
		}
	}
	return true
}

// ApplyMetadataFilter keeps the records satisfying every filter. It never modifies records.
func ApplyMetadataFilter[T any](records []T, filters []MetadataFilter, value func(record T, column string) any) []T {
	res := make([]T, 0, len(records))
	for _, r := range records {
		if MatchesAll(filters, func(column string) any { return value(r, column) }) {
			res = append(res, r)
		}
	}
	return res
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func compareValues(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		default:
			return 0, true
		}
	}
	if sa, ok := a.(string); ok {
		sb, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(sa, sb), true
	}
	if ba, ok := a.(bool); ok {
		bb, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case ba == bb:
			return 0, true
		case !ba:
			return -1, true
		default:
			return 1, true
		}
	}
	return 0, false
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	c, ok := compareValues(a, b)
	return ok && c == 0
}

// Value accessors. Each dataset exposes a few built in columns besides its metadata.

func sequenceValue(seq *Sequence, column string) any {
	switch column {
	case "mRNA_id":
		return seq.MRNAID
	case "genome_nr":
		return seq.GenomeNr
	default:
		return seq.Metadata[column]
	}
}

func homologyValue(h *Homology, column string) any {
	switch column {
	case "id":
		return h.ID
	case "name":
		return h.Name
	case "members":
		return h.Members
	case "alignment_length":
		return h.AlignmentLength
	default:
		return h.Metadata[column]
	}
}

func positionValue(vp *VariablePosition, column string) any {
	if column == VariableColumn {
		return vp != nil
	}
	if vp == nil {
		return nil
	}
	return vp.Metadata[column]
}

func validateFilters(filters []MetadataFilter) error {
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) SequenceFilters() []MetadataFilter {
	return slices.Clone(s.sequenceFilters)
}

func (s *Session) PositionFilters() []MetadataFilter {
	return slices.Clone(s.positionFilters)
}

func (s *Session) HomologyFilters() []MetadataFilter {
	return slices.Clone(s.homologyFilters)
}

func (s *Session) PositionRange() PositionRange {
	return s.positionRange
}

func (s *Session) AddSequenceFilter(f MetadataFilter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.sequenceFilters = append(s.sequenceFilters, f)
	s.filterVersion++
	return nil
}

func (s *Session) SetSequenceFilters(filters []MetadataFilter) error {
	if err := validateFilters(filters); err != nil {
		return err
	}
	s.sequenceFilters = slices.Clone(filters)
	s.filterVersion++
	return nil
}

func (s *Session) SetPositionFilters(filters []MetadataFilter) error {
	if err := validateFilters(filters); err != nil {
		return err
	}
	s.positionFilters = slices.Clone(filters)
	s.positionVersion++
	return nil
}

func (s *Session) SetHomologyFilters(filters []MetadataFilter) error {
	if err := validateFilters(filters); err != nil {
		return err
	}
	s.homologyFilters = slices.Clone(filters)
	return nil
}

func (s *Session) SetPositionRange(r PositionRange) error {
	if s.data == nil {
		return ErrNotInitialized
	}
	if r.Start < 1 || r.End > s.data.GeneLength || r.Start > r.End {
		return fmt.Errorf("%w: [%d, %d]", ErrInvalidPosition, r.Start, r.End)
	}
	s.positionRange = r
	s.positionVersion++
	return nil
}

// SortedDataIndicesFiltered is the sort permutation restricted to sequences passing
// the sequence filters. The returned slice is shared and must not be modified.
func (s *Session) SortedDataIndicesFiltered() []int {
	versions := [2]uint64{s.sortVersion, s.filterVersion}
	if s.cache.filtered != nil && s.cache.filteredVersions == versions {
		return s.cache.filtered
	}
	if s.data == nil {
		return nil
	}
	filtered := ApplyMetadataFilter(s.sortedDataIndices, s.sequenceFilters, func(di int, column string) any {
		return sequenceValue(s.data.Sequences[di], column)
	})
	s.cache.filtered = filtered
	s.cache.filteredVersions = versions
	return filtered
}

// PositionsFiltered lists the positions of the position range passing the position
// filters. The returned slice is shared and must not be modified.
func (s *Session) PositionsFiltered() []int {
	if s.cache.positions != nil && s.cache.positionsVersion == s.positionVersion {
		return s.cache.positions
	}
	if s.data == nil {
		return nil
	}
	positions := make([]int, 0, s.positionRange.End-s.positionRange.Start+1)
	for p := s.positionRange.Start; p <= s.positionRange.End; p++ {
		positions = append(positions, p)
	}
	positions = FilterPositions(positions, s.data.VariablePositions, s.positionFilters)
	s.cache.positions = positions
	s.cache.positionsVersion = s.positionVersion
	return positions
}

// FilterPositions keeps the positions whose variability record passes every filter.
func FilterPositions(positions []int, variable []*VariablePosition, filters []MetadataFilter) []int {
	return ApplyMetadataFilter(positions, filters, func(p int, column string) any {
		var vp *VariablePosition
		if p >= 1 && p <= len(variable) {
			vp = variable[p-1]
		}
		return positionValue(vp, column)
	})
}

func (s *Session) HomologiesFiltered() []*Homology {
	return ApplyMetadataFilter(s.homologies, s.homologyFilters, homologyValue)
}

// GroupsFiltered restricts members to sequences passing the filters and drops groups
// left empty. Size keeps the stored group size.
func (s *Session) GroupsFiltered() []*Group {
	if s.data == nil {
		return nil
	}
	visible := make(map[int]bool)
	for _, di := range s.SortedDataIndicesFiltered() {
		visible[di] = true
	}
	res := make([]*Group, 0, len(s.groups))
	for _, g := range s.groups {
		c := g.clone()
		c.DataIndices = slices.DeleteFunc(c.DataIndices, func(di int) bool { return !visible[di] })
		if len(c.DataIndices) > 0 {
			res = append(res, c)
		}
	}
	return res
}
