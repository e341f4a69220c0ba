package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterOperators(t *testing.T) {
	for _, tc := range []struct {
		filter MetadataFilter
		value  any
		want   bool
	}{
		{MetadataFilter{"c", OpEquals, []any{"NL"}}, "NL", true},
		{MetadataFilter{"c", OpEquals, []any{"NL"}}, "TH", false},
		{MetadataFilter{"c", OpEquals, []any{2.0}}, 2, true},
		{MetadataFilter{"c", OpEquals, []any{true}}, true, true},
		{MetadataFilter{"c", OpBetween, []any{1.0, 3.0}}, 3.0, true},
		{MetadataFilter{"c", OpBetween, []any{1.0, 3.0}}, 0.5, false},
		{MetadataFilter{"c", OpGreaterThan, []any{2.0}}, 2.0, false},
		{MetadataFilter{"c", OpGreaterThanEqual, []any{2.0}}, 2.0, true},
		{MetadataFilter{"c", OpLessThan, []any{2.0}}, 1.0, true},
		{MetadataFilter{"c", OpLessThanEqual, []any{2.0}}, 2.5, false},
		{MetadataFilter{"c", OpLessThan, []any{"m"}}, "a", true},
		{MetadataFilter{"c", OpGreaterThan, []any{2.0}}, "3", false},
		{MetadataFilter{"c", OpIn, []any{"NL", "TH"}}, "TH", true},
		{MetadataFilter{"c", OpIn, []any{"NL", "TH"}}, "US", false},
		{MetadataFilter{"c", OpIn, []any{"NL"}}, []any{"US", "NL"}, true},
		{MetadataFilter{"c", OpNotIn, []any{"NL"}}, []any{"US", "NL"}, false},
		{MetadataFilter{"c", OpNotIn, []any{"NL"}}, "US", true},
		{MetadataFilter{"c", OpNotIn, []any{"NL"}}, nil, true},
		{MetadataFilter{"c", OpIn, []any{"NL"}}, nil, false},
		{MetadataFilter{"c", OpGreaterThan, []any{1.0}}, []any{2.0}, false},
	} {
		assert.Equal(t, tc.want, tc.filter.Match(tc.value), "%v %v", tc.filter, tc.value)
	}
}

func TestNullNeverSatisfiesComparisons(t *testing.T) {
	for _, op := range []FilterOperator{OpEquals, OpGreaterThan, OpLessThan, OpGreaterThanEqual, OpLessThanEqual} {
		assert.False(t, MetadataFilter{"c", op, []any{1.0}}.Match(nil), op)
	}
	assert.False(t, MetadataFilter{"c", OpBetween, []any{-1e9, 1e9}}.Match(nil))
}

func TestFilterValidate(t *testing.T) {
	assert.NoError(t, MetadataFilter{"c", OpIn, nil}.Validate())
	assert.ErrorIs(t, MetadataFilter{"c", "like", []any{"x"}}.Validate(), ErrUnknownOperator)
	assert.ErrorIs(t, MetadataFilter{"c", OpBetween, []any{1.0}}.Validate(), ErrInvalidFilter)
	assert.ErrorIs(t, MetadataFilter{"", OpEquals, []any{1.0}}.Validate(), ErrInvalidFilter)
	assert.ErrorIs(t, MetadataFilter{"c", OpEquals, nil}.Validate(), ErrInvalidFilter)
}

func TestFilteringIsIdempotentAndOrderIndependent(t *testing.T) {
	records := []Metadata{
		{"n": 1.0, "c": "NL"}, {"n": 5.0, "c": "TH"}, {"n": 3.0, "c": "NL"},
		{"c": "US"}, {"n": 4.0}, {"n": 2.0, "c": "TH"},
	}
	value := func(m Metadata, column string) any { return m[column] }
	filters := []MetadataFilter{
		{"n", OpGreaterThanEqual, []any{2.0}},
		{"c", OpIn, []any{"NL", "TH"}},
		{"n", OpLessThan, []any{5.0}},
	}

	once := ApplyMetadataFilter(records, filters, value)
	require.Len(t, once, 2)
	assert.Equal(t, once, ApplyMetadataFilter(once, filters, value))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]MetadataFilter(nil), filters...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, once, ApplyMetadataFilter(records, shuffled, value))
	}
	assert.Len(t, records, 6)
}

func TestVariablePositionFilter(t *testing.T) {
	variable := []*VariablePosition{nil, {Position: 2, Metadata: Metadata{"is_snp": true}}, nil, {Position: 4, Metadata: Metadata{}}}

	isVariable := []MetadataFilter{{Column: VariableColumn, Operator: OpEquals, Values: []any{true}}}
	assert.Equal(t, []int{2, 4}, FilterPositions([]int{1, 2, 3, 4}, variable, isVariable))

	isSNP := []MetadataFilter{{Column: "is_snp", Operator: OpEquals, Values: []any{true}}}
	assert.Equal(t, []int{2}, FilterPositions([]int{1, 2, 3, 4}, variable, isSNP))
}

func TestSessionPositionsFiltered(t *testing.T) {
	s := fiveGenes.session(t)
	assert.Equal(t, []int{1, 2, 3, 4}, s.PositionsFiltered())

	require.NoError(t, s.SetPositionFilters([]MetadataFilter{{Column: VariableColumn, Operator: OpEquals, Values: []any{true}}}))
	assert.Equal(t, []int{1, 4}, s.PositionsFiltered())

	require.NoError(t, s.SetPositionRange(PositionRange{Start: 2, End: 4}))
	assert.Equal(t, []int{4}, s.PositionsFiltered())

	assert.ErrorIs(t, s.SetPositionRange(PositionRange{Start: 0, End: 4}), ErrInvalidPosition)
	assert.ErrorIs(t, s.SetPositionRange(PositionRange{Start: 3, End: 2}), ErrInvalidPosition)
	assert.ErrorIs(t, s.SetPositionFilters([]MetadataFilter{{Column: "x"}}), ErrUnknownOperator)
}

func TestSequenceFilterLeavesSortAndGroupsAlone(t *testing.T) {
	s := fiveGenes.session(t)
	selectRange(t, s, 3, 3)
	g, err := s.CreateGroup(GroupAttributes{})
	require.NoError(t, err)
	selectRange(t, s, 1, 2)
	_, err = s.CreateGroup(GroupAttributes{})
	require.NoError(t, err)

	require.NoError(t, s.AddSequenceFilter(MetadataFilter{Column: "country", Operator: OpIn, Values: []any{"NL", "TH"}}))
	assert.Equal(t, []int{0, 1, 2, 4}, s.SortedDataIndicesFiltered())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s.SortedDataIndices())

	filtered := s.GroupsFiltered()
	require.Len(t, filtered, 1)
	assert.Equal(t, []int{1, 2}, filtered[0].DataIndices)
	require.Len(t, s.Groups(), 2)
	assert.Equal(t, []int{3}, s.Groups()[0].DataIndices)
	assert.Equal(t, g.ID, s.Groups()[0].ID)

	require.NoError(t, s.AddSequenceFilter(MetadataFilter{Column: "genome_nr", Operator: OpLessThan, Values: []any{2.0}}))
	assert.Equal(t, []int{0, 2}, s.SortedDataIndicesFiltered())
	assert.Len(t, s.SequenceFilters(), 2)

	require.NoError(t, s.SetSequenceFilters(nil))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s.SortedDataIndicesFiltered())
}

func TestFilteredViewTracksSortChanges(t *testing.T) {
	s := fiveGenes.session(t)
	require.NoError(t, s.AddSequenceFilter(MetadataFilter{Column: "mRNA_id", Operator: OpNotIn, Values: []any{"d"}}))
	assert.Equal(t, []int{0, 1, 3, 4}, s.SortedDataIndicesFiltered())

	require.NoError(t, s.ChangeSorting(MRNAIDSorting{}))
	assert.Equal(t, []int{3, 1, 4, 0}, s.SortedDataIndicesFiltered())
}

func TestHomologiesFiltered(t *testing.T) {
	s := NewSession(nil)
	s.SetHomologies([]*Homology{
		{ID: "1", Members: 5, AlignmentLength: 900, Metadata: Metadata{"core": true}},
		{ID: "2", Members: 50, AlignmentLength: 1200, Metadata: Metadata{"core": false}},
		{ID: "3", Members: 12, AlignmentLength: 300},
	})

	require.NoError(t, s.SetHomologyFilters([]MetadataFilter{{Column: "members", Operator: OpGreaterThan, Values: []any{10.0}}}))
	var ids []string
	for _, h := range s.HomologiesFiltered() {
		ids = append(ids, h.ID)
	}
	assert.Equal(t, []string{"2", "3"}, ids)

	require.NoError(t, s.SetHomologyFilters([]MetadataFilter{{Column: "core", Operator: OpEquals, Values: []any{true}}}))
	require.Len(t, s.HomologiesFiltered(), 1)
	assert.Equal(t, "1", s.HomologiesFiltered()[0].ID)
}
