package model

import (
	"slices"

	"github.com/yumyai/panva/pkg/tree"
)

// PositionRange bounds the positions shown, both ends inclusive and 1-indexed.
type PositionRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Session is the single-threaded state of one explorer: the loaded homology group,
// sort order, selection, groups, filters and reference. Derived views are memoized
// against version counters of the inputs they read. Store serializes access.
type Session struct {
	data       *HomologyData
	homologies []*Homology

	sorting           Sorting
	sortedDataIndices []int

	selection []int
	drag      *dragState

	groups      []*Group
	nextGroupID int
	reference   Reference

	sequenceFilters []MetadataFilter
	positionFilters []MetadataFilter
	homologyFilters []MetadataFilter
	positionRange   PositionRange

	quantitative map[string]bool

	sortVersion     uint64
	groupVersion    uint64
	filterVersion   uint64
	positionVersion uint64
	cache           derivedCache
}

func NewSession(quantitativeColumns []string) *Session {
	s := &Session{
		sorting:      DefaultSorting(),
		nextGroupID:  1,
		quantitative: make(map[string]bool, len(quantitativeColumns)),
	}
	for _, c := range quantitativeColumns {
		s.quantitative[c] = true
	}
	return s
}

func (s *Session) IsInitialized() bool {
	return s.data != nil
}

func (s *Session) Data() *HomologyData {
	return s.data
}

func (s *Session) Sorting() Sorting {
	return s.sorting
}

// SortedDataIndices returns a copy of the current permutation.
func (s *Session) SortedDataIndices() []int {
	return slices.Clone(s.sortedDataIndices)
}

// Install replaces the homology group in one step. Everything tied to the previous
// group's data indices is dropped; filters survive.
func (s *Session) Install(data *HomologyData) {
	s.data = data
	s.sorting = DefaultSorting()
	s.sortedDataIndices = identityOrder(data.SequenceCount())
	s.selection = nil
	s.drag = nil
	s.groups = nil
	s.reference = nil
	s.positionRange = PositionRange{Start: 1, End: data.GeneLength}

	s.sortVersion++
	s.groupVersion++
	s.filterVersion++
	s.positionVersion++
	s.cache = derivedCache{}
}

// InstallCustomDendrogram stores a generated dendrogram and sorts by it.
func (s *Session) InstallCustomDendrogram(root *tree.Node) error {
	if s.data == nil {
		return ErrNotInitialized
	}
	s.data.Trees[DendroCustom] = root
	return s.applySorting(TreeSorting{Tree: DendroCustom})
}

// TreeNames lists the trees usable for sorting.
func (s *Session) TreeNames() []string {
	if s.data == nil {
		return nil
	}
	names := make([]string, 0, len(s.data.Trees))
	for name := range s.data.Trees {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Session) SetHomologies(homologies []*Homology) {
	s.homologies = homologies
}

type derivedCache struct {
	lookup        []*Group
	lookupVersion uint64

	filtered         []int
	filteredVersions [2]uint64

	collapsed         []DrawItem
	collapsedVersions [3]uint64

	positions        []int
	positionsVersion uint64
}
