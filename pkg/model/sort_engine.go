package model

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/maruel/natural"
	"github.com/yumyai/panva/logger"
	"go.uber.org/zap"
)

// ChangeSorting applies next. Requesting the current strategy again reverses the
// order, except for tree orderings which stay put. A tree that is not loaded
// leaves everything unchanged.
func (s *Session) ChangeSorting(next Sorting) error {
	if s.data == nil {
		return ErrNotInitialized
	}

	if next == s.sorting {
		if reversible(next) {
			slices.Reverse(s.sortedDataIndices)
			s.sortVersion++
		}
		return nil
	}

	return s.applySorting(next)
}

func (s *Session) applySorting(next Sorting) error {
	order, err := s.computeOrder(next)
	if errors.Is(err, ErrUnknownTree) {
		logger.Debug("Sorting by unavailable tree ignored", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}

	s.sorting = next
	s.sortedDataIndices = order
	s.sortVersion++
	return nil
}

func (s *Session) computeOrder(next Sorting) ([]int, error) {
	data := s.data
	current := s.sortedDataIndices

	switch v := next.(type) {
	case TreeSorting:
		return treeOrder(data, v.Tree, current)

	case MRNAIDSorting:
		return naturalOrder(data), nil

	case MetadataSorting:
		value := func(di int) any { return data.Sequences[di].Metadata[v.Column] }
		if s.quantitative[v.Column] {
			return quantitativeOrder(current, value), nil
		}
		return medianRightOrder(current, func(di int) string { return valueKey(value(di)) }), nil

	case PositionSorting:
		if v.Position < 1 || v.Position > data.GeneLength {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, v.Position)
		}
		return medianRightOrder(current, func(di int) string {
			return string(data.Alignment.At(di, v.Position))
		}), nil

	default:
		panic(fmt.Sprintf("unhandled sorting %T", next))
	}
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// treeOrder follows leaf order. Default and custom dendrograms are labelled by mRNA id,
// auxiliary trees by genome number. Indices the tree does not reach keep their
// current relative order at the end.
func treeOrder(data *HomologyData, name string, current []int) ([]int, error) {
	n := data.SequenceCount()
	if name == DendroDefault {
		return identityOrder(n), nil
	}

	root := data.Trees[name]
	if root == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTree, name)
	}

	seen := make([]bool, n)
	order := make([]int, 0, n)
	add := func(di int) {
		if !seen[di] {
			seen[di] = true
			order = append(order, di)
		}
	}

	if name == DendroCustom {
		for _, leaf := range root.Leaves() {
			if di, ok := data.Identity.Index(leaf); ok {
				add(di)
			}
		}
	} else {
		byGenome := data.DataIndicesByGenome()
		for _, leaf := range root.Leaves() {
			nr, err := strconv.Atoi(strings.TrimSpace(leaf))
			if err != nil {
				continue
			}
			for _, di := range byGenome[nr] {
				add(di)
			}
		}
	}

	for _, di := range current {
		add(di)
	}
	return order, nil
}

// naturalOrder sorts by mRNA id, numeric aware and case insensitive.
func naturalOrder(data *HomologyData) []int {
	order := identityOrder(data.SequenceCount())
	ids := make([]string, len(order))
	lower := make([]string, len(order))
	for di := range order {
		ids[di] = data.Identity.MRNAID(di)
		lower[di] = strings.ToLower(ids[di])
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if lower[a] != lower[b] {
			return naturalCompare(lower[a], lower[b])
		}
		return naturalCompare(ids[a], ids[b])
	})
	return order
}

func naturalCompare(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	default:
		return 0
	}
}

// quantitativeOrder stable sorts by numeric value. Missing and non numeric values
// count as the lowest value.
func quantitativeOrder(current []int, value func(int) any) []int {
	order := slices.Clone(current)
	nums := make(map[int]float64, len(order))
	for _, di := range order {
		if f, ok := toFloat(value(di)); ok {
			nums[di] = f
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		fa, okA := nums[a]
		fb, okB := nums[b]
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return -1
		case !okB:
			return 1
		}
		return cmp.Compare(fa, fb)
	})
	return order
}

// medianRightOrder gathers draw positions sharing a key. Each key is anchored at the
// draw position at offset n/2 of its members, then draws are stable sorted by anchor.
// Adjacent equal values therefore stay adjacent and move as a block.
func medianRightOrder(current []int, key func(dataIndex int) string) []int {
	n := len(current)
	keys := make([]string, n)
	members := make(map[string][]int)
	for pos, di := range current {
		k := key(di)
		keys[pos] = k
		members[k] = append(members[k], pos)
	}

	anchor := make(map[string]int, len(members))
	for k, positions := range members {
		anchor[k] = positions[len(positions)/2]
	}

	draws := identityOrder(n)
	slices.SortStableFunc(draws, func(a, b int) int {
		return cmp.Compare(anchor[keys[a]], anchor[keys[b]])
	})

	order := make([]int, n)
	for i, pos := range draws {
		order[i] = current[pos]
	}
	return order
}

func valueKey(v any) string {
	if v == nil {
		return "<nil>"
	}
	if f, ok := toFloat(v); ok {
		return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
	}
	return fmt.Sprintf("%T:%v", v, v)
}
