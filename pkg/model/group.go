package model

import (
	"encoding/json"
	"fmt"
	"slices"
)

var groupPalette = []string{
	"#8b5cf6", "#06b6d4", "#22c55e", "#f59e0b", "#ef4444",
	"#14b8a6", "#eab308", "#3b82f6", "#d946ef", "#f97316",
}

// Group is a user-made cluster of sequences. Members are unique and belong to no
// other group.
type Group struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	IsCollapsed bool   `json:"isCollapsed"`
	IsColorized bool   `json:"isColorized"`
	DataIndices []int  `json:"dataIndices"`
	Size        int    `json:"size"`
}

func (g *Group) clone() *Group {
	c := *g
	c.DataIndices = slices.Clone(g.DataIndices)
	return &c
}

type GroupAttributes struct {
	Name        string `json:"name"`
	Color       string `json:"color"`
	IsCollapsed bool   `json:"isCollapsed"`
	IsColorized bool   `json:"isColorized"`
}

// GroupPatch changes only the fields that are set.
type GroupPatch struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	IsCollapsed *bool   `json:"isCollapsed"`
	IsColorized *bool   `json:"isColorized"`
}

// Groups returns copies of all groups in creation order.
func (s *Session) Groups() []*Group {
	res := make([]*Group, len(s.groups))
	for i, g := range s.groups {
		res[i] = g.clone()
	}
	return res
}

func (s *Session) group(id int) (int, *Group, error) {
	for i, g := range s.groups {
		if g.ID == id {
			return i, g, nil
		}
	}
	return -1, nil, fmt.Errorf("%w: %d", ErrGroupNotFound, id)
}

// CreateGroup turns the current selection into a new group and clears the selection.
func (s *Session) CreateGroup(attrs GroupAttributes) (*Group, error) {
	if s.data == nil {
		return nil, ErrNotInitialized
	}
	if len(s.selection) == 0 {
		return nil, ErrEmptySelection
	}

	id := s.nextGroupID
	s.nextGroupID++

	g := &Group{
		ID:          id,
		Name:        attrs.Name,
		Color:       attrs.Color,
		IsCollapsed: attrs.IsCollapsed,
		IsColorized: attrs.IsColorized,
		DataIndices: slices.Clone(s.selection),
		Size:        len(s.selection),
	}
	if g.Name == "" {
		g.Name = fmt.Sprintf("Group %d", id)
	}
	if g.Color == "" {
		g.Color = groupPalette[(id-1)%len(groupPalette)]
	}

	s.groups = append(s.groups, g)
	s.selection = nil
	s.groupVersion++
	return g.clone(), nil
}

// DeleteGroup removes a group and clears the reference when it pointed at it.
func (s *Session) DeleteGroup(id int) error {
	i, _, err := s.group(id)
	if err != nil {
		return err
	}
	s.groups = slices.Delete(s.groups, i, i+1)
	if ref, ok := s.reference.(GroupReference); ok && ref.ID == id {
		s.reference = nil
	}
	s.groupVersion++
	return nil
}

// ExpandGroup adds the current selection to a group and clears the selection.
func (s *Session) ExpandGroup(id int) (*Group, error) {
	_, g, err := s.group(id)
	if err != nil {
		return nil, err
	}
	for _, di := range s.selection {
		if !slices.Contains(g.DataIndices, di) {
			g.DataIndices = append(g.DataIndices, di)
		}
	}
	g.Size = len(g.DataIndices)
	s.selection = nil
	s.groupVersion++
	return g.clone(), nil
}

func (s *Session) UpdateGroup(id int, patch GroupPatch) (*Group, error) {
	_, g, err := s.group(id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		g.Name = *patch.Name
	}
	if patch.Color != nil {
		g.Color = *patch.Color
	}
	if patch.IsCollapsed != nil {
		g.IsCollapsed = *patch.IsCollapsed
	}
	if patch.IsColorized != nil {
		g.IsColorized = *patch.IsColorized
	}
	s.groupVersion++
	return g.clone(), nil
}

// GroupLookup maps every data index to its group, nil when ungrouped. The returned
// slice is shared and must not be modified.
func (s *Session) GroupLookup() []*Group {
	if s.data == nil {
		return nil
	}
	if s.cache.lookup != nil && s.cache.lookupVersion == s.groupVersion {
		return s.cache.lookup
	}
	lookup := make([]*Group, s.data.SequenceCount())
	for _, g := range s.groups {
		for _, di := range g.DataIndices {
			lookup[di] = g
		}
	}
	s.cache.lookup = lookup
	s.cache.lookupVersion = s.groupVersion
	return lookup
}

// DrawItem is one row of the collapsed draw order: a sequence or a collapsed group.
type DrawItem struct {
	DataIndex int
	GroupID   int
}

func dataItem(di int) DrawItem { return DrawItem{DataIndex: di} }

func groupItem(id int) DrawItem { return DrawItem{DataIndex: -1, GroupID: id} }

func (d DrawItem) IsGroup() bool {
	return d.GroupID != 0
}

func (d DrawItem) MarshalJSON() ([]byte, error) {
	if d.IsGroup() {
		return json.Marshal(struct {
			Type string `json:"type"`
			ID   int    `json:"id"`
		}{"group", d.GroupID})
	}
	return json.Marshal(struct {
		Type      string `json:"type"`
		DataIndex int    `json:"dataIndex"`
	}{"data", d.DataIndex})
}

// SortedDataIndicesCollapsed replaces the filtered members of each collapsed group by
// one group row, placed at the rightmost-median draw position of those members.
// The returned slice is shared and must not be modified.
func (s *Session) SortedDataIndicesCollapsed() []DrawItem {
	versions := [3]uint64{s.sortVersion, s.filterVersion, s.groupVersion}
	if s.cache.collapsed != nil && s.cache.collapsedVersions == versions {
		return s.cache.collapsed
	}

	filtered := s.SortedDataIndicesFiltered()
	lookup := s.GroupLookup()

	slots := make(map[int][]int)
	for pos, di := range filtered {
		if g := lookup[di]; g != nil && g.IsCollapsed {
			slots[g.ID] = append(slots[g.ID], pos)
		}
	}
	markers := make(map[int]int, len(slots))
	for id, positions := range slots {
		markers[positions[len(positions)/2]] = id
	}

	collapsed := make([]DrawItem, 0, len(filtered))
	for pos, di := range filtered {
		if g := lookup[di]; g != nil && g.IsCollapsed {
			if id, ok := markers[pos]; ok {
				collapsed = append(collapsed, groupItem(id))
			}
			continue
		}
		collapsed = append(collapsed, dataItem(di))
	}

	s.cache.collapsed = collapsed
	s.cache.collapsedVersions = versions
	return collapsed
}
