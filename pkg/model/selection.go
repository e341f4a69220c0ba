package model

// dragState exists only while a drag gesture is in progress.
type dragState struct {
	anchor     int
	cumulative bool
	frozen     []int
}

func (s *Session) IsDragging() bool {
	return s.drag != nil
}

// Selection returns the selected data indices in selection order.
func (s *Session) Selection() []int {
	return append([]int(nil), s.selection...)
}

func (s *Session) ClearSelection() {
	s.selection = nil
}

// DragStart anchors a gesture at a draw position of the collapsed order and selects
// the anchor row. A cumulative drag keeps the selection made before it.
func (s *Session) DragStart(anchor int, cumulative bool) error {
	if s.data == nil {
		return ErrNotInitialized
	}
	d := &dragState{anchor: anchor, cumulative: cumulative}
	if cumulative {
		d.frozen = append([]int(nil), s.selection...)
	}
	s.drag = d
	s.dragUpdate(anchor)
	return nil
}

// DragUpdate reselects the range between the anchor and position. Ignored when idle.
func (s *Session) DragUpdate(position int) {
	if s.drag == nil {
		return
	}
	s.dragUpdate(position)
}

// DragEnd optionally applies a final position, then always returns to idle.
func (s *Session) DragEnd(position *int) {
	defer func() { s.drag = nil }()
	if s.drag != nil && position != nil {
		s.dragUpdate(*position)
	}
}

func (s *Session) dragUpdate(position int) {
	collapsed := s.SortedDataIndicesCollapsed()
	lookup := s.GroupLookup()

	selected := make(map[int]bool, len(s.drag.frozen))
	next := make([]int, 0, len(s.drag.frozen))
	for _, di := range s.drag.frozen {
		// grouped while the drag was running
		if lookup[di] != nil {
			continue
		}
		selected[di] = true
		next = append(next, di)
	}

	if len(collapsed) > 0 {
		lo := clamp(min(s.drag.anchor, position), 0, len(collapsed)-1)
		hi := clamp(max(s.drag.anchor, position), 0, len(collapsed)-1)
		for _, item := range collapsed[lo : hi+1] {
			if item.IsGroup() || lookup[item.DataIndex] != nil || selected[item.DataIndex] {
				continue
			}
			selected[item.DataIndex] = true
			next = append(next, item.DataIndex)
		}
	}

	s.selection = next
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
