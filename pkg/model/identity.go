package model

import "fmt"

// IdentityIndex maps mRNA ids to data indices in default dendrogram leaf order.
type IdentityIndex struct {
	ids   []string
	index map[string]int
}

func NewIdentityIndex(leaves []string) (*IdentityIndex, error) {
	idx := &IdentityIndex{
		ids:   make([]string, len(leaves)),
		index: make(map[string]int, len(leaves)),
	}
	for i, id := range leaves {
		if _, dup := idx.index[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateLeaf, id)
		}
		idx.ids[i] = id
		idx.index[id] = i
	}
	return idx, nil
}

func (idx *IdentityIndex) Len() int {
	return len(idx.ids)
}

func (idx *IdentityIndex) Index(mrnaID string) (int, bool) {
	i, ok := idx.index[mrnaID]
	return i, ok
}

func (idx *IdentityIndex) MRNAID(dataIndex int) string {
	return idx.ids[dataIndex]
}
