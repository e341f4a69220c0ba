package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupReferenceStrings(t *testing.T) {
	s := fiveGenes.session(t)
	selectRange(t, s, 0, 1)
	require.NoError(t, s.DragStart(3, true))
	s.DragEnd(nil)
	g, err := s.CreateGroup(GroupAttributes{})
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 3}, g.DataIndices)

	assert.Nil(t, s.ReferenceStrings([]int{1, 2}))

	require.NoError(t, s.SetReference(GroupReference{ID: g.ID}))
	// position 3 holds G, G and a lowercase c
	assert.Equal(t, []string{"A", "C", "CG", "AT"}, s.ReferenceStrings([]int{1, 2, 3, 4}))
	assert.Equal(t, []string{"AT"}, s.ReferenceStrings([]int{4}))
}

func TestGroupReferenceCanonicalOrder(t *testing.T) {
	s := fiveGenes.session(t)
	selectRange(t, s, 2, 2)
	require.NoError(t, s.DragStart(4, true))
	s.DragEnd(nil)
	g, err := s.CreateGroup(GroupAttributes{})
	require.NoError(t, err)

	require.NoError(t, s.SetReference(GroupReference{ID: g.ID}))
	assert.Equal(t, []string{"AT", "CG", "G", "A-"}, s.ReferenceStrings([]int{1, 2, 3, 4}))
}

func TestDataReferenceStrings(t *testing.T) {
	s := fiveGenes.session(t)
	require.NoError(t, s.SetReference(DataReference{DataIndex: 3}))
	assert.Equal(t, []string{"A", "c"}, s.ReferenceStrings([]int{1, 3}))

	require.NoError(t, s.SetReference(nil))
	assert.Nil(t, s.Reference())
	assert.Nil(t, s.ReferenceStrings([]int{1}))
}

func TestSetReferenceValidates(t *testing.T) {
	assert.ErrorIs(t, NewSession(nil).SetReference(DataReference{DataIndex: 0}), ErrNotInitialized)

	s := fiveGenes.session(t)
	assert.ErrorIs(t, s.SetReference(DataReference{DataIndex: 5}), ErrInvalidDataIndex)
	assert.ErrorIs(t, s.SetReference(DataReference{DataIndex: -1}), ErrInvalidDataIndex)
	assert.ErrorIs(t, s.SetReference(GroupReference{ID: 42}), ErrGroupNotFound)
	assert.Nil(t, s.Reference())
}

func TestReferenceJSON(t *testing.T) {
	for _, raw := range []string{`{"type":"group","id":2}`, `{"type":"data","dataIndex":0}`} {
		var j ReferenceJSON
		require.NoError(t, json.Unmarshal([]byte(raw), &j))
		ref, err := j.Decode()
		require.NoError(t, err)
		out, err := json.Marshal(EncodeReference(ref))
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	}

	for _, raw := range []string{`{"type":"group"}`, `{"type":"data"}`, `{"type":"both","id":1}`} {
		var j ReferenceJSON
		require.NoError(t, json.Unmarshal([]byte(raw), &j))
		_, err := j.Decode()
		assert.ErrorIs(t, err, ErrInvalidReference, raw)
	}
	assert.Nil(t, EncodeReference(nil))
}
