package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestParseNewickLeafOrder(t *testing.T) {
	root, err := ParseNewick("((e:0.1,b:0.2)x:0.5,(d,(a,c)));")
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "b", "d", "a", "c"}, root.Leaves())
	assert.Equal(t, "x", root.Children[0].Name)
	assert.InDelta(t, 0.2, root.Children[0].Children[1].Length, 1e-9)
}

func TestParseNewickQuotedAndComments(t *testing.T) {
	root, err := ParseNewick("('gene one':1,[note]'it''s':2) ;")
	require.NoError(t, err)
	assert.Equal(t, []string{"gene one", "it's"}, root.Leaves())
}

func TestParseNewickErrors(t *testing.T) {
	_, err := ParseNewick("   ")
	assert.ErrorIs(t, err, ErrEmptyNewick)

	_, err = ParseNewick("(a,b")
	assert.Error(t, err)

	_, err = ParseNewick("(a:x,b);")
	assert.Error(t, err)

	_, err = ParseNewick("(a,b);c")
	assert.Error(t, err)
}

func TestNewickRoundTrip(t *testing.T) {
	in := "((a:1,b:2):0.5,'c d':3);"
	root, err := ParseNewick(in)
	require.NoError(t, err)
	assert.Equal(t, in, root.String())
}

func TestSingleLeaf(t *testing.T) {
	root, err := ParseNewick("only;")
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, root.Leaves())
}

func TestUPGMA(t *testing.T) {
	rows := [][]byte{
		[]byte("AAAA"),
		[]byte("CCCC"),
		[]byte("AAAT"),
		[]byte("CCCG"),
	}
	root, err := UPGMA([]string{"w", "x", "y", "z"}, HammingMatrix(rows))
	require.NoError(t, err)

	require.Len(t, root.Children, 2)
	assert.ElementsMatch(t, []string{"w", "y"}, root.Children[0].Leaves())
	assert.ElementsMatch(t, []string{"x", "z"}, root.Children[1].Leaves())
	assert.InDelta(t, 0.125, root.Children[0].Children[0].Length, 1e-9)
}

func TestUPGMAErrors(t *testing.T) {
	_, err := UPGMA(nil, nil)
	assert.ErrorIs(t, err, ErrNoLabels)

	_, err = UPGMA([]string{"a", "b", "c"}, mat.NewSymDense(2, nil))
	assert.Error(t, err)

	root, err := UPGMA([]string{"solo"}, mat.NewSymDense(1, nil))
	require.NoError(t, err)
	assert.Equal(t, "solo", root.Name)
}
