package tree

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var ErrNoLabels = errors.New("upgma: no labels")

// UPGMA builds an ultrametric tree from a symmetric distance matrix whose rows follow
// labels. Ties are broken by the first pair found in row-major order.
func UPGMA(labels []string, dist *mat.SymDense) (*Node, error) {
	n := len(labels)
	if n == 0 {
		return nil, ErrNoLabels
	}
	if r, _ := dist.Dims(); r != n {
		return nil, errors.New("upgma: distance matrix does not match labels")
	}

	// Work on a copy; merged clusters overwrite the row of their lower index.
	d := mat.NewSymDense(n, nil)
	d.CopySym(dist)

	nodes := make([]*Node, n)
	heights := make([]float64, n)
	sizes := make([]float64, n)
	active := make([]bool, n)
	for i, label := range labels {
		nodes[i] = &Node{Name: label}
		sizes[i] = 1
		active[i] = true
	}

	for remaining := n; remaining > 1; remaining-- {
		bi, bj := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if v := d.At(i, j); v < best {
					best, bi, bj = v, i, j
				}
			}
		}

		height := best / 2
		left, right := nodes[bi], nodes[bj]
		left.Length = math.Max(height-heights[bi], 0)
		right.Length = math.Max(height-heights[bj], 0)
		merged := &Node{Children: []*Node{left, right}}

		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			v := (d.At(bi, k)*sizes[bi] + d.At(bj, k)*sizes[bj]) / (sizes[bi] + sizes[bj])
			d.SetSym(bi, k, v)
		}

		nodes[bi] = merged
		heights[bi] = height
		sizes[bi] += sizes[bj]
		active[bj] = false
		nodes[bj] = nil
	}

	for i := range nodes {
		if active[i] {
			return nodes[i], nil
		}
	}
	return nil, ErrNoLabels
}

// HammingMatrix fills a distance matrix with the fraction of differing symbols
// between each pair of equal-length rows.
func HammingMatrix(rows [][]byte) *mat.SymDense {
	n := len(rows)
	if n == 0 {
		return nil
	}
	d := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := rows[i], rows[j]
			if len(a) == 0 {
				continue
			}
			diff := 0
			for k := range a {
				if a[k] != b[k] {
					diff++
				}
			}
			d.SetSym(i, j, float64(diff)/float64(len(a)))
		}
	}
	return d
}
