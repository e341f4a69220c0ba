package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/yumyai/panva/pkg/model"
)

const FASTALineWidth = 60

// WriteFASTA writes the filtered sequences of view in draw order, restricted to the
// filtered positions. Lines wrap at width; width <= 0 disables wrapping.
func WriteFASTA(w io.Writer, view *model.View, width int) error {
	if view.Data == nil {
		return model.ErrNotInitialized
	}
	bw := bufio.NewWriter(w)
	aln := view.Data.Alignment
	for _, di := range view.SortedDataIndicesFiltered {
		seq := view.Data.Sequences[di]
		fmt.Fprintf(bw, ">%s genome_nr=%d\n", seq.MRNAID, seq.GenomeNr)

		for i, p := range view.Positions {
			bw.WriteByte(aln.At(di, p))
			if width > 0 && (i+1)%width == 0 && i+1 < len(view.Positions) {
				bw.WriteByte('\n')
			}
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
