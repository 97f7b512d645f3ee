package dataset

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// WriteTagged writes every token's feature columns followed by its
// predicted label, one sequence per block.
func WriteTagged(w io.Writer, lines [][][]string, paths [][]int, labels *Alphabet) error {
	if len(lines) != len(paths) {
		return fmt.Errorf("dataset: %d sequences but %d label paths", len(lines), len(paths))
	}
	bw := bufio.NewWriter(w)
	for i, seq := range lines {
		if len(seq) != len(paths[i]) {
			return fmt.Errorf("dataset: sequence %d has %d tokens but %d labels", i, len(seq), len(paths[i]))
		}
		if i > 0 {
			bw.WriteByte('\n')
		}
		for t, cols := range seq {
			if len(cols) > 0 {
				bw.WriteString(strings.Join(cols, "\t"))
				bw.WriteByte('\t')
			}
			bw.WriteString(labels.Label(paths[i][t]))
			bw.WriteByte('\n')
		}
	}
	return bw.Flush()
}
