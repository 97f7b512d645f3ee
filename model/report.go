package model

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// NullLabel names the null state in order-2 transition lines.
const NullLabel = "<null>"

// Dictionary resolves integer codes to their text.
type Dictionary interface {
	Label(id int) string
	Size() int
}

// WriteReport writes the plain-text parameter report: an initial-state block,
// a transition block and an emission block with one line per (state, symbol)
// pair of the symbol dictionary. The dual store has no emission lines.
func WriteReport(w io.Writer, s Store, states, symbols Dictionary) error {
	bw := bufio.NewWriter(w)
	n := s.NumStates()
	label := func(i int) string {
		if i == s.NullState() {
			return NullLabel
		}
		return states.Label(i)
	}

	fmt.Fprintln(bw, "# initial state")
	for i := range n {
		fmt.Fprintf(bw, "%s\t%v\n", label(i), s.Initial(i))
	}

	fmt.Fprintln(bw, "# transitions")
	if s.Order() >= 2 {
		for p2 := range n + 1 {
			for p1 := range n + 1 {
				for st := range n {
					fmt.Fprintf(bw, "%s %s %s\t%v\n", label(p2), label(p1), label(st), s.Transition2(p2, p1, st))
				}
			}
		}
	} else {
		for from := range n {
			for to := range n {
				fmt.Fprintf(bw, "%s %s\t%v\n", label(from), label(to), s.Transition(from, to))
			}
		}
	}

	fmt.Fprintln(bw, "# emissions")
emissions:
	for st := range n {
		for sym := range symbols.Size() {
			weight, err := s.Emission(st, sym)
			if errors.Is(err, ErrUnsupported) {
				break emissions
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(bw, "%s %s\t%v\n", label(st), symbols.Label(sym), weight)
		}
	}
	return bw.Flush()
}
