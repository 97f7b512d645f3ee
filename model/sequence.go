package model

import "sort"

// Feature is one entry of a sparse token vector.
type Feature struct {
	Code  int     `json:"code"`
	Value float64 `json:"value"`
}

// Token is a sparse feature vector. Absent codes weigh 0.
// Codes are expected in ascending order; see Sort.
type Token []Feature

// Sorted reports whether the feature codes are strictly ascending.
func (t Token) Sorted() bool {
	for i := 1; i < len(t); i++ {
		if t[i-1].Code >= t[i].Code {
			return false
		}
	}
	return true
}

// Sort orders the features by code and merges duplicate codes by summing their values.
func (t *Token) Sort() {
	tok := *t
	if tok.Sorted() {
		return
	}
	sort.Slice(tok, func(i, j int) bool { return tok[i].Code < tok[j].Code })
	out := tok[:0]
	for _, f := range tok {
		if n := len(out); n > 0 && out[n-1].Code == f.Code {
			out[n-1].Value += f.Value
			continue
		}
		out = append(out, f)
	}
	*t = out
}

// Clone returns a copy of the token that shares no memory with t.
func (t Token) Clone() Token {
	c := make(Token, len(t))
	copy(c, t)
	return c
}

// Dot computes the sparse dot product of two sorted tokens with a linear merge.
func (t Token) Dot(o Token) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(t) && j < len(o) {
		switch {
		case t[i].Code < o[j].Code:
			i++
		case t[i].Code > o[j].Code:
			j++
		default:
			sum += t[i].Value * o[j].Value
			i++
			j++
		}
	}
	return sum
}

// Sequence is an ordered list of tokens. ID identifies the sequence across
// epochs and is used by the dual store to key its support tokens.
type Sequence struct {
	ID     int     `json:"id"`
	Tokens []Token `json:"tokens"`
}

// Len returns the number of tokens.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Tokens)
}

// Example pairs an input sequence with its gold labels.
// Annotated marks the positions whose label is trusted; nil means every position is.
type Example struct {
	Input     *Sequence
	Gold      []int
	Annotated []bool
}

// Partial reports whether some position of the example is not annotated.
func (e *Example) Partial() bool {
	for _, a := range e.Annotated {
		if !a {
			return true
		}
	}
	return false
}

// Clamp returns the gold label at annotated positions and -1 elsewhere.
func (e *Example) Clamp() []int {
	clamp := make([]int, len(e.Gold))
	for i, y := range e.Gold {
		if e.Annotated == nil || e.Annotated[i] {
			clamp[i] = y
		} else {
			clamp[i] = -1
		}
	}
	return clamp
}
