package model

// DenseStore preallocates one emission parameter per (state, symbol) pair.
// Emissions are laid out symbol-major so that scoring a token walks one
// contiguous block per active feature.
type DenseStore struct {
	chain
	numSymbols int
	emitOff    int
}

var _ Store = (*DenseStore)(nil)

// NewDense creates a dense store for numSymbols feature codes.
func NewDense(order, numStates, numSymbols int) *DenseStore {
	d := &DenseStore{chain: newChain(order, numStates), numSymbols: numSymbols}
	d.emitOff = d.alloc(numSymbols * numStates)
	return d
}

func (d *DenseStore) Kind() Kind { return Dense }

func (d *DenseStore) NumSymbols() int { return d.numSymbols }

func (d *DenseStore) index(state, symbol int) (int, bool) {
	if symbol < 0 || symbol >= d.numSymbols {
		return 0, false
	}
	return d.emitOff + symbol*d.numStates + state, true
}

// Emission returns the weight of symbol under state, 0 for unknown symbols.
func (d *DenseStore) Emission(state, symbol int) (float64, error) {
	i, ok := d.index(state, symbol)
	if !ok {
		return 0, nil
	}
	return d.get(i), nil
}

func (d *DenseStore) EmissionScores(seq *Sequence, t int, dst []float64) {
	n := d.numStates
	for s := range n {
		dst[s] = 0
	}
	for _, f := range seq.Tokens[t] {
		if f.Code < 0 || f.Code >= d.numSymbols {
			continue
		}
		base := d.emitOff + f.Code*n
		for s := range n {
			dst[s] += d.params[base+s].Get() * f.Value
		}
	}
}

func (d *DenseStore) SetEmission(state, symbol int, w float64) error {
	i, ok := d.index(state, symbol)
	if !ok {
		return ErrSymbolOutOfRange
	}
	d.assign(i, w)
	return nil
}

func (d *DenseStore) UpdateEmission(state, symbol int, rate float64) error {
	i, ok := d.index(state, symbol)
	if !ok {
		return ErrSymbolOutOfRange
	}
	d.update(i, rate)
	return nil
}

// UpdateTokenEmission skips feature codes outside the vocabulary.
func (d *DenseStore) UpdateTokenEmission(seq *Sequence, t, state int, rate float64) {
	for _, f := range seq.Tokens[t] {
		if i, ok := d.index(state, f.Code); ok {
			d.update(i, rate*f.Value)
		}
	}
}

func (d *DenseStore) Clone() Store {
	c := *d
	c.chain = d.cloneChain()
	return &c
}

func (d *DenseStore) Snapshot() *Snapshot {
	s := &Snapshot{Kind: Dense, NumSymbols: d.numSymbols}
	d.chainSnapshot(s)
	s.Emissions = make([]float64, d.numSymbols*d.numStates)
	for i := range s.Emissions {
		s.Emissions[i] = d.get(d.emitOff + i)
	}
	return s
}
