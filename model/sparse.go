package model

// SparseStore keeps the transition families dense and the emissions as one
// symbol map per state. An emission parameter is created on its first update
// or assignment.
type SparseStore struct {
	chain
	numSymbols int
	emissions  []map[int]int
}

var _ Store = (*SparseStore)(nil)

// NewSparse creates a sparse store. numSymbols only bounds the parameter
// report; any non-negative feature code can be stored.
func NewSparse(order, numStates, numSymbols int) *SparseStore {
	s := &SparseStore{
		chain:      newChain(order, numStates),
		numSymbols: numSymbols,
		emissions:  make([]map[int]int, numStates),
	}
	for i := range s.emissions {
		s.emissions[i] = make(map[int]int)
	}
	return s
}

func (s *SparseStore) Kind() Kind { return Sparse }

func (s *SparseStore) NumSymbols() int { return s.numSymbols }

// Emissions returns the number of materialized emission parameters.
func (s *SparseStore) Emissions() int {
	n := 0
	for _, m := range s.emissions {
		n += len(m)
	}
	return n
}

func (s *SparseStore) Emission(state, symbol int) (float64, error) {
	if i, ok := s.emissions[state][symbol]; ok {
		return s.get(i), nil
	}
	return 0, nil
}

func (s *SparseStore) EmissionScores(seq *Sequence, t int, dst []float64) {
	for st := range s.numStates {
		dst[st] = 0
	}
	for _, f := range seq.Tokens[t] {
		for st, m := range s.emissions {
			if i, ok := m[f.Code]; ok {
				dst[st] += s.params[i].Get() * f.Value
			}
		}
	}
}

func (s *SparseStore) slot(state, symbol int) int {
	if i, ok := s.emissions[state][symbol]; ok {
		return i
	}
	i := s.alloc(1)
	s.emissions[state][symbol] = i
	return i
}

func (s *SparseStore) SetEmission(state, symbol int, w float64) error {
	if symbol < 0 {
		return ErrSymbolOutOfRange
	}
	s.assign(s.slot(state, symbol), w)
	return nil
}

func (s *SparseStore) UpdateEmission(state, symbol int, rate float64) error {
	if symbol < 0 {
		return ErrSymbolOutOfRange
	}
	s.update(s.slot(state, symbol), rate)
	return nil
}

func (s *SparseStore) UpdateTokenEmission(seq *Sequence, t, state int, rate float64) {
	for _, f := range seq.Tokens[t] {
		if f.Code < 0 {
			continue
		}
		s.update(s.slot(state, f.Code), rate*f.Value)
	}
}

func (s *SparseStore) Clone() Store {
	c := *s
	c.chain = s.cloneChain()
	c.emissions = make([]map[int]int, len(s.emissions))
	for i, m := range s.emissions {
		cm := make(map[int]int, len(m))
		for k, v := range m {
			cm[k] = v
		}
		c.emissions[i] = cm
	}
	return &c
}

func (s *SparseStore) Snapshot() *Snapshot {
	snap := &Snapshot{Kind: Sparse, NumSymbols: s.numSymbols}
	s.chainSnapshot(snap)
	snap.SparseEmissions = make([]map[int]float64, s.numStates)
	for st, m := range s.emissions {
		w := make(map[int]float64, len(m))
		for sym, i := range m {
			w[sym] = s.get(i)
		}
		snap.SparseEmissions[st] = w
	}
	return snap
}
