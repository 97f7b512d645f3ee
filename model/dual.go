package model

// tokenKey identifies a token by the sequence it came from and its position.
type tokenKey struct {
	seq, pos int
}

// supportToken is a token misclassified during training together with the
// offset of its per-state coefficient vector in the arena.
type supportToken struct {
	key    tokenKey
	token  Token
	offset int
}

// DualStore is the kernelized store. It keeps no per-symbol emission
// weights; the emission of state s at a query token q is
//
//	Σ_support coefficient[s] · kernel(support token, q)
//
// Transition and initial-state parameters are plain dense parameters.
// Support tokens are copied on insertion and never mutated, so clones share them.
type DualStore struct {
	chain
	numSymbols int
	kernel     Kernel
	support    []supportToken
	index      map[tokenKey]int
}

var _ Store = (*DualStore)(nil)

// NewDual creates an empty dual store. numSymbols is informational.
func NewDual(order, numStates, numSymbols int, kernel Kernel) *DualStore {
	return &DualStore{
		chain:      newChain(order, numStates),
		numSymbols: numSymbols,
		kernel:     kernel,
		index:      make(map[tokenKey]int),
	}
}

func (d *DualStore) Kind() Kind { return Dual }

func (d *DualStore) NumSymbols() int { return d.numSymbols }

// Kernel returns the kernel used to score emissions.
func (d *DualStore) Kernel() Kernel { return d.kernel }

// SupportSize returns the number of stored tokens.
func (d *DualStore) SupportSize() int { return len(d.support) }

// Emission is not available: emissions are never materialized.
func (d *DualStore) Emission(state, symbol int) (float64, error) {
	return 0, ErrUnsupported
}

func (d *DualStore) SetEmission(state, symbol int, w float64) error {
	return ErrUnsupported
}

func (d *DualStore) UpdateEmission(state, symbol int, rate float64) error {
	return ErrUnsupported
}

func (d *DualStore) EmissionScores(seq *Sequence, t int, dst []float64) {
	n := d.numStates
	for s := range n {
		dst[s] = 0
	}
	q := seq.Tokens[t]
	if !q.Sorted() {
		q = q.Clone()
		q.Sort()
	}
	for _, sv := range d.support {
		k := d.kernel.Eval(sv.token, q)
		if k == 0 {
			continue
		}
		for s := range n {
			dst[s] += d.params[sv.offset+s].Get() * k
		}
	}
}

// UpdateTokenEmission adds rate to the coefficient of state for token t of
// seq, storing the token as a new support token on first use.
func (d *DualStore) UpdateTokenEmission(seq *Sequence, t, state int, rate float64) {
	key := tokenKey{seq: seq.ID, pos: t}
	i, ok := d.index[key]
	if !ok {
		tok := seq.Tokens[t].Clone()
		tok.Sort()
		i = len(d.support)
		d.support = append(d.support, supportToken{key: key, token: tok, offset: d.alloc(d.numStates)})
		d.index[key] = i
	}
	d.update(d.support[i].offset+state, rate)
}

func (d *DualStore) Clone() Store {
	c := *d
	c.chain = d.cloneChain()
	c.support = make([]supportToken, len(d.support))
	copy(c.support, d.support)
	c.index = make(map[tokenKey]int, len(d.index))
	for k, v := range d.index {
		c.index[k] = v
	}
	return &c
}

func (d *DualStore) Snapshot() *Snapshot {
	s := &Snapshot{Kind: Dual, NumSymbols: d.numSymbols}
	d.chainSnapshot(s)
	k := d.kernel
	s.Kernel = &k
	s.Support = make([]SupportSnapshot, len(d.support))
	for i, sv := range d.support {
		coef := make([]float64, d.numStates)
		for st := range coef {
			coef[st] = d.get(sv.offset + st)
		}
		s.Support[i] = SupportSnapshot{
			Sequence:     sv.key.seq,
			Position:     sv.key.pos,
			Token:        sv.token,
			Coefficients: coef,
		}
	}
	return s
}
