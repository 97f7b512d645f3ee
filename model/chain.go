package model

// chain holds the initial-state and transition families shared by every
// store variant. Order-2 stores also carry the trigram table, whose two
// predecessor slots admit the null state.
type chain struct {
	arena
	order     int
	numStates int
	initOff   int
	biOff     int
	triOff    int
}

func newChain(order, numStates int) chain {
	c := chain{order: order, numStates: numStates}
	c.initOff = c.alloc(numStates)
	c.biOff = c.alloc(numStates * numStates)
	c.triOff = -1
	if order >= 2 {
		c.triOff = c.alloc((numStates + 1) * (numStates + 1) * numStates)
	}
	return c
}

// Order returns the Markov order of the transition model.
func (c *chain) Order() int {
	return c.order
}

// NumStates returns the size of the state space.
func (c *chain) NumStates() int {
	return c.numStates
}

// NullState returns the reserved state index that precedes the sequence start.
func (c *chain) NullState() int {
	return c.numStates
}

func (c *chain) triIndex(prev2, prev1, state int) int {
	n := c.numStates
	return c.triOff + (prev2*(n+1)+prev1)*n + state
}

// Initial returns the initial-state weight of state.
func (c *chain) Initial(state int) float64 {
	return c.get(c.initOff + state)
}

// Transition returns the weight of moving from one state to another.
func (c *chain) Transition(from, to int) float64 {
	return c.get(c.biOff + from*c.numStates + to)
}

// Transition2 returns the weight of the state trigram (prev2, prev1, state).
// Order-1 stores do not represent trigrams and return 0.
func (c *chain) Transition2(prev2, prev1, state int) float64 {
	if c.triOff < 0 {
		return 0
	}
	return c.get(c.triIndex(prev2, prev1, state))
}

func (c *chain) SetInitial(state int, w float64) {
	c.assign(c.initOff+state, w)
}

func (c *chain) SetTransition(from, to int, w float64) {
	c.assign(c.biOff+from*c.numStates+to, w)
}

// SetTransition2 is a no-op on order-1 stores.
func (c *chain) SetTransition2(prev2, prev1, state int, w float64) {
	if c.triOff < 0 {
		return
	}
	c.assign(c.triIndex(prev2, prev1, state), w)
}

func (c *chain) UpdateInitial(state int, rate float64) {
	c.update(c.initOff+state, rate)
}

func (c *chain) UpdateTransition(from, to int, rate float64) {
	c.update(c.biOff+from*c.numStates+to, rate)
}

// UpdateTransition2 is a no-op on order-1 stores.
func (c *chain) UpdateTransition2(prev2, prev1, state int, rate float64) {
	if c.triOff < 0 {
		return
	}
	c.update(c.triIndex(prev2, prev1, state), rate)
}

func (c *chain) cloneChain() chain {
	cc := *c
	cc.arena = c.arena.clone()
	return cc
}

// chainSnapshot fills the transition part of a snapshot.
func (c *chain) chainSnapshot(s *Snapshot) {
	n := c.numStates
	s.Order = c.order
	s.NumStates = n
	s.Version = c.version
	s.Initial = make([]float64, n)
	for i := range n {
		s.Initial[i] = c.get(c.initOff + i)
	}
	s.Transitions = make([]float64, n*n)
	for i := range n * n {
		s.Transitions[i] = c.get(c.biOff + i)
	}
	if c.triOff >= 0 {
		size := (n + 1) * (n + 1) * n
		s.Trigrams = make([]float64, size)
		for i := range size {
			s.Trigrams[i] = c.get(c.triOff + i)
		}
	}
}

// restoreChain assigns the transition part of a snapshot.
func (c *chain) restoreChain(s *Snapshot) {
	for i, w := range s.Initial {
		if i < c.numStates {
			c.assign(c.initOff+i, w)
		}
	}
	for i, w := range s.Transitions {
		if i < c.numStates*c.numStates {
			c.assign(c.biOff+i, w)
		}
	}
	if c.triOff >= 0 {
		size := (c.numStates + 1) * (c.numStates + 1) * c.numStates
		for i, w := range s.Trigrams {
			if i < size {
				c.assign(c.triOff+i, w)
			}
		}
	}
	c.version = s.Version
}
