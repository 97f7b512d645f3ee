package model

// arena owns every Parameter of a store in one slice. Families address their
// parameters by offset, and the dirty list records the indices updated since
// the last settle.
type arena struct {
	params    []Parameter
	marked    []bool
	dirty     []int
	version   uint64
	finalized bool
}

// alloc reserves n zero parameters and returns the offset of the first.
func (a *arena) alloc(n int) int {
	off := len(a.params)
	a.params = append(a.params, make([]Parameter, n)...)
	a.marked = append(a.marked, make([]bool, n)...)
	return off
}

func (a *arena) get(i int) float64 {
	return a.params[i].Get()
}

func (a *arena) assign(i int, w float64) {
	a.params[i].Assign(w)
}

func (a *arena) update(i int, delta float64) {
	if a.finalized {
		return
	}
	a.params[i].Update(delta)
	if !a.marked[i] {
		a.marked[i] = true
		a.dirty = append(a.dirty, i)
	}
}

// Settle settles the parameters touched since the previous call.
func (a *arena) Settle(iteration int) {
	if a.finalized {
		return
	}
	for _, i := range a.dirty {
		a.params[i].Settle(iteration)
		a.marked[i] = false
	}
	a.dirty = a.dirty[:0]
	a.version++
}

// FinalizeAverage averages every parameter over totalIterations.
func (a *arena) FinalizeAverage(totalIterations int) error {
	if a.finalized {
		return ErrFinalized
	}
	for i := range a.params {
		if err := a.params[i].FinalizeAverage(totalIterations); err != nil {
			return err
		}
		a.marked[i] = false
	}
	a.dirty = a.dirty[:0]
	a.finalized = true
	a.version++
	return nil
}

// Finalized reports whether the store's averages were finalized.
func (a *arena) Finalized() bool {
	return a.finalized
}

// Version counts the settle and finalize calls applied to the store.
func (a *arena) Version() uint64 {
	return a.version
}

// Touched returns the number of parameters waiting to be settled.
func (a *arena) Touched() int {
	return len(a.dirty)
}

// Size returns the number of parameters the store owns.
func (a *arena) Size() int {
	return len(a.params)
}

func (a *arena) clone() arena {
	c := arena{
		params:    make([]Parameter, len(a.params)),
		marked:    make([]bool, len(a.marked)),
		dirty:     make([]int, len(a.dirty)),
		version:   a.version,
		finalized: a.finalized,
	}
	copy(c.params, a.params)
	copy(c.marked, a.marked)
	copy(c.dirty, a.dirty)
	return c
}
