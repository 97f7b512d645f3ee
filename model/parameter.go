package model

// Parameter is a trainable scalar with lazy time-weighted averaging.
//
// Updates accumulate in a pending delta that inference never sees; Settle
// folds it into the weight and catches the running sum up to the given
// iteration, so parameters untouched for many iterations cost nothing until
// they are next settled.
type Parameter struct {
	weight    float64
	pending   float64
	sum       float64
	last      int
	finalized bool
}

// Assign sets the weight and clears the pending delta and the running sum.
func (p *Parameter) Assign(v float64) {
	p.weight = v
	p.pending = 0
	p.sum = 0
	p.finalized = false
}

// Update accumulates delta into the pending update.
func (p *Parameter) Update(delta float64) {
	if p.finalized {
		return
	}
	p.pending += delta
}

// Get returns the weight as of the last Assign or Settle.
func (p *Parameter) Get() float64 {
	return p.weight
}

// Pending returns the accumulated, not yet settled, update.
func (p *Parameter) Pending() float64 {
	return p.pending
}

// Settle applies the pending update and adds the weight history up to iteration to the running sum.
func (p *Parameter) Settle(iteration int) {
	if p.finalized {
		return
	}
	p.sum += p.weight*float64(iteration-p.last) + p.pending
	p.weight += p.pending
	p.pending = 0
	p.last = iteration
}

// FinalizeAverage replaces the weight by its average over totalIterations.
// The parameter is no longer trainable afterwards; a second call returns ErrFinalized.
func (p *Parameter) FinalizeAverage(totalIterations int) error {
	if p.finalized {
		return ErrFinalized
	}
	p.Settle(totalIterations - 1)
	if totalIterations > 0 {
		p.weight = p.sum / float64(totalIterations)
	}
	p.finalized = true
	return nil
}

// Finalized reports whether FinalizeAverage has been called.
func (p *Parameter) Finalized() bool {
	return p.finalized
}
