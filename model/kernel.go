package model

import "fmt"

// Kernel is the polynomial kernel (x·y + Offset)^Degree over sparse tokens.
type Kernel struct {
	Degree int     `json:"degree" yaml:"degree"`
	Offset float64 `json:"offset" yaml:"offset"`
}

// DefaultKernel returns the quadratic kernel with a unit offset.
func DefaultKernel() Kernel {
	return Kernel{Degree: 2, Offset: 1}
}

// Validate checks that the degree is between 1 and 4.
func (k Kernel) Validate() error {
	if k.Degree < 1 || k.Degree > 4 {
		return fmt.Errorf("model: kernel degree must be in [1, 4], got %d", k.Degree)
	}
	return nil
}

// Eval computes the kernel of two tokens whose codes are sorted ascending.
func (k Kernel) Eval(a, b Token) float64 {
	x := a.Dot(b) + k.Offset
	r := x
	for i := 1; i < k.Degree; i++ {
		r *= x
	}
	return r
}
