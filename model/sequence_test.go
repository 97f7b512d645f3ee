package model

import "testing"

func TestTokenSortMergesDuplicates(t *testing.T) {
	tok := Token{{Code: 5, Value: 1}, {Code: 2, Value: 1}, {Code: 5, Value: 2}}
	tok.Sort()
	if len(tok) != 2 {
		t.Fatalf("len = %d, want 2", len(tok))
	}
	if tok[0].Code != 2 || tok[1].Code != 5 || tok[1].Value != 3 {
		t.Errorf("sorted token = %v", tok)
	}
	if !tok.Sorted() {
		t.Error("Sorted = false after Sort")
	}
}

func TestTokenDot(t *testing.T) {
	a := Token{{0, 1}, {2, 2}, {7, 3}}
	b := Token{{1, 5}, {2, 4}, {7, -1}, {9, 1}}
	if got := a.Dot(b); got != 2*4-3 {
		t.Errorf("Dot = %v, want 5", got)
	}
	if got := a.Dot(nil); got != 0 {
		t.Errorf("Dot with empty = %v, want 0", got)
	}
}

func TestExampleClamp(t *testing.T) {
	ex := Example{Gold: []int{1, 0, 2}, Annotated: []bool{true, false, true}}
	if !ex.Partial() {
		t.Error("Partial = false")
	}
	clamp := ex.Clamp()
	want := []int{1, -1, 2}
	for i := range want {
		if clamp[i] != want[i] {
			t.Errorf("Clamp()[%d] = %d, want %d", i, clamp[i], want[i])
		}
	}
	full := Example{Gold: []int{1, 0}}
	if full.Partial() {
		t.Error("Partial = true without mask")
	}
}
