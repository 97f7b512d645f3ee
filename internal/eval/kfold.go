package eval

import "sort"

// GroupKFold splits item indices into at most k folds so that items of one
// group share a fold. Groups are assigned round-robin in ascending order.
func GroupKFold(groups []int, k int) [][]int {
	unique := make(map[int]bool)
	for _, g := range groups {
		unique[g] = true
	}
	sorted := make([]int, 0, len(unique))
	for g := range unique {
		sorted = append(sorted, g)
	}
	sort.Ints(sorted)

	if k > len(sorted) {
		k = len(sorted)
	}
	if k <= 0 {
		return nil
	}

	groupToFold := make(map[int]int, len(sorted))
	for i, g := range sorted {
		groupToFold[g] = i % k
	}

	folds := make([][]int, k)
	for i, g := range groups {
		fold := groupToFold[g]
		folds[fold] = append(folds[fold], i)
	}
	return folds
}

// TestMask marks the indices of one fold in a mask of n items.
func TestMask(n int, testIdx []int) []bool {
	mask := make([]bool, n)
	for _, i := range testIdx {
		mask[i] = true
	}
	return mask
}
