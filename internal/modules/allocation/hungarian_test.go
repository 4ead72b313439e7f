package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalCost(pairs []Pair) float64 {
	var sum float64
	for _, p := range pairs {
		sum += p.Cost
	}
	return sum
}

func TestSolveSquare(t *testing.T) {
	// Optimal: (0,1)+(1,0) = 2+1 = 3.
	costs := [][]float64{
		{1, 2},
		{1, 100},
	}
	pairs := Solve(costs)
	require.Len(t, pairs, 2)
	assert.Equal(t, 3.0, totalCost(pairs))
}

func TestSolveBeatsGreedy(t *testing.T) {
	// A row-greedy matcher takes (0,0)=1 then is forced into (1,1)=100.
	costs := [][]float64{
		{1, 2},
		{1, 100},
	}
	greedy := costs[0][0] + costs[1][1]
	pairs := Solve(costs)
	assert.Less(t, totalCost(pairs), greedy)
}

func TestSolvePartialBijection(t *testing.T) {
	costs := [][]float64{
		{4, 1, 3},
		{2, 0, 5},
		{3, 2, 2},
	}
	pairs := Solve(costs)
	require.Len(t, pairs, 3)

	rows := map[int]bool{}
	cols := map[int]bool{}
	for _, p := range pairs {
		assert.False(t, rows[p.Row], "row %d matched twice", p.Row)
		assert.False(t, cols[p.Col], "col %d matched twice", p.Col)
		rows[p.Row] = true
		cols[p.Col] = true
	}
}

func TestSolveRectangular(t *testing.T) {
	// Two requests, one resource: the cheaper row wins, the other row is
	// padded out and absent from the result.
	costs := [][]float64{
		{1},
		{10},
	}
	pairs := Solve(costs)
	require.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].Row)
	assert.Equal(t, 0, pairs[0].Col)
	assert.Equal(t, 1.0, pairs[0].Cost)
}

func TestSolveWideMatrix(t *testing.T) {
	// One request, three resources: exactly one match, at the minimum.
	costs := [][]float64{
		{7, 2, 5},
	}
	pairs := Solve(costs)
	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{Row: 0, Col: 1, Cost: 2}, pairs[0])
}

func TestSolveEmpty(t *testing.T) {
	assert.Nil(t, Solve(nil))
	assert.Nil(t, Solve([][]float64{}))
}

func TestSolveKnownOptimum(t *testing.T) {
	// Verify against brute force over all permutations.
	costs := [][]float64{
		{10, 19, 8},
		{10, 18, 7},
		{13, 16, 9},
	}
	pairs := Solve(costs)
	require.Len(t, pairs, 3)

	best := bruteForce(costs)
	assert.Equal(t, best, totalCost(pairs))
}

func bruteForce(costs [][]float64) float64 {
	n := len(costs)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	best := -1.0
	var walk func(k int)
	walk = func(k int) {
		if k == n {
			var sum float64
			for i, j := range perm {
				sum += costs[i][j]
			}
			if best < 0 || sum < best {
				best = sum
			}
			return
		}
		for i := k; i < n; i++ {
			perm[k], perm[i] = perm[i], perm[k]
			walk(k + 1)
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	walk(0)
	return best
}
