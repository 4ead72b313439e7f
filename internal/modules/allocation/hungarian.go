package allocation

import (
	"math"
	"sort"
)

// Pair is one matched (row, column) of the cost matrix.
type Pair struct {
	Row  int
	Col  int
	Cost float64
}

// Solve runs the Kuhn–Munkres assignment algorithm over a rectangular cost
// matrix and returns a minimum-total-cost partial bijection: each row and
// each column appears at most once. The matrix is padded to square with a
// large finite sentinel; pairs involving padding are dropped from the
// result, so unmatched rows and columns are simply absent rather than
// returned at sentinel cost.
func Solve(costs [][]float64) []Pair {
	rows := len(costs)
	if rows == 0 {
		return nil
	}
	cols := len(costs[0])
	if cols == 0 {
		return nil
	}

	n := rows
	if cols > n {
		n = cols
	}
	sentinel := padCost(costs, n)

	// 1-indexed working grid, padded square.
	a := make([][]float64, n+1)
	for i := 1; i <= n; i++ {
		a[i] = make([]float64, n+1)
		for j := 1; j <= n; j++ {
			if i <= rows && j <= cols {
				a[i][j] = costs[i-1][j-1]
			} else {
				a[i][j] = sentinel
			}
		}
	}

	// Potentials and column matching (p[j] = row matched to column j).
	u := make([]float64, n+1)
	v := make([]float64, n+1)
	p := make([]int, n+1)
	way := make([]int, n+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, n+1)
		used := make([]bool, n+1)
		for j := 1; j <= n; j++ {
			minv[j] = math.Inf(1)
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := math.Inf(1)
			j1 := 0
			for j := 1; j <= n; j++ {
				if used[j] {
					continue
				}
				cur := a[i0][j] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= n; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
			if j0 == 0 {
				break
			}
		}
	}

	var out []Pair
	for j := 1; j <= n; j++ {
		i := p[j]
		if i >= 1 && i <= rows && j <= cols {
			out = append(out, Pair{Row: i - 1, Col: j - 1, Cost: costs[i-1][j-1]})
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Row < out[b].Row })
	return out
}

// padCost returns a finite cost strictly larger than any real assignment
// total, so padded cells never displace a real match.
func padCost(costs [][]float64, n int) float64 {
	maxCost := 0.0
	for _, row := range costs {
		for _, c := range row {
			if c > maxCost {
				maxCost = c
			}
		}
	}
	return maxCost*float64(n) + 1
}
