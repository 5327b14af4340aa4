package board

// Solve returns the tiles of clause id in order along a king-move chain,
// or nil if the clause is not on the board or cannot be chained.
// Arranged grids always contain a chain for every clause; Solve is used to
// reveal hints.
func Solve(g *Grid, id int) []int {
	n := g.GroupSize(id)
	if n == 0 {
		return nil
	}

	path := make([]int, 0, n)
	visited := make([]bool, g.Len())

	var dfs func(idx int) bool
	dfs = func(idx int) bool {
		if len(path) == n {
			return true
		}
		row, col := g.Position(idx)
		for _, d := range directions {
			nr, nc := row+d[0], col+d[1]
			if nr < 0 || nr >= g.rows || nc < 0 || nc >= g.cols {
				continue
			}
			next := g.Index(nr, nc)
			c := g.cells[next]
			if c == nil || visited[next] || c.GroupID != id || c.Order != len(path) {
				continue
			}
			visited[next] = true
			path = append(path, next)
			if dfs(next) {
				return true
			}
			visited[next] = false
			path = path[:len(path)-1]
		}
		return false
	}

	for i, c := range g.cells {
		if c == nil || c.GroupID != id || c.Order != 0 {
			continue
		}
		visited[i] = true
		path = append(path[:0], i)
		if dfs(i) {
			return path
		}
		visited[i] = false
	}
	return nil
}
