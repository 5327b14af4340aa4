package game

import "github.com/robalobadob/poemlink/internal/board"

// ValidateExtension reports whether candidate may be appended to path.
//
// The candidate must be an owned tile not already in path, king-move
// adjacent to the last tile, in the same clause as the first tile, and its
// order must equal len(path). On an empty path that means only a clause's
// first character can start a selection.
func ValidateExtension(g *board.Grid, path []int, candidate int) bool {
	cell, ok := g.At(candidate)
	if !ok {
		return false
	}
	for _, idx := range path {
		if idx == candidate {
			return false
		}
	}
	if len(path) == 0 {
		return cell.Order == 0
	}
	if !g.Adjacent(path[len(path)-1], candidate) {
		return false
	}
	first, ok := g.At(path[0])
	if !ok {
		return false
	}
	return cell.GroupID == first.GroupID && cell.Order == len(path)
}

// IsCompleteGroup reports whether path spells out one whole clause.
// Every step is re-validated, not only the length.
func IsCompleteGroup(g *board.Grid, path []int) bool {
	if len(path) == 0 {
		return false
	}
	first, ok := g.At(path[0])
	if !ok || len(path) != g.GroupSize(first.GroupID) {
		return false
	}
	for i := range path {
		if !ValidateExtension(g, path[:i], path[i]) {
			return false
		}
	}
	return true
}
