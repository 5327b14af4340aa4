package board

import "fmt"

// Build assembles a grid from explicit placements, keyed by linear index.
// It enforces the same invariants the arranger guarantees: each clause's
// orders are contiguous from 0 and consecutive orders sit on adjacent tiles.
// Build is used to restore stored layouts and to set up fixed boards.
func Build(rows, cols int, placements map[int]Cell) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: bad dimensions %dx%d", ErrMalformedGroup, rows, cols)
	}
	g := newGrid(rows, cols)
	where := make(map[int]map[int]int) // groupId -> order -> index
	for idx, c := range placements {
		if !g.InBounds(idx) {
			return nil, fmt.Errorf("%w: index %d outside %dx%d grid", ErrMalformedGroup, idx, rows, cols)
		}
		if c.Char == "" {
			return nil, fmt.Errorf("%w: empty character at %d", ErrMalformedGroup, idx)
		}
		orders := where[c.GroupID]
		if orders == nil {
			orders = make(map[int]int)
			where[c.GroupID] = orders
		}
		if _, dup := orders[c.Order]; dup {
			return nil, fmt.Errorf("%w: group %d order %d placed twice", ErrMalformedGroup, c.GroupID, c.Order)
		}
		orders[c.Order] = idx
		g.put(idx, c)
	}

	for id, orders := range where {
		for k := 0; k < len(orders); k++ {
			idx, ok := orders[k]
			if !ok {
				return nil, fmt.Errorf("%w: group %d is missing order %d", ErrMalformedGroup, id, k)
			}
			if k > 0 && !Adjacent(orders[k-1], idx, cols) {
				return nil, fmt.Errorf("%w: group %d orders %d and %d are not adjacent", ErrMalformedGroup, id, k-1, k)
			}
		}
	}
	return g, nil
}
