package board

import "math"

const (
	// MobileColumnCap and DesktopColumnCap bound the board width for
	// narrow and wide viewports.
	MobileColumnCap  = 4
	DesktopColumnCap = 5
	// MinColumns keeps very short poems from collapsing into a strip.
	MinColumns = 3
)

// directions lists the eight king-move offsets as (dRow, dCol).
var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Dimensions derives the starting board size for total characters.
// Columns are ceil(sqrt(total)) clamped to [MinColumns, cap]; one spare
// row is added on top of the rows strictly needed.
func Dimensions(total int, mobile bool) (rows, cols int) {
	if total <= 0 {
		return 0, 0
	}
	limit := DesktopColumnCap
	if mobile {
		limit = MobileColumnCap
	}
	cols = int(math.Ceil(math.Sqrt(float64(total))))
	cols = max(MinColumns, min(limit, cols))
	rows = ceilDiv(total, cols) + 1
	return rows, cols
}

// Adjacent reports whether linear indices a and b are distinct and
// differ by at most one row and one column on a board cols wide.
func Adjacent(a, b, cols int) bool {
	if a == b || cols <= 0 || a < 0 || b < 0 {
		return false
	}
	ar, ac := a/cols, a%cols
	br, bc := b/cols, b%cols
	return abs(ar-br) <= 1 && abs(ac-bc) <= 1
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
