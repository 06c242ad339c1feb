package gomoku

import "github.com/rocketscienceinc/gomoku-backend/internal/entity"

// directions are (dRow, dCol) steps, one per undirected axis.
// The evaluation order is fixed: the first axis reaching WinLength wins.
var directions = [4][2]int{
	{1, 0},
	{0, 1},
	{1, 1},
	{1, -1},
}

// DetectWin checks whether the stone mover just placed at lastMove completes
// WinLength in a row. It returns the WinLength coordinates of the winning run,
// ordered along the positive axis direction and always containing lastMove.
func DetectWin(board *entity.Board, lastMove entity.Coordinate, mover entity.Slot) ([]entity.Coordinate, bool) {
	if !mover.IsPlayer() {
		return nil, false
	}

	for _, dir := range directions {
		forward := countConsecutive(board, lastMove, dir[0], dir[1], mover)
		backward := countConsecutive(board, lastMove, -dir[0], -dir[1], mover)

		if forward+backward+1 < entity.WinLength {
			continue
		}

		start := lastMove.Add(-dir[0], -dir[1], min(backward, entity.WinLength-1))

		line := make([]entity.Coordinate, 0, entity.WinLength)
		for i := range entity.WinLength {
			line = append(line, start.Add(dir[0], dir[1], i))
		}

		return line, true
	}

	return nil, false
}

// countConsecutive counts mover's stones from the cell next to from, stepping
// by (dRow, dCol) until a different cell or the board edge.
func countConsecutive(board *entity.Board, from entity.Coordinate, dRow, dCol int, mover entity.Slot) int {
	count := 0

	for cell := from.Add(dRow, dCol, 1); ; cell = cell.Add(dRow, dCol, 1) {
		slot, err := board.Get(cell)
		if err != nil || slot != mover {
			return count
		}
		count++
	}
}
