package entity

import (
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

// Board is the fixed BoardSize x BoardSize grid of a session.
// Cells are indexed as [row][col].
type Board struct {
	cells [BoardSize][BoardSize]Slot
}

func NewBoard() *Board {
	return &Board{}
}

func (that *Board) InBounds(c Coordinate) bool {
	return c.Row >= 0 && c.Row < BoardSize && c.Col >= 0 && c.Col < BoardSize
}

func (that *Board) Get(c Coordinate) (Slot, error) {
	if !that.InBounds(c) {
		return SlotNone, fmt.Errorf("%w: %s", apperror.ErrOutOfBounds, c)
	}

	return that.cells[c.Row][c.Col], nil
}

// Set writes slot into the cell. Occupancy is checked by the caller.
func (that *Board) Set(c Coordinate, slot Slot) error {
	if !that.InBounds(c) {
		return fmt.Errorf("%w: %s", apperror.ErrOutOfBounds, c)
	}

	that.cells[c.Row][c.Col] = slot

	return nil
}

// IsFull reports whether no cell is empty.
func (that *Board) IsFull() bool {
	for _, row := range that.cells {
		for _, cell := range row {
			if cell == SlotNone {
				return false
			}
		}
	}

	return true
}

// Cells returns a copy of the grid for the wire.
func (that *Board) Cells() [][]Slot {
	out := make([][]Slot, BoardSize)
	for i := range that.cells {
		row := make([]Slot, BoardSize)
		copy(row, that.cells[i][:])
		out[i] = row
	}

	return out
}
