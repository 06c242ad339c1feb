package entity

import "fmt"

const (
	BoardSize = 15
	WinLength = 5
)

// Slot is a player color and the occupancy value of a board cell.
type Slot int

const (
	SlotNone Slot = iota
	SlotFirst
	SlotSecond
)

// Opponent returns the other playing slot. SlotNone has no opponent.
func (s Slot) Opponent() Slot {
	switch s {
	case SlotFirst:
		return SlotSecond
	case SlotSecond:
		return SlotFirst
	default:
		return SlotNone
	}
}

func (s Slot) IsPlayer() bool {
	return s == SlotFirst || s == SlotSecond
}

func (s Slot) String() string {
	switch s {
	case SlotNone:
		return "none"
	case SlotFirst:
		return "first"
	case SlotSecond:
		return "second"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}

type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coordinate) Add(dRow, dCol, steps int) Coordinate {
	return Coordinate{Row: c.Row + dRow*steps, Col: c.Col + dCol*steps}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Move is one accepted placement, kept in order on the session.
type Move struct {
	Coordinate
	Slot Slot `json:"slot"`
}
