package entity

import "time"

const (
	ReasonFiveInRow = "five_in_row"
	ReasonDraw      = "draw"
	ReasonSurrender = "surrender"
	ReasonForfeit   = "forfeit"
)

// Result is the outcome of a finished session. Winner is nil on a draw,
// WinLine is nil unless the game ended with five in a row.
type Result struct {
	Winner  *Slot        `json:"winner"`
	WinLine []Coordinate `json:"winLine"`
	IsDraw  bool         `json:"isDraw"`
	Reason  string       `json:"reason,omitempty"`
}

func NewWinResult(winner Slot, line []Coordinate) *Result {
	return &Result{Winner: &winner, WinLine: line, Reason: ReasonFiveInRow}
}

func NewDrawResult() *Result {
	return &Result{IsDraw: true, Reason: ReasonDraw}
}

func NewSurrenderResult(by Slot) *Result {
	winner := by.Opponent()
	return &Result{Winner: &winner, Reason: ReasonSurrender}
}

func NewForfeitResult(remaining Slot) *Result {
	return &Result{Winner: &remaining, Reason: ReasonForfeit}
}

// GameRecord is an archived finished game.
type GameRecord struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"room_id"`
	Result     *Result   `json:"result"`
	Moves      []Move    `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}
