package gomoku

import "github.com/rocketscienceinc/gomoku-backend/internal/entity"

// slotSet is the occupancy of a session: one bit per playing slot.
type slotSet uint8

func slotBit(slot entity.Slot) slotSet {
	if !slot.IsPlayer() {
		return 0
	}
	return 1 << (slot - 1)
}

func (that slotSet) has(slot entity.Slot) bool {
	bit := slotBit(slot)
	return bit != 0 && that&bit != 0
}

func (that *slotSet) add(slot entity.Slot) {
	*that |= slotBit(slot)
}

func (that *slotSet) remove(slot entity.Slot) {
	*that &^= slotBit(slot)
}

func (that slotSet) len() int {
	n := 0
	if that.has(entity.SlotFirst) {
		n++
	}
	if that.has(entity.SlotSecond) {
		n++
	}
	return n
}

// slots lists the occupied slots, First before Second.
func (that slotSet) slots() []entity.Slot {
	out := make([]entity.Slot, 0, 2)
	for _, slot := range []entity.Slot{entity.SlotFirst, entity.SlotSecond} {
		if that.has(slot) {
			out = append(out, slot)
		}
	}
	return out
}

// only returns the single occupied slot, or SlotNone when the set does not hold exactly one.
func (that slotSet) only() entity.Slot {
	if that.len() != 1 {
		return entity.SlotNone
	}
	return that.slots()[0]
}
