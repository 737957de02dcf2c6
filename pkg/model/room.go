package model

// Room identifies a bookable space. RoomBoth is the combination of the two
// physical halls; reserving it occupies both.
type Room string

const (
	RoomA    Room = "A"
	RoomB    Room = "B"
	RoomBoth Room = "A+B"
)

func (r Room) Valid() bool {
	switch r {
	case RoomA, RoomB, RoomBoth:
		return true
	}
	return false
}

// ConflictSet returns the rooms whose reservations block r. A single hall is
// blocked by itself and by the combination; the combination is blocked by
// everything.
func (r Room) ConflictSet() []Room {
	switch r {
	case RoomA:
		return []Room{RoomA, RoomBoth}
	case RoomB:
		return []Room{RoomB, RoomBoth}
	case RoomBoth:
		return []Room{RoomA, RoomB, RoomBoth}
	}
	return nil
}

func (r Room) ConflictsWith(other Room) bool {
	for _, c := range r.ConflictSet() {
		if c == other {
			return true
		}
	}
	return false
}

// Multiplier is the price factor applied to the hourly base rate.
func (r Room) Multiplier() int {
	if r == RoomBoth {
		return 2
	}
	return 1
}
