package model

import "testing"

func TestRoomValid(t *testing.T) {
	for _, room := range []Room{RoomA, RoomB, RoomBoth} {
		if !room.Valid() {
			t.Errorf("expected %q to be valid", room)
		}
	}
	for _, room := range []Room{"", "C", "a", "AB", "B+A"} {
		if room.Valid() {
			t.Errorf("expected %q to be invalid", room)
		}
	}
}

func TestRoomConflictsWith(t *testing.T) {
	tests := []struct {
		a, b Room
		want bool
	}{
		{RoomA, RoomA, true},
		{RoomB, RoomB, true},
		{RoomA, RoomB, false},
		{RoomB, RoomA, false},
		{RoomA, RoomBoth, true},
		{RoomB, RoomBoth, true},
		{RoomBoth, RoomA, true},
		{RoomBoth, RoomB, true},
		{RoomBoth, RoomBoth, true},
	}

	for _, tt := range tests {
		if got := tt.a.ConflictsWith(tt.b); got != tt.want {
			t.Errorf("%q.ConflictsWith(%q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRoomMultiplier(t *testing.T) {
	if RoomA.Multiplier() != 1 || RoomB.Multiplier() != 1 {
		t.Error("single halls must have multiplier 1")
	}
	if RoomBoth.Multiplier() != 2 {
		t.Error("combined hall must have multiplier 2")
	}
}
