package button

import (
	"fmt"
	"strconv"
)

// ID names one of the board's buttons.
type ID int

const (
	Button0 ID = iota
	Button1
	Button2
	Button3
)

// Count is the number of buttons on the board.
const Count = 4

// Valid reports whether id names a button.
func (id ID) Valid() bool {
	return id >= 0 && id < Count
}

func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("BTN(%d)", int(id))
	}
	return "BTN" + strconv.Itoa(int(id))
}

// Set is a batch of buttons whose lines rose together.
type Set uint32

// SetOf builds a Set. Invalid IDs are ignored.
func SetOf(ids ...ID) Set {
	var s Set
	for _, id := range ids {
		if id.Valid() {
			s |= 1 << uint(id)
		}
	}
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id ID) bool {
	return id.Valid() && s&(1<<uint(id)) != 0
}
