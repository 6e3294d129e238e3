// Package paired maps workspace ids onto the slots shared by the primary and
// secondary monitors.
package paired

import (
	"errors"
	"fmt"
	"strings"
)

// ErrZeroOffset is returned when a pairing offset is below one.
var ErrZeroOffset = errors.New("paired offset must be at least 1")

// Direction selects the neighbour slot for cycling.
type Direction int

const (
	Next Direction = iota
	Prev
)

func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Prev:
		return "prev"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts "next" or "prev" in any case.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "next":
		return Next, nil
	case "prev", "previous":
		return Prev, nil
	default:
		return 0, fmt.Errorf("unknown cycle direction %q", s)
	}
}

// CheckOffset validates a pairing offset.
func CheckOffset(offset int) error {
	if offset < 1 {
		return fmt.Errorf("%w, got %d", ErrZeroOffset, offset)
	}
	return nil
}

// Normalize folds id into the slot range [1, offset]. The offset must have
// passed CheckOffset; a zero offset panics like an integer division would.
func Normalize(id, offset int) int {
	if offset < 1 {
		panic(ErrZeroOffset)
	}
	slot := (id - 1) % offset
	if slot < 0 {
		slot += offset
	}
	return slot + 1
}

// Secondary returns the workspace id that mirrors slot on the secondary monitor.
func Secondary(slot, offset int) int {
	return Normalize(slot, offset) + offset
}

// OnSecondary reports whether id lives in the secondary monitor's range.
func OnSecondary(id, offset int) bool {
	return id > offset
}

// CycleTarget returns the slot adjacent to base. With wrap disabled the
// result is clamped at the first and last slot.
func CycleTarget(base, offset int, dir Direction, wrap bool) int {
	switch dir {
	case Prev:
		if !wrap {
			if base <= 1 {
				return 1
			}
			return base - 1
		}
		return ((base+offset-2)%offset+offset)%offset + 1
	default:
		if !wrap {
			if base >= offset {
				return offset
			}
			return base + 1
		}
		return (base%offset+offset)%offset + 1
	}
}
