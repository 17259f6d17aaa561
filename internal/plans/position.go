package plans

import (
	"fmt"
	"strings"
)

type positionKind int

const (
	positionPrevious positionKind = iota + 1
	positionNext
	positionIndex
)

// Position is the target of a workout move: one step up, one step down,
// or an explicit 1-based index.
type Position struct {
	kind  positionKind
	index int
}

func Previous() Position {
	return Position{kind: positionPrevious}
}

func Next() Position {
	return Position{kind: positionNext}
}

func Index(n int) Position {
	return Position{kind: positionIndex, index: n}
}

func (p Position) String() string {
	switch p.kind {
	case positionPrevious:
		return "previous"
	case positionNext:
		return "next"
	case positionIndex:
		return fmt.Sprintf("index(%d)", p.index)
	default:
		return "invalid"
	}
}

// ParsePosition reads a move target from its wire form: a direction
// ("previous" or "next") or an explicit index, exactly one of them.
func ParsePosition(direction string, index *int) (Position, error) {
	direction = strings.ToLower(strings.TrimSpace(direction))
	switch {
	case direction != "" && index != nil:
		return Position{}, fmt.Errorf("%w: both direction and index set", ErrInvalidPosition)
	case index != nil:
		return Index(*index), nil
	case direction == "previous":
		return Previous(), nil
	case direction == "next":
		return Next(), nil
	default:
		return Position{}, fmt.Errorf("%w: unknown direction [%s]", ErrInvalidPosition, direction)
	}
}

// Resolve returns the 1-based target position for a workout currently at
// position current in a plan of count workouts.
func (p Position) Resolve(current, count int) (int, error) {
	if current < 1 || current > count {
		return 0, fmt.Errorf("%w: current position %d of %d", ErrInvalidPosition, current, count)
	}

	var target int
	switch p.kind {
	case positionPrevious:
		target = current - 1
	case positionNext:
		target = current + 1
	case positionIndex:
		target = p.index
	default:
		return 0, fmt.Errorf("%w: unset position", ErrInvalidPosition)
	}

	if target < 1 || target > count {
		return 0, fmt.Errorf("%w: %s from %d of %d", ErrInvalidPosition, p, current, count)
	}
	return target, nil
}

// reorder moves the element at from to to (both 1-based) and returns the new order.
func reorder(ids []int64, from, to int) []int64 {
	moved := ids[from-1]
	rest := make([]int64, 0, len(ids)-1)
	rest = append(rest, ids[:from-1]...)
	rest = append(rest, ids[from:]...)

	reordered := make([]int64, 0, len(ids))
	reordered = append(reordered, rest[:to-1]...)
	reordered = append(reordered, moved)
	reordered = append(reordered, rest[to-1:]...)
	return reordered
}
