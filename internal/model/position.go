package model

// Position представляет клетку игровой карты.
// Value type, передаётся по значению (immutable).
type Position struct {
	X int32
	Y int32
	Z int8 // floor / elevation layer
}

// NewPosition создаёт Position с указанными координатами.
func NewPosition(x, y int32, z int8) Position {
	return Position{X: x, Y: y, Z: z}
}

// DistanceX returns the absolute X distance to other.
func (p Position) DistanceX(other Position) int32 {
	return abs32(p.X - other.X)
}

// DistanceY returns the absolute Y distance to other.
func (p Position) DistanceY(other Position) int32 {
	return abs32(p.Y - other.Y)
}

// DistanceZ returns the absolute floor distance to other.
func (p Position) DistanceZ(other Position) int32 {
	return abs32(int32(p.Z) - int32(other.Z))
}

// OffsetX returns the signed X offset from other to p.
func (p Position) OffsetX(other Position) int32 {
	return p.X - other.X
}

// OffsetY returns the signed Y offset from other to p.
func (p Position) OffsetY(other Position) int32 {
	return p.Y - other.Y
}

// ManhattanDistance returns |dx| + |dy|, ignoring floors.
func (p Position) ManhattanDistance(other Position) int32 {
	return p.DistanceX(other) + p.DistanceY(other)
}

// ChebyshevDistance returns max(|dx|, |dy|), ignoring floors.
// This is the tile walking distance used for ability ranges.
func (p Position) ChebyshevDistance(other Position) int32 {
	return max(p.DistanceX(other), p.DistanceY(other))
}

// InRange reports whether other is within the given horizontal radius
// on both axes. Floors are not compared.
func (p Position) InRange(other Position, rangeX, rangeY int32) bool {
	return p.DistanceX(other) <= rangeX && p.DistanceY(other) <= rangeY
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is one of the eight walkable directions.
type Direction uint8

const (
	DirectionNorth Direction = iota
	DirectionEast
	DirectionSouth
	DirectionWest
	DirectionSouthWest
	DirectionSouthEast
	DirectionNorthWest
	DirectionNorthEast
)

// String returns human-readable direction name.
func (d Direction) String() string {
	switch d {
	case DirectionNorth:
		return "NORTH"
	case DirectionEast:
		return "EAST"
	case DirectionSouth:
		return "SOUTH"
	case DirectionWest:
		return "WEST"
	case DirectionSouthWest:
		return "SOUTH_WEST"
	case DirectionSouthEast:
		return "SOUTH_EAST"
	case DirectionNorthWest:
		return "NORTH_WEST"
	case DirectionNorthEast:
		return "NORTH_EAST"
	default:
		return "UNKNOWN"
	}
}

// Next returns the position one step from p in direction d.
func (p Position) Next(d Direction) Position {
	switch d {
	case DirectionNorth:
		p.Y--
	case DirectionEast:
		p.X++
	case DirectionSouth:
		p.Y++
	case DirectionWest:
		p.X--
	case DirectionSouthWest:
		p.X--
		p.Y++
	case DirectionSouthEast:
		p.X++
		p.Y++
	case DirectionNorthWest:
		p.X--
		p.Y--
	case DirectionNorthEast:
		p.X++
		p.Y--
	}
	return p
}

// DirectionTo returns the rough direction from p toward target,
// preferring the dominant axis.
func (p Position) DirectionTo(target Position) Direction {
	dx := target.X - p.X
	dy := target.Y - p.Y

	if abs32(dx) >= abs32(dy) {
		if dx < 0 {
			return DirectionWest
		}
		return DirectionEast
	}
	if dy < 0 {
		return DirectionNorth
	}
	return DirectionSouth
}
