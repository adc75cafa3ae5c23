package model

// Zone classifies the tile a creature currently occupies.
type Zone uint8

const (
	ZoneNormal Zone = iota
	ZoneProtection
	ZonePvP
)

// Creature is the minimal view the AI engine needs of any live entity.
// Implementations are owned by the world registry; the engine never stores
// a Creature past a tick boundary: it keeps IDs and resolves them fresh
// on every use (weak reference discipline, see world.Registry).
type Creature interface {
	// ID returns the world-unique object ID.
	ID() uint32

	// Name returns the display name.
	Name() string

	// Position returns the current map position.
	Position() Position

	// Health returns current hit points. Dead creatures report <= 0.
	Health() int32

	// MaxHealth returns the hit point ceiling.
	MaxHealth() int32

	// IsRemoved reports whether the entity has been taken out of the world.
	// A removed entity must be treated as absent everywhere.
	IsRemoved() bool

	// IsAttackable reports whether the entity can be engaged at all.
	IsAttackable() bool

	// Zone returns the zone of the occupied tile.
	Zone() Zone

	// MasterID returns the owning creature's ID for summons, 0 otherwise.
	MasterID() uint32

	// SetPosition moves the entity. Only the world grid calls this.
	SetPosition(pos Position)

	// MarkRemoved flags the entity as gone from the world.
	MarkRemoved()
}

// Summoned reports whether c has a living master link.
func Summoned(c Creature) bool {
	return c.MasterID() != 0
}
