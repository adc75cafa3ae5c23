package ai

import (
	"github.com/openmire/mobai/internal/bestiary"
	"github.com/openmire/mobai/internal/model"
)

// Resolver looks up a live creature by object ID. It is the single weak
// reference resolution point: every stored relation is an ID that must pass
// through a Resolver before use, and a failed lookup means the entity is
// gone and the holder silently forgets it.
type Resolver func(id uint32) (model.Creature, bool)

// Item is the engine's view of a thing lying on a tile, as far as
// obstruction clearing cares.
type Item interface {
	// Movable reports whether the item may be relocated.
	Movable() bool
	// Blocking reports whether the item blocks pathing.
	Blocking() bool
}

// Tile is the engine's view of one map cell.
type Tile interface {
	// BlocksPath reports whether the cell refuses creature movement.
	BlocksPath() bool
	// TopCreatureID returns the ID of the visible creature occupying the
	// cell, or 0 when the cell is free.
	TopCreatureID() uint32
	// BlockingItems returns the items that currently obstruct the cell.
	BlockingItems() []Item
	// CreatureIDs returns all creatures standing on the cell.
	CreatureIDs() []uint32
}

// GameMap is the spatial index collaborator. The engine only queries and
// requests mutations; tile storage and line-of-sight live elsewhere.
type GameMap interface {
	// TileAt returns the tile at pos, if the map has one there.
	TileAt(pos model.Position) (Tile, bool)

	// Spectators visits every creature around pos. fn returning false
	// stops the scan.
	Spectators(pos model.Position, multiFloor bool, fn func(model.Creature) bool)

	// SightClear reports whether the straight line between the positions
	// is free of sight-blocking obstacles.
	SightClear(from, to model.Position, floorCheck bool) bool

	// CanThrowTo reports whether an object can be tossed from from to to.
	CanThrowTo(from, to model.Position) bool

	// MoveItem relocates item from one tile to another. False means the
	// destination refused it.
	MoveItem(item Item, from, to model.Position) bool

	// RemoveItem destroys item in place.
	RemoveItem(item Item, from model.Position) bool

	// MoveCreature steps a creature one tile. False means the step was
	// refused.
	MoveCreature(id uint32, dir model.Direction) bool
}

// PathParams tune a pathfinding request.
type PathParams struct {
	// MinTargetDist and MaxTargetDist bound the acceptable stopping
	// distance from the destination.
	MinTargetDist int32
	MaxTargetDist int32
	// FullSearch allows the search to walk away from the target first.
	FullSearch bool
	// ClearSight requires line of sight from the stopping cell.
	ClearSight bool
	// KeepDistance prefers stopping cells far from the destination.
	KeepDistance bool
}

// Pathfinder is the pathfinding collaborator.
type Pathfinder interface {
	// FindPath computes a step sequence from from toward to. The second
	// return is false when no acceptable path exists.
	FindPath(from, to model.Position, params PathParams) ([]model.Direction, bool)
}

// World effect identifiers emitted on obstruction destruction and despawn.
const (
	EffectPoff     = "poff"
	EffectBlockHit = "blockhit"
)

// Actions groups the world mutation callbacks the engine invokes. They are
// injected to keep the combat, movement and effect engines out of this
// package; a nil member disables the respective behavior.
type Actions struct {
	// Cast executes an ability against a target. Self-targeted defensive
	// abilities receive the monster itself as target.
	Cast func(m *model.Monster, target model.Creature, ability *bestiary.Ability)

	// Summon places a new creature of the given spec next to m and
	// returns its ID.
	Summon func(m *model.Monster, spec *bestiary.SummonSpec) (uint32, bool)

	// Say broadcasts a voice line.
	Say func(m *model.Monster, text string, yell bool)

	// Effect shows a world visual effect.
	Effect func(pos model.Position, effect string)

	// Walk performs one decided step. pathDerived marks steps consumed
	// from a precomputed path.
	Walk func(m *model.Monster, dir model.Direction, pathDerived bool) bool

	// Turn orients the monster.
	Turn func(m *model.Monster, dir model.Direction)

	// Teleport relocates the monster instantly (leash enforcement).
	Teleport func(m *model.Monster, pos model.Position)

	// Remove despawns the monster.
	Remove func(m *model.Monster)

	// Kill force-destroys another creature (unpushable blockers,
	// orphaned summons).
	Kill func(id uint32)
}

// Overrides are the optional behavior override entry points, one per
// event. A hook returning true reports the event fully handled and default
// processing is skipped. Hooks run synchronously and may remove the
// creature; every step after a hook re-checks removal.
type Overrides struct {
	OnAppeared func(m *model.Monster, c model.Creature) bool
	OnVanished func(m *model.Monster, c model.Creature) bool
	OnMoved    func(m *model.Monster, c model.Creature, oldPos, newPos model.Position) bool
	OnSaid     func(m *model.Monster, c model.Creature, text string) bool
	OnThink    func(m *model.Monster, interval int64) bool
}
