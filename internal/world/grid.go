package world

import (
	"github.com/openmire/mobai/internal/ai"
	"github.com/openmire/mobai/internal/model"
)

const (
	// spectatorRange is how far visibility events travel, slightly wider
	// than the creature viewport.
	spectatorRangeX = 11
	spectatorRangeY = 11
	// spectatorFloors bounds multi-floor spectator scans.
	spectatorFloors = 2

	// throwRange bounds object tosses.
	throwRange = 7
)

// Grid is the tile map: spatial queries, line of sight and creature/item
// placement. It implements the engine's GameMap collaborator.
type Grid struct {
	registry *Registry
	tiles    map[model.Position]*Tile
}

// NewGrid creates an empty grid over the given registry.
func NewGrid(registry *Registry) *Grid {
	return &Grid{
		registry: registry,
		tiles:    make(map[model.Position]*Tile),
	}
}

// SetTile places a tile at pos, replacing any previous one.
func (g *Grid) SetTile(pos model.Position, tile *Tile) {
	g.tiles[pos] = tile
}

// AddFloor fills the rectangle with walkable tiles. Convenience for world
// setup and tests.
func (g *Grid) AddFloor(x1, y1, x2, y2 int32, z int8) {
	for x := x1; x <= x2; x++ {
		for y := y1; y <= y2; y++ {
			g.tiles[model.NewPosition(x, y, z)] = NewTile()
		}
	}
}

// TileAt returns the tile at pos, if the map has one there.
func (g *Grid) TileAt(pos model.Position) (ai.Tile, bool) {
	tile, ok := g.tiles[pos]
	if !ok {
		return nil, false
	}
	return tile, true
}

func (g *Grid) tileAt(pos model.Position) (*Tile, bool) {
	tile, ok := g.tiles[pos]
	return tile, ok
}

// Spectators visits every creature around pos. fn returning false stops
// the scan.
func (g *Grid) Spectators(pos model.Position, multiFloor bool, fn func(model.Creature) bool) {
	g.registry.Each(func(c model.Creature) bool {
		cpos := c.Position()
		if multiFloor {
			if pos.DistanceZ(cpos) > spectatorFloors {
				return true
			}
		} else if cpos.Z != pos.Z {
			return true
		}
		if !pos.InRange(cpos, spectatorRangeX, spectatorRangeY) {
			return true
		}
		return fn(c)
	})
}

// SightClear reports whether the straight line between the positions is
// free of sight-blocking tiles. Endpoints do not block themselves.
func (g *Grid) SightClear(from, to model.Position, floorCheck bool) bool {
	if floorCheck && from.Z != to.Z {
		return false
	}
	if from.X == to.X && from.Y == to.Y {
		return true
	}

	// Bresenham over the intermediate cells.
	x0, y0 := from.X, from.Y
	x1, y1 := to.X, to.Y

	dx := abs32(x1 - x0)
	dy := abs32(y1 - y0)
	sx := int32(1)
	if x0 > x1 {
		sx = -1
	}
	sy := int32(1)
	if y0 > y1 {
		sy = -1
	}

	errTerm := dx - dy
	x, y := x0, y0
	for {
		e2 := errTerm * 2
		if e2 > -dy {
			errTerm -= dy
			x += sx
		}
		if e2 < dx {
			errTerm += dx
			y += sy
		}
		if x == x1 && y == y1 {
			return true
		}
		if tile, ok := g.tiles[model.NewPosition(x, y, from.Z)]; !ok || tile.blocked {
			return false
		}
	}
}

// CanThrowTo reports whether an object can be tossed between the positions.
func (g *Grid) CanThrowTo(from, to model.Position) bool {
	if from.Z != to.Z {
		return false
	}
	if !from.InRange(to, throwRange, throwRange) {
		return false
	}
	return g.SightClear(from, to, true)
}

// MoveItem relocates an item between tiles. False means the destination
// refused it.
func (g *Grid) MoveItem(item ai.Item, from, to model.Position) bool {
	concrete, ok := item.(*Item)
	if !ok {
		return false
	}

	fromTile, ok := g.tileAt(from)
	if !ok {
		return false
	}
	toTile, ok := g.tileAt(to)
	if !ok || toTile.blocked {
		return false
	}

	if !fromTile.removeItem(concrete) {
		return false
	}
	toTile.AddItem(concrete)
	return true
}

// RemoveItem destroys an item in place.
func (g *Grid) RemoveItem(item ai.Item, from model.Position) bool {
	concrete, ok := item.(*Item)
	if !ok {
		return false
	}
	fromTile, ok := g.tileAt(from)
	if !ok {
		return false
	}
	return fromTile.removeItem(concrete)
}

// MoveCreature steps a creature one tile and fans the movement event out.
// False means the step was refused.
func (g *Grid) MoveCreature(id uint32, dir model.Direction) bool {
	c, ok := g.registry.Get(id)
	if !ok {
		return false
	}

	oldPos := c.Position()
	newPos := oldPos.Next(dir)
	return g.TeleportCreature(c, newPos)
}

// TeleportCreature relocates a creature to an arbitrary tile and fans the
// movement event out. Used for steps and leash snap-backs alike.
func (g *Grid) TeleportCreature(c model.Creature, newPos model.Position) bool {
	toTile, ok := g.tileAt(newPos)
	if !ok || toTile.BlocksPath() {
		return false
	}

	oldPos := c.Position()
	if fromTile, ok := g.tileAt(oldPos); ok {
		fromTile.removeCreature(c.ID())
	}
	toTile.addCreature(c.ID())
	c.SetPosition(newPos)

	g.registry.NotifyMoved(c, oldPos, newPos)
	return true
}

// Place adds a creature to the world: registry entry, tile membership and
// the appeared event.
func (g *Grid) Place(c model.Creature) bool {
	tile, ok := g.tileAt(c.Position())
	if !ok || tile.BlocksPath() {
		return false
	}

	g.registry.Add(c)
	tile.addCreature(c.ID())
	g.registry.NotifySighted(c)
	return true
}

// Remove takes a creature out of the world: tile membership, removal flag,
// vanish event, registry entry. The order lets vanish handlers still
// inspect the creature.
func (g *Grid) Remove(c model.Creature) {
	if tile, ok := g.tileAt(c.Position()); ok {
		tile.removeCreature(c.ID())
	}
	c.MarkRemoved()
	g.registry.NotifyVanished(c)
	g.registry.Delete(c.ID())
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
