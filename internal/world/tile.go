package world

import (
	"github.com/openmire/mobai/internal/ai"
)

// Item is a thing lying on a tile.
type Item struct {
	name     string
	movable  bool
	blocking bool
}

// NewItem creates an item.
func NewItem(name string, movable, blocking bool) *Item {
	return &Item{name: name, movable: movable, blocking: blocking}
}

// Name returns the item name.
func (i *Item) Name() string { return i.name }

// Movable reports whether the item may be relocated.
func (i *Item) Movable() bool { return i.movable }

// Blocking reports whether the item blocks pathing.
func (i *Item) Blocking() bool { return i.blocking }

// Tile is one map cell: static ground state, items and standing creatures.
type Tile struct {
	blocked   bool
	items     []*Item
	creatures []uint32
}

// NewTile creates a walkable tile.
func NewTile() *Tile { return &Tile{} }

// NewBlockedTile creates a statically impassable tile (wall, water).
func NewBlockedTile() *Tile { return &Tile{blocked: true} }

// BlocksPath reports whether the cell refuses creature movement: static
// obstruction or any blocking item.
func (t *Tile) BlocksPath() bool {
	if t.blocked {
		return true
	}
	for _, item := range t.items {
		if item.blocking {
			return true
		}
	}
	return false
}

// TopCreatureID returns the visible creature occupying the cell, 0 when
// the cell is free.
func (t *Tile) TopCreatureID() uint32 {
	if len(t.creatures) == 0 {
		return 0
	}
	return t.creatures[0]
}

// BlockingItems returns the items obstructing the cell.
func (t *Tile) BlockingItems() []ai.Item {
	out := make([]ai.Item, 0, len(t.items))
	for _, item := range t.items {
		if item.blocking {
			out = append(out, item)
		}
	}
	return out
}

// CreatureIDs returns all creatures standing on the cell. The returned
// slice is a copy.
func (t *Tile) CreatureIDs() []uint32 {
	out := make([]uint32, len(t.creatures))
	copy(out, t.creatures)
	return out
}

// AddItem puts an item on the tile.
func (t *Tile) AddItem(item *Item) {
	t.items = append(t.items, item)
}

func (t *Tile) removeItem(item *Item) bool {
	for i, v := range t.items {
		if v == item {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return true
		}
	}
	return false
}

func (t *Tile) addCreature(id uint32) {
	t.creatures = append(t.creatures, id)
}

func (t *Tile) removeCreature(id uint32) {
	for i, v := range t.creatures {
		if v == id {
			t.creatures = append(t.creatures[:i], t.creatures[i+1:]...)
			return
		}
	}
}
