// Package world is the in-memory world state the decision engine runs
// against: the entity registry, the tile grid with line of sight and
// pathfinding, and the engine glue that spawns creatures and applies their
// actions. Everything here runs on the scheduler goroutine.
package world

import (
	"github.com/openmire/mobai/internal/model"
)

// Observer receives world visibility events. Creature controllers register
// themselves as observers; they filter by their own viewport.
type Observer interface {
	OnSighted(c model.Creature)
	OnVanished(c model.Creature)
	OnMoved(c model.Creature, oldPos, newPos model.Position)
}

// Registry is the entity table: ID allocation, lookup and event fan-out.
type Registry struct {
	nextID    uint32
	creatures map[uint32]model.Creature
	observers map[uint32]Observer
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		creatures: make(map[uint32]model.Creature),
		observers: make(map[uint32]Observer),
	}
}

// AllocateID hands out the next object ID. IDs are never reused.
func (r *Registry) AllocateID() uint32 {
	r.nextID++
	return r.nextID
}

// Add stores a creature. Visibility notification is the grid's job, after
// tile placement.
func (r *Registry) Add(c model.Creature) {
	r.creatures[c.ID()] = c
}

// Delete forgets a creature.
func (r *Registry) Delete(id uint32) {
	delete(r.creatures, id)
}

// Get resolves a live creature by ID. Removed creatures resolve as absent.
func (r *Registry) Get(id uint32) (model.Creature, bool) {
	c, ok := r.creatures[id]
	if !ok || c.IsRemoved() {
		return nil, false
	}
	return c, true
}

// PlayerByID resolves a player by ID, including recently disconnected ones
// still known to the world.
func (r *Registry) PlayerByID(id uint32) (*model.Player, bool) {
	c, ok := r.creatures[id]
	if !ok {
		return nil, false
	}
	p, isPlayer := c.(*model.Player)
	return p, isPlayer
}

// Each visits every stored creature. fn returning false stops the walk.
func (r *Registry) Each(fn func(model.Creature) bool) {
	for _, c := range r.creatures {
		if !fn(c) {
			return
		}
	}
}

// AddObserver subscribes a controller to visibility events, keyed by its
// creature's ID.
func (r *Registry) AddObserver(id uint32, o Observer) {
	r.observers[id] = o
}

// RemoveObserver unsubscribes a controller.
func (r *Registry) RemoveObserver(id uint32) {
	delete(r.observers, id)
}

// NotifySighted fans a creature-appeared event out to all observers.
func (r *Registry) NotifySighted(c model.Creature) {
	for _, o := range r.observers {
		o.OnSighted(c)
	}
}

// NotifyVanished fans a creature-disappeared event out to all observers.
func (r *Registry) NotifyVanished(c model.Creature) {
	for _, o := range r.observers {
		o.OnVanished(c)
	}
}

// NotifyMoved fans a creature-moved event out to all observers.
func (r *Registry) NotifyMoved(c model.Creature, oldPos, newPos model.Position) {
	for _, o := range r.observers {
		o.OnMoved(c, oldPos, newPos)
	}
}
