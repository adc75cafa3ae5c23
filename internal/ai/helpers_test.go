package ai

import (
	"github.com/openmire/mobai/internal/bestiary"
	"github.com/openmire/mobai/internal/config"
	"github.com/openmire/mobai/internal/model"
)

// fakeTile is a minimal Tile for collaborator fakes.
type fakeTile struct {
	blocked   bool
	topID     uint32
	items     []Item
	creatures []uint32
}

func (t *fakeTile) BlocksPath() bool      { return t.blocked }
func (t *fakeTile) TopCreatureID() uint32 { return t.topID }
func (t *fakeTile) BlockingItems() []Item { return t.items }
func (t *fakeTile) CreatureIDs() []uint32 { return t.creatures }

// fakeWorld implements GameMap and Pathfinder over an infinite open plane.
// Specific cells can be blocked; creatures are registered by ID and their
// positions drive spectator scans and sight checks.
type fakeWorld struct {
	creatures map[uint32]model.Creature
	blocked   map[model.Position]bool
	// sightBlocked fails every SightClear call when set.
	sightBlocked bool
	// findPath overrides pathfinding; nil means "no path found".
	findPath func(from, to model.Position, params PathParams) ([]model.Direction, bool)

	movedCreatures []uint32
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		creatures: make(map[uint32]model.Creature),
		blocked:   make(map[model.Position]bool),
	}
}

func (w *fakeWorld) add(c model.Creature) {
	w.creatures[c.ID()] = c
}

func (w *fakeWorld) resolve(id uint32) (model.Creature, bool) {
	c, ok := w.creatures[id]
	if !ok || c.IsRemoved() {
		return nil, false
	}
	return c, true
}

func (w *fakeWorld) TileAt(pos model.Position) (Tile, bool) {
	if w.blocked[pos] {
		return &fakeTile{blocked: true}, true
	}
	var topID uint32
	var ids []uint32
	for id, c := range w.creatures {
		if !c.IsRemoved() && c.Position() == pos {
			ids = append(ids, id)
			if topID == 0 {
				topID = id
			}
		}
	}
	return &fakeTile{topID: topID, creatures: ids}, true
}

func (w *fakeWorld) Spectators(pos model.Position, multiFloor bool, fn func(model.Creature) bool) {
	for _, c := range w.creatures {
		if c.IsRemoved() {
			continue
		}
		other := c.Position()
		if !multiFloor && other.Z != pos.Z {
			continue
		}
		if pos.InRange(other, 11, 11) {
			if !fn(c) {
				return
			}
		}
	}
}

func (w *fakeWorld) SightClear(from, to model.Position, floorCheck bool) bool {
	if w.sightBlocked {
		return false
	}
	return !floorCheck || from.Z == to.Z
}

func (w *fakeWorld) CanThrowTo(from, to model.Position) bool {
	return !w.blocked[to]
}

func (w *fakeWorld) MoveItem(item Item, from, to model.Position) bool { return true }

func (w *fakeWorld) RemoveItem(item Item, from model.Position) bool { return true }

func (w *fakeWorld) MoveCreature(id uint32, dir model.Direction) bool {
	c, ok := w.resolve(id)
	if !ok {
		return false
	}
	next := c.Position().Next(dir)
	if w.blocked[next] {
		return false
	}
	c.SetPosition(next)
	w.movedCreatures = append(w.movedCreatures, id)
	return true
}

func (w *fakeWorld) FindPath(from, to model.Position, params PathParams) ([]model.Direction, bool) {
	if w.findPath == nil {
		return nil, false
	}
	return w.findPath(from, to, params)
}

func meleeProfile(name string) *bestiary.Profile {
	return &bestiary.Profile{
		Name:               name,
		Health:             100,
		TargetDistance:     1,
		StaticAttackChance: 95,
		Hostile:            true,
		Attack: []bestiary.Ability{{
			Name:      "claw",
			Kind:      "melee",
			Melee:     true,
			Speed:     2000,
			Chance:    100,
			Range:     1,
			MinDamage: 1,
			MaxDamage: 5,
		}},
	}
}

func rangedProfile(name string, targetDistance int32) *bestiary.Profile {
	return &bestiary.Profile{
		Name:               name,
		Health:             100,
		TargetDistance:     targetDistance,
		StaticAttackChance: 95,
		Hostile:            true,
		Attack: []bestiary.Ability{{
			Name:      "bolt",
			Kind:      "energy",
			Speed:     2000,
			Chance:    100,
			Range:     7,
			MinDamage: 5,
			MaxDamage: 20,
		}},
	}
}

func testConfig() config.World {
	cfg := config.DefaultWorld()
	cfg.DespawnRadius = 10
	cfg.DespawnRange = 2
	cfg.WalkToSpawnRadius = 3
	return cfg
}

// newTestAI wires a monster brain over a fake world. The returned clock
// pointer advances the brain's wall clock.
func newTestAI(m *model.Monster, w *fakeWorld, actions Actions) (*MonsterAI, *int64) {
	clock := new(int64)
	*clock = 1_000_000

	brain := NewMonsterAI(m, testConfig(), w, w, w.resolve, actions)
	brain.now = func() int64 { return *clock }
	brain.Start()
	w.add(m)
	return brain, clock
}

func newTestPlayer(w *fakeWorld, id uint32, pos model.Position) *model.Player {
	p := model.NewPlayer(id, "TestPlayer", 150)
	p.SetPosition(pos)
	p.SetOnline(true)
	w.add(p)
	return p
}
