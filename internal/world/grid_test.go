package world

import (
	"testing"

	"github.com/openmire/mobai/internal/ai"
	"github.com/openmire/mobai/internal/bestiary"
	"github.com/openmire/mobai/internal/model"
)

func testProfile(name string) *bestiary.Profile {
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
			MinDamage: 5,
			MaxDamage: 10,
		}},
	}
}

func newTestGrid(t *testing.T) (*Grid, *Registry) {
	t.Helper()
	registry := NewRegistry()
	grid := NewGrid(registry)
	grid.AddFloor(0, 0, 31, 31, 7)
	return grid, registry
}

func TestGrid_SightClear(t *testing.T) {
	grid, _ := newTestGrid(t)

	from := model.NewPosition(5, 5, 7)
	to := model.NewPosition(10, 5, 7)

	if !grid.SightClear(from, to, true) {
		t.Error("open corridor should have clear sight")
	}

	grid.SetTile(model.NewPosition(7, 5, 7), NewBlockedTile())
	if grid.SightClear(from, to, true) {
		t.Error("a wall between the endpoints must block sight")
	}

	// The endpoints themselves never block.
	grid.SetTile(from, NewBlockedTile())
	grid.SetTile(model.NewPosition(6, 5, 7), NewTile())
	grid.SetTile(model.NewPosition(7, 5, 7), NewTile())
	if !grid.SightClear(from, to, true) {
		t.Error("a blocked endpoint must not block the line itself")
	}

	if grid.SightClear(from, model.NewPosition(10, 5, 6), true) {
		t.Error("floor check must reject cross-floor sight")
	}
}

func TestGrid_SpectatorsRange(t *testing.T) {
	grid, _ := newTestGrid(t)

	center := model.NewPosition(15, 15, 7)
	inside := model.NewMonster(1, testProfile("A"))
	inside.SetPosition(model.NewPosition(15+spectatorRangeX, 15, 7))
	outside := model.NewMonster(2, testProfile("B"))
	outside.SetPosition(model.NewPosition(15+spectatorRangeX+1, 15, 7))

	if !grid.Place(inside) {
		t.Fatal("placing inside the floor should work")
	}
	grid.registry.Add(outside) // registry only; tile membership is irrelevant here

	var seen []uint32
	grid.Spectators(center, false, func(c model.Creature) bool {
		seen = append(seen, c.ID())
		return true
	})

	if len(seen) != 1 || seen[0] != inside.ID() {
		t.Errorf("spectators = %v, want only the creature on the range edge", seen)
	}
}

func TestGrid_MoveCreatureUpdatesTiles(t *testing.T) {
	grid, registry := newTestGrid(t)

	m := model.NewMonster(registry.AllocateID(), testProfile("Wolf"))
	start := model.NewPosition(10, 10, 7)
	m.SetPosition(start)
	if !grid.Place(m) {
		t.Fatal("place failed")
	}

	if !grid.MoveCreature(m.ID(), model.DirectionEast) {
		t.Fatal("open step should succeed")
	}
	if m.Position() != model.NewPosition(11, 10, 7) {
		t.Errorf("position = %v, want one step east", m.Position())
	}

	oldTile, _ := grid.TileAt(start)
	if oldTile.TopCreatureID() != 0 {
		t.Error("the origin tile must be vacated")
	}
	newTile, _ := grid.TileAt(m.Position())
	if newTile.TopCreatureID() != m.ID() {
		t.Error("the destination tile must hold the creature")
	}

	grid.SetTile(model.NewPosition(12, 10, 7), NewBlockedTile())
	if grid.MoveCreature(m.ID(), model.DirectionEast) {
		t.Error("stepping into a wall must be refused")
	}
}

func TestGrid_BlockingItemObstructs(t *testing.T) {
	grid, _ := newTestGrid(t)

	pos := model.NewPosition(10, 10, 7)
	tile, _ := grid.tileAt(pos)
	crate := NewItem("crate", true, true)
	tile.AddItem(crate)

	if !tile.BlocksPath() {
		t.Error("a blocking item must obstruct the tile")
	}

	if !grid.MoveItem(crate, pos, model.NewPosition(11, 10, 7)) {
		t.Fatal("relocating the crate should work")
	}
	if tile.BlocksPath() {
		t.Error("the tile must clear once the blocker is gone")
	}
}

func TestGrid_RemoveMarksAndNotifies(t *testing.T) {
	grid, registry := newTestGrid(t)

	m := model.NewMonster(registry.AllocateID(), testProfile("Wolf"))
	m.SetPosition(model.NewPosition(10, 10, 7))
	grid.Place(m)

	var vanished []uint32
	registry.AddObserver(99, observerFunc{onVanished: func(c model.Creature) {
		vanished = append(vanished, c.ID())
	}})

	grid.Remove(m)

	if !m.IsRemoved() {
		t.Error("removed creature must carry the removal flag")
	}
	if _, ok := registry.Get(m.ID()); ok {
		t.Error("removed creature must not resolve anymore")
	}
	if len(vanished) != 1 || vanished[0] != m.ID() {
		t.Errorf("vanish events = %v, want one for the creature", vanished)
	}
}

// observerFunc adapts closures to the Observer interface for tests.
type observerFunc struct {
	onSighted  func(model.Creature)
	onVanished func(model.Creature)
	onMoved    func(model.Creature, model.Position, model.Position)
}

func (o observerFunc) OnSighted(c model.Creature) {
	if o.onSighted != nil {
		o.onSighted(c)
	}
}

func (o observerFunc) OnVanished(c model.Creature) {
	if o.onVanished != nil {
		o.onVanished(c)
	}
}

func (o observerFunc) OnMoved(c model.Creature, oldPos, newPos model.Position) {
	if o.onMoved != nil {
		o.onMoved(c, oldPos, newPos)
	}
}

func TestFindPath_StraightCorridor(t *testing.T) {
	grid, _ := newTestGrid(t)

	from := model.NewPosition(5, 5, 7)
	to := model.NewPosition(9, 5, 7)

	path, ok := grid.FindPath(from, to, ai.PathParams{
		MinTargetDist: 1,
		MaxTargetDist: 1,
		FullSearch:    true,
	})
	if !ok {
		t.Fatal("open corridor should be pathable")
	}
	if len(path) != 3 {
		t.Fatalf("path length = %d, want 3 (stop adjacent)", len(path))
	}
	for _, dir := range path {
		if dir != model.DirectionEast {
			t.Errorf("step = %v, want east", dir)
		}
	}
}

func TestFindPath_AlreadyInPosition(t *testing.T) {
	grid, _ := newTestGrid(t)

	from := model.NewPosition(5, 5, 7)
	to := model.NewPosition(6, 5, 7)

	path, ok := grid.FindPath(from, to, ai.PathParams{
		MinTargetDist: 1,
		MaxTargetDist: 1,
		FullSearch:    true,
	})
	if !ok {
		t.Fatal("standing at the goal distance should count as found")
	}
	if len(path) != 0 {
		t.Errorf("path = %v, want empty for an in-position start", path)
	}
}

func TestFindPath_RoutesAroundWall(t *testing.T) {
	grid, _ := newTestGrid(t)

	// Vertical wall with a gap at y=2.
	for y := int32(3); y <= 31; y++ {
		grid.SetTile(model.NewPosition(10, y, 7), NewBlockedTile())
	}

	from := model.NewPosition(8, 8, 7)
	to := model.NewPosition(12, 8, 7)

	path, ok := grid.FindPath(from, to, ai.PathParams{
		MinTargetDist: 1,
		MaxTargetDist: 1,
		FullSearch:    true,
	})
	if !ok {
		t.Fatal("a detour through the gap exists and should be found")
	}

	// Walk the path and verify it never crosses a blocked tile and ends
	// adjacent to the destination.
	pos := from
	for _, dir := range path {
		pos = pos.Next(dir)
		if tile, exists := grid.tileAt(pos); !exists || tile.BlocksPath() {
			t.Fatalf("path crosses unusable tile at %v", pos)
		}
	}
	if pos.ChebyshevDistance(to) != 1 {
		t.Errorf("path ends at %v, want adjacent to %v", pos, to)
	}
}

func TestFindPath_KeepDistanceFlees(t *testing.T) {
	grid, _ := newTestGrid(t)

	from := model.NewPosition(15, 15, 7)
	threat := model.NewPosition(14, 15, 7)

	path, ok := grid.FindPath(from, threat, ai.PathParams{
		MinTargetDist: 1,
		MaxTargetDist: 6,
		KeepDistance:  true,
	})
	if !ok {
		t.Fatal("open plane flee should find an escape")
	}

	pos := from
	for _, dir := range path {
		pos = pos.Next(dir)
	}
	if got := pos.ChebyshevDistance(threat); got != 6 {
		t.Errorf("flee path ends at distance %d, want the full 6", got)
	}
}

func TestFindPath_NoRouteFails(t *testing.T) {
	grid, _ := newTestGrid(t)

	// Box the start in completely.
	for _, pos := range []model.Position{
		{X: 4, Y: 4, Z: 7}, {X: 5, Y: 4, Z: 7}, {X: 6, Y: 4, Z: 7},
		{X: 4, Y: 5, Z: 7}, {X: 6, Y: 5, Z: 7},
		{X: 4, Y: 6, Z: 7}, {X: 5, Y: 6, Z: 7}, {X: 6, Y: 6, Z: 7},
	} {
		grid.SetTile(pos, NewBlockedTile())
	}

	_, ok := grid.FindPath(model.NewPosition(5, 5, 7), model.NewPosition(20, 20, 7), ai.PathParams{
		MinTargetDist: 1,
		MaxTargetDist: 1,
		FullSearch:    true,
	})
	if ok {
		t.Error("a boxed-in start must not produce a path")
	}
}
