package ai

import (
	"math/rand/v2"

	"github.com/openmire/mobai/internal/model"
)

// maxItemPushes caps relocations per cleared tile; further blockers are
// destroyed instead.
const maxItemPushes = 20

// pushItem tries to toss item to one of the eight neighboring tiles, in
// random order. Reports whether the item found a new home.
func (ai *MonsterAI) pushItem(item Item, from model.Position) bool {
	offsets := [][2]int32{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}
	rand.Shuffle(len(offsets), func(i, j int) { offsets[i], offsets[j] = offsets[j], offsets[i] })

	for _, off := range offsets {
		tryPos := model.NewPosition(from.X+off[0], from.Y+off[1], from.Z)
		if _, ok := ai.gameMap.TileAt(tryPos); !ok {
			continue
		}
		if !ai.gameMap.CanThrowTo(from, tryPos) {
			continue
		}
		if ai.gameMap.MoveItem(item, from, tryPos) {
			return true
		}
	}
	return false
}

// pushItems clears movable blocking items off the tile at pos, destroying
// what cannot be relocated. Destruction shows a puff effect once per tile.
func (ai *MonsterAI) pushItems(tile Tile, pos model.Position) {
	moveCount := 0
	removeCount := 0

	items := tile.BlockingItems()
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		if !item.Movable() || !item.Blocking() {
			continue
		}

		if moveCount < maxItemPushes && ai.pushItem(item, pos) {
			moveCount++
		} else if ai.gameMap.RemoveItem(item, pos) {
			removeCount++
		}
	}

	if removeCount > 0 && ai.actions.Effect != nil {
		ai.actions.Effect(pos, EffectPoff)
	}
}

// pushCreature shoves blocker one tile in a random cardinal direction.
func (ai *MonsterAI) pushCreature(blocker *model.Monster) bool {
	dirs := []model.Direction{
		model.DirectionNorth,
		model.DirectionWest,
		model.DirectionEast,
		model.DirectionSouth,
	}
	rand.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })

	for _, dir := range dirs {
		tryPos := blocker.Position().Next(dir)
		if tile, ok := ai.gameMap.TileAt(tryPos); ok && !tile.BlocksPath() {
			if ai.gameMap.MoveCreature(blocker.ID(), dir) {
				return true
			}
		}
	}
	return false
}

// pushCreatures clears pushable creatures off the tile at pos. A blocker
// that will not budge in any direction is destroyed; destruction shows a
// block-hit effect once per tile.
func (ai *MonsterAI) pushCreatures(tile Tile, pos model.Position) {
	removeCount := 0
	var lastPushed uint32

	for _, id := range tile.CreatureIDs() {
		c, ok := ai.resolveCreature(id)
		if !ok {
			continue
		}
		blocker, isMonster := c.(*model.Monster)
		if !isMonster || !blocker.IsPushable() {
			continue
		}

		if blocker.ID() != lastPushed && ai.pushCreature(blocker) {
			lastPushed = blocker.ID()
			continue
		}

		if ai.actions.Kill != nil {
			ai.actions.Kill(blocker.ID())
		}
		removeCount++
	}

	if removeCount > 0 && ai.actions.Effect != nil {
		ai.actions.Effect(pos, EffectBlockHit)
	}
}
