package ai

import (
	"math/rand/v2"

	"github.com/openmire/mobai/internal/model"
)

const (
	// fleeDistance is the pursuit distance requested while fleeing, just
	// beyond the client viewport.
	fleeDistance = viewRangeX + 2

	// wanderStepInterval paces idle wandering, in milliseconds.
	wanderStepInterval = 1000
)

// thinkMovement makes the single per-tick movement decision: refresh the
// pursuit path, pick the next step, clear obstructions on the step tile and
// hand the step to the walk action.
func (ai *MonsterAI) thinkMovement() {
	m := ai.monster

	ai.updateFollowPath()

	dir, pathDerived, ok := ai.nextStep()
	if !ok {
		return
	}

	if m.CanPushItems() || m.CanPushCreatures() {
		next := m.Position().Next(dir)
		if tile, found := ai.gameMap.TileAt(next); found {
			if m.CanPushItems() {
				ai.pushItems(tile, next)
			}
			if m.CanPushCreatures() {
				ai.pushCreatures(tile, next)
			}
		}
	}

	if ai.actions.Walk != nil {
		ai.actions.Walk(m, dir, pathDerived)
	}

	if pathDerived && m.IsWalkingToSpawn() && !m.HasFollowPath() {
		// Return path consumed; pick it up again if the anchor is still
		// out of reach.
		m.SetWalkingToSpawn(false)
		ai.walkToSpawn()
	}
}

// nextStep decides one step, by case in priority order: return-to-leash
// path, idle wander, precomputed pursuit path, reactive dance step. The
// second return marks path-derived steps.
func (ai *MonsterAI) nextStep() (model.Direction, bool, bool) {
	m := ai.monster

	if !m.IsWalkingToSpawn() && (m.IsIdle() || m.IsDead()) {
		// nobody is watching, might as well stop walking
		return 0, false, false
	}

	myPos := m.Position()

	if !m.IsWalkingToSpawn() && (m.FollowID() == 0 || !m.HasFollowPath()) &&
		(!m.IsSummon() || !m.IsMasterInRange()) {
		if ai.now()-m.LastMove() < wanderStepInterval {
			return 0, false, false
		}
		m.SetRandomStepping(true)
		dir, ok := ai.randomStep(myPos)
		return dir, false, ok
	}

	if (m.IsSummon() && m.IsMasterInRange()) || m.FollowID() != 0 || m.IsWalkingToSpawn() {
		if !m.HasFollowPath() && m.IsSummon() && !ai.masterIsPlayer() {
			m.SetRandomStepping(true)
			dir, ok := ai.randomStep(myPos)
			return dir, false, ok
		}

		m.SetRandomStepping(false)
		if step, has := m.PopStep(); has {
			return step, true, true
		}

		// No path this tick: dance in place around the engaged target.
		target, found := ai.resolveCreature(m.AttackedID())
		if found && m.AttackedID() == m.FollowID() {
			if m.IsFleeing() {
				dir, ok := ai.danceStep(myPos, target, false, false)
				return dir, false, ok
			}
			if m.Profile().StaticAttackChance < rand.Int32N(100)+1 {
				dir, ok := ai.danceStep(myPos, target, true, true)
				return dir, false, ok
			}
		}
	}

	return 0, false, false
}

func (ai *MonsterAI) masterIsPlayer() bool {
	_, ok := ai.playerByID(ai.monster.MasterID())
	return ok
}

// updateFollowPath refreshes the pursuit path toward the followed creature.
// Ranged and fleeing creatures try the reactive distance step first; the
// full path search runs only when the heuristic defers. Giving up on an
// unreachable, out-of-sight target requeues it for later.
func (ai *MonsterAI) updateFollowPath() {
	m := ai.monster
	if m.IsWalkingToSpawn() {
		return
	}

	followed, ok := ai.resolveCreature(m.FollowID())
	if !ok {
		if m.FollowID() != 0 {
			m.SetFollow(0)
			m.SetWalkPath(nil)
		}
		return
	}

	myPos := m.Position()
	targetPos := followed.Position()

	if m.IsFleeing() || m.Profile().TargetDistance > 1 {
		dir, hasDir, handled := ai.distanceStep(targetPos, m.IsFleeing())
		if handled {
			if hasDir {
				m.SetWalkPath([]model.Direction{dir})
			} else {
				// Holding position still counts as an intact pursuit.
				m.SetWalkPath(nil)
				m.MarkFollowPath(true)
			}
			return
		}
	}

	path, found := ai.paths.FindPath(myPos, targetPos, ai.pathSearchParams(followed))
	if found {
		// An empty path still counts: we already stand where the search
		// wanted us, the pursuit is intact.
		m.SetWalkPath(path)
		m.MarkFollowPath(true)
		return
	}

	if !ai.canSee(targetPos) || !ai.gameMap.SightClear(myPos, targetPos, true) {
		// Unreachable and out of sight: give the pursuit up.
		id := m.FollowID()
		ai.onFollowLost(id)
		m.SetFollow(0)
		if m.AttackedID() == id {
			m.SetAttacked(0)
		}
	}
	m.SetWalkPath(nil)
}

// pathSearchParams picks the search parameters for pursuing target.
func (ai *MonsterAI) pathSearchParams(target model.Creature) PathParams {
	m := ai.monster
	params := PathParams{
		MinTargetDist: 1,
		MaxTargetDist: m.Profile().TargetDistance,
		ClearSight:    true,
	}

	switch {
	case m.IsSummon() && target.ID() == m.MasterID():
		params.MaxTargetDist = 2
		params.FullSearch = true
	case m.IsFleeing():
		params.MaxTargetDist = fleeDistance
		params.ClearSight = false
		params.KeepDistance = true
	case m.Profile().TargetDistance <= 1:
		params.FullSearch = true
	default:
		params.FullSearch = !ai.canUseAttack(m.Position(), target)
	}
	return params
}

// walkToSpawn starts (or restarts) the return walk toward the leash anchor.
// Reports whether a return path was set up.
func (ai *MonsterAI) walkToSpawn() bool {
	m := ai.monster
	if m.IsWalkingToSpawn() || !m.Targets().IsEmpty() {
		return false
	}

	anchor, ok := m.SpawnAnchor()
	if !ok {
		return false
	}

	if ai.cfg.WalkToSpawnRadius == 0 {
		return false
	}
	distance := m.Position().ChebyshevDistance(anchor)
	if distance <= ai.cfg.WalkToSpawnRadius {
		// Close enough to home; idle wandering covers the rest.
		return false
	}

	path, found := ai.paths.FindPath(m.Position(), anchor, PathParams{
		MinTargetDist: 0,
		MaxTargetDist: max(0, distance-5),
		FullSearch:    true,
		ClearSight:    true,
	})
	if !found {
		return false
	}

	m.SetWalkingToSpawn(true)
	m.SetWalkPath(path)
	return true
}

// randomStep picks any walkable cardinal direction, order randomized.
func (ai *MonsterAI) randomStep(pos model.Position) (model.Direction, bool) {
	dirs := []model.Direction{
		model.DirectionNorth,
		model.DirectionEast,
		model.DirectionSouth,
		model.DirectionWest,
	}
	rand.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })

	for _, dir := range dirs {
		if ai.canWalkTo(pos, dir) {
			return dir, true
		}
	}
	return 0, false
}

// danceStep picks a sidestep around target among the four cardinals,
// admitting only directions that keep the Chebyshev distance to the target
// unchanged, optionally refuse to lose attack capability (keepAttack) and
// optionally refuse to close in on any axis (keepDistance). Ties break
// uniformly at random.
func (ai *MonsterAI) danceStep(myPos model.Position, target model.Creature,
	keepAttack, keepDistance bool) (model.Direction, bool) {

	canAttackNow := ai.canUseAttack(myPos, target)

	centerPos := target.Position()
	offsetX := myPos.OffsetX(centerPos)
	offsetY := myPos.OffsetY(centerPos)
	distanceX := abs(offsetX)
	distanceY := abs(offsetY)
	centerToDist := max(distanceX, distanceY)

	admit := func(stepPos model.Position, tmpDist int32, dir model.Direction) bool {
		if tmpDist != centerToDist || !ai.canWalkTo(myPos, dir) {
			return false
		}
		return !keepAttack || !canAttackNow || ai.canUseAttack(stepPos, target)
	}

	var dirs []model.Direction

	if !keepDistance || offsetY >= 0 {
		stepPos := model.NewPosition(myPos.X, myPos.Y-1, myPos.Z)
		tmpDist := max(distanceX, abs((myPos.Y-1)-centerPos.Y))
		if admit(stepPos, tmpDist, model.DirectionNorth) {
			dirs = append(dirs, model.DirectionNorth)
		}
	}

	if !keepDistance || offsetY <= 0 {
		stepPos := model.NewPosition(myPos.X, myPos.Y+1, myPos.Z)
		tmpDist := max(distanceX, abs((myPos.Y+1)-centerPos.Y))
		if admit(stepPos, tmpDist, model.DirectionSouth) {
			dirs = append(dirs, model.DirectionSouth)
		}
	}

	if !keepDistance || offsetX <= 0 {
		stepPos := model.NewPosition(myPos.X+1, myPos.Y, myPos.Z)
		tmpDist := max(abs((myPos.X+1)-centerPos.X), distanceY)
		if admit(stepPos, tmpDist, model.DirectionEast) {
			dirs = append(dirs, model.DirectionEast)
		}
	}

	if !keepDistance || offsetX >= 0 {
		stepPos := model.NewPosition(myPos.X-1, myPos.Y, myPos.Z)
		tmpDist := max(abs((myPos.X-1)-centerPos.X), distanceY)
		if admit(stepPos, tmpDist, model.DirectionWest) {
			dirs = append(dirs, model.DirectionWest)
		}
	}

	if len(dirs) == 0 {
		return 0, false
	}
	return dirs[rand.IntN(len(dirs))], true
}

// distanceStep is the reactive single-step heuristic for ranged and fleeing
// creatures: eight relative-position octants plus the diagonal-equidistant
// cases, preferring the direct away direction and falling back through
// perpendicular and diagonal candidates. The flee branches reverse the
// preference toward the target. handled false defers to the path search;
// handled true with no direction means hold position.
func (ai *MonsterAI) distanceStep(targetPos model.Position, flee bool) (model.Direction, bool, bool) {
	m := ai.monster
	myPos := m.Position()

	dx := myPos.DistanceX(targetPos)
	dy := myPos.DistanceY(targetPos)

	if distance := max(dx, dy); !flee &&
		(distance > m.Profile().TargetDistance || !ai.gameMap.SightClear(myPos, targetPos, true)) {
		// let the path search calculate it
		return 0, false, false
	} else if !flee && distance == m.Profile().TargetDistance {
		// already where we want to be; dancing takes over from here
		return 0, false, true
	}

	offsetX := myPos.OffsetX(targetPos)
	offsetY := myPos.OffsetY(targetPos)

	t := m.Timers()
	if dx <= 1 && dy <= 1 {
		// the target is close, slow reactive stepping down
		if t.StepDuration < 2 {
			t.StepDuration++
		}
	} else if t.StepDuration > 0 {
		t.StepDuration--
	}

	if offsetX == 0 && offsetY == 0 {
		// the target stands on top of us; step anywhere
		dir, ok := ai.randomStep(myPos)
		return dir, ok, ok
	}

	can := func(dir model.Direction) bool { return ai.canWalkTo(myPos, dir) }
	coin := func() bool { return rand.IntN(2) == 0 }

	if dx == dy {
		// the target is exactly diagonal
		switch {
		case offsetX >= 1 && offsetY >= 1:
			// target to the north-west, escape south-east
			s, e := can(model.DirectionSouth), can(model.DirectionEast)
			switch {
			case s && e:
				if coin() {
					return model.DirectionSouth, true, true
				}
				return model.DirectionEast, true, true
			case s:
				return model.DirectionSouth, true, true
			case e:
				return model.DirectionEast, true, true
			case can(model.DirectionSouthEast):
				return model.DirectionSouthEast, true, true
			}

			n, w := can(model.DirectionNorth), can(model.DirectionWest)
			if flee {
				switch {
				case n && w:
					if coin() {
						return model.DirectionNorth, true, true
					}
					return model.DirectionWest, true, true
				case n:
					return model.DirectionNorth, true, true
				case w:
					return model.DirectionWest, true, true
				}
			}

			if w && can(model.DirectionSouthWest) {
				return model.DirectionWest, true, true
			} else if n && can(model.DirectionNorthEast) {
				return model.DirectionNorth, true, true
			}
			return 0, false, true

		case offsetX <= -1 && offsetY <= -1:
			// target to the south-east, escape north-west
			w, n := can(model.DirectionWest), can(model.DirectionNorth)
			switch {
			case w && n:
				if coin() {
					return model.DirectionWest, true, true
				}
				return model.DirectionNorth, true, true
			case w:
				return model.DirectionWest, true, true
			case n:
				return model.DirectionNorth, true, true
			case can(model.DirectionNorthWest):
				return model.DirectionNorthWest, true, true
			}

			s, e := can(model.DirectionSouth), can(model.DirectionEast)
			if flee {
				switch {
				case s && e:
					if coin() {
						return model.DirectionSouth, true, true
					}
					return model.DirectionEast, true, true
				case s:
					return model.DirectionSouth, true, true
				case e:
					return model.DirectionEast, true, true
				}
			}

			if s && can(model.DirectionSouthWest) {
				return model.DirectionSouth, true, true
			} else if e && can(model.DirectionNorthEast) {
				return model.DirectionEast, true, true
			}
			return 0, false, true

		case offsetX >= 1 && offsetY <= -1:
			// target to the south-west, escape north-east
			n, e := can(model.DirectionNorth), can(model.DirectionEast)
			switch {
			case n && e:
				if coin() {
					return model.DirectionNorth, true, true
				}
				return model.DirectionEast, true, true
			case n:
				return model.DirectionNorth, true, true
			case e:
				return model.DirectionEast, true, true
			case can(model.DirectionNorthEast):
				return model.DirectionNorthEast, true, true
			}

			s, w := can(model.DirectionSouth), can(model.DirectionWest)
			if flee {
				switch {
				case s && w:
					if coin() {
						return model.DirectionSouth, true, true
					}
					return model.DirectionWest, true, true
				case s:
					return model.DirectionSouth, true, true
				case w:
					return model.DirectionWest, true, true
				}
			}

			if w && can(model.DirectionNorthWest) {
				return model.DirectionWest, true, true
			} else if s && can(model.DirectionSouthEast) {
				return model.DirectionSouth, true, true
			}
			return 0, false, true

		default:
			// target to the north-east, escape south-west
			w, s := can(model.DirectionWest), can(model.DirectionSouth)
			switch {
			case w && s:
				if coin() {
					return model.DirectionWest, true, true
				}
				return model.DirectionSouth, true, true
			case w:
				return model.DirectionWest, true, true
			case s:
				return model.DirectionSouth, true, true
			case can(model.DirectionSouthWest):
				return model.DirectionSouthWest, true, true
			}

			n, e := can(model.DirectionNorth), can(model.DirectionEast)
			if flee {
				switch {
				case n && e:
					if coin() {
						return model.DirectionNorth, true, true
					}
					return model.DirectionEast, true, true
				case n:
					return model.DirectionNorth, true, true
				case e:
					return model.DirectionEast, true, true
				}
			}

			if e && can(model.DirectionSouthEast) {
				return model.DirectionEast, true, true
			} else if n && can(model.DirectionNorthWest) {
				return model.DirectionNorth, true, true
			}
			return 0, false, true
		}
	}

	if dy > dx {
		if offsetY < 0 {
			// target to the south, escape north
			if can(model.DirectionNorth) {
				return model.DirectionNorth, true, true
			}

			w, e := can(model.DirectionWest), can(model.DirectionEast)
			switch {
			case w && e && offsetX == 0:
				if coin() {
					return model.DirectionWest, true, true
				}
				return model.DirectionEast, true, true
			case w && offsetX <= 0:
				return model.DirectionWest, true, true
			case e && offsetX >= 0:
				return model.DirectionEast, true, true
			}

			if flee {
				switch {
				case w && e:
					if coin() {
						return model.DirectionWest, true, true
					}
					return model.DirectionEast, true, true
				case w:
					return model.DirectionWest, true, true
				case e:
					return model.DirectionEast, true, true
				}
			}

			nw, ne := can(model.DirectionNorthWest), can(model.DirectionNorthEast)
			if nw || ne {
				switch {
				case nw && ne:
					if coin() {
						return model.DirectionNorthWest, true, true
					}
					return model.DirectionNorthEast, true, true
				case w:
					return model.DirectionWest, true, true
				case nw:
					return model.DirectionNorthWest, true, true
				case e:
					return model.DirectionEast, true, true
				default:
					return model.DirectionNorthEast, true, true
				}
			}

			if flee && can(model.DirectionSouth) {
				// towards the target, better than standing still
				return model.DirectionSouth, true, true
			}
			return 0, false, true
		}

		// target to the north, escape south
		if can(model.DirectionSouth) {
			return model.DirectionSouth, true, true
		}

		w, e := can(model.DirectionWest), can(model.DirectionEast)
		switch {
		case w && e && offsetX == 0:
			if coin() {
				return model.DirectionWest, true, true
			}
			return model.DirectionEast, true, true
		case w && offsetX <= 0:
			return model.DirectionWest, true, true
		case e && offsetX >= 0:
			return model.DirectionEast, true, true
		}

		if flee {
			switch {
			case w && e:
				if coin() {
					return model.DirectionWest, true, true
				}
				return model.DirectionEast, true, true
			case w:
				return model.DirectionWest, true, true
			case e:
				return model.DirectionEast, true, true
			}
		}

		sw, se := can(model.DirectionSouthWest), can(model.DirectionSouthEast)
		if sw || se {
			switch {
			case sw && se:
				if coin() {
					return model.DirectionSouthWest, true, true
				}
				return model.DirectionSouthEast, true, true
			case w:
				return model.DirectionWest, true, true
			case sw:
				return model.DirectionSouthWest, true, true
			case e:
				return model.DirectionEast, true, true
			default:
				return model.DirectionSouthEast, true, true
			}
		}

		if flee && can(model.DirectionNorth) {
			return model.DirectionNorth, true, true
		}
		return 0, false, true
	}

	if offsetX < 0 {
		// target to the east, escape west
		if can(model.DirectionWest) {
			return model.DirectionWest, true, true
		}

		n, s := can(model.DirectionNorth), can(model.DirectionSouth)
		switch {
		case n && s && offsetY == 0:
			if coin() {
				return model.DirectionNorth, true, true
			}
			return model.DirectionSouth, true, true
		case n && offsetY <= 0:
			return model.DirectionNorth, true, true
		case s && offsetY >= 0:
			return model.DirectionSouth, true, true
		}

		if flee {
			switch {
			case n && s:
				if coin() {
					return model.DirectionNorth, true, true
				}
				return model.DirectionSouth, true, true
			case n:
				return model.DirectionNorth, true, true
			case s:
				return model.DirectionSouth, true, true
			}
		}

		nw, sw := can(model.DirectionNorthWest), can(model.DirectionSouthWest)
		if nw || sw {
			switch {
			case nw && sw:
				if coin() {
					return model.DirectionNorthWest, true, true
				}
				return model.DirectionSouthWest, true, true
			case n:
				return model.DirectionNorth, true, true
			case nw:
				return model.DirectionNorthWest, true, true
			case s:
				return model.DirectionSouth, true, true
			default:
				return model.DirectionSouthWest, true, true
			}
		}

		if flee && can(model.DirectionEast) {
			return model.DirectionEast, true, true
		}
		return 0, false, true
	}

	// target to the west, escape east
	if can(model.DirectionEast) {
		return model.DirectionEast, true, true
	}

	n, s := can(model.DirectionNorth), can(model.DirectionSouth)
	switch {
	case n && s && offsetY == 0:
		if coin() {
			return model.DirectionNorth, true, true
		}
		return model.DirectionSouth, true, true
	case n && offsetY <= 0:
		return model.DirectionNorth, true, true
	case s && offsetY >= 0:
		return model.DirectionSouth, true, true
	}

	if flee {
		switch {
		case n && s:
			if coin() {
				return model.DirectionNorth, true, true
			}
			return model.DirectionSouth, true, true
		case n:
			return model.DirectionNorth, true, true
		case s:
			return model.DirectionSouth, true, true
		}
	}

	se, ne := can(model.DirectionSouthEast), can(model.DirectionNorthEast)
	if se || ne {
		switch {
		case se && ne:
			if coin() {
				return model.DirectionSouthEast, true, true
			}
			return model.DirectionNorthEast, true, true
		case s:
			return model.DirectionSouth, true, true
		case se:
			return model.DirectionSouthEast, true, true
		case n:
			return model.DirectionNorth, true, true
		default:
			return model.DirectionNorthEast, true, true
		}
	}

	if flee && can(model.DirectionWest) {
		return model.DirectionWest, true, true
	}
	return 0, false, true
}

// canWalkTo reports whether one step from pos in dir lands on a free tile
// inside the leash zone. Stepping outside the leash is vetoed here, before
// the step, never corrected after it.
func (ai *MonsterAI) canWalkTo(pos model.Position, dir model.Direction) bool {
	next := pos.Next(dir)
	if !ai.inSpawnRange(next) {
		return false
	}

	tile, ok := ai.gameMap.TileAt(next)
	if !ok || tile.BlocksPath() {
		return false
	}
	return tile.TopCreatureID() == 0
}
