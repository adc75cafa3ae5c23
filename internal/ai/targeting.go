package ai

import (
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/openmire/mobai/internal/model"
)

// SearchPolicy selects the target search strategy.
type SearchPolicy int

const (
	// SearchDefault picks uniformly among attackable candidates, falling
	// back to the first engageable list entry.
	SearchDefault SearchPolicy = iota
	// SearchRandom picks uniformly among all passable candidates,
	// ignoring attack range.
	SearchRandom
	// SearchAttackRange picks only among in-range candidates and fails
	// without fallback when none qualify.
	SearchAttackRange
	// SearchNearest picks the minimum walking-distance candidate, with a
	// whole-list second tier when nothing is in attack range.
	SearchNearest
)

// updateTargetList purges stale references from both lists and rescans the
// surroundings. Entries whose resolution fails, whose health is gone or
// that fell out of the viewport are dropped in the same pass.
func (ai *MonsterAI) updateTargetList() {
	m := ai.monster

	keep := func(id uint32) bool {
		c, ok := ai.resolveCreature(id)
		return ok && c.Health() > 0 && ai.canSee(c.Position())
	}
	m.Friends().Purge(keep)
	m.Targets().Purge(keep)

	ai.gameMap.Spectators(m.Position(), true, func(c model.Creature) bool {
		if c.ID() != m.ID() {
			ai.onCreatureFound(c, false)
		}
		return true
	})
}

// onCreatureFound classifies a visible entity. An entity is a friend or an
// opponent, never both: allegiance wins over hostility.
func (ai *MonsterAI) onCreatureFound(c model.Creature, pushFront bool) {
	if ai.isFriend(c) {
		ai.addFriend(c)
	} else if ai.isOpponent(c) {
		ai.addTarget(c, pushFront)
	}
	ai.updateIdleStatus()
}

func (ai *MonsterAI) onCreatureEnter(c model.Creature) {
	m := ai.monster
	if c.ID() == m.MasterID() {
		// Follow master again.
		m.SetMasterInRange(true)
	}
	ai.onCreatureFound(c, true)
}

func (ai *MonsterAI) onCreatureLeave(c model.Creature) {
	m := ai.monster
	if c.ID() == m.MasterID() {
		m.SetMasterInRange(false)
	}

	m.Friends().Remove(c.ID())

	if m.Targets().Contains(c.ID()) {
		m.Targets().Remove(c.ID())
		if m.Targets().IsEmpty() {
			ai.updateIdleStatus()
			ai.walkToSpawn()
		}
	}
}

// isFriend reports whether c fights on the monster's side: the master, the
// master's partners and their summons for a summoned creature, any
// unescorted monster otherwise.
func (ai *MonsterAI) isFriend(c model.Creature) bool {
	m := ai.monster

	if m.IsSummon() {
		if c.ID() == m.MasterID() {
			return true
		}
		if masterPlayer, ok := ai.playerByID(m.MasterID()); ok {
			var other *model.Player
			if p, isPlayer := c.(*model.Player); isPlayer {
				other = p
			} else if c.MasterID() != 0 {
				if p, ok := ai.playerByID(c.MasterID()); ok {
					other = p
				}
			}
			return other != nil &&
				(other.ID() == masterPlayer.ID() || masterPlayer.IsPartner(other.ID()))
		}
		// Summon of a monster: siblings under the same master.
		return c.MasterID() == m.MasterID()
	}

	if mon, isMonster := c.(*model.Monster); isMonster && !mon.IsSummon() {
		return true
	}
	return false
}

// isOpponent reports whether c is fair game: everything but the master for
// a player's summon, players and player summons for everything else.
func (ai *MonsterAI) isOpponent(c model.Creature) bool {
	m := ai.monster
	if c.ID() == m.ID() {
		return false
	}

	if m.IsSummon() {
		if _, ok := ai.playerByID(m.MasterID()); ok {
			return c.ID() != m.MasterID()
		}
	}

	if p, isPlayer := c.(*model.Player); isPlayer {
		return !p.IgnoredByMonsters()
	}
	if c.MasterID() != 0 {
		if _, ok := ai.playerByID(c.MasterID()); ok {
			return true
		}
	}
	return false
}

// isTarget gates admission into engagement: alive, attackable, outside
// protection zones, mutually visible on the same floor. Failures exclude
// silently.
func (ai *MonsterAI) isTarget(c model.Creature) bool {
	m := ai.monster
	if c.IsRemoved() || !c.IsAttackable() || c.Zone() == model.ZoneProtection {
		return false
	}
	pos := c.Position()
	if pos.Z != m.Position().Z || !ai.canSee(pos) {
		return false
	}
	return ai.gameMap.SightClear(m.Position(), pos, true)
}

func (ai *MonsterAI) playerByID(id uint32) (*model.Player, bool) {
	c, ok := ai.resolveCreature(id)
	if !ok {
		return nil, false
	}
	p, isPlayer := c.(*model.Player)
	return p, isPlayer
}

func (ai *MonsterAI) addFriend(c model.Creature) {
	if c.ID() == ai.monster.ID() {
		return
	}
	ai.monster.Friends().Add(c.ID())
}

func (ai *MonsterAI) addTarget(c model.Creature, pushFront bool) {
	m := ai.monster
	if c.ID() == m.ID() {
		return
	}
	m.Targets().Add(c.ID(), pushFront)
}

// searchTarget picks and engages a target per policy. Returns false when
// nothing could be engaged.
func (ai *MonsterAI) searchTarget(policy SearchPolicy) bool {
	m := ai.monster
	myPos := m.Position()

	var candidates []model.Creature
	for _, id := range m.Targets().IDs() {
		if id == m.FollowID() {
			continue
		}
		c, ok := ai.resolveCreature(id)
		if !ok || !ai.isTarget(c) {
			continue
		}
		if policy == SearchRandom || ai.canUseAttack(myPos, c) {
			candidates = append(candidates, c)
		}
	}

	switch policy {
	case SearchNearest:
		var target model.Creature
		if len(candidates) > 0 {
			target = candidates[0]
			minRange := myPos.ManhattanDistance(target.Position())
			for _, c := range candidates[1:] {
				if d := myPos.ManhattanDistance(c.Position()); d < minRange {
					target = c
					minRange = d
				}
			}
		} else {
			// Nothing in attack range: chase the nearest entry of the
			// whole list instead.
			minRange := int32(math.MaxInt32)
			for _, id := range m.Targets().IDs() {
				c, ok := ai.resolveCreature(id)
				if !ok || !ai.isTarget(c) {
					continue
				}
				if d := myPos.ManhattanDistance(c.Position()); d < minRange {
					target = c
					minRange = d
				}
			}
		}
		if target != nil && ai.selectTarget(target) {
			return true
		}

	default:
		if len(candidates) > 0 {
			return ai.selectTarget(candidates[rand.IntN(len(candidates))])
		}
		if policy == SearchAttackRange {
			return false
		}
	}

	// Lastly pick the first engageable entry in priority order.
	for _, id := range m.Targets().IDs() {
		if id == m.FollowID() {
			continue
		}
		if c, ok := ai.resolveCreature(id); ok && ai.selectTarget(c) {
			return true
		}
	}
	return false
}

// selectTarget engages c: c must already sit in the target list and still
// pass the admission gate. Engaging schedules a deferred attack check for
// independent creatures so the first swing happens on the next scheduling
// pass instead of recursively.
func (ai *MonsterAI) selectTarget(c model.Creature) bool {
	m := ai.monster

	if !ai.isTarget(c) {
		return false
	}
	if !m.Targets().Contains(c.ID()) {
		return false
	}

	if m.IsHostile() || m.IsSummon() {
		if m.AttackedID() != c.ID() {
			m.SetAttacked(c.ID())
			if !m.IsSummon() && ai.scheduler != nil {
				ai.scheduler.Dispatch(func() {
					ai.doAttacking(0)
				})
			}
		}
	}

	if m.FollowID() != c.ID() {
		m.SetFollow(c.ID())
		m.SetWalkPath(nil)
		m.SetWalkingToSpawn(false)
	}

	if IsDebugEnabled() {
		slog.Debug("target engaged",
			"name", m.Name(),
			"objectID", m.ID(),
			"targetID", c.ID())
	}
	return true
}

// onFollowLost requeues a target that pathing gave up on: resume priority
// when a pursued path already existed, back of the list otherwise. Summons
// simply drop the reference.
func (ai *MonsterAI) onFollowLost(targetID uint32) {
	m := ai.monster
	if !m.Targets().Contains(targetID) {
		return
	}

	m.Targets().Remove(targetID)
	if m.HasFollowPath() {
		m.Targets().Add(targetID, true)
	} else if !m.IsSummon() {
		m.Targets().Add(targetID, false)
	}
}

// canUseAttack reports whether any configured ability reaches target from
// pos with clear sight. Non-hostile creatures (pure followers) always pass.
func (ai *MonsterAI) canUseAttack(pos model.Position, target model.Creature) bool {
	m := ai.monster
	if !m.IsHostile() {
		return true
	}

	targetPos := target.Position()
	distance := pos.ChebyshevDistance(targetPos)
	for i := range m.Profile().Attack {
		ability := &m.Profile().Attack[i]
		if ability.Range != 0 && distance <= ability.Range {
			return ai.gameMap.SightClear(pos, targetPos, true)
		}
	}
	return false
}
