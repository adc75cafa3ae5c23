package ai

import (
	"log/slog"
	"time"

	"github.com/openmire/mobai/internal/config"
	"github.com/openmire/mobai/internal/model"
)

// Client viewport; a creature reacts only to entities it can draw.
const (
	viewRangeX = 9
	viewRangeY = 9
)

// DamageSink receives cooperative-encounter contribution events for
// reward-boss creatures.
type DamageSink interface {
	TrackDamageDone(bossID, playerID uint32, amount int64)
}

// RewardResolver settles a reward-boss encounter on death.
type RewardResolver interface {
	ResolveDeath(m *model.Monster)
}

// MonsterAI is the per-creature decision engine. One instance per live
// monster; driven by the Scheduler, strictly single-threaded. All entity
// relations are IDs resolved fresh through the Resolver; nothing here
// keeps another creature alive or dereferences a destroyed one.
type MonsterAI struct {
	monster *model.Monster
	cfg     config.World

	gameMap GameMap
	paths   Pathfinder
	resolve Resolver
	actions Actions

	overrides Overrides
	scheduler *Scheduler
	damage    DamageSink
	rewards   RewardResolver

	running bool

	// now is split out for cadence tests.
	now func() int64
}

// NewMonsterAI creates a decision engine for one monster.
func NewMonsterAI(
	monster *model.Monster,
	cfg config.World,
	gameMap GameMap,
	paths Pathfinder,
	resolve Resolver,
	actions Actions,
) *MonsterAI {
	return &MonsterAI{
		monster: monster,
		cfg:     cfg,
		gameMap: gameMap,
		paths:   paths,
		resolve: resolve,
		actions: actions,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

// SetOverrides installs the behavior override hooks.
func (ai *MonsterAI) SetOverrides(o Overrides) { ai.overrides = o }

// SetScheduler wires the deferred-task queue used after target selection.
func (ai *MonsterAI) SetScheduler(s *Scheduler) { ai.scheduler = s }

// SetDamageSink wires boss contribution tracking.
func (ai *MonsterAI) SetDamageSink(sink DamageSink) { ai.damage = sink }

// SetRewardResolver wires death reward settlement.
func (ai *MonsterAI) SetRewardResolver(r RewardResolver) { ai.rewards = r }

// Monster returns the driven agent.
func (ai *MonsterAI) Monster() *model.Monster { return ai.monster }

// Start arms the controller.
func (ai *MonsterAI) Start() {
	ai.running = true

	if IsDebugEnabled() {
		slog.Debug("monster AI started",
			"name", ai.monster.Name(),
			"objectID", ai.monster.ID(),
			"summon", ai.monster.IsSummon())
	}
}

// Stop disarms the controller and drops all engagement state.
func (ai *MonsterAI) Stop() {
	ai.running = false
	ai.monster.Targets().Clear()
	ai.monster.Friends().Clear()
	ai.monster.SetAttacked(0)
	ai.monster.SetFollow(0)
	ai.monster.SetWalkPath(nil)

	if IsDebugEnabled() {
		slog.Debug("monster AI stopped",
			"name", ai.monster.Name(),
			"objectID", ai.monster.ID())
	}
}

// canSee reports whether the monster's viewport covers pos. Creatures never
// see across floors.
func (ai *MonsterAI) canSee(pos model.Position) bool {
	my := ai.monster.Position()
	return my.Z == pos.Z && my.InRange(pos, viewRangeX, viewRangeY)
}

// resolveCreature is the nil-safe weak reference lookup.
func (ai *MonsterAI) resolveCreature(id uint32) (model.Creature, bool) {
	if id == 0 || ai.resolve == nil {
		return nil, false
	}
	c, ok := ai.resolve(id)
	if !ok || c.IsRemoved() {
		return nil, false
	}
	return c, true
}

// Think runs one decision pass: perception upkeep, target selection,
// movement, ability cadence. Called by the Scheduler with the elapsed
// interval in milliseconds.
func (ai *MonsterAI) Think(interval int64) {
	m := ai.monster
	if !ai.running || m.IsRemoved() || m.IsDead() {
		return
	}

	if ai.overrides.OnThink != nil && ai.overrides.OnThink(m, interval) {
		return
	}
	if m.IsRemoved() || m.IsDead() {
		// the hook may have despawned us
		return
	}

	if !ai.inSpawnRange(m.Position()) {
		ai.enforceLeash()
		return
	}

	ai.updateIdleStatus()
	if m.IsIdle() {
		return
	}

	if m.IsSummon() {
		ai.thinkSummon()
	} else if !m.Targets().IsEmpty() {
		if m.FollowID() == 0 || !m.HasFollowPath() {
			ai.searchTarget(SearchDefault)
		} else if m.IsFleeing() {
			if attacked, ok := ai.resolveCreature(m.AttackedID()); ok &&
				!ai.canUseAttack(m.Position(), attacked) {
				ai.searchTarget(SearchAttackRange)
			}
		}
	}

	ai.thinkMovement()
	ai.thinkTarget(interval)
	ai.thinkDefense(interval)
	ai.thinkYell(interval)
	ai.doAttacking(interval)
}

// thinkSummon keeps a summon glued to its master's intentions: adopt the
// master's fight, otherwise stay at heel.
func (ai *MonsterAI) thinkSummon() {
	m := ai.monster

	master, ok := ai.resolveCreature(m.MasterID())
	if !ok {
		// Master vanished mid-tick; the link is dropped by the owner
		// of the summon on its own event. Nothing to do this pass.
		return
	}

	if m.AttackedID() == 0 {
		masterTarget := masterAttackedID(master)
		if masterTarget != 0 {
			// Summoned during combat: join the master's fight.
			if target, ok := ai.resolveCreature(masterTarget); ok {
				ai.selectTarget(target)
			}
		} else if m.FollowID() != m.MasterID() {
			m.SetFollow(m.MasterID())
			m.SetWalkPath(nil)
		}
	} else if m.AttackedID() == m.ID() {
		m.SetFollow(0)
		m.SetWalkPath(nil)
	} else if m.FollowID() != m.AttackedID() {
		m.SetFollow(m.AttackedID())
		m.SetWalkPath(nil)
	}
}

func masterAttackedID(master model.Creature) uint32 {
	switch owner := master.(type) {
	case *model.Player:
		return owner.AttackedID()
	case *model.Monster:
		return owner.AttackedID()
	default:
		return 0
	}
}

// OnSighted handles an entity becoming visible (or the monster itself
// being placed into the world).
func (ai *MonsterAI) OnSighted(c model.Creature) {
	m := ai.monster
	if !ai.running || m.IsRemoved() {
		return
	}

	if ai.overrides.OnAppeared != nil && ai.overrides.OnAppeared(m, c) {
		return
	}
	if m.IsRemoved() {
		return
	}

	if c.ID() == m.ID() {
		// We just spawned; look around to see who is there.
		if m.IsSummon() {
			if master, ok := ai.resolveCreature(m.MasterID()); ok {
				m.SetMasterInRange(ai.canSee(master.Position()))
			}
		}
		ai.updateTargetList()
		ai.updateIdleStatus()
		return
	}

	ai.onCreatureEnter(c)
}

// OnVanished handles an entity leaving the world or the viewport.
func (ai *MonsterAI) OnVanished(c model.Creature) {
	m := ai.monster
	if !ai.running {
		return
	}

	if ai.overrides.OnVanished != nil && ai.overrides.OnVanished(m, c) {
		return
	}

	if c.ID() == m.ID() {
		m.SetIdle(true)
		m.Targets().Clear()
		m.Friends().Clear()
		return
	}

	ai.onCreatureLeave(c)
}

// OnMoved handles any creature movement inside the viewport, including the
// monster's own steps.
func (ai *MonsterAI) OnMoved(c model.Creature, oldPos, newPos model.Position) {
	m := ai.monster
	if !ai.running || m.IsRemoved() {
		return
	}

	if ai.overrides.OnMoved != nil && ai.overrides.OnMoved(m, c, oldPos, newPos) {
		return
	}
	if m.IsRemoved() {
		return
	}

	if c.ID() == m.ID() {
		m.SetLastMove(ai.now())
		if m.IsSummon() {
			if master, ok := ai.resolveCreature(m.MasterID()); ok {
				m.SetMasterInRange(ai.canSee(master.Position()))
			}
		}
		ai.updateTargetList()
		ai.updateIdleStatus()
		return
	}

	canSeeNew := ai.canSee(newPos)
	canSeeOld := ai.canSee(oldPos)
	if canSeeNew && !canSeeOld {
		ai.onCreatureEnter(c)
	} else if !canSeeNew && canSeeOld {
		ai.onCreatureLeave(c)
	}

	if canSeeNew && m.IsSummon() && c.ID() == m.MasterID() {
		// Follow master again.
		m.SetMasterInRange(true)
	}

	ai.updateIdleStatus()

	if m.IsSummon() {
		return
	}

	if followed, ok := ai.resolveCreature(m.FollowID()); ok {
		// Someone stepped between us and the followed target: if an
		// opponent now blocks the next tile, engage it instead.
		followPos := followed.Position()
		myPos := m.Position()
		if (myPos.DistanceX(followPos) > 1 || myPos.DistanceY(followPos) > 1) &&
			m.Profile().ChangeTargetChance > 0 {
			dir := myPos.DirectionTo(followPos)
			if tile, ok := ai.gameMap.TileAt(myPos.Next(dir)); ok {
				if topID := tile.TopCreatureID(); topID != 0 && topID != m.FollowID() {
					if top, ok := ai.resolveCreature(topID); ok && ai.isOpponent(top) {
						ai.selectTarget(top)
					}
				}
			}
		}
	} else if ai.isOpponent(c) {
		// We have no target, let's try to pick this one.
		ai.selectTarget(c)
	}
}

// OnSaid handles a nearby creature speaking. Default behavior is none; the
// event exists for the override hook.
func (ai *MonsterAI) OnSaid(c model.Creature, text string) {
	if !ai.running || ai.monster.IsRemoved() {
		return
	}
	if ai.overrides.OnSaid != nil {
		ai.overrides.OnSaid(ai.monster, c, text)
	}
}

// OnDamaged handles the monster receiving damage: it wakes an idle
// creature and attributes the contribution for reward-boss encounters.
// Health mutation itself belongs to the combat engine.
func (ai *MonsterAI) OnDamaged(attackerID uint32, amount int32) {
	m := ai.monster
	if !ai.running || m.IsRemoved() {
		return
	}

	// Even an attack from an ignored-by-monsters player wakes us up.
	m.SetIdle(false)

	if amount <= 0 {
		return
	}

	if m.Profile().RewardBoss && ai.damage != nil {
		if playerID := ai.contributorID(attackerID); playerID != 0 {
			ai.damage.TrackDamageDone(m.ID(), playerID, int64(amount))
		}
	}
}

// contributorID maps an attacker to a contributing player: either the
// attacker itself or, for summons, its master.
func (ai *MonsterAI) contributorID(attackerID uint32) uint32 {
	attacker, ok := ai.resolveCreature(attackerID)
	if !ok {
		return 0
	}
	if _, isPlayer := attacker.(*model.Player); isPlayer {
		return attacker.ID()
	}
	if master, ok := ai.resolveCreature(attacker.MasterID()); ok {
		if _, isPlayer := master.(*model.Player); isPlayer {
			return master.ID()
		}
	}
	return 0
}

// OnDied settles the encounter: reward resolution for marked bosses, then
// summon teardown and list cleanup. Safe to call exactly once.
func (ai *MonsterAI) OnDied(killerID uint32) {
	m := ai.monster
	if !ai.running {
		return
	}

	if ai.rewards != nil {
		ai.rewards.ResolveDeath(m)
	}

	m.SetAttacked(0)
	m.SetFollow(0)

	for _, summonID := range m.Summons() {
		if ai.actions.Kill != nil {
			ai.actions.Kill(summonID)
		}
	}
	m.ClearSummons()

	m.Targets().Clear()
	m.Friends().Clear()

	if IsDebugEnabled() {
		slog.Debug("monster died",
			"name", m.Name(),
			"objectID", m.ID(),
			"killer", killerID)
	}
}

// inSpawnRange reports whether pos is inside the leash zone.
func (ai *MonsterAI) inSpawnRange(pos model.Position) bool {
	anchor, ok := ai.monster.SpawnAnchor()
	if !ok {
		return true
	}
	if ai.cfg.DespawnRadius == 0 {
		return true
	}
	if !anchor.InRange(pos, ai.cfg.DespawnRadius, ai.cfg.DespawnRadius) {
		return false
	}
	if ai.cfg.DespawnRange == 0 {
		return true
	}
	return pos.DistanceZ(anchor) <= ai.cfg.DespawnRange
}

// enforceLeash handles a creature found outside its leash zone: despawn or
// snap back to the anchor and go idle, per configuration.
func (ai *MonsterAI) enforceLeash() {
	m := ai.monster

	if ai.actions.Effect != nil {
		ai.actions.Effect(m.Position(), EffectPoff)
	}

	if ai.cfg.RemoveOnDespawn {
		if ai.actions.Remove != nil {
			ai.actions.Remove(m)
		}
		return
	}

	anchor, _ := m.SpawnAnchor()
	if ai.actions.Teleport != nil {
		ai.actions.Teleport(m, anchor)
	} else {
		m.SetPosition(anchor)
	}
	m.SetWalkPath(nil)
	m.SetWalkingToSpawn(false)
	ai.setIdle(true)

	if IsDebugEnabled() {
		slog.Debug("leash enforced",
			"name", m.Name(),
			"objectID", m.ID(),
			"anchor", anchor)
	}
}

// updateIdleStatus recomputes the idle flag: an independent creature with
// an empty target list sleeps unless an aggressive effect keeps it awake.
func (ai *MonsterAI) updateIdleStatus() {
	m := ai.monster
	idle := false
	if !m.IsSummon() && m.Targets().IsEmpty() {
		idle = !m.HasAggressiveEffect()
	}
	ai.setIdle(idle)
}

func (ai *MonsterAI) setIdle(idle bool) {
	m := ai.monster
	if m.IsRemoved() || m.Health() <= 0 {
		return
	}
	m.SetIdle(idle)
	if idle {
		m.Targets().Clear()
		m.Friends().Clear()
	}
}
