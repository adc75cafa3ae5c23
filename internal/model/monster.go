package model

import (
	"github.com/openmire/mobai/internal/bestiary"
)

// CadenceTimers are the per-instance ability accumulators. Each counter is
// advanced by the tick interval and compared against the profile speeds.
// A counter is reset only when its round completes; a blocked cycle keeps
// the accumulated progress.
type CadenceTimers struct {
	AttackTicks  int64
	DefenseTicks int64
	YellTicks    int64

	// TargetChangeTicks charges toward ChangeTargetSpeed while
	// TargetChangeCooldown is zero; the cooldown suppresses charging.
	TargetChangeTicks    int64
	TargetChangeCooldown int64
	// ChallengeFocus pins the current target after a challenge for its
	// remaining duration.
	ChallengeFocus int64

	// LastMeleeAttack is the wall-clock (unix ms) moment of the last
	// melee swing. Zero means the next swing is not rate-limited.
	LastMeleeAttack int64

	// StepDuration slows reactive stepping down while a target is
	// adjacent.
	StepDuration int32
}

// Monster is the per-creature agent: all mutable decision state for one
// live non-player creature. The behavioral profile is borrowed, shared and
// read-only; relations to other entities are stored as IDs only.
type Monster struct {
	id      uint32
	name    string
	profile *bestiary.Profile

	pos       Position
	health    int32
	maxHealth int32
	zone      Zone
	removed   bool

	// spawnPos is the leash anchor. hasAnchor is false for summons and
	// scripted placements, which are never leashed.
	spawnPos  Position
	hasAnchor bool

	masterID uint32
	summons  []uint32

	targets *TargetList
	friends *FriendList

	// attackedID is the engaged target abilities track; followID is the
	// movement target. They usually coincide but diverge for summons
	// returning to their master.
	attackedID uint32
	followID   uint32

	lookDir Direction

	walkPath       []Direction
	hasFollowPath  bool
	walkingToSpawn bool
	randomStepping bool
	idle           bool
	masterInRange  bool

	// aggressiveEffects counts active conditions that keep an otherwise
	// targetless creature awake (burning, poisoned by a player, ...).
	aggressiveEffects int32

	// lastMove is the unix-ms moment of the last completed step, used to
	// pace idle wandering.
	lastMove int64

	timers CadenceTimers
}

// NewMonster creates an agent from a shared profile.
func NewMonster(id uint32, profile *bestiary.Profile) *Monster {
	return &Monster{
		id:        id,
		name:      profile.Name,
		profile:   profile,
		health:    profile.Health,
		maxHealth: profile.Health,
		targets:   NewTargetList(),
		friends:   NewFriendList(),
		idle:      true,
	}
}

func (m *Monster) ID() uint32                 { return m.id }
func (m *Monster) Name() string               { return m.name }
func (m *Monster) Position() Position         { return m.pos }
func (m *Monster) Health() int32              { return m.health }
func (m *Monster) MaxHealth() int32           { return m.maxHealth }
func (m *Monster) IsRemoved() bool            { return m.removed }
func (m *Monster) Zone() Zone                 { return m.zone }
func (m *Monster) MasterID() uint32           { return m.masterID }
func (m *Monster) Profile() *bestiary.Profile { return m.profile }
func (m *Monster) Targets() *TargetList       { return m.targets }
func (m *Monster) Friends() *FriendList       { return m.friends }
func (m *Monster) Timers() *CadenceTimers     { return &m.timers }

// IsAttackable reports whether the monster can be engaged.
func (m *Monster) IsAttackable() bool { return !m.removed && m.health > 0 }

// IsDead reports whether health dropped to zero.
func (m *Monster) IsDead() bool { return m.health <= 0 }

// IsSummon reports whether the monster belongs to a master.
func (m *Monster) IsSummon() bool { return m.masterID != 0 }

// IsHostile reports whether the profile allows engaging opponents.
func (m *Monster) IsHostile() bool { return m.profile.Hostile }

// IsFleeing reports whether the flee threshold has been crossed.
// Summons never flee on their own.
func (m *Monster) IsFleeing() bool {
	return !m.IsSummon() && m.health <= m.profile.RunOnHealth
}

// SetPosition moves the monster.
func (m *Monster) SetPosition(pos Position) { m.pos = pos }

// SetZone updates the zone of the occupied tile.
func (m *Monster) SetZone(zone Zone) { m.zone = zone }

// SetHealth clamps health into [0, max].
func (m *Monster) SetHealth(health int32) {
	m.health = min(max(health, 0), m.maxHealth)
}

// MarkRemoved flags the monster as gone from the world.
func (m *Monster) MarkRemoved() { m.removed = true }

// SpawnAnchor returns the leash anchor position, if any.
func (m *Monster) SpawnAnchor() (Position, bool) { return m.spawnPos, m.hasAnchor }

// SetSpawnAnchor pins the leash anchor.
func (m *Monster) SetSpawnAnchor(pos Position) {
	m.spawnPos = pos
	m.hasAnchor = true
}

// SetMaster links or unlinks (id 0) the owning creature.
func (m *Monster) SetMaster(id uint32) { m.masterID = id }

// AddSummon registers a summoned creature's ID.
func (m *Monster) AddSummon(id uint32) { m.summons = append(m.summons, id) }

// RemoveSummon drops a summoned creature's ID.
func (m *Monster) RemoveSummon(id uint32) {
	for i, v := range m.summons {
		if v == id {
			m.summons = append(m.summons[:i], m.summons[i+1:]...)
			return
		}
	}
}

// Summons returns the live summon IDs. The returned slice is a copy.
func (m *Monster) Summons() []uint32 {
	out := make([]uint32, len(m.summons))
	copy(out, m.summons)
	return out
}

// ClearSummons empties the summon bookkeeping.
func (m *Monster) ClearSummons() { m.summons = m.summons[:0] }

// LookDirection returns the current facing.
func (m *Monster) LookDirection() Direction { return m.lookDir }

// SetLookDirection updates the facing.
func (m *Monster) SetLookDirection(d Direction) { m.lookDir = d }

// AttackedID returns the engaged target's ID, 0 when disengaged.
func (m *Monster) AttackedID() uint32 { return m.attackedID }

// SetAttacked engages a target for ability evaluation.
func (m *Monster) SetAttacked(id uint32) { m.attackedID = id }

// FollowID returns the movement target's ID, 0 when not following.
func (m *Monster) FollowID() uint32 { return m.followID }

// SetFollow sets the movement target.
func (m *Monster) SetFollow(id uint32) { m.followID = id }

// WalkPath returns the remaining precomputed steps.
func (m *Monster) WalkPath() []Direction { return m.walkPath }

// SetWalkPath replaces the precomputed path and the follow-path flag.
func (m *Monster) SetWalkPath(path []Direction) {
	m.walkPath = path
	m.hasFollowPath = len(path) > 0
}

// PopStep consumes the next step of the precomputed path. Consuming the
// last step drops the follow-path flag; calling on an exhausted path does
// not, so an in-position hold stays marked as an intact pursuit.
func (m *Monster) PopStep() (Direction, bool) {
	if len(m.walkPath) == 0 {
		return 0, false
	}
	step := m.walkPath[0]
	m.walkPath = m.walkPath[1:]
	if len(m.walkPath) == 0 {
		m.hasFollowPath = false
	}
	return step, true
}

// HasFollowPath reports whether a usable precomputed path exists.
func (m *Monster) HasFollowPath() bool { return m.hasFollowPath }

// MarkFollowPath overrides the follow-path flag. Used for in-position holds
// where no step is needed but the pursuit counts as intact.
func (m *Monster) MarkFollowPath(v bool) { m.hasFollowPath = v }

// LastMove returns the unix-ms moment of the last completed step.
func (m *Monster) LastMove() int64 { return m.lastMove }

// SetLastMove records a completed step.
func (m *Monster) SetLastMove(ts int64) { m.lastMove = ts }

// IsWalkingToSpawn reports whether a leash-return walk is in progress.
func (m *Monster) IsWalkingToSpawn() bool { return m.walkingToSpawn }

// SetWalkingToSpawn toggles the leash-return walk.
func (m *Monster) SetWalkingToSpawn(v bool) { m.walkingToSpawn = v }

// IsRandomStepping reports whether the last step was a wander step.
func (m *Monster) IsRandomStepping() bool { return m.randomStepping }

// SetRandomStepping records how the last step was decided.
func (m *Monster) SetRandomStepping(v bool) { m.randomStepping = v }

// IsIdle reports whether the agent is parked (no opponents, no effects).
func (m *Monster) IsIdle() bool { return m.idle }

// SetIdle parks or wakes the agent. Callers must go through the AI's
// idle recomputation; this only stores the flag.
func (m *Monster) SetIdle(v bool) { m.idle = v }

// IsMasterInRange reports whether a summon currently sees its master.
func (m *Monster) IsMasterInRange() bool { return m.masterInRange }

// SetMasterInRange updates master visibility for summons.
func (m *Monster) SetMasterInRange(v bool) { m.masterInRange = v }

// AddAggressiveEffect adjusts the count of aggressive conditions by delta.
func (m *Monster) AddAggressiveEffect(delta int32) {
	m.aggressiveEffects += delta
	if m.aggressiveEffects < 0 {
		m.aggressiveEffects = 0
	}
}

// HasAggressiveEffect reports whether any aggressive condition is active.
func (m *Monster) HasAggressiveEffect() bool { return m.aggressiveEffects > 0 }

// CanPushItems reports item pushing capability; summons inherit it from a
// monster master's profile.
func (m *Monster) CanPushItems() bool { return m.profile.CanPushItems }

// CanPushCreatures reports creature pushing capability.
func (m *Monster) CanPushCreatures() bool { return m.profile.CanPushCreatures }

// IsPushable reports whether other creatures may shove this one aside.
func (m *Monster) IsPushable() bool { return m.profile.Pushable }
