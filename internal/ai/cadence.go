package ai

import (
	"math/rand/v2"
	"strings"

	"github.com/openmire/mobai/internal/bestiary"
	"github.com/openmire/mobai/internal/model"
)

// doAttacking evaluates every configured attack ability against the engaged
// target. interval 0 is the deferred post-selection check: no cadence
// progress is granted or reset, so only wall-clock gated melee can fire.
func (ai *MonsterAI) doAttacking(interval int64) {
	m := ai.monster
	target, ok := ai.resolveCreature(m.AttackedID())
	if !ok || (m.IsSummon() && m.AttackedID() == m.ID()) {
		return
	}

	t := m.Timers()
	lookUpdated := false
	resetTicks := interval != 0
	t.AttackTicks += interval

	myPos := m.Position()
	targetPos := target.Position()
	profile := m.Profile()

	for i := range profile.Attack {
		ability := &profile.Attack[i]
		inRange := false

		if ai.canUseAbility(myPos, targetPos, ability, interval, &inRange, &resetTicks) {
			if ability.Chance >= rand.Int32N(100)+1 {
				if !lookUpdated {
					ai.updateLookDirection(target)
					lookUpdated = true
				}

				if ai.actions.Cast != nil {
					ai.actions.Cast(m, target, ability)
				}

				if ability.Melee {
					t.LastMeleeAttack = ai.now()
				}
			}
		}

		if !inRange && ability.Melee {
			// Melee swing out of reach: the next in-range swing fires
			// without waiting out the full swing interval.
			t.LastMeleeAttack = 0
		}
	}

	// Ranged creatures still turn toward the target.
	if !lookUpdated && t.LastMeleeAttack == 0 {
		ai.updateLookDirection(target)
	}

	if resetTicks {
		t.AttackTicks = 0
	}
}

// canUseAbility gates one ability for this round. Melee is wall-clock
// limited by its swing speed and suppressed while fleeing; everything else
// runs on the accumulated attack ticks, firing at most once per speed
// window. A cadence miss keeps saved progress by clearing resetTicks; a
// range miss clears inRange instead.
func (ai *MonsterAI) canUseAbility(
	pos, targetPos model.Position,
	ability *bestiary.Ability,
	interval int64,
	inRange, resetTicks *bool,
) bool {
	m := ai.monster
	t := m.Timers()
	*inRange = true

	if ability.Melee {
		if m.IsFleeing() || ai.now()-t.LastMeleeAttack < ability.Speed {
			return false
		}
	} else {
		if ability.Speed > t.AttackTicks {
			*resetTicks = false
			return false
		}

		if t.AttackTicks%ability.Speed >= interval {
			// Already used this ability for this round.
			return false
		}
	}

	if ability.Range != 0 && pos.ChebyshevDistance(targetPos) > ability.Range {
		*inRange = false
		return false
	}
	return true
}

// thinkTarget drives the re-target cadence of independent creatures: a
// cooldown/charge pair where the cooldown suppresses charging, and a full
// charge rolls the profile chance before re-running target search.
func (ai *MonsterAI) thinkTarget(interval int64) {
	m := ai.monster
	if m.IsSummon() {
		return
	}

	profile := m.Profile()
	if profile.ChangeTargetSpeed == 0 {
		return
	}

	t := m.Timers()
	canChangeTarget := true

	if t.ChallengeFocus > 0 {
		t.ChallengeFocus -= interval
		if t.ChallengeFocus <= 0 {
			t.ChallengeFocus = 0
		}
	}

	if t.TargetChangeCooldown > 0 {
		t.TargetChangeCooldown -= interval
		if t.TargetChangeCooldown <= 0 {
			t.TargetChangeCooldown = 0
			t.TargetChangeTicks = profile.ChangeTargetSpeed
		} else {
			canChangeTarget = false
		}
	}

	if !canChangeTarget {
		return
	}

	t.TargetChangeTicks += interval
	if t.TargetChangeTicks < profile.ChangeTargetSpeed {
		return
	}

	t.TargetChangeTicks = 0
	t.TargetChangeCooldown = profile.ChangeTargetSpeed

	if t.ChallengeFocus > 0 {
		t.ChallengeFocus = 0
	}

	if profile.ChangeTargetChance >= rand.Int32N(100)+1 {
		if profile.TargetDistance <= 1 {
			ai.searchTarget(SearchRandom)
		} else {
			ai.searchTarget(SearchNearest)
		}
	}
}

// thinkDefense drives self-targeted abilities and summon spawning on the
// shared defense cadence counter. Summoning needs a live pursuit path and
// respects both the global and the per-kind concurrency caps.
func (ai *MonsterAI) thinkDefense(interval int64) {
	m := ai.monster
	t := m.Timers()
	profile := m.Profile()

	resetTicks := true
	t.DefenseTicks += interval

	for i := range profile.Defense {
		ability := &profile.Defense[i]

		if ability.Speed > t.DefenseTicks {
			resetTicks = false
			continue
		}

		if t.DefenseTicks%ability.Speed >= interval {
			// Already used this ability for this round.
			continue
		}

		if ability.Chance >= rand.Int32N(100)+1 {
			if ai.actions.Cast != nil {
				ai.actions.Cast(m, m, ability)
			}
		}
	}

	if !m.IsSummon() && int32(len(m.Summons())) < profile.MaxSummons && m.HasFollowPath() {
		for i := range profile.Summons {
			spec := &profile.Summons[i]

			if spec.Speed > t.DefenseTicks {
				resetTicks = false
				continue
			}

			if int32(len(m.Summons())) >= profile.MaxSummons {
				continue
			}

			if t.DefenseTicks%spec.Speed >= interval {
				continue
			}

			if ai.countSummonsByName(spec.Name) >= spec.Max {
				continue
			}

			if spec.Chance < rand.Int32N(100)+1 {
				continue
			}

			if ai.actions.Summon != nil {
				if id, ok := ai.actions.Summon(m, spec); ok {
					m.AddSummon(id)
				}
			}
		}
	}

	if resetTicks {
		t.DefenseTicks = 0
	}
}

func (ai *MonsterAI) countSummonsByName(name string) int32 {
	var count int32
	for _, id := range ai.monster.Summons() {
		c, ok := ai.resolveCreature(id)
		if !ok {
			continue
		}
		if strings.EqualFold(c.Name(), name) {
			count++
		}
	}
	return count
}

// thinkYell drives the vocalization cadence: on expiry, one chance roll and
// a uniformly random line from the voice pool.
func (ai *MonsterAI) thinkYell(interval int64) {
	m := ai.monster
	profile := m.Profile()
	if profile.YellSpeed == 0 {
		return
	}

	t := m.Timers()
	t.YellTicks += interval
	if t.YellTicks < profile.YellSpeed {
		return
	}
	t.YellTicks = 0

	if len(profile.Voices) == 0 || profile.YellChance < rand.Int32N(100)+1 {
		return
	}

	voice := &profile.Voices[rand.IntN(len(profile.Voices))]
	if ai.actions.Say != nil {
		ai.actions.Say(m, voice.Text, voice.Yell)
	}
}

// updateLookDirection turns the monster toward its target, preferring the
// dominant axis and resolving exact diagonals horizontally.
func (ai *MonsterAI) updateLookDirection(target model.Creature) {
	m := ai.monster
	newDir := m.LookDirection()

	myPos := m.Position()
	targetPos := target.Position()
	offsetX := targetPos.OffsetX(myPos)
	offsetY := targetPos.OffsetY(myPos)

	dx := abs(offsetX)
	dy := abs(offsetY)
	switch {
	case dx > dy:
		if offsetX < 0 {
			newDir = model.DirectionWest
		} else {
			newDir = model.DirectionEast
		}
	case dx < dy:
		if offsetY < 0 {
			newDir = model.DirectionNorth
		} else {
			newDir = model.DirectionSouth
		}
	case offsetX < 0:
		newDir = model.DirectionWest
	case offsetX > 0:
		newDir = model.DirectionEast
	}

	m.SetLookDirection(newDir)
	if ai.actions.Turn != nil {
		ai.actions.Turn(m, newDir)
	}
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
