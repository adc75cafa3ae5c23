package ai

import (
	"testing"

	"github.com/openmire/mobai/internal/model"
)

func TestMonsterAI_EngagesVisiblePlayer(t *testing.T) {
	w := newFakeWorld()
	m := model.NewMonster(1, meleeProfile("Wolf"))
	m.SetPosition(model.NewPosition(100, 100, 7))
	brain, _ := newTestAI(m, w, Actions{})

	player := newTestPlayer(w, 2, model.NewPosition(103, 100, 7))

	brain.OnSighted(m) // placement scan

	if !m.Targets().Contains(player.ID()) {
		t.Fatal("visible player should be in the target list")
	}
	if m.IsIdle() {
		t.Error("monster with a target should not be idle")
	}

	brain.Think(500)

	if m.FollowID() != player.ID() {
		t.Errorf("FollowID = %d, want %d", m.FollowID(), player.ID())
	}
	if m.AttackedID() != player.ID() {
		t.Errorf("AttackedID = %d, want %d", m.AttackedID(), player.ID())
	}
}

func TestMonsterAI_StaleTargetPurgedSameTick(t *testing.T) {
	w := newFakeWorld()
	m := model.NewMonster(1, meleeProfile("Wolf"))
	m.SetPosition(model.NewPosition(100, 100, 7))
	brain, _ := newTestAI(m, w, Actions{})

	player := newTestPlayer(w, 2, model.NewPosition(101, 100, 7))
	brain.OnSighted(m)

	if !m.Targets().Contains(player.ID()) {
		t.Fatal("player should be targeted first")
	}

	// Destroy the player between ticks. Only the ID remains in the list.
	player.MarkRemoved()
	delete(w.creatures, player.ID())

	brain.OnMoved(m, m.Position(), m.Position())

	if m.Targets().Contains(player.ID()) {
		t.Error("destroyed creature must be purged from the target list")
	}
	if !m.IsIdle() {
		t.Error("monster with no remaining targets should go idle")
	}
}

func TestMonsterAI_NoDuplicateTargetEntries(t *testing.T) {
	w := newFakeWorld()
	m := model.NewMonster(1, meleeProfile("Wolf"))
	m.SetPosition(model.NewPosition(100, 100, 7))
	brain, _ := newTestAI(m, w, Actions{})

	player := newTestPlayer(w, 2, model.NewPosition(102, 100, 7))

	brain.OnSighted(m)
	brain.OnSighted(player)
	brain.OnMoved(player, player.Position(), player.Position())
	brain.OnMoved(m, m.Position(), m.Position())

	if got := m.Targets().Len(); got != 1 {
		t.Errorf("target list length = %d, want 1", got)
	}
}

func TestMonsterAI_IgnoresProtectionZone(t *testing.T) {
	w := newFakeWorld()
	m := model.NewMonster(1, meleeProfile("Wolf"))
	m.SetPosition(model.NewPosition(100, 100, 7))
	brain, _ := newTestAI(m, w, Actions{})

	player := newTestPlayer(w, 2, model.NewPosition(101, 100, 7))
	player.SetZone(model.ZoneProtection)

	brain.OnSighted(m)
	brain.Think(500)

	if m.AttackedID() == player.ID() {
		t.Error("creature in a protection zone must not be engaged")
	}
	if m.FollowID() == player.ID() {
		t.Error("creature in a protection zone must not be pursued")
	}
}

func TestMonsterAI_IgnoredPlayerIsNotOpponent(t *testing.T) {
	w := newFakeWorld()
	m := model.NewMonster(1, meleeProfile("Wolf"))
	m.SetPosition(model.NewPosition(100, 100, 7))
	brain, _ := newTestAI(m, w, Actions{})

	player := newTestPlayer(w, 2, model.NewPosition(101, 100, 7))
	player.SetIgnoredByMonsters(true)

	brain.OnSighted(m)

	if m.Targets().Contains(player.ID()) {
		t.Error("ignored player must not enter the target list")
	}
}

func TestMonsterAI_MonstersAreFriendsNotTargets(t *testing.T) {
	w := newFakeWorld()
	m := model.NewMonster(1, meleeProfile("Wolf"))
	m.SetPosition(model.NewPosition(100, 100, 7))
	brain, _ := newTestAI(m, w, Actions{})

	other := model.NewMonster(2, meleeProfile("Wolf"))
	other.SetPosition(model.NewPosition(101, 100, 7))
	w.add(other)

	brain.OnSighted(m)

	if !m.Friends().Contains(other.ID()) {
		t.Error("independent monster should be classified as friend")
	}
	if m.Targets().Contains(other.ID()) {
		t.Error("an entity must never be friend and target at once")
	}
}

func TestMonsterAI_LeashBoundary(t *testing.T) {
	anchor := model.NewPosition(100, 100, 7)

	tests := []struct {
		name   string
		pos    model.Position
		inside bool
	}{
		{"at anchor", anchor, true},
		{"on the radius", model.NewPosition(110, 100, 7), true},
		{"one beyond", model.NewPosition(111, 100, 7), false},
		{"floor out of range", model.NewPosition(100, 100, 4), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newFakeWorld()
			m := model.NewMonster(1, meleeProfile("Wolf"))
			m.SetPosition(anchor)
			m.SetSpawnAnchor(anchor)
			brain, _ := newTestAI(m, w, Actions{
				Teleport: func(mon *model.Monster, pos model.Position) {
					mon.SetPosition(pos)
				},
			})

			m.SetPosition(tt.pos)
			m.SetIdle(false)
			brain.Think(500)

			if tt.inside {
				if m.Position() != tt.pos {
					t.Errorf("position = %v, want %v (no leash action)", m.Position(), tt.pos)
				}
			} else {
				if m.Position() != anchor {
					t.Errorf("position = %v, want anchor %v", m.Position(), anchor)
				}
				if !m.IsIdle() {
					t.Error("leashed-back monster should be idle")
				}
			}
		})
	}
}

func TestMonsterAI_LeashRemoveOnDespawn(t *testing.T) {
	anchor := model.NewPosition(100, 100, 7)
	w := newFakeWorld()
	m := model.NewMonster(1, meleeProfile("Wolf"))
	m.SetPosition(anchor)
	m.SetSpawnAnchor(anchor)

	removed := false
	brain, _ := newTestAI(m, w, Actions{
		Remove: func(mon *model.Monster) {
			mon.MarkRemoved()
			removed = true
		},
	})
	brain.cfg.RemoveOnDespawn = true

	m.SetPosition(model.NewPosition(120, 100, 7))
	brain.Think(500)

	if !removed {
		t.Error("monster beyond the leash must be removed when configured so")
	}
}

func TestMonsterAI_LosingLastOpponentWalksHome(t *testing.T) {
	anchor := model.NewPosition(100, 100, 7)
	w := newFakeWorld()
	m := model.NewMonster(1, meleeProfile("Wolf"))
	m.SetSpawnAnchor(anchor)
	m.SetPosition(model.NewPosition(106, 100, 7)) // beyond WalkToSpawnRadius 3

	w.findPath = func(from, to model.Position, params PathParams) ([]model.Direction, bool) {
		return []model.Direction{model.DirectionWest, model.DirectionWest}, true
	}

	brain, _ := newTestAI(m, w, Actions{})
	player := newTestPlayer(w, 2, model.NewPosition(107, 100, 7))
	brain.OnSighted(m)

	if !m.Targets().Contains(player.ID()) {
		t.Fatal("player should be targeted first")
	}

	// Player leaves the viewport.
	player.SetPosition(model.NewPosition(130, 100, 7))
	brain.OnMoved(player, model.NewPosition(107, 100, 7), player.Position())

	if !m.IsWalkingToSpawn() {
		t.Error("losing the last opponent away from home should start the return walk")
	}
	if !m.HasFollowPath() {
		t.Error("return walk should install a path")
	}
}

func TestMonsterAI_OnDamagedWakesAndAttributes(t *testing.T) {
	w := newFakeWorld()
	profile := meleeProfile("Grave Tyrant")
	profile.RewardBoss = true
	m := model.NewMonster(1, profile)
	m.SetPosition(model.NewPosition(100, 100, 7))
	brain, _ := newTestAI(m, w, Actions{})

	player := newTestPlayer(w, 2, model.NewPosition(101, 100, 7))

	sink := &recordingSink{}
	brain.SetDamageSink(sink)

	m.SetIdle(true)
	brain.OnDamaged(player.ID(), 40)

	if m.IsIdle() {
		t.Error("taking damage must wake the monster")
	}
	if sink.total(m.ID(), player.ID()) != 40 {
		t.Errorf("tracked damage = %d, want 40", sink.total(m.ID(), player.ID()))
	}
}

func TestMonsterAI_SummonDamageCreditsMaster(t *testing.T) {
	w := newFakeWorld()
	profile := meleeProfile("Grave Tyrant")
	profile.RewardBoss = true
	m := model.NewMonster(1, profile)
	m.SetPosition(model.NewPosition(100, 100, 7))
	brain, _ := newTestAI(m, w, Actions{})

	player := newTestPlayer(w, 2, model.NewPosition(101, 100, 7))

	pet := model.NewMonster(3, meleeProfile("Wolf"))
	pet.SetPosition(model.NewPosition(101, 101, 7))
	pet.SetMaster(player.ID())
	w.add(pet)

	sink := &recordingSink{}
	brain.SetDamageSink(sink)

	brain.OnDamaged(pet.ID(), 25)

	if sink.total(m.ID(), player.ID()) != 25 {
		t.Errorf("summon damage credited = %d, want 25 to the master",
			sink.total(m.ID(), player.ID()))
	}
}

func TestMonsterAI_OnDiedKillsSummons(t *testing.T) {
	w := newFakeWorld()
	m := model.NewMonster(1, meleeProfile("Wolf"))
	m.SetPosition(model.NewPosition(100, 100, 7))

	var killed []uint32
	brain, _ := newTestAI(m, w, Actions{
		Kill: func(id uint32) { killed = append(killed, id) },
	})

	m.AddSummon(7)
	m.AddSummon(8)
	m.SetHealth(0)
	brain.OnDied(2)

	if len(killed) != 2 {
		t.Fatalf("killed %d summons, want 2", len(killed))
	}
	if len(m.Summons()) != 0 {
		t.Error("summon references must be cleared on death")
	}
	if !m.Targets().IsEmpty() || m.Friends().Len() != 0 {
		t.Error("engagement lists must be cleared on death")
	}
}

type recordingSink struct {
	entries map[[2]uint32]int64
}

func (s *recordingSink) TrackDamageDone(bossID, playerID uint32, amount int64) {
	if s.entries == nil {
		s.entries = make(map[[2]uint32]int64)
	}
	s.entries[[2]uint32{bossID, playerID}] += amount
}

func (s *recordingSink) total(bossID, playerID uint32) int64 {
	return s.entries[[2]uint32{bossID, playerID}]
}
