package world

import (
	"strings"
	"testing"
	"time"

	"github.com/openmire/mobai/internal/ai"
	"github.com/openmire/mobai/internal/bestiary"
	"github.com/openmire/mobai/internal/config"
	"github.com/openmire/mobai/internal/game/reward"
	"github.com/openmire/mobai/internal/model"
)

func newTestEngine(t *testing.T, profiles ...*bestiary.Profile) (*Engine, *ai.Scheduler, *Registry) {
	t.Helper()

	cfg := config.DefaultWorld()
	cfg.DespawnRadius = 20
	cfg.WalkToSpawnRadius = 5

	registry := NewRegistry()
	grid := NewGrid(registry)
	grid.AddFloor(0, 0, 63, 63, 7)
	scheduler := ai.NewScheduler(500 * time.Millisecond)

	byName := make(map[string]*bestiary.Profile, len(profiles))
	for _, p := range profiles {
		byName[strings.ToLower(p.Name)] = p
	}

	tracker := reward.NewTracker()
	rewards := reward.NewManager(cfg.Rewards, tracker, registry.PlayerByID, nil)

	return NewEngine(cfg, registry, grid, scheduler, byName, tracker, rewards), scheduler, registry
}

func TestEngine_SpawnAndEngage(t *testing.T) {
	engine, scheduler, _ := newTestEngine(t, testProfile("Wolf"))

	player, err := engine.SpawnPlayer("Hero", model.NewPosition(32, 32, 7), 150)
	if err != nil {
		t.Fatal(err)
	}

	m, err := engine.SpawnMonster("Wolf", model.NewPosition(33, 32, 7), true)
	if err != nil {
		t.Fatal(err)
	}

	if !m.Targets().Contains(player.ID()) {
		t.Fatal("spawned next to a player, the wolf should spot them immediately")
	}

	// Two passes: engagement on the first, the deferred attack check and
	// the swing after it.
	scheduler.TickAll(500)
	scheduler.TickAll(500)

	if m.AttackedID() != player.ID() {
		t.Errorf("AttackedID = %d, want %d", m.AttackedID(), player.ID())
	}
	if player.Health() >= player.MaxHealth() {
		t.Error("adjacent melee wolf should have landed a swing by now")
	}
}

func TestEngine_UnknownProfileFails(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	if _, err := engine.SpawnMonster("Dragon", model.NewPosition(32, 32, 7), false); err == nil {
		t.Error("spawning an unknown profile must fail")
	}
}

func TestEngine_KillTearsDown(t *testing.T) {
	engine, scheduler, registry := newTestEngine(t, testProfile("Wolf"))

	m, err := engine.SpawnMonster("Wolf", model.NewPosition(32, 32, 7), false)
	if err != nil {
		t.Fatal(err)
	}
	if scheduler.Count() != 1 {
		t.Fatalf("scheduler count = %d, want 1", scheduler.Count())
	}

	engine.Kill(m.ID())

	if _, ok := registry.Get(m.ID()); ok {
		t.Error("killed monster must not resolve anymore")
	}
	if scheduler.Count() != 0 {
		t.Errorf("scheduler count = %d after kill, want 0", scheduler.Count())
	}
	if _, ok := engine.Brain(m.ID()); ok {
		t.Error("killed monster must not keep a brain")
	}
}

func TestEngine_BossDeathDeliversRewards(t *testing.T) {
	boss := testProfile("Grave Tyrant")
	boss.RewardBoss = true
	boss.Health = 300
	boss.Loot = []bestiary.LootEntry{
		{ItemID: 2148, Chance: bestiary.MaxLootChance, CountMax: 1},
	}

	engine, _, _ := newTestEngine(t, boss)

	player, err := engine.SpawnPlayer("Hero", model.NewPosition(32, 32, 7), 150)
	if err != nil {
		t.Fatal(err)
	}
	m, err := engine.SpawnMonster("Grave Tyrant", model.NewPosition(33, 32, 7), false)
	if err != nil {
		t.Fatal(err)
	}

	// The player beats the boss down; the final hit settles the encounter.
	engine.Damage(m, player.ID(), 200)
	if m.IsRemoved() {
		t.Fatal("boss should survive the first hit")
	}
	engine.Damage(m, player.ID(), 200)

	if !m.IsRemoved() {
		t.Fatal("lethal damage should despawn the boss")
	}
	if len(player.RewardChest()) == 0 {
		t.Error("the sole contributor must receive the guaranteed loot entry")
	}
}

func TestEngine_SummonSpawnsServant(t *testing.T) {
	master := testProfile("Grave Tyrant")
	master.MaxSummons = 1
	master.Summons = []bestiary.SummonSpec{{Name: "Wolf", Speed: 500, Chance: 100, Max: 1}}

	engine, scheduler, registry := newTestEngine(t, master, testProfile("Wolf"))

	// Summoning requires an active pursuit, so give the tyrant a fight.
	if _, err := engine.SpawnPlayer("Hero", model.NewPosition(33, 32, 7), 150); err != nil {
		t.Fatal(err)
	}
	m, err := engine.SpawnMonster("Grave Tyrant", model.NewPosition(32, 32, 7), false)
	if err != nil {
		t.Fatal(err)
	}

	scheduler.TickAll(500)

	summons := m.Summons()
	if len(summons) != 1 {
		t.Fatalf("summons = %d, want 1", len(summons))
	}
	servant, ok := registry.Get(summons[0])
	if !ok {
		t.Fatal("the servant should be live in the registry")
	}
	if servant.MasterID() != m.ID() {
		t.Errorf("servant master = %d, want %d", servant.MasterID(), m.ID())
	}
	if servant.Position().ChebyshevDistance(m.Position()) != 1 {
		t.Errorf("servant at %v, want adjacent to the caster", servant.Position())
	}
}
