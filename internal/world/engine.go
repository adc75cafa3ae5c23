package world

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/openmire/mobai/internal/ai"
	"github.com/openmire/mobai/internal/bestiary"
	"github.com/openmire/mobai/internal/config"
	"github.com/openmire/mobai/internal/game/reward"
	"github.com/openmire/mobai/internal/model"
)

// Engine glues the map, the creature registry, the brains and the reward
// bookkeeping together. It owns spawning and despawning and provides the
// world mutation callbacks the brains run through.
type Engine struct {
	cfg       config.World
	registry  *Registry
	grid      *Grid
	scheduler *ai.Scheduler
	profiles  map[string]*bestiary.Profile
	tracker   *reward.Tracker
	rewards   *reward.Manager
	brains    map[uint32]*ai.MonsterAI
	overrides ai.Overrides
}

func NewEngine(
	cfg config.World,
	registry *Registry,
	grid *Grid,
	scheduler *ai.Scheduler,
	profiles map[string]*bestiary.Profile,
	tracker *reward.Tracker,
	rewards *reward.Manager,
) *Engine {
	return &Engine{
		cfg:       cfg,
		registry:  registry,
		grid:      grid,
		scheduler: scheduler,
		profiles:  profiles,
		tracker:   tracker,
		rewards:   rewards,
		brains:    make(map[uint32]*ai.MonsterAI),
	}
}

// SetOverrides installs behavior overrides applied to every monster
// spawned afterwards.
func (e *Engine) SetOverrides(o ai.Overrides) { e.overrides = o }

// Profile returns a loaded bestiary profile by name.
func (e *Engine) Profile(name string) (*bestiary.Profile, bool) {
	p, ok := e.profiles[strings.ToLower(name)]
	return p, ok
}

// Brain returns the decision controller of a spawned monster.
func (e *Engine) Brain(id uint32) (*ai.MonsterAI, bool) {
	b, ok := e.brains[id]
	return b, ok
}

// Tracker exposes the boss contribution tracker so combat outside the
// engine's own ability casts can record scores.
func (e *Engine) Tracker() *reward.Tracker { return e.tracker }

// SpawnMonster creates a monster of the named profile at pos and brings
// its brain online. leashed pins the monster to pos as its spawn anchor.
func (e *Engine) SpawnMonster(profileName string, pos model.Position, leashed bool) (*model.Monster, error) {
	profile, ok := e.Profile(profileName)
	if !ok {
		return nil, fmt.Errorf("spawn monster: unknown profile %q", profileName)
	}

	m := model.NewMonster(e.registry.AllocateID(), profile)
	m.SetPosition(pos)
	if leashed {
		m.SetSpawnAnchor(pos)
	}

	if !e.grid.Place(m) {
		return nil, fmt.Errorf("spawn monster %q: no tile at %v", profileName, pos)
	}
	e.attachBrain(m)

	slog.Debug("monster spawned",
		"id", m.ID(),
		"name", m.Name(),
		"pos", pos,
		"leashed", leashed)
	return m, nil
}

// SpawnPlayer creates a player creature and places it on the map.
func (e *Engine) SpawnPlayer(name string, pos model.Position, maxHealth int32) (*model.Player, error) {
	p := model.NewPlayer(e.registry.AllocateID(), name, maxHealth)
	p.SetPosition(pos)
	p.SetOnline(true)
	if !e.grid.Place(p) {
		return nil, fmt.Errorf("spawn player %q: no tile at %v", name, pos)
	}
	return p, nil
}

// attachBrain wires a monster's decision controller into the scheduler
// and the spatial event stream.
func (e *Engine) attachBrain(m *model.Monster) {
	brain := ai.NewMonsterAI(m, e.cfg, e.grid, e.grid, e.registry.Get, e.actionsFor(m))
	brain.SetScheduler(e.scheduler)
	brain.SetOverrides(e.overrides)
	if e.tracker != nil {
		brain.SetDamageSink(e.tracker)
	}
	if e.rewards != nil {
		brain.SetRewardResolver(e.rewards)
	}

	e.brains[m.ID()] = brain
	e.registry.AddObserver(m.ID(), brain)
	e.scheduler.Register(m.ID(), brain)

	// Placement already fanned out before the observer existed; deliver
	// the initial surroundings scan directly.
	brain.OnSighted(m)
}

// Despawn takes a monster out of the world: off the map, out of the
// scheduler and out of the event stream.
func (e *Engine) Despawn(m *model.Monster) {
	e.scheduler.Unregister(m.ID())
	e.registry.RemoveObserver(m.ID())
	delete(e.brains, m.ID())
	e.grid.Remove(m)
}

// Damage applies amount to target on behalf of attackerID and routes the
// hit through the target's brain. Boss hits against players feed the
// contribution tracker.
func (e *Engine) Damage(target model.Creature, attackerID uint32, amount int32) {
	if amount <= 0 || target.IsRemoved() {
		return
	}

	switch victim := target.(type) {
	case *model.Monster:
		victim.SetHealth(victim.Health() - amount)
		if brain, ok := e.brains[victim.ID()]; ok {
			brain.OnDamaged(attackerID, amount)
			if victim.IsDead() {
				brain.OnDied(attackerID)
				e.Despawn(victim)
			}
		}
	case *model.Player:
		victim.SetHealth(victim.Health() - amount)
		if attacker, ok := e.registry.Get(attackerID); ok {
			if boss, ok := attacker.(*model.Monster); ok && boss.Profile().RewardBoss && e.tracker != nil {
				e.tracker.TrackDamageTaken(boss.ID(), victim.ID(), int64(amount))
			}
		}
	}
}

// Heal restores amount on target, capped at max health.
func (e *Engine) Heal(target model.Creature, amount int32) {
	if amount <= 0 || target.IsRemoved() {
		return
	}
	switch c := target.(type) {
	case *model.Monster:
		c.SetHealth(c.Health() + amount)
	case *model.Player:
		c.SetHealth(c.Health() + amount)
	}
}

// Kill force-destroys a creature, used for unpushable blockers and
// orphaned summons.
func (e *Engine) Kill(id uint32) {
	c, ok := e.registry.Get(id)
	if !ok {
		return
	}
	switch victim := c.(type) {
	case *model.Monster:
		victim.SetHealth(0)
		if brain, ok := e.brains[victim.ID()]; ok {
			brain.OnDied(0)
		}
		e.Despawn(victim)
	case *model.Player:
		victim.SetHealth(0)
	}
}

// actionsFor builds the world mutation callbacks one monster's brain
// drives.
func (e *Engine) actionsFor(m *model.Monster) ai.Actions {
	return ai.Actions{
		Cast: func(caster *model.Monster, target model.Creature, ability *bestiary.Ability) {
			e.cast(caster, target, ability)
		},
		Summon: func(caster *model.Monster, spec *bestiary.SummonSpec) (uint32, bool) {
			return e.summon(caster, spec)
		},
		Say: func(speaker *model.Monster, text string, yell bool) {
			e.say(speaker, text, yell)
		},
		Effect: func(pos model.Position, effect string) {
			slog.Debug("world effect", "pos", pos, "effect", effect)
		},
		Walk: func(walker *model.Monster, dir model.Direction, pathDerived bool) bool {
			return e.grid.MoveCreature(walker.ID(), dir)
		},
		Teleport: func(mover *model.Monster, pos model.Position) {
			e.grid.TeleportCreature(mover, pos)
		},
		Remove: func(doomed *model.Monster) {
			e.Despawn(doomed)
		},
		Kill: func(id uint32) {
			e.Kill(id)
		},
	}
}

// cast resolves one ability use into world state changes. Offensive kinds
// roll damage, heal restores the target, the rest are cosmetic here.
func (e *Engine) cast(caster *model.Monster, target model.Creature, ability *bestiary.Ability) {
	switch ability.Kind {
	case "melee", "physical", "fire", "energy", "earth", "ice", "death":
		e.Damage(target, caster.ID(), rollDamage(ability))
	case "lifedrain":
		amount := rollDamage(ability)
		e.Damage(target, caster.ID(), amount)
		e.Heal(caster, amount)
	case "heal":
		e.Heal(target, rollDamage(ability))
	default:
		// haste, invisible, outfit, firefield and other status kinds
		// have no combat resolution in this engine
		slog.Debug("ability cast",
			"caster", caster.Name(),
			"kind", ability.Kind,
			"target", target.Name())
	}
}

func rollDamage(ability *bestiary.Ability) int32 {
	if ability.MaxDamage <= ability.MinDamage {
		return ability.MinDamage
	}
	return ability.MinDamage + rand.Int32N(ability.MaxDamage-ability.MinDamage+1)
}

// summon spawns a servant of spec next to caster. The servant inherits no
// spawn anchor; it leashes to its master instead.
func (e *Engine) summon(caster *model.Monster, spec *bestiary.SummonSpec) (uint32, bool) {
	profile, ok := e.Profile(spec.Name)
	if !ok {
		slog.Warn("summon refers to unknown profile", "caster", caster.Name(), "name", spec.Name)
		return 0, false
	}

	pos, ok := e.freeAdjacent(caster.Position())
	if !ok {
		return 0, false
	}

	servant := model.NewMonster(e.registry.AllocateID(), profile)
	servant.SetPosition(pos)
	servant.SetMaster(caster.ID())
	if !e.grid.Place(servant) {
		return 0, false
	}
	e.attachBrain(servant)

	if spec.Effect != "" {
		slog.Debug("world effect", "pos", pos, "effect", spec.Effect)
	}
	slog.Debug("summon spawned", "master", caster.ID(), "id", servant.ID(), "name", servant.Name())
	return servant.ID(), true
}

// freeAdjacent picks a random walkable neighbor cell.
func (e *Engine) freeAdjacent(pos model.Position) (model.Position, bool) {
	dirs := []model.Direction{
		model.DirectionNorth,
		model.DirectionEast,
		model.DirectionSouth,
		model.DirectionWest,
		model.DirectionNorthEast,
		model.DirectionSouthEast,
		model.DirectionSouthWest,
		model.DirectionNorthWest,
	}
	rand.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })

	for _, dir := range dirs {
		next := pos.Next(dir)
		if e.grid.walkable(next) {
			return next, true
		}
	}
	return model.Position{}, false
}

// say delivers a voice line to every player in earshot.
func (e *Engine) say(speaker *model.Monster, text string, yell bool) {
	if yell {
		text = strings.ToUpper(text)
	}
	line := fmt.Sprintf("%s: %s", speaker.Name(), text)
	e.grid.Spectators(speaker.Position(), true, func(c model.Creature) bool {
		if p, ok := c.(*model.Player); ok && p.IsOnline() {
			p.Notify(line)
		}
		return true
	})
}
