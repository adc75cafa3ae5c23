// Package bestiary holds the read-only behavioral profiles shared by all
// creatures of the same kind: abilities, cadence speeds, voice lines,
// summon specs and loot tables. Profiles outlive every agent using them
// and are never mutated after load.
package bestiary

// MaxLootChance is the denominator for loot entry chance rolls.
const MaxLootChance = 100000

// Ability describes one attack or defense spell of a profile.
type Ability struct {
	Name string `yaml:"name"`
	// Kind selects the effect implementation in the combat engine.
	// Unknown kinds are dropped at load time with a warning.
	Kind  string `yaml:"kind"`
	Melee bool   `yaml:"melee"`
	// Speed is the cadence interval in milliseconds. An ability fires at
	// most once per speed window.
	Speed int64 `yaml:"speed"`
	// Chance gates the actual cast with a 1-100 roll once cadence allows it.
	Chance int32 `yaml:"chance"`
	// Range is the maximum Chebyshev distance to the target in tiles.
	// 0 means self-targeted or unlimited.
	Range     int32 `yaml:"range"`
	MinDamage int32 `yaml:"min_damage"`
	MaxDamage int32 `yaml:"max_damage"`
}

// SummonSpec describes a creature kind this profile may summon.
type SummonSpec struct {
	Name   string `yaml:"name"`
	Speed  int64  `yaml:"speed"`
	Chance int32  `yaml:"chance"`
	// Max bounds concurrent summons of this particular kind.
	Max    int32  `yaml:"max"`
	Effect string `yaml:"effect"`
}

// Voice is a single idle vocalization line.
type Voice struct {
	Text string `yaml:"text"`
	Yell bool   `yaml:"yell"`
}

// LootEntry describes one row of a reward-boss loot table.
type LootEntry struct {
	ItemID int32 `yaml:"item_id"`
	// Chance is rolled against MaxLootChance, scaled by the configured
	// loot rate.
	Chance   int32 `yaml:"chance"`
	CountMax int32 `yaml:"count_max"`
	// Unique entries go only to the encounter's top contributor.
	Unique bool `yaml:"unique"`
}

// Profile is the shared behavioral template of one creature kind.
type Profile struct {
	Name      string `yaml:"name"`
	Health    int32  `yaml:"health"`
	BaseSpeed int32  `yaml:"base_speed"`

	// TargetDistance is the distance the creature tries to keep to its
	// engaged target. 1 for melee creatures.
	TargetDistance int32 `yaml:"target_distance"`
	// StaticAttackChance is the per-tick percentage of standing still
	// instead of side-stepping while engaged.
	StaticAttackChance int32 `yaml:"static_attack_chance"`
	// RunOnHealth makes the creature flee below this health.
	RunOnHealth int32 `yaml:"run_on_health"`

	ChangeTargetSpeed  int64 `yaml:"change_target_speed"`
	ChangeTargetChance int32 `yaml:"change_target_chance"`

	YellSpeed  int64 `yaml:"yell_speed"`
	YellChance int32 `yaml:"yell_chance"`

	CanPushItems     bool `yaml:"can_push_items"`
	CanPushCreatures bool `yaml:"can_push_creatures"`
	Pushable         bool `yaml:"pushable"`
	Hostile          bool `yaml:"hostile"`
	RewardBoss       bool `yaml:"reward_boss"`

	MaxSummons int32        `yaml:"max_summons"`
	Summons    []SummonSpec `yaml:"summons"`

	Attack  []Ability `yaml:"attack"`
	Defense []Ability `yaml:"defense"`

	Voices []Voice     `yaml:"voices"`
	Loot   []LootEntry `yaml:"loot"`
}

// HasRangedAttack reports whether any attack ability works beyond melee
// reach. Used by path search parameter selection.
func (p *Profile) HasRangedAttack() bool {
	for i := range p.Attack {
		if !p.Attack[i].Melee && p.Attack[i].Range > 1 {
			return true
		}
	}
	return false
}
