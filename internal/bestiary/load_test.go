package bestiary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, dir, file, content string) string {
	t.Helper()
	path := filepath.Join(dir, file)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "rat.yaml", `
name: Rat
health: 20
attack:
  - name: bite
    melee: true
    speed: 2000
    chance: 100
    range: 1
    max_damage: 3
`)

	p, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Rat", p.Name)
	assert.Equal(t, int32(95), p.StaticAttackChance)
	assert.Equal(t, int32(1), p.TargetDistance)
	require.Len(t, p.Attack, 1)
	// melee abilities without an explicit kind get the melee effect
	assert.Equal(t, "melee", p.Attack[0].Kind)
}

func TestLoad_MissingNameFails(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "broken.yaml", "health: 10\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_DropsUnknownAbilityKinds(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "odd.yaml", `
name: Odd One
health: 50
attack:
  - name: strange beam
    kind: antimatter
    speed: 2000
    chance: 100
  - name: claw
    melee: true
    speed: 2000
    chance: 100
defense:
  - name: weird ward
    kind: chronoshift
    speed: 1000
    chance: 20
`)

	p, err := Load(path)
	require.NoError(t, err)

	require.Len(t, p.Attack, 1)
	assert.Equal(t, "claw", p.Attack[0].Name)
	assert.Empty(t, p.Defense)
}

func TestLoad_RegisteredKindSurvives(t *testing.T) {
	RegisterKind("plasma")
	path := writeProfile(t, t.TempDir(), "custom.yaml", `
name: Plasma Elemental
health: 100
attack:
  - name: plasma burst
    kind: plasma
    speed: 2000
    chance: 80
    range: 5
`)

	p, err := Load(path)
	require.NoError(t, err)
	require.Len(t, p.Attack, 1)
	assert.Equal(t, "plasma", p.Attack[0].Kind)
}

func TestLoadDir_LowercaseKeys(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "wolf.yaml", "name: Winter Wolf\nhealth: 40\n")
	writeProfile(t, dir, "rat.yaml", "name: Rat\nhealth: 20\n")
	writeProfile(t, dir, "notes.txt", "not a profile")

	profiles, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Len(t, profiles, 2)
	require.Contains(t, profiles, "winter wolf")
	assert.Equal(t, "Winter Wolf", profiles["winter wolf"].Name)
	assert.Contains(t, profiles, "rat")
}

func TestLoadDir_DuplicateNameFails(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "a.yaml", "name: Rat\nhealth: 20\n")
	writeProfile(t, dir, "b.yaml", "name: rat\nhealth: 25\n")

	_, err := LoadDir(dir)
	assert.ErrorContains(t, err, "duplicate profile name")
}

func TestProfile_HasRangedAttack(t *testing.T) {
	melee := &Profile{Attack: []Ability{{Name: "claw", Melee: true, Range: 1}}}
	assert.False(t, melee.HasRangedAttack())

	ranged := &Profile{Attack: []Ability{
		{Name: "claw", Melee: true, Range: 1},
		{Name: "bolt", Kind: "energy", Range: 7},
	}}
	assert.True(t, ranged.HasRangedAttack())
}
