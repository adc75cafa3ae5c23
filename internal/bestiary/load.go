package bestiary

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Built-in effect kinds the combat engine always provides. Content packs
// may extend the set through RegisterKind before loading profiles.
var (
	kindsMu sync.RWMutex
	kinds   = map[string]struct{}{
		"melee":     {},
		"physical":  {},
		"fire":      {},
		"energy":    {},
		"earth":     {},
		"ice":       {},
		"death":     {},
		"lifedrain": {},
		"heal":      {},
		"haste":     {},
		"invisible": {},
		"outfit":    {},
		"firefield": {},
	}
)

// RegisterKind makes an effect kind known to the profile loader.
func RegisterKind(kind string) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	kinds[kind] = struct{}{}
}

// KnownKind reports whether an effect kind is registered.
func KnownKind(kind string) bool {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	_, ok := kinds[kind]
	return ok
}

// Load reads a single profile from a YAML file. Abilities referencing an
// unknown effect kind are dropped with a warning: the creature keeps
// running with reduced capability, a malformed profile is never fatal.
func Load(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile %s: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}

	if p.Name == "" {
		return nil, fmt.Errorf("profile %s: missing name", path)
	}
	if p.StaticAttackChance == 0 {
		p.StaticAttackChance = 95
	}
	if p.TargetDistance == 0 {
		p.TargetDistance = 1
	}

	p.Attack = dropUnknown(p.Name, "attack", p.Attack)
	p.Defense = dropUnknown(p.Name, "defense", p.Defense)

	return &p, nil
}

// LoadDir loads every *.yaml profile in dir, keyed by lowercase name.
func LoadDir(dir string) (map[string]*Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading bestiary dir: %w", err)
	}

	profiles := make(map[string]*Profile, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		p, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		key := strings.ToLower(p.Name)
		if _, dup := profiles[key]; dup {
			return nil, fmt.Errorf("duplicate profile name %q in %s", p.Name, entry.Name())
		}
		profiles[key] = p
	}

	slog.Info("bestiary loaded", "dir", dir, "profiles", len(profiles))
	return profiles, nil
}

func dropUnknown(profile, section string, abilities []Ability) []Ability {
	kept := abilities[:0]
	for _, a := range abilities {
		if a.Melee && a.Kind == "" {
			a.Kind = "melee"
		}
		if !KnownKind(a.Kind) {
			slog.Warn("unknown ability kind, creature continues without it",
				"profile", profile,
				"section", section,
				"ability", a.Name,
				"kind", a.Kind)
			continue
		}
		kept = append(kept, a)
	}
	return kept
}
