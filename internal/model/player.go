package model

// Player is the engine-facing view of a connected (or recently
// disconnected) character. Only the state the creature AI inspects is
// modeled here: position, life, party links and the reward chest.
type Player struct {
	id   uint32
	name string

	pos       Position
	health    int32
	maxHealth int32
	zone      Zone
	removed   bool
	online    bool

	// ignoredByMonsters marks staff/spectator characters that creatures
	// must never classify as opponents.
	ignoredByMonsters bool

	partners map[uint32]struct{} // party member IDs

	// attackedID is the creature the player is currently fighting; the
	// player's summons mirror it.
	attackedID uint32

	rewardChest []RewardItem
	messages    []string
}

// RewardItem is a single loot entry delivered to a player's reward chest.
type RewardItem struct {
	ItemID   int32
	Count    int32
	SourceID uint32 // creature that dropped it
}

// NewPlayer creates a player at full health.
func NewPlayer(id uint32, name string, maxHealth int32) *Player {
	return &Player{
		id:        id,
		name:      name,
		health:    maxHealth,
		maxHealth: maxHealth,
		online:    true,
		partners:  make(map[uint32]struct{}),
	}
}

func (p *Player) ID() uint32         { return p.id }
func (p *Player) Name() string       { return p.name }
func (p *Player) Position() Position { return p.pos }
func (p *Player) Health() int32      { return p.health }
func (p *Player) MaxHealth() int32   { return p.maxHealth }
func (p *Player) IsRemoved() bool    { return p.removed }
func (p *Player) Zone() Zone         { return p.zone }
func (p *Player) MasterID() uint32   { return 0 }

// IsAttackable reports whether creatures may engage this player.
func (p *Player) IsAttackable() bool { return !p.removed && p.health > 0 }

// SetPosition moves the player. Movement validation happens elsewhere.
func (p *Player) SetPosition(pos Position) { p.pos = pos }

// SetZone updates the zone of the occupied tile.
func (p *Player) SetZone(zone Zone) { p.zone = zone }

// SetHealth clamps health into [0, max].
func (p *Player) SetHealth(health int32) {
	p.health = min(max(health, 0), p.maxHealth)
}

// MarkRemoved flags the player as gone from the world.
func (p *Player) MarkRemoved() { p.removed = true }

// IsOnline reports whether the player has an active session.
func (p *Player) IsOnline() bool { return p.online }

// SetOnline updates session state.
func (p *Player) SetOnline(online bool) { p.online = online }

// IgnoredByMonsters reports the staff/spectator flag.
func (p *Player) IgnoredByMonsters() bool { return p.ignoredByMonsters }

// SetIgnoredByMonsters updates the staff/spectator flag.
func (p *Player) SetIgnoredByMonsters(ignored bool) { p.ignoredByMonsters = ignored }

// AddPartner links another player as a party member.
func (p *Player) AddPartner(playerID uint32) {
	p.partners[playerID] = struct{}{}
}

// RemovePartner drops a party link.
func (p *Player) RemovePartner(playerID uint32) {
	delete(p.partners, playerID)
}

// AttackedID returns the creature the player is engaged with, 0 when idle.
func (p *Player) AttackedID() uint32 { return p.attackedID }

// SetAttacked engages or disengages (id 0) a combat target.
func (p *Player) SetAttacked(id uint32) { p.attackedID = id }

// IsPartner reports whether playerID is in the same party.
func (p *Player) IsPartner(playerID uint32) bool {
	_, ok := p.partners[playerID]
	return ok
}

// AddReward places loot into the player's reward chest.
func (p *Player) AddReward(items []RewardItem) {
	p.rewardChest = append(p.rewardChest, items...)
}

// RewardChest returns a copy of the reward chest contents.
func (p *Player) RewardChest() []RewardItem {
	out := make([]RewardItem, len(p.rewardChest))
	copy(out, p.rewardChest)
	return out
}

// Notify queues a text message for the player's client.
func (p *Player) Notify(text string) {
	p.messages = append(p.messages, text)
}

// Messages returns a copy of queued client messages.
func (p *Player) Messages() []string {
	out := make([]string, len(p.messages))
	copy(out, p.messages)
	return out
}
