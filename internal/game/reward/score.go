// Package reward settles cooperative boss encounters: contribution
// tracking while the fight runs, loot weighting and delivery on death.
package reward

// Score is one player's contribution to a boss encounter.
type Score struct {
	DamageDone  int64
	DamageTaken int64
	HealingDone int64
}

// Total returns the raw, unweighted contribution sum. Used for ranking
// contributors; eligibility uses the weighted score instead.
func (s Score) Total() int64 {
	return s.DamageDone + s.DamageTaken + s.HealingDone
}

// ScoreTable is the per-encounter contribution ledger, keyed by player ID.
type ScoreTable map[uint32]Score

// Tracker accumulates contribution scores per boss encounter. It runs on
// the same cooperative scheduler as the creature ticks, so no locking.
type Tracker struct {
	encounters map[uint32]ScoreTable
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{encounters: make(map[uint32]ScoreTable)}
}

func (t *Tracker) table(bossID uint32) ScoreTable {
	table, ok := t.encounters[bossID]
	if !ok {
		table = make(ScoreTable)
		t.encounters[bossID] = table
	}
	return table
}

// TrackDamageDone attributes damage dealt to the boss.
func (t *Tracker) TrackDamageDone(bossID, playerID uint32, amount int64) {
	table := t.table(bossID)
	score := table[playerID]
	score.DamageDone += amount
	table[playerID] = score
}

// TrackDamageTaken attributes damage the player soaked from the boss.
func (t *Tracker) TrackDamageTaken(bossID, playerID uint32, amount int64) {
	table := t.table(bossID)
	score := table[playerID]
	score.DamageTaken += amount
	table[playerID] = score
}

// TrackHealingDone attributes healing cast on encounter participants.
func (t *Tracker) TrackHealingDone(bossID, playerID uint32, amount int64) {
	table := t.table(bossID)
	score := table[playerID]
	score.HealingDone += amount
	table[playerID] = score
}

// Take removes and returns the encounter's score table. A second call for
// the same boss returns nothing, so resolution runs exactly once.
func (t *Tracker) Take(bossID uint32) (ScoreTable, bool) {
	table, ok := t.encounters[bossID]
	if ok {
		delete(t.encounters, bossID)
	}
	return table, ok
}

// Discard drops any tracking state for the encounter without resolving it.
func (t *Tracker) Discard(bossID uint32) {
	delete(t.encounters, bossID)
}
