package reward

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/openmire/mobai/internal/bestiary"
	"github.com/openmire/mobai/internal/config"
	"github.com/openmire/mobai/internal/model"
)

// Store persists reward items for players that are offline at resolution
// time and loads them back on login.
type Store interface {
	SaveRewardItems(ctx context.Context, playerID uint32, items []model.RewardItem) error
	LoadRewardItems(ctx context.Context, playerID uint32) ([]model.RewardItem, error)
}

// PlayerLookup resolves a contributing player by ID. False means the
// player is unknown to the world right now.
type PlayerLookup func(playerID uint32) (*model.Player, bool)

// Manager settles boss encounters on death.
type Manager struct {
	cfg     config.Rewards
	tracker *Tracker
	players PlayerLookup
	store   Store
}

// NewManager creates a reward manager. store may be nil, in which case
// offline rewards are dropped with an error log.
func NewManager(cfg config.Rewards, tracker *Tracker, players PlayerLookup, store Store) *Manager {
	return &Manager{
		cfg:     cfg,
		tracker: tracker,
		players: players,
		store:   store,
	}
}

// ResolveDeath settles the encounter for a dead creature. For each
// contributor the weighted score is compared against the expected share
// (raw total divided by three times the contributor count); those who pull
// their weight roll the loot table, unique entries going only to the top
// raw scorer. Online players get the items and a chest message, offline
// players get a persisted delivery. The score table is consumed, so a
// second call is a no-op.
func (mgr *Manager) ResolveDeath(m *model.Monster) {
	if !m.Profile().RewardBoss {
		mgr.tracker.Discard(m.ID())
		return
	}

	table, ok := mgr.tracker.Take(m.ID())
	if !ok || len(table) == 0 {
		return
	}

	var topID uint32
	var topScore, totalScore int64
	for playerID, score := range table {
		raw := score.Total()
		totalScore += raw
		if raw > topScore {
			topScore = raw
			topID = playerID
		}
	}

	contributors := len(table)
	lootRate := int64(mgr.cfg.BaseRate)
	if lootRate < 1 {
		lootRate = 1
	}

	for playerID, score := range table {
		contribution := float64(score.DamageDone)*mgr.cfg.RateDamageDone +
			float64(score.DamageTaken)*mgr.cfg.RateDamageTaken +
			float64(score.HealingDone)*mgr.cfg.RateHealingDone

		var expected float64
		if contribution != 0 {
			expected = float64(totalScore) / (float64(contributors) * 3.0)
		}

		player, known := mgr.players(playerID)
		online := known && player.IsOnline()

		if contribution < expected {
			// Contributed, but not enough.
			if online {
				player.Notify("You did not receive any loot.")
			}
			continue
		}

		items := mgr.rollLoot(m, lootRate, playerID == topID)
		if len(items) == 0 {
			continue
		}

		if online {
			player.AddReward(items)
			player.Notify(fmt.Sprintf(
				"The following items dropped by %s are available in your reward chest.", m.Name()))
			continue
		}

		if mgr.store == nil {
			slog.Error("offline reward dropped, no store configured",
				"playerID", playerID, "bossID", m.ID())
			continue
		}
		if err := mgr.store.SaveRewardItems(context.Background(), playerID, items); err != nil {
			slog.Error("save offline reward",
				"playerID", playerID, "bossID", m.ID(), "error", err)
		}
	}
}

// rollLoot rolls every loot table entry independently: the entry chance is
// scaled by the loot rate and compared against a uniform roll out of
// MaxLootChance; item count is uniform in [1, CountMax].
func (mgr *Manager) rollLoot(m *model.Monster, lootRate int64, topContributor bool) []model.RewardItem {
	var items []model.RewardItem

	for _, entry := range m.Profile().Loot {
		if entry.Unique && !topContributor {
			continue
		}

		adjustedChance := int64(entry.Chance) * lootRate
		if int64(rand.IntN(bestiary.MaxLootChance))+1 > adjustedChance {
			continue
		}

		count := int32(1)
		if entry.CountMax > 1 {
			count = rand.Int32N(entry.CountMax) + 1
		}

		items = append(items, model.RewardItem{
			ItemID:   entry.ItemID,
			Count:    count,
			SourceID: m.ID(),
		})
	}
	return items
}
