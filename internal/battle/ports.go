package battle

import (
	"spiritclash/internal/combat"
)

// SpiritRecord is the persisted side of a party member.
type SpiritRecord struct {
	InstanceID string
	SpiritID   string
	Nickname   string
	Level      int
	Health     int
}

// Persistence is the progression store the battle reads at start and writes
// at the end. Its internal bookkeeping is not the engine's concern.
type Persistence interface {
	FindSpiritsByInstanceID(ids []string) ([]SpiritRecord, error)
	ComputedStats(rec SpiritRecord) (combat.Stats, error)
	WriteBackHealth(instanceID string, health int) error
	GrantVictoryReward(amount int) error
	HealAllToFull() error
	GrantEssence(spiritID string, amount int) error
}

type EnemySpec struct {
	SpiritID string
	Level    int
	Actions  []string
}

type Rewards struct {
	Currency int
	Essence  map[string]int
}

type Encounter struct {
	ID      string
	Name    string
	Music   string
	Enemies []EnemySpec
	Rewards Rewards
}

// EncounterSource picks the opposing roster for a requested difficulty,
// which is the party's average level.
type EncounterSource interface {
	Select(difficulty int) (Encounter, error)
}

// Presenter receives sound cues and health-bar flags. Calls must not block.
type Presenter interface {
	Present(ev combat.Event)
}

type PresenterFunc func(ev combat.Event)

func (f PresenterFunc) Present(ev combat.Event) { f(ev) }

type nopPresenter struct{}

func (nopPresenter) Present(combat.Event) {}
