package storage

import (
	"fmt"
	"sync"

	"spiritclash/internal/battle"
	"spiritclash/internal/combat"
)

// Memory keeps progression in process. The simulator uses it so batch runs
// never touch disk.
type Memory struct {
	mu       sync.Mutex
	stats    StatCalculator
	spirits  map[string]battle.SpiritRecord
	currency int
	essence  map[string]int
}

func NewMemory(stats StatCalculator) *Memory {
	return &Memory{
		stats:   stats,
		spirits: map[string]battle.SpiritRecord{},
		essence: map[string]int{},
	}
}

func (m *Memory) AddSpirit(rec battle.SpiritRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.Level < 1 {
		rec.Level = 1
	}
	m.spirits[rec.InstanceID] = rec
	return nil
}

func (m *Memory) FindSpiritsByInstanceID(ids []string) ([]battle.SpiritRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []battle.SpiritRecord
	for _, id := range ids {
		if rec, ok := m.spirits[id]; ok {
			out = append(out, fillHealth(m.stats, rec))
		}
	}
	return out, nil
}

func (m *Memory) ComputedStats(rec battle.SpiritRecord) (combat.Stats, error) {
	return computeStats(m.stats, rec)
}

func (m *Memory) WriteBackHealth(instanceID string, health int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.spirits[instanceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSpiritNotFound, instanceID)
	}
	if health < 0 {
		health = 0
	}
	rec.Health = health
	m.spirits[instanceID] = rec
	return nil
}

func (m *Memory) GrantVictoryReward(amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if amount > 0 {
		m.currency += amount
	}
	return nil
}

func (m *Memory) HealAllToFull() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, rec := range m.spirits {
		rec.Health = -1
		m.spirits[id] = fillHealth(m.stats, rec)
	}
	return nil
}

func (m *Memory) GrantEssence(spiritID string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if amount > 0 {
		m.essence[spiritID] += amount
	}
	return nil
}

func (m *Memory) Currency() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currency, nil
}

func (m *Memory) Essence(spiritID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.essence[spiritID], nil
}
