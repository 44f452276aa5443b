// Package encounter selects which opposing roster a battle faces.
package encounter

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"spiritclash/internal/battle"
	"spiritclash/internal/config"
)

var ErrNoEncounter = errors.New("no encounter available")

// Source picks encounters from the YAML catalog. An encounter matches when
// the difficulty falls inside its level band; among several matches one is
// drawn at random. With no match the band closest to the difficulty wins.
type Source struct {
	mu   sync.Mutex
	defs []config.EncounterDef
	rng  *rand.Rand
}

func NewSource(cfg *config.EncountersConfig, rng *rand.Rand) *Source {
	s := &Source{rng: rng}
	if cfg != nil {
		s.defs = append(s.defs, cfg.Encounters...)
	}
	return s
}

func (s *Source) Select(difficulty int) (battle.Encounter, error) {
	if len(s.defs) == 0 {
		return battle.Encounter{}, ErrNoEncounter
	}
	var matches []config.EncounterDef
	for _, d := range s.defs {
		if inBand(d, difficulty) {
			matches = append(matches, d)
		}
	}
	if len(matches) == 0 {
		best := s.defs[0]
		for _, d := range s.defs[1:] {
			if distance(d, difficulty) < distance(best, difficulty) {
				best = d
			}
		}
		return toEncounter(best, difficulty), nil
	}
	s.mu.Lock()
	pick := matches[s.rng.Intn(len(matches))]
	s.mu.Unlock()
	return toEncounter(pick, difficulty), nil
}

// ByID returns a specific encounter, ignoring level bands. Unlevelled
// enemies take difficulty.
func (s *Source) ByID(id string, difficulty int) (battle.Encounter, error) {
	for _, d := range s.defs {
		if d.ID == id {
			return toEncounter(d, difficulty), nil
		}
	}
	return battle.Encounter{}, fmt.Errorf("%w: %q", ErrNoEncounter, id)
}

func inBand(d config.EncounterDef, level int) bool {
	if d.MinLevel > 0 && level < d.MinLevel {
		return false
	}
	if d.MaxLevel > 0 && level > d.MaxLevel {
		return false
	}
	return true
}

func distance(d config.EncounterDef, level int) int {
	switch {
	case d.MinLevel > 0 && level < d.MinLevel:
		return d.MinLevel - level
	case d.MaxLevel > 0 && level > d.MaxLevel:
		return level - d.MaxLevel
	}
	return 0
}

// toEncounter converts a definition. Enemies without a level take the
// requested difficulty.
func toEncounter(d config.EncounterDef, difficulty int) battle.Encounter {
	enc := battle.Encounter{
		ID:    d.ID,
		Name:  d.Name,
		Music: d.Music,
		Rewards: battle.Rewards{
			Currency: d.Rewards.Currency,
			Essence:  map[string]int{},
		},
	}
	for k, v := range d.Rewards.Essence {
		enc.Rewards.Essence[k] = v
	}
	for _, e := range d.Enemies {
		level := e.Level
		if level <= 0 {
			level = difficulty
		}
		if level <= 0 {
			level = 1
		}
		enc.Enemies = append(enc.Enemies, battle.EnemySpec{
			SpiritID: e.Spirit,
			Level:    level,
			Actions:  append([]string(nil), e.Actions...),
		})
	}
	return enc
}

// Fixed always returns the same encounter regardless of difficulty.
type Fixed battle.Encounter

func (f Fixed) Select(int) (battle.Encounter, error) { return battle.Encounter(f), nil }

// Pinned always picks the encounter named ID from Source, scaled to the
// requested difficulty. The simulator uses it to pin a matchup.
type Pinned struct {
	Source *Source
	ID     string
}

func (p Pinned) Select(difficulty int) (battle.Encounter, error) {
	return p.Source.ByID(p.ID, difficulty)
}
