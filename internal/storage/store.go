// Package storage persists spirit progression: health between battles,
// currency and per-species essence.
package storage

import (
	"errors"
	"fmt"

	"spiritclash/internal/battle"
	"spiritclash/internal/combat"
)

var (
	ErrSpiritNotFound = errors.New("spirit not found")
	ErrUnknownSpecies = errors.New("unknown species")
)

// StatCalculator derives battle stats for a species at a level.
type StatCalculator interface {
	StatsFor(spiritID string, level int) (combat.Stats, bool)
}

var (
	_ battle.Persistence = (*SQLite)(nil)
	_ battle.Persistence = (*Memory)(nil)
)

func computeStats(calc StatCalculator, rec battle.SpiritRecord) (combat.Stats, error) {
	if calc == nil {
		return combat.Stats{}, fmt.Errorf("%w: no stat calculator", ErrUnknownSpecies)
	}
	st, ok := calc.StatsFor(rec.SpiritID, rec.Level)
	if !ok {
		return combat.Stats{}, fmt.Errorf("%w: %q", ErrUnknownSpecies, rec.SpiritID)
	}
	return st, nil
}

// fillHealth resolves the "never battled" marker (negative health) to the
// species' max health.
func fillHealth(calc StatCalculator, rec battle.SpiritRecord) battle.SpiritRecord {
	if rec.Health >= 0 {
		return rec
	}
	if st, err := computeStats(calc, rec); err == nil {
		rec.Health = st.MaxHealth
	}
	return rec
}
