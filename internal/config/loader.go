package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

// Bundle groups every catalog the engine reads at boot.
type Bundle struct {
	Skills     *SkillsConfig
	Passives   *PassivesConfig
	Spirits    *SpiritsConfig
	Encounters *EncountersConfig
}

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

func LoadAll(dir string) (*Bundle, error) {
	var sc SkillsConfig
	var pc PassivesConfig
	var spc SpiritsConfig
	var ec EncountersConfig
	if err := loadYAML(filepath.Join(dir, "skills.yaml"), &sc); err != nil {
		return nil, err
	}
	if err := loadYAML(filepath.Join(dir, "passives.yaml"), &pc); err != nil {
		return nil, err
	}
	if err := loadYAML(filepath.Join(dir, "spirits.yaml"), &spc); err != nil {
		return nil, err
	}
	if err := loadYAML(filepath.Join(dir, "encounters.yaml"), &ec); err != nil {
		return nil, err
	}
	b := &Bundle{Skills: &sc, Passives: &pc, Spirits: &spc, Encounters: &ec}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks structural consistency. Element names are checked by the
// combat package when it builds its books.
func (b *Bundle) Validate() error {
	if b.Skills == nil || b.Passives == nil || b.Spirits == nil || b.Encounters == nil {
		return fmt.Errorf("%w: missing catalog", ErrInvalidCatalog)
	}
	skills := map[string]bool{}
	for _, s := range b.Skills.Skills {
		if s.ID == "" {
			return fmt.Errorf("%w: skill without id", ErrInvalidCatalog)
		}
		if skills[s.ID] {
			return fmt.Errorf("%w: duplicate skill %q", ErrInvalidCatalog, s.ID)
		}
		skills[s.ID] = true
	}
	if b.Skills.BasicAttack == "" || !skills[b.Skills.BasicAttack] {
		return fmt.Errorf("%w: basic attack %q not in skill list", ErrInvalidCatalog, b.Skills.BasicAttack)
	}
	passives := map[string]bool{}
	for _, p := range b.Passives.Passives {
		if p.ID == "" || passives[p.ID] {
			return fmt.Errorf("%w: passive id %q missing or duplicated", ErrInvalidCatalog, p.ID)
		}
		passives[p.ID] = true
	}
	spirits := map[string]bool{}
	for _, sp := range b.Spirits.Spirits {
		if sp.ID == "" || spirits[sp.ID] {
			return fmt.Errorf("%w: spirit id %q missing or duplicated", ErrInvalidCatalog, sp.ID)
		}
		if sp.Base.Health <= 0 {
			return fmt.Errorf("%w: spirit %q needs positive base health", ErrInvalidCatalog, sp.ID)
		}
		spirits[sp.ID] = true
	}
	for _, enc := range b.Encounters.Encounters {
		if len(enc.Enemies) == 0 {
			return fmt.Errorf("%w: encounter %q has no enemies", ErrInvalidCatalog, enc.ID)
		}
		for _, e := range enc.Enemies {
			if !spirits[e.Spirit] {
				return fmt.Errorf("%w: encounter %q references unknown spirit %q", ErrInvalidCatalog, enc.ID, e.Spirit)
			}
		}
	}
	return nil
}

// Spirit looks up a species definition by id.
func (b *Bundle) Spirit(id string) (SpiritDef, bool) {
	for _, sp := range b.Spirits.Spirits {
		if sp.ID == id {
			return sp, true
		}
	}
	return SpiritDef{}, false
}
