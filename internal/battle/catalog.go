package battle

import (
	"fmt"

	"spiritclash/internal/combat"
	"spiritclash/internal/config"
)

type Species struct {
	ID       string
	Name     string
	Element  combat.Element
	Base     config.StatBlock
	Growth   config.StatBlock
	Skills   []string
	Passives []string
}

func (sp Species) StatsAt(level int) combat.Stats {
	def := config.SpiritDef{Base: sp.Base, Growth: sp.Growth}
	blk := def.StatsAt(level)
	if level < 1 {
		level = 1
	}
	return combat.Stats{
		Level:     level,
		Attack:    blk.Attack,
		Defense:   blk.Defense,
		Affinity:  blk.Affinity,
		MaxHealth: blk.Health,
	}
}

// Catalog is the static lookup shared by the formula module, the action
// selector and the stat calculation.
type Catalog struct {
	Skills   *combat.SkillBook
	Passives *combat.PassiveBook
	species  map[string]Species
}

func NewCatalog(b *config.Bundle) (*Catalog, error) {
	if b == nil {
		return nil, fmt.Errorf("catalog bundle is required")
	}
	skills, err := combat.NewSkillBook(b.Skills)
	if err != nil {
		return nil, fmt.Errorf("build skill book: %w", err)
	}
	passives, err := combat.NewPassiveBook(b.Passives)
	if err != nil {
		return nil, fmt.Errorf("build passive book: %w", err)
	}
	c := &Catalog{Skills: skills, Passives: passives, species: map[string]Species{}}
	if b.Spirits == nil {
		return c, nil
	}
	for _, def := range b.Spirits.Spirits {
		elem, err := combat.ParseElement(def.Element)
		if err != nil {
			return nil, fmt.Errorf("spirit %q: %w", def.ID, err)
		}
		c.species[def.ID] = Species{
			ID:       def.ID,
			Name:     def.Name,
			Element:  elem,
			Base:     def.Base,
			Growth:   def.Growth,
			Skills:   append([]string(nil), def.Skills...),
			Passives: append([]string(nil), def.Passives...),
		}
	}
	return c, nil
}

func (c *Catalog) Species(id string) (Species, bool) {
	sp, ok := c.species[id]
	return sp, ok
}

// StatsFor computes the battle stats of a species at level.
func (c *Catalog) StatsFor(spiritID string, level int) (combat.Stats, bool) {
	sp, ok := c.species[spiritID]
	if !ok {
		return combat.Stats{}, false
	}
	return sp.StatsAt(level), true
}
