package config

type SpiritsConfig struct {
	Spirits []SpiritDef `yaml:"spirits"`
}

type SpiritDef struct {
	ID       string    `yaml:"id"`
	Name     string    `yaml:"name"`
	Element  string    `yaml:"element"`
	Base     StatBlock `yaml:"base"`
	Growth   StatBlock `yaml:"growth"`
	Skills   []string  `yaml:"skills"`
	Passives []string  `yaml:"passives"`
	Note     string    `yaml:"note"`
}

type StatBlock struct {
	Health   int `yaml:"health"`
	Attack   int `yaml:"attack"`
	Defense  int `yaml:"defense"`
	Affinity int `yaml:"affinity"`
}

// StatsAt grows the base block linearly; level 1 is the base itself.
func (d SpiritDef) StatsAt(level int) StatBlock {
	if level < 1 {
		level = 1
	}
	n := level - 1
	return StatBlock{
		Health:   d.Base.Health + d.Growth.Health*n,
		Attack:   d.Base.Attack + d.Growth.Attack*n,
		Defense:  d.Base.Defense + d.Growth.Defense*n,
		Affinity: d.Base.Affinity + d.Growth.Affinity*n,
	}
}
