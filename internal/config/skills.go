package config

type SkillsConfig struct {
	BasicAttack string  `yaml:"basic_attack"`
	Skills      []Skill `yaml:"skills"`
}

type Skill struct {
	ID          string          `yaml:"id"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Damage      float64         `yaml:"damage"`
	Healing     float64         `yaml:"healing"`
	Elem        string          `yaml:"elem"`
	MinLevel    int             `yaml:"min_level"`
	Priority    int             `yaml:"priority"`
	Applies     []AppliedEffect `yaml:"applies"`
	Note        string          `yaml:"note"`
}

// AppliedEffect is a template; which fields matter depends on Type.
type AppliedEffect struct {
	Type         string  `yaml:"type"`
	Name         string  `yaml:"name"`
	Stat         string  `yaml:"stat"`
	Multiplier   float64 `yaml:"multiplier"`
	Damage       int     `yaml:"damage"`
	Ratio        float64 `yaml:"ratio"`
	Turns        int     `yaml:"turns"`
	Heal         int     `yaml:"heal"`
	AffinityHeal float64 `yaml:"affinity_heal"`
	Elem         string  `yaml:"elem"`
}
