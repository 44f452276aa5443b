package config

type PassivesConfig struct {
	Passives []Passive `yaml:"passives"`
}

type Passive struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Type        string  `yaml:"type"` // lifesteal | poison_attacker
	Value       float64 `yaml:"value"`
	Turns       int     `yaml:"turns"`
}
