package config

type EncountersConfig struct {
	Encounters []EncounterDef `yaml:"encounters"`
}

type EncounterDef struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name"`
	MinLevel int        `yaml:"min_level"`
	MaxLevel int        `yaml:"max_level"`
	Music    string     `yaml:"music"`
	Enemies  []EnemyDef `yaml:"enemies"`
	Rewards  RewardDef  `yaml:"rewards"`
	Note     string     `yaml:"note"`
}

// EnemyDef scripts one opponent. Actions cycle; the id "random" picks from
// the enemy's basic actions and innate skills.
type EnemyDef struct {
	Spirit  string   `yaml:"spirit"`
	Level   int      `yaml:"level"`
	Actions []string `yaml:"actions"`
}

type RewardDef struct {
	Currency int            `yaml:"currency"`
	Essence  map[string]int `yaml:"essence"`
}
