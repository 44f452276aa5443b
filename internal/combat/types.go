package combat

import "math"

// Event is a fire-and-forget presentation signal: sound cues and health-bar
// flags travel alongside state changes but nothing waits on them.
type Event struct {
	Turn    int            `json:"turn"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

const (
	EventHit    = "Hit"
	EventHeal   = "Heal"
	EventShake  = "Shake"
	EventGlow   = "HealGlow"
	EventMusic  = "Music"
	EventSwitch = "Switch"
	EventMenu   = "MenuReset"
)

type Stats struct {
	Level     int `json:"level"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	Affinity  int `json:"affinity"`
	MaxHealth int `json:"max_health"`
}

// Combatant is the authoritative battle-scoped record. It is a value: every
// mutation helper returns a new Combatant and never touches the receiver's
// effect slice.
type Combatant struct {
	ID         string
	InstanceID string
	SpiritID   string
	Name       string
	Element    Element
	Stats      Stats
	Health     int
	Effects    []Effect
	Skills     []string
	Passives   []string
	Blocking   bool
}

// Snapshot is the read-only view handed to the formula module.
type Snapshot struct {
	ID        string
	Name      string
	Level     int
	Attack    int
	Defense   int
	Affinity  int
	Element   Element
	Health    int
	MaxHealth int
	Passives  []string
}

func NewCombatant(id, name string, elem Element, stats Stats, health int) Combatant {
	if stats.MaxHealth < 1 {
		stats.MaxHealth = 1
	}
	c := Combatant{ID: id, Name: name, Element: elem, Stats: stats}
	return c.WithHealth(health)
}

func (c Combatant) Alive() bool { return c.Health > 0 }

func (c Combatant) WithHealth(h int) Combatant {
	if h < 0 {
		h = 0
	}
	if h > c.Stats.MaxHealth {
		h = c.Stats.MaxHealth
	}
	c.Health = h
	return c
}

func (c Combatant) Damaged(n int) Combatant {
	if n <= 0 {
		return c
	}
	return c.WithHealth(c.Health - n)
}

func (c Combatant) Healed(n int) Combatant {
	if n <= 0 {
		return c
	}
	return c.WithHealth(c.Health + n)
}

func (c Combatant) WithEffects(effects []Effect) Combatant {
	c.Effects = append([]Effect(nil), effects...)
	return c
}

func (c Combatant) Snapshot() Snapshot {
	scale := func(v int, stat Stat) int {
		return int(math.Floor(float64(v) * statMultiplier(c.Effects, stat)))
	}
	return Snapshot{
		ID:        c.ID,
		Name:      c.Name,
		Level:     c.Stats.Level,
		Attack:    scale(c.Stats.Attack, StatAttack),
		Defense:   scale(c.Stats.Defense, StatDefense),
		Affinity:  scale(c.Stats.Affinity, StatAffinity),
		Element:   c.Element,
		Health:    c.Health,
		MaxHealth: c.Stats.MaxHealth,
		Passives:  append([]string(nil), c.Passives...),
	}
}
