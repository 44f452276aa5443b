package battle

import "spiritclash/internal/combat"

type EffectView struct {
	Kind        combat.EffectKind `json:"kind"`
	Description string            `json:"description"`
	Turns       int               `json:"turns"`
}

type SkillView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Element     string `json:"element"`
}

type CombatantView struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	SpiritID  string       `json:"spirit_id"`
	Element   string       `json:"element"`
	Level     int          `json:"level"`
	Health    int          `json:"health"`
	MaxHealth int          `json:"max_health"`
	Blocking  bool         `json:"blocking,omitempty"`
	Effects   []EffectView `json:"effects,omitempty"`
	Skills    []SkillView  `json:"skills,omitempty"`
}

// View is the read-only projection handed to the UI layer.
type View struct {
	ID           string          `json:"id"`
	Phase        Phase           `json:"phase"`
	State        State           `json:"state"`
	Paused       bool            `json:"paused"`
	Closed       bool            `json:"closed"`
	Turn         int             `json:"turn"`
	Encounter    string          `json:"encounter,omitempty"`
	ActivePlayer int             `json:"active_player"`
	ActiveEnemy  int             `json:"active_enemy"`
	Party        []CombatantView `json:"party"`
	Enemies      []CombatantView `json:"enemies"`
	Log          []string        `json:"log"`
}

// AcceptsInput reports whether an action intent would be taken right now.
func (v View) AcceptsInput() bool {
	return !v.Closed && !v.Paused && v.Phase == PhasePlayerAction
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:           s.id,
		Phase:        s.phase,
		State:        s.state,
		Paused:       s.paused,
		Closed:       s.closed,
		Turn:         s.turn,
		Encounter:    s.encounter.Name,
		ActivePlayer: s.party.Active,
		ActiveEnemy:  s.enemies.Active,
		Log:          append([]string(nil), s.log...),
	}
	for _, c := range s.party.Members {
		cv := combatantView(c)
		if s.deps.Catalog != nil {
			for _, sk := range s.deps.Catalog.Skills.Known(c.Skills, c.Stats.Level) {
				cv.Skills = append(cv.Skills, SkillView{ID: sk.ID, Name: sk.Label(), Description: sk.Description, Element: string(sk.Element)})
			}
		}
		v.Party = append(v.Party, cv)
	}
	for _, c := range s.enemies.Members {
		v.Enemies = append(v.Enemies, combatantView(c))
	}
	return v
}

func combatantView(c combat.Combatant) CombatantView {
	cv := CombatantView{
		ID:        c.ID,
		Name:      c.Name,
		SpiritID:  c.SpiritID,
		Element:   string(c.Element),
		Level:     c.Stats.Level,
		Health:    c.Health,
		MaxHealth: c.Stats.MaxHealth,
		Blocking:  c.Blocking,
	}
	for _, e := range c.Effects {
		cv.Effects = append(cv.Effects, EffectView{Kind: e.Kind(), Description: e.Describe(), Turns: e.Remaining()})
	}
	return cv
}
