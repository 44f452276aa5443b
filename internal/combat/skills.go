package combat

import (
	"fmt"
	"sort"

	"spiritclash/internal/config"
)

const defaultBasicAttack = "basic_attack"

// EffectTemplate is an effect a skill attaches when it lands. Charge
// templates get their caster snapshot filled in at cast time.
type EffectTemplate struct {
	Effect   Effect
	OnCaster bool
}

type Skill struct {
	ID                 string
	Name               string
	Description        string
	DamageCoefficient  float64
	HealingCoefficient float64
	Element            Element
	MinLevel           int
	Priority           int
	Applies            []EffectTemplate
}

func (s Skill) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

func (s Skill) Unlocked(level int) bool { return level >= s.MinLevel }

type SkillBook struct {
	byID  map[string]Skill
	basic string
}

func NewSkillBook(cfg *config.SkillsConfig) (*SkillBook, error) {
	sb := &SkillBook{byID: map[string]Skill{}, basic: defaultBasicAttack}
	if cfg == nil {
		sb.byID[defaultBasicAttack] = Skill{ID: defaultBasicAttack, Name: "Tackle", DamageCoefficient: 1.0, Element: ElementNone}
		return sb, nil
	}
	for _, s := range cfg.Skills {
		elem, err := ParseElement(s.Elem)
		if err != nil {
			return nil, fmt.Errorf("skill %q: %w", s.ID, err)
		}
		sk := Skill{
			ID:                 s.ID,
			Name:               s.Name,
			Description:        s.Description,
			DamageCoefficient:  s.Damage,
			HealingCoefficient: s.Healing,
			Element:            elem,
			MinLevel:           s.MinLevel,
			Priority:           s.Priority,
		}
		for _, ap := range s.Applies {
			tpl, err := templateFromConfig(ap)
			if err != nil {
				return nil, fmt.Errorf("skill %q: %w", s.ID, err)
			}
			sk.Applies = append(sk.Applies, tpl)
		}
		sb.byID[s.ID] = sk
	}
	if cfg.BasicAttack != "" {
		sb.basic = cfg.BasicAttack
	}
	if _, ok := sb.byID[sb.basic]; !ok {
		return nil, fmt.Errorf("basic attack %q is not defined", sb.basic)
	}
	return sb, nil
}

func templateFromConfig(ap config.AppliedEffect) (EffectTemplate, error) {
	turns := ap.Turns
	if turns <= 0 {
		turns = 1
	}
	switch EffectKind(ap.Type) {
	case KindStatBuff:
		stat, err := parseStat(ap.Stat)
		if err != nil {
			return EffectTemplate{}, err
		}
		return EffectTemplate{Effect: StatBuff{Stat: stat, Multiplier: ap.Multiplier, Turns: turns}, OnCaster: true}, nil
	case KindStatDebuff:
		stat, err := parseStat(ap.Stat)
		if err != nil {
			return EffectTemplate{}, err
		}
		return EffectTemplate{Effect: StatDebuff{Stat: stat, Multiplier: ap.Multiplier, Turns: turns}}, nil
	case KindDamageOverTime:
		return EffectTemplate{Effect: DamageOverTime{Name: ap.Name, Damage: ap.Damage, Turns: turns}}, nil
	case KindShield:
		return EffectTemplate{Effect: Shield{Turns: turns}, OnCaster: true}, nil
	case KindThorns:
		return EffectTemplate{Effect: Thorns{Ratio: ap.Ratio, Turns: turns}, OnCaster: true}, nil
	case KindCharge:
		elem, err := ParseElement(ap.Elem)
		if err != nil {
			return EffectTemplate{}, err
		}
		return EffectTemplate{Effect: Charge{Turns: turns, Payload: ChargePayload{
			SkillName:         ap.Name,
			DamageMultiplier:  ap.Multiplier,
			FlatHeal:          ap.Heal,
			AffinityHealRatio: ap.AffinityHeal,
			Element:           elem,
		}}, OnCaster: true}, nil
	default:
		return EffectTemplate{}, fmt.Errorf("unknown effect type %q", ap.Type)
	}
}

func (sb *SkillBook) Lookup(id string) (Skill, bool) {
	if sb == nil {
		return Skill{}, false
	}
	s, ok := sb.byID[id]
	return s, ok
}

func (sb *SkillBook) Basic() Skill {
	if sb == nil {
		return Skill{ID: defaultBasicAttack, Name: "Tackle", DamageCoefficient: 1.0, Element: ElementNone}
	}
	return sb.byID[sb.basic]
}

// Resolve returns the skill for id, or the basic attack and false when the
// id is unknown.
func (sb *SkillBook) Resolve(id string) (Skill, bool) {
	if s, ok := sb.Lookup(id); ok {
		return s, true
	}
	return sb.Basic(), false
}

// Known returns the skills from ids that exist and are unlocked at level,
// sorted by priority (highest first) then id.
func (sb *SkillBook) Known(ids []string, level int) []Skill {
	var out []Skill
	for _, id := range ids {
		if s, ok := sb.Lookup(id); ok && s.Unlocked(level) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type PassiveKind string

const (
	PassiveLifesteal      PassiveKind = "lifesteal"
	PassivePoisonAttacker PassiveKind = "poison_attacker"
)

type Passive struct {
	ID    string
	Name  string
	Kind  PassiveKind
	Value float64
	Turns int
}

type PassiveBook struct {
	byID map[string]Passive
}

func NewPassiveBook(cfg *config.PassivesConfig) (*PassiveBook, error) {
	pb := &PassiveBook{byID: map[string]Passive{}}
	if cfg == nil {
		return pb, nil
	}
	for _, p := range cfg.Passives {
		kind := PassiveKind(p.Type)
		switch kind {
		case PassiveLifesteal, PassivePoisonAttacker:
		default:
			return nil, fmt.Errorf("passive %q: unknown type %q", p.ID, p.Type)
		}
		pb.byID[p.ID] = Passive{ID: p.ID, Name: p.Name, Kind: kind, Value: p.Value, Turns: p.Turns}
	}
	return pb, nil
}

func (pb *PassiveBook) Lookup(id string) (Passive, bool) {
	if pb == nil {
		return Passive{}, false
	}
	p, ok := pb.byID[id]
	return p, ok
}

// of returns the passives behind ids that exist and match kind; unknown ids
// are skipped.
func (pb *PassiveBook) of(ids []string, kind PassiveKind) []Passive {
	var out []Passive
	for _, id := range ids {
		if p, ok := pb.Lookup(id); ok && p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}
