package combat

import (
	"fmt"
	"math"
)

const (
	StaticBasePower = 60
	ScalingFactor   = 50

	matchingAffinityRatio = 0.25
	offAffinityRatio      = 0.15
)

// Outcome is the result of resolving one skill. It is pure data: the
// caller applies damage, healing and effects to its own state.
type Outcome struct {
	Damage           int
	Healing          int
	Multiplier       float64
	Log              []string
	EffectsForCaster []Effect
	EffectsForTarget []Effect
}

// ResolveSkill computes what skill does when attacker uses it on defender.
//
// The elemental multiplier is applied differently depending on whether the
// skill carries its own element. Neutral skills scale only their elemental
// slice; elemental skills scale physical and elemental together.
func ResolveSkill(attacker, defender Snapshot, skill Skill, passives *PassiveBook) Outcome {
	out := Outcome{Multiplier: 1.0}
	out.Log = append(out.Log, fmt.Sprintf("%s uses %s!", attacker.Name, skill.Label()))

	if skill.DamageCoefficient > 0 {
		out.Damage, out.Multiplier = skillDamage(attacker, defender, skill)
		switch {
		case out.Multiplier > 1:
			out.Log = append(out.Log, "It's super effective!")
		case out.Multiplier < 1:
			out.Log = append(out.Log, "It's not very effective...")
		}
	}

	out.Healing = int(math.Floor(float64(out.Damage) * skill.HealingCoefficient))
	for _, p := range passives.of(attacker.Passives, PassiveLifesteal) {
		bonus := int(math.Floor(float64(out.Damage) * p.Value))
		if bonus > 0 {
			out.Healing += bonus
			out.Log = append(out.Log, fmt.Sprintf("%s's %s drains %d health", attacker.Name, p.Name, bonus))
		}
	}

	for _, tpl := range skill.Applies {
		e := tpl.Effect
		switch v := e.(type) {
		case Charge:
			v.Caster = CasterSnapshot{
				ID:       attacker.ID,
				Name:     attacker.Name,
				Level:    attacker.Level,
				Attack:   attacker.Attack,
				Affinity: attacker.Affinity,
				Element:  attacker.Element,
			}
			if v.Payload.SkillName == "" {
				v.Payload.SkillName = skill.Label()
			}
			e = v
		case DamageOverTime:
			v.SourceID = attacker.ID
			e = v
		}
		if tpl.OnCaster {
			out.EffectsForCaster = append(out.EffectsForCaster, e)
		} else {
			out.EffectsForTarget = append(out.EffectsForTarget, e)
		}
	}
	return out
}

// ResolveCharge computes the damage half of an unleashed charge from the
// caster numbers frozen when it began. Healing is applied by the ledger.
func ResolveCharge(c Charge, defender Snapshot) Outcome {
	out := Outcome{Multiplier: 1.0}
	out.Log = append(out.Log, fmt.Sprintf("%s unleashes %s!", c.Caster.Name, c.Payload.SkillName))
	if c.Payload.DamageMultiplier <= 0 {
		return out
	}
	attacker := Snapshot{
		ID:       c.Caster.ID,
		Name:     c.Caster.Name,
		Level:    c.Caster.Level,
		Attack:   c.Caster.Attack,
		Affinity: c.Caster.Affinity,
		Element:  c.Caster.Element,
	}
	skill := Skill{
		ID:                c.Payload.SkillName,
		Name:              c.Payload.SkillName,
		DamageCoefficient: c.Payload.DamageMultiplier,
		Element:           c.Payload.Element,
	}
	out.Damage, out.Multiplier = skillDamage(attacker, defender, skill)
	if out.Multiplier > 1 {
		out.Log = append(out.Log, "It's super effective!")
	} else if out.Multiplier < 1 {
		out.Log = append(out.Log, "It's not very effective...")
	}
	return out
}

// ChargeHeal is the heal an unleashed charge grants its caster.
func ChargeHeal(c Charge) int {
	heal := c.Payload.FlatHeal + int(math.Floor(float64(c.Caster.Affinity)*c.Payload.AffinityHealRatio))
	if heal < 0 {
		return 0
	}
	return heal
}

func skillDamage(attacker, defender Snapshot, skill Skill) (int, float64) {
	explicit := skill.Element != ElementNone && skill.Element != ""
	effective := skill.Element
	if !explicit {
		effective = attacker.Element
	}

	defense := defender.Defense
	if defense < 1 {
		defense = 1
	}
	levelComponent := 2*attacker.Level/5 + 2
	base := int(math.Floor(float64(levelComponent)*StaticBasePower*(float64(attacker.Attack)/float64(defense))/ScalingFactor)) + 2

	physical := int(math.Floor(float64(base) * skill.DamageCoefficient))

	ratio := offAffinityRatio
	if !explicit || skill.Element == attacker.Element {
		ratio = matchingAffinityRatio
	}
	elemental := int(math.Floor(float64(attacker.Affinity) * ratio))

	mult := Multiplier(effective, defender.Element)
	var damage int
	if !explicit {
		damage = physical + int(math.Floor(float64(elemental)*mult))
	} else {
		damage = int(math.Floor(float64(physical+elemental) * mult))
	}
	if damage < 1 {
		damage = 1
	}
	return damage, mult
}
