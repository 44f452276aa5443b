package combat

import (
	"fmt"
	"math"
)

// StartOfTurn is the result of TickStartOfTurn. When Unleashed is set the
// combatant's manual action for this turn is consumed by the charge.
type StartOfTurn struct {
	Combatant Combatant
	Unleashed bool
	Charge    Charge
	Healed    int
	Log       []string
}

// TickStartOfTurn resolves a charge that has reached its last turn. Its heal
// lands immediately; its damage is left to the caller, which owns the
// opposing side.
func TickStartOfTurn(c Combatant) StartOfTurn {
	res := StartOfTurn{Combatant: c}
	kept := make([]Effect, 0, len(c.Effects))
	for _, e := range c.Effects {
		ch, ok := e.(Charge)
		if ok && !res.Unleashed && ch.Turns == 1 {
			res.Unleashed = true
			res.Charge = ch
			continue
		}
		kept = append(kept, e)
	}
	if !res.Unleashed {
		return res
	}
	next := c.WithEffects(kept)
	if heal := ChargeHeal(res.Charge); heal > 0 {
		before := next.Health
		next = next.Healed(heal)
		res.Healed = next.Health - before
	}
	if res.Healed > 0 {
		res.Log = append(res.Log, fmt.Sprintf("%s releases %s and recovers %d health", c.Name, res.Charge.Payload.SkillName, res.Healed))
	}
	res.Combatant = next
	return res
}

// EndOfTurn is the result of TickEndOfTurn.
type EndOfTurn struct {
	Combatant Combatant
	DotDamage int
	Expired   []Effect
	Log       []string
}

// TickEndOfTurn applies damage over time, then counts every effect down by
// one turn. A charge on its last turn is kept so the next start-of-turn tick
// can unleash it.
func TickEndOfTurn(c Combatant) EndOfTurn {
	res := EndOfTurn{}
	for _, e := range c.Effects {
		if dot, ok := e.(DamageOverTime); ok && dot.Damage > 0 {
			res.DotDamage += dot.Damage
			res.Log = append(res.Log, fmt.Sprintf("%s takes %d damage from %s", c.Name, dot.Damage, dotName(dot)))
		}
	}
	next := c.Damaged(res.DotDamage)

	kept := make([]Effect, 0, len(c.Effects))
	for _, e := range c.Effects {
		if e.Kind() == KindCharge && e.Remaining() == 1 {
			kept = append(kept, e)
			continue
		}
		n := e.Remaining() - 1
		if n <= 0 {
			res.Expired = append(res.Expired, e)
			continue
		}
		kept = append(kept, e.withRemaining(n))
	}
	for _, e := range res.Expired {
		res.Log = append(res.Log, fmt.Sprintf("%s's %s wore off", c.Name, e.Kind()))
	}
	res.Combatant = next.WithEffects(kept)
	return res
}

// ApplyEffect attaches e to c. Stat buffs and charges replace an existing
// effect of the same kind instead of stacking.
func ApplyEffect(c Combatant, e Effect) (Combatant, string) {
	if e == nil {
		return c, ""
	}
	kept := make([]Effect, 0, len(c.Effects)+1)
	replaces := e.Kind() == KindStatBuff || e.Kind() == KindCharge
	for _, old := range c.Effects {
		if replaces && old.Kind() == e.Kind() {
			continue
		}
		kept = append(kept, old)
	}
	kept = append(kept, e)
	var msg string
	switch e.(type) {
	case StatDebuff, DamageOverTime:
		msg = fmt.Sprintf("%s is afflicted with %s", c.Name, e.Describe())
	case Charge:
		msg = fmt.Sprintf("%s begins %s", c.Name, e.Describe())
	default:
		msg = fmt.Sprintf("%s gains %s", c.Name, e.Describe())
	}
	return c.WithEffects(kept), msg
}

// AbsorbHit runs incoming damage through the defender's shield and block.
// A shield negates the hit outright and overrides block; either is spent
// by the hit.
func AbsorbHit(c Combatant, damage int) (Combatant, int, string) {
	if damage <= 0 {
		return c, 0, ""
	}
	for i, e := range c.Effects {
		if _, ok := e.(Shield); ok {
			kept := make([]Effect, 0, len(c.Effects)-1)
			kept = append(kept, c.Effects[:i]...)
			kept = append(kept, c.Effects[i+1:]...)
			next := c.WithEffects(kept)
			next.Blocking = false
			return next, 0, fmt.Sprintf("%s's shield absorbs the hit", c.Name)
		}
	}
	if c.Blocking {
		c.Blocking = false
		reduced := int(math.Floor(float64(damage) * 0.5))
		return c, reduced, fmt.Sprintf("%s blocks and halves the damage", c.Name)
	}
	return c, damage, ""
}

// HitReaction is what a defender sends back at its attacker after being hit.
type HitReaction struct {
	Reflected       int
	AttackerEffects []Effect
	Log             []string
}

// OnGetHit scans the defender's thorns and passives after a hit of damage
// has landed. The caller applies the result to the attacker's side.
func OnGetHit(defender, attacker Combatant, damage int, passives *PassiveBook) HitReaction {
	var res HitReaction
	if damage <= 0 {
		return res
	}
	for _, e := range defender.Effects {
		if th, ok := e.(Thorns); ok {
			res.Reflected += int(math.Floor(float64(damage) * th.Ratio))
		}
	}
	if res.Reflected > 0 {
		res.Log = append(res.Log, fmt.Sprintf("%s's thorns reflect %d damage to %s", defender.Name, res.Reflected, attacker.Name))
	}
	for _, p := range passives.of(defender.Passives, PassivePoisonAttacker) {
		amount := int(math.Floor(float64(defender.Stats.MaxHealth) * p.Value))
		if amount < 1 {
			amount = 1
		}
		turns := p.Turns
		if turns <= 0 {
			turns = 1
		}
		res.AttackerEffects = append(res.AttackerEffects, DamageOverTime{
			Name:     p.Name,
			Damage:   amount,
			Turns:    turns,
			SourceID: defender.ID,
		})
		res.Log = append(res.Log, fmt.Sprintf("%s's %s poisons %s", defender.Name, p.Name, attacker.Name))
	}
	return res
}

func dotName(d DamageOverTime) string {
	if d.Name != "" {
		return d.Name
	}
	return "poison"
}
