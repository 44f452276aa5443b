package combat

import (
	"strings"
	"testing"

	"spiritclash/internal/config"
)

func fighter(health int) Combatant {
	return NewCombatant("f", "Fighter", ElementNone, Stats{Level: 5, Attack: 10, Defense: 10, Affinity: 10, MaxHealth: 100}, health)
}

func TestApplyEffect_BuffReplacesDebuffStacks(t *testing.T) {
	c := fighter(100)
	c, _ = ApplyEffect(c, StatBuff{Stat: StatAttack, Multiplier: 1.2, Turns: 3})
	c, msg := ApplyEffect(c, StatBuff{Stat: StatAttack, Multiplier: 1.5, Turns: 2})
	if len(c.Effects) != 1 {
		t.Fatalf("expected one buff after reapplying, got %d", len(c.Effects))
	}
	if b := c.Effects[0].(StatBuff); b.Multiplier != 1.5 || b.Turns != 2 {
		t.Fatalf("expected the newer buff to win, got %+v", b)
	}
	if !strings.HasPrefix(msg, "Fighter gains") {
		t.Fatalf("unexpected message %q", msg)
	}

	c, _ = ApplyEffect(c, StatDebuff{Stat: StatDefense, Multiplier: 0.8, Turns: 2})
	c, msg = ApplyEffect(c, StatDebuff{Stat: StatDefense, Multiplier: 0.8, Turns: 2})
	if len(c.Effects) != 3 {
		t.Fatalf("expected debuffs to stack, got %d effects", len(c.Effects))
	}
	if !strings.Contains(msg, "afflicted") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestApplyEffect_ChargeReplaces(t *testing.T) {
	c := fighter(100).WithEffects([]Effect{Thorns{Ratio: 0.5, Turns: 2}})
	c, _ = ApplyEffect(c, Charge{Turns: 3, Payload: ChargePayload{SkillName: "Old Beam", DamageMultiplier: 1.0}})
	c, msg := ApplyEffect(c, Charge{Turns: 2, Payload: ChargePayload{SkillName: "New Beam", DamageMultiplier: 2.0}})

	var charges []Charge
	for _, e := range c.Effects {
		if ch, ok := e.(Charge); ok {
			charges = append(charges, ch)
		}
	}
	if len(charges) != 1 {
		t.Fatalf("expected exactly one charge, got %d in %v", len(charges), c.Effects)
	}
	if got := charges[0]; got.Turns != 2 || got.Payload.SkillName != "New Beam" || got.Payload.DamageMultiplier != 2.0 {
		t.Fatalf("expected the newer charge to win, got %+v", got)
	}
	if len(c.Effects) != 2 {
		t.Fatalf("other effects should be kept, got %v", c.Effects)
	}
	if !strings.HasPrefix(msg, "Fighter begins") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestApplyEffect_DoesNotMutateInput(t *testing.T) {
	orig := fighter(100).WithEffects([]Effect{Thorns{Ratio: 0.5, Turns: 2}})
	next, _ := ApplyEffect(orig, Shield{Turns: 1})
	if len(orig.Effects) != 1 || len(next.Effects) != 2 {
		t.Fatalf("expected copy-on-write, orig=%d next=%d", len(orig.Effects), len(next.Effects))
	}
}

func TestTickEndOfTurn_CountsDownAndExpires(t *testing.T) {
	c := fighter(100).WithEffects([]Effect{
		StatBuff{Stat: StatAttack, Multiplier: 1.5, Turns: 1},
		Thorns{Ratio: 0.5, Turns: 2},
		Charge{Turns: 1},
		Shield{Turns: 3},
	})
	res := TickEndOfTurn(c)
	got := res.Combatant.Effects
	if len(got) != 3 {
		t.Fatalf("expected 3 effects left, got %v", got)
	}
	if got[0].Kind() != KindThorns || got[0].Remaining() != 1 {
		t.Fatalf("thorns should count down to 1, got %+v", got[0])
	}
	if got[1].Kind() != KindCharge || got[1].Remaining() != 1 {
		t.Fatalf("charge on its last turn should be kept, got %+v", got[1])
	}
	if got[2].Remaining() != 2 {
		t.Fatalf("shield should count down to 2, got %+v", got[2])
	}
	if len(res.Expired) != 1 || res.Expired[0].Kind() != KindStatBuff {
		t.Fatalf("expected the buff to expire, got %v", res.Expired)
	}
	if !strings.Contains(strings.Join(res.Log, "\n"), "Fighter's stat_buff wore off") {
		t.Fatalf("expected wore-off line, got %v", res.Log)
	}
	for _, e := range got {
		if e.Remaining() <= 0 {
			t.Fatalf("effect with no turns left survived: %+v", e)
		}
	}
}

func TestTickEndOfTurn_DamageOverTimeCanKill(t *testing.T) {
	c := fighter(1).WithEffects([]Effect{DamageOverTime{Name: "Burn", Damage: 5, Turns: 2}})
	res := TickEndOfTurn(c)
	if res.DotDamage != 5 {
		t.Fatalf("expected 5 dot damage, got %d", res.DotDamage)
	}
	if res.Combatant.Health != 0 || res.Combatant.Alive() {
		t.Fatalf("expected health 0, got %d", res.Combatant.Health)
	}
	if res.Log[0] != "Fighter takes 5 damage from Burn" {
		t.Fatalf("unexpected log %q", res.Log[0])
	}
}

func TestTickStartOfTurn_UnleashesCharge(t *testing.T) {
	ch := Charge{
		Turns:   1,
		Caster:  CasterSnapshot{Name: "Fighter", Affinity: 40},
		Payload: ChargePayload{SkillName: "Moonbeam", FlatHeal: 10, AffinityHealRatio: 0.5},
	}
	c := fighter(50).WithEffects([]Effect{Thorns{Ratio: 0.2, Turns: 2}, ch})
	res := TickStartOfTurn(c)
	if !res.Unleashed {
		t.Fatalf("expected charge to unleash")
	}
	if res.Healed != 30 || res.Combatant.Health != 80 {
		t.Fatalf("expected +30 health to 80, got +%d to %d", res.Healed, res.Combatant.Health)
	}
	if len(res.Combatant.Effects) != 1 || res.Combatant.Effects[0].Kind() != KindThorns {
		t.Fatalf("expected only thorns to remain, got %v", res.Combatant.Effects)
	}

	waiting := fighter(50).WithEffects([]Effect{Charge{Turns: 2}})
	if res := TickStartOfTurn(waiting); res.Unleashed || len(res.Combatant.Effects) != 1 {
		t.Fatalf("charge with 2 turns should wait, got %+v", res)
	}
}

func TestTickStartOfTurn_HealClampedToMax(t *testing.T) {
	ch := Charge{Turns: 1, Payload: ChargePayload{FlatHeal: 50}}
	res := TickStartOfTurn(fighter(90).WithEffects([]Effect{ch}))
	if res.Combatant.Health != 100 || res.Healed != 10 {
		t.Fatalf("expected clamp at 100 with +10, got %d (+%d)", res.Combatant.Health, res.Healed)
	}
}

func TestAbsorbHit_BlockHalves(t *testing.T) {
	c := fighter(100)
	c.Blocking = true
	next, dealt, msg := AbsorbHit(c, 16)
	if dealt != 8 {
		t.Fatalf("expected 8 after block, got %d", dealt)
	}
	if next.Blocking {
		t.Fatalf("block should clear after one hit")
	}
	if msg == "" {
		t.Fatalf("expected a block message")
	}
	if _, dealt, _ := AbsorbHit(next, 16); dealt != 16 {
		t.Fatalf("second hit should land in full, got %d", dealt)
	}
}

func TestAbsorbHit_ShieldNegatesAndOverridesBlock(t *testing.T) {
	c := fighter(100).WithEffects([]Effect{Shield{Turns: 2}, Thorns{Ratio: 0.5, Turns: 2}})
	c.Blocking = true
	next, dealt, _ := AbsorbHit(c, 16)
	if dealt != 0 {
		t.Fatalf("expected shield to negate, got %d", dealt)
	}
	if len(next.Effects) != 1 || next.Effects[0].Kind() != KindThorns {
		t.Fatalf("expected shield removed, got %v", next.Effects)
	}
	if next.Blocking {
		t.Fatalf("shield should consume the block too")
	}
}

func TestOnGetHit_ThornsAndPoison(t *testing.T) {
	pb, err := NewPassiveBook(&config.PassivesConfig{Passives: []config.Passive{
		{ID: "toxic", Name: "Toxic Skin", Type: "poison_attacker", Value: 0.05, Turns: 2},
	}})
	if err != nil {
		t.Fatalf("passive book: %v", err)
	}
	def := fighter(100).WithEffects([]Effect{Thorns{Ratio: 0.5, Turns: 2}})
	def.Passives = []string{"toxic"}
	att := NewCombatant("a", "Attacker", ElementNone, Stats{Level: 1, MaxHealth: 40}, 40)

	res := OnGetHit(def, att, 16, pb)
	if res.Reflected != 8 {
		t.Fatalf("expected 8 reflected, got %d", res.Reflected)
	}
	if len(res.AttackerEffects) != 1 {
		t.Fatalf("expected poison on attacker, got %v", res.AttackerEffects)
	}
	dot := res.AttackerEffects[0].(DamageOverTime)
	if dot.Damage != 5 || dot.Turns != 2 || dot.SourceID != "f" {
		t.Fatalf("unexpected poison %+v", dot)
	}

	if res := OnGetHit(def, att, 0, pb); res.Reflected != 0 || len(res.AttackerEffects) != 0 {
		t.Fatalf("a negated hit should not trigger reactions, got %+v", res)
	}
}

func TestCombatant_HealthStaysInBounds(t *testing.T) {
	c := fighter(500)
	if c.Health != 100 {
		t.Fatalf("expected clamp to max, got %d", c.Health)
	}
	if c = c.Damaged(1000); c.Health != 0 {
		t.Fatalf("expected clamp to 0, got %d", c.Health)
	}
	if c = c.Healed(1000); c.Health != 100 {
		t.Fatalf("expected clamp to max, got %d", c.Health)
	}
}
