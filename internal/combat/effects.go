package combat

import "fmt"

type EffectKind string

const (
	KindStatBuff       EffectKind = "stat_buff"
	KindStatDebuff     EffectKind = "stat_debuff"
	KindDamageOverTime EffectKind = "damage_over_time"
	KindShield         EffectKind = "one_time_shield"
	KindThorns         EffectKind = "thorns"
	KindCharge         EffectKind = "charge"
)

type Stat string

const (
	StatAttack   Stat = "attack"
	StatDefense  Stat = "defense"
	StatAffinity Stat = "affinity"
)

func parseStat(s string) (Stat, error) {
	switch st := Stat(s); st {
	case StatAttack, StatDefense, StatAffinity:
		return st, nil
	}
	return "", fmt.Errorf("unknown stat %q", s)
}

// Effect is a closed sum type: only the variants in this file implement it.
// Every variant is a value; the ledger replaces effects rather than mutating
// them in place.
type Effect interface {
	Kind() EffectKind
	Remaining() int
	Describe() string
	withRemaining(turns int) Effect
}

type StatBuff struct {
	Stat       Stat
	Multiplier float64
	Turns      int
}

type StatDebuff struct {
	Stat       Stat
	Multiplier float64
	Turns      int
}

type DamageOverTime struct {
	Name     string
	Damage   int
	Turns    int
	SourceID string
}

// Shield negates the next hit entirely and is consumed by it.
type Shield struct {
	Turns int
}

// Thorns reflects Ratio of each incoming hit back to the attacker.
type Thorns struct {
	Ratio float64
	Turns int
}

// CasterSnapshot freezes the caster's numbers at the moment a charge began,
// so buffs that expire during the wind-up do not change the payoff.
type CasterSnapshot struct {
	ID       string
	Name     string
	Level    int
	Attack   int
	Affinity int
	Element  Element
}

type ChargePayload struct {
	SkillName         string
	DamageMultiplier  float64
	FlatHeal          int
	AffinityHealRatio float64
	Element           Element
}

type Charge struct {
	Turns   int
	Caster  CasterSnapshot
	Payload ChargePayload
}

func (StatBuff) Kind() EffectKind       { return KindStatBuff }
func (StatDebuff) Kind() EffectKind     { return KindStatDebuff }
func (DamageOverTime) Kind() EffectKind { return KindDamageOverTime }
func (Shield) Kind() EffectKind         { return KindShield }
func (Thorns) Kind() EffectKind         { return KindThorns }
func (Charge) Kind() EffectKind         { return KindCharge }

func (e StatBuff) Remaining() int       { return e.Turns }
func (e StatDebuff) Remaining() int     { return e.Turns }
func (e DamageOverTime) Remaining() int { return e.Turns }
func (e Shield) Remaining() int         { return e.Turns }
func (e Thorns) Remaining() int         { return e.Turns }
func (e Charge) Remaining() int         { return e.Turns }

func (e StatBuff) withRemaining(n int) Effect       { e.Turns = n; return e }
func (e StatDebuff) withRemaining(n int) Effect     { e.Turns = n; return e }
func (e DamageOverTime) withRemaining(n int) Effect { e.Turns = n; return e }
func (e Shield) withRemaining(n int) Effect         { e.Turns = n; return e }
func (e Thorns) withRemaining(n int) Effect         { e.Turns = n; return e }
func (e Charge) withRemaining(n int) Effect         { e.Turns = n; return e }

func (e StatBuff) Describe() string {
	return fmt.Sprintf("%s up x%.2f (%d turns)", e.Stat, e.Multiplier, e.Turns)
}

func (e StatDebuff) Describe() string {
	return fmt.Sprintf("%s down x%.2f (%d turns)", e.Stat, e.Multiplier, e.Turns)
}

func (e DamageOverTime) Describe() string {
	name := e.Name
	if name == "" {
		name = "poison"
	}
	return fmt.Sprintf("%s (%d/turn, %d turns)", name, e.Damage, e.Turns)
}

func (e Shield) Describe() string { return "a shield" }

func (e Thorns) Describe() string {
	return fmt.Sprintf("thorns (%.0f%% reflect, %d turns)", e.Ratio*100, e.Turns)
}

func (e Charge) Describe() string {
	label := e.Payload.SkillName
	if label == "" {
		label = "power"
	}
	return fmt.Sprintf("charging %s (%d turns)", label, e.Turns)
}

// statMultiplier folds every buff and debuff on stat into one factor.
func statMultiplier(effects []Effect, stat Stat) float64 {
	m := 1.0
	for _, e := range effects {
		switch v := e.(type) {
		case StatBuff:
			if v.Stat == stat {
				m *= v.Multiplier
			}
		case StatDebuff:
			if v.Stat == stat {
				m *= v.Multiplier
			}
		}
	}
	return m
}
